package controller

import (
	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"chat-agent-be/internal/pkg/serverutils"
	"chat-agent-be/internal/service"
	"chat-agent-be/internal/websocket"
)

type IMonitorController interface {
	RegisterRoutes(r fiber.Router)
	ThreadHistory(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
}

type monitorController struct {
	hub     *websocket.Hub
	history *service.HistoryService
	monitor *service.MonitorService
}

func NewMonitorController(hub *websocket.Hub, history *service.HistoryService, monitor *service.MonitorService) IMonitorController {
	return &monitorController{
		hub:     hub,
		history: history,
		monitor: monitor,
	}
}

func (c *monitorController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/monitor", serverutils.JwtMiddleware)
	h.Get("/stats", c.Stats)
	h.Get("/threads/:threadId/messages", c.ThreadHistory)

	h.Use("/feed", func(ctx *fiber.Ctx) error {
		if fiberws.IsWebSocketUpgrade(ctx) {
			return ctx.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	h.Get("/feed", fiberws.New(func(conn *fiberws.Conn) {
		operatorID, err := uuid.Parse(conn.Locals("operator_id").(string))
		if err != nil {
			conn.Close()
			return
		}
		websocket.ServeWs(c.hub, conn, operatorID)
	}))
}

// Stats returns the running turn counters for the dashboard header.
func (c *monitorController) Stats(ctx *fiber.Ctx) error {
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"data":    c.monitor.Stats(),
	})
}

// ThreadHistory returns the recent exchanges of one thread for the
// dashboard drill-down.
func (c *monitorController) ThreadHistory(ctx *fiber.Ctx) error {
	threadId := ctx.Params("threadId")
	limit := ctx.QueryInt("limit", 20)

	messages, err := c.history.RecentExchanges(ctx.Context(), threadId, limit)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"code":    500,
			"message": err.Error(),
		})
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"data":    messages,
	})
}
