package controller

import (
	"github.com/gofiber/fiber/v2"

	"chat-agent-be/internal/service"
	"chat-agent-be/pkg/messenger"
)

type IWebhookController interface {
	RegisterRoutes(r fiber.Router)
	Verify(ctx *fiber.Ctx) error
	Receive(ctx *fiber.Ctx) error
}

type webhookController struct {
	ingress *service.IngressService
}

func NewWebhookController(ingress *service.IngressService) IWebhookController {
	return &webhookController{ingress: ingress}
}

func (c *webhookController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/webhook")
	h.Get("/", c.Verify)
	h.Post("/", c.Receive)
}

// Verify answers the platform subscription handshake.
func (c *webhookController) Verify(ctx *fiber.Ctx) error {
	mode := ctx.Query("hub.mode")
	token := ctx.Query("hub.verify_token")
	challenge := ctx.Query("hub.challenge")

	echo, ok := c.ingress.VerifySubscription(mode, token, challenge)
	if !ok {
		return ctx.Status(fiber.StatusForbidden).SendString("verification failed")
	}
	return ctx.SendString(echo)
}

// Receive accepts a webhook delivery. Always 200: the platform retries
// non-2xx deliveries and everything downstream is asynchronous anyway.
func (c *webhookController) Receive(ctx *fiber.Ctx) error {
	var payload messenger.WebhookPayload
	if err := ctx.BodyParser(&payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"code":    400,
			"message": "malformed payload",
		})
	}

	if err := c.ingress.ProcessWebhook(ctx.Context(), &payload); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"code":    500,
			"message": err.Error(),
		})
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
	})
}
