package serverutils

import (
	"log"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware catches errors escaping handlers and converts them
// into a uniform JSON payload. Internal details never reach the client.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		if fiberErr, ok := err.(*fiber.Error); ok {
			return ctx.Status(fiberErr.Code).JSON(fiber.Map{"message": fiberErr.Message})
		}

		log.Printf("[ERROR] Unhandled handler error: %v", err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
		})
	}
}
