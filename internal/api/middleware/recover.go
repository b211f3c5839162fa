package middleware

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// Recover converts a handler panic into a 500 response. The process
// hosts every live websocket session, so one crashing REST request must
// never take the whole notification hub down with it.
func Recover(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		defer func() {
			if r := recover(); r != nil {
				requestID, _ := c.Locals("requestid").(string)
				logger.Error("panic recovered",
					slog.Any("panic", r),
					slog.String("method", c.Method()),
					slog.String("path", c.Path()),
					slog.String("request_id", requestID),
				)

				_ = c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": fiber.Map{
						"code":    "INTERNAL_ERROR",
						"message": "An unexpected error occurred",
					},
				})
			}
		}()
		return c.Next()
	}
}
