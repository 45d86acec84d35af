package middleware

import (
	"log/slog"
	"runtime/debug"

	"github.com/gofiber/fiber/v2"

	"github.com/Brownie44l1/emotion-detector/internal/domain"
)

// Recover turns a handler panic into a 500 response. The stack is logged at
// debug level only.
func Recover(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			logger.Error("panic recovered",
				slog.Any("panic", r),
				slog.String("method", c.Method()),
				slog.String("path", c.Path()),
				slog.String("request_id", c.GetRespHeader(fiber.HeaderXRequestID)),
			)
			logger.Debug("panic stack", slog.String("stack", string(debug.Stack())))

			err = c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": fiber.Map{
					"code":    domain.ErrInternal.Code,
					"message": domain.ErrInternal.Message,
				},
			})
		}()
		return c.Next()
	}
}
