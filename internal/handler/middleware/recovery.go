package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// RecoveryMiddleware recovers from panics and returns a generic 500.
// The panic value and stack only go to the log.
func RecoveryMiddleware(logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error().
					Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
					Str("method", c.Method()).
					Str("path", c.Path()).
					Str("panic", fmt.Sprintf("%v", r)).
					Bytes("stack", debug.Stack()).
					Msg("recovered from panic")

				c.Response().Header.Del(fiber.HeaderContentDisposition)
				err = c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "Internal server error",
				})
			}
		}()

		return c.Next()
	}
}
