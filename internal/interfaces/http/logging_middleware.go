package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/maestral4ik/warehouse1/pkg/logger"
)

// RequestLogger registra cada petición con método, ruta, estado y duración.
// Con requestid montado antes, incluye el X-Request-ID de la respuesta.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		ev := log.Info()
		if status >= fiber.StatusInternalServerError {
			ev = log.Error()
		} else if status >= fiber.StatusBadRequest {
			ev = log.Warn()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("took", time.Since(start)).
			Str("user_id", GetUserID(c)).
			Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
			Msg("http")
		return err
	}
}
