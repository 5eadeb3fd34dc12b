package logger

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// FiberMiddleware logs each request with the shared schema and attaches
// the request id (set by the requestid middleware) to the handler
// context, so service-level logs can be correlated.
func FiberMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			c.SetUserContext(WithRequestID(c.UserContext(), rid))
		}

		err := c.Next()
		latency := time.Since(start)

		attrs := []any{
			"status", c.Response().StatusCode(),
			"method", c.Method(),
			"path", c.OriginalURL(),
			"ip", c.IP(),
			"latency_ms", float64(latency.Microseconds()) / 1000.0,
		}

		if err != nil {
			slog.Error("http request", append(attrs, "err", err.Error())...)
			return err
		}
		slog.Info("http request", attrs...)
		return nil
	}
}
