package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"docserver/internal/logging"
)

// Logger is a middleware that logs each HTTP request as one entry.
// Fields:
// - request_id (taken from context locals set by RequestID middleware)
// - method
// - path
// - status
// - latency (in milliseconds, as float)
func Logger(log logrus.FieldLogger) fiber.Handler {
	log = logging.Component(log, "http")

	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		// A handler error is rendered by the app's ErrorHandler after this
		// middleware returns, so take the status from the error itself.
		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}

		rid, _ := c.Locals(RequestIDLocalKey).(string)
		entry := log.WithFields(logrus.Fields{
			"request_id": rid,
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     status,
			"latency":    float64(time.Since(start).Microseconds()) / 1000,
		})

		switch {
		case status >= fiber.StatusInternalServerError:
			entry.Error("request")
		case status >= fiber.StatusBadRequest:
			entry.Warn("request")
		default:
			entry.Info("request")
		}

		return err
	}
}
