package middleware

import (
	"time"

	"todo/internal/logger"

	"github.com/gofiber/fiber/v2"
)

// RequestIDKey is the fiber.Ctx local the requestid middleware writes to.
const RequestIDKey = "requestid"

// RequestLogger logs the start and completion of every request. It must run
// after the requestid middleware so the id ends up in the request context.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		if id, ok := c.Locals(RequestIDKey).(string); ok && id != "" {
			c.SetUserContext(logger.ContextWithRequestID(c.UserContext(), id))
		}
		ctx := c.UserContext()

		logger.InfoContext(ctx, "request started",
			"method", c.Method(),
			"path", c.Path(),
			"ip", c.IP(),
		)

		// Render chain errors now so the logged status is the one sent.
		if err := c.Next(); err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		logFunc := logger.InfoContext
		if status >= fiber.StatusInternalServerError {
			logFunc = logger.ErrorContext
		} else if status >= fiber.StatusBadRequest {
			logFunc = logger.WarnContext
		}

		logFunc(ctx, "request completed",
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency", time.Since(start).String(),
			"bytes", len(c.Response().Body()),
		)
		return nil
	}
}
