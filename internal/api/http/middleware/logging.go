package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/hiready/hiready-server/internal/logger"
)

// Logging logs every HTTP request with its status and duration.
type Logging struct {
	logger *logger.Logger
}

// NewLogging creates a new Logging middleware.
func NewLogging(logger *logger.Logger) *Logging {
	return &Logging{logger: logger}
}

// Handle logs method, path, duration and status for each request.
func (l *Logging) Handle(c *fiber.Ctx) error {
	start := time.Now()
	method, path := c.Method(), c.Path()

	l.logger.Info("HTTP request started",
		"method", method,
		"path", path)

	err := c.Next()

	status := c.Response().StatusCode()
	if err != nil {
		// The app error handler has not written the response yet.
		status = http.StatusInternalServerError
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			status = fiberErr.Code
		}
	}

	l.logger.Info("HTTP request completed",
		"method", method,
		"path", path,
		"duration_ms", time.Since(start).Milliseconds(),
		"status", status)

	if err != nil || status >= http.StatusInternalServerError {
		msg := http.StatusText(status)
		if err != nil {
			msg = err.Error()
		}
		l.logger.Error("HTTP request failed",
			"method", method,
			"path", path,
			"error", msg,
			"status", status)
	}

	return err
}
