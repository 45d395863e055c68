package handler

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/hiready/hiready-server/internal/apperrors"
	"github.com/hiready/hiready-server/internal/logger"
)

const msgInternal = "Internal server error"

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// WriteError answers with the status and message of an APIError. Any other
// error is logged and hidden behind a generic 500.
func WriteError(c *fiber.Ctx, log *logger.Logger, err error) error {
	if apiErr, ok := apperrors.As(err); ok {
		if apiErr.Kind == apperrors.KindUpstream {
			log.Warn("HTTP handler: upstream failure",
				"path", c.Path(),
				"error", err.Error())
		}
		return c.Status(apiErr.HTTPStatus).JSON(ErrorResponse{Error: apiErr.Message})
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(ErrorResponse{Error: fiberErr.Message})
	}

	log.Error("HTTP handler: request failed",
		"method", c.Method(),
		"path", c.Path(),
		"error", err.Error())
	return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{Error: msgInternal})
}

// ErrorHandler is the fiber fallback for errors that escape handlers, such
// as unknown routes or oversized bodies.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		return WriteError(c, log, err)
	}
}
