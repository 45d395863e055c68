// Package handler holds the fiber handlers of the REST API.
package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/hiready/hiready-server/internal/apperrors"
	"github.com/hiready/hiready-server/internal/logger"
	"github.com/hiready/hiready-server/internal/model"
)

// MessageResponse is returned by deletes and other actions without a body.
type MessageResponse struct {
	Message string `json:"message"`
}

// base carries what every authenticated handler needs.
type base struct {
	contextManager model.ContextManager
	logger         *logger.Logger
}

// ownerID returns the user of the current session.
func (b base) ownerID(c *fiber.Ctx) (uuid.UUID, error) {
	claims, ok := b.contextManager.GetClaimsFromContext(c.UserContext())
	if !ok || claims.UserID == uuid.Nil {
		return uuid.Nil, apperrors.NewErrMissingSessionToken()
	}
	return claims.UserID, nil
}

func (b base) fail(c *fiber.Ctx, err error) error {
	return WriteError(c, b.logger, err)
}

// pathID parses the :id parameter. Malformed ids are reported like
// unknown ones.
func pathID(c *fiber.Ctx, entity string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, apperrors.NewErrRecordNotFound(entity)
	}
	return id, nil
}

// parseBody decodes a JSON body. An empty body leaves v untouched.
func parseBody(c *fiber.Ctx, v any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(v); err != nil {
		return apperrors.NewErrValidation("Invalid request body")
	}
	return nil
}
