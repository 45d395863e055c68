package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hiready/hiready-server/internal/api/http/handler"
	"github.com/hiready/hiready-server/internal/apperrors"
	"github.com/hiready/hiready-server/internal/logger"
	"github.com/hiready/hiready-server/internal/model"
)

// TokenVerifier checks a session token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (model.SessionClaims, error)
}

// Authenticate validates the session cookie and puts its claims on the
// request context.
type Authenticate struct {
	tokens         TokenVerifier
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(tokens TokenVerifier, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{tokens: tokens, contextManager: contextManager, logger: logger}
}

// Handle rejects requests without a valid session with 401.
func (m *Authenticate) Handle(c *fiber.Ctx) error {
	token := c.Cookies(handler.SessionCookie)
	if token == "" {
		return handler.WriteError(c, m.logger, apperrors.NewErrMissingSessionToken())
	}

	claims, err := m.tokens.Verify(token)
	if err != nil {
		m.logger.Debug("Authenticate middleware: rejected session token",
			"path", c.Path(),
			"error", err.Error())
		return handler.WriteError(c, m.logger, apperrors.NewErrInvalidSessionToken())
	}

	c.SetUserContext(m.contextManager.SetClaimsToContext(c.UserContext(), claims))
	return c.Next()
}
