package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/hiready/hiready-server/internal/apperrors"
	"github.com/hiready/hiready-server/internal/logger"
	"github.com/hiready/hiready-server/internal/model"
	"github.com/hiready/hiready-server/internal/service"
)

// SessionCookie is the name of the cookie holding the session token.
const SessionCookie = "sessiontoken"

// AuthService defines signup, login and session lookup.
type AuthService interface {
	Signup(ctx context.Context, email, password string) (service.AuthResult, error)
	Login(ctx context.Context, email, password string) (service.AuthResult, error)
	Session(ctx context.Context, claims model.SessionClaims) (model.PublicUser, error)
	SessionTTL() time.Duration
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is returned by signup, login and session.
type UserResponse struct {
	OK      bool             `json:"ok"`
	Message string           `json:"message,omitempty"`
	User    model.PublicUser `json:"user"`
}

// Auth handles the cookie session endpoints.
type Auth struct {
	base
	authService  AuthService
	secureCookie bool
}

// NewAuth creates a new Auth handler. secureCookie marks the session cookie
// HTTPS-only.
func NewAuth(authService AuthService, contextManager model.ContextManager, secureCookie bool, logger *logger.Logger) *Auth {
	return &Auth{
		base:         base{contextManager: contextManager, logger: logger},
		authService:  authService,
		secureCookie: secureCookie,
	}
}

// Signup creates an account and starts a session.
func (h *Auth) Signup(c *fiber.Ctx) error {
	var req credentials
	if err := parseBody(c, &req); err != nil {
		return h.fail(c, err)
	}

	res, err := h.authService.Signup(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return h.fail(c, err)
	}

	h.setSession(c, res.Token)
	return c.Status(http.StatusCreated).JSON(UserResponse{OK: true, Message: "Account created successfully", User: res.User})
}

// Login checks credentials and starts a session.
func (h *Auth) Login(c *fiber.Ctx) error {
	var req credentials
	if err := parseBody(c, &req); err != nil {
		return h.fail(c, err)
	}

	res, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return h.fail(c, err)
	}

	h.setSession(c, res.Token)
	return c.JSON(UserResponse{OK: true, Message: "Logged in successfully", User: res.User})
}

// Session returns the user of a valid session.
func (h *Auth) Session(c *fiber.Ctx) error {
	claims, ok := h.contextManager.GetClaimsFromContext(c.UserContext())
	if !ok {
		return h.fail(c, apperrors.NewErrMissingSessionToken())
	}

	user, err := h.authService.Session(c.UserContext(), claims)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(UserResponse{OK: true, User: user})
}

// Logout clears the session cookie.
func (h *Auth) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(fiber.Map{"ok": true, "message": "Logged out"})
}

func (h *Auth) setSession(c *fiber.Ctx, token string) {
	ttl := h.authService.SessionTTL()
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		Expires:  time.Now().Add(ttl),
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
