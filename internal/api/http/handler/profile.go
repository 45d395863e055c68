package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/hiready/hiready-server/internal/logger"
	"github.com/hiready/hiready-server/internal/model"
)

type ProfileService interface {
	Get(ctx context.Context, userID uuid.UUID) (model.User, error)
	Update(ctx context.Context, userID uuid.UUID, upd model.ProfileUpdate) (model.User, error)
}

type profileResponse struct {
	OK      bool       `json:"ok"`
	Profile model.User `json:"profile"`
}

type Profile struct {
	base
	profileService ProfileService
}

func NewProfile(profileService ProfileService, contextManager model.ContextManager, logger *logger.Logger) *Profile {
	return &Profile{
		base:           base{contextManager: contextManager, logger: logger},
		profileService: profileService,
	}
}

func (h *Profile) Get(c *fiber.Ctx) error {
	owner, err := h.ownerID(c)
	if err != nil {
		return h.fail(c, err)
	}

	user, err := h.profileService.Get(c.UserContext(), owner)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(profileResponse{OK: true, Profile: user})
}

// Update changes only the fields present in the body.
func (h *Profile) Update(c *fiber.Ctx) error {
	owner, err := h.ownerID(c)
	if err != nil {
		return h.fail(c, err)
	}

	var upd model.ProfileUpdate
	if err := parseBody(c, &upd); err != nil {
		return h.fail(c, err)
	}

	user, err := h.profileService.Update(c.UserContext(), owner, upd)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(profileResponse{OK: true, Profile: user})
}
