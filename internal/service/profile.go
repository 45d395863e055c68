package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/hiready/hiready-server/internal/apperrors"
	"github.com/hiready/hiready-server/internal/logger"
	"github.com/hiready/hiready-server/internal/model"
)

type Profile struct {
	userStore model.UserStore
	logger    *logger.Logger
}

func NewProfile(userStore model.UserStore, logger *logger.Logger) *Profile {
	return &Profile{userStore: userStore, logger: logger}
}

func (p *Profile) Get(ctx context.Context, userID uuid.UUID) (model.User, error) {
	user, err := p.userStore.GetByID(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return model.User{}, apperrors.NewErrRecordNotFound("User")
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user, nil
}

// Update changes only the fields set in upd.
func (p *Profile) Update(ctx context.Context, userID uuid.UUID, upd model.ProfileUpdate) (model.User, error) {
	user, err := p.userStore.UpdateProfile(ctx, userID, upd)
	if errors.Is(err, model.ErrNotFound) {
		return model.User{}, apperrors.NewErrRecordNotFound("User")
	}
	if err != nil {
		p.logger.Error("Profile service: failed to update profile",
			"user_id", userID,
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to update profile: %w", err)
	}

	p.logger.Info("Profile service: profile updated",
		"user_id", userID)

	return user, nil
}
