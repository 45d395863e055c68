package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserStore defines persistence operations for users.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	Create(ctx context.Context, user User) (User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, upd ProfileUpdate) (User, error)
}

// User represents a stored user with its credential and profile.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Profile
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Profile holds optional user-editable attributes.
type Profile struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Country   string `json:"country"`
	Bio       string `json:"bio"`
	Role      string `json:"role"`
	AvatarURL string `json:"avatarUrl"`
}

// ProfileUpdate is a partial profile change. Nil fields are left untouched.
type ProfileUpdate struct {
	Name      *string `json:"name"`
	Phone     *string `json:"phone"`
	Country   *string `json:"country"`
	Bio       *string `json:"bio"`
	Role      *string `json:"role"`
	AvatarURL *string `json:"avatarUrl"`
}

// Apply copies the set fields of upd onto p.
func (p *Profile) Apply(upd ProfileUpdate) {
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Phone != nil {
		p.Phone = *upd.Phone
	}
	if upd.Country != nil {
		p.Country = *upd.Country
	}
	if upd.Bio != nil {
		p.Bio = *upd.Bio
	}
	if upd.Role != nil {
		p.Role = *upd.Role
	}
	if upd.AvatarURL != nil {
		p.AvatarURL = *upd.AvatarURL
	}
}

// PublicUser is the part of a user that is safe to return on auth endpoints.
type PublicUser struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// Public returns the identity fields of u.
func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email}
}
