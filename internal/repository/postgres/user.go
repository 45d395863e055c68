package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hiready/hiready-server/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

type UserRepository struct {
	db  DBTX
	now func() time.Time
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{
		db:  db,
		now: time.Now,
	}
}

const userColumns = `id, email, password_hash, name, phone, country, bio, role, avatar_url, created_at, updated_at`

func scanUser(row scanner) (model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash,
		&u.Name, &u.Phone, &u.Country, &u.Bio, &u.Role, &u.AvatarURL,
		&u.CreatedAt, &u.UpdatedAt,
	)
	return u, err
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if err = mapError(err); err == model.ErrNotFound {
			return model.User{}, err
		}
		return model.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err = mapError(err); err == model.ErrNotFound {
			return model.User{}, err
		}
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user, nil
}

// Create inserts user. A taken email yields model.ErrAlreadyExists.
func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	query := `INSERT INTO users (` + userColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			  RETURNING ` + userColumns

	saved, err := scanUser(r.db.QueryRowContext(ctx, query,
		user.ID, user.Email, user.PasswordHash,
		user.Name, user.Phone, user.Country, user.Bio, user.Role, user.AvatarURL,
		user.CreatedAt, user.UpdatedAt,
	))
	if err != nil {
		if err = mapError(err); err == model.ErrAlreadyExists {
			return model.User{}, err
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return saved, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, upd model.ProfileUpdate) (model.User, error) {
	query := `UPDATE users SET
				name = COALESCE($2, name),
				phone = COALESCE($3, phone),
				country = COALESCE($4, country),
				bio = COALESCE($5, bio),
				role = COALESCE($6, role),
				avatar_url = COALESCE($7, avatar_url),
				updated_at = $8
			  WHERE id = $1
			  RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRowContext(ctx, query,
		id, upd.Name, upd.Phone, upd.Country, upd.Bio, upd.Role, upd.AvatarURL, r.now().UTC(),
	))
	if err != nil {
		if err = mapError(err); err == model.ErrNotFound {
			return model.User{}, err
		}
		return model.User{}, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}
