package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiready/hiready-server/internal/model"
)

var userCols = []string{"id", "email", "password_hash", "name", "phone", "country", "bio", "role", "avatar_url", "created_at", "updated_at"}

func userRow(u model.User) *sqlmock.Rows {
	return sqlmock.NewRows(userCols).AddRow(
		u.ID.String(), u.Email, u.PasswordHash, u.Name, u.Phone, u.Country, u.Bio, u.Role, u.AvatarURL,
		u.CreatedAt, u.UpdatedAt,
	)
}

func TestUserRepository_GetByEmail(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	user := model.User{ID: uuid.New(), Email: "a@x.com", PasswordHash: "hash", CreatedAt: now, UpdatedAt: now}

	tests := []struct {
		name    string
		setup   func(sqlmock.Sqlmock)
		want    model.User
		wantErr error
	}{
		{
			name: "found",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(`SELECT .+ FROM users WHERE email = \$1`).WithArgs("a@x.com").WillReturnRows(userRow(user))
			},
			want: user,
		},
		{
			name: "not found",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(`FROM users WHERE email`).WithArgs("a@x.com").WillReturnError(sql.ErrNoRows)
			},
			wantErr: model.ErrNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			tt.setup(mock)

			got, err := NewUserRepository(db).GetByEmail(ctx, "a@x.com")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("driver failure", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`FROM users WHERE email`).WillReturnError(errors.New("db down"))

		_, err := NewUserRepository(db).GetByEmail(ctx, "a@x.com")
		assert.ErrorContains(t, err, "failed to get user by email: db down")
	})
}

func TestUserRepository_GetByID(t *testing.T) {
	db, mock := newMockDB(t)
	id := uuid.New()
	mock.ExpectQuery(`FROM users WHERE id = \$1`).WithArgs(id).WillReturnError(sql.ErrNoRows)

	_, err := NewUserRepository(db).GetByID(context.Background(), id)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestUserRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	user := model.User{ID: uuid.New(), Email: "a@x.com", PasswordHash: "hash", CreatedAt: now, UpdatedAt: now}

	t.Run("success", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs(user.ID, "a@x.com", "hash", "", "", "", "", "", "", now, now).
			WillReturnRows(userRow(user))

		got, err := NewUserRepository(db).Create(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("duplicate email", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`INSERT INTO users`).WillReturnError(&pgconn.PgError{Code: "23505"})

		_, err := NewUserRepository(db).Create(ctx, user)
		assert.ErrorIs(t, err, model.ErrAlreadyExists)
	})
}

func TestUserRepository_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	id := uuid.New()
	name := "Ada"

	t.Run("partial", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)
		repo.now = func() time.Time { return now }

		updated := model.User{ID: id, Email: "a@x.com", Profile: model.Profile{Name: name}, CreatedAt: now, UpdatedAt: now}
		mock.ExpectQuery(`UPDATE users SET\s+name = COALESCE\(\$2, name\)`).
			WithArgs(id, name, nil, nil, nil, nil, nil, now).
			WillReturnRows(userRow(updated))

		got, err := repo.UpdateProfile(ctx, id, model.ProfileUpdate{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "Ada", got.Name)
	})

	t.Run("missing user", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`UPDATE users`).WillReturnError(sql.ErrNoRows)

		_, err := NewUserRepository(db).UpdateProfile(ctx, id, model.ProfileUpdate{})
		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}
