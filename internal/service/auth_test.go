package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hiready/hiready-server/internal/apperrors"
	"github.com/hiready/hiready-server/internal/mocks"
	"github.com/hiready/hiready-server/internal/model"
	"github.com/hiready/hiready-server/internal/password"
	"github.com/hiready/hiready-server/internal/testutil"
)

const testTTL = 7 * 24 * time.Hour

func newTestAuth(t *testing.T) (*Auth, *mocks.UserStore, *mocks.TokenManager) {
	t.Helper()
	users := mocks.NewUserStore(t)
	tokens := mocks.NewTokenManager(t)
	a := NewAuth(users, password.NewHasher(1, 1024, 1), tokens, testTTL, testutil.MakeNoopLogger())
	return a, users, tokens
}

func requireAPIError(t *testing.T, err error, kind apperrors.Kind) *apperrors.APIError {
	t.Helper()
	apiErr, ok := apperrors.As(err)
	require.True(t, ok, "expected APIError, got %v", err)
	assert.Equal(t, kind, apiErr.Kind)
	return apiErr
}

func TestAuth_Signup_Success(t *testing.T) {
	a, users, tokens := newTestAuth(t)
	ctx := context.Background()

	users.On("GetByEmail", mock.Anything, "a@b.co").Return(model.User{}, model.ErrNotFound)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u model.User) bool {
		return u.Email == "a@b.co" && u.PasswordHash != "" && u.PasswordHash != "secret1"
	})).Return(model.User{ID: uuid.New(), Email: "a@b.co"}, nil)
	tokens.On("Issue", mock.MatchedBy(func(s model.Subject) bool { return s.Email == "a@b.co" }), testTTL).
		Return("tok", nil)

	res, err := a.Signup(ctx, "a@b.co", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "a@b.co", res.User.Email)
	assert.NotEqual(t, uuid.Nil, res.User.ID)
	assert.Equal(t, "tok", res.Token)
}

func TestAuth_Signup_Validation(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "empty email", email: "", password: "secret1"},
		{name: "malformed email", email: "not-an-email", password: "secret1"},
		{name: "display name form", email: "Bob <b@c.io>", password: "secret1"},
		{name: "short password", email: "a@b.co", password: "12345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _, _ := newTestAuth(t)
			_, err := a.Signup(context.Background(), tt.email, tt.password)
			requireAPIError(t, err, apperrors.KindValidation)
		})
	}
}

func TestAuth_Signup_EmailTaken(t *testing.T) {
	t.Run("found by lookup", func(t *testing.T) {
		a, users, _ := newTestAuth(t)
		users.On("GetByEmail", mock.Anything, "a@b.co").Return(model.User{ID: uuid.New(), Email: "a@b.co"}, nil)

		_, err := a.Signup(context.Background(), "a@b.co", "secret1")
		apiErr := requireAPIError(t, err, apperrors.KindDuplicate)
		assert.Equal(t, "User already exists", apiErr.Message)
	})

	t.Run("lost race on create", func(t *testing.T) {
		a, users, _ := newTestAuth(t)
		users.On("GetByEmail", mock.Anything, "a@b.co").Return(model.User{}, model.ErrNotFound)
		users.On("Create", mock.Anything, mock.Anything).Return(model.User{}, model.ErrAlreadyExists)

		_, err := a.Signup(context.Background(), "a@b.co", "secret1")
		requireAPIError(t, err, apperrors.KindDuplicate)
	})
}

func TestAuth_Signup_StoreFailure(t *testing.T) {
	a, users, _ := newTestAuth(t)
	users.On("GetByEmail", mock.Anything, "a@b.co").Return(model.User{}, errors.New("db down"))

	_, err := a.Signup(context.Background(), "a@b.co", "secret1")
	require.Error(t, err)
	_, isAPI := apperrors.As(err)
	assert.False(t, isAPI)
}

func TestAuth_Login(t *testing.T) {
	hash, err := password.NewHasher(1, 1024, 1).Hash("secret1")
	require.NoError(t, err)
	user := model.User{ID: uuid.New(), Email: "a@b.co", PasswordHash: hash}

	t.Run("success", func(t *testing.T) {
		a, users, tokens := newTestAuth(t)
		users.On("GetByEmail", mock.Anything, "a@b.co").Return(user, nil)
		tokens.On("Issue", model.Subject{UserID: user.ID, Email: user.Email}, testTTL).Return("tok", nil)

		res, err := a.Login(context.Background(), "a@b.co", "secret1")
		require.NoError(t, err)
		assert.Equal(t, user.Public(), res.User)
		assert.Equal(t, "tok", res.Token)
	})

	t.Run("wrong password and unknown email look the same", func(t *testing.T) {
		a, users, _ := newTestAuth(t)
		users.On("GetByEmail", mock.Anything, "a@b.co").Return(user, nil)
		users.On("GetByEmail", mock.Anything, "x@b.co").Return(model.User{}, model.ErrNotFound)

		_, errWrong := a.Login(context.Background(), "a@b.co", "nope-nope")
		_, errUnknown := a.Login(context.Background(), "x@b.co", "secret1")

		wrong := requireAPIError(t, errWrong, apperrors.KindValidation)
		unknown := requireAPIError(t, errUnknown, apperrors.KindValidation)
		assert.Equal(t, wrong.Message, unknown.Message)
		assert.Equal(t, "Invalid credentials", wrong.Message)
	})

	t.Run("unreadable hash is a mismatch", func(t *testing.T) {
		a, users, _ := newTestAuth(t)
		broken := user
		broken.PasswordHash = "plain"
		users.On("GetByEmail", mock.Anything, "a@b.co").Return(broken, nil)

		_, err := a.Login(context.Background(), "a@b.co", "secret1")
		requireAPIError(t, err, apperrors.KindValidation)
	})

	t.Run("missing fields", func(t *testing.T) {
		a, _, _ := newTestAuth(t)
		_, err := a.Login(context.Background(), "", "")
		requireAPIError(t, err, apperrors.KindValidation)
	})
}

type countingHasher struct {
	PasswordHasher
	verified []string
}

func (h *countingHasher) Verify(raw, encoded string) (bool, error) {
	h.verified = append(h.verified, encoded)
	return h.PasswordHasher.Verify(raw, encoded)
}

func TestAuth_Login_UnknownEmailStillVerifies(t *testing.T) {
	users := mocks.NewUserStore(t)
	hasher := &countingHasher{PasswordHasher: password.NewHasher(1, 1024, 1)}
	a := NewAuth(users, hasher, mocks.NewTokenManager(t), testTTL, testutil.MakeNoopLogger())
	users.On("GetByEmail", mock.Anything, "x@b.co").Return(model.User{}, model.ErrNotFound)

	_, err := a.Login(context.Background(), "x@b.co", "secret1")
	requireAPIError(t, err, apperrors.KindValidation)
	_, err = a.Login(context.Background(), "x@b.co", "secret2")
	requireAPIError(t, err, apperrors.KindValidation)

	require.Len(t, hasher.verified, 2)
	assert.NotEmpty(t, hasher.verified[0])
	assert.Equal(t, hasher.verified[0], hasher.verified[1])
}

func TestAuth_Session(t *testing.T) {
	user := model.User{ID: uuid.New(), Email: "a@b.co"}
	claims := model.SessionClaims{Subject: model.Subject{UserID: user.ID, Email: user.Email}}

	t.Run("known user", func(t *testing.T) {
		a, users, _ := newTestAuth(t)
		users.On("GetByID", mock.Anything, user.ID).Return(user, nil)

		got, err := a.Session(context.Background(), claims)
		require.NoError(t, err)
		assert.Equal(t, user.Public(), got)
	})

	t.Run("deleted user", func(t *testing.T) {
		a, users, _ := newTestAuth(t)
		users.On("GetByID", mock.Anything, user.ID).Return(model.User{}, model.ErrNotFound)

		_, err := a.Session(context.Background(), claims)
		requireAPIError(t, err, apperrors.KindAuthentication)
	})
}

func TestProfile_GetAndUpdate(t *testing.T) {
	users := mocks.NewUserStore(t)
	p := NewProfile(users, testutil.MakeNoopLogger())
	id := uuid.New()
	name := "Ada"

	users.On("GetByID", mock.Anything, id).Return(model.User{ID: id, Email: "a@b.co"}, nil).Once()
	users.On("UpdateProfile", mock.Anything, id, model.ProfileUpdate{Name: &name}).
		Return(model.User{ID: id, Email: "a@b.co", Profile: model.Profile{Name: name}}, nil).Once()
	users.On("GetByID", mock.Anything, mock.Anything).Return(model.User{}, model.ErrNotFound).Once()

	got, err := p.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "a@b.co", got.Email)

	updated, err := p.Update(context.Background(), id, model.ProfileUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Ada", updated.Name)

	_, err = p.Get(context.Background(), uuid.New())
	requireAPIError(t, err, apperrors.KindNotFound)
}
