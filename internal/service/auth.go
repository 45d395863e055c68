package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hiready/hiready-server/internal/apperrors"
	"github.com/hiready/hiready-server/internal/logger"
	"github.com/hiready/hiready-server/internal/model"
)

const minPasswordLength = 6

// PasswordHasher hashes and checks account passwords.
type PasswordHasher interface {
	Hash(raw string) (string, error)
	Verify(raw, encoded string) (bool, error)
}

// AuthResult is returned by Signup and Login. Token is only ever placed in
// the session cookie.
type AuthResult struct {
	User  model.PublicUser
	Token string
}

type Auth struct {
	userStore  model.UserStore
	hasher     PasswordHasher
	tokens     model.TokenManager
	sessionTTL time.Duration
	logger     *logger.Logger
	now        func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewAuth(
	userStore model.UserStore,
	hasher PasswordHasher,
	tokens model.TokenManager,
	sessionTTL time.Duration,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		userStore:  userStore,
		hasher:     hasher,
		tokens:     tokens,
		sessionTTL: sessionTTL,
		logger:     logger,
		now:        time.Now,
	}
}

// SessionTTL is the lifetime of issued tokens.
func (a *Auth) SessionTTL() time.Duration {
	return a.sessionTTL
}

func (a *Auth) Signup(ctx context.Context, email, password string) (AuthResult, error) {
	a.logger.Debug("Auth service: starting signup",
		"email", email)

	if err := validateCredentials(email, password); err != nil {
		return AuthResult{}, err
	}

	existing, err := a.userStore.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		a.logger.Error("Auth service: failed to get user by email",
			"email", email,
			"error", err.Error())
		return AuthResult{}, fmt.Errorf("failed to get user by email: %w", err)
	}
	if existing.ID != uuid.Nil {
		a.logger.Info("Auth service: user already exists",
			"email", email)
		return AuthResult{}, apperrors.NewErrEmailIsTaken()
	}

	hash, err := a.hasher.Hash(password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := a.now().UTC()
	user, err := a.userStore.Create(ctx, model.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if errors.Is(err, model.ErrAlreadyExists) {
		return AuthResult{}, apperrors.NewErrEmailIsTaken()
	}
	if err != nil {
		a.logger.Error("Auth service: failed to create user",
			"email", email,
			"error", err.Error())
		return AuthResult{}, fmt.Errorf("failed to create user: %w", err)
	}

	result, err := a.issue(user)
	if err != nil {
		return AuthResult{}, err
	}

	a.logger.Info("Auth service: user signed up",
		"user_id", user.ID)

	return result, nil
}

// Login fails with the same error for unknown emails and wrong passwords.
func (a *Auth) Login(ctx context.Context, email, password string) (AuthResult, error) {
	a.logger.Debug("Auth service: starting login",
		"email", email)

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return AuthResult{}, apperrors.NewErrValidation("Email and password are required")
	}

	user, err := a.userStore.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		a.logger.Info("Auth service: login for unknown email",
			"email", email)
		a.verifyDummy(password)
		return AuthResult{}, apperrors.NewErrInvalidCredentials()
	}
	if err != nil {
		return AuthResult{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	ok, err := a.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		a.logger.Warn("Auth service: stored password hash is unreadable",
			"user_id", user.ID,
			"error", err.Error())
	}
	if !ok {
		a.logger.Info("Auth service: wrong password",
			"user_id", user.ID)
		return AuthResult{}, apperrors.NewErrInvalidCredentials()
	}

	result, err := a.issue(user)
	if err != nil {
		return AuthResult{}, err
	}

	a.logger.Info("Auth service: user logged in",
		"user_id", user.ID)

	return result, nil
}

// Session resolves verified claims to the user they were issued for.
func (a *Auth) Session(ctx context.Context, claims model.SessionClaims) (model.PublicUser, error) {
	user, err := a.userStore.GetByID(ctx, claims.UserID)
	if errors.Is(err, model.ErrNotFound) {
		return model.PublicUser{}, apperrors.NewErrInvalidSessionToken()
	}
	if err != nil {
		return model.PublicUser{}, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user.Public(), nil
}

func (a *Auth) issue(user model.User) (AuthResult, error) {
	token, err := a.tokens.Issue(model.Subject{UserID: user.ID, Email: user.Email}, a.sessionTTL)
	if err != nil {
		a.logger.Error("Auth service: failed to issue session token",
			"user_id", user.ID,
			"error", err.Error())
		return AuthResult{}, fmt.Errorf("failed to issue session token: %w", err)
	}
	return AuthResult{User: user.Public(), Token: token}, nil
}

func validateCredentials(email, password string) error {
	if email == "" {
		return apperrors.NewErrValidation("Email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return apperrors.NewErrValidation("Invalid email address")
	}
	if len(password) < minPasswordLength {
		return apperrors.NewErrValidation(fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	}
	return nil
}

// verifyDummy spends the same key-derivation work as a real check so unknown
// emails cannot be told apart by response time.
func (a *Auth) verifyDummy(password string) {
	a.dummyOnce.Do(func() {
		hash, err := a.hasher.Hash("hiready-unknown-account")
		if err != nil {
			a.logger.Warn("Auth service: failed to prepare dummy hash",
				"error", err.Error())
			return
		}
		a.dummyHash = hash
	})
	_, _ = a.hasher.Verify(password, a.dummyHash)
}
