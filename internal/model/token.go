package model

import (
	"time"

	"github.com/google/uuid"
)

// Subject identifies who a session token is issued to.
type Subject struct {
	UserID uuid.UUID
	Email  string
}

// SessionClaims is the verified content of a session token.
type SessionClaims struct {
	Subject
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenManager issues and verifies signed session tokens.
type TokenManager interface {
	Issue(subject Subject, ttl time.Duration) (string, error)
	Verify(token string) (SessionClaims, error)
}
