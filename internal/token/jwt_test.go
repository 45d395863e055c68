package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiready/hiready-server/internal/model"
)

func TestJWT_Roundtrip(t *testing.T) {
	j := NewJWT("secret")
	subject := model.Subject{UserID: uuid.New(), Email: "a@x.com"}

	tok, err := j.Issue(subject, time.Hour)
	require.NoError(t, err)

	claims, err := j.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, subject, claims.Subject)
	assert.WithinDuration(t, claims.IssuedAt.Add(time.Hour), claims.ExpiresAt, time.Second)
}

func TestJWT_Verify_Failures(t *testing.T) {
	subject := model.Subject{UserID: uuid.New(), Email: "a@x.com"}

	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	expired := &JWT{secretKey: "secret", now: func() time.Time { return issued }}
	expiredToken, err := expired.Issue(subject, time.Hour)
	require.NoError(t, err)

	otherKey, err := NewJWT("other").Issue(subject, time.Hour)
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: subject.UserID}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"malformed", "not-a-token"},
		{"empty", ""},
		{"signature mismatch", otherKey},
		{"expired", expiredToken},
		{"none algorithm", noneToken},
	}

	j := NewJWT("secret")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := j.Verify(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestJWT_Verify_MissingUserID(t *testing.T) {
	j := NewJWT("secret")
	tok, err := j.Issue(model.Subject{Email: "a@x.com"}, time.Hour)
	require.NoError(t, err)

	_, err = j.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
