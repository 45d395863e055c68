package retry

import (
	"context"
	"errors"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hiready/hiready-server/internal/model"
)

var fastPolicy = Policy{Attempts: 3, BaseDelay: time.Millisecond}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy, func(context.Context) error {
		calls++
		if calls < 3 {
			return &model.UpstreamError{Service: "llm", StatusCode: http.StatusServiceUnavailable, Err: errors.New("busy")}
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_GivesUpAfterAttempts(t *testing.T) {
	rateLimited := &model.UpstreamError{Service: "llm", StatusCode: http.StatusTooManyRequests, Err: errors.New("slow down")}
	calls := 0
	err := Do(context.Background(), fastPolicy, func(context.Context) error {
		calls++
		return rateLimited
	})

	assert.ErrorIs(t, err, rateLimited)
	assert.Equal(t, 3, calls)
}

func TestDo_DoesNotRetryPermanentErrors(t *testing.T) {
	unauthorized := &model.UpstreamError{Service: "llm", StatusCode: http.StatusUnauthorized, Err: errors.New("bad key")}
	calls := 0
	err := Do(context.Background(), fastPolicy, func(context.Context) error {
		calls++
		return unauthorized
	})

	assert.ErrorIs(t, err, unauthorized)
	assert.Equal(t, 1, calls)
}

func TestDo_SingleAttempt(t *testing.T) {
	calls := 0
	_ = Do(context.Background(), Policy{Attempts: 0}, func(context.Context) error {
		calls++
		return &net.OpError{Op: "dial", Err: errors.New("refused")}
	})

	assert.Equal(t, 1, calls)
}

func TestDo_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, Policy{Attempts: 5, BaseDelay: time.Hour}, func(context.Context) error {
		calls++
		cancel()
		return &model.UpstreamError{Service: "llm", StatusCode: http.StatusBadGateway, Err: errors.New("bad gateway")}
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("boom"), false},
		{"canceled", context.Canceled, false},
		{"429", &model.UpstreamError{StatusCode: 429, Err: errors.New("x")}, true},
		{"500", &model.UpstreamError{StatusCode: 500, Err: errors.New("x")}, true},
		{"400", &model.UpstreamError{StatusCode: 400, Err: errors.New("x")}, false},
		{"network", &net.OpError{Op: "dial", Err: errors.New("refused")}, true},
		{"upstream network", &model.UpstreamError{Err: &net.DNSError{Err: "no such host", IsNotFound: true}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}
