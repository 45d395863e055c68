// Package retry runs calls to external collaborators with bounded
// exponential backoff.
package retry

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	goretry "github.com/sethvargo/go-retry"

	"github.com/hiready/hiready-server/internal/model"
)

// Policy bounds a retry loop. Attempts counts the first call.
type Policy struct {
	Attempts  int
	BaseDelay time.Duration
}

// DefaultPolicy makes three attempts, waiting 1s then 2s between them.
func DefaultPolicy() Policy {
	return Policy{Attempts: 3, BaseDelay: time.Second}
}

// Do calls fn until it succeeds, returns a non-retryable error, the policy
// is exhausted or ctx is done. The last error from fn is returned.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	retries := p.Attempts - 1
	if retries < 0 {
		retries = 0
	}
	base := p.BaseDelay
	if base <= 0 {
		base = time.Millisecond
	}

	backoff := goretry.WithMaxRetries(uint64(retries), goretry.NewExponential(base))

	return goretry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if err != nil && IsRetryable(err) {
			return goretry.RetryableError(err)
		}
		return err
	})
}

// IsRetryable reports whether err is a transient collaborator failure:
// a network error, a rate limit or a 5xx answer.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var upstream *model.UpstreamError
	if errors.As(err, &upstream) && upstream.StatusCode != 0 {
		return upstream.StatusCode == http.StatusTooManyRequests || upstream.StatusCode >= http.StatusInternalServerError
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
