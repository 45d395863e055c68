package interview

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/hiready/hiready-server/internal/model"
)

// Browser media capture error names reported by clients.
const (
	CaptureNotAllowed  = "NotAllowedError"
	CaptureNotFound    = "NotFoundError"
	CaptureNotReadable = "NotReadableError"
)

const (
	msgMicDenied    = "Microphone access denied. Please grant permission and try again."
	msgMicMissing   = "No microphone found. Please connect a microphone and try again."
	msgMicBusy      = "Microphone is being used by another application."
	msgInvalidKey   = "Invalid API key. Please check your configuration."
	msgRateLimited  = "API rate limit exceeded. Please try again later."
	msgNetwork      = "Network error. Please check your internet connection."
	msgUnexpected   = "An unexpected error occurred."
	msgTimedOut     = "The request timed out. Please try again."
	msgSessionEnded = "The interview has already ended."
)

// CaptureError is a microphone failure reported by the client.
type CaptureError struct {
	Name    string
	Message string
}

func (e *CaptureError) Error() string {
	if e.Message == "" {
		return e.Name
	}
	return e.Name + ": " + e.Message
}

// ClassifyError turns a collaborator or capture failure into a message a
// candidate can act on. Unknown errors keep their own text.
func ClassifyError(err error) string {
	if err == nil {
		return ""
	}

	var capErr *CaptureError
	if errors.As(err, &capErr) {
		switch capErr.Name {
		case CaptureNotAllowed:
			return msgMicDenied
		case CaptureNotFound:
			return msgMicMissing
		case CaptureNotReadable:
			return msgMicBusy
		}
		if capErr.Message != "" {
			return capErr.Message
		}
		return msgUnexpected
	}

	if errors.Is(err, ErrEnded) {
		return msgSessionEnded
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return msgTimedOut
	}

	var upstream *model.UpstreamError
	if errors.As(err, &upstream) {
		switch upstream.StatusCode {
		case http.StatusUnauthorized:
			return msgInvalidKey
		case http.StatusTooManyRequests:
			return msgRateLimited
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return msgNetwork
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "401"):
		return msgInvalidKey
	case strings.Contains(msg, "429"):
		return msgRateLimited
	case strings.Contains(strings.ToLower(msg), "network"):
		return msgNetwork
	case msg == "":
		return msgUnexpected
	}

	if upstream != nil && upstream.Err != nil && upstream.Err.Error() != "" {
		return upstream.Err.Error()
	}
	return msg
}
