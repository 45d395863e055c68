// Package llm provides chat completion clients for the interviewer and the
// analysis features.
package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hiready/hiready-server/internal/model"
)

const (
	ProviderOpenAI = "openai"
	ProviderVertex = "vertex"
)

// Options configures a chat completion client.
type Options struct {
	Provider    string
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32

	Project         string
	Location        string
	CredentialsFile string

	HTTPClient *http.Client
}

// Client is a chat completer that holds resources.
type Client interface {
	model.ChatCompleter
	Close() error
}

// New returns the client for opts.Provider.
func New(ctx context.Context, opts Options) (Client, error) {
	switch opts.Provider {
	case "", ProviderOpenAI:
		return NewOpenAI(opts), nil
	case ProviderVertex:
		return NewVertexAI(ctx, opts)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", opts.Provider)
	}
}
