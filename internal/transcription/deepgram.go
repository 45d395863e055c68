// Package transcription converts recorded candidate audio to text using the
// Deepgram pre-recorded audio API.
package transcription

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	api "github.com/deepgram/deepgram-go-sdk/v3/pkg/api/listen/v1/rest"
	interfaces "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/interfaces"
	listen "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/listen"

	"github.com/hiready/hiready-server/internal/model"
)

const serviceName = "transcription"

// Options configures a Client. BaseURL overrides the Deepgram host and may
// carry an http:// or https:// scheme.
type Options struct {
	APIKey   string
	BaseURL  string
	Model    string
	Language string
	Timeout  time.Duration
}

// Client calls the Deepgram listen endpoint through the prerecorded SDK client.
type Client struct {
	dg       *api.Client
	model    string
	language string
	timeout  time.Duration
}

var _ model.Transcriber = (*Client)(nil)

// New creates a transcription client. It fails when no API key is available.
func New(opts Options) (*Client, error) {
	m := opts.Model
	if m == "" {
		m = "nova-2"
	}
	lang := opts.Language
	if lang == "" {
		lang = "en"
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	rest := listen.NewREST(opts.APIKey, &interfaces.ClientOptions{
		Host: strings.TrimRight(opts.BaseURL, "/"),
	})
	if rest == nil {
		return nil, errors.New("failed to create deepgram client: missing api key")
	}

	return &Client{dg: api.New(rest), model: m, language: lang, timeout: timeout}, nil
}

// TranscribeFile sends the whole recording and returns the best transcript.
// An empty string means no speech was recognized.
func (c *Client) TranscribeFile(ctx context.Context, audio io.Reader, contentType string) (string, error) {
	if contentType == "" {
		contentType = "audio/webm"
	}
	headers := http.Header{}
	headers.Set("Content-Type", contentType)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	ctx = interfaces.WithCustomHeaders(ctx, headers)

	res, err := c.dg.FromStream(ctx, audio, &interfaces.PreRecordedTranscriptionOptions{
		Model:       c.model,
		Language:    c.language,
		SmartFormat: true,
		Punctuate:   true,
	})
	if err != nil {
		return "", upstreamError(err)
	}

	if res.Results == nil || len(res.Results.Channels) == 0 || len(res.Results.Channels[0].Alternatives) == 0 {
		return "", nil
	}
	return strings.TrimSpace(res.Results.Channels[0].Alternatives[0].Transcript), nil
}

// upstreamError keeps the HTTP status of a rejected request so callers can
// tell throttling and outages apart from bad input.
func upstreamError(err error) error {
	var status *interfaces.StatusError
	if errors.As(err, &status) && status.Resp != nil {
		msg := status.Resp.Status
		if status.DeepgramError != nil && status.DeepgramError.ErrMsg != "" {
			msg = status.DeepgramError.ErrMsg
		}
		return &model.UpstreamError{
			Service:    serviceName,
			StatusCode: status.Resp.StatusCode,
			Err:        fmt.Errorf("unexpected response: %s", msg),
		}
	}
	return &model.UpstreamError{Service: serviceName, Err: err}
}
