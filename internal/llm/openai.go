package llm

import (
	"context"
	"errors"

	"github.com/sashabaranov/go-openai"

	"github.com/hiready/hiready-server/internal/model"
)

const serviceName = "llm"

// OpenAI is a chat completer for any OpenAI-compatible endpoint, Groq included.
type OpenAI struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

var _ model.ChatCompleter = (*OpenAI)(nil)

// NewOpenAI creates a client for the endpoint in opts.
func NewOpenAI(opts Options) *OpenAI {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	if opts.HTTPClient != nil {
		cfg.HTTPClient = opts.HTTPClient
	}

	return &OpenAI{
		client:      openai.NewClientWithConfig(cfg),
		model:       opts.Model,
		maxTokens:   opts.MaxTokens,
		temperature: opts.Temperature,
	}
}

// Complete sends messages and returns the first choice.
func (o *OpenAI) Complete(ctx context.Context, messages []model.ChatMessage) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       o.model,
		MaxTokens:   o.maxTokens,
		Temperature: o.temperature,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(messages)),
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", &model.UpstreamError{Service: serviceName, StatusCode: statusOf(err), Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &model.UpstreamError{Service: serviceName, Err: errors.New("no completion choices returned")}
	}

	return resp.Choices[0].Message.Content, nil
}

// Close is a no-op.
func (o *OpenAI) Close() error {
	return nil
}

func statusOf(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
