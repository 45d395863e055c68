package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hiready/hiready-server/internal/model"
)

// VertexAI is a chat completer backed by Gemini on Vertex AI.
type VertexAI struct {
	client      *genai.Client
	model       string
	maxTokens   int32
	temperature float32
}

var _ model.ChatCompleter = (*VertexAI)(nil)

// NewVertexAI creates a Vertex AI client for opts.Project and opts.Location.
func NewVertexAI(ctx context.Context, opts Options) (*VertexAI, error) {
	if opts.Project == "" {
		return nil, errors.New("vertex ai project is not set")
	}
	location := opts.Location
	if location == "" {
		location = "us-central1"
	}

	var clientOpts []option.ClientOption
	if opts.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(opts.CredentialsFile))
	}

	client, err := genai.NewClient(ctx, opts.Project, location, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vertex AI client: %w", err)
	}

	return &VertexAI{
		client:      client,
		model:       opts.Model,
		maxTokens:   int32(opts.MaxTokens),
		temperature: opts.Temperature,
	}, nil
}

// Complete maps system messages to the system instruction, replays earlier
// turns as chat history and sends the last message.
func (v *VertexAI) Complete(ctx context.Context, messages []model.ChatMessage) (string, error) {
	if len(messages) == 0 {
		return "", errors.New("no messages to send")
	}

	gm := v.client.GenerativeModel(v.model)
	gm.SetTemperature(v.temperature)
	if v.maxTokens > 0 {
		gm.SetMaxOutputTokens(v.maxTokens)
	}

	system, history, last := splitForGemini(messages)
	if system != "" {
		gm.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	chat := gm.StartChat()
	chat.History = history

	resp, err := chat.SendMessage(ctx, genai.Text(last))
	if err != nil {
		return "", &model.UpstreamError{Service: serviceName, StatusCode: httpStatusFromGRPC(err), Err: err}
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", &model.UpstreamError{Service: serviceName, Err: errors.New("no response candidates returned")}
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String(), nil
}

// Close releases the underlying gRPC connection.
func (v *VertexAI) Close() error {
	return v.client.Close()
}

func splitForGemini(messages []model.ChatMessage) (string, []*genai.Content, string) {
	var system []string
	var rest []model.ChatMessage
	for _, m := range messages {
		if m.Role == model.ChatRoleSystem {
			system = append(system, m.Content)
			continue
		}
		rest = append(rest, m)
	}

	if len(rest) == 0 {
		return strings.Join(system, "\n\n"), nil, ""
	}

	history := make([]*genai.Content, 0, len(rest)-1)
	for _, m := range rest[:len(rest)-1] {
		role := "user"
		if m.Role == model.ChatRoleAssistant {
			role = "model"
		}
		history = append(history, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(m.Content)}})
	}

	return strings.Join(system, "\n\n"), history, rest[len(rest)-1].Content
}

func httpStatusFromGRPC(err error) int {
	st, ok := status.FromError(err)
	if !ok {
		return 0
	}
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return http.StatusUnauthorized
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests
	case codes.InvalidArgument, codes.FailedPrecondition:
		return http.StatusBadRequest
	case codes.NotFound:
		return http.StatusNotFound
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	case codes.Internal, codes.Unknown:
		return http.StatusInternalServerError
	default:
		return 0
	}
}
