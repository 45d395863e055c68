package model

import (
	"context"
	"io"
)

// ChatRole is the author of a chat completion message.
type ChatRole string

const (
	ChatRoleSystem    ChatRole = "system"
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage is one role-tagged message sent to a chat completion service.
type ChatMessage struct {
	Role    ChatRole
	Content string
}

// ChatCompleter returns one assistant message for a conversation.
// It is stateless; callers resend the full history on every call.
type ChatCompleter interface {
	Complete(ctx context.Context, messages []ChatMessage) (string, error)
}

// Transcriber converts a recorded audio file to text.
type Transcriber interface {
	TranscribeFile(ctx context.Context, audio io.Reader, contentType string) (string, error)
}
