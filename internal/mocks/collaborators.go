package mocks

import (
	"context"
	"io"
	"net"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/hiready/hiready-server/internal/model"
)

// TokenManager mocks model.TokenManager.
type TokenManager struct {
	mock.Mock
}

func NewTokenManager(t cleanupT) *TokenManager {
	m := &TokenManager{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *TokenManager) Issue(subject model.Subject, ttl time.Duration) (string, error) {
	args := m.Called(subject, ttl)
	return args.String(0), args.Error(1)
}

func (m *TokenManager) Verify(token string) (model.SessionClaims, error) {
	args := m.Called(token)
	return args.Get(0).(model.SessionClaims), args.Error(1)
}

// Storage mocks model.Storage.
type Storage struct {
	mock.Mock
}

func NewStorage(t cleanupT) *Storage {
	m := &Storage{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *Storage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	args := m.Called(ctx, key, reader, size, contentType)
	return args.Error(0)
}

func (m *Storage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if rc, ok := args.Get(0).(io.ReadCloser); ok {
		return rc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Storage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *Storage) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *Storage) PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Error(1)
}

// ChatCompleter mocks model.ChatCompleter.
type ChatCompleter struct {
	mock.Mock
}

func NewChatCompleter(t cleanupT) *ChatCompleter {
	m := &ChatCompleter{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *ChatCompleter) Complete(ctx context.Context, messages []model.ChatMessage) (string, error) {
	args := m.Called(ctx, messages)
	return args.String(0), args.Error(1)
}

// Transcriber mocks model.Transcriber.
type Transcriber struct {
	mock.Mock
}

func NewTranscriber(t cleanupT) *Transcriber {
	m := &Transcriber{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *Transcriber) TranscribeFile(ctx context.Context, audio io.Reader, contentType string) (string, error) {
	args := m.Called(ctx, audio, contentType)
	return args.String(0), args.Error(1)
}

// ContextManager mocks model.ContextManager.
type ContextManager struct {
	mock.Mock
}

func NewContextManager(t cleanupT) *ContextManager {
	m := &ContextManager{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *ContextManager) SetClaimsToContext(ctx context.Context, claims model.SessionClaims) context.Context {
	args := m.Called(ctx, claims)
	return args.Get(0).(context.Context)
}

func (m *ContextManager) GetClaimsFromContext(ctx context.Context) (model.SessionClaims, bool) {
	args := m.Called(ctx)
	return args.Get(0).(model.SessionClaims), args.Bool(1)
}

// SecurityLayer mocks model.SecurityLayer.
type SecurityLayer struct {
	mock.Mock
}

func NewSecurityLayer(t cleanupT) *SecurityLayer {
	m := &SecurityLayer{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *SecurityLayer) Listen(protocol, addr string) (net.Listener, error) {
	args := m.Called(protocol, addr)
	if ln, ok := args.Get(0).(net.Listener); ok {
		return ln, args.Error(1)
	}
	return nil, args.Error(1)
}
