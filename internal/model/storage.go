package model

import (
	"context"
	"io"
	"time"
)

// Storage keeps uploaded resume files under opaque object keys.
type Storage interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	// PresignedURL returns a time-limited download link for key.
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}
