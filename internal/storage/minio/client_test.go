package minio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/url"
	"testing"
	"time"

	minioLib "github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeObjects implements objectAPI without a network.
type fakeObjects struct {
	bucketExists    bool
	bucketExistsErr error
	makeBucketErr   error
	madeBucket      string

	putErr  error
	putKey  string
	putSize int64
	putType string
	putBody []byte

	getRC  io.ReadCloser
	getErr error

	removeErr error

	statErr error

	presignURL string
	presignErr error
	presignTTL time.Duration
}

func (f *fakeObjects) BucketExists(_ context.Context, _ string) (bool, error) {
	return f.bucketExists, f.bucketExistsErr
}

func (f *fakeObjects) MakeBucket(_ context.Context, bucket string, _ minioLib.MakeBucketOptions) error {
	f.madeBucket = bucket
	return f.makeBucketErr
}

func (f *fakeObjects) PutObject(_ context.Context, _ string, key string, r io.Reader, size int64, opts minioLib.PutObjectOptions) (minioLib.UploadInfo, error) {
	f.putKey, f.putSize, f.putType = key, size, opts.ContentType
	f.putBody, _ = io.ReadAll(r)
	return minioLib.UploadInfo{Key: key, Size: size}, f.putErr
}

func (f *fakeObjects) GetObject(_ context.Context, _ string, _ string, _ minioLib.GetObjectOptions) (io.ReadCloser, error) {
	return f.getRC, f.getErr
}

func (f *fakeObjects) RemoveObject(_ context.Context, _ string, _ string, _ minioLib.RemoveObjectOptions) error {
	return f.removeErr
}

func (f *fakeObjects) StatObject(_ context.Context, _ string, _ string, _ minioLib.StatObjectOptions) (minioLib.ObjectInfo, error) {
	return minioLib.ObjectInfo{}, f.statErr
}

func (f *fakeObjects) PresignedGetObject(_ context.Context, _ string, _ string, ttl time.Duration, _ url.Values) (*url.URL, error) {
	f.presignTTL = ttl
	if f.presignErr != nil {
		return nil, f.presignErr
	}
	return url.Parse(f.presignURL)
}

func TestNewStore(t *testing.T) {
	ctx := context.Background()

	t.Run("bucket exists", func(t *testing.T) {
		api := &fakeObjects{bucketExists: true}
		s, err := newStore(ctx, api, "resumes")
		require.NoError(t, err)
		assert.Equal(t, "resumes", s.bucket)
		assert.Empty(t, api.madeBucket)
	})

	t.Run("creates bucket", func(t *testing.T) {
		api := &fakeObjects{}
		_, err := newStore(ctx, api, "resumes")
		require.NoError(t, err)
		assert.Equal(t, "resumes", api.madeBucket)
	})

	t.Run("exists check fails", func(t *testing.T) {
		s, err := newStore(ctx, &fakeObjects{bucketExistsErr: errors.New("boom")}, "resumes")
		assert.Nil(t, s)
		assert.ErrorContains(t, err, "failed to ensure bucket exists")
	})

	t.Run("make bucket fails", func(t *testing.T) {
		s, err := newStore(ctx, &fakeObjects{makeBucketErr: errors.New("denied")}, "resumes")
		assert.Nil(t, s)
		assert.ErrorContains(t, err, "failed to create bucket")
	})
}

func TestStore_Upload(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		api := &fakeObjects{}
		s := &Store{api: api, bucket: "b"}
		err := s.Upload(ctx, "users/1/resumes/2/cv.pdf", bytes.NewReader([]byte("%PDF")), 4, "application/pdf")
		require.NoError(t, err)
		assert.Equal(t, "users/1/resumes/2/cv.pdf", api.putKey)
		assert.Equal(t, int64(4), api.putSize)
		assert.Equal(t, "application/pdf", api.putType)
		assert.Equal(t, []byte("%PDF"), api.putBody)
	})

	t.Run("error", func(t *testing.T) {
		s := &Store{api: &fakeObjects{putErr: errors.New("put-fail")}, bucket: "b"}
		err := s.Upload(ctx, "k", bytes.NewReader(nil), 0, "")
		assert.ErrorContains(t, err, "failed to upload object")
	})
}

func TestStore_Download(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		s := &Store{api: &fakeObjects{getRC: io.NopCloser(bytes.NewReader([]byte("abc")))}, bucket: "b"}
		rc, err := s.Download(ctx, "k")
		require.NoError(t, err)
		defer rc.Close()
		body, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, []byte("abc"), body)
	})

	t.Run("error", func(t *testing.T) {
		s := &Store{api: &fakeObjects{getErr: errors.New("get-fail")}, bucket: "b"}
		rc, err := s.Download(ctx, "k")
		assert.Nil(t, rc)
		assert.ErrorContains(t, err, "failed to get object")
	})
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, (&Store{api: &fakeObjects{}, bucket: "b"}).Delete(ctx, "k"))

	err := (&Store{api: &fakeObjects{removeErr: errors.New("remove-fail")}, bucket: "b"}).Delete(ctx, "k")
	assert.ErrorContains(t, err, "failed to delete object")
}

func TestStore_Exists(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		statErr error
		want    bool
		wantErr bool
	}{
		{name: "exists", want: true},
		{name: "missing", statErr: minioLib.ErrorResponse{Code: "NoSuchKey"}},
		{name: "other error", statErr: errors.New("stat-fail"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Store{api: &fakeObjects{statErr: tt.statErr}, bucket: "b"}
			ok, err := s.Exists(ctx, "k")
			if tt.wantErr {
				assert.ErrorContains(t, err, "failed to stat object")
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestStore_PresignedURL(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		api := &fakeObjects{presignURL: "http://localhost:9000/b/k?X-Amz-Signature=abc"}
		s := &Store{api: api, bucket: "b"}
		got, err := s.PresignedURL(ctx, "k", time.Hour)
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:9000/b/k?X-Amz-Signature=abc", got)
		assert.Equal(t, time.Hour, api.presignTTL)
	})

	t.Run("error", func(t *testing.T) {
		s := &Store{api: &fakeObjects{presignErr: errors.New("sign-fail")}, bucket: "b"}
		got, err := s.PresignedURL(ctx, "k", time.Hour)
		assert.Empty(t, got)
		assert.ErrorContains(t, err, "failed to presign object")
	})
}
