package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hiready/hiready-server/internal/apperrors"
	"github.com/hiready/hiready-server/internal/logger"
	"github.com/hiready/hiready-server/internal/model"
)

const resumeEntity = "Resume"

// ResumeUpload is a resume file received from a client.
type ResumeUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type Resume struct {
	store      model.ResumeStore
	storage    model.Storage
	presignTTL time.Duration
	logger     *logger.Logger
	now        func() time.Time
}

// NewResume creates the resume service. storage may be nil, in which case
// file uploads are rejected and records only carry client-provided URLs.
func NewResume(store model.ResumeStore, storage model.Storage, presignTTL time.Duration, logger *logger.Logger) *Resume {
	return &Resume{
		store:      store,
		storage:    storage,
		presignTTL: presignTTL,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *Resume) Create(ctx context.Context, ownerID uuid.UUID, in model.ResumeUpdate) (model.Resume, error) {
	if in.FileName == nil || strings.TrimSpace(*in.FileName) == "" {
		return model.Resume{}, apperrors.NewErrValidation("fileName is required")
	}
	if err := checkScores(map[string]*int{"atsScore": in.ATSScore}); err != nil {
		return model.Resume{}, err
	}

	now := s.now().UTC()
	resume := model.Resume{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	in.AnalyzedAt = analyzedAt(in.ATSScore, now)
	resume.Apply(in)
	resume.Normalize()

	saved, err := s.store.Create(ctx, resume)
	if err != nil {
		s.logger.Error("Resume service: failed to create resume",
			"user_id", ownerID,
			"error", err.Error())
		return model.Resume{}, fmt.Errorf("failed to create resume: %w", err)
	}

	s.logger.Info("Resume service: resume created",
		"user_id", ownerID,
		"resume_id", saved.ID)

	return saved, nil
}

// Upload stores the file in object storage and records it.
func (s *Resume) Upload(ctx context.Context, ownerID uuid.UUID, up ResumeUpload) (model.Resume, error) {
	if s.storage == nil {
		return model.Resume{}, apperrors.NewErrValidation("File uploads are not enabled on this server")
	}
	name := cleanFileName(up.FileName)
	if name == "" {
		return model.Resume{}, apperrors.NewErrValidation("file name is required")
	}

	id := uuid.New()
	key := fmt.Sprintf("users/%s/resumes/%s/%s", ownerID, id, name)

	if err := s.storage.Upload(ctx, key, up.Body, up.Size, up.ContentType); err != nil {
		s.logger.Error("Resume service: failed to upload file",
			"user_id", ownerID,
			"key", key,
			"error", err.Error())
		return model.Resume{}, fmt.Errorf("failed to upload resume file: %w", err)
	}

	url, err := s.storage.PresignedURL(ctx, key, s.presignTTL)
	if err != nil {
		s.logger.Warn("Resume service: failed to presign file",
			"key", key,
			"error", err.Error())
	}

	now := s.now().UTC()
	resume := model.Resume{
		ID:         id,
		OwnerID:    ownerID,
		FileName:   name,
		FileURL:    url,
		FileSize:   up.Size,
		StorageKey: key,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	resume.Normalize()

	saved, err := s.store.Create(ctx, resume)
	if err != nil {
		s.removeObject(key)
		return model.Resume{}, fmt.Errorf("failed to create resume: %w", err)
	}

	s.logger.Info("Resume service: resume uploaded",
		"user_id", ownerID,
		"resume_id", saved.ID,
		"size", up.Size)

	return saved, nil
}

// List returns the owner's resumes with fresh download links.
func (s *Resume) List(ctx context.Context, ownerID uuid.UUID) ([]model.Resume, error) {
	resumes, err := s.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list resumes: %w", err)
	}
	for i := range resumes {
		s.presign(ctx, &resumes[i])
	}
	return resumes, nil
}

// Get returns one resume. Stored files get a fresh download link.
func (s *Resume) Get(ctx context.Context, ownerID, id uuid.UUID) (model.Resume, error) {
	resume, err := s.store.GetByID(ctx, ownerID, id)
	if errors.Is(err, model.ErrNotFound) {
		return model.Resume{}, apperrors.NewErrRecordNotFound(resumeEntity)
	}
	if err != nil {
		return model.Resume{}, fmt.Errorf("failed to get resume: %w", err)
	}

	s.presign(ctx, &resume)
	return resume, nil
}

func (s *Resume) presign(ctx context.Context, resume *model.Resume) {
	if resume.StorageKey == "" || s.storage == nil {
		return
	}
	url, err := s.storage.PresignedURL(ctx, resume.StorageKey, s.presignTTL)
	if err != nil {
		s.logger.Warn("Resume service: failed to presign file",
			"resume_id", resume.ID,
			"error", err.Error())
		return
	}
	resume.FileURL = url
}

// Update applies a partial change. A score in upd refreshes analyzedAt.
func (s *Resume) Update(ctx context.Context, ownerID, id uuid.UUID, upd model.ResumeUpdate) (model.Resume, error) {
	if upd.FileName != nil && strings.TrimSpace(*upd.FileName) == "" {
		return model.Resume{}, apperrors.NewErrValidation("fileName cannot be empty")
	}
	if err := checkScores(map[string]*int{"atsScore": upd.ATSScore}); err != nil {
		return model.Resume{}, err
	}
	upd.AnalyzedAt = analyzedAt(upd.ATSScore, s.now().UTC())

	resume, err := s.store.Update(ctx, ownerID, id, upd)
	if errors.Is(err, model.ErrNotFound) {
		return model.Resume{}, apperrors.NewErrRecordNotFound(resumeEntity)
	}
	if err != nil {
		return model.Resume{}, fmt.Errorf("failed to update resume: %w", err)
	}
	return resume, nil
}

// Delete removes the record and, best effort, its stored file.
func (s *Resume) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	resume, err := s.store.GetByID(ctx, ownerID, id)
	if errors.Is(err, model.ErrNotFound) {
		return apperrors.NewErrRecordNotFound(resumeEntity)
	}
	if err != nil {
		return fmt.Errorf("failed to get resume: %w", err)
	}

	err = s.store.Delete(ctx, ownerID, id)
	if errors.Is(err, model.ErrNotFound) {
		return apperrors.NewErrRecordNotFound(resumeEntity)
	}
	if err != nil {
		return fmt.Errorf("failed to delete resume: %w", err)
	}

	if resume.StorageKey != "" {
		s.removeObject(resume.StorageKey)
	}

	s.logger.Info("Resume service: resume deleted",
		"user_id", ownerID,
		"resume_id", id)

	return nil
}

// OpenFile streams the stored file of a resume.
func (s *Resume) OpenFile(ctx context.Context, ownerID, id uuid.UUID) (io.ReadCloser, model.Resume, error) {
	resume, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, model.Resume{}, err
	}
	if resume.StorageKey == "" || s.storage == nil {
		return nil, resume, apperrors.NewErrValidation("Resume has no stored file")
	}
	rc, err := s.storage.Download(ctx, resume.StorageKey)
	if err != nil {
		return nil, resume, fmt.Errorf("failed to download resume file: %w", err)
	}
	return rc, resume, nil
}

func (s *Resume) removeObject(key string) {
	if s.storage == nil {
		return
	}
	// The request may already be cancelled; cleanup gets its own deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.storage.Delete(ctx, key); err != nil {
		s.logger.Warn("Resume service: failed to remove stored file",
			"key", key,
			"error", err.Error())
	}
}

func cleanFileName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(strings.TrimSpace(name))
	if name == "." || name == "/" {
		return ""
	}
	return name
}

// analyzedAt returns now when a score was supplied, nil otherwise.
func analyzedAt(score *int, now time.Time) *time.Time {
	if score == nil {
		return nil
	}
	return &now
}
