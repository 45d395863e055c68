package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hiready/hiready-server/internal/apperrors"
	"github.com/hiready/hiready-server/internal/logger"
	"github.com/hiready/hiready-server/internal/model"
)

const interviewEntity = "Interview"

type Interview struct {
	store  model.InterviewStore
	logger *logger.Logger
	now    func() time.Time
}

func NewInterview(store model.InterviewStore, logger *logger.Logger) *Interview {
	return &Interview{store: store, logger: logger, now: time.Now}
}

func (s *Interview) Create(ctx context.Context, ownerID uuid.UUID, in model.InterviewUpdate) (model.Interview, error) {
	if in.JobRole == nil || strings.TrimSpace(*in.JobRole) == "" {
		return model.Interview{}, apperrors.NewErrValidation("jobRole is required")
	}
	if err := checkInterviewUpdate(in); err != nil {
		return model.Interview{}, err
	}

	now := s.now().UTC()
	interview := model.Interview{
		InterviewSummary: model.InterviewSummary{
			ID:        uuid.New(),
			OwnerID:   ownerID,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
	in.AnalyzedAt = analyzedAt(in.OverallScore, now)
	interview.Apply(in)
	interview.Normalize()

	saved, err := s.store.Create(ctx, interview)
	if err != nil {
		s.logger.Error("Interview service: failed to create interview",
			"user_id", ownerID,
			"error", err.Error())
		return model.Interview{}, fmt.Errorf("failed to create interview: %w", err)
	}

	s.logger.Info("Interview service: interview created",
		"user_id", ownerID,
		"interview_id", saved.ID,
		"turns", len(saved.Transcript))

	return saved, nil
}

// List returns summaries without transcripts, newest first.
func (s *Interview) List(ctx context.Context, ownerID uuid.UUID) ([]model.InterviewSummary, error) {
	interviews, err := s.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list interviews: %w", err)
	}
	return interviews, nil
}

func (s *Interview) Get(ctx context.Context, ownerID, id uuid.UUID) (model.Interview, error) {
	interview, err := s.store.GetByID(ctx, ownerID, id)
	if errors.Is(err, model.ErrNotFound) {
		return model.Interview{}, apperrors.NewErrRecordNotFound(interviewEntity)
	}
	if err != nil {
		return model.Interview{}, fmt.Errorf("failed to get interview: %w", err)
	}
	return interview, nil
}

// Update applies a partial change. An overall score in upd refreshes analyzedAt.
func (s *Interview) Update(ctx context.Context, ownerID, id uuid.UUID, upd model.InterviewUpdate) (model.Interview, error) {
	if upd.JobRole != nil && strings.TrimSpace(*upd.JobRole) == "" {
		return model.Interview{}, apperrors.NewErrValidation("jobRole cannot be empty")
	}
	if err := checkInterviewUpdate(upd); err != nil {
		return model.Interview{}, err
	}
	upd.AnalyzedAt = analyzedAt(upd.OverallScore, s.now().UTC())

	interview, err := s.store.Update(ctx, ownerID, id, upd)
	if errors.Is(err, model.ErrNotFound) {
		return model.Interview{}, apperrors.NewErrRecordNotFound(interviewEntity)
	}
	if err != nil {
		return model.Interview{}, fmt.Errorf("failed to update interview: %w", err)
	}
	return interview, nil
}

func (s *Interview) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	err := s.store.Delete(ctx, ownerID, id)
	if errors.Is(err, model.ErrNotFound) {
		return apperrors.NewErrRecordNotFound(interviewEntity)
	}
	if err != nil {
		return fmt.Errorf("failed to delete interview: %w", err)
	}

	s.logger.Info("Interview service: interview deleted",
		"user_id", ownerID,
		"interview_id", id)

	return nil
}

func checkInterviewUpdate(upd model.InterviewUpdate) error {
	if upd.Duration != nil && *upd.Duration < 0 {
		return apperrors.NewErrValidation("duration cannot be negative")
	}
	return checkScores(map[string]*int{
		"overallScore":    upd.OverallScore,
		"confidenceScore": upd.ConfidenceScore,
		"contentScore":    upd.ContentScore,
		"technical":       upd.Technical,
		"communication":   upd.Communication,
		"problemSolving":  upd.ProblemSolving,
		"confidence":      upd.Confidence,
		"leadership":      upd.Leadership,
		"adaptability":    upd.Adaptability,
		"teamwork":        upd.Teamwork,
	})
}
