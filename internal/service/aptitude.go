package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hiready/hiready-server/internal/apperrors"
	"github.com/hiready/hiready-server/internal/aptitude"
	"github.com/hiready/hiready-server/internal/logger"
	"github.com/hiready/hiready-server/internal/model"
)

const aptitudeEntity = "Aptitude test"

// AptitudeSubmission is one finished attempt as sent by the client.
type AptitudeSubmission struct {
	Answers    []model.Answer
	StartedAt  time.Time
	FinishedAt time.Time
}

type Aptitude struct {
	store  model.AptitudeStore
	bank   []aptitude.Question
	logger *logger.Logger
	now    func() time.Time
}

func NewAptitude(store model.AptitudeStore, bank []aptitude.Question, logger *logger.Logger) *Aptitude {
	return &Aptitude{store: store, bank: bank, logger: logger, now: time.Now}
}

// Questions returns the bank. Correct answers are not serialized.
func (s *Aptitude) Questions() []aptitude.Question {
	return append([]aptitude.Question(nil), s.bank...)
}

// Submit scores an attempt against the bank and stores it. Elapsed time comes
// from the submitted instants.
func (s *Aptitude) Submit(ctx context.Context, ownerID uuid.UUID, sub AptitudeSubmission) (model.AptitudeTest, error) {
	if sub.StartedAt.IsZero() || sub.FinishedAt.IsZero() {
		return model.AptitudeTest{}, apperrors.NewErrValidation("startedAt and finishedAt are required")
	}

	res := aptitude.Score(s.bank, sub.Answers, sub.StartedAt, sub.FinishedAt)
	test := model.AptitudeTest{
		ID:             uuid.New(),
		OwnerID:        ownerID,
		Answers:        res.Breakdown,
		Score:          res.Score,
		TotalQuestions: res.TotalQuestions,
		TimeSpent:      res.TimeSpent,
		CreatedAt:      s.now().UTC(),
	}

	saved, err := s.store.Create(ctx, test)
	if err != nil {
		s.logger.Error("Aptitude service: failed to store attempt",
			"user_id", ownerID,
			"error", err.Error())
		return model.AptitudeTest{}, fmt.Errorf("failed to create aptitude test: %w", err)
	}

	s.logger.Info("Aptitude service: attempt scored",
		"user_id", ownerID,
		"score", saved.Score,
		"total", saved.TotalQuestions)

	return saved, nil
}

func (s *Aptitude) List(ctx context.Context, ownerID uuid.UUID) ([]model.AptitudeTest, error) {
	tests, err := s.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list aptitude tests: %w", err)
	}
	return tests, nil
}

func (s *Aptitude) Get(ctx context.Context, ownerID, id uuid.UUID) (model.AptitudeTest, error) {
	test, err := s.store.GetByID(ctx, ownerID, id)
	if errors.Is(err, model.ErrNotFound) {
		return model.AptitudeTest{}, apperrors.NewErrRecordNotFound(aptitudeEntity)
	}
	if err != nil {
		return model.AptitudeTest{}, fmt.Errorf("failed to get aptitude test: %w", err)
	}
	return test, nil
}

func (s *Aptitude) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	err := s.store.Delete(ctx, ownerID, id)
	if errors.Is(err, model.ErrNotFound) {
		return apperrors.NewErrRecordNotFound(aptitudeEntity)
	}
	if err != nil {
		return fmt.Errorf("failed to delete aptitude test: %w", err)
	}
	return nil
}

// BestScore returns the best attempt, or a zero score over the bank size
// when the user has none.
func (s *Aptitude) BestScore(ctx context.Context, ownerID uuid.UUID) (model.BestScore, error) {
	best, err := s.store.BestByOwner(ctx, ownerID)
	if errors.Is(err, model.ErrNotFound) {
		return model.BestScore{Score: 0, TotalQuestions: len(s.bank)}, nil
	}
	if err != nil {
		return model.BestScore{}, fmt.Errorf("failed to get best aptitude test: %w", err)
	}
	createdAt := best.CreatedAt
	return model.BestScore{
		Score:          best.Score,
		TotalQuestions: best.TotalQuestions,
		CreatedAt:      &createdAt,
	}, nil
}
