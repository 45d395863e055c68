package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AptitudeStore defines owner-scoped persistence operations for aptitude attempts.
// Attempts are immutable once stored.
type AptitudeStore interface {
	Create(ctx context.Context, test AptitudeTest) (AptitudeTest, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]AptitudeTest, error)
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (AptitudeTest, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	// BestByOwner returns the highest scoring attempt or ErrNotFound.
	BestByOwner(ctx context.Context, ownerID uuid.UUID) (AptitudeTest, error)
}

// Answer is one submitted aptitude answer.
type Answer struct {
	QuestionID     int    `json:"questionId"`
	SelectedOption string `json:"selectedOption"`
}

// AnswerResult is the scored form of an Answer.
type AnswerResult struct {
	QuestionID     int    `json:"questionId"`
	SelectedOption string `json:"selectedOption"`
	CorrectAnswer  string `json:"correctAnswer"`
	IsCorrect      bool   `json:"isCorrect"`
}

// AptitudeTest is one completed aptitude attempt.
type AptitudeTest struct {
	ID             uuid.UUID      `json:"id"`
	OwnerID        uuid.UUID      `json:"userId"`
	Answers        []AnswerResult `json:"answers"`
	Score          int            `json:"score"`
	TotalQuestions int            `json:"totalQuestions"`
	TimeSpent      string         `json:"timeSpent"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// BestScore is the summary returned for the best attempt of a user.
type BestScore struct {
	Score          int        `json:"score"`
	TotalQuestions int        `json:"totalQuestions"`
	CreatedAt      *time.Time `json:"createdAt,omitempty"`
}
