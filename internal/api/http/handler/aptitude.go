package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/hiready/hiready-server/internal/aptitude"
	"github.com/hiready/hiready-server/internal/logger"
	"github.com/hiready/hiready-server/internal/model"
	"github.com/hiready/hiready-server/internal/service"
)

const aptitudeEntity = "Aptitude test"

// AptitudeService defines aptitude bank and attempt operations.
type AptitudeService interface {
	Questions() []aptitude.Question
	Submit(ctx context.Context, ownerID uuid.UUID, sub service.AptitudeSubmission) (model.AptitudeTest, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]model.AptitudeTest, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (model.AptitudeTest, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	BestScore(ctx context.Context, ownerID uuid.UUID) (model.BestScore, error)
}

// QuestionsResponse is the bank without correct answers.
type QuestionsResponse struct {
	Questions        []aptitude.Question `json:"questions"`
	TimeLimitSeconds int                 `json:"timeLimitSeconds"`
}

// SubmitRequest is a finished attempt.
type SubmitRequest struct {
	Answers    []model.Answer `json:"answers"`
	StartedAt  time.Time      `json:"startedAt"`
	FinishedAt time.Time      `json:"finishedAt"`
}

type Aptitude struct {
	base
	aptitudeService AptitudeService
}

func NewAptitude(aptitudeService AptitudeService, contextManager model.ContextManager, logger *logger.Logger) *Aptitude {
	return &Aptitude{
		base:            base{contextManager: contextManager, logger: logger},
		aptitudeService: aptitudeService,
	}
}

func (h *Aptitude) Questions(c *fiber.Ctx) error {
	return c.JSON(QuestionsResponse{
		Questions:        h.aptitudeService.Questions(),
		TimeLimitSeconds: aptitude.TimeLimit,
	})
}

func (h *Aptitude) Submit(c *fiber.Ctx) error {
	owner, err := h.ownerID(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req SubmitRequest
	if err := parseBody(c, &req); err != nil {
		return h.fail(c, err)
	}

	test, err := h.aptitudeService.Submit(c.UserContext(), owner, service.AptitudeSubmission{
		Answers:    req.Answers,
		StartedAt:  req.StartedAt,
		FinishedAt: req.FinishedAt,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusCreated).JSON(test)
}

func (h *Aptitude) List(c *fiber.Ctx) error {
	owner, err := h.ownerID(c)
	if err != nil {
		return h.fail(c, err)
	}

	tests, err := h.aptitudeService.List(c.UserContext(), owner)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(tests)
}

// BestScore answers with a zero score when the user has no attempts.
func (h *Aptitude) BestScore(c *fiber.Ctx) error {
	owner, err := h.ownerID(c)
	if err != nil {
		return h.fail(c, err)
	}

	best, err := h.aptitudeService.BestScore(c.UserContext(), owner)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(best)
}

func (h *Aptitude) Get(c *fiber.Ctx) error {
	owner, err := h.ownerID(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := pathID(c, aptitudeEntity)
	if err != nil {
		return h.fail(c, err)
	}

	test, err := h.aptitudeService.Get(c.UserContext(), owner, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(test)
}

func (h *Aptitude) Delete(c *fiber.Ctx) error {
	owner, err := h.ownerID(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := pathID(c, aptitudeEntity)
	if err != nil {
		return h.fail(c, err)
	}

	if err := h.aptitudeService.Delete(c.UserContext(), owner, id); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(MessageResponse{Message: "Aptitude test deleted successfully"})
}
