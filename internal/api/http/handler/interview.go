package handler

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/hiready/hiready-server/internal/logger"
	"github.com/hiready/hiready-server/internal/model"
)

const interviewEntity = "Interview"

// InterviewService defines owner-scoped interview record operations.
type InterviewService interface {
	Create(ctx context.Context, ownerID uuid.UUID, in model.InterviewUpdate) (model.Interview, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]model.InterviewSummary, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (model.Interview, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, upd model.InterviewUpdate) (model.Interview, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

// InterviewAnalyzer scores an interview transcript with the LLM.
type InterviewAnalyzer interface {
	AnalyzeInterview(ctx context.Context, ownerID, id uuid.UUID) (model.Interview, error)
}

type Interview struct {
	base
	interviewService InterviewService
	analyzer         InterviewAnalyzer
}

func NewInterview(interviewService InterviewService, analyzer InterviewAnalyzer, contextManager model.ContextManager, logger *logger.Logger) *Interview {
	return &Interview{
		base:             base{contextManager: contextManager, logger: logger},
		interviewService: interviewService,
		analyzer:         analyzer,
	}
}

func (h *Interview) Create(c *fiber.Ctx) error {
	owner, err := h.ownerID(c)
	if err != nil {
		return h.fail(c, err)
	}
	var in model.InterviewUpdate
	if err := parseBody(c, &in); err != nil {
		return h.fail(c, err)
	}

	interview, err := h.interviewService.Create(c.UserContext(), owner, in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusCreated).JSON(interview)
}

// List returns summaries without transcripts.
func (h *Interview) List(c *fiber.Ctx) error {
	owner, err := h.ownerID(c)
	if err != nil {
		return h.fail(c, err)
	}

	interviews, err := h.interviewService.List(c.UserContext(), owner)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(interviews)
}

func (h *Interview) Get(c *fiber.Ctx) error {
	owner, err := h.ownerID(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := pathID(c, interviewEntity)
	if err != nil {
		return h.fail(c, err)
	}

	interview, err := h.interviewService.Get(c.UserContext(), owner, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(interview)
}

func (h *Interview) Update(c *fiber.Ctx) error {
	owner, err := h.ownerID(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := pathID(c, interviewEntity)
	if err != nil {
		return h.fail(c, err)
	}
	var upd model.InterviewUpdate
	if err := parseBody(c, &upd); err != nil {
		return h.fail(c, err)
	}

	interview, err := h.interviewService.Update(c.UserContext(), owner, id, upd)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(interview)
}

func (h *Interview) Delete(c *fiber.Ctx) error {
	owner, err := h.ownerID(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := pathID(c, interviewEntity)
	if err != nil {
		return h.fail(c, err)
	}

	if err := h.interviewService.Delete(c.UserContext(), owner, id); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(MessageResponse{Message: "Interview deleted successfully"})
}

func (h *Interview) Analyze(c *fiber.Ctx) error {
	owner, err := h.ownerID(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := pathID(c, interviewEntity)
	if err != nil {
		return h.fail(c, err)
	}

	interview, err := h.analyzer.AnalyzeInterview(c.UserContext(), owner, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(interview)
}
