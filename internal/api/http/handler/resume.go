package handler

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/hiready/hiready-server/internal/apperrors"
	"github.com/hiready/hiready-server/internal/logger"
	"github.com/hiready/hiready-server/internal/model"
	"github.com/hiready/hiready-server/internal/service"
)

const resumeEntity = "Resume"

// ResumeService defines owner-scoped resume operations.
type ResumeService interface {
	Create(ctx context.Context, ownerID uuid.UUID, in model.ResumeUpdate) (model.Resume, error)
	Upload(ctx context.Context, ownerID uuid.UUID, up service.ResumeUpload) (model.Resume, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]model.Resume, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (model.Resume, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, upd model.ResumeUpdate) (model.Resume, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

// ResumeAnalyzer scores a resume with the LLM.
type ResumeAnalyzer interface {
	AnalyzeResume(ctx context.Context, ownerID, id uuid.UUID, text string) (model.Resume, error)
}

type Resume struct {
	base
	resumeService ResumeService
	analyzer      ResumeAnalyzer
}

func NewResume(resumeService ResumeService, analyzer ResumeAnalyzer, contextManager model.ContextManager, logger *logger.Logger) *Resume {
	return &Resume{
		base:          base{contextManager: contextManager, logger: logger},
		resumeService: resumeService,
		analyzer:      analyzer,
	}
}

func (h *Resume) Create(c *fiber.Ctx) error {
	owner, err := h.ownerID(c)
	if err != nil {
		return h.fail(c, err)
	}
	var in model.ResumeUpdate
	if err := parseBody(c, &in); err != nil {
		return h.fail(c, err)
	}

	resume, err := h.resumeService.Create(c.UserContext(), owner, in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusCreated).JSON(resume)
}

// Upload stores a multipart "file" and records it.
func (h *Resume) Upload(c *fiber.Ctx) error {
	owner, err := h.ownerID(c)
	if err != nil {
		return h.fail(c, err)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return h.fail(c, apperrors.NewErrValidation("A resume file is required in the \"file\" field"))
	}
	f, err := fh.Open()
	if err != nil {
		return h.fail(c, err)
	}
	defer f.Close()

	resume, err := h.resumeService.Upload(c.UserContext(), owner, service.ResumeUpload{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusCreated).JSON(resume)
}

func (h *Resume) List(c *fiber.Ctx) error {
	owner, err := h.ownerID(c)
	if err != nil {
		return h.fail(c, err)
	}

	resumes, err := h.resumeService.List(c.UserContext(), owner)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(resumes)
}

func (h *Resume) Get(c *fiber.Ctx) error {
	owner, err := h.ownerID(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := pathID(c, resumeEntity)
	if err != nil {
		return h.fail(c, err)
	}

	resume, err := h.resumeService.Get(c.UserContext(), owner, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(resume)
}

func (h *Resume) Update(c *fiber.Ctx) error {
	owner, err := h.ownerID(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := pathID(c, resumeEntity)
	if err != nil {
		return h.fail(c, err)
	}
	var upd model.ResumeUpdate
	if err := parseBody(c, &upd); err != nil {
		return h.fail(c, err)
	}

	resume, err := h.resumeService.Update(c.UserContext(), owner, id, upd)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(resume)
}

func (h *Resume) Delete(c *fiber.Ctx) error {
	owner, err := h.ownerID(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := pathID(c, resumeEntity)
	if err != nil {
		return h.fail(c, err)
	}

	if err := h.resumeService.Delete(c.UserContext(), owner, id); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(MessageResponse{Message: "Resume deleted successfully"})
}

// Analyze scores the resume. The optional body {"text": "..."} replaces
// the stored file as input.
func (h *Resume) Analyze(c *fiber.Ctx) error {
	owner, err := h.ownerID(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := pathID(c, resumeEntity)
	if err != nil {
		return h.fail(c, err)
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := parseBody(c, &req); err != nil {
		return h.fail(c, err)
	}

	resume, err := h.analyzer.AnalyzeResume(c.UserContext(), owner, id, req.Text)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(resume)
}
