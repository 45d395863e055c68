package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/hiready/hiready-server/internal/apperrors"
	"github.com/hiready/hiready-server/internal/logger"
	"github.com/hiready/hiready-server/internal/model"
	"github.com/hiready/hiready-server/internal/service"
)

const sessionEntity = "Interview session"

// SessionService drives live interviews.
type SessionService interface {
	Start(ctx context.Context, ownerID uuid.UUID, in service.SessionStart) (service.LiveSession, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (service.LiveSession, error)
	Reply(ctx context.Context, ownerID, id uuid.UUID, text string) (service.LiveSession, error)
	ReplyAudio(ctx context.Context, ownerID, id uuid.UUID, audio io.Reader, contentType string) (service.LiveSession, error)
	Transcript(ctx context.Context, ownerID, id uuid.UUID, text string, isFinal bool) (service.LiveSession, error)
	UtteranceEnd(ctx context.Context, ownerID, id uuid.UUID) (service.LiveSession, bool, error)
	CaptureError(ctx context.Context, ownerID, id uuid.UUID, name, message string) (service.LiveSession, error)
	End(ctx context.Context, ownerID, id uuid.UUID) (model.Interview, error)
}

type ReplyRequest struct {
	Text string `json:"text"`
}

// TranscriptRequest is one streaming transcription event relayed by the browser.
type TranscriptRequest struct {
	Text    string `json:"text"`
	IsFinal bool   `json:"isFinal"`
}

// CaptureErrorRequest reports a microphone failure by its DOMException name.
type CaptureErrorRequest struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

type UtteranceEndResponse struct {
	Submitted bool                `json:"submitted"`
	Session   service.LiveSession `json:"session"`
}

type Session struct {
	base
	sessionService SessionService
}

func NewSession(sessionService SessionService, contextManager model.ContextManager, logger *logger.Logger) *Session {
	return &Session{
		base:           base{contextManager: contextManager, logger: logger},
		sessionService: sessionService,
	}
}

// target resolves the owner and the :id of a session route.
func (h *Session) target(c *fiber.Ctx) (uuid.UUID, uuid.UUID, error) {
	owner, err := h.ownerID(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	id, err := pathID(c, sessionEntity)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return owner, id, nil
}

// Start opens a session and returns it with the interviewer's first question.
func (h *Session) Start(c *fiber.Ctx) error {
	owner, err := h.ownerID(c)
	if err != nil {
		return h.fail(c, err)
	}
	var in service.SessionStart
	if err := parseBody(c, &in); err != nil {
		return h.fail(c, err)
	}

	live, err := h.sessionService.Start(c.UserContext(), owner, in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusCreated).JSON(live)
}

func (h *Session) Get(c *fiber.Ctx) error {
	owner, id, err := h.target(c)
	if err != nil {
		return h.fail(c, err)
	}

	live, err := h.sessionService.Get(c.UserContext(), owner, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(live)
}

func (h *Session) Reply(c *fiber.Ctx) error {
	owner, id, err := h.target(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req ReplyRequest
	if err := parseBody(c, &req); err != nil {
		return h.fail(c, err)
	}

	live, err := h.sessionService.Reply(c.UserContext(), owner, id, req.Text)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(live)
}

// Audio transcribes a recorded answer from the multipart "audio" field and
// submits it.
func (h *Session) Audio(c *fiber.Ctx) error {
	owner, id, err := h.target(c)
	if err != nil {
		return h.fail(c, err)
	}

	fh, err := c.FormFile("audio")
	if err != nil {
		return h.fail(c, apperrors.NewErrValidation("A recording is required in the \"audio\" field"))
	}
	f, err := fh.Open()
	if err != nil {
		return h.fail(c, err)
	}
	defer f.Close()

	live, err := h.sessionService.ReplyAudio(c.UserContext(), owner, id, f, fh.Header.Get(fiber.HeaderContentType))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(live)
}

func (h *Session) Transcript(c *fiber.Ctx) error {
	owner, id, err := h.target(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req TranscriptRequest
	if err := parseBody(c, &req); err != nil {
		return h.fail(c, err)
	}

	live, err := h.sessionService.Transcript(c.UserContext(), owner, id, req.Text, req.IsFinal)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(live)
}

func (h *Session) UtteranceEnd(c *fiber.Ctx) error {
	owner, id, err := h.target(c)
	if err != nil {
		return h.fail(c, err)
	}

	live, submitted, err := h.sessionService.UtteranceEnd(c.UserContext(), owner, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(UtteranceEndResponse{Submitted: submitted, Session: live})
}

func (h *Session) CaptureError(c *fiber.Ctx) error {
	owner, id, err := h.target(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req CaptureErrorRequest
	if err := parseBody(c, &req); err != nil {
		return h.fail(c, err)
	}

	live, err := h.sessionService.CaptureError(c.UserContext(), owner, id, req.Name, req.Message)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(live)
}

// End stops the interview and returns the stored record.
func (h *Session) End(c *fiber.Ctx) error {
	owner, id, err := h.target(c)
	if err != nil {
		return h.fail(c, err)
	}

	record, err := h.sessionService.End(c.UserContext(), owner, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(record)
}
