package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hiready/hiready-server/internal/apperrors"
	"github.com/hiready/hiready-server/internal/interview"
	"github.com/hiready/hiready-server/internal/logger"
	"github.com/hiready/hiready-server/internal/model"
	"github.com/hiready/hiready-server/internal/retry"
)

const (
	sessionEntity  = "Interview session"
	persistTimeout = 10 * time.Second
	sweepInterval  = time.Minute
)

// SessionConfig holds the limits applied to every live interview.
type SessionConfig struct {
	TimeLimit time.Duration
	MaxTurns  int
	Retry     retry.Policy
	// SessionTTL is how long a session stays addressable: ended sessions are
	// dropped this long after they end, running ones are ended this long
	// after they start.
	SessionTTL time.Duration
}

// SessionStart describes a new live interview.
type SessionStart struct {
	JobRole         string   `json:"jobRole"`
	ExperienceLevel string   `json:"experienceLevel"`
	FocusAreas      []string `json:"focusAreas"`
}

// LiveSession is the client view of a running or finished interview.
type LiveSession struct {
	ID              uuid.UUID `json:"id"`
	JobRole         string    `json:"jobRole"`
	ExperienceLevel string    `json:"experienceLevel"`
	interview.Snapshot
	// InterviewID is set once the finished interview has been stored.
	InterviewID *uuid.UUID `json:"interviewId,omitempty"`
}

type liveSession struct {
	id        uuid.UUID
	owner     uuid.UUID
	jobRole   string
	level     string
	seq       *interview.Sequencer
	persisted chan struct{}

	// Written by the end hook before persisted is closed.
	record    model.Interview
	recordErr error
}

func (ls *liveSession) view() LiveSession {
	v := LiveSession{
		ID:              ls.id,
		JobRole:         ls.jobRole,
		ExperienceLevel: ls.level,
		Snapshot:        ls.seq.Snapshot(),
	}
	select {
	case <-ls.persisted:
		if ls.recordErr == nil {
			id := ls.record.ID
			v.InterviewID = &id
		}
	default:
	}
	return v
}

// Sessions keeps the live interviews of all users in memory and stores
// each one as an interview record when it ends.
type Sessions struct {
	interviews  *Interview
	llm         model.ChatCompleter
	transcriber model.Transcriber
	cfg         SessionConfig
	logger      *logger.Logger
	now         func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]*liveSession
}

// NewSessions creates the session registry. transcriber may be nil, in
// which case audio replies are rejected.
func NewSessions(interviews *Interview, llm model.ChatCompleter, transcriber model.Transcriber, cfg SessionConfig, logger *logger.Logger) *Sessions {
	return &Sessions{
		interviews:  interviews,
		llm:         llm,
		transcriber: transcriber,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
		sessions:    make(map[uuid.UUID]*liveSession),
	}
}

// Start registers a new interview and waits for its opening question.
func (s *Sessions) Start(ctx context.Context, ownerID uuid.UUID, in SessionStart) (LiveSession, error) {
	in.JobRole = strings.TrimSpace(in.JobRole)
	in.ExperienceLevel = strings.TrimSpace(in.ExperienceLevel)
	if in.JobRole == "" {
		return LiveSession{}, apperrors.NewErrValidation("jobRole is required")
	}
	if in.ExperienceLevel == "" {
		return LiveSession{}, apperrors.NewErrValidation("experienceLevel is required")
	}

	ls := &liveSession{
		id:        uuid.New(),
		owner:     ownerID,
		jobRole:   in.JobRole,
		level:     in.ExperienceLevel,
		persisted: make(chan struct{}),
	}
	cfg := interview.Config{
		JobRole:         in.JobRole,
		ExperienceLevel: in.ExperienceLevel,
		FocusAreas:      in.FocusAreas,
		TimeLimit:       s.cfg.TimeLimit,
		MaxTurns:        s.cfg.MaxTurns,
		Retry:           s.cfg.Retry,
	}
	log := s.logger.With("session_id", ls.id)
	ls.seq = interview.New(cfg, s.llm, nil, log,
		interview.WithClock(s.now),
		interview.WithOnEnd(func(snap interview.Snapshot) { s.persist(ls, snap) }))

	s.mu.Lock()
	s.sessions[ls.id] = ls
	s.mu.Unlock()

	s.logger.Info("Sessions service: interview started",
		"user_id", ownerID,
		"session_id", ls.id,
		"job_role", in.JobRole)

	if err := ls.seq.Start(ctx); err != nil {
		return LiveSession{}, sessionError(err)
	}
	return ls.view(), nil
}

func (s *Sessions) Get(_ context.Context, ownerID, id uuid.UUID) (LiveSession, error) {
	ls, err := s.lookup(ownerID, id)
	if err != nil {
		return LiveSession{}, err
	}
	return ls.view(), nil
}

// Reply submits a typed candidate answer and waits for the next question.
func (s *Sessions) Reply(ctx context.Context, ownerID, id uuid.UUID, text string) (LiveSession, error) {
	ls, err := s.lookup(ownerID, id)
	if err != nil {
		return LiveSession{}, err
	}
	if err := ls.seq.Submit(ctx, text); err != nil {
		return LiveSession{}, sessionError(err)
	}
	return ls.view(), nil
}

// Transcript feeds one streaming speech-to-text fragment.
func (s *Sessions) Transcript(_ context.Context, ownerID, id uuid.UUID, text string, isFinal bool) (LiveSession, error) {
	ls, err := s.lookup(ownerID, id)
	if err != nil {
		return LiveSession{}, err
	}
	if err := ls.seq.HandleTranscript(text, isFinal); err != nil {
		return LiveSession{}, sessionError(err)
	}
	return ls.view(), nil
}

// UtteranceEnd submits the buffered final fragments, if any. The returned
// flag reports whether a reply was submitted.
func (s *Sessions) UtteranceEnd(ctx context.Context, ownerID, id uuid.UUID) (LiveSession, bool, error) {
	ls, err := s.lookup(ownerID, id)
	if err != nil {
		return LiveSession{}, false, err
	}
	submitted, err := ls.seq.HandleUtteranceEnd(ctx)
	if err != nil {
		return LiveSession{}, submitted, sessionError(err)
	}
	return ls.view(), submitted, nil
}

// ReplyAudio transcribes a recorded answer and submits it as the reply.
func (s *Sessions) ReplyAudio(ctx context.Context, ownerID, id uuid.UUID, audio io.Reader, contentType string) (LiveSession, error) {
	if s.transcriber == nil {
		return LiveSession{}, apperrors.NewErrValidation("Audio transcription is not enabled on this server")
	}
	ls, err := s.lookup(ownerID, id)
	if err != nil {
		return LiveSession{}, err
	}
	if state := ls.seq.State(); state != interview.StateAwaitingCandidateInput {
		return LiveSession{}, sessionError(stateErr(state))
	}

	// The body is read once, so only the first attempt can be sent.
	text, err := s.transcriber.TranscribeFile(ctx, audio, contentType)
	if err != nil {
		msg := ls.seq.ReportError(err)
		s.logger.Error("Sessions service: transcription failed",
			"session_id", id,
			"error", err.Error())
		return LiveSession{}, apperrors.NewErrUpstream(msg, err)
	}
	if strings.TrimSpace(text) == "" {
		return LiveSession{}, apperrors.NewErrValidation("No speech was recognized in the recording")
	}

	return s.Reply(ctx, ownerID, id, text)
}

// CaptureError records a microphone failure reported by the browser.
func (s *Sessions) CaptureError(_ context.Context, ownerID, id uuid.UUID, name, message string) (LiveSession, error) {
	ls, err := s.lookup(ownerID, id)
	if err != nil {
		return LiveSession{}, err
	}
	ls.seq.ReportError(&interview.CaptureError{Name: name, Message: message})
	return ls.view(), nil
}

// End finishes the interview and returns the stored record.
func (s *Sessions) End(ctx context.Context, ownerID, id uuid.UUID) (model.Interview, error) {
	ls, err := s.lookup(ownerID, id)
	if err != nil {
		return model.Interview{}, err
	}
	ls.seq.End(interview.EndReasonCandidate)

	select {
	case <-ls.persisted:
	case <-ctx.Done():
		return model.Interview{}, ctx.Err()
	}
	if ls.recordErr != nil {
		return model.Interview{}, fmt.Errorf("failed to store interview: %w", ls.recordErr)
	}
	return ls.record, nil
}

// Run drops expired sessions until ctx is done.
func (s *Sessions) Run(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

// Shutdown ends every running interview so its conversation is stored.
func (s *Sessions) Shutdown() {
	s.mu.Lock()
	live := make([]*liveSession, 0, len(s.sessions))
	for _, ls := range s.sessions {
		live = append(live, ls)
	}
	s.mu.Unlock()

	for _, ls := range live {
		ls.seq.End(interview.EndReasonShutdown)
	}
}

func (s *Sessions) sweep() {
	if s.cfg.SessionTTL <= 0 {
		return
	}
	now := s.now()

	var stale []*liveSession
	s.mu.Lock()
	for id, ls := range s.sessions {
		snap := ls.seq.Snapshot()
		switch {
		case snap.EndedAt != nil && now.Sub(*snap.EndedAt) > s.cfg.SessionTTL:
			delete(s.sessions, id)
		case snap.EndedAt == nil && now.Sub(snap.StartedAt) > s.cfg.SessionTTL:
			stale = append(stale, ls)
		}
	}
	s.mu.Unlock()

	for _, ls := range stale {
		s.logger.Info("Sessions service: ending abandoned interview",
			"session_id", ls.id)
		ls.seq.End(interview.EndReasonTimeLimit)
	}
}

// persist runs once per session, from whichever goroutine ended it.
func (s *Sessions) persist(ls *liveSession, snap interview.Snapshot) {
	defer close(ls.persisted)

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	duration := snap.ElapsedSec
	transcript := snap.Turns
	ls.record, ls.recordErr = s.interviews.Create(ctx, ls.owner, model.InterviewUpdate{
		JobRole:         &ls.jobRole,
		ExperienceLevel: &ls.level,
		Duration:        &duration,
		Transcript:      &transcript,
	})
	if ls.recordErr != nil {
		s.logger.Error("Sessions service: failed to store finished interview",
			"session_id", ls.id,
			"user_id", ls.owner,
			"error", ls.recordErr.Error())
		return
	}

	s.logger.Info("Sessions service: interview stored",
		"session_id", ls.id,
		"interview_id", ls.record.ID,
		"reason", string(snap.EndReason))
}

// lookup returns the session only to its owner.
func (s *Sessions) lookup(ownerID, id uuid.UUID) (*liveSession, error) {
	s.mu.Lock()
	ls, ok := s.sessions[id]
	s.mu.Unlock()

	if !ok || ls.owner != ownerID {
		return nil, apperrors.NewErrRecordNotFound(sessionEntity)
	}
	return ls, nil
}

func stateErr(state interview.State) error {
	if state == interview.StateEnded {
		return interview.ErrEnded
	}
	return fmt.Errorf("%w: %s", interview.ErrInvalidState, state)
}

func sessionError(err error) error {
	switch {
	case errors.Is(err, interview.ErrEmptyReply):
		return apperrors.NewErrValidation("Reply text is required")
	case errors.Is(err, interview.ErrEnded):
		return apperrors.NewErrInvalidState("The interview has already ended", err)
	case errors.Is(err, interview.ErrInvalidState):
		return apperrors.NewErrInvalidState("The interviewer is not waiting for an answer", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return apperrors.NewErrUpstream(interview.ClassifyError(err), err)
	}
}
