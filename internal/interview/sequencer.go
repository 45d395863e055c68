// Package interview runs one mock interview: it asks an LLM for each
// interviewer utterance, collects candidate replies, keeps the ordered
// conversation log and decides when the interview is over.
package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hiready/hiready-server/internal/logger"
	"github.com/hiready/hiready-server/internal/model"
	"github.com/hiready/hiready-server/internal/retry"
)

// State is a step of the interview turn cycle.
type State int

const (
	StateNotStarted State = iota
	StateAwaitingFirstQuestion
	StateSpeaking
	StateAwaitingCandidateInput
	StateProcessing
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateAwaitingFirstQuestion:
		return "awaiting_first_question"
	case StateSpeaking:
		return "speaking"
	case StateAwaitingCandidateInput:
		return "awaiting_candidate_input"
	case StateProcessing:
		return "processing"
	case StateEnded:
		return "ended"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	for st := StateNotStarted; st <= StateEnded; st++ {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown interview state %q", text)
}

// EndReason tells why an interview ended.
type EndReason string

const (
	EndReasonCandidate EndReason = "candidate"
	EndReasonTimeLimit EndReason = "time_limit"
	EndReasonConcluded EndReason = "concluded"
	EndReasonMaxTurns  EndReason = "max_turns"
	EndReasonShutdown  EndReason = "shutdown"
)

var (
	ErrInvalidState = errors.New("action is not allowed in the current interview state")
	ErrEnded        = errors.New("interview has ended")
	ErrEmptyReply   = errors.New("reply is empty")
)

// Speaker renders an interviewer utterance and returns once it is finished.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// ImmediateSpeaker finishes at once. It is used when the client plays the
// audio itself and the server has nothing to wait for.
type ImmediateSpeaker struct{}

func (ImmediateSpeaker) Speak(context.Context, string) error { return nil }

// Config describes one interview.
type Config struct {
	JobRole         string
	ExperienceLevel string
	FocusAreas      []string
	// SystemPrompt overrides the persona built from the fields above.
	SystemPrompt string
	// TimeLimit ends the interview after the given time. Zero means no limit.
	TimeLimit time.Duration
	// MaxTurns is the number of interviewer questions before the closing
	// line. Zero means no limit.
	MaxTurns int
	Retry    retry.Policy
}

// Snapshot is a consistent copy of a sequencer's state.
type Snapshot struct {
	State      State                    `json:"state"`
	Turns      []model.ConversationTurn `json:"transcript"`
	TurnCount  int                      `json:"turnCount"`
	Interim    string                   `json:"interim"`
	Buffered   string                   `json:"buffered"`
	LastError  string                   `json:"lastError,omitempty"`
	StartedAt  time.Time                `json:"startedAt"`
	EndedAt    *time.Time               `json:"endedAt,omitempty"`
	EndReason  EndReason                `json:"endReason,omitempty"`
	ElapsedSec int                      `json:"elapsedSeconds"`
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithOnEnd registers fn to run once, outside any lock, when the interview ends.
func WithOnEnd(fn func(Snapshot)) Option {
	return func(s *Sequencer) { s.onEnd = fn }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Sequencer) { s.now = now }
}

// Sequencer is the turn-taking state machine of one interview. It is safe
// for concurrent use; at most one LLM call is in flight at a time.
type Sequencer struct {
	cfg     Config
	system  string
	llm     model.ChatCompleter
	speaker Speaker
	logger  *logger.Logger
	onEnd   func(Snapshot)
	now     func() time.Time

	// ctx lives as long as the interview and is cancelled by End.
	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	state     State
	turns     []model.ConversationTurn
	asked     int
	buffer    []string
	interim   string
	lastErr   string
	startedAt time.Time
	endedAt   time.Time
	reason    EndReason
	timer     *time.Timer
	done      chan struct{}
}

// New creates a sequencer in StateNotStarted.
func New(cfg Config, llm model.ChatCompleter, speaker Speaker, logger *logger.Logger, opts ...Option) *Sequencer {
	if speaker == nil {
		speaker = ImmediateSpeaker{}
	}
	if cfg.Retry.Attempts == 0 {
		cfg.Retry = retry.DefaultPolicy()
	}
	system := cfg.SystemPrompt
	if system == "" {
		system = SystemPrompt(cfg.JobRole, cfg.ExperienceLevel, cfg.FocusAreas)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Sequencer{
		cfg:     cfg,
		system:  system,
		llm:     llm,
		speaker: speaker,
		logger:  logger,
		now:     time.Now,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Done is closed when the interview ends.
func (s *Sequencer) Done() <-chan struct{} {
	return s.done
}

// Start requests the opening utterance and speaks it. When the LLM fails
// a fixed opening question is used so the interview can still begin.
func (s *Sequencer) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateNotStarted {
		state := s.state
		s.mu.Unlock()
		return s.stateError(state)
	}
	s.state = StateAwaitingFirstQuestion
	s.startedAt = s.now()
	if s.cfg.TimeLimit > 0 {
		s.timer = time.AfterFunc(s.cfg.TimeLimit, func() { s.End(EndReasonTimeLimit) })
	}
	msgs := append(chatHistory(s.system, nil), model.ChatMessage{Role: model.ChatRoleUser, Content: OpeningRequest})
	s.mu.Unlock()

	text, err := s.complete(ctx, msgs)
	if err != nil {
		if errors.Is(err, ErrEnded) {
			return err
		}
		s.logger.Warn("Interview sequencer: opening request failed, using fallback",
			"error", err.Error())
		text = FallbackOpening
	}

	return s.deliverAndConclude(text)
}

// Submit records a candidate reply and waits for the next interviewer
// utterance. On LLM failure the reply is withdrawn, the sequencer returns to
// StateAwaitingCandidateInput and the error is returned.
func (s *Sequencer) Submit(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)

	s.mu.Lock()
	if s.state != StateAwaitingCandidateInput {
		state := s.state
		s.mu.Unlock()
		return s.stateError(state)
	}
	if text == "" {
		s.mu.Unlock()
		return ErrEmptyReply
	}

	ts := s.now()
	s.turns = append(s.turns, model.ConversationTurn{Role: model.TurnRoleCandidate, Text: text, Timestamp: &ts})
	pending := len(s.turns) - 1
	s.state = StateProcessing
	s.buffer = nil
	s.interim = ""
	s.lastErr = ""
	closing := s.cfg.MaxTurns > 0 && s.asked >= s.cfg.MaxTurns
	msgs := chatHistory(s.system, s.turns)
	s.mu.Unlock()

	if closing {
		if err := s.deliver(ClosingLine); err != nil {
			return err
		}
		s.End(EndReasonMaxTurns)
		return nil
	}

	reply, err := s.complete(ctx, msgs)
	if err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.state == StateEnded {
			return ErrEnded
		}
		s.turns = s.turns[:pending]
		s.state = StateAwaitingCandidateInput
		s.lastErr = ClassifyError(err)
		s.logger.Error("Interview sequencer: failed to get interviewer reply",
			"turn", pending,
			"error", err.Error())
		return err
	}

	return s.deliverAndConclude(reply)
}

// HandleTranscript takes one speech-to-text fragment. Final fragments are
// buffered in arrival order; interim ones only replace the live preview.
func (s *Sequencer) HandleTranscript(text string, isFinal bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAwaitingCandidateInput {
		return s.stateError(s.state)
	}

	if !isFinal {
		s.interim = text
		return nil
	}
	s.interim = ""
	if t := strings.TrimSpace(text); t != "" {
		s.buffer = append(s.buffer, t)
	}
	return nil
}

// HandleUtteranceEnd submits the buffered fragments as the candidate reply.
// With an empty buffer it does nothing and reports false.
func (s *Sequencer) HandleUtteranceEnd(ctx context.Context) (bool, error) {
	s.mu.Lock()
	if s.state != StateAwaitingCandidateInput || len(s.buffer) == 0 {
		s.mu.Unlock()
		return false, nil
	}
	text := strings.Join(s.buffer, " ")
	s.mu.Unlock()

	return true, s.Submit(ctx, text)
}

// ReportError records a client-side failure such as a microphone error
// without changing the state, and returns the message shown to the candidate.
func (s *Sequencer) ReportError(err error) string {
	msg := ClassifyError(err)

	s.mu.Lock()
	s.lastErr = msg
	s.mu.Unlock()

	return msg
}

// End moves the interview to StateEnded from any state. Pending LLM calls
// and speech are cancelled and their results discarded. Only the first call
// has an effect; every call returns the final snapshot.
func (s *Sequencer) End(reason EndReason) Snapshot {
	s.mu.Lock()
	if s.state == StateEnded {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap
	}
	s.state = StateEnded
	s.endedAt = s.now()
	if s.startedAt.IsZero() {
		s.startedAt = s.endedAt
	}
	s.reason = reason
	if s.timer != nil {
		s.timer.Stop()
	}
	s.cancel()
	snap := s.snapshotLocked()
	close(s.done)
	s.mu.Unlock()

	s.logger.Info("Interview sequencer: interview ended",
		"reason", string(reason),
		"turns", len(snap.Turns))

	if s.onEnd != nil {
		s.onEnd(snap)
	}
	return snap
}

// Snapshot returns a copy of the current state.
func (s *Sequencer) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// State returns the current state.
func (s *Sequencer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// deliver appends an interviewer utterance, speaks it and opens the floor
// to the candidate. An utterance that arrives after End is dropped.
func (s *Sequencer) deliver(text string) error {
	s.mu.Lock()
	if s.state == StateEnded {
		s.mu.Unlock()
		return ErrEnded
	}
	ts := s.now()
	s.turns = append(s.turns, model.ConversationTurn{Role: model.TurnRoleInterviewer, Text: text, Timestamp: &ts})
	s.asked++
	s.state = StateSpeaking
	s.mu.Unlock()

	if err := s.speaker.Speak(s.ctx, text); err != nil && s.ctx.Err() == nil {
		s.logger.Warn("Interview sequencer: speech failed",
			"error", err.Error())
	}

	s.mu.Lock()
	if s.state != StateSpeaking {
		s.mu.Unlock()
		return nil
	}
	s.state = StateAwaitingCandidateInput
	s.mu.Unlock()

	return nil
}

// deliverAndConclude delivers text and ends the interview when the
// interviewer has closed it.
func (s *Sequencer) deliverAndConclude(text string) error {
	if err := s.deliver(text); err != nil {
		return err
	}
	if IsConclusion(text) {
		s.End(EndReasonConcluded)
	}
	return nil
}

// complete calls the LLM with retries. The call is cancelled when either
// ctx or the interview ends.
func (s *Sequencer) complete(ctx context.Context, msgs []model.ChatMessage) (string, error) {
	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(s.ctx, cancel)
	defer stop()

	var text string
	err := retry.Do(callCtx, s.cfg.Retry, func(ctx context.Context) error {
		out, err := s.llm.Complete(ctx, msgs)
		if err != nil {
			return err
		}
		text = strings.TrimSpace(out)
		if text == "" {
			return errors.New("empty interviewer reply")
		}
		return nil
	})
	if s.ctx.Err() != nil {
		return "", ErrEnded
	}
	if err != nil {
		return "", err
	}
	return text, nil
}

func (s *Sequencer) stateError(state State) error {
	if state == StateEnded {
		return ErrEnded
	}
	return fmt.Errorf("%w: %s", ErrInvalidState, state)
}

func (s *Sequencer) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:     s.state,
		Turns:     append([]model.ConversationTurn{}, s.turns...),
		TurnCount: s.asked,
		Interim:   s.interim,
		Buffered:  strings.Join(s.buffer, " "),
		LastError: s.lastErr,
		StartedAt: s.startedAt,
		EndReason: s.reason,
	}
	end := s.now()
	if s.state == StateEnded {
		e := s.endedAt
		snap.EndedAt = &e
		end = e
	}
	if !s.startedAt.IsZero() {
		snap.ElapsedSec = int(end.Sub(s.startedAt) / time.Second)
	}
	return snap
}
