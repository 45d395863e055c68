package interview

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hiready/hiready-server/internal/mocks"
	"github.com/hiready/hiready-server/internal/model"
	"github.com/hiready/hiready-server/internal/retry"
	"github.com/hiready/hiready-server/internal/testutil"
)

var onePolicy = retry.Policy{Attempts: 1, BaseDelay: time.Millisecond}

func newTestSequencer(t *testing.T, llm model.ChatCompleter, cfg Config, opts ...Option) *Sequencer {
	t.Helper()
	if cfg.Retry.Attempts == 0 {
		cfg.Retry = onePolicy
	}
	s := New(cfg, llm, ImmediateSpeaker{}, testutil.MakeNoopLogger(), opts...)
	t.Cleanup(func() { s.End(EndReasonShutdown) })
	return s
}

func startedSequencer(t *testing.T, llm *mocks.ChatCompleter, cfg Config, opts ...Option) *Sequencer {
	t.Helper()
	llm.On("Complete", mock.Anything, mock.Anything).Return("Tell me about yourself.", nil).Once()
	s := newTestSequencer(t, llm, cfg, opts...)
	require.NoError(t, s.Start(context.Background()))
	return s
}

func TestSequencer_Start(t *testing.T) {
	llm := mocks.NewChatCompleter(t)
	llm.On("Complete", mock.Anything, mock.MatchedBy(func(msgs []model.ChatMessage) bool {
		return len(msgs) == 2 &&
			msgs[0].Role == model.ChatRoleSystem &&
			assert.ObjectsAreEqual(model.ChatMessage{Role: model.ChatRoleUser, Content: OpeningRequest}, msgs[1])
	})).Return("  Welcome! Tell me about yourself.  ", nil).Once()

	s := newTestSequencer(t, llm, Config{JobRole: "Backend Engineer", ExperienceLevel: "Senior"})
	assert.Equal(t, StateNotStarted, s.State())

	require.NoError(t, s.Start(context.Background()))

	snap := s.Snapshot()
	assert.Equal(t, StateAwaitingCandidateInput, snap.State)
	require.Len(t, snap.Turns, 1)
	assert.Equal(t, model.TurnRoleInterviewer, snap.Turns[0].Role)
	assert.Equal(t, "Welcome! Tell me about yourself.", snap.Turns[0].Text)
	assert.Equal(t, 1, snap.TurnCount)

	err := s.Start(context.Background())
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestSequencer_StartFallsBackOnFailure(t *testing.T) {
	llm := mocks.NewChatCompleter(t)
	llm.On("Complete", mock.Anything, mock.Anything).
		Return("", &model.UpstreamError{Service: "llm", StatusCode: http.StatusUnauthorized, Err: errors.New("bad key")}).Once()

	s := newTestSequencer(t, llm, Config{})
	require.NoError(t, s.Start(context.Background()))

	snap := s.Snapshot()
	require.Len(t, snap.Turns, 1)
	assert.Equal(t, FallbackOpening, snap.Turns[0].Text)
	assert.Equal(t, StateAwaitingCandidateInput, snap.State)
}

func TestSequencer_SubmitAdvancesTurn(t *testing.T) {
	llm := mocks.NewChatCompleter(t)
	s := startedSequencer(t, llm, Config{})

	llm.On("Complete", mock.Anything, mock.MatchedBy(func(msgs []model.ChatMessage) bool {
		return len(msgs) == 3 &&
			msgs[1].Role == model.ChatRoleAssistant &&
			msgs[2] == model.ChatMessage{Role: model.ChatRoleUser, Content: "I build APIs."}
	})).Return("What was your hardest project?", nil).Once()

	require.NoError(t, s.Submit(context.Background(), "  I build APIs. "))

	snap := s.Snapshot()
	require.Len(t, snap.Turns, 3)
	assert.Equal(t, []model.TurnRole{model.TurnRoleInterviewer, model.TurnRoleCandidate, model.TurnRoleInterviewer},
		[]model.TurnRole{snap.Turns[0].Role, snap.Turns[1].Role, snap.Turns[2].Role})
	assert.Equal(t, "I build APIs.", snap.Turns[1].Text)
	assert.Equal(t, 2, snap.TurnCount)
	assert.Equal(t, StateAwaitingCandidateInput, snap.State)
}

func TestSequencer_SubmitRejected(t *testing.T) {
	llm := mocks.NewChatCompleter(t)

	notStarted := newTestSequencer(t, llm, Config{})
	assert.ErrorIs(t, notStarted.Submit(context.Background(), "hi"), ErrInvalidState)

	s := startedSequencer(t, llm, Config{})
	assert.ErrorIs(t, s.Submit(context.Background(), "   "), ErrEmptyReply)
	assert.Len(t, s.Snapshot().Turns, 1)
}

func TestSequencer_SubmitFailureRollsBack(t *testing.T) {
	llm := mocks.NewChatCompleter(t)
	s := startedSequencer(t, llm, Config{})

	rateLimited := &model.UpstreamError{Service: "llm", StatusCode: http.StatusTooManyRequests, Err: errors.New("slow down")}
	llm.On("Complete", mock.Anything, mock.Anything).Return("", rateLimited).Once()

	err := s.Submit(context.Background(), "my answer")
	assert.ErrorIs(t, err, rateLimited)

	snap := s.Snapshot()
	assert.Equal(t, StateAwaitingCandidateInput, snap.State)
	require.Len(t, snap.Turns, 1)
	assert.Equal(t, msgRateLimited, snap.LastError)

	llm.On("Complete", mock.Anything, mock.Anything).Return("Thanks. Next question?", nil).Once()
	require.NoError(t, s.Submit(context.Background(), "my answer"))
	snap = s.Snapshot()
	assert.Len(t, snap.Turns, 3)
	assert.Empty(t, snap.LastError)
}

func TestSequencer_SubmitRetriesTransientFailure(t *testing.T) {
	llm := mocks.NewChatCompleter(t)
	s := startedSequencer(t, llm, Config{Retry: retry.Policy{Attempts: 3, BaseDelay: time.Millisecond}})

	llm.On("Complete", mock.Anything, mock.Anything).
		Return("", &model.UpstreamError{Service: "llm", StatusCode: http.StatusServiceUnavailable, Err: errors.New("down")}).Once()
	llm.On("Complete", mock.Anything, mock.Anything).Return("Go on.", nil).Once()

	require.NoError(t, s.Submit(context.Background(), "answer"))
	assert.Len(t, s.Snapshot().Turns, 3)
}

func TestSequencer_TranscriptBuffering(t *testing.T) {
	llm := mocks.NewChatCompleter(t)
	s := startedSequencer(t, llm, Config{})

	submitted, err := s.HandleUtteranceEnd(context.Background())
	require.NoError(t, err)
	assert.False(t, submitted)
	assert.Equal(t, StateAwaitingCandidateInput, s.State())

	require.NoError(t, s.HandleTranscript("I have", false))
	assert.Equal(t, "I have", s.Snapshot().Interim)

	require.NoError(t, s.HandleTranscript("I have five years", true))
	require.NoError(t, s.HandleTranscript("  ", true))
	require.NoError(t, s.HandleTranscript("of Go experience.", true))

	snap := s.Snapshot()
	assert.Empty(t, snap.Interim)
	assert.Equal(t, "I have five years of Go experience.", snap.Buffered)
	assert.Len(t, snap.Turns, 1)

	llm.On("Complete", mock.Anything, mock.Anything).Return("Great. Why Go?", nil).Once()
	submitted, err = s.HandleUtteranceEnd(context.Background())
	require.NoError(t, err)
	assert.True(t, submitted)

	snap = s.Snapshot()
	require.Len(t, snap.Turns, 3)
	assert.Equal(t, "I have five years of Go experience.", snap.Turns[1].Text)
	assert.Empty(t, snap.Buffered)
}

func TestSequencer_TranscriptRejectedWhileNotListening(t *testing.T) {
	llm := mocks.NewChatCompleter(t)
	s := newTestSequencer(t, llm, Config{})

	assert.ErrorIs(t, s.HandleTranscript("hello", true), ErrInvalidState)

	s.End(EndReasonCandidate)
	assert.ErrorIs(t, s.HandleTranscript("hello", true), ErrEnded)
}

func TestSequencer_EndDiscardsLateReply(t *testing.T) {
	llm := mocks.NewChatCompleter(t)
	s := startedSequencer(t, llm, Config{})

	called := make(chan struct{})
	llm.On("Complete", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		close(called)
		<-args.Get(0).(context.Context).Done()
	}).Return("too late", nil).Once()

	result := make(chan error, 1)
	go func() { result <- s.Submit(context.Background(), "answer") }()

	<-called
	assert.Equal(t, StateProcessing, s.State())
	snap := s.End(EndReasonCandidate)

	select {
	case err := <-result:
		assert.ErrorIs(t, err, ErrEnded)
	case <-time.After(2 * time.Second):
		t.Fatal("submit did not return after end")
	}

	assert.Equal(t, StateEnded, snap.State)
	final := s.Snapshot()
	require.Len(t, final.Turns, 2)
	for _, turn := range final.Turns {
		assert.NotEqual(t, "too late", turn.Text)
	}
}

func TestSequencer_OnEndRunsOnce(t *testing.T) {
	var calls atomic.Int32
	var got Snapshot
	llm := mocks.NewChatCompleter(t)
	s := startedSequencer(t, llm, Config{}, WithOnEnd(func(snap Snapshot) {
		calls.Add(1)
		got = snap
	}))

	first := s.End(EndReasonCandidate)
	second := s.End(EndReasonTimeLimit)

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, EndReasonCandidate, first.EndReason)
	assert.Equal(t, EndReasonCandidate, second.EndReason)
	assert.Equal(t, first.Turns, got.Turns)
	require.NotNil(t, got.EndedAt)

	select {
	case <-s.Done():
	default:
		t.Fatal("done channel not closed")
	}

	assert.ErrorIs(t, s.Submit(context.Background(), "hi"), ErrEnded)
	assert.ErrorIs(t, s.Start(context.Background()), ErrEnded)
}

func TestSequencer_ConclusionEndsInterview(t *testing.T) {
	llm := mocks.NewChatCompleter(t)
	s := startedSequencer(t, llm, Config{})

	llm.On("Complete", mock.Anything, mock.Anything).
		Return("Thanks for sharing. That concludes our interview, goodbye!", nil).Once()

	require.NoError(t, s.Submit(context.Background(), "final answer"))

	snap := s.Snapshot()
	assert.Equal(t, StateEnded, snap.State)
	assert.Equal(t, EndReasonConcluded, snap.EndReason)
	assert.Len(t, snap.Turns, 3)
}

func TestSequencer_MaxTurnsClosesInterview(t *testing.T) {
	llm := mocks.NewChatCompleter(t)
	s := startedSequencer(t, llm, Config{MaxTurns: 2})

	llm.On("Complete", mock.Anything, mock.Anything).Return("Second question?", nil).Once()
	require.NoError(t, s.Submit(context.Background(), "first answer"))

	require.NoError(t, s.Submit(context.Background(), "second answer"))

	snap := s.Snapshot()
	assert.Equal(t, StateEnded, snap.State)
	assert.Equal(t, EndReasonMaxTurns, snap.EndReason)
	require.Len(t, snap.Turns, 5)
	assert.Equal(t, ClosingLine, snap.Turns[4].Text)
}

func TestSequencer_TimeLimit(t *testing.T) {
	llm := mocks.NewChatCompleter(t)
	s := startedSequencer(t, llm, Config{TimeLimit: 20 * time.Millisecond})

	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("interview did not end at the time limit")
	}

	assert.Equal(t, EndReasonTimeLimit, s.Snapshot().EndReason)
}

func TestSequencer_ElapsedUsesClock(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	llm := mocks.NewChatCompleter(t)
	s := startedSequencer(t, llm, Config{}, WithClock(clock))

	now = now.Add(90 * time.Second)
	snap := s.End(EndReasonCandidate)
	assert.Equal(t, 90, snap.ElapsedSec)
}

func TestSequencer_ReportError(t *testing.T) {
	llm := mocks.NewChatCompleter(t)
	s := startedSequencer(t, llm, Config{})

	msg := s.ReportError(&CaptureError{Name: CaptureNotAllowed})
	assert.Equal(t, msgMicDenied, msg)
	assert.Equal(t, msgMicDenied, s.Snapshot().LastError)
	assert.Equal(t, StateAwaitingCandidateInput, s.State())
}

type recordingSpeaker struct {
	spoken []string
}

func (r *recordingSpeaker) Speak(_ context.Context, text string) error {
	r.spoken = append(r.spoken, text)
	return nil
}

func TestSequencer_SpeaksEachUtterance(t *testing.T) {
	llm := mocks.NewChatCompleter(t)
	llm.On("Complete", mock.Anything, mock.Anything).Return("Hello.", nil).Once()
	llm.On("Complete", mock.Anything, mock.Anything).Return("Next.", nil).Once()

	speaker := &recordingSpeaker{}
	s := New(Config{Retry: onePolicy}, llm, speaker, testutil.MakeNoopLogger())
	t.Cleanup(func() { s.End(EndReasonShutdown) })

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Submit(context.Background(), "Hi"))

	assert.Equal(t, []string{"Hello.", "Next."}, speaker.spoken)
}

func TestState_Text(t *testing.T) {
	for st := StateNotStarted; st <= StateEnded; st++ {
		b, err := st.MarshalText()
		require.NoError(t, err)

		var got State
		require.NoError(t, got.UnmarshalText(b))
		assert.Equal(t, st, got)
	}

	var s State
	assert.Error(t, s.UnmarshalText([]byte("dancing")))
}
