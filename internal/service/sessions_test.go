package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hiready/hiready-server/internal/apperrors"
	"github.com/hiready/hiready-server/internal/interview"
	"github.com/hiready/hiready-server/internal/mocks"
	"github.com/hiready/hiready-server/internal/model"
	"github.com/hiready/hiready-server/internal/repository/memory"
	"github.com/hiready/hiready-server/internal/retry"
	"github.com/hiready/hiready-server/internal/testutil"
)

var testSessionConfig = SessionConfig{
	Retry:      retry.Policy{Attempts: 1, BaseDelay: time.Millisecond},
	SessionTTL: time.Hour,
}

func newTestSessions(t *testing.T, transcriber model.Transcriber) (*Sessions, *mocks.ChatCompleter, *Interview) {
	t.Helper()
	llm := mocks.NewChatCompleter(t)
	interviews := NewInterview(memory.NewStore().Interviews(), testutil.MakeNoopLogger())
	s := NewSessions(interviews, llm, transcriber, testSessionConfig, testutil.MakeNoopLogger())
	t.Cleanup(s.Shutdown)
	return s, llm, interviews
}

func startSession(t *testing.T, s *Sessions, llm *mocks.ChatCompleter, owner uuid.UUID) LiveSession {
	t.Helper()
	llm.On("Complete", mock.Anything, mock.Anything).Return("Tell me about yourself.", nil).Once()
	live, err := s.Start(context.Background(), owner, SessionStart{JobRole: "Backend Engineer", ExperienceLevel: "Senior"})
	require.NoError(t, err)
	return live
}

func TestSessions_StartValidation(t *testing.T) {
	s, _, _ := newTestSessions(t, nil)

	_, err := s.Start(context.Background(), uuid.New(), SessionStart{ExperienceLevel: "Senior"})
	requireAPIError(t, err, apperrors.KindValidation)

	_, err = s.Start(context.Background(), uuid.New(), SessionStart{JobRole: "Dev", ExperienceLevel: " "})
	requireAPIError(t, err, apperrors.KindValidation)
}

func TestSessions_FullInterviewIsStored(t *testing.T) {
	ctx := context.Background()
	s, llm, interviews := newTestSessions(t, nil)
	owner := uuid.New()

	live := startSession(t, s, llm, owner)
	assert.Equal(t, interview.StateAwaitingCandidateInput, live.State)
	require.Len(t, live.Turns, 1)
	assert.Equal(t, "Backend Engineer", live.JobRole)

	llm.On("Complete", mock.Anything, mock.Anything).Return("Why Go?", nil).Once()
	live, err := s.Reply(ctx, owner, live.ID, "I build APIs.")
	require.NoError(t, err)
	require.Len(t, live.Turns, 3)
	assert.Equal(t, model.TurnRoleCandidate, live.Turns[1].Role)
	assert.Equal(t, "Why Go?", live.Turns[2].Text)

	record, err := s.End(ctx, owner, live.ID)
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", record.JobRole)
	assert.Equal(t, "Senior", record.ExperienceLevel)
	assert.Len(t, record.Transcript, 3)

	stored, err := interviews.Get(ctx, owner, record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.Transcript, stored.Transcript)

	again, err := s.End(ctx, owner, live.ID)
	require.NoError(t, err)
	assert.Equal(t, record.ID, again.ID)

	view, err := s.Get(ctx, owner, live.ID)
	require.NoError(t, err)
	assert.Equal(t, interview.StateEnded, view.State)
	assert.Equal(t, interview.EndReasonCandidate, view.EndReason)
	require.NotNil(t, view.InterviewID)
	assert.Equal(t, record.ID, *view.InterviewID)

	_, err = s.Reply(ctx, owner, live.ID, "more")
	apiErr := requireAPIError(t, err, apperrors.KindConflict)
	assert.Equal(t, http.StatusConflict, apiErr.HTTPStatus)
}

func TestSessions_OwnerScoping(t *testing.T) {
	s, llm, _ := newTestSessions(t, nil)
	owner := uuid.New()
	live := startSession(t, s, llm, owner)

	_, err := s.Get(context.Background(), uuid.New(), live.ID)
	requireAPIError(t, err, apperrors.KindNotFound)

	_, err = s.End(context.Background(), uuid.New(), live.ID)
	requireAPIError(t, err, apperrors.KindNotFound)

	_, err = s.Get(context.Background(), owner, uuid.New())
	requireAPIError(t, err, apperrors.KindNotFound)
}

func TestSessions_ReplyFailureIsClassified(t *testing.T) {
	ctx := context.Background()
	s, llm, _ := newTestSessions(t, nil)
	owner := uuid.New()
	live := startSession(t, s, llm, owner)

	llm.On("Complete", mock.Anything, mock.Anything).
		Return("", &model.UpstreamError{Service: "llm", StatusCode: http.StatusTooManyRequests, Err: errors.New("slow down")}).Once()

	_, err := s.Reply(ctx, owner, live.ID, "My answer")
	apiErr := requireAPIError(t, err, apperrors.KindUpstream)
	assert.Equal(t, "API rate limit exceeded. Please try again later.", apiErr.Message)

	view, err := s.Get(ctx, owner, live.ID)
	require.NoError(t, err)
	assert.Equal(t, interview.StateAwaitingCandidateInput, view.State)
	assert.Len(t, view.Turns, 1)
	assert.Equal(t, apiErr.Message, view.LastError)

	_, err = s.Reply(ctx, owner, live.ID, "   ")
	requireAPIError(t, err, apperrors.KindValidation)
}

func TestSessions_StreamingTranscript(t *testing.T) {
	ctx := context.Background()
	s, llm, _ := newTestSessions(t, nil)
	owner := uuid.New()
	live := startSession(t, s, llm, owner)

	view, submitted, err := s.UtteranceEnd(ctx, owner, live.ID)
	require.NoError(t, err)
	assert.False(t, submitted)
	assert.Len(t, view.Turns, 1)

	_, err = s.Transcript(ctx, owner, live.ID, "I have", false)
	require.NoError(t, err)
	_, err = s.Transcript(ctx, owner, live.ID, "I have five", true)
	require.NoError(t, err)
	view, err = s.Transcript(ctx, owner, live.ID, "years of Go", true)
	require.NoError(t, err)
	assert.Equal(t, "I have five years of Go", view.Buffered)

	llm.On("Complete", mock.Anything, mock.Anything).Return("Nice. Next question?", nil).Once()
	view, submitted, err = s.UtteranceEnd(ctx, owner, live.ID)
	require.NoError(t, err)
	assert.True(t, submitted)
	require.Len(t, view.Turns, 3)
	assert.Equal(t, "I have five years of Go", view.Turns[1].Text)
	assert.Empty(t, view.Buffered)
}

func TestSessions_ReplyAudio(t *testing.T) {
	ctx := context.Background()

	t.Run("transcribes and replies", func(t *testing.T) {
		tr := mocks.NewTranscriber(t)
		s, llm, _ := newTestSessions(t, tr)
		owner := uuid.New()
		live := startSession(t, s, llm, owner)

		tr.On("TranscribeFile", mock.Anything, mock.Anything, "audio/webm").Return("I like testing", nil).Once()
		llm.On("Complete", mock.Anything, mock.Anything).Return("Why?", nil).Once()

		view, err := s.ReplyAudio(ctx, owner, live.ID, strings.NewReader("audio"), "audio/webm")
		require.NoError(t, err)
		require.Len(t, view.Turns, 3)
		assert.Equal(t, "I like testing", view.Turns[1].Text)
	})

	t.Run("transcription failure is reported", func(t *testing.T) {
		tr := mocks.NewTranscriber(t)
		s, llm, _ := newTestSessions(t, tr)
		owner := uuid.New()
		live := startSession(t, s, llm, owner)

		tr.On("TranscribeFile", mock.Anything, mock.Anything, mock.Anything).
			Return("", &model.UpstreamError{Service: "deepgram", StatusCode: http.StatusUnauthorized, Err: errors.New("bad key")}).Once()

		_, err := s.ReplyAudio(ctx, owner, live.ID, strings.NewReader("audio"), "audio/webm")
		apiErr := requireAPIError(t, err, apperrors.KindUpstream)
		assert.Equal(t, "Invalid API key. Please check your configuration.", apiErr.Message)

		view, err := s.Get(ctx, owner, live.ID)
		require.NoError(t, err)
		assert.Equal(t, apiErr.Message, view.LastError)
	})

	t.Run("silence", func(t *testing.T) {
		tr := mocks.NewTranscriber(t)
		s, llm, _ := newTestSessions(t, tr)
		owner := uuid.New()
		live := startSession(t, s, llm, owner)

		tr.On("TranscribeFile", mock.Anything, mock.Anything, mock.Anything).Return("  ", nil).Once()

		_, err := s.ReplyAudio(ctx, owner, live.ID, strings.NewReader("audio"), "audio/webm")
		requireAPIError(t, err, apperrors.KindValidation)
	})

	t.Run("disabled", func(t *testing.T) {
		s, _, _ := newTestSessions(t, nil)
		_, err := s.ReplyAudio(ctx, uuid.New(), uuid.New(), strings.NewReader("audio"), "audio/webm")
		requireAPIError(t, err, apperrors.KindValidation)
	})
}

func TestSessions_CaptureError(t *testing.T) {
	s, llm, _ := newTestSessions(t, nil)
	owner := uuid.New()
	live := startSession(t, s, llm, owner)

	view, err := s.CaptureError(context.Background(), owner, live.ID, interview.CaptureNotAllowed, "Permission denied")
	require.NoError(t, err)
	assert.Equal(t, "Microphone access denied. Please grant permission and try again.", view.LastError)
	assert.Equal(t, interview.StateAwaitingCandidateInput, view.State)

	view, err = s.CaptureError(context.Background(), owner, live.ID, "AbortError", "device lost")
	require.NoError(t, err)
	assert.Equal(t, "device lost", view.LastError)

	_, err = s.CaptureError(context.Background(), uuid.New(), live.ID, interview.CaptureNotFound, "")
	requireAPIError(t, err, apperrors.KindNotFound)
}

func TestSessions_ShutdownStoresRunningInterviews(t *testing.T) {
	ctx := context.Background()
	s, llm, interviews := newTestSessions(t, nil)
	owner := uuid.New()
	startSession(t, s, llm, owner)

	s.Shutdown()

	stored, err := interviews.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "Backend Engineer", stored[0].JobRole)
}

func TestSessions_SweepDropsExpired(t *testing.T) {
	ctx := context.Background()
	s, llm, _ := newTestSessions(t, nil)
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	owner := uuid.New()

	ended := startSession(t, s, llm, owner)
	_, err := s.End(ctx, owner, ended.ID)
	require.NoError(t, err)

	abandoned := startSession(t, s, llm, owner)

	now = now.Add(2 * time.Hour)
	s.sweep()

	_, err = s.Get(ctx, owner, ended.ID)
	requireAPIError(t, err, apperrors.KindNotFound)

	view, err := s.Get(ctx, owner, abandoned.ID)
	require.NoError(t, err)
	assert.Equal(t, interview.StateEnded, view.State)
	assert.Equal(t, interview.EndReasonTimeLimit, view.EndReason)
}
