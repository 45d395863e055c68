package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// InterviewStore defines owner-scoped persistence operations for interviews.
type InterviewStore interface {
	Create(ctx context.Context, interview Interview) (Interview, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]InterviewSummary, error)
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (Interview, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, upd InterviewUpdate) (Interview, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

// TurnRole identifies the speaker of a conversation turn.
type TurnRole string

const (
	TurnRoleInterviewer TurnRole = "interviewer"
	TurnRoleCandidate   TurnRole = "candidate"
)

// ConversationTurn is one utterance of an interview.
type ConversationTurn struct {
	Role      TurnRole   `json:"role"`
	Text      string     `json:"text"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// SkillScores holds the named sub-skill ratings of an analyzed interview.
type SkillScores struct {
	Technical      *int `json:"technical"`
	Communication  *int `json:"communication"`
	ProblemSolving *int `json:"problemSolving"`
	Confidence     *int `json:"confidence"`
	Leadership     *int `json:"leadership"`
	Adaptability   *int `json:"adaptability"`
	Teamwork       *int `json:"teamwork"`
}

// InterviewSummary is an interview without its transcript, used by list views.
type InterviewSummary struct {
	ID               uuid.UUID `json:"id"`
	OwnerID          uuid.UUID `json:"userId"`
	JobRole          string    `json:"jobRole"`
	ExperienceLevel  string    `json:"experienceLevel"`
	Duration         int       `json:"duration"`
	OverallScore     *int      `json:"overallScore"`
	ConfidenceScore  *int      `json:"confidenceScore"`
	ContentScore     *int      `json:"contentScore"`
	Strengths        []string  `json:"strengths"`
	Improvements     []string  `json:"improvements"`
	RejectionReasons []string  `json:"rejectionReasons"`
	SkillScores
	AnalyzedAt *time.Time `json:"analyzedAt"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// Interview is a finished interview with its full transcript.
type Interview struct {
	InterviewSummary
	Transcript []ConversationTurn `json:"transcript"`
}

// InterviewUpdate is a partial interview change. Nil fields are left untouched.
type InterviewUpdate struct {
	JobRole          *string             `json:"jobRole"`
	ExperienceLevel  *string             `json:"experienceLevel"`
	Duration         *int                `json:"duration"`
	Transcript       *[]ConversationTurn `json:"transcript"`
	OverallScore     *int                `json:"overallScore"`
	ConfidenceScore  *int                `json:"confidenceScore"`
	ContentScore     *int                `json:"contentScore"`
	Strengths        *[]string           `json:"strengths"`
	Improvements     *[]string           `json:"improvements"`
	RejectionReasons *[]string           `json:"rejectionReasons"`
	SkillScores
	AnalyzedAt *time.Time `json:"-"`
}

// Apply copies the set fields of upd onto i.
func (i *Interview) Apply(upd InterviewUpdate) {
	if upd.JobRole != nil {
		i.JobRole = *upd.JobRole
	}
	if upd.ExperienceLevel != nil {
		i.ExperienceLevel = *upd.ExperienceLevel
	}
	if upd.Duration != nil {
		i.Duration = *upd.Duration
	}
	if upd.Transcript != nil {
		i.Transcript = NonNilTurns(*upd.Transcript)
	}
	i.OverallScore = pick(i.OverallScore, upd.OverallScore)
	i.ConfidenceScore = pick(i.ConfidenceScore, upd.ConfidenceScore)
	i.ContentScore = pick(i.ContentScore, upd.ContentScore)
	if upd.Strengths != nil {
		i.Strengths = NonNilStrings(*upd.Strengths)
	}
	if upd.Improvements != nil {
		i.Improvements = NonNilStrings(*upd.Improvements)
	}
	if upd.RejectionReasons != nil {
		i.RejectionReasons = NonNilStrings(*upd.RejectionReasons)
	}
	i.Technical = pick(i.Technical, upd.Technical)
	i.Communication = pick(i.Communication, upd.Communication)
	i.ProblemSolving = pick(i.ProblemSolving, upd.ProblemSolving)
	i.Confidence = pick(i.Confidence, upd.Confidence)
	i.Leadership = pick(i.Leadership, upd.Leadership)
	i.Adaptability = pick(i.Adaptability, upd.Adaptability)
	i.Teamwork = pick(i.Teamwork, upd.Teamwork)
	if upd.AnalyzedAt != nil {
		at := *upd.AnalyzedAt
		i.AnalyzedAt = &at
	}
}

// Normalize replaces nil lists with empty ones.
func (i *Interview) Normalize() {
	i.InterviewSummary.Normalize()
	i.Transcript = NonNilTurns(i.Transcript)
}

// Normalize replaces nil lists with empty ones.
func (s *InterviewSummary) Normalize() {
	s.Strengths = NonNilStrings(s.Strengths)
	s.Improvements = NonNilStrings(s.Improvements)
	s.RejectionReasons = NonNilStrings(s.RejectionReasons)
}

// NonNilTurns returns t, or an empty slice when t is nil.
func NonNilTurns(t []ConversationTurn) []ConversationTurn {
	if t == nil {
		return []ConversationTurn{}
	}
	return t
}

func pick(cur, upd *int) *int {
	if upd == nil {
		return cur
	}
	v := *upd
	return &v
}
