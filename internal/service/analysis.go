package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/hiready/hiready-server/internal/apperrors"
	"github.com/hiready/hiready-server/internal/interview"
	"github.com/hiready/hiready-server/internal/logger"
	"github.com/hiready/hiready-server/internal/model"
	"github.com/hiready/hiready-server/internal/retry"
)

// maxResumeText bounds how much of a stored resume file is sent for analysis.
const maxResumeText = 64 << 10

const msgUnreadableAnalysis = "The AI analysis could not be read. Please try again."

const interviewAnalysisPrompt = `You are an expert interview coach reviewing a mock job interview.
Evaluate the candidate's answers for the position of %s (%s level).
Respond with a single JSON object and nothing else, using exactly these keys:
{
  "overallScore": 0-100,
  "confidenceScore": 0-100,
  "contentScore": 0-100,
  "strengths": ["..."],
  "improvements": ["..."],
  "rejectionReasons": ["..."],
  "skillScores": {
    "technical": 0-100,
    "communication": 0-100,
    "problemSolving": 0-100,
    "confidence": 0-100,
    "leadership": 0-100,
    "adaptability": 0-100,
    "teamwork": 0-100
  }
}
Keep each list item to one short sentence.`

const resumeAnalysisPrompt = `You are an applicant tracking system reviewing a resume.
Respond with a single JSON object and nothing else, using exactly these keys:
{
  "atsScore": 0-100,
  "strengths": ["..."],
  "improvements": ["..."],
  "keywords": ["..."]
}
Keep each list item short. Keywords are the skills and technologies found in the resume.`

type skillReport struct {
	Technical      *float64 `json:"technical"`
	Communication  *float64 `json:"communication"`
	ProblemSolving *float64 `json:"problemSolving"`
	Confidence     *float64 `json:"confidence"`
	Leadership     *float64 `json:"leadership"`
	Adaptability   *float64 `json:"adaptability"`
	Teamwork       *float64 `json:"teamwork"`
}

type interviewReport struct {
	OverallScore     *float64    `json:"overallScore"`
	ConfidenceScore  *float64    `json:"confidenceScore"`
	ContentScore     *float64    `json:"contentScore"`
	Strengths        []string    `json:"strengths"`
	Improvements     []string    `json:"improvements"`
	RejectionReasons []string    `json:"rejectionReasons"`
	SkillScores      skillReport `json:"skillScores"`
}

type resumeReport struct {
	ATSScore     *float64 `json:"atsScore"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
	Keywords     []string `json:"keywords"`
}

// Analysis asks the LLM to score finished interviews and resumes and stores
// the result on the record.
type Analysis struct {
	llm        model.ChatCompleter
	interviews *Interview
	resumes    *Resume
	retry      retry.Policy
	logger     *logger.Logger
}

func NewAnalysis(llm model.ChatCompleter, interviews *Interview, resumes *Resume, policy retry.Policy, logger *logger.Logger) *Analysis {
	return &Analysis{
		llm:        llm,
		interviews: interviews,
		resumes:    resumes,
		retry:      policy,
		logger:     logger,
	}
}

// AnalyzeInterview scores the candidate's answers of a stored interview.
func (s *Analysis) AnalyzeInterview(ctx context.Context, ownerID, id uuid.UUID) (model.Interview, error) {
	iv, err := s.interviews.Get(ctx, ownerID, id)
	if err != nil {
		return model.Interview{}, err
	}
	if !hasCandidateTurn(iv.Transcript) {
		return model.Interview{}, apperrors.NewErrValidation("Interview has no candidate answers to analyze")
	}

	msgs := []model.ChatMessage{
		{Role: model.ChatRoleSystem, Content: fmt.Sprintf(interviewAnalysisPrompt, iv.JobRole, orDefault(iv.ExperienceLevel, "unspecified"))},
		{Role: model.ChatRoleUser, Content: formatTranscript(iv.Transcript)},
	}

	var report interviewReport
	if err := s.completeJSON(ctx, msgs, &report); err != nil {
		return model.Interview{}, err
	}
	if report.OverallScore == nil {
		return model.Interview{}, apperrors.NewErrUpstream(msgUnreadableAnalysis, errors.New("overallScore missing"))
	}

	upd := model.InterviewUpdate{
		OverallScore:     clampScore(report.OverallScore),
		ConfidenceScore:  clampScore(report.ConfidenceScore),
		ContentScore:     clampScore(report.ContentScore),
		Strengths:        listOrEmpty(report.Strengths),
		Improvements:     listOrEmpty(report.Improvements),
		RejectionReasons: listOrEmpty(report.RejectionReasons),
		SkillScores: model.SkillScores{
			Technical:      clampScore(report.SkillScores.Technical),
			Communication:  clampScore(report.SkillScores.Communication),
			ProblemSolving: clampScore(report.SkillScores.ProblemSolving),
			Confidence:     clampScore(report.SkillScores.Confidence),
			Leadership:     clampScore(report.SkillScores.Leadership),
			Adaptability:   clampScore(report.SkillScores.Adaptability),
			Teamwork:       clampScore(report.SkillScores.Teamwork),
		},
	}

	updated, err := s.interviews.Update(ctx, ownerID, id, upd)
	if err != nil {
		return model.Interview{}, err
	}

	s.logger.Info("Analysis service: interview analyzed",
		"user_id", ownerID,
		"interview_id", id,
		"overall_score", *upd.OverallScore)

	return updated, nil
}

// AnalyzeResume scores a resume. With empty text the stored file is read
// and must be plain text.
func (s *Analysis) AnalyzeResume(ctx context.Context, ownerID, id uuid.UUID, text string) (model.Resume, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		var err error
		text, err = s.readResumeText(ctx, ownerID, id)
		if err != nil {
			return model.Resume{}, err
		}
	} else if _, err := s.resumes.Get(ctx, ownerID, id); err != nil {
		return model.Resume{}, err
	}

	msgs := []model.ChatMessage{
		{Role: model.ChatRoleSystem, Content: resumeAnalysisPrompt},
		{Role: model.ChatRoleUser, Content: text},
	}

	var report resumeReport
	if err := s.completeJSON(ctx, msgs, &report); err != nil {
		return model.Resume{}, err
	}
	if report.ATSScore == nil {
		return model.Resume{}, apperrors.NewErrUpstream(msgUnreadableAnalysis, errors.New("atsScore missing"))
	}

	upd := model.ResumeUpdate{
		ATSScore:     clampScore(report.ATSScore),
		Strengths:    listOrEmpty(report.Strengths),
		Improvements: listOrEmpty(report.Improvements),
		Keywords:     listOrEmpty(report.Keywords),
	}
	updated, err := s.resumes.Update(ctx, ownerID, id, upd)
	if err != nil {
		return model.Resume{}, err
	}

	s.logger.Info("Analysis service: resume analyzed",
		"user_id", ownerID,
		"resume_id", id,
		"ats_score", *upd.ATSScore)

	return updated, nil
}

func (s *Analysis) readResumeText(ctx context.Context, ownerID, id uuid.UUID) (string, error) {
	rc, _, err := s.resumes.OpenFile(ctx, ownerID, id)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxResumeText))
	if err != nil {
		return "", fmt.Errorf("failed to read resume file: %w", err)
	}
	// The limit may have cut a multi-byte rune in half.
	for i := 0; i < utf8.UTFMax-1 && len(data) == maxResumeText && !utf8.Valid(data); i++ {
		data = data[:len(data)-1]
	}
	if !utf8.Valid(data) || strings.ContainsRune(string(data), 0) || strings.TrimSpace(string(data)) == "" {
		return "", apperrors.NewErrValidation("Could not read text from the resume file. Please provide the resume text.")
	}
	return string(data), nil
}

// completeJSON calls the LLM and decodes the first JSON object in its answer.
func (s *Analysis) completeJSON(ctx context.Context, msgs []model.ChatMessage, out any) error {
	var answer string
	err := retry.Do(ctx, s.retry, func(ctx context.Context) error {
		var err error
		answer, err = s.llm.Complete(ctx, msgs)
		return err
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		s.logger.Error("Analysis service: llm request failed",
			"error", err.Error())
		return apperrors.NewErrUpstream(interview.ClassifyError(err), err)
	}

	raw, ok := extractJSONObject(answer)
	if !ok {
		s.logger.Warn("Analysis service: answer has no JSON object",
			"answer_length", len(answer))
		return apperrors.NewErrUpstream(msgUnreadableAnalysis, errors.New("no JSON object in answer"))
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		s.logger.Warn("Analysis service: failed to decode answer",
			"error", err.Error())
		return apperrors.NewErrUpstream(msgUnreadableAnalysis, err)
	}
	return nil
}

// extractJSONObject returns the text between the first '{' and the last '}'.
// Models often wrap JSON in prose or code fences.
func extractJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

func formatTranscript(turns []model.ConversationTurn) string {
	var b strings.Builder
	for _, t := range turns {
		switch t.Role {
		case model.TurnRoleInterviewer:
			b.WriteString("Interviewer: ")
		case model.TurnRoleCandidate:
			b.WriteString("Candidate: ")
		default:
			b.WriteString(string(t.Role) + ": ")
		}
		b.WriteString(t.Text)
		b.WriteByte('\n')
	}
	return b.String()
}

func hasCandidateTurn(turns []model.ConversationTurn) bool {
	for _, t := range turns {
		if t.Role == model.TurnRoleCandidate && strings.TrimSpace(t.Text) != "" {
			return true
		}
	}
	return false
}

func clampScore(v *float64) *int {
	if v == nil || math.IsNaN(*v) {
		return nil
	}
	n := int(math.Round(math.Max(0, math.Min(100, *v))))
	return &n
}

func listOrEmpty(items []string) *[]string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return &out
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
