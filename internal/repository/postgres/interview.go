package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hiready/hiready-server/internal/model"
)

var _ model.InterviewStore = (*InterviewRepository)(nil)

type InterviewRepository struct {
	db  DBTX
	now func() time.Time
}

func NewInterviewRepository(db DBTX) *InterviewRepository {
	return &InterviewRepository{
		db:  db,
		now: time.Now,
	}
}

const interviewSummaryColumns = `id, owner_id, job_role, experience_level, duration,
	overall_score, confidence_score, content_score, strengths, improvements, rejection_reasons,
	technical, communication, problem_solving, confidence, leadership, adaptability, teamwork,
	analyzed_at, created_at, updated_at`

const interviewColumns = interviewSummaryColumns + `, transcript`

func summaryDest(s *model.InterviewSummary) []any {
	return []any{
		&s.ID, &s.OwnerID, &s.JobRole, &s.ExperienceLevel, &s.Duration,
		&s.OverallScore, &s.ConfidenceScore, &s.ContentScore,
		jsonb[[]string]{&s.Strengths}, jsonb[[]string]{&s.Improvements}, jsonb[[]string]{&s.RejectionReasons},
		&s.Technical, &s.Communication, &s.ProblemSolving, &s.Confidence,
		&s.Leadership, &s.Adaptability, &s.Teamwork,
		&s.AnalyzedAt, &s.CreatedAt, &s.UpdatedAt,
	}
}

func scanSummary(row scanner) (model.InterviewSummary, error) {
	var s model.InterviewSummary
	err := row.Scan(summaryDest(&s)...)
	s.Normalize()
	return s, err
}

func scanInterview(row scanner) (model.Interview, error) {
	var i model.Interview
	dest := append(summaryDest(&i.InterviewSummary), jsonb[[]model.ConversationTurn]{&i.Transcript})
	err := row.Scan(dest...)
	i.Normalize()
	return i, err
}

func (r *InterviewRepository) Create(ctx context.Context, interview model.Interview) (model.Interview, error) {
	transcript, err := encodeJSON(interview.Transcript)
	if err != nil {
		return model.Interview{}, err
	}
	strengths, err := encodeJSON(interview.Strengths)
	if err != nil {
		return model.Interview{}, err
	}
	improvements, err := encodeJSON(interview.Improvements)
	if err != nil {
		return model.Interview{}, err
	}
	reasons, err := encodeJSON(interview.RejectionReasons)
	if err != nil {
		return model.Interview{}, err
	}

	query := `INSERT INTO interviews (` + interviewColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb, $10::jsonb, $11::jsonb,
			          $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22::jsonb)
			  RETURNING ` + interviewColumns

	saved, err := scanInterview(r.db.QueryRowContext(ctx, query,
		interview.ID, interview.OwnerID, interview.JobRole, interview.ExperienceLevel, interview.Duration,
		interview.OverallScore, interview.ConfidenceScore, interview.ContentScore,
		strengths, improvements, reasons,
		interview.Technical, interview.Communication, interview.ProblemSolving, interview.Confidence,
		interview.Leadership, interview.Adaptability, interview.Teamwork,
		interview.AnalyzedAt, interview.CreatedAt, interview.UpdatedAt, transcript,
	))
	if err != nil {
		return model.Interview{}, fmt.Errorf("failed to create interview: %w", mapError(err))
	}
	return saved, nil
}

// ListByOwner returns summaries newest first. Transcripts are not loaded.
func (r *InterviewRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.InterviewSummary, error) {
	query := `SELECT ` + interviewSummaryColumns + `
			  FROM interviews
			  WHERE owner_id = $1
			  ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list interviews: %w", err)
	}
	defer rows.Close()

	summaries := []model.InterviewSummary{}
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan interview: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate interviews: %w", err)
	}
	return summaries, nil
}

func (r *InterviewRepository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (model.Interview, error) {
	query := `SELECT ` + interviewColumns + ` FROM interviews WHERE id = $1 AND owner_id = $2`

	interview, err := scanInterview(r.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if err = mapError(err); err == model.ErrNotFound {
			return model.Interview{}, err
		}
		return model.Interview{}, fmt.Errorf("failed to get interview: %w", err)
	}
	return interview, nil
}

func (r *InterviewRepository) Update(ctx context.Context, ownerID, id uuid.UUID, upd model.InterviewUpdate) (model.Interview, error) {
	transcript, err := encodeOptionalJSON(upd.Transcript)
	if err != nil {
		return model.Interview{}, err
	}
	strengths, err := encodeOptionalJSON(upd.Strengths)
	if err != nil {
		return model.Interview{}, err
	}
	improvements, err := encodeOptionalJSON(upd.Improvements)
	if err != nil {
		return model.Interview{}, err
	}
	reasons, err := encodeOptionalJSON(upd.RejectionReasons)
	if err != nil {
		return model.Interview{}, err
	}

	query := `UPDATE interviews SET
				job_role = COALESCE($3, job_role),
				experience_level = COALESCE($4, experience_level),
				duration = COALESCE($5, duration),
				transcript = COALESCE($6::jsonb, transcript),
				overall_score = COALESCE($7, overall_score),
				confidence_score = COALESCE($8, confidence_score),
				content_score = COALESCE($9, content_score),
				strengths = COALESCE($10::jsonb, strengths),
				improvements = COALESCE($11::jsonb, improvements),
				rejection_reasons = COALESCE($12::jsonb, rejection_reasons),
				technical = COALESCE($13, technical),
				communication = COALESCE($14, communication),
				problem_solving = COALESCE($15, problem_solving),
				confidence = COALESCE($16, confidence),
				leadership = COALESCE($17, leadership),
				adaptability = COALESCE($18, adaptability),
				teamwork = COALESCE($19, teamwork),
				analyzed_at = COALESCE($20, analyzed_at),
				updated_at = $21
			  WHERE id = $1 AND owner_id = $2
			  RETURNING ` + interviewColumns

	interview, err := scanInterview(r.db.QueryRowContext(ctx, query,
		id, ownerID, upd.JobRole, upd.ExperienceLevel, upd.Duration, transcript,
		upd.OverallScore, upd.ConfidenceScore, upd.ContentScore,
		strengths, improvements, reasons,
		upd.Technical, upd.Communication, upd.ProblemSolving, upd.Confidence,
		upd.Leadership, upd.Adaptability, upd.Teamwork,
		upd.AnalyzedAt, r.now().UTC(),
	))
	if err != nil {
		if err = mapError(err); err == model.ErrNotFound {
			return model.Interview{}, err
		}
		return model.Interview{}, fmt.Errorf("failed to update interview: %w", err)
	}
	return interview, nil
}

func (r *InterviewRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	const query = `DELETE FROM interviews WHERE id = $1 AND owner_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete interview: %w", err)
	}
	return ensureAffected(res)
}
