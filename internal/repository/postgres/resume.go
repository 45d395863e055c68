package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hiready/hiready-server/internal/model"
)

var _ model.ResumeStore = (*ResumeRepository)(nil)

type ResumeRepository struct {
	db  DBTX
	now func() time.Time
}

func NewResumeRepository(db DBTX) *ResumeRepository {
	return &ResumeRepository{
		db:  db,
		now: time.Now,
	}
}

const resumeColumns = `id, owner_id, file_name, file_url, file_size, storage_key, ats_score,
	strengths, improvements, keywords, analyzed_at, created_at, updated_at`

func scanResume(row scanner) (model.Resume, error) {
	var r model.Resume
	err := row.Scan(
		&r.ID, &r.OwnerID, &r.FileName, &r.FileURL, &r.FileSize, &r.StorageKey, &r.ATSScore,
		jsonb[[]string]{&r.Strengths}, jsonb[[]string]{&r.Improvements}, jsonb[[]string]{&r.Keywords},
		&r.AnalyzedAt, &r.CreatedAt, &r.UpdatedAt,
	)
	r.Normalize()
	return r, err
}

func (r *ResumeRepository) Create(ctx context.Context, resume model.Resume) (model.Resume, error) {
	strengths, err := encodeJSON(resume.Strengths)
	if err != nil {
		return model.Resume{}, err
	}
	improvements, err := encodeJSON(resume.Improvements)
	if err != nil {
		return model.Resume{}, err
	}
	keywords, err := encodeJSON(resume.Keywords)
	if err != nil {
		return model.Resume{}, err
	}

	query := `INSERT INTO resumes (` + resumeColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9::jsonb, $10::jsonb, $11, $12, $13)
			  RETURNING ` + resumeColumns

	saved, err := scanResume(r.db.QueryRowContext(ctx, query,
		resume.ID, resume.OwnerID, resume.FileName, resume.FileURL, resume.FileSize, resume.StorageKey,
		resume.ATSScore, strengths, improvements, keywords, resume.AnalyzedAt,
		resume.CreatedAt, resume.UpdatedAt,
	))
	if err != nil {
		return model.Resume{}, fmt.Errorf("failed to create resume: %w", mapError(err))
	}
	return saved, nil
}

func (r *ResumeRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Resume, error) {
	query := `SELECT ` + resumeColumns + `
			  FROM resumes
			  WHERE owner_id = $1
			  ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list resumes: %w", err)
	}
	defer rows.Close()

	resumes := []model.Resume{}
	for rows.Next() {
		resume, err := scanResume(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan resume: %w", err)
		}
		resumes = append(resumes, resume)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate resumes: %w", err)
	}
	return resumes, nil
}

func (r *ResumeRepository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (model.Resume, error) {
	query := `SELECT ` + resumeColumns + ` FROM resumes WHERE id = $1 AND owner_id = $2`

	resume, err := scanResume(r.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if err = mapError(err); err == model.ErrNotFound {
			return model.Resume{}, err
		}
		return model.Resume{}, fmt.Errorf("failed to get resume: %w", err)
	}
	return resume, nil
}

func (r *ResumeRepository) Update(ctx context.Context, ownerID, id uuid.UUID, upd model.ResumeUpdate) (model.Resume, error) {
	strengths, err := encodeOptionalJSON(upd.Strengths)
	if err != nil {
		return model.Resume{}, err
	}
	improvements, err := encodeOptionalJSON(upd.Improvements)
	if err != nil {
		return model.Resume{}, err
	}
	keywords, err := encodeOptionalJSON(upd.Keywords)
	if err != nil {
		return model.Resume{}, err
	}

	query := `UPDATE resumes SET
				file_name = COALESCE($3, file_name),
				file_url = COALESCE($4, file_url),
				file_size = COALESCE($5, file_size),
				ats_score = COALESCE($6, ats_score),
				strengths = COALESCE($7::jsonb, strengths),
				improvements = COALESCE($8::jsonb, improvements),
				keywords = COALESCE($9::jsonb, keywords),
				analyzed_at = COALESCE($10, analyzed_at),
				updated_at = $11
			  WHERE id = $1 AND owner_id = $2
			  RETURNING ` + resumeColumns

	resume, err := scanResume(r.db.QueryRowContext(ctx, query,
		id, ownerID, upd.FileName, upd.FileURL, upd.FileSize, upd.ATSScore,
		strengths, improvements, keywords, upd.AnalyzedAt, r.now().UTC(),
	))
	if err != nil {
		if err = mapError(err); err == model.ErrNotFound {
			return model.Resume{}, err
		}
		return model.Resume{}, fmt.Errorf("failed to update resume: %w", err)
	}
	return resume, nil
}

func (r *ResumeRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	const query = `DELETE FROM resumes WHERE id = $1 AND owner_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete resume: %w", err)
	}
	return ensureAffected(res)
}
