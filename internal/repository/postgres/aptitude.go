package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hiready/hiready-server/internal/model"
)

var _ model.AptitudeStore = (*AptitudeRepository)(nil)

type AptitudeRepository struct {
	db DBTX
}

func NewAptitudeRepository(db DBTX) *AptitudeRepository {
	return &AptitudeRepository{db: db}
}

const aptitudeColumns = `id, owner_id, answers, score, total_questions, time_spent, created_at`

func scanAptitude(row scanner) (model.AptitudeTest, error) {
	var t model.AptitudeTest
	err := row.Scan(
		&t.ID, &t.OwnerID, jsonb[[]model.AnswerResult]{&t.Answers},
		&t.Score, &t.TotalQuestions, &t.TimeSpent, &t.CreatedAt,
	)
	if t.Answers == nil {
		t.Answers = []model.AnswerResult{}
	}
	return t, err
}

func (r *AptitudeRepository) Create(ctx context.Context, test model.AptitudeTest) (model.AptitudeTest, error) {
	answers, err := encodeJSON(test.Answers)
	if err != nil {
		return model.AptitudeTest{}, err
	}

	query := `INSERT INTO aptitude_tests (` + aptitudeColumns + `)
			  VALUES ($1, $2, $3::jsonb, $4, $5, $6, $7)
			  RETURNING ` + aptitudeColumns

	saved, err := scanAptitude(r.db.QueryRowContext(ctx, query,
		test.ID, test.OwnerID, answers, test.Score, test.TotalQuestions, test.TimeSpent, test.CreatedAt,
	))
	if err != nil {
		return model.AptitudeTest{}, fmt.Errorf("failed to create aptitude test: %w", mapError(err))
	}
	return saved, nil
}

func (r *AptitudeRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.AptitudeTest, error) {
	query := `SELECT ` + aptitudeColumns + `
			  FROM aptitude_tests
			  WHERE owner_id = $1
			  ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list aptitude tests: %w", err)
	}
	defer rows.Close()

	tests := []model.AptitudeTest{}
	for rows.Next() {
		t, err := scanAptitude(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan aptitude test: %w", err)
		}
		tests = append(tests, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate aptitude tests: %w", err)
	}
	return tests, nil
}

func (r *AptitudeRepository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (model.AptitudeTest, error) {
	query := `SELECT ` + aptitudeColumns + ` FROM aptitude_tests WHERE id = $1 AND owner_id = $2`

	test, err := scanAptitude(r.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if err = mapError(err); err == model.ErrNotFound {
			return model.AptitudeTest{}, err
		}
		return model.AptitudeTest{}, fmt.Errorf("failed to get aptitude test: %w", err)
	}
	return test, nil
}

func (r *AptitudeRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	const query = `DELETE FROM aptitude_tests WHERE id = $1 AND owner_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete aptitude test: %w", err)
	}
	return ensureAffected(res)
}

// BestByOwner picks the highest score; ties go to the earliest attempt.
func (r *AptitudeRepository) BestByOwner(ctx context.Context, ownerID uuid.UUID) (model.AptitudeTest, error) {
	query := `SELECT ` + aptitudeColumns + `
			  FROM aptitude_tests
			  WHERE owner_id = $1
			  ORDER BY score DESC, created_at ASC
			  LIMIT 1`

	test, err := scanAptitude(r.db.QueryRowContext(ctx, query, ownerID))
	if err != nil {
		if err = mapError(err); err == model.ErrNotFound {
			return model.AptitudeTest{}, err
		}
		return model.AptitudeTest{}, fmt.Errorf("failed to get best aptitude test: %w", err)
	}
	return test, nil
}
