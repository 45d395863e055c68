package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiready/hiready-server/internal/model"
)

var aptitudeCols = []string{"id", "owner_id", "answers", "score", "total_questions", "time_spent", "created_at"}

func TestAptitudeRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	test := model.AptitudeTest{
		ID: uuid.New(), OwnerID: uuid.New(), Score: 1, TotalQuestions: 10, TimeSpent: "01:05", CreatedAt: now,
		Answers: []model.AnswerResult{{QuestionID: 1, SelectedOption: "24", CorrectAnswer: "24", IsCorrect: true}},
	}
	answers := `[{"questionId":1,"selectedOption":"24","correctAnswer":"24","isCorrect":true}]`

	mock.ExpectQuery(`INSERT INTO aptitude_tests`).
		WithArgs(test.ID, test.OwnerID, answers, 1, 10, "01:05", now).
		WillReturnRows(sqlmock.NewRows(aptitudeCols).AddRow(test.ID.String(), test.OwnerID.String(), []byte(answers), 1, 10, "01:05", now))

	got, err := NewAptitudeRepository(db).Create(context.Background(), test)
	require.NoError(t, err)
	assert.Equal(t, test, got)
}

func TestAptitudeRepository_BestByOwner(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()

	t.Run("best", func(t *testing.T) {
		db, mock := newMockDB(t)
		now := time.Now().UTC()
		mock.ExpectQuery(`ORDER BY score DESC, created_at ASC\s+LIMIT 1`).
			WithArgs(owner).
			WillReturnRows(sqlmock.NewRows(aptitudeCols).AddRow(uuid.NewString(), owner.String(), nil, 8, 10, "09:59", now))

		got, err := NewAptitudeRepository(db).BestByOwner(ctx, owner)
		require.NoError(t, err)
		assert.Equal(t, 8, got.Score)
		assert.Equal(t, []model.AnswerResult{}, got.Answers)
	})

	t.Run("no attempts", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`FROM aptitude_tests`).WillReturnError(sql.ErrNoRows)

		_, err := NewAptitudeRepository(db).BestByOwner(ctx, owner)
		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}

func TestAptitudeRepository_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)
	owner, id := uuid.New(), uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(`FROM aptitude_tests\s+WHERE owner_id = \$1\s+ORDER BY created_at DESC`).
		WithArgs(owner).
		WillReturnRows(sqlmock.NewRows(aptitudeCols).AddRow(id.String(), owner.String(), []byte(`[]`), 3, 10, "02:00", now))
	mock.ExpectExec(`DELETE FROM aptitude_tests`).WithArgs(id, owner).WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewAptitudeRepository(db)
	list, err := repo.ListByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)

	require.NoError(t, repo.Delete(ctx, owner, id))
}
