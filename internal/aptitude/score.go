package aptitude

import (
	"fmt"
	"time"

	"github.com/hiready/hiready-server/internal/model"
)

// Result is the outcome of scoring one attempt.
type Result struct {
	Score          int
	TotalQuestions int
	Breakdown      []model.AnswerResult
	TimeSpent      string
}

// Score grades answers against bank. Each question id counts once, on its
// first occurrence. Unknown ids are kept in the breakdown with an empty
// correct answer and never score. Unanswered questions are not listed and
// cost nothing.
func Score(bank []Question, answers []model.Answer, start, end time.Time) Result {
	byID := make(map[int]Question, len(bank))
	for _, q := range bank {
		byID[q.ID] = q
	}

	res := Result{
		TotalQuestions: len(bank),
		Breakdown:      make([]model.AnswerResult, 0, len(answers)),
		TimeSpent:      FormatElapsed(end.Sub(start)),
	}

	seen := make(map[int]struct{}, len(answers))
	for _, a := range answers {
		if _, dup := seen[a.QuestionID]; dup {
			continue
		}
		seen[a.QuestionID] = struct{}{}

		q, known := byID[a.QuestionID]
		correct := known && a.SelectedOption == q.Answer
		if correct {
			res.Score++
		}

		res.Breakdown = append(res.Breakdown, model.AnswerResult{
			QuestionID:     a.QuestionID,
			SelectedOption: a.SelectedOption,
			CorrectAnswer:  q.Answer,
			IsCorrect:      correct,
		})
	}

	return res
}

// FormatElapsed renders d as zero-padded MM:SS. Negative durations render as 00:00.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
