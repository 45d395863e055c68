package service

import (
	"fmt"

	"github.com/hiready/hiready-server/internal/apperrors"
)

const (
	minScore = 0
	maxScore = 100
)

// checkScores rejects set scores outside 0..100.
func checkScores(scores map[string]*int) error {
	for name, v := range scores {
		if v != nil && (*v < minScore || *v > maxScore) {
			return apperrors.NewErrValidation(fmt.Sprintf("%s must be between %d and %d", name, minScore, maxScore))
		}
	}
	return nil
}
