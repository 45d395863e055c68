package service

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/hiready/hiready-server/internal/export"
	"github.com/hiready/hiready-server/internal/logger"
)

// Report exports a user's history.
type Report struct {
	profile    *Profile
	resumes    *Resume
	interviews *Interview
	aptitude   *Aptitude
	logger     *logger.Logger
}

func NewReport(profile *Profile, resumes *Resume, interviews *Interview, aptitude *Aptitude, logger *logger.Logger) *Report {
	return &Report{
		profile:    profile,
		resumes:    resumes,
		interviews: interviews,
		aptitude:   aptitude,
		logger:     logger,
	}
}

// Export writes the resumes, interviews and aptitude attempts of a user to w
// as an Excel workbook.
func (s *Report) Export(ctx context.Context, ownerID uuid.UUID, w io.Writer) error {
	user, err := s.profile.Get(ctx, ownerID)
	if err != nil {
		return err
	}
	resumes, err := s.resumes.List(ctx, ownerID)
	if err != nil {
		return err
	}
	interviews, err := s.interviews.List(ctx, ownerID)
	if err != nil {
		return err
	}
	tests, err := s.aptitude.List(ctx, ownerID)
	if err != nil {
		return err
	}

	err = export.WriteWorkbook(w, export.Report{
		Email:      user.Email,
		Resumes:    resumes,
		Interviews: interviews,
		Aptitude:   tests,
	})
	if err != nil {
		s.logger.Error("Report service: failed to write workbook",
			"user_id", ownerID,
			"error", err.Error())
		return fmt.Errorf("failed to export report: %w", err)
	}

	s.logger.Info("Report service: report exported",
		"user_id", ownerID,
		"resumes", len(resumes),
		"interviews", len(interviews),
		"aptitude_tests", len(tests))

	return nil
}
