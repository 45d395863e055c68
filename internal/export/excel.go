// Package export renders a user's history as an Excel workbook.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/hiready/hiready-server/internal/model"
)

const (
	SheetResumes    = "Resumes"
	SheetInterviews = "Interviews"
	SheetAptitude   = "Aptitude"
)

// Report is everything exported for one user.
type Report struct {
	Email      string
	Resumes    []model.Resume
	Interviews []model.InterviewSummary
	Aptitude   []model.AptitudeTest
}

// WriteWorkbook writes the report as an .xlsx document to w.
func WriteWorkbook(w io.Writer, r Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetResumes); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{SheetInterviews, SheetAptitude} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create %s sheet: %w", name, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeSheet(f, SheetResumes, headerStyle,
		[]string{"File", "Size (bytes)", "ATS Score", "Strengths", "Improvements", "Keywords", "Analyzed At", "Uploaded At"},
		resumeRows(r.Resumes)); err != nil {
		return err
	}
	if err := writeSheet(f, SheetInterviews, headerStyle,
		[]string{"Job Role", "Experience Level", "Duration (s)", "Overall", "Confidence", "Content",
			"Technical", "Communication", "Problem Solving", "Leadership", "Adaptability", "Teamwork",
			"Strengths", "Improvements", "Analyzed At", "Created At"},
		interviewRows(r.Interviews)); err != nil {
		return err
	}
	if err := writeSheet(f, SheetAptitude, headerStyle,
		[]string{"Score", "Total Questions", "Percent", "Time Spent", "Taken At"},
		aptitudeRows(r.Aptitude)); err != nil {
		return err
	}

	if err := f.SetDocProps(&excelize.DocProperties{
		Title:   "HiREady report",
		Subject: r.Email,
		Created: time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		return fmt.Errorf("failed to set document properties: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, headerStyle int, headers []string, rows [][]any) error {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("failed to write %s header: %w", sheet, err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}

	for r, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, r+1, err)
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	if err := f.SetColWidth(sheet, "A", lastCol, 18); err != nil {
		return fmt.Errorf("failed to size %s columns: %w", sheet, err)
	}
	return nil
}

func resumeRows(resumes []model.Resume) [][]any {
	rows := make([][]any, 0, len(resumes))
	for _, r := range resumes {
		rows = append(rows, []any{
			r.FileName, r.FileSize, intOrBlank(r.ATSScore),
			joinList(r.Strengths), joinList(r.Improvements), joinList(r.Keywords),
			timeOrBlank(r.AnalyzedAt), r.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return rows
}

func interviewRows(interviews []model.InterviewSummary) [][]any {
	rows := make([][]any, 0, len(interviews))
	for _, i := range interviews {
		rows = append(rows, []any{
			i.JobRole, i.ExperienceLevel, i.Duration,
			intOrBlank(i.OverallScore), intOrBlank(i.ConfidenceScore), intOrBlank(i.ContentScore),
			intOrBlank(i.Technical), intOrBlank(i.Communication), intOrBlank(i.ProblemSolving),
			intOrBlank(i.Leadership), intOrBlank(i.Adaptability), intOrBlank(i.Teamwork),
			joinList(i.Strengths), joinList(i.Improvements),
			timeOrBlank(i.AnalyzedAt), i.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return rows
}

func aptitudeRows(tests []model.AptitudeTest) [][]any {
	rows := make([][]any, 0, len(tests))
	for _, t := range tests {
		pct := 0.0
		if t.TotalQuestions > 0 {
			pct = float64(t.Score) * 100 / float64(t.TotalQuestions)
		}
		rows = append(rows, []any{
			t.Score, t.TotalQuestions, pct, t.TimeSpent, t.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return rows
}

func intOrBlank(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}

func timeOrBlank(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func joinList(items []string) string {
	return strings.Join(items, "; ")
}
