package handler

import (
	"bytes"
	"context"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/hiready/hiready-server/internal/logger"
	"github.com/hiready/hiready-server/internal/model"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	reportFileName  = "hiready-report.xlsx"
)

type ReportService interface {
	Export(ctx context.Context, ownerID uuid.UUID, w io.Writer) error
}

type Report struct {
	base
	reportService ReportService
}

func NewReport(reportService ReportService, contextManager model.ContextManager, logger *logger.Logger) *Report {
	return &Report{
		base:          base{contextManager: contextManager, logger: logger},
		reportService: reportService,
	}
}

// Export downloads the user's history as a workbook. The workbook is built in
// memory so a failure can still be answered with a JSON error.
func (h *Report) Export(c *fiber.Ctx) error {
	owner, err := h.ownerID(c)
	if err != nil {
		return h.fail(c, err)
	}

	var buf bytes.Buffer
	if err := h.reportService.Export(c.UserContext(), owner, &buf); err != nil {
		return h.fail(c, err)
	}

	c.Attachment(reportFileName)
	c.Set(fiber.HeaderContentType, xlsxContentType)
	return c.Send(buf.Bytes())
}
