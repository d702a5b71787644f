package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/virtual-classroom-api/internal/models"
	appErrors "github.com/noah-isme/virtual-classroom-api/pkg/errors"
	"github.com/noah-isme/virtual-classroom-api/pkg/export"
)

type reportSubmissionStore interface {
	ListByAssignment(ctx context.Context, assignmentID string) ([]models.Submission, error)
}

// ReportFormat selects the rendering of a submission report.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// Report is a rendered submission report ready to be served.
type Report struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ReportService renders a tutor-facing roster report for an assignment with
// per-student derived statuses.
type ReportService struct {
	assignments assignmentReader
	submissions reportSubmissionStore
	logger      *zap.Logger
	now         func() time.Time
}

// NewReportService constructs a ReportService. A nil clock defaults to
// time.Now.
func NewReportService(assignments assignmentReader, submissions reportSubmissionStore, logger *zap.Logger, now func() time.Time) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &ReportService{assignments: assignments, submissions: submissions, logger: logger, now: now}
}

// ParseReportFormat validates the requested format. Empty defaults to CSV.
func ParseReportFormat(raw string) (ReportFormat, error) {
	switch ReportFormat(raw) {
	case "":
		return ReportFormatCSV, nil
	case ReportFormatCSV, ReportFormatPDF:
		return ReportFormat(raw), nil
	default:
		return "", fmt.Errorf("invalid format %q", raw)
	}
}

// Render produces the full-roster report for an assignment, one row per
// submission with its status derived at render time.
func (s *ReportService) Render(ctx context.Context, assignmentID string, format ReportFormat) (*Report, error) {
	assignment, err := s.assignments.FindByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrInvalidReference
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}

	rows, err := s.submissions.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submissions")
	}

	now := s.now().UTC()
	dataset := export.Dataset{
		Headers: []string{"student_id", "status", "remark", "submitted_at"},
	}
	for _, row := range rows {
		submittedAt := ""
		if row.SubmittedAt != nil {
			submittedAt = row.SubmittedAt.UTC().Format(time.RFC3339)
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"student_id":   row.StudentID,
			"status":       string(row.StatusAt(assignment.Deadline, now)),
			"remark":       row.Remark,
			"submitted_at": submittedAt,
		})
	}

	switch format {
	case ReportFormatPDF:
		content, err := export.PDF(dataset, "Submissions "+assignment.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
		}
		return &Report{Content: content, ContentType: "application/pdf", Filename: "submissions-" + assignment.ID + ".pdf"}, nil
	default:
		content, err := export.CSV(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
		}
		return &Report{Content: content, ContentType: "text/csv", Filename: "submissions-" + assignment.ID + ".csv"}, nil
	}
}
