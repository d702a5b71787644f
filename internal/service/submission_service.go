package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/virtual-classroom-api/internal/models"
	appErrors "github.com/noah-isme/virtual-classroom-api/pkg/errors"
)

type submissionStore interface {
	FindByKey(ctx context.Context, assignmentID, studentID string) (*models.Submission, error)
	MarkSubmitted(ctx context.Context, assignmentID, studentID, remark string, submittedAt time.Time) error
	ListSubmittedByAssignment(ctx context.Context, assignmentID string) ([]models.Submission, error)
}

type assignmentReader interface {
	FindByID(ctx context.Context, id string) (*models.Assignment, error)
}

// SubmitRequest carries the student's remark.
type SubmitRequest struct {
	Remark string `json:"remark" validate:"required"`
}

// SubmissionService handles the one-way PENDING to SUBMITTED transition and
// the per-role detail views of an assignment's submissions.
type SubmissionService struct {
	submissions submissionStore
	assignments assignmentReader
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewSubmissionService constructs a SubmissionService. A nil clock defaults
// to time.Now.
func NewSubmissionService(submissions submissionStore, assignments assignmentReader, validate *validator.Validate, logger *zap.Logger, now func() time.Time) *SubmissionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &SubmissionService{submissions: submissions, assignments: assignments, validator: validate, logger: logger, now: now}
}

// Submit records the student's remark exactly once. The row must exist (the
// student was on the roster) and must still be unsubmitted; the recorded
// instant is the accept time, never a caller-supplied value.
func (s *SubmissionService) Submit(ctx context.Context, assignmentID, studentID string, req SubmitRequest) (*models.Submission, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submission payload")
	}
	if strings.TrimSpace(req.Remark) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "remark invalid")
	}

	submission, err := s.submissions.FindByKey(ctx, assignmentID, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrInvalidReference
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission")
	}

	if submission.Submitted() {
		return nil, appErrors.Clone(appErrors.ErrConflict, "submission already exists")
	}

	submittedAt := s.now().UTC()
	if err := s.submissions.MarkSubmitted(ctx, assignmentID, studentID, req.Remark, submittedAt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store submission")
	}

	submission.Remark = req.Remark
	submission.SubmittedAt = &submittedAt
	return submission, nil
}

// ListForTutor returns the submitted rows of an assignment. The assignment
// must resolve; unsubmitted rows are not included.
func (s *SubmissionService) ListForTutor(ctx context.Context, assignmentID string) ([]models.Submission, error) {
	if _, err := s.assignments.FindByID(ctx, assignmentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrInvalidReference
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}

	submissions, err := s.submissions.ListSubmittedByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submissions")
	}
	return submissions, nil
}

// GetForStudent returns the caller's own row for the assignment. A row that
// exists but is unsubmitted is returned as-is; the handler renders it empty.
func (s *SubmissionService) GetForStudent(ctx context.Context, assignmentID, studentID string) (*models.Submission, error) {
	submission, err := s.submissions.FindByKey(ctx, assignmentID, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrInvalidReference
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission")
	}
	return submission, nil
}
