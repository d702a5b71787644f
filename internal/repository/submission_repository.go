package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/virtual-classroom-api/internal/models"
)

// SubmissionRepository manages persistence for submission records, keyed by
// (assignment_id, student_id).
//
// The listing methods cover the two secondary indexes,
// (student_id, submitted_at) and (assignment_id, submitted_at), with at most
// one predicate on the sort column. submitted_at IS NULL is the unsubmitted
// state; IS NOT NULL stands in for the one-sided range a store without NULLs
// would express against a sentinel. No method joins to the assignments table:
// callers needing assignment fields fetch them per row.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository constructs a SubmissionRepository.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// FindByKey fetches a submission by its composite primary key.
func (r *SubmissionRepository) FindByKey(ctx context.Context, assignmentID, studentID string) (*models.Submission, error) {
	const query = `SELECT assignment_id, student_id, id, remark, submitted_at FROM submissions WHERE assignment_id = $1 AND student_id = $2`
	var submission models.Submission
	if err := r.db.GetContext(ctx, &submission, query, assignmentID, studentID); err != nil {
		return nil, err
	}
	return &submission, nil
}

// Create inserts a fresh, unsubmitted row.
func (r *SubmissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	if submission.ID == "" {
		submission.ID = uuid.NewString()
	}
	const query = `INSERT INTO submissions (assignment_id, student_id, id, remark, submitted_at)
        VALUES (:assignment_id, :student_id, :id, :remark, :submitted_at)`
	if _, err := r.db.NamedExecContext(ctx, query, submission); err != nil {
		return fmt.Errorf("create submission: %w", err)
	}
	return nil
}

// Delete removes a submission row by composite key.
func (r *SubmissionRepository) Delete(ctx context.Context, assignmentID, studentID string) error {
	const query = `DELETE FROM submissions WHERE assignment_id = $1 AND student_id = $2`
	if _, err := r.db.ExecContext(ctx, query, assignmentID, studentID); err != nil {
		return fmt.Errorf("delete submission: %w", err)
	}
	return nil
}

// MarkSubmitted records the one-way PENDING to SUBMITTED transition.
func (r *SubmissionRepository) MarkSubmitted(ctx context.Context, assignmentID, studentID, remark string, submittedAt time.Time) error {
	const query = `UPDATE submissions SET remark = $3, submitted_at = $4 WHERE assignment_id = $1 AND student_id = $2`
	if _, err := r.db.ExecContext(ctx, query, assignmentID, studentID, remark, submittedAt); err != nil {
		return fmt.Errorf("mark submission submitted: %w", err)
	}
	return nil
}

// ListByAssignment returns every submission row for an assignment. Used for
// roster diffing and cascading deletes.
func (r *SubmissionRepository) ListByAssignment(ctx context.Context, assignmentID string) ([]models.Submission, error) {
	const query = `SELECT assignment_id, student_id, id, remark, submitted_at FROM submissions WHERE assignment_id = $1`
	var submissions []models.Submission
	if err := r.db.SelectContext(ctx, &submissions, query, assignmentID); err != nil {
		return nil, fmt.Errorf("list submissions by assignment: %w", err)
	}
	return submissions, nil
}

// ListSubmittedByAssignment returns the submitted rows for an assignment, in
// submission order.
func (r *SubmissionRepository) ListSubmittedByAssignment(ctx context.Context, assignmentID string) ([]models.Submission, error) {
	const query = `SELECT assignment_id, student_id, id, remark, submitted_at FROM submissions WHERE assignment_id = $1 AND submitted_at IS NOT NULL ORDER BY submitted_at`
	var submissions []models.Submission
	if err := r.db.SelectContext(ctx, &submissions, query, assignmentID); err != nil {
		return nil, fmt.Errorf("list submitted submissions: %w", err)
	}
	return submissions, nil
}

// ListByStudent returns every submission row keyed to the student.
func (r *SubmissionRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Submission, error) {
	const query = `SELECT assignment_id, student_id, id, remark, submitted_at FROM submissions WHERE student_id = $1`
	var submissions []models.Submission
	if err := r.db.SelectContext(ctx, &submissions, query, studentID); err != nil {
		return nil, fmt.Errorf("list submissions by student: %w", err)
	}
	return submissions, nil
}

// ListSubmittedByStudent returns the student's submitted rows.
func (r *SubmissionRepository) ListSubmittedByStudent(ctx context.Context, studentID string) ([]models.Submission, error) {
	const query = `SELECT assignment_id, student_id, id, remark, submitted_at FROM submissions WHERE student_id = $1 AND submitted_at IS NOT NULL ORDER BY submitted_at`
	var submissions []models.Submission
	if err := r.db.SelectContext(ctx, &submissions, query, studentID); err != nil {
		return nil, fmt.Errorf("list submitted submissions by student: %w", err)
	}
	return submissions, nil
}

// ListPendingByStudent returns the student's unsubmitted rows. Overdue
// refinement happens above the store, against each owning assignment.
func (r *SubmissionRepository) ListPendingByStudent(ctx context.Context, studentID string) ([]models.Submission, error) {
	const query = `SELECT assignment_id, student_id, id, remark, submitted_at FROM submissions WHERE student_id = $1 AND submitted_at IS NULL`
	var submissions []models.Submission
	if err := r.db.SelectContext(ctx, &submissions, query, studentID); err != nil {
		return nil, fmt.Errorf("list pending submissions by student: %w", err)
	}
	return submissions, nil
}
