package models

import (
	"fmt"
	"time"
)

// Submission is the per-student row fanned out from an assignment. The
// composite key is (AssignmentID, StudentID); ID is informational only.
// A nil SubmittedAt means the student has not submitted yet.
type Submission struct {
	AssignmentID string     `db:"assignment_id" json:"assignment_id"`
	StudentID    string     `db:"student_id" json:"student_id"`
	ID           string     `db:"id" json:"id"`
	Remark       string     `db:"remark" json:"remark"`
	SubmittedAt  *time.Time `db:"submitted_at" json:"submitted_at,omitempty"`
}

// Submitted reports whether the row has transitioned to its final state.
func (s Submission) Submitted() bool {
	return s.SubmittedAt != nil
}

// SubmissionStatus is the derived state of a submission row.
type SubmissionStatus string

const (
	SubmissionPending   SubmissionStatus = "PENDING"
	SubmissionOverdue   SubmissionStatus = "OVERDUE"
	SubmissionSubmitted SubmissionStatus = "SUBMITTED"
)

// StatusAt derives the submission status at the given instant. OVERDUE is the
// subset of pending rows whose owning assignment's deadline has passed, so the
// deadline must be supplied by the caller.
func (s Submission) StatusAt(deadline, now time.Time) SubmissionStatus {
	if s.Submitted() {
		return SubmissionSubmitted
	}
	if deadline.Before(now) {
		return SubmissionOverdue
	}
	return SubmissionPending
}

// SubmissionFilter selects submissions by derived status in student listings.
type SubmissionFilter string

const (
	SubmissionFilterAll       SubmissionFilter = "ALL"
	SubmissionFilterPending   SubmissionFilter = "PENDING"
	SubmissionFilterOverdue   SubmissionFilter = "OVERDUE"
	SubmissionFilterSubmitted SubmissionFilter = "SUBMITTED"
)

// ParseSubmissionFilter validates a raw filter value. An empty value means
// ALL; anything outside the enumeration is rejected before any query runs.
func ParseSubmissionFilter(raw string) (SubmissionFilter, error) {
	switch SubmissionFilter(raw) {
	case "":
		return SubmissionFilterAll, nil
	case SubmissionFilterAll, SubmissionFilterPending, SubmissionFilterOverdue, SubmissionFilterSubmitted:
		return SubmissionFilter(raw), nil
	default:
		return "", fmt.Errorf("invalid submission_status filter %q", raw)
	}
}
