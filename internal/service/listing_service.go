package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/virtual-classroom-api/internal/models"
	appErrors "github.com/noah-isme/virtual-classroom-api/pkg/errors"
)

type listingAssignmentStore interface {
	FindByID(ctx context.Context, id string) (*models.Assignment, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Assignment, error)
	ListScheduledByOwner(ctx context.Context, ownerID string, now time.Time) ([]models.Assignment, error)
	ListOngoingByOwner(ctx context.Context, ownerID string, now time.Time) ([]models.Assignment, error)
}

type listingSubmissionStore interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.Submission, error)
	ListSubmittedByStudent(ctx context.Context, studentID string) ([]models.Submission, error)
	ListPendingByStudent(ctx context.Context, studentID string) ([]models.Submission, error)
}

// ListingService is the status derivation engine: it selects the index and
// predicate shape for each requested filter and derives publication and
// submission statuses from stored timestamps against an injected clock.
//
// The OVERDUE filter cannot be answered by any single index scan. It runs as
// an explicit pipeline: unsubmitted-row index scan, then one assignment point
// get per row (read-through cache), then the deadline predicate, then the
// publication predicate.
type ListingService struct {
	assignments listingAssignmentStore
	submissions listingSubmissionStore
	cache       *CacheService
	logger      *zap.Logger
	now         func() time.Time
}

// NewListingService constructs a ListingService. A nil clock defaults to
// time.Now.
func NewListingService(assignments listingAssignmentStore, submissions listingSubmissionStore, cache *CacheService, logger *zap.Logger, now func() time.Time) *ListingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &ListingService{assignments: assignments, submissions: submissions, cache: cache, logger: logger, now: now}
}

// ListForTutor returns the tutor's assignments, filtered by derived
// publication status. Each filter value maps onto one key-condition shape of
// the (owner, published_at) index.
func (s *ListingService) ListForTutor(ctx context.Context, tutorID, rawPublished string) ([]models.Assignment, error) {
	filter, err := models.ParsePublicationFilter(rawPublished)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	now := s.now().UTC()
	var assignments []models.Assignment
	switch filter {
	case models.PublicationFilterAll:
		assignments, err = s.assignments.ListByOwner(ctx, tutorID)
	case models.PublicationFilterScheduled:
		assignments, err = s.assignments.ListScheduledByOwner(ctx, tutorID, now)
	case models.PublicationFilterOngoing:
		assignments, err = s.assignments.ListOngoingByOwner(ctx, tutorID, now)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return assignments, nil
}

// ListForStudent returns the assignments referenced by the student's
// submission rows matching the submission filter, refined by the overdue
// predicate when requested and finally by the publication filter, in that
// order. Both filters are validated before any query executes.
func (s *ListingService) ListForStudent(ctx context.Context, studentID, rawPublished, rawSubmission string) ([]models.Assignment, error) {
	published, err := models.ParsePublicationFilter(rawPublished)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	submission, err := models.ParseSubmissionFilter(rawSubmission)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	var rows []models.Submission
	switch submission {
	case models.SubmissionFilterAll:
		rows, err = s.submissions.ListByStudent(ctx, studentID)
	case models.SubmissionFilterSubmitted:
		rows, err = s.submissions.ListSubmittedByStudent(ctx, studentID)
	case models.SubmissionFilterPending, models.SubmissionFilterOverdue:
		// OVERDUE is a subset of PENDING; both share the unsubmitted scan.
		rows, err = s.submissions.ListPendingByStudent(ctx, studentID)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submissions")
	}

	assignments := make([]models.Assignment, 0, len(rows))
	for _, row := range rows {
		assignment, err := s.getAssignment(ctx, row.AssignmentID)
		if err != nil {
			return nil, err
		}
		if assignment == nil {
			// Orphan row left behind by a partially-applied cascade.
			s.logger.Warn("submission references missing assignment",
				zap.String("assignment_id", row.AssignmentID),
				zap.String("student_id", row.StudentID))
			continue
		}
		assignments = append(assignments, *assignment)
	}

	now := s.now().UTC()
	if submission == models.SubmissionFilterOverdue {
		assignments = filterAssignments(assignments, func(a models.Assignment) bool {
			return a.IsPastDue(now)
		})
	}

	switch published {
	case models.PublicationFilterScheduled:
		assignments = filterAssignments(assignments, func(a models.Assignment) bool {
			return a.PublicationStatusAt(now) == models.PublicationScheduled
		})
	case models.PublicationFilterOngoing:
		assignments = filterAssignments(assignments, func(a models.Assignment) bool {
			return a.PublicationStatusAt(now) == models.PublicationOngoing
		})
	}

	return assignments, nil
}

// getAssignment performs the per-row join from a submission to its owning
// assignment, read-through the cache. A missing assignment yields nil.
func (s *ListingService) getAssignment(ctx context.Context, id string) (*models.Assignment, error) {
	var cached models.Assignment
	if s.cache.Get(ctx, assignmentCacheKey(id), &cached) {
		return &cached, nil
	}

	assignment, err := s.assignments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}

	s.cache.Set(ctx, assignmentCacheKey(id), assignment)
	return assignment, nil
}

func filterAssignments(in []models.Assignment, keep func(models.Assignment) bool) []models.Assignment {
	out := in[:0]
	for _, a := range in {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}
