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

type assignmentStore interface {
	FindByID(ctx context.Context, id string) (*models.Assignment, error)
	Create(ctx context.Context, assignment *models.Assignment) error
	Update(ctx context.Context, assignment *models.Assignment) error
	Delete(ctx context.Context, id string) error
}

type submissionRosterStore interface {
	Create(ctx context.Context, submission *models.Submission) error
	Delete(ctx context.Context, assignmentID, studentID string) error
	ListByAssignment(ctx context.Context, assignmentID string) ([]models.Submission, error)
}

// CreateAssignmentRequest describes the assignment creation payload.
type CreateAssignmentRequest struct {
	Description string     `json:"description" validate:"required"`
	Deadline    time.Time  `json:"deadline" validate:"required"`
	Students    []string   `json:"students" validate:"required,min=1,dive,required"`
	PublishedAt *time.Time `json:"publishedat"`
}

// UpdateAssignmentRequest describes the partial-update payload. Nil fields
// are left untouched; a non-nil empty Students slice is a validation error.
type UpdateAssignmentRequest struct {
	Description *string    `json:"description"`
	Deadline    *time.Time `json:"deadline"`
	PublishedAt *time.Time `json:"publishedat"`
	Students    []string   `json:"students"`
}

// AssignmentService orchestrates the assignment lifecycle together with the
// fan-out of per-student submission rows.
//
// Multi-row phases (fan-out on create, roster diff on update, cascading
// delete) are sequences of independent single-row writes with no enclosing
// transaction: a failure aborts the remaining writes and surfaces a generic
// internal error without rolling back the rows already written. Concurrent
// writers against the same assignment can interleave.
type AssignmentService struct {
	assignments assignmentStore
	submissions submissionRosterStore
	cache       *CacheService
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewAssignmentService constructs an AssignmentService. A nil clock defaults
// to time.Now.
func NewAssignmentService(assignments assignmentStore, submissions submissionRosterStore, cache *CacheService, validate *validator.Validate, logger *zap.Logger, now func() time.Time) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &AssignmentService{assignments: assignments, submissions: submissions, cache: cache, validator: validate, logger: logger, now: now}
}

// Create validates the payload, persists the assignment, then fans out one
// unsubmitted row per roster entry.
func (s *AssignmentService) Create(ctx context.Context, ownerID string, req CreateAssignmentRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	now := s.now().UTC()
	if strings.TrimSpace(req.Description) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "description invalid")
	}
	if !req.Deadline.After(now) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "deadline invalid")
	}
	if req.PublishedAt != nil && req.PublishedAt.Before(now) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "published at invalid")
	}

	publishedAt := now
	if req.PublishedAt != nil {
		publishedAt = req.PublishedAt.UTC()
	}

	assignment := &models.Assignment{
		OwnerID:     ownerID,
		Description: req.Description,
		Deadline:    req.Deadline.UTC(),
		PublishedAt: publishedAt,
	}
	if err := s.assignments.Create(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
	}

	if err := s.addToRoster(ctx, assignment.ID, req.Students); err != nil {
		return nil, err
	}

	return assignment, nil
}

// Update merges supplied fields into the stored record and, when a roster is
// supplied, reconciles the submission fan-out against it.
func (s *AssignmentService) Update(ctx context.Context, id string, req UpdateAssignmentRequest) (*models.Assignment, error) {
	now := s.now().UTC()
	if req.Description != nil && strings.TrimSpace(*req.Description) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "description invalid")
	}
	if req.Deadline != nil && !req.Deadline.After(now) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "deadline invalid")
	}
	if req.PublishedAt != nil && req.PublishedAt.Before(now) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "published at invalid")
	}
	if req.Students != nil && len(req.Students) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "students list invalid")
	}

	assignment, err := s.assignments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrInvalidReference
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}

	if req.Description != nil {
		assignment.Description = *req.Description
	}
	if req.Deadline != nil {
		assignment.Deadline = req.Deadline.UTC()
	}
	if req.PublishedAt != nil {
		assignment.PublishedAt = req.PublishedAt.UTC()
	}

	if err := s.assignments.Update(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update assignment")
	}
	s.cache.Invalidate(ctx, assignmentCacheKey(id))

	if req.Students != nil {
		if err := s.syncRoster(ctx, id, req.Students); err != nil {
			return nil, err
		}
	}

	return assignment, nil
}

// Delete removes the assignment and then its entire submission fan-out,
// returning the assignment's last known state.
func (s *AssignmentService) Delete(ctx context.Context, id string) (*models.Assignment, error) {
	assignment, err := s.assignments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrInvalidReference
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}

	if err := s.assignments.Delete(ctx, id); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete assignment")
	}
	s.cache.Invalidate(ctx, assignmentCacheKey(id))

	rows, err := s.submissions.ListByAssignment(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submissions")
	}
	for _, row := range rows {
		if err := s.submissions.Delete(ctx, id, row.StudentID); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete submission")
		}
	}

	return assignment, nil
}

// syncRoster reconciles the submission rows of an assignment against the
// requested roster. Students present in both keep their rows untouched.
func (s *AssignmentService) syncRoster(ctx context.Context, assignmentID string, requested []string) error {
	current, err := s.submissions.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submissions")
	}

	toRemove, toAdd := diffRoster(current, requested)

	for _, studentID := range toRemove {
		if err := s.submissions.Delete(ctx, assignmentID, studentID); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete submission")
		}
	}

	return s.addToRoster(ctx, assignmentID, toAdd)
}

func (s *AssignmentService) addToRoster(ctx context.Context, assignmentID string, studentIDs []string) error {
	for _, studentID := range studentIDs {
		submission := &models.Submission{
			AssignmentID: assignmentID,
			StudentID:    studentID,
			Remark:       "",
			SubmittedAt:  nil,
		}
		if err := s.submissions.Create(ctx, submission); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create submission")
		}
	}
	return nil
}

// diffRoster computes the add/remove sets between the students holding a
// submission row and the requested roster.
func diffRoster(current []models.Submission, requested []string) (toRemove, toAdd []string) {
	requestedSet := make(map[string]struct{}, len(requested))
	for _, id := range requested {
		requestedSet[id] = struct{}{}
	}
	currentSet := make(map[string]struct{}, len(current))
	for _, row := range current {
		currentSet[row.StudentID] = struct{}{}
		if _, ok := requestedSet[row.StudentID]; !ok {
			toRemove = append(toRemove, row.StudentID)
		}
	}
	for _, id := range requested {
		if _, ok := currentSet[id]; !ok {
			toAdd = append(toAdd, id)
		}
	}
	return toRemove, toAdd
}

func assignmentCacheKey(id string) string {
	return "assignment:" + id
}
