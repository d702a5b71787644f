package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/virtual-classroom-api/internal/models"
)

// AssignmentRepository manages persistence for assignment records.
//
// Listing methods map one-to-one onto the (owner_id, published_at) secondary
// index: one equality condition on the owner key plus at most one one-sided
// range condition on the sort column. Each publication filter gets its own
// method so the caller's filter choice selects the query shape explicitly.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs an AssignmentRepository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// FindByID fetches an assignment by its primary key.
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	const query = `SELECT id, owner_id, description, deadline, published_at FROM assignments WHERE id = $1`
	var assignment models.Assignment
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// Create inserts a new assignment record.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	const query = `INSERT INTO assignments (id, owner_id, description, deadline, published_at)
        VALUES (:id, :owner_id, :description, :deadline, :published_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// Update persists the full merged record, mirroring a point put.
func (r *AssignmentRepository) Update(ctx context.Context, assignment *models.Assignment) error {
	const query = `UPDATE assignments SET description = :description, deadline = :deadline, published_at = :published_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("update assignment: %w", err)
	}
	return nil
}

// Delete removes an assignment row by primary key.
func (r *AssignmentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM assignments WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	return nil
}

// ListByOwner returns every assignment owned by the tutor, in index order.
func (r *AssignmentRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Assignment, error) {
	const query = `SELECT id, owner_id, description, deadline, published_at FROM assignments WHERE owner_id = $1 ORDER BY published_at`
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, ownerID); err != nil {
		return nil, fmt.Errorf("list assignments by owner: %w", err)
	}
	return assignments, nil
}

// ListScheduledByOwner returns assignments whose publication instant is still
// in the future relative to the supplied clock reading.
func (r *AssignmentRepository) ListScheduledByOwner(ctx context.Context, ownerID string, now time.Time) ([]models.Assignment, error) {
	const query = `SELECT id, owner_id, description, deadline, published_at FROM assignments WHERE owner_id = $1 AND published_at > $2 ORDER BY published_at`
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, ownerID, now); err != nil {
		return nil, fmt.Errorf("list scheduled assignments: %w", err)
	}
	return assignments, nil
}

// ListOngoingByOwner returns assignments already published at the supplied
// clock reading.
func (r *AssignmentRepository) ListOngoingByOwner(ctx context.Context, ownerID string, now time.Time) ([]models.Assignment, error) {
	const query = `SELECT id, owner_id, description, deadline, published_at FROM assignments WHERE owner_id = $1 AND published_at <= $2 ORDER BY published_at`
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, ownerID, now); err != nil {
		return nil, fmt.Errorf("list ongoing assignments: %w", err)
	}
	return assignments, nil
}
