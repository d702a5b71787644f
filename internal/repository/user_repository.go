package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/virtual-classroom-api/internal/models"
)

// UserRepository provides database access for user lookups.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByUsername returns a user by username. sql.ErrNoRows is passed through
// so callers can map it to an authentication failure.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	const query = `SELECT id, username, password_hash, full_name, role, created_at FROM users WHERE username = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, username); err != nil {
		return nil, err
	}
	return &user, nil
}
