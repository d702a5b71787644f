package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestUserRepositoryFindByUsername(t *testing.T) {
	db, mock, cleanup := newUserMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	rows := sqlmock.NewRows([]string{"id", "username", "password_hash", "full_name", "role", "created_at"}).
		AddRow("u1", "tutor1", "hash", "Tutor One", "TUTOR", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, username, password_hash, full_name, role, created_at FROM users WHERE username = $1 LIMIT 1")).
		WithArgs("tutor1").
		WillReturnRows(rows)

	user, err := repo.FindByUsername(context.Background(), "tutor1")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryFindByUsernameNotFound(t *testing.T) {
	db, mock, cleanup := newUserMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery("SELECT id, username, password_hash, full_name, role, created_at FROM users").
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
