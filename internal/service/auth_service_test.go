package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/virtual-classroom-api/internal/models"
	appErrors "github.com/noah-isme/virtual-classroom-api/pkg/errors"
)

type mockUserRepo struct {
	users map[string]*models.User
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	user, ok := m.users[username]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func newTestAuthService(repo *mockUserRepo, now func() time.Time) *AuthService {
	return NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{
		Secret:   "secret",
		Lifetime: 24 * time.Hour,
	}, now)
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	password, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	repo := &mockUserRepo{users: map[string]*models.User{
		"tutor1": {ID: "u1", Username: "tutor1", PasswordHash: string(password), FullName: "Tutor One", Role: models.RoleTutor},
	}}
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestAuthService(repo, fixedClock(now))

	res, err := svc.Login(context.Background(), models.LoginRequest{Username: "tutor1", Password: "password"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, int64((24 * time.Hour).Seconds()), res.ExpiresIn)
	assert.Equal(t, models.RoleTutor, res.User.Role)

	claims, err := svc.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "tutor1", claims.Username)
	assert.Equal(t, models.RoleTutor, claims.Role)
}

func TestAuthServiceLoginUnknownUser(t *testing.T) {
	svc := newTestAuthService(&mockUserRepo{users: map[string]*models.User{}}, nil)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "ghost", Password: "password"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
	assert.Equal(t, "user does not exist", appErr.Message)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	password, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	repo := &mockUserRepo{users: map[string]*models.User{
		"student1": {ID: "u2", Username: "student1", PasswordHash: string(password), Role: models.RoleStudent},
	}}
	svc := newTestAuthService(repo, nil)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "student1", Password: "wrong"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
	assert.Equal(t, "incorrect password", appErr.Message)
}

func TestAuthServiceLoginMissingFields(t *testing.T) {
	svc := newTestAuthService(&mockUserRepo{}, nil)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "tutor1"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestAuthServiceLoginUnknownRoleRow(t *testing.T) {
	password, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	repo := &mockUserRepo{users: map[string]*models.User{
		"odd": {ID: "u3", Username: "odd", PasswordHash: string(password), Role: "ADMIN"},
	}}
	svc := newTestAuthService(repo, nil)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "odd", Password: "password"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}

func TestAuthServiceValidateTokenExpired(t *testing.T) {
	password, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	repo := &mockUserRepo{users: map[string]*models.User{
		"tutor1": {ID: "u1", Username: "tutor1", PasswordHash: string(password), Role: models.RoleTutor},
	}}
	issued := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestAuthService(repo, fixedClock(issued))

	res, err := svc.Login(context.Background(), models.LoginRequest{Username: "tutor1", Password: "password"})
	require.NoError(t, err)

	// Same service, clock moved past the fixed lifetime.
	late := newTestAuthService(repo, fixedClock(issued.Add(25*time.Hour)))
	_, err = late.ValidateToken(res.Token)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}

func TestAuthServiceValidateTokenGarbage(t *testing.T) {
	svc := newTestAuthService(&mockUserRepo{}, nil)

	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}
