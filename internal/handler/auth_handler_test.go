package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/virtual-classroom-api/internal/models"
	appErrors "github.com/noah-isme/virtual-classroom-api/pkg/errors"
)

type authServiceMock struct {
	resp *models.LoginResponse
	err  error
}

func (m *authServiceMock) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	return m.resp, m.err
}

func TestAuthHandlerLogin(t *testing.T) {
	mockSvc := &authServiceMock{resp: &models.LoginResponse{Token: "token", User: models.UserInfo{Username: "tutor1", Role: models.RoleTutor}}}
	handler := NewAuthHandler(mockSvc)

	payload, _ := json.Marshal(models.LoginRequest{Username: "tutor1", Password: "password"})
	c, w := testContext(t, http.MethodPost, "/login", payload, nil)

	handler.Login(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data models.LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "token", envelope.Data.Token)
}

func TestAuthHandlerLoginInvalidBody(t *testing.T) {
	handler := NewAuthHandler(&authServiceMock{})

	c, w := testContext(t, http.MethodPost, "/login", []byte(`{"username":`), nil)

	handler.Login(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandlerLoginBadCredentials(t *testing.T) {
	handler := NewAuthHandler(&authServiceMock{err: appErrors.Clone(appErrors.ErrInvalidCredentials, "incorrect password")})

	payload, _ := json.Marshal(models.LoginRequest{Username: "tutor1", Password: "wrong"})
	c, w := testContext(t, http.MethodPost, "/login", payload, nil)

	handler.Login(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
