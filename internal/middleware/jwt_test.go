package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/virtual-classroom-api/internal/models"
	"github.com/noah-isme/virtual-classroom-api/internal/service"
)

func signToken(t *testing.T, secret string, role models.UserRole, expiresAt time.Time) string {
	t.Helper()
	claims := &models.JWTClaims{
		Username: "user1",
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func jwtTestRouter(authService *service.AuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(JWT(authService))
	router.GET("/", func(c *gin.Context) {
		claims := c.MustGet(ContextUserKey).(*models.JWTClaims)
		c.JSON(http.StatusOK, gin.H{"username": claims.Username})
	})
	return router
}

func newTestAuthService() *service.AuthService {
	return service.NewAuthService(nil, nil, zap.NewNop(), service.AuthConfig{Secret: "secret", Lifetime: time.Hour}, nil)
}

func TestJWTMissingHeader(t *testing.T) {
	router := jwtTestRouter(newTestAuthService())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTMalformedHeader(t *testing.T) {
	router := jwtTestRouter(newTestAuthService())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token abc")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTValidToken(t *testing.T) {
	router := jwtTestRouter(newTestAuthService())
	token := signToken(t, "secret", models.RoleStudent, time.Now().Add(time.Hour))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user1")
}

func TestJWTExpiredToken(t *testing.T) {
	router := jwtTestRouter(newTestAuthService())
	token := signToken(t, "secret", models.RoleStudent, time.Now().Add(-time.Hour))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTWrongSecret(t *testing.T) {
	router := jwtTestRouter(newTestAuthService())
	token := signToken(t, "other-secret", models.RoleStudent, time.Now().Add(time.Hour))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTUnknownRoleRejected(t *testing.T) {
	router := jwtTestRouter(newTestAuthService())
	token := signToken(t, "secret", "ADMIN", time.Now().Add(time.Hour))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
