package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/virtual-classroom-api/internal/models"
)

func rbacTestRouter(claims *models.JWTClaims, allowed ...models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	if claims != nil {
		router.Use(func(c *gin.Context) {
			c.Set(ContextUserKey, claims)
		})
	}
	router.Use(RequireRoles(allowed...))
	router.GET("/", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestRequireRolesAllows(t *testing.T) {
	router := rbacTestRouter(&models.JWTClaims{Username: "tutor1", Role: models.RoleTutor}, models.RoleTutor, models.RoleStudent)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRolesForbids(t *testing.T) {
	router := rbacTestRouter(&models.JWTClaims{Username: "student1", Role: models.RoleStudent}, models.RoleTutor)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRolesMissingClaims(t *testing.T) {
	router := rbacTestRouter(nil, models.RoleTutor)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
