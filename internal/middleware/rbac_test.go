package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/e-agenda/e-agenda-api/internal/models"
)

func performWithRole(t *testing.T, role *models.UserRole) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	_, r := gin.CreateTestContext(w)
	r.GET("/admin", func(c *gin.Context) {
		if role != nil {
			c.Set(ContextUserKey, &models.JWTClaims{UserID: "u-1", Role: *role})
		}
		c.Next()
	}, RequireRoles(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	req, _ := http.NewRequest(http.MethodGet, "/admin", nil)
	r.ServeHTTP(w, req)
	return w
}

func TestRequireRolesAllowsAdmin(t *testing.T) {
	role := models.RoleAdmin
	w := performWithRole(t, &role)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRolesBlocksViewer(t *testing.T) {
	role := models.RoleViewer
	w := performWithRole(t, &role)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Contains(t, w.Body.String(), "FORBIDDEN")
}

func TestRequireRolesBlocksAnonymous(t *testing.T) {
	w := performWithRole(t, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
