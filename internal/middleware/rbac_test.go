package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/campushq/coordination-api/internal/models"
)

func rbacTestRouter(claims *models.JWTClaims, allowed ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/users/:staff_id",
		func(c *gin.Context) {
			if claims != nil {
				c.Set(ContextUserKey, claims)
			}
		},
		RBAC(allowed...),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)
	return router
}

func TestRBACAdminPasses(t *testing.T) {
	router := rbacTestRouter(&models.JWTClaims{StaffID: "ADM00001", Role: models.RoleAdmin},
		string(models.RoleAdmin), "SELF")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/users/STF00001", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRBACSelfMatchesStaffID(t *testing.T) {
	router := rbacTestRouter(&models.JWTClaims{StaffID: "STF00001", Role: models.RoleCoordinator},
		string(models.RoleAdmin), "SELF")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/users/STF00001", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/users/STF00002", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestRBACMissingClaims(t *testing.T) {
	router := rbacTestRouter(nil, string(models.RoleAdmin))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/users/STF00001", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRolesRejectsCoordinator(t *testing.T) {
	router := rbacTestRouter(&models.JWTClaims{StaffID: "STF00001", Role: models.RoleCoordinator},
		string(models.RoleAdmin))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/users/STF00001", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)
}
