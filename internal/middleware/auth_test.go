package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/Kestrel/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func newAuthRouter(secret string) (*gin.Engine, *uint, *model.Role) {
	gin.SetMode(gin.TestMode)
	var gotID uint
	var gotRole model.Role

	r := gin.New()
	r.GET("/protected", Authenticate(secret), func(c *gin.Context) {
		gotID = UserID(c)
		gotRole = UserRole(c)
		c.Status(http.StatusOK)
	})
	return r, &gotID, &gotRole
}

func TestAuthenticateRoundTrip(t *testing.T) {
	router, gotID, gotRole := newAuthRouter(testSecret)

	token, err := GenerateToken(testSecret, 42, model.RoleTeacher)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint(42), *gotID)
	assert.Equal(t, model.RoleTeacher, *gotRole)
}

func TestAuthenticateRejections(t *testing.T) {
	router, _, _ := newAuthRouter(testSecret)

	wrongSecretToken, err := GenerateToken("some-other-secret", 42, model.RoleStudent)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not a bearer token", "Basic abc123"},
		{"garbage token", "Bearer not.a.jwt"},
		{"wrong secret", "Bearer " + wrongSecretToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRequireRoles(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin-only", Authenticate(testSecret), RequireRoles(model.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	call := func(role model.Role) int {
		token, err := GenerateToken(testSecret, 7, role)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/admin-only", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, call(model.RoleAdmin))
	assert.Equal(t, http.StatusForbidden, call(model.RoleTeacher))
	assert.Equal(t, http.StatusForbidden, call(model.RoleStudent))
}
