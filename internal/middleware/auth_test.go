package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"hrcore/internal/identity"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(GetJWTSecret())
	require.NoError(t, err)
	return signed
}

func newAuthRouter(requireHR bool) (*gin.Engine, *identity.Identity) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	var seen identity.Identity
	handlers := []gin.HandlerFunc{RequireAuth()}
	if requireHR {
		handlers = append(handlers, RequireHR())
	}
	handlers = append(handlers, func(c *gin.Context) {
		caller, _ := CallerIdentity(c)
		seen = caller
		c.Status(http.StatusOK)
	})
	router.GET("/protected", handlers...)
	return router, &seen
}

func TestRequireAuth_MissingToken(t *testing.T) {
	router, _ := newAuthRouter(false)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuth_MalformedHeader(t *testing.T) {
	router, _ := newAuthRouter(false)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuth_InvalidSignature(t *testing.T) {
	router, _ := newAuthRouter(false)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": float64(100)})
	signed, err := token.SignedString([]byte("some other secret"))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuth_ExtractsIdentityFromClaims(t *testing.T) {
	router, seen := newAuthRouter(false)
	signed := signToken(t, jwt.MapClaims{
		"sub":  float64(100),
		"name": "Mika Tanaka",
		"hr":   false,
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(100), seen.EmployeeNo)
	assert.Equal(t, "Mika Tanaka", seen.DisplayName)
	assert.False(t, seen.HRRole)
}

func TestRequireAuth_AcceptsCookie(t *testing.T) {
	router, seen := newAuthRouter(false)
	signed := signToken(t, jwt.MapClaims{"sub": float64(100)})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: signed})
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(100), seen.EmployeeNo)
}

func TestRequireHR_RejectsNonHRCaller(t *testing.T) {
	router, _ := newAuthRouter(true)
	signed := signToken(t, jwt.MapClaims{"sub": float64(100), "hr": false})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireHR_AllowsHRCaller(t *testing.T) {
	router, seen := newAuthRouter(true)
	signed := signToken(t, jwt.MapClaims{"sub": float64(900), "name": "Rin Sato", "hr": true})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, seen.HRRole)
}
