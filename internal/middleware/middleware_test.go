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

	"road_treatment/internal/config"
	"road_treatment/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func tokenFor(t *testing.T, role string) string {
	t.Helper()
	tmc := uint(2)
	tok, err := GenerateToken(&models.User{ID: 9, Email: "u@example.com", Role: role, TMCID: &tmc, Name: "U"})
	require.NoError(t, err)
	return tok
}

func TestToken_RoundTrip(t *testing.T) {
	claims, err := ValidateToken(tokenFor(t, models.RoleDispatcher))
	require.NoError(t, err)
	assert.Equal(t, uint(9), claims.ID)
	assert.Equal(t, "u@example.com", claims.Email)
	assert.Equal(t, models.RoleDispatcher, claims.Role)
	require.NotNil(t, claims.TMCID)
	assert.Equal(t, uint(2), *claims.TMCID)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, time.Minute)
	assert.False(t, claims.IsAdmin())
}

func TestToken_RejectsTamperedAndExpired(t *testing.T) {
	_, err := ValidateToken(tokenFor(t, models.RoleAdmin) + "x")
	assert.Error(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		ID:   1,
		Role: models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	signed, err := expired.SignedString(secret)
	require.NoError(t, err)
	_, err = ValidateToken(signed)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	other := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		ID:               1,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	signed, err = other.SignedString([]byte("another-secret"))
	require.NoError(t, err)
	_, err = ValidateToken(signed)
	assert.Error(t, err)
}

func TestPolicy_Table(t *testing.T) {
	cases := []struct {
		role, resource, action string
		allowed                bool
	}{
		{models.RoleDriver, "ticket", "read", true},
		{models.RoleDriver, "ticket", "create", false},
		{models.RoleDriver, "ticket", "transition", true},
		{models.RoleDriver, "treatment", "record", true},
		{models.RoleDriver, "material", "restock", false},
		{models.RoleDriver, "truck", "delete", false},
		{models.RoleDispatcher, "ticket", "create", true},
		{models.RoleDispatcher, "material", "usage", true},
		{models.RoleDispatcher, "user", "read", false},
		{models.RoleDispatcher, "dashboard", "statewide", false},
		{models.RoleDispatcher, "dashboard", "tmc", true},
		{models.RoleAdmin, "user", "delete", true},
		{models.RoleAdmin, "dashboard", "statewide", true},
		{models.RoleAdmin, "ticket", "archive", false},
		{"guest", "ticket", "read", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, Allowed(tc.role, tc.resource, tc.action), "%s %s %s", tc.role, tc.resource, tc.action)
	}
}

func newGuardedRouter(resource, action string) *gin.Engine {
	r := gin.New()
	r.GET("/guarded", RequireAuth(), Authorize(resource, action), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": CurrentActor(c).ID})
	})
	return r
}

func TestAuthorize_Middleware(t *testing.T) {
	r := newGuardedRouter("ticket", "create")

	do := func(header string) int {
		req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusUnauthorized, do(""))
	assert.Equal(t, http.StatusUnauthorized, do("Bearer nope"))
	assert.Equal(t, http.StatusForbidden, do("Bearer "+tokenFor(t, models.RoleDriver)))
	assert.Equal(t, http.StatusOK, do("Bearer "+tokenFor(t, models.RoleDispatcher)))
}

func TestEnableCORS_Preflight(t *testing.T) {
	called := false
	h := EnableCORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	req := httptest.NewRequest(http.MethodOptions, "/api/tickets", nil)
	req.Header.Set("Origin", "http://console.local")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://console.local", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")
	assert.False(t, called)
}

func TestToken_DefaultsMatchConfig(t *testing.T) {
	claims := Claims{
		ID:   3,
		Role: models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(config.DefaultJWTSecret))
	require.NoError(t, err)

	got, err := ValidateToken(signed)
	require.NoError(t, err)
	assert.Equal(t, uint(3), got.ID)
	assert.Equal(t, config.DefaultTokenTTL, tokenTTL)
}
