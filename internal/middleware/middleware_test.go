package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/glamour/internal/helpers"
	"github.com/joshua-takyi/glamour/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supabase-community/gotrue-go/types"
	"go.uber.org/zap"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type fakeResolver map[string]models.Principal

func (f fakeResolver) ResolvePrincipal(_ context.Context, userID, _ string) (models.Principal, error) {
	p, ok := f[userID]
	if !ok {
		return models.Principal{}, models.NotFound("user not found")
	}
	return p, nil
}

type fakeRefresher struct {
	token string
}

func (f fakeRefresher) RefreshToken(_ context.Context, refreshToken string) (*types.TokenResponse, error) {
	if refreshToken != "good-refresh" {
		return nil, models.Unauthorized("token refresh failed")
	}
	return &types.TokenResponse{Session: types.Session{AccessToken: f.token, RefreshToken: "next-refresh", ExpiresIn: 3600}}, nil
}

type fakeAdmins map[string]models.Principal

func (f fakeAdmins) Authenticate(_ context.Context, token string) (models.Principal, error) {
	p, ok := f[token]
	if !ok {
		return models.Principal{}, models.Unauthorized("invalid or expired token")
	}
	return p, nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

func echoPrincipal(c *gin.Context) {
	p, _ := helpers.PrincipalFrom(c)
	c.JSON(http.StatusOK, p)
}

func TestAuthMiddleware(t *testing.T) {
	verifier := helpers.NewHMACVerifier(testSecret, "", "")
	resolver := fakeResolver{"u-1": {ID: "u-1", Role: models.RoleCustomer}}

	good, err := verifier.Sign("u-1", "u1@example.com", "authenticated", time.Hour)
	require.NoError(t, err)
	orphan, err := verifier.Sign("u-9", "u9@example.com", "authenticated", time.Hour)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", AuthMiddleware(verifier, resolver, nil, false, zap.NewNop()), echoPrincipal)

	tests := []struct {
		name   string
		header string
		cookie string
		want   int
	}{
		{"no token", "", "", http.StatusUnauthorized},
		{"bad token", "Bearer nonsense", "", http.StatusUnauthorized},
		{"bearer", "Bearer " + good, "", http.StatusOK},
		{"cookie", "", good, http.StatusOK},
		{"no profile", "Bearer " + orphan, "", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestAuthMiddlewareRefreshesExpiredCookie(t *testing.T) {
	verifier := helpers.NewHMACVerifier(testSecret, "", "")
	resolver := fakeResolver{"u-1": {ID: "u-1", Role: models.RoleMUA}}

	expired, err := verifier.Sign("u-1", "", "", -time.Minute)
	require.NoError(t, err)
	fresh, err := verifier.Sign("u-1", "", "", time.Hour)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", AuthMiddleware(verifier, resolver, fakeRefresher{token: fresh}, false, zap.NewNop()), echoPrincipal)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: expired})
	req.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: "good-refresh"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Values("Set-Cookie")[0], fresh)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: expired})
	req.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: "stolen"})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminAuth(t *testing.T) {
	admins := fakeAdmins{
		"admin-token": {ID: "a-1", Role: models.RoleAdmin},
		"super-token": {ID: "a-2", Role: models.RoleSuperAdmin},
	}
	logger := zap.NewNop()

	r := gin.New()
	r.GET("/any", AdminAuth(admins, false, logger), echoPrincipal)
	r.GET("/super", AdminAuth(admins, true, logger), echoPrincipal)
	r.POST("/register", OptionalAdminAuth(admins, logger), echoPrincipal)

	tests := []struct {
		method, path, token string
		want                int
	}{
		{http.MethodGet, "/any", "", http.StatusUnauthorized},
		{http.MethodGet, "/any", "wrong", http.StatusUnauthorized},
		{http.MethodGet, "/any", "admin-token", http.StatusOK},
		{http.MethodGet, "/super", "admin-token", http.StatusForbidden},
		{http.MethodGet, "/super", "super-token", http.StatusOK},
		{http.MethodPost, "/register", "", http.StatusOK},
		{http.MethodPost, "/register", "wrong", http.StatusUnauthorized},
		{http.MethodPost, "/register", "super-token", http.StatusOK},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		if tt.token != "" {
			req.Header.Set("Authorization", "Bearer "+tt.token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, tt.want, w.Code, "%s %s with %q", tt.method, tt.path, tt.token)
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "req-42", w.Body.String())
}
