package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/glamour/internal/config"
	"github.com/joshua-takyi/glamour/internal/container"
	"github.com/joshua-takyi/glamour/internal/helpers"
	"github.com/joshua-takyi/glamour/internal/lock"
	"github.com/joshua-takyi/glamour/internal/models"
	"github.com/joshua-takyi/glamour/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const userSecret = "user-secret-user-secret-user-secret"

type api struct {
	t        *testing.T
	router   *gin.Engine
	store    *memory.Store
	customer string
	mua      string
}

func newAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Environment: "test",
		FrontendURL: "http://localhost:3000",
		JWTSecret:   "admin-secret-admin-secret-admin-secret",
		JWTExpires:  time.Hour,
		JWTIssuer:   "glamour-test",
		LockWait:    time.Second,
	}
	store := memory.New()
	repos := container.Repos{
		Users:      store,
		AdminUsers: store,
		Admins:     store,
		MUAs:       store,
		Bookings:   store,
		Reviews:    store,
	}
	verifier := helpers.NewHMACVerifier(userSecret, "", "")
	c := container.NewContainer(cfg, zap.NewNop(), repos, lock.NewLocal(), verifier, nil)

	store.AddUser(models.User{ID: "cust-1", Email: "c@example.com", Role: "CUSTOMER"})
	store.AddUser(models.User{ID: "mua-user-1", Email: "m@example.com", Role: "MUA"})
	_, err := store.CreateMUA(context.Background(), &models.MUA{
		ID: "mua-1", UserID: "mua-user-1", Name: "Ama Glam", Location: "Accra",
		Category: models.CategoryBridalLuxury, Specialty: "Bridal", CreatedAt: time.Now(),
	})
	require.NoError(t, err)

	sign := func(sub string) string {
		tok, err := verifier.Sign(sub, "", "authenticated", time.Hour)
		require.NoError(t, err)
		return tok
	}
	return &api{t: t, router: SetupRoutes(c), store: store, customer: sign("cust-1"), mua: sign("mua-user-1")}
}

type envelope struct {
	Success bool            `json:"success"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
	Total   int64           `json:"total"`
}

func (a *api) do(method, path, token string, body interface{}) (int, envelope) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w.Code, env
}

func TestBookingToReviewFlow(t *testing.T) {
	a := newAPI(t)

	code, env := a.do(http.MethodPost, "/api/v1/bookings", a.customer, map[string]interface{}{
		"provider_id":    "mua-1",
		"service_name":   "Bridal makeup",
		"scheduled_date": "2026-12-05T00:00:00Z",
		"scheduled_time": "09:00",
		"location":       "East Legon",
		"total_amount":   500000,
	})
	require.Equal(t, http.StatusCreated, code)
	var booking models.Booking
	require.NoError(t, json.Unmarshal(env.Data, &booking))
	assert.Equal(t, models.BookingPending, booking.Status)

	path := "/api/v1/bookings/" + booking.ID

	code, env = a.do(http.MethodPatch, path, a.customer, map[string]string{"status": "confirmed"})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "forbidden", env.Code)

	code, _ = a.do(http.MethodPatch, path, a.mua, map[string]string{"status": "completed"})
	assert.Equal(t, http.StatusConflict, code)

	code, _ = a.do(http.MethodPost, "/api/v1/reviews", a.customer, map[string]interface{}{"booking_id": booking.ID, "rating": 4})
	assert.Equal(t, http.StatusPreconditionFailed, code)

	code, _ = a.do(http.MethodPatch, path, a.mua, map[string]string{"status": "confirmed"})
	require.Equal(t, http.StatusOK, code)
	code, _ = a.do(http.MethodPatch, path, a.mua, map[string]string{"status": "completed"})
	require.Equal(t, http.StatusOK, code)

	code, _ = a.do(http.MethodPost, "/api/v1/reviews", a.customer, map[string]interface{}{"booking_id": booking.ID, "rating": 4, "comment": "flawless"})
	require.Equal(t, http.StatusCreated, code)

	code, env = a.do(http.MethodGet, "/api/v1/muas/mua-1", "", nil)
	require.Equal(t, http.StatusOK, code)
	var mua models.MUA
	require.NoError(t, json.Unmarshal(env.Data, &mua))
	assert.Equal(t, 4.0, mua.Rating)
	assert.Equal(t, 1, mua.ReviewsCount)

	code, env = a.do(http.MethodPost, "/api/v1/reviews", a.customer, map[string]interface{}{"booking_id": booking.ID, "rating": 5})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "conflict", env.Code)

	code, env = a.do(http.MethodGet, "/api/v1/muas/mua-1/reviews", "", nil)
	require.Equal(t, http.StatusOK, code)
	var reviews []models.Review
	require.NoError(t, json.Unmarshal(env.Data, &reviews))
	assert.Len(t, reviews, 1)
}

func TestBookingRoutesRequireAuth(t *testing.T) {
	a := newAPI(t)

	code, _ := a.do(http.MethodGet, "/api/v1/bookings/user/cust-1", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = a.do(http.MethodGet, "/api/v1/bookings/user/cust-1", a.mua, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = a.do(http.MethodGet, "/api/v1/bookings/user/cust-1", a.customer, nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = a.do(http.MethodPost, "/api/v1/bookings", a.customer, map[string]interface{}{
		"provider_id":    "nobody",
		"service_name":   "Glam",
		"scheduled_date": "2026-12-05T00:00:00Z",
		"scheduled_time": "09:00",
		"location":       "Osu",
		"total_amount":   10,
	})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestAdminRoutes(t *testing.T) {
	a := newAPI(t)

	code, env := a.do(http.MethodPost, "/api/v1/admin/auth/register", "", map[string]string{
		"email": "root@glamour.test", "password": "secret123", "name": "Root",
	})
	require.Equal(t, http.StatusCreated, code)
	var session struct {
		Token string       `json:"token"`
		Admin models.Admin `json:"admin"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &session))
	assert.Equal(t, models.RoleSuperAdmin, session.Admin.Role)

	code, _ = a.do(http.MethodPost, "/api/v1/admin/auth/register", "", map[string]string{
		"email": "late@glamour.test", "password": "secret123", "name": "Late",
	})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env = a.do(http.MethodGet, "/api/v1/admin/dashboard/stats", session.Token, nil)
	require.Equal(t, http.StatusOK, code)
	var stats struct {
		TotalUsers int64 `json:"total_users"`
		TotalMUAs  int64 `json:"total_muas"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.EqualValues(t, 2, stats.TotalUsers)
	assert.EqualValues(t, 1, stats.TotalMUAs)

	code, env = a.do(http.MethodGet, "/api/v1/admin/users?page=1&limit=1", session.Token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 2, env.Total)

	// User tokens are not admin tokens.
	code, _ = a.do(http.MethodGet, "/api/v1/admin/dashboard/stats", a.customer, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env = a.do(http.MethodPost, "/api/v1/admin/muas/mua-1/recompute-rating", session.Token, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = a.do(http.MethodPut, "/api/v1/admin/bookings/missing", session.Token, map[string]interface{}{"total_amount": 1})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = a.do(http.MethodGet, "/api/v1/admin/login-logs", session.Token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Zero(t, env.Total)
}

func TestHealthAndMetrics(t *testing.T) {
	a := newAPI(t)

	code, _ := a.do(http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "glamour_http_requests_total")
}
