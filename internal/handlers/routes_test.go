package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gdg-garage/ski-rental-api/internal/auth"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T, limiter *IPRateLimiter) (*testEnv, http.Handler) {
	t.Helper()
	env := setupEnv(t)
	r := chi.NewRouter()
	RegisterRoutes(r, env.cfg, env.handlers, limiter)
	return env, r
}

func do(h http.Handler, method, path, body string, opts ...func(*http.Request)) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.RemoteAddr = "203.0.113.7:51000"
	for _, opt := range opts {
		opt(req)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRoutesPublic(t *testing.T) {
	_, r := newRouter(t, nil)

	rec := do(r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec = do(r, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(r, http.MethodPost, "/api/discount/validate", `{"code":"SSW2526"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"valid":true`)

	rec = do(r, http.MethodPost, "/api/discount/calculate", `{"code":"SSW2526","original_amount":12350}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"discount_amount":618`)
}

func TestRoutesStaffOnly(t *testing.T) {
	env, r := newRouter(t, nil)

	rec := do(r, http.MethodGet, "/admin/discount-codes", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := env.handlers.Auth.GenerateToken(env.staff.ID)
	require.NoError(t, err)
	withCookie := func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	}

	rec = do(r, http.MethodGet, "/admin/discount-codes", "", withCookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "EarlyBird2526")

	rec = do(r, http.MethodGet, "/me", "", func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRoutesRateLimitDiscount(t *testing.T) {
	limiter := NewIPRateLimiter(0.001, 2, DiscountPathPrefix)
	_, r := newRouter(t, limiter)

	for range 2 {
		rec := do(r, http.MethodPost, "/api/discount/validate", `{"code":"SSW2526"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
	rec := do(r, http.MethodPost, "/api/discount/validate", `{"code":"SSW2526"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// Other clients and other routes are unaffected.
	rec = do(r, http.MethodPost, "/api/discount/validate", `{"code":"SSW2526"}`, func(req *http.Request) {
		req.RemoteAddr = "198.51.100.1:40000"
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRoutesCORS(t *testing.T) {
	_, r := newRouter(t, nil)

	rec := do(r, http.MethodOptions, "/api/reservations", "", func(req *http.Request) {
		req.Header.Set("Origin", "http://localhost:5173")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	})
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestIPRateLimiterAllow(t *testing.T) {
	l := NewIPRateLimiter(0.001, 1)
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"))
	assert.False(t, l.applies("/api/discount/validate"))
}

func TestRoutesEquipment(t *testing.T) {
	_, r := newRouter(t, nil)

	rec := do(r, http.MethodGet, "/api/equipment?category=ski&size=120cm", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Leki 滑雪杖")
	assert.NotContains(t, rec.Body.String(), "Salomon 滑雪板")

	rec = do(r, http.MethodGet, "/api/equipment/categories/list", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `["boots","clothing","helmet","ski","snowboard"]`, rec.Body.String())

	rec = do(r, http.MethodGet, "/api/equipment/sizes/list", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(r, http.MethodGet, "/api/equipment/1", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Salomon 滑雪板")

	rec = do(r, http.MethodGet, "/api/equipment/999", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
