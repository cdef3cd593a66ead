package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gdg-garage/ski-rental-api/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func signedToken(t *testing.T, secret string, userID uint, ttl time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func serve(h *AuthHandler, req *http.Request) (*httptest.ResponseRecorder, any) {
	var seen any
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Context().Value(UserIDKey)
		w.WriteHeader(http.StatusOK)
	})
	rr := httptest.NewRecorder()
	h.SessionMiddleware(next).ServeHTTP(rr, req)
	return rr, seen
}

func authCookie(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == CookieName {
			return c
		}
	}
	return nil
}

func TestSessionMiddleware_SlidingSession(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret"}
	handler := NewAuthHandler(cfg, nil, nil)

	t.Run("TokenRenewed", func(t *testing.T) {
		// 11 hours left is under TokenDuration/2.
		tokenString := signedToken(t, cfg.JWTSecret, 1, 11*time.Hour)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: tokenString})

		rr, seen := serve(handler, req)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, uint(1), seen)

		c := authCookie(rr)
		if assert.NotNil(t, c, "expected a refreshed cookie") {
			assert.NotEqual(t, tokenString, c.Value)
		}
	})

	t.Run("TokenNotRenewed", func(t *testing.T) {
		tokenString := signedToken(t, cfg.JWTSecret, 1, 13*time.Hour)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: tokenString})

		rr, seen := serve(handler, req)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, uint(1), seen)
		assert.Nil(t, authCookie(rr))
	})
}

func TestSessionMiddleware_Anonymous(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret"}
	handler := NewAuthHandler(cfg, nil, nil)

	t.Run("NoToken", func(t *testing.T) {
		rr, seen := serve(handler, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Nil(t, seen)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: signedToken(t, "other-secret", 1, time.Hour)})
		rr, seen := serve(handler, req)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Nil(t, seen)
	})

	t.Run("Expired", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: signedToken(t, cfg.JWTSecret, 1, -time.Minute)})
		_, seen := serve(handler, req)
		assert.Nil(t, seen)
	})
}

func TestSessionMiddleware_BearerHeader(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret"}
	handler := NewAuthHandler(cfg, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, cfg.JWTSecret, 42, time.Hour))

	rr, seen := serve(handler, req)
	assert.Equal(t, uint(42), seen)
	// Header tokens are not turned into cookies.
	assert.Nil(t, authCookie(rr))
}
