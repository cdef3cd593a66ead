package auth

import (
	"context"
	"net/http"
	"strings"
	"time"
)

type contextKey string

const UserIDKey contextKey = "user_id"

// SessionMiddleware attaches the signed-in staff user to the request context.
// It never rejects: public routes stay public and staff operations check the
// context themselves. Tokens come from the auth cookie or a Bearer header.
func (h *AuthHandler) SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, fromCookie := tokenFromRequest(r)
		if tokenString == "" {
			next.ServeHTTP(w, r)
			return
		}

		userID, expiry, err := h.ParseToken(tokenString)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		// Sliding session: refresh the cookie once it is past half its lifetime.
		if fromCookie && !expiry.IsZero() && time.Until(expiry) < TokenDuration/2 {
			if newToken, err := h.GenerateToken(userID); err == nil {
				h.setCookie(w, newToken)
			}
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func tokenFromRequest(r *http.Request) (string, bool) {
	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")), false
	}
	return "", false
}
