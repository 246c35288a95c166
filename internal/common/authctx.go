package common

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type ctxKey string

const userIDKey ctxKey = "identity/user-id"

// WithUserID stores the authenticated user identifier on the provided context.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// UserID extracts the authenticated user identifier from the context if present.
func UserID(ctx context.Context) (string, bool) {
	v := ctx.Value(userIDKey)
	if v == nil {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

// Identity reads the user identity injected by the upstream auth gateway.
// Authentication itself happens before requests reach this service; the
// gateway forwards the verified subject in X-User-ID.
type Identity struct {
	Header string
}

func (i Identity) header() string {
	if strings.TrimSpace(i.Header) == "" {
		return "X-User-ID"
	}
	return i.Header
}

// Middleware places the forwarded user ID on the request context when it is a
// well-formed UUID.
func (i Identity) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get(i.header()))
		if raw != "" {
			if _, err := uuid.Parse(raw); err == nil {
				r = r.WithContext(WithUserID(r.Context(), raw))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireUser rejects requests without a forwarded identity.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := UserID(r.Context()); !ok || id == "" {
			JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin guards back-office routes with a static admin token.
func RequireAdmin(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				JSONError(w, http.StatusInternalServerError, "INTERNAL", "admin access not configured", nil)
				return
			}
			got := strings.TrimSpace(r.Header.Get("X-Admin-Token"))
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				JSONError(w, http.StatusForbidden, "FORBIDDEN", "insufficient permissions", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
