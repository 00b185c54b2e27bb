package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/hamed0406/healthchecker/internal/auth"
)

// SessionCookie carries the session id.
const SessionCookie = "session_id"

// SessionLookup resolves a session id to a live session.
type SessionLookup interface {
	Lookup(ctx context.Context, id string) (auth.Session, error)
}

type sessionKey struct{}

// SessionFrom returns the session attached by RequireSession or
// RequireSessionOrKey. ok is false for API-key requests.
func SessionFrom(ctx context.Context) (auth.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(auth.Session)
	return s, ok
}

func readAuth(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(h), "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	if k := r.Header.Get("X-API-Key"); k != "" {
		return strings.TrimSpace(k)
	}
	return ""
}

func hasKey(given string, set []string) bool {
	if given == "" || len(set) == 0 {
		return false
	}
	for _, k := range set {
		if subtle.ConstantTimeCompare([]byte(k), []byte(given)) == 1 {
			return true
		}
	}
	return false
}

func readSession(r *http.Request, lookup SessionLookup) (auth.Session, bool) {
	c, err := r.Cookie(SessionCookie)
	if err != nil || c.Value == "" {
		return auth.Session{}, false
	}
	s, err := lookup.Lookup(r.Context(), c.Value)
	if err != nil {
		return auth.Session{}, false
	}
	return s, true
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
}

// RequireSession only permits requests carrying a valid session cookie.
func RequireSession(lookup SessionLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := readSession(r, lookup)
			if !ok {
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, s)))
		})
	}
}

// RequireSessionOrKey permits a valid session cookie or one of the admin API
// keys. With no admin keys configured only sessions are accepted.
func RequireSessionOrKey(lookup SessionLookup, adminKeys []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if hasKey(readAuth(r), adminKeys) {
				next.ServeHTTP(w, r)
				return
			}
			if s, ok := readSession(r, lookup); ok {
				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, s)))
				return
			}
			unauthorized(w)
		})
	}
}
