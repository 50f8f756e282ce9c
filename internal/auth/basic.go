// Package auth gates HTTP routes with Basic credentials. There are no
// sessions or tokens: every protected request is re-verified against the
// user store.
package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/avorn/posts-be/internal/services"
)

type contextKey string

// IdentityKey is the context key under which the caller's verified
// identity is stored for downstream handlers.
const IdentityKey = contextKey("identity")

// FromContext extracts the authenticated identity placed by the middleware.
func FromContext(ctx context.Context) (services.Identity, bool) {
	identity, ok := ctx.Value(IdentityKey).(services.Identity)
	return identity, ok
}

// RequireUser verifies Basic credentials on every request and passes the
// caller's identity down via context. Missing or bad credentials yield 401.
func RequireUser(authService services.AuthServiceProvider) func(http.Handler) http.Handler {
	return requireIdentity(authService, false)
}

// RequireAdmin is RequireUser plus an admin check. A valid non-admin caller
// also gets 401; the surface does not reveal which check failed.
func RequireAdmin(authService services.AuthServiceProvider) func(http.Handler) http.Handler {
	return requireIdentity(authService, true)
}

func requireIdentity(authService services.AuthServiceProvider, admin bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			login, password, ok := r.BasicAuth()
			if !ok {
				unauthorized(w)
				return
			}

			identity, err := authService.Authenticate(r.Context(), login, password)
			if err != nil {
				unauthorized(w)
				return
			}
			if admin && !identity.Admin {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), IdentityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="posts"`)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "error",
		"reason": "invalid credentials",
	})
}
