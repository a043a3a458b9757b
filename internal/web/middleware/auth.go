// Package middleware provides HTTP middleware for the API surface.
package middleware

import (
	"log/slog"
	"net/http"
)

// Gate is anything that can report whether the current session is
// logged in. Satisfied by *session.Store.
type Gate interface {
	Authenticated() bool
}

// SessionAuth returns middleware that rejects requests until the
// session has presented the shared access secret at the login endpoint.
func SessionAuth(gate Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !gate.Authenticated() {
				slog.Warn("auth: unauthenticated request",
					"path", r.URL.Path,
					"method", r.Method,
					"remote_addr", r.RemoteAddr,
				)
				http.Error(w, `{"error":"login required","code":"AUTH_REQUIRED"}`, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
