package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"deepmirror/internal/auth"
	"deepmirror/internal/httputil"
)

// AuthMiddleware resolves the bearer token, when present, into a user ID on
// the request context. Requests without a token pass through anonymously so
// the generation endpoints stay public; an invalid token is a 401.
// A nil verifier disables authentication entirely.
func AuthMiddleware(verifier auth.Verifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if verifier == nil || header == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "Invalid authorization header")
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				logger.Debug("authentication failed", "path", r.URL.Path, "error", err)
				httputil.RespondError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			next.ServeHTTP(w, httputil.WithUser(r, claims.UserID()))
		})
	}
}

// RequireUser rejects anonymous requests
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if httputil.UserID(r) == "" {
			httputil.RespondError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
