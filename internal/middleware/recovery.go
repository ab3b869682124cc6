package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"deepmirror/internal/httputil"
)

// headerTracker notes whether the handler already committed a response
type headerTracker struct {
	http.ResponseWriter
	committed bool
}

func (t *headerTracker) WriteHeader(status int) {
	t.committed = true
	t.ResponseWriter.WriteHeader(status)
}

func (t *headerTracker) Write(b []byte) (int, error) {
	t.committed = true
	return t.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the flusher for SSE
func (t *headerTracker) Unwrap() http.ResponseWriter {
	return t.ResponseWriter
}

// Recovery turns a handler panic into a JSON 500. Once a chat stream has
// started nothing more can be written, so the stream is just cut short.
// http.ErrAbortHandler is re-raised so the server aborts the response.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tw := &headerTracker{ResponseWriter: w}
			defer func() {
				err := recover()
				if err == nil {
					return
				}
				if err == http.ErrAbortHandler {
					panic(err)
				}

				logger.Error("panic recovered",
					"error", err,
					"path", r.URL.Path,
					"method", r.Method,
					"committed", tw.committed,
					"stack", string(debug.Stack()),
				)

				if !tw.committed {
					httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
				}
			}()

			next.ServeHTTP(tw, r)
		})
	}
}
