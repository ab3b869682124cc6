package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"deepmirror/internal/auth"
	"deepmirror/internal/domain"
	"deepmirror/internal/httputil"
)

type stubVerifier struct {
	valid string
}

func (s *stubVerifier) Verify(token string) (*auth.Claims, error) {
	if token != s.valid {
		return nil, domain.ErrUnauthorized
	}
	claims := &auth.Claims{Role: "authenticated"}
	claims.Subject = "user-1"
	return claims, nil
}

func (s *stubVerifier) Close() error { return nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// echoUser writes the resolved user ID, or "anonymous"
var echoUser = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	id := httputil.UserID(r)
	if id == "" {
		id = "anonymous"
	}
	io.WriteString(w, id)
})

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"no header", "", http.StatusOK, "anonymous"},
		{"valid token", "Bearer good", http.StatusOK, "user-1"},
		{"invalid token", "Bearer bad", http.StatusUnauthorized, `{"error":"Unauthorized"}`},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, `{"error":"Invalid authorization header"}`},
	}

	h := AuthMiddleware(&stubVerifier{valid: "good"}, testLogger())(echoUser)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/conversations", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestAuthMiddleware_NilVerifier(t *testing.T) {
	h := AuthMiddleware(nil, testLogger())(echoUser)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer anything")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "anonymous", rec.Body.String())
}

func TestRequireUser(t *testing.T) {
	h := RequireUser(echoUser)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httputil.WithUser(httptest.NewRequest(http.MethodGet, "/", nil), "user-1"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", rec.Body.String())
}

func TestRecovery(t *testing.T) {
	h := Recovery(testLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}

func TestRecovery_AfterStreamStarted(t *testing.T) {
	h := Recovery(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("event: text\ndata: {}\n\n"))
		http.NewResponseController(w).Flush()
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, rec.Flushed)
	assert.Equal(t, "event: text\ndata: {}\n\n", rec.Body.String())
}
