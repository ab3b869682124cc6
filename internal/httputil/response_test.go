package httputil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, http.StatusInternalServerError, "Failed to generate report")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"Failed to generate report"}`, rec.Body.String())
}

func TestRespondErrorWithDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondErrorWithDetails(rec, http.StatusInternalServerError, "Failed to compare roles", "timeout")

	assert.JSONEq(t, `{"error":"Failed to compare roles","details":"timeout"}`, rec.Body.String())
}

func TestRespondJSON_EncodingFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondJSON(rec, http.StatusOK, map[string]any{"bad": make(chan int)})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"failed to encode response"}`, rec.Body.String())
}

func TestParseJSON(t *testing.T) {
	var dest struct {
		Role string `json:"role"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"role":"产品经理","extra":1}`))
	require.NoError(t, ParseJSON(httptest.NewRecorder(), req, &dest))
	assert.Equal(t, "产品经理", dest.Role)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"role":`))
	err := ParseJSON(httptest.NewRecorder(), req, &dest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}

func TestUserIDContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, UserID(req))

	req = WithUser(req, "user-1")
	assert.Equal(t, "user-1", UserID(req))
}
