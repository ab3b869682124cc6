package httputil

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the body of every error reply. The terminal client
// decodes it back into an APIError.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

var encodeFailure = []byte(`{"error":"failed to encode response"}`)

// RespondJSON writes data as a JSON body. Encoding happens before any header
// is written, so a failure still yields a well-formed 500.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		status, payload = http.StatusInternalServerError, encodeFailure
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(payload)
}

// RespondError writes {"error": message}
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorResponse{Error: message})
}

// RespondErrorWithDetails writes {"error": message, "details": details}
func RespondErrorWithDetails(w http.ResponseWriter, status int, message, details string) {
	RespondJSON(w, status, ErrorResponse{Error: message, Details: details})
}
