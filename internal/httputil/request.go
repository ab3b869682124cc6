package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// maxBodyBytes bounds request bodies; a full transcript fits comfortably
const maxBodyBytes = 4 << 20

// ParseJSON decodes JSON from the request body into the given destination.
// Unknown fields are ignored: clients send whole Report and Message objects
// and the server reads only what it needs.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	return nil
}
