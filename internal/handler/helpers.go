package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"deepmirror/internal/domain"
	"deepmirror/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, "Resource not found")
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, "Forbidden")
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// handleGenerationError answers a failed generation endpoint. Validation
// errors keep their message; anything else becomes a 500 carrying message,
// plus the underlying error as details when withDetails is set.
func handleGenerationError(w http.ResponseWriter, logger *slog.Logger, err error, message string, withDetails bool) {
	if errors.Is(err, domain.ErrValidation) {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	logger.Error(message, "error", err)
	if withDetails {
		httputil.RespondErrorWithDetails(w, http.StatusInternalServerError, message, err.Error())
		return
	}
	httputil.RespondError(w, http.StatusInternalServerError, message)
}

// PathParam extracts a UUID path parameter, writing a 400 if it is malformed
func PathParam(w http.ResponseWriter, r *http.Request, name, label string) (string, bool) {
	value := r.PathValue(name)
	if _, err := uuid.Parse(value); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid "+label)
		return "", false
	}
	return value, true
}
