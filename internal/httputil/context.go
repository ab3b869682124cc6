package httputil

import (
	"context"
	"net/http"
)

type userKey struct{}

// WithUser tags the request with the signed-in user that owns hosted
// conversations
func WithUser(r *http.Request, userID string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), userKey{}, userID))
}

// UserID is the signed-in user, or "" for anonymous generation requests
func UserID(r *http.Request) string {
	userID, _ := r.Context().Value(userKey{}).(string)
	return userID
}
