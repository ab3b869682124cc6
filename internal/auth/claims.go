// Package auth verifies Supabase access tokens for the hosted conversation API.
package auth

import "github.com/golang-jwt/jwt/v5"

// Claims is the part of a Supabase access token the server reads.
// See: https://supabase.com/docs/guides/auth/jwts
type Claims struct {
	jwt.RegisteredClaims
	Email       string `json:"email"`
	Role        string `json:"role"` // "authenticated" for signed-in users
	IsAnonymous bool   `json:"is_anonymous"`
}

// UserID is the owner of hosted conversations: the token subject
func (c *Claims) UserID() string {
	return c.Subject
}

// Verifier turns a bearer token into the caller's claims.
// Every rejection is domain.ErrUnauthorized.
type Verifier interface {
	Verify(token string) (*Claims, error)
	Close() error
}
