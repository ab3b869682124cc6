package auth

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deepmirror/internal/domain"
)

func testVerifier(t *testing.T) (*JWKSVerifier, *ecdsa.PrivateKey) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	kf := func(*jwt.Token) (interface{}, error) { return &key.PublicKey, nil }
	return newVerifier(kf, nil, slog.New(slog.NewTextHandler(io.Discard, nil))), key
}

func sign(t *testing.T, key *ecdsa.PrivateKey, claims Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodES256, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func validClaims() Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "3f1c2a4e-0000-4000-8000-000000000001",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email: "user@example.com",
		Role:  "authenticated",
	}
}

func TestVerifyToken(t *testing.T) {
	v, key := testVerifier(t)

	claims, err := v.Verify(sign(t, key, validClaims()))
	require.NoError(t, err)
	assert.Equal(t, "3f1c2a4e-0000-4000-8000-000000000001", claims.UserID())
	assert.Equal(t, "user@example.com", claims.Email)
}

func TestVerifyToken_Rejects(t *testing.T) {
	v, key := testVerifier(t)
	otherKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token func() string
	}{
		{"garbage", func() string { return "not-a-jwt" }},
		{"expired", func() string {
			c := validClaims()
			c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
			return sign(t, key, c)
		}},
		{"no expiry", func() string {
			c := validClaims()
			c.ExpiresAt = nil
			return sign(t, key, c)
		}},
		{"anonymous role", func() string {
			c := validClaims()
			c.Role = "anon"
			return sign(t, key, c)
		}},
		{"missing subject", func() string {
			c := validClaims()
			c.Subject = ""
			return sign(t, key, c)
		}},
		{"wrong key", func() string { return sign(t, otherKey, validClaims()) }},
		{"hmac algorithm", func() string {
			s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims()).SignedString([]byte("secret"))
			require.NoError(t, err)
			return s
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(tt.token())
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
		})
	}
}

func TestNewVerifier_EmptyURL(t *testing.T) {
	_, err := NewVerifier("", slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
}
