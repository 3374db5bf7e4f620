package auth

import (
	"context"
	"errors"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims are the identity fields every verifier extracts from a bearer token.
type Claims struct {
	UID   string
	Email string
	Name  string
	// EmailVerified reports whether the issuer vouches for Email.
	EmailVerified bool
}

// TokenVerifier validates a bearer token and returns its claims.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Claims, error)
}
