package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTVerifier(t *testing.T) {
	ctx := context.Background()
	v := NewJWTVerifier("secret", "projecthub")

	t.Run("round trip", func(t *testing.T) {
		token, err := v.IssueToken("uid-1", "a@example.com", "Ann", time.Minute)
		require.NoError(t, err)

		claims, err := v.Verify(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, &Claims{UID: "uid-1", Email: "a@example.com", Name: "Ann", EmailVerified: true}, claims)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := v.IssueToken("uid-1", "", "", -time.Minute)
		require.NoError(t, err)

		_, err = v.Verify(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := NewJWTVerifier("other", "projecthub").IssueToken("uid-1", "", "", time.Minute)
		require.NoError(t, err)

		_, err = v.Verify(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		token, err := NewJWTVerifier("secret", "someone-else").IssueToken("uid-1", "", "", time.Minute)
		require.NoError(t, err)

		_, err = v.Verify(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing subject", func(t *testing.T) {
		token, err := v.IssueToken("", "", "", time.Minute)
		require.NoError(t, err)

		_, err = v.Verify(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects other algorithms", func(t *testing.T) {
		raw := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
			Subject:   "uid-1",
			Issuer:    "projecthub",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		})
		token, err := raw.SignedString([]byte("secret"))
		require.NoError(t, err)

		_, err = v.Verify(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
