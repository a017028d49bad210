package auth

import (
	"context"
	"testing"
	"time"

	"org-relay/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("relay-test-secret-key-with-enough-entropy")

func TestJWTVerifier_Verify(t *testing.T) {
	ctx := context.Background()

	t.Run("should extract subject, organization and expiry from a valid token", func(t *testing.T) {
		req := require.New(t)
		verifier := NewJWTVerifier(testKey, "relay", []string{"http://localhost:5173"})
		token, err := GenerateToken(testKey, "relay", "u1", "org1", "http://localhost:5173", time.Hour)
		req.NoError(err)

		verified, err := verifier.Verify(ctx, token)

		req.NoError(err)
		req.Equal("u1", verified.SubjectID)
		req.Equal("org1", verified.OrganizationID)
		req.WithinDuration(time.Now().Add(time.Hour), verified.ExpiresAt, 5*time.Second)
	})

	t.Run("should accept a personal account without organization", func(t *testing.T) {
		req := require.New(t)
		verifier := NewJWTVerifier(testKey, "", nil)
		token, err := GenerateToken(testKey, "", "u1", "", "", time.Hour)
		req.NoError(err)

		verified, err := verifier.Verify(ctx, token)

		req.NoError(err)
		req.Empty(verified.OrganizationID)
	})

	t.Run("should reject a token signed with another key", func(t *testing.T) {
		req := require.New(t)
		verifier := NewJWTVerifier(testKey, "", nil)
		token, err := GenerateToken([]byte("another-secret"), "", "u1", "org1", "", time.Hour)
		req.NoError(err)

		_, err = verifier.Verify(ctx, token)

		req.ErrorIs(err, errors.ErrInvalidToken)
	})

	t.Run("should reject an expired token", func(t *testing.T) {
		req := require.New(t)
		verifier := NewJWTVerifier(testKey, "", nil)
		token, err := GenerateToken(testKey, "", "u1", "org1", "", -time.Minute)
		req.NoError(err)

		_, err = verifier.Verify(ctx, token)

		req.ErrorIs(err, errors.ErrInvalidToken)
	})

	t.Run("should reject a token from an unexpected issuer", func(t *testing.T) {
		req := require.New(t)
		verifier := NewJWTVerifier(testKey, "relay", nil)
		token, err := GenerateToken(testKey, "someone-else", "u1", "org1", "", time.Hour)
		req.NoError(err)

		_, err = verifier.Verify(ctx, token)

		req.ErrorIs(err, errors.ErrInvalidToken)
	})

	t.Run("should reject an unauthorized party", func(t *testing.T) {
		req := require.New(t)
		verifier := NewJWTVerifier(testKey, "", []string{"http://localhost:5173"})
		token, err := GenerateToken(testKey, "", "u1", "org1", "http://evil.example", time.Hour)
		req.NoError(err)

		_, err = verifier.Verify(ctx, token)

		req.ErrorIs(err, errors.ErrInvalidToken)
	})

	t.Run("should reject a token without subject", func(t *testing.T) {
		req := require.New(t)
		verifier := NewJWTVerifier(testKey, "", nil)
		token, err := GenerateToken(testKey, "", "", "org1", "", time.Hour)
		req.NoError(err)

		_, err = verifier.Verify(ctx, token)

		req.ErrorIs(err, errors.ErrInvalidToken)
	})

	t.Run("should reject a token signed with another algorithm", func(t *testing.T) {
		req := require.New(t)
		verifier := NewJWTVerifier(testKey, "", nil)
		claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(testKey)
		req.NoError(err)

		_, err = verifier.Verify(ctx, token)

		req.ErrorIs(err, errors.ErrInvalidToken)
	})

	t.Run("should reject garbage", func(t *testing.T) {
		req := require.New(t)
		verifier := NewJWTVerifier(testKey, "", nil)

		_, err := verifier.Verify(ctx, "invalid-token-string")

		req.ErrorIs(err, errors.ErrInvalidToken)
	})
}
