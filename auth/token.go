package auth

import (
	"context"
	"fmt"
	"time"

	"org-relay/domain"
	"org-relay/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/lo"
)

// Claims is the session token issued by the identity provider.
type Claims struct {
	OrgID           string `json:"org_id,omitempty"`
	AuthorizedParty string `json:"azp,omitempty"`
	jwt.RegisteredClaims
}

// JWTVerifier validates HS256 session tokens with a shared secret.
type JWTVerifier struct {
	key               []byte
	issuer            string
	authorizedParties []string
}

// NewJWTVerifier returns a verifier for tokens signed with key.
// An empty issuer or authorizedParties disables the corresponding check.
func NewJWTVerifier(key []byte, issuer string, authorizedParties []string) *JWTVerifier {
	return &JWTVerifier{key: key, issuer: issuer, authorizedParties: authorizedParties}
}

// Verify parses and validates the signature, expiration, issuer and authorized party of a token.
func (v *JWTVerifier) Verify(_ context.Context, tokenString string) (domain.VerifiedToken, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		options = append(options, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return v.key, nil
	}, options...)
	if err != nil {
		return domain.VerifiedToken{}, fmt.Errorf("%w: %v", errors.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return domain.VerifiedToken{}, errors.ErrInvalidToken
	}
	if claims.Subject == "" {
		return domain.VerifiedToken{}, fmt.Errorf("%w: empty subject", errors.ErrInvalidToken)
	}
	if len(v.authorizedParties) > 0 && !lo.Contains(v.authorizedParties, claims.AuthorizedParty) {
		return domain.VerifiedToken{}, fmt.Errorf("%w: unauthorized party %q", errors.ErrInvalidToken, claims.AuthorizedParty)
	}

	return domain.VerifiedToken{
		SubjectID:      claims.Subject,
		OrganizationID: claims.OrgID,
		ExpiresAt:      claims.ExpiresAt.Time,
	}, nil
}

// GenerateToken creates a signed session token. Used by relayctl and tests.
func GenerateToken(key []byte, issuer, subjectID, orgID, authorizedParty string,
	ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		OrgID:           orgID,
		AuthorizedParty: authorizedParty,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(key)
}
