package auth

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenVerifier verifies identity-provider bearer tokens and returns
// the account id from the subject claim.
type TokenVerifier interface {
	Verify(tokenString string) (uuid.UUID, error)
}

// JWTVerifier verifies ES256 tokens minted by the external identity
// provider. Provider tokens are always personal user tokens; the org
// context is derived separately from membership rows.
type JWTVerifier struct {
	publicKey *ecdsa.PublicKey
}

// NewJWTVerifierFromPEM creates a verifier from the identity provider's
// PEM-encoded ECDSA public key.
func NewJWTVerifierFromPEM(publicKeyPEM string) (*JWTVerifier, error) {
	if publicKeyPEM == "" {
		return nil, errors.New("token verification public key not provided")
	}

	publicKey, err := jwt.ParseECPublicKeyFromPEM([]byte(publicKeyPEM))
	if err != nil {
		return nil, err
	}

	return &JWTVerifier{publicKey: publicKey}, nil
}

// Verify checks the token signature and expiry and returns the subject
// account id. Any failure, including a malformed token, is a plain
// error - callers fall back to the API-key path on error.
func (v *JWTVerifier) Verify(tokenString string) (uuid.UUID, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodES256 {
			return nil, errors.New("invalid signing method")
		}
		return v.publicKey, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return uuid.Nil, err
	}

	if !parsed.Valid {
		return uuid.Nil, errors.New("token invalid")
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return uuid.Nil, errors.New("invalid claims")
	}

	accountID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid subject claim: %w", err)
	}

	return accountID, nil
}

// IssueToken creates a signed JWT for the given account. Used by tests
// and local development; production tokens come from the identity
// provider. signingKeyPEM is the PEM-encoded ECDSA private key.
func IssueToken(signingKeyPEM string, accountID uuid.UUID, ttl time.Duration) (string, error) {
	signingKey, err := jwt.ParseECPrivateKeyFromPEM([]byte(signingKeyPEM))
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := &jwt.RegisteredClaims{
		Subject:   accountID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		Issuer:    "recoup-identity",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	return token.SignedString(signingKey)
}
