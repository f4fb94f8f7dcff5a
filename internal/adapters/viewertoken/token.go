package viewertoken

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"eventcircle/internal/domain"
)

const issuer = "eventcircle"

type viewerClaims struct {
	jwt.RegisteredClaims
}

// Tokens issues and verifies viewer tokens.
type Tokens struct {
	secret []byte
}

// NewJWT returns an issuer/verifier pair that signs viewer scope ids with HS256.
// The token carries no identity of its own; it only pins a client to its scope.
func NewJWT(secret string) *Tokens {
	return &Tokens{secret: []byte(secret)}
}

var (
	_ domain.ViewerTokenIssuer   = (*Tokens)(nil)
	_ domain.ViewerTokenVerifier = (*Tokens)(nil)
)

func (t *Tokens) Issue(scope string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := viewerClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   scope,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

func (t *Tokens) Verify(tokenString string) (string, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &viewerClaims{}, func(tok *jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(issuer))
	if err != nil {
		return "", fmt.Errorf("verify viewer token: %w", err)
	}
	claims, ok := parsed.Claims.(*viewerClaims)
	if !ok || claims.Subject == "" {
		return "", errors.New("viewer token has no scope")
	}
	return claims.Subject, nil
}
