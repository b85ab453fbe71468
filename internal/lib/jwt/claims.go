package jwt

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the subject a token is issued for.
type Identity struct {
	UserUID string
	Name    string
	Email   string
}

// CustomClaims is the token payload. The JSON names match what browser clients
// of the original API already decode.
type CustomClaims struct {
	UserUID string `json:"userId"`
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken signs an HS256 token for the identity expiring after the configured TTL.
func (j *MakerImpl) GenerateToken(identity Identity) (string, error) {
	const op = "jwt.GenerateToken"
	if identity.UserUID == "" {
		return "", fmt.Errorf("%s: empty user id", op)
	}

	now := j.now()
	claims := CustomClaims{
		UserUID: identity.UserUID,
		Name:    identity.Name,
		Email:   identity.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserUID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.tokenTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secretKey)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return signed, nil
}

// ParseToken verifies signature and expiry. Failures are reported as ErrTokenExpired
// or ErrTokenInvalid so callers can tell them apart for metrics while rejecting both.
func (j *MakerImpl) ParseToken(tokenStr string) (*CustomClaims, error) {
	const op = "jwt.ParseToken"

	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(t *jwt.Token) (any, error) {
		// block alg confusion
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return j.secretKey, nil
	}, jwt.WithTimeFunc(j.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}
		return nil, fmt.Errorf("%s: %w: %v", op, ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid || claims.UserUID == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrTokenInvalid)
	}
	return claims, nil
}
