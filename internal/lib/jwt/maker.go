// Package jwt issues and verifies the signed, time-limited identity tokens
// handed to clients on registration and login.
package jwt

import (
	"errors"
	"time"
)

var (
	// ErrTokenExpired is returned for a well-formed, correctly signed token past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid is returned for malformed tokens and signature mismatches.
	ErrTokenInvalid = errors.New("token invalid")
)

// Maker describes token issuance and verification.
type Maker interface {
	// GenerateToken signs a token for the identity; name and email may be empty.
	GenerateToken(identity Identity) (string, error)
	// ParseToken verifies the token and returns its claims.
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl signs tokens with a process-wide HMAC secret.
type MakerImpl struct {
	secretKey []byte
	tokenTTL  time.Duration
	now       func() time.Time
}

// NewJWTMaker returns a Maker signing with secretKey and issuing tokens valid for ttl.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: []byte(secretKey),
		tokenTTL:  ttl,
		now:       time.Now,
	}
}

// TTL returns the lifetime of issued tokens.
func (j *MakerImpl) TTL() time.Duration {
	return j.tokenTTL
}
