// Package token issues and verifies the signed bearer tokens used for
// stateless authentication. Tokens are HS256 JWTs carrying the principal
// claims; there is no revocation store and no clock-skew leniency, so a
// token is valid exactly until its expiry.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kizofa/kizofa/internal/model"
)

// Verification failure kinds. Kept distinct for logs and metrics; the
// request layer surfaces all of them as a uniform unauthorized response.
var (
	ErrMalformed        = errors.New("token is malformed")
	ErrInvalidSignature = errors.New("token signature is invalid")
	ErrExpired          = errors.New("token is expired")
)

// Claims are the JWT claims carried by an issued token.
type Claims struct {
	jwt.RegisteredClaims
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
}

// Issuer creates and verifies signed tokens with a fixed time-to-live.
// The signing secret is immutable after construction.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

// NewIssuer creates an Issuer signing with the given secret.
func NewIssuer(secret []byte, ttl time.Duration) *Issuer {
	return &Issuer{secret: secret, ttl: ttl}
}

// TTL returns the configured token time-to-live.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// Issue signs a token for the given principal, expiring ttl from now.
func (i *Issuer) Issue(p model.Principal) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		Email: p.Email,
		Role:  p.Role,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// Verify decodes the token, checks the signature and expiry, and returns
// the principal claims. Failures are one of ErrMalformed,
// ErrInvalidSignature, or ErrExpired.
func (i *Issuer) Verify(raw string) (*model.Principal, error) {
	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrMalformed
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		default:
			// Unexpected verification failure (wrong algorithm, missing
			// claims) - treat as a signature problem, never as valid.
			return nil, ErrInvalidSignature
		}
	}

	if !parsed.Valid {
		return nil, ErrInvalidSignature
	}

	if claims.Subject == "" || !claims.Role.IsValid() {
		return nil, ErrMalformed
	}

	return &model.Principal{
		ID:    claims.Subject,
		Email: claims.Email,
		Role:  claims.Role,
	}, nil
}
