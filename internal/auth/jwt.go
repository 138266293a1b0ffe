// Package auth implements credential handling for the catalog API: input
// normalization and validation, password hashing, bearer token issuance and
// verification, and the request gate that protects identity-dependent routes.
//
// AUTHENTICATION FLOW OVERVIEW:
//  1. Client POSTs credentials to /auth/register or /auth/login
//  2. The auth service validates them, hashes or verifies the password, and
//     issues a signed JWT that is returned in the JSON response body
//  3. The client sends it back as "Authorization: Bearer <token>"
//  4. RequireAuth verifies the token and puts the identity in the request context
//
// JWT STRUCTURE (three base64-encoded parts separated by dots):
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header: {"alg":"HS256","typ":"JWT"}
//	- Payload: {"sub":"<user id>","name":"<display name>","exp":...,"iat":...,"iss":"module-catalog","jti":"..."}
//	- Signature: HMAC-SHA256(header+"."+payload, secretKey)
//
// Tokens are never stored server-side and cannot be revoked; they simply stop
// verifying once exp has passed.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/xid"
)

const (
	// TokenTTL is the lifetime of every issued token.
	TokenTTL = 24 * time.Hour

	tokenIssuer = "module-catalog"
)

// ErrInvalidToken is returned by Verify for every kind of failure: bad
// signature, malformed input, expired, wrong issuer. Callers cannot tell them
// apart, and neither can clients.
var ErrInvalidToken = errors.New("auth: invalid token")

// Identity is what a verified token proves about its bearer.
type Identity struct {
	UserID string
	Name   string
}

// TokenService handles JWT creation and validation.
//
// It holds the HMAC secret used to sign and verify tokens. The secret is
// passed in explicitly (from config), never read from the environment here.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// TokenOption customizes a TokenService.
type TokenOption func(*TokenService)

// WithTTL overrides the token lifetime.
func WithTTL(d time.Duration) TokenOption {
	return func(s *TokenService) { s.ttl = d }
}

// WithClock overrides the time source used when issuing tokens. Verification
// always uses the real clock, so a skewed issuing clock produces tokens that
// are already expired (or not yet valid) when checked.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string, opts ...TokenOption) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	s := &TokenService{
		secret: []byte(secret),
		ttl:    TokenTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// claims is the JWT payload: the registered claims plus the display name,
// which comment creation needs without a store round-trip.
type claims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Issue creates and signs a token for the given user.
func (s *TokenService) Issue(userID, name string) (string, error) {
	if userID == "" {
		return "", errors.New("auth: cannot issue a token without a user ID")
	}
	now := s.now()

	c := claims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			Issuer:    tokenIssuer,
			ID:        xid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Verify parses and verifies a token string and returns the identity it
// carries.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - Signature is valid (wasn't tampered with)
//   - Algorithm is HS256 (prevents "alg: none" and algorithm confusion)
//   - Token is not expired and has an expiry at all
//   - Issuer matches
func (s *TokenService) Verify(tokenStr string) (Identity, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid || c.Subject == "" {
		return Identity{}, ErrInvalidToken
	}

	return Identity{UserID: c.Subject, Name: c.Name}, nil
}
