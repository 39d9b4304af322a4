// Package auth provides JWT token handling, password hashing, and the
// authentication middleware for the messaging API.
//
// AUTHENTICATION FLOW:
// 1. Client POSTs credentials to /login (or a full profile to /register)
// 2. Server verifies against the stored bcrypt hash, issues a signed JWT
//    whose subject is the username
// 3. Client sends the token as "Authorization: Bearer <jwt>" on every
//    protected request
// 4. Middleware validates the signature and puts the username in the request
//    context; handlers and services treat that as the caller's identity
//
// The token is stateless — no session table, no revocation list. Once issued
// it stays valid until it expires (if a TTL is configured) or the signing
// secret changes.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "messagely"

// TokenService handles JWT creation and validation.
//
// It holds the HMAC secret key used to sign and verify tokens. The same
// secret must be used for both operations — keep it safe.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService with the given secret and token
// lifetime. A ttl of zero issues non-expiring tokens: this service has no
// refresh flow, so expiry is a deployment choice (TOKEN_TTL), not a default.
//
// The secret should be at least 32 bytes of random data in production.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// claims is the JWT payload. We use the registered "sub" (Subject) claim to
// carry the username — the only identity fact the token asserts.
type claims struct {
	jwt.RegisteredClaims
}

// Generate creates and signs a new JWT for the given username.
//
// Signing algorithm: HS256 (HMAC-SHA256) — symmetric, same key signs and
// verifies, which is all a single-server deployment needs.
func (s *TokenService) Generate(username string) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  username,
			IssuedAt: jwt.NewNumericDate(now),
			Issuer:   issuer,
		},
	}
	// Only a zero ttl means "no expiry". A negative ttl still sets the
	// claim, so such tokens come out already expired instead of immortal.
	if s.ttl != 0 {
		c.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a JWT string.
// Returns the username (the "sub" claim) if the token is valid.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - Signature is valid (wasn't tampered with)
//   - Token is not expired, when an expiry is present
//   - Issuer matches "messagely" (prevents tokens from other apps)
//   - Algorithm is HS256 (prevents algorithm confusion attacks — without
//     WithValidMethods an attacker could present an alg=none token)
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("auth: token expired")
		}
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: invalid token claims")
	}

	if c.Subject == "" {
		return "", fmt.Errorf("auth: token has no subject")
	}

	return c.Subject, nil
}
