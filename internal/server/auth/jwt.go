// Package auth issues and verifies signed access tokens and hashes account
// passwords.
package auth

import (
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/perfumekeeper/internal/common"
)

// Registered claim names written by Issue.
const (
	ClaimSubject   = "sub"
	ClaimIssuedAt  = "iat"
	ClaimExpiresAt = "exp"
)

// TokenSettings is the process-wide signing configuration. It is built once
// from the server config; rotating SecretKey invalidates every outstanding
// token.
type TokenSettings struct {
	SecretKey  string
	Algorithm  string
	DefaultTTL time.Duration
}

// TokenCodec mints and verifies HMAC-signed JWTs.
type TokenCodec struct {
	secret     []byte
	algorithm  string
	defaultTTL time.Duration
	now        func() time.Time
}

func NewTokenCodec(s TokenSettings) *TokenCodec {
	return &TokenCodec{
		secret:     []byte(s.SecretKey),
		algorithm:  s.Algorithm,
		defaultTTL: s.DefaultTTL,
		now:        time.Now,
	}
}

func (c *TokenCodec) method() (*jwt.SigningMethodHMAC, error) {
	if len(c.secret) == 0 {
		return nil, fmt.Errorf("%w: signing secret is not set", common.ErrConfiguration)
	}
	m, ok := jwt.GetSigningMethod(c.algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported signing algorithm %q", common.ErrConfiguration, c.algorithm)
	}
	return m, nil
}

// Issue signs a token for subject valid for ttl. Extra claims are copied in
// first so they can never override sub, iat or exp.
func (c *TokenCodec) Issue(subject string, extra map[string]any, ttl time.Duration) (string, error) {
	m, err := c.method()
	if err != nil {
		return "", err
	}
	if subject == "" {
		return "", fmt.Errorf("%w: token subject is required", common.ErrValidation)
	}

	now := c.now()
	claims := jwt.MapClaims{}
	maps.Copy(claims, extra)
	claims[ClaimSubject] = subject
	claims[ClaimIssuedAt] = now.Unix()
	claims[ClaimExpiresAt] = now.Add(ttl).Unix()

	tokenString, err := jwt.NewWithClaims(m, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrTokenIssue, err)
	}

	return tokenString, nil
}

// IssueDefault signs a token for subject with the configured default lifetime.
func (c *TokenCodec) IssueDefault(subject string) (string, error) {
	return c.Issue(subject, nil, c.defaultTTL)
}

// Verify checks signature, algorithm and lifetime and returns the claims.
// A token is expired once the current second reaches exp. Every failure other
// than expiry is reported as common.ErrTokenInvalid; the library error is
// kept in the chain for diagnostics.
func (c *TokenCodec) Verify(tokenString string) (jwt.MapClaims, error) {
	m, err := c.method()
	if err != nil {
		return nil, err
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{m.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", common.ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %w", common.ErrTokenInvalid, err)
	}

	if !token.Valid {
		return nil, common.ErrTokenInvalid
	}
	if _, ok := claims[ClaimIssuedAt]; !ok {
		return nil, fmt.Errorf("%w: missing %q claim", common.ErrTokenInvalid, ClaimIssuedAt)
	}

	return claims, nil
}
