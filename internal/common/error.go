// Package common defines shared constants and sentinel errors used across
// client and server layers of perfumekeeper. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Input validation: caller's fault.
	ErrValidation = errors.New("validation error")

	// Constraint conflicts reported by the database.
	ErrDuplicateIdentity  = errors.New("user already exists")
	ErrIntegrityViolation = errors.New("integrity violation")

	// Authentication errors.
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrIdentityNotFound   = errors.New("user not found")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenIssue   = errors.New("token issue failed")

	// Startup misconfiguration (missing secret, unsupported algorithm).
	ErrConfiguration = errors.New("configuration error")
)
