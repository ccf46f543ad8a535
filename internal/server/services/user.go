// Package services contains server-side business logic. This file implements
// UserService, which registers accounts, logs them in and resolves bearer
// tokens back to accounts.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/perfumekeeper/internal/common"
	"github.com/dmitrijs2005/perfumekeeper/internal/dbx"
	"github.com/dmitrijs2005/perfumekeeper/internal/logging"
	"github.com/dmitrijs2005/perfumekeeper/internal/server/auth"
	"github.com/dmitrijs2005/perfumekeeper/internal/server/config"
	"github.com/dmitrijs2005/perfumekeeper/internal/server/models"
	"github.com/dmitrijs2005/perfumekeeper/internal/server/repositories/repomanager"
)

// Reasons reported by Authenticate.
const (
	ReasonExpired        = "expired"
	ReasonMalformed      = "malformed"
	ReasonMissingSubject = "missing subject"
	ReasonUserNotFound   = "user not found"
	ReasonMissingToken   = "missing token"
)

// AuthError is returned by Authenticate. It always matches
// common.ErrUnauthenticated and unwraps to the underlying cause.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return "unauthenticated: " + e.Reason
	}
	return fmt.Sprintf("unauthenticated: %s: %v", e.Reason, e.Err)
}

func (e *AuthError) Is(target error) bool { return target == common.ErrUnauthenticated }

func (e *AuthError) Unwrap() error { return e.Err }

// UserService provides authentication-related operations:
// - Register: create accounts
// - Login: verify credentials and mint an access token
// - Authenticate: turn a bearer token into an active account
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	codec       *auth.TokenCodec
	logger      logging.Logger
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, l logging.Logger) *UserService {
	codec := auth.NewTokenCodec(auth.TokenSettings{
		SecretKey:  cfg.SecretKey,
		Algorithm:  cfg.SigningAlgorithm,
		DefaultTTL: cfg.AccessTokenValidityDuration,
	})
	return &UserService{
		db:          db,
		repomanager: m,
		codec:       codec,
		logger:      l.With("module", "user_service"),
	}
}

// Register creates a new account. A taken email yields
// common.ErrDuplicateIdentity whether it is caught by the lookup or by the
// unique constraint on insert.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", common.ErrValidation)
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if strings.TrimSpace(password) == "" {
		return nil, fmt.Errorf("%w: password is required", common.ErrValidation)
	}

	_, err := s.repomanager.Users(s.db).GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, common.ErrDuplicateIdentity
	case !errors.Is(err, common.ErrorNotFound):
		return nil, fmt.Errorf("error looking up user: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	var created *models.User
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		u, err := s.repomanager.Users(tx).Create(ctx, &models.User{Name: name, Email: email, PasswordHash: hash})
		if err != nil {
			return err
		}
		created = u
		return nil
	})
	if err != nil {
		switch {
		case dbx.IsUniqueViolation(err):
			s.logger.Info(ctx, "registration lost race on unique email", "constraint", dbx.ConstraintName(err))
			return nil, common.ErrDuplicateIdentity
		case dbx.IsIntegrityViolation(err):
			return nil, fmt.Errorf("%w: %s", common.ErrIntegrityViolation, dbx.ConstraintName(err))
		case dbx.IsDataException(err):
			return nil, fmt.Errorf("%w: %s", common.ErrValidation, dbx.ErrorMessage(err))
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", created.ID)
	return created, nil
}

// Login verifies the password and returns a signed access token whose
// subject is the account id.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.repomanager.Users(s.db).GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrIdentityNotFound
		}
		return "", fmt.Errorf("error looking up user: %w", err)
	}

	if !auth.PasswordMatches(password, user.PasswordHash) {
		return "", common.ErrInvalidCredentials
	}

	token, err := s.codec.IssueDefault(strconv.FormatInt(user.ID, 10))
	if err != nil {
		s.logger.Error(ctx, "token issue failed", "error", err)
		return "", fmt.Errorf("%w: %w", common.ErrTokenIssue, err)
	}
	return token, nil
}

// Authenticate resolves a bearer token to the active account it names.
// Every failure caused by the token or the account is an *AuthError;
// storage failures are returned as is.
func (s *UserService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, &AuthError{Reason: ReasonMissingToken}
	}

	claims, err := s.codec.Verify(token)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return nil, &AuthError{Reason: ReasonExpired, Err: err}
		}
		return nil, &AuthError{Reason: ReasonMalformed, Err: err}
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return nil, &AuthError{Reason: ReasonMalformed, Err: err}
	}
	if sub == "" {
		return nil, &AuthError{Reason: ReasonMissingSubject}
	}
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return nil, &AuthError{Reason: ReasonMalformed, Err: err}
	}

	user, err := s.repomanager.Users(s.db).GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, &AuthError{Reason: ReasonUserNotFound, Err: err}
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	if !user.IsActive {
		return nil, &AuthError{Reason: ReasonUserNotFound}
	}
	return user, nil
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%w: invalid email address", common.ErrValidation)
	}
	return nil
}
