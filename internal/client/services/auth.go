// Package services holds the CLI use cases on top of the API client and the
// local session store.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/perfumekeeper/internal/client/client"
	"github.com/dmitrijs2005/perfumekeeper/internal/client/models"
	"github.com/dmitrijs2005/perfumekeeper/internal/client/repositories/session"
)

const (
	keyAccessToken = "access_token"
	keyEmail       = "email"
)

var ErrNotLoggedIn = errors.New("not logged in")

type AuthService struct {
	api      client.Client
	sessions session.Repository
}

func NewAuthService(api client.Client, sessions session.Repository) *AuthService {
	return &AuthService{api: api, sessions: sessions}
}

func (s *AuthService) Register(ctx context.Context, name, email, password string) (*models.Account, error) {
	return s.api.Register(ctx, strings.TrimSpace(name), strings.TrimSpace(email), password)
}

// Login replaces any stored session with the new token.
func (s *AuthService) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	token, err := s.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if err := s.sessions.Set(ctx, keyAccessToken, []byte(token)); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	if err := s.sessions.Set(ctx, keyEmail, []byte(email)); err != nil {
		return fmt.Errorf("store email: %w", err)
	}
	return nil
}

func (s *AuthService) Logout(ctx context.Context) error {
	return s.sessions.Clear(ctx)
}

// Token returns the stored access token or ErrNotLoggedIn.
func (s *AuthService) Token(ctx context.Context) (string, error) {
	v, err := s.sessions.Get(ctx, keyAccessToken)
	if err != nil {
		return "", err
	}
	if len(v) == 0 {
		return "", ErrNotLoggedIn
	}
	return string(v), nil
}

// CurrentEmail is "" when nobody is logged in.
func (s *AuthService) CurrentEmail(ctx context.Context) (string, error) {
	v, err := s.sessions.Get(ctx, keyEmail)
	if err != nil {
		return "", err
	}
	return string(v), nil
}
