package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/perfumekeeper/internal/client/client"
	"github.com/dmitrijs2005/perfumekeeper/internal/client/models"
)

type PerfumeService struct {
	api  client.Client
	auth *AuthService
}

func NewPerfumeService(api client.Client, auth *AuthService) *PerfumeService {
	return &PerfumeService{api: api, auth: auth}
}

func (s *PerfumeService) List(ctx context.Context) ([]models.Perfume, error) {
	token, err := s.auth.Token(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.api.ListPerfumes(ctx, token)
	return items, s.checkSession(ctx, err)
}

func (s *PerfumeService) Add(ctx context.Context, d models.PerfumeDraft) (*models.Perfume, error) {
	token, err := s.auth.Token(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.api.CreatePerfume(ctx, token, d)
	return p, s.checkSession(ctx, err)
}

func (s *PerfumeService) Update(ctx context.Context, id int64, c models.PerfumeChanges) (*models.Perfume, error) {
	token, err := s.auth.Token(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.api.UpdatePerfume(ctx, token, id, c)
	return p, s.checkSession(ctx, err)
}

func (s *PerfumeService) Delete(ctx context.Context, id int64) error {
	token, err := s.auth.Token(ctx)
	if err != nil {
		return err
	}
	return s.checkSession(ctx, s.api.DeletePerfume(ctx, token, id))
}

// checkSession drops the stored token once the server rejects it, so the
// next command asks for a fresh login.
func (s *PerfumeService) checkSession(ctx context.Context, err error) error {
	if errors.Is(err, client.ErrUnauthorized) {
		if clearErr := s.auth.Logout(ctx); clearErr != nil {
			return errors.Join(err, clearErr)
		}
		return errors.Join(err, ErrNotLoggedIn)
	}
	return err
}
