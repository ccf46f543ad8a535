package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/perfumekeeper/internal/common"
	"github.com/dmitrijs2005/perfumekeeper/internal/dbx"
	"github.com/dmitrijs2005/perfumekeeper/internal/logging"
	"github.com/dmitrijs2005/perfumekeeper/internal/server/models"
	"github.com/dmitrijs2005/perfumekeeper/internal/server/repositories/repomanager"
)

// PerfumeService runs perfume CRUD on behalf of an authenticated owner. The
// owner id always comes from the caller's identity, never from input.
type PerfumeService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewPerfumeService(db *sql.DB, m repomanager.RepositoryManager, l logging.Logger) *PerfumeService {
	return &PerfumeService{
		db:          db,
		repomanager: m,
		logger:      l.With("module", "perfume_service"),
	}
}

// List returns the owner's perfumes ordered by id.
func (s *PerfumeService) List(ctx context.Context, ownerID int64) ([]models.Perfume, error) {
	items, err := s.repomanager.Perfumes(s.db).ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error listing perfumes: %w", err)
	}
	return items, nil
}

// Create stores a new perfume owned by ownerID.
func (s *PerfumeService) Create(ctx context.Context, ownerID int64, in models.PerfumeInput) (*models.Perfume, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Brand) == "" {
		return nil, fmt.Errorf("%w: name and brand are required", common.ErrValidation)
	}

	p := &models.Perfume{
		UserID:      ownerID,
		Name:        in.Name,
		Brand:       in.Brand,
		Description: in.Description,
		Stock:       in.Stock,
		Price:       in.Price,
	}

	var created *models.Perfume
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		created, err = s.repomanager.Perfumes(tx).Create(ctx, p)
		return err
	})
	if err != nil {
		return nil, s.classify(ctx, "create", err)
	}
	return created, nil
}

// Update applies the fields present in patch to the owner's perfume id.
// The row is locked for the duration of the merge.
func (s *PerfumeService) Update(ctx context.Context, ownerID, id int64, patch models.PerfumePatch) (*models.Perfume, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, fmt.Errorf("%w: name must not be empty", common.ErrValidation)
	}
	if patch.Brand != nil && strings.TrimSpace(*patch.Brand) == "" {
		return nil, fmt.Errorf("%w: brand must not be empty", common.ErrValidation)
	}

	var updated *models.Perfume
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Perfumes(tx)
		current, err := repo.GetByOwnerForUpdate(ctx, ownerID, id)
		if err != nil {
			return err
		}
		if patch.Empty() {
			updated = current
			return nil
		}
		next := patch.Apply(*current)
		updated, err = repo.Update(ctx, &next)
		return err
	})
	if err != nil {
		return nil, s.classify(ctx, "update", err)
	}
	return updated, nil
}

// Delete removes the owner's perfume id.
func (s *PerfumeService) Delete(ctx context.Context, ownerID, id int64) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Perfumes(tx).Delete(ctx, ownerID, id)
	})
	if err != nil {
		return s.classify(ctx, "delete", err)
	}
	return nil
}

func (s *PerfumeService) classify(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return common.ErrorNotFound
	case dbx.IsIntegrityViolation(err):
		s.logger.Debug(ctx, "perfume constraint violated", "op", op, "constraint", dbx.ConstraintName(err))
		return fmt.Errorf("%w: %s", common.ErrIntegrityViolation, dbx.ConstraintName(err))
	case dbx.IsDataException(err):
		return fmt.Errorf("%w: %s", common.ErrValidation, dbx.ErrorMessage(err))
	}
	return fmt.Errorf("error during perfume %s: %w", op, err)
}
