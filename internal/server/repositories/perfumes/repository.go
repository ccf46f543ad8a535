package perfumes

import (
	"context"

	"github.com/dmitrijs2005/perfumekeeper/internal/server/models"
)

// Repository stores perfumes. Every method is scoped by owner: a row that
// belongs to someone else is indistinguishable from a missing one.
type Repository interface {
	ListByOwner(ctx context.Context, ownerID int64) ([]models.Perfume, error)
	Create(ctx context.Context, p *models.Perfume) (*models.Perfume, error)
	GetByOwnerForUpdate(ctx context.Context, ownerID, id int64) (*models.Perfume, error)
	Update(ctx context.Context, p *models.Perfume) (*models.Perfume, error)
	Delete(ctx context.Context, ownerID, id int64) error
}
