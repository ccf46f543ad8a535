// Package perfumes provides the PostgreSQL-backed perfume repository.
package perfumes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/perfumekeeper/internal/common"
	"github.com/dmitrijs2005/perfumekeeper/internal/dbx"
	"github.com/dmitrijs2005/perfumekeeper/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListByOwner returns the owner's perfumes ordered by id. The result is
// empty, not nil, when the owner has none.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID int64) ([]models.Perfume, error) {
	query := `SELECT id, user_id, name, brand, description, stock, price FROM perfumes
		WHERE user_id = $1
		ORDER BY id
		`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to select perfumes: %w", err)
	}
	defer rows.Close()

	result := make([]models.Perfume, 0)
	for rows.Next() {
		var item models.Perfume
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.Name, &item.Brand, &item.Description, &item.Stock, &item.Price,
		); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Create inserts p and returns the row as stored, so column rounding such as
// NUMERIC(10,2) on price is visible to the caller.
func (r *PostgresRepository) Create(ctx context.Context, p *models.Perfume) (*models.Perfume, error) {
	query := `
		INSERT INTO perfumes (user_id, name, brand, description, stock, price)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, user_id, name, brand, description, stock, price
	`
	item, err := scanPerfume(r.db.QueryRowContext(ctx, query,
		p.UserID, p.Name, p.Brand, p.Description, p.Stock, p.Price))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return item, nil
}

// GetByOwnerForUpdate loads one perfume and locks its row until the
// surrounding transaction ends. Outside a transaction the lock is released
// immediately.
func (r *PostgresRepository) GetByOwnerForUpdate(ctx context.Context, ownerID, id int64) (*models.Perfume, error) {
	query := `SELECT id, user_id, name, brand, description, stock, price FROM perfumes
		WHERE id = $1 AND user_id = $2
		FOR UPDATE
		`
	item, err := scanPerfume(r.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return item, nil
}

// Update writes every mutable column of p and returns the stored row. The
// owner filter is repeated so a row can never move between owners.
func (r *PostgresRepository) Update(ctx context.Context, p *models.Perfume) (*models.Perfume, error) {
	query := `
		UPDATE perfumes
		SET name = $1, brand = $2, description = $3, stock = $4, price = $5
		WHERE id = $6 AND user_id = $7
		RETURNING id, user_id, name, brand, description, stock, price
	`
	item, err := scanPerfume(r.db.QueryRowContext(ctx, query,
		p.Name, p.Brand, p.Description, p.Stock, p.Price, p.ID, p.UserID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return item, nil
}

// Delete removes one perfume. Deleting a missing or foreign row yields
// common.ErrorNotFound.
func (r *PostgresRepository) Delete(ctx context.Context, ownerID, id int64) error {
	query := `DELETE FROM perfumes WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func scanPerfume(row *sql.Row) (*models.Perfume, error) {
	var item models.Perfume
	if err := row.Scan(
		&item.ID, &item.UserID, &item.Name, &item.Brand, &item.Description, &item.Stock, &item.Price,
	); err != nil {
		return nil, err
	}
	return &item, nil
}
