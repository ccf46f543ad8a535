// Package repotest provides a map-backed RepositoryManager for tests of code
// built on repomanager.RepositoryManager. It mirrors the PostgreSQL schema's
// column types and constraints by returning the same *pgconn.PgError codes,
// but ignores the DBTX it is handed: writes are not undone when a transaction
// rolls back. Tests that need rollback must use sqlmock or a real database.
package repotest

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrijs2005/perfumekeeper/internal/common"
	"github.com/dmitrijs2005/perfumekeeper/internal/dbx"
	"github.com/dmitrijs2005/perfumekeeper/internal/server/models"
	"github.com/dmitrijs2005/perfumekeeper/internal/server/repositories/perfumes"
	"github.com/dmitrijs2005/perfumekeeper/internal/server/repositories/users"
)

// Column limits of the migrations schema.
const (
	nameLen  = 100
	emailLen = 255
	maxPrice = 1e8
)

func tooLong(n int) error {
	return &pgconn.PgError{Code: "22001", Message: fmt.Sprintf("value too long for type character varying(%d)", n)}
}

type store struct {
	mu          sync.Mutex
	users       map[int64]models.User
	perfumes    map[int64]models.Perfume
	nextUser    int64
	nextPerfume int64
}

// RepositoryManager hands out repositories that share one in-memory store.
type RepositoryManager struct {
	s *store
}

func NewRepositoryManager() *RepositoryManager {
	return &RepositoryManager{s: &store{
		users:    make(map[int64]models.User),
		perfumes: make(map[int64]models.Perfume),
	}}
}

func (m *RepositoryManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *RepositoryManager) Users(dbx.DBTX) users.Repository { return (*userRepo)(m.s) }

func (m *RepositoryManager) Perfumes(dbx.DBTX) perfumes.Repository { return (*perfumeRepo)(m.s) }

// SetActive flips an account's active flag. Accounts are never deactivated
// through the API, so this exists for tests and tooling.
func (m *RepositoryManager) SetActive(id int64, active bool) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if u, ok := m.s.users[id]; ok {
		u.IsActive = active
		m.s.users[id] = u
	}
}

type userRepo store

func (r *userRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	if utf8.RuneCountInString(u.Name) > nameLen {
		return nil, tooLong(nameLen)
	}
	if utf8.RuneCountInString(u.Email) > emailLen {
		return nil, tooLong(emailLen)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return nil, &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
		}
	}
	r.nextUser++
	u.ID = r.nextUser
	u.IsActive = true
	u.CreatedAt = time.Now().UTC()
	r.users[u.ID] = *u
	return u, nil
}

func (r *userRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *userRepo) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

type perfumeRepo store

// checkPerfume validates p against the column types and check constraints
// and rounds its price the way NUMERIC(10,2) stores it.
func checkPerfume(p *models.Perfume) error {
	if utf8.RuneCountInString(p.Name) > nameLen || utf8.RuneCountInString(p.Brand) > nameLen {
		return tooLong(nameLen)
	}
	if p.Stock > math.MaxInt32 || p.Stock < math.MinInt32 {
		return &pgconn.PgError{Code: "22003", Message: "integer out of range"}
	}
	p.Price = math.Round(p.Price*100) / 100
	if math.Abs(p.Price) >= maxPrice {
		return &pgconn.PgError{Code: "22003", Message: "numeric field overflow"}
	}
	if p.Stock < 0 {
		return &pgconn.PgError{Code: "23514", ConstraintName: "perfumes_stock_check"}
	}
	if p.Price < 0 {
		return &pgconn.PgError{Code: "23514", ConstraintName: "perfumes_price_check"}
	}
	return nil
}

func (r *perfumeRepo) ListByOwner(_ context.Context, ownerID int64) ([]models.Perfume, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]models.Perfume, 0)
	for _, p := range r.perfumes {
		if p.UserID == ownerID {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *perfumeRepo) Create(_ context.Context, p *models.Perfume) (*models.Perfume, error) {
	item := *p
	if err := checkPerfume(&item); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[item.UserID]; !ok {
		return nil, &pgconn.PgError{Code: "23503", ConstraintName: "perfumes_user_id_fkey"}
	}
	r.nextPerfume++
	item.ID = r.nextPerfume
	r.perfumes[item.ID] = item
	return &item, nil
}

func (r *perfumeRepo) GetByOwnerForUpdate(_ context.Context, ownerID, id int64) (*models.Perfume, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.perfumes[id]
	if !ok || p.UserID != ownerID {
		return nil, common.ErrorNotFound
	}
	return &p, nil
}

func (r *perfumeRepo) Update(_ context.Context, p *models.Perfume) (*models.Perfume, error) {
	item := *p
	if err := checkPerfume(&item); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.perfumes[item.ID]
	if !ok || current.UserID != item.UserID {
		return nil, common.ErrorNotFound
	}
	r.perfumes[item.ID] = item
	return &item, nil
}

func (r *perfumeRepo) Delete(_ context.Context, ownerID, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.perfumes[id]
	if !ok || p.UserID != ownerID {
		return common.ErrorNotFound
	}
	delete(r.perfumes, id)
	return nil
}
