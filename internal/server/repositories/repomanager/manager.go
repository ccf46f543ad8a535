package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/perfumekeeper/internal/dbx"
	"github.com/dmitrijs2005/perfumekeeper/internal/server/repositories/perfumes"
	"github.com/dmitrijs2005/perfumekeeper/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Perfumes(db dbx.DBTX) perfumes.Repository
}
