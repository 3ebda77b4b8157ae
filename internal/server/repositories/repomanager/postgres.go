package repomanager

import (
	"context"
	"database/sql"
	"sync"

	"github.com/dmitrijs2005/aimauth/internal/dbx"
	"github.com/dmitrijs2005/aimauth/internal/server/migrations"
	"github.com/dmitrijs2005/aimauth/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
)

// gooseMu guards goose's package-level base FS and dialect.
var gooseMu sync.Mutex

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

// Users returns a users.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

// RunMigrations applies the embedded PostgreSQL migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations.Postgres)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, "postgres")
}
