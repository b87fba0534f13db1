package repomanager

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"github.com/postline/postline/internal/server/migrations"
	"github.com/postline/postline/internal/server/repositories/accounts"
	"github.com/postline/postline/internal/server/repositories/posts"
)

type SQLiteRepositoryManager struct {
	db *sqlx.DB
}

var _ RepositoryManager = (*SQLiteRepositoryManager)(nil)

func NewSQLiteRepositoryManager(path string) (*SQLiteRepositoryManager, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// SQLite handles one writer at a time.
	db.SetMaxOpenConns(1)
	return &SQLiteRepositoryManager{db: db}, nil
}

func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return gooseUpContext(ctx, m.db.DB, ".")
}

func (m *SQLiteRepositoryManager) Posts() posts.Repository {
	return posts.NewSQLiteRepository(m.db)
}

func (m *SQLiteRepositoryManager) Accounts() accounts.Repository {
	return accounts.NewSQLiteRepository(m.db)
}

func (m *SQLiteRepositoryManager) Close() error {
	return m.db.Close()
}
