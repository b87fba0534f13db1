// Package repomanager selects and wires a storage backend from the
// configured DSN: PostgreSQL for real deployments, SQLite for single-box
// installs, in-memory for development and tests.
package repomanager

import (
	"context"
	"strings"

	"github.com/postline/postline/internal/server/repositories/accounts"
	"github.com/postline/postline/internal/server/repositories/posts"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Posts() posts.Repository
	Accounts() accounts.Repository
	Close() error
}

// NewFromDSN picks the backend by DSN shape. An empty DSN or "memory"
// selects the in-memory store; a postgres:// or postgresql:// URL selects
// PostgreSQL; anything else is treated as a SQLite file path.
func NewFromDSN(dsn string) (RepositoryManager, error) {
	switch {
	case dsn == "" || dsn == "memory":
		return NewInMemoryRepositoryManager(), nil
	case strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://"):
		return NewPostgresRepositoryManager(dsn)
	default:
		return NewSQLiteRepositoryManager(dsn)
	}
}
