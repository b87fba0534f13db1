package repomanager

import (
	"context"

	"github.com/postline/postline/internal/server/repositories/accounts"
	"github.com/postline/postline/internal/server/repositories/posts"
)

// InMemoryRepositoryManager keeps everything in process memory. Data is
// lost on restart, so it is only suitable for development and tests.
type InMemoryRepositoryManager struct {
	posts    *posts.InMemoryRepository
	accounts *accounts.InMemoryRepository
}

var _ RepositoryManager = (*InMemoryRepositoryManager)(nil)

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{
		posts:    posts.NewInMemoryRepository(),
		accounts: accounts.NewInMemoryRepository(),
	}
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *InMemoryRepositoryManager) Posts() posts.Repository { return m.posts }

func (m *InMemoryRepositoryManager) Accounts() accounts.Repository { return m.accounts }

func (m *InMemoryRepositoryManager) Close() error { return nil }
