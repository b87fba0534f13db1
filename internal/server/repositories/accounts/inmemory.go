package accounts

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/postline/postline/internal/common"
	"github.com/postline/postline/internal/platform"
	"github.com/postline/postline/internal/server/models"
)

type key struct {
	orgID    string
	platform platform.Platform
}

// InMemoryRepository backs tests and the dev-mode server.
type InMemoryRepository struct {
	mu       sync.Mutex
	accounts map[key]*models.PlatformAccount
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{accounts: make(map[key]*models.PlatformAccount)}
}

var _ Repository = (*InMemoryRepository)(nil)

func (r *InMemoryRepository) Upsert(ctx context.Context, a *models.PlatformAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.UpdatedAt = time.Now()
	c := *a
	c.Credentials = append([]byte(nil), a.Credentials...)
	r.accounts[key{a.OrgID, a.Platform}] = &c
	return nil
}

func (r *InMemoryRepository) GetEnabled(ctx context.Context, orgID string, p platform.Platform) (*models.PlatformAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[key{orgID, p}]
	if !ok || !a.Enabled {
		return nil, common.ErrNotFound
	}
	c := *a
	c.Credentials = append([]byte(nil), a.Credentials...)
	return &c, nil
}

func (r *InMemoryRepository) ListByOrg(ctx context.Context, orgID string) ([]*models.PlatformAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.PlatformAccount
	for k, a := range r.accounts {
		if k.orgID != orgID {
			continue
		}
		c := *a
		c.Credentials = append([]byte(nil), a.Credentials...)
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Platform < out[j].Platform })
	return out, nil
}

func (r *InMemoryRepository) SetEnabled(ctx context.Context, orgID string, p platform.Platform, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[key{orgID, p}]
	if !ok {
		return common.ErrNotFound
	}
	a.Enabled = enabled
	a.UpdatedAt = time.Now()
	return nil
}
