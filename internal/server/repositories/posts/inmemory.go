package posts

import (
	"context"
	"sync"
	"time"

	"github.com/postline/postline/internal/common"
	"github.com/postline/postline/internal/server/models"
)

// InMemoryRepository is a mutex-guarded map store honoring the same
// conditional-write contract as the SQL backends. Used by tests and by the
// dev-mode server.
type InMemoryRepository struct {
	mu    sync.Mutex
	posts map[string]*models.Post
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{posts: make(map[string]*models.Post)}
}

func (r *InMemoryRepository) Create(ctx context.Context, p *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts[p.ID] = p.Clone()
	return nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return p.Clone(), nil
}

func (r *InMemoryRepository) UpdateConditional(ctx context.Context, p *models.Post, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.posts[p.ID]
	if !ok {
		return common.ErrNotFound
	}
	if stored.Version != expectedVersion {
		return common.ErrVersionConflict
	}
	next := p.Clone()
	next.Version = expectedVersion + 1
	next.UpdatedAt = time.Now()
	r.posts[p.ID] = next
	p.Version = next.Version
	p.UpdatedAt = next.UpdatedAt
	return nil
}

func (r *InMemoryRepository) FindByContentHash(ctx context.Context, orgID, hash, excludeID string) ([]*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Post
	for _, p := range r.posts {
		if p.OrgID == orgID && p.ContentHash == hash && p.ID != excludeID {
			out = append(out, p.Clone())
		}
	}
	return out, nil
}

func (r *InMemoryRepository) ListRecent(ctx context.Context, orgID string, since time.Time) ([]*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Post
	for _, p := range r.posts {
		if p.OrgID == orgID && !p.UpdatedAt.Before(since) {
			out = append(out, p.Clone())
		}
	}
	return out, nil
}

func (r *InMemoryRepository) ListDue(ctx context.Context, orgID string, now time.Time) ([]*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Post
	for _, p := range r.posts {
		if p.OrgID == orgID && p.Status == models.StatusApproved &&
			p.ScheduledFor != nil && !p.ScheduledFor.After(now) {
			out = append(out, p.Clone())
		}
	}
	return out, nil
}
