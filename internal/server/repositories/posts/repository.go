// Package posts provides the storage layer for pipeline posts. All mutations
// after creation go through UpdateConditional, which enforces the optimistic
// version check the state machine depends on.
package posts

import (
	"context"
	"time"

	"github.com/postline/postline/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, p *models.Post) error

	GetByID(ctx context.Context, id string) (*models.Post, error)

	// UpdateConditional writes p only if the stored version equals
	// expectedVersion, bumping the version by exactly 1 in the same
	// atomic write. A mismatch returns common.ErrVersionConflict and
	// leaves the row untouched. On success p.Version is the new version.
	UpdateConditional(ctx context.Context, p *models.Post, expectedVersion int64) error

	// FindByContentHash returns the org's posts with the given content
	// hash, skipping excludeID.
	FindByContentHash(ctx context.Context, orgID, hash, excludeID string) ([]*models.Post, error)

	// ListRecent returns the org's posts touched at or after since.
	ListRecent(ctx context.Context, orgID string, since time.Time) ([]*models.Post, error)

	// ListDue returns approved posts whose scheduled time has passed.
	ListDue(ctx context.Context, orgID string, now time.Time) ([]*models.Post, error)
}
