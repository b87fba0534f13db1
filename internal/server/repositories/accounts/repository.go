// Package accounts stores per-org platform connections and their
// credential blobs.
package accounts

import (
	"context"

	"github.com/postline/postline/internal/platform"
	"github.com/postline/postline/internal/server/models"
)

type Repository interface {
	Upsert(ctx context.Context, a *models.PlatformAccount) error

	// GetEnabled returns the org's enabled account for one platform, or
	// common.ErrNotFound when the org never connected it or disabled it.
	GetEnabled(ctx context.Context, orgID string, p platform.Platform) (*models.PlatformAccount, error)

	ListByOrg(ctx context.Context, orgID string) ([]*models.PlatformAccount, error)

	SetEnabled(ctx context.Context, orgID string, p platform.Platform, enabled bool) error
}
