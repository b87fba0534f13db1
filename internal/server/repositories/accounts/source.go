package accounts

import (
	"context"
	"fmt"

	"github.com/postline/postline/internal/platform"
)

// Source resolves stored credential blobs into typed platform credentials.
// It satisfies the publish orchestrator's credential lookup.
type Source struct {
	repo Repository
}

func NewSource(repo Repository) *Source {
	return &Source{repo: repo}
}

func (s *Source) CredentialsFor(ctx context.Context, orgID string, p platform.Platform) (platform.Credentials, error) {
	a, err := s.repo.GetEnabled(ctx, orgID, p)
	if err != nil {
		return nil, fmt.Errorf("account lookup for %s: %w", p, err)
	}
	creds, err := platform.DecodeCredentials(p, a.Credentials)
	if err != nil {
		return nil, fmt.Errorf("stored credentials for %s: %w", p, err)
	}
	return creds, nil
}
