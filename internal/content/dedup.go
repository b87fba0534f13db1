package content

import (
	"context"
	"time"

	"github.com/postline/postline/internal/logging"
	"github.com/postline/postline/internal/platform"
	"github.com/postline/postline/internal/server/models"
)

// MatchType classifies a duplicate finding.
type MatchType string

const (
	MatchExact MatchType = "exact"
	MatchNear  MatchType = "near"
)

// DuplicateCheck is the guard's verdict. It carries no side effects; the
// caller decides whether to block creation or publishing.
type DuplicateCheck struct {
	IsDuplicate   bool      `json:"isDuplicate"`
	MatchType     MatchType `json:"matchType,omitempty"`
	MatchedPostID string    `json:"matchedPostId,omitempty"`
}

// PostFinder is the read-only slice of the post store the guard needs.
type PostFinder interface {
	FindByContentHash(ctx context.Context, orgID, hash, excludeID string) ([]*models.Post, error)
	ListRecent(ctx context.Context, orgID string, since time.Time) ([]*models.Post, error)
}

// Guard detects exact and near-duplicate content against recently-touched
// posts for an overlapping platform set.
//
// The guard fails open: if its backing queries fail, content creation must
// not be blocked by a storage hiccup, so the failure is logged and the
// check reports "no duplicate".
type Guard struct {
	posts         PostFinder
	log           logging.Logger
	window        time.Duration
	nearThreshold float64
}

func NewGuard(posts PostFinder, log logging.Logger, window time.Duration, nearThreshold float64) *Guard {
	return &Guard{posts: posts, log: log, window: window, nearThreshold: nearThreshold}
}

// CheckDuplicate is a pure read: it looks for an existing post whose
// normalized text matches text exactly (by fingerprint) or nearly (by token
// overlap above the configured threshold) and whose platform set overlaps
// platforms. excludeID skips the caller's own post so a re-publish does not
// match itself.
func (g *Guard) CheckDuplicate(ctx context.Context, orgID, text string, platforms []platform.Platform, excludeID string) DuplicateCheck {
	hash := Fingerprint(text)

	exact, err := g.posts.FindByContentHash(ctx, orgID, hash, excludeID)
	if err != nil {
		g.log.Warn(ctx, "dedup lookup failed, failing open", "error", err)
		return DuplicateCheck{}
	}
	for _, p := range exact {
		if g.isCandidate(p, platforms) {
			return DuplicateCheck{IsDuplicate: true, MatchType: MatchExact, MatchedPostID: p.ID}
		}
	}

	recent, err := g.posts.ListRecent(ctx, orgID, time.Now().Add(-g.window))
	if err != nil {
		g.log.Warn(ctx, "dedup near-match lookup failed, failing open", "error", err)
		return DuplicateCheck{}
	}
	for _, p := range recent {
		if p.ID == excludeID || !g.isCandidate(p, platforms) {
			continue
		}
		if Similarity(text, p.Text) >= g.nearThreshold {
			return DuplicateCheck{IsDuplicate: true, MatchType: MatchNear, MatchedPostID: p.ID}
		}
	}

	return DuplicateCheck{}
}

// isCandidate: a post counts against new content while it is anywhere in the
// pipeline or recently published, and only when the destinations overlap.
// Posts with no platforms yet (idea stage) match on text alone.
func (g *Guard) isCandidate(p *models.Post, platforms []platform.Platform) bool {
	if len(p.Platforms) > 0 && len(platforms) > 0 && !p.OverlapsPlatforms(platforms) {
		return false
	}
	if p.Status == models.StatusPosted {
		return p.PublishedAt != nil && time.Since(*p.PublishedAt) <= g.window
	}
	return true
}
