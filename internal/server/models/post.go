package models

import (
	"time"

	"github.com/postline/postline/internal/platform"
)

// Status is a post's position in the content pipeline.
type Status string

const (
	StatusIdea         Status = "idea"
	StatusIdeaApproved Status = "idea_approved"
	StatusGenerating   Status = "generating"
	StatusPhotoReview  Status = "photo_review"
	StatusApproved     Status = "approved"
	StatusPosted       Status = "posted"
	StatusFailed       Status = "failed"
)

// Post is the central pipeline entity.
//
// Version increases by exactly 1 on every successful mutation; a write whose
// expected version does not match the stored version is rejected, never
// merged. ContentHash is recomputed in the same write as any Text change.
type Post struct {
	ID      string `json:"id"`
	OrgID   string `json:"orgId"`
	Version int64  `json:"version"`

	Text        string              `json:"text"`
	Platforms   []platform.Platform `json:"platforms"`
	MediaURLs   []string            `json:"mediaUrls"`
	ContentHash string              `json:"contentHash"`

	Status Status `json:"status"`

	// PostedIDs maps a platform to its native post id. Entries are only
	// ever appended or merged, never removed: a failed republish to other
	// platforms must not erase an earlier success.
	PostedIDs map[platform.Platform]string `json:"postedIds"`

	// Notes is a free-text audit trail. Rejection reasons and publish
	// failures are appended as timestamped lines.
	Notes string `json:"notes"`

	ScheduledFor *time.Time `json:"scheduledFor,omitempty"`

	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	ApprovedAt  *time.Time `json:"approvedAt,omitempty"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
}

// Clone returns a deep copy so callers can mutate a candidate without
// touching the loaded snapshot.
func (p *Post) Clone() *Post {
	c := *p
	c.Platforms = append([]platform.Platform(nil), p.Platforms...)
	c.MediaURLs = append([]string(nil), p.MediaURLs...)
	if p.PostedIDs != nil {
		c.PostedIDs = make(map[platform.Platform]string, len(p.PostedIDs))
		for k, v := range p.PostedIDs {
			c.PostedIDs[k] = v
		}
	}
	if p.ScheduledFor != nil {
		t := *p.ScheduledFor
		c.ScheduledFor = &t
	}
	if p.ApprovedAt != nil {
		t := *p.ApprovedAt
		c.ApprovedAt = &t
	}
	if p.PublishedAt != nil {
		t := *p.PublishedAt
		c.PublishedAt = &t
	}
	return &c
}

// TargetsPlatform reports whether p is aimed at the given destination.
func (p *Post) TargetsPlatform(target platform.Platform) bool {
	for _, pl := range p.Platforms {
		if pl == target {
			return true
		}
	}
	return false
}

// OverlapsPlatforms reports whether p shares at least one destination with
// the given set.
func (p *Post) OverlapsPlatforms(set []platform.Platform) bool {
	for _, pl := range set {
		if p.TargetsPlatform(pl) {
			return true
		}
	}
	return false
}
