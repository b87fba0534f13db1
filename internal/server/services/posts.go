// Package services contains server-side business logic. This file implements
// PostService, which owns post creation, content edits, and the dedup check
// run before a new post enters the pipeline.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/postline/postline/internal/common"
	"github.com/postline/postline/internal/content"
	"github.com/postline/postline/internal/platform"
	"github.com/postline/postline/internal/server/models"
	"github.com/postline/postline/internal/server/repositories/posts"
)

// CreatePostParams is the caller-supplied part of a new post.
type CreatePostParams struct {
	OrgID     string
	Text      string
	Platforms []platform.Platform
	MediaURLs []string
	Schedule  *time.Time
}

// PostService creates and edits posts. Status moves are owned by the
// pipeline state machine, not here.
type PostService struct {
	posts posts.Repository
	guard *content.Guard
}

func NewPostService(repo posts.Repository, guard *content.Guard) *PostService {
	return &PostService{posts: repo, guard: guard}
}

// Create inserts a new post in the idea stage. Creation is refused with
// common.ErrDuplicateContent when the dedup guard reports a match; the
// returned DuplicateCheck carries the match details either way.
func (s *PostService) Create(ctx context.Context, params CreatePostParams) (*models.Post, content.DuplicateCheck, error) {
	dup := s.guard.CheckDuplicate(ctx, params.OrgID, params.Text, params.Platforms, "")
	if dup.IsDuplicate {
		return nil, dup, fmt.Errorf("%w: %s match with post %s", common.ErrDuplicateContent, dup.MatchType, dup.MatchedPostID)
	}

	now := time.Now()
	p := &models.Post{
		ID:           uuid.NewString(),
		OrgID:        params.OrgID,
		Version:      1,
		Text:         params.Text,
		Platforms:    params.Platforms,
		MediaURLs:    params.MediaURLs,
		ContentHash:  content.Fingerprint(params.Text),
		Status:       models.StatusIdea,
		PostedIDs:    map[platform.Platform]string{},
		ScheduledFor: params.Schedule,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.posts.Create(ctx, p); err != nil {
		return nil, dup, fmt.Errorf("failed to create post: %w", err)
	}
	return p, dup, nil
}

func (s *PostService) Get(ctx context.Context, id string) (*models.Post, error) {
	return s.posts.GetByID(ctx, id)
}

// UpdateContent replaces a post's text, targets and media, recomputing the
// content fingerprint in the same conditional write so the hash can never
// drift from the text.
func (s *PostService) UpdateContent(ctx context.Context, id string, expectedVersion int64, text string, platforms []platform.Platform, mediaURLs []string) (*models.Post, error) {
	p, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Version != expectedVersion {
		return nil, common.ErrVersionConflict
	}
	p.Text = text
	p.Platforms = platforms
	p.MediaURLs = mediaURLs
	p.ContentHash = content.Fingerprint(text)
	if err := s.posts.UpdateConditional(ctx, p, expectedVersion); err != nil {
		return nil, err
	}
	return p, nil
}

// CheckDuplicate exposes the guard's pure read-check for pre-flight UI
// calls.
func (s *PostService) CheckDuplicate(ctx context.Context, orgID, text string, platforms []platform.Platform) content.DuplicateCheck {
	return s.guard.CheckDuplicate(ctx, orgID, text, platforms, "")
}

// ListRecent returns the org's posts touched within the window.
func (s *PostService) ListRecent(ctx context.Context, orgID string, window time.Duration) ([]*models.Post, error) {
	return s.posts.ListRecent(ctx, orgID, time.Now().Add(-window))
}
