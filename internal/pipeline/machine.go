package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/postline/postline/internal/common"
	"github.com/postline/postline/internal/logging"
	"github.com/postline/postline/internal/notify"
	"github.com/postline/postline/internal/platform"
	"github.com/postline/postline/internal/server/models"
	"github.com/postline/postline/internal/server/repositories/posts"
)

// Machine owns the legal status graph and applies every transition as one
// conditional write. Concurrent edits lose with common.ErrVersionConflict
// and are never merged.
type Machine struct {
	posts    posts.Repository
	notifier notify.Notifier
	log      logging.Logger
	now      func() time.Time
}

func NewMachine(repo posts.Repository, notifier notify.Notifier, log logging.Logger) *Machine {
	return &Machine{
		posts:    repo,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// BulkResult reports one post's outcome of a bulk move.
type BulkResult struct {
	PostID string `json:"postId"`
	Err    error  `json:"-"`
}

// transition loads the post, checks the edge, lets mutate adjust fields and
// writes back at the loaded version. mutate runs only when the edge is legal.
func (m *Machine) transition(ctx context.Context, postID string, to models.Status, mutate func(*models.Post) error) (*models.Post, error) {
	p, err := m.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	from := p.Status
	if !CanTransition(from, to) {
		return nil, fmt.Errorf("%w: %s -> %s", common.ErrInvalidTransition, from, to)
	}
	if mutate != nil {
		if err := mutate(p); err != nil {
			return nil, err
		}
	}
	p.Status = to
	if err := m.posts.UpdateConditional(ctx, p, p.Version); err != nil {
		return nil, err
	}
	m.notifier.PipelineChanged(ctx, p, from, to, "")
	return p, nil
}

// ApproveIdea moves an idea into idea_approved.
func (m *Machine) ApproveIdea(ctx context.Context, postID string) (*models.Post, error) {
	return m.transition(ctx, postID, models.StatusIdeaApproved, nil)
}

// Approve moves a post into approved, stamping ApprovedAt. The photo step is
// skipped when the post comes straight from the idea stages.
func (m *Machine) Approve(ctx context.Context, postID string) (*models.Post, error) {
	return m.transition(ctx, postID, models.StatusApproved, func(p *models.Post) error {
		t := m.now().UTC()
		p.ApprovedAt = &t
		return nil
	})
}

// ApprovePhotos moves a post out of photo review. The post must carry at
// least one media asset, otherwise there is nothing to have reviewed.
func (m *Machine) ApprovePhotos(ctx context.Context, postID string) (*models.Post, error) {
	return m.transition(ctx, postID, models.StatusApproved, func(p *models.Post) error {
		if p.Status != models.StatusPhotoReview {
			return fmt.Errorf("%w: %s -> %s", common.ErrInvalidTransition, p.Status, models.StatusApproved)
		}
		if len(p.MediaURLs) == 0 {
			return fmt.Errorf("%w: photo review requires at least one media asset", common.ErrValidation)
		}
		t := m.now().UTC()
		p.ApprovedAt = &t
		return nil
	})
}

// StartGeneration hands an approved idea to the media generation step.
func (m *Machine) StartGeneration(ctx context.Context, postID string) (*models.Post, error) {
	return m.transition(ctx, postID, models.StatusGenerating, nil)
}

// AttachGeneratedMedia records generated assets and moves the post into
// photo review.
func (m *Machine) AttachGeneratedMedia(ctx context.Context, postID string, mediaURLs []string) (*models.Post, error) {
	if len(mediaURLs) == 0 {
		return nil, fmt.Errorf("%w: generation produced no media", common.ErrValidation)
	}
	return m.transition(ctx, postID, models.StatusPhotoReview, func(p *models.Post) error {
		p.MediaURLs = append(p.MediaURLs, mediaURLs...)
		return nil
	})
}

// Reject sends a post back to the idea stage from anywhere, appending the
// reason to the post's notes.
func (m *Machine) Reject(ctx context.Context, postID, reason string) (*models.Post, error) {
	return m.transition(ctx, postID, models.StatusIdea, func(p *models.Post) error {
		if reason != "" {
			appendNote(p, m.now().UTC(), "rejected: "+reason)
		}
		return nil
	})
}

// Schedule sets the time at which an approved post becomes due for
// automatic publishing. A zero time clears the schedule. The status does
// not change.
func (m *Machine) Schedule(ctx context.Context, postID string, at time.Time) (*models.Post, error) {
	p, err := m.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if p.Status != models.StatusApproved {
		return nil, fmt.Errorf("%w: only approved posts can be scheduled, post is %s", common.ErrInvalidTransition, p.Status)
	}
	detail := "schedule cleared"
	if at.IsZero() {
		p.ScheduledFor = nil
	} else {
		t := at.UTC()
		p.ScheduledFor = &t
		detail = "scheduled for " + t.Format(time.RFC3339)
	}
	if err := m.posts.UpdateConditional(ctx, p, p.Version); err != nil {
		return nil, err
	}
	m.notifier.PipelineChanged(ctx, p, p.Status, p.Status, detail)
	return p, nil
}

// BulkMove applies the same transition to many posts. Each post is checked
// and written independently, so a single illegal or stale post does not
// abort the rest.
func (m *Machine) BulkMove(ctx context.Context, postIDs []string, to models.Status) []BulkResult {
	results := make([]BulkResult, 0, len(postIDs))
	for _, id := range postIDs {
		var err error
		switch to {
		case models.StatusPosted, models.StatusFailed:
			// Publish outcomes are owned by the orchestrator.
			err = fmt.Errorf("%w: bulk move to %s is not allowed", common.ErrInvalidTransition, to)
		case models.StatusIdea:
			_, err = m.Reject(ctx, id, "")
		case models.StatusApproved:
			_, err = m.Approve(ctx, id)
		default:
			_, err = m.transition(ctx, id, to, nil)
		}
		if err != nil {
			m.log.Warn(ctx, "bulk move skipped post", "post_id", id, "to", string(to), "error", err)
		}
		results = append(results, BulkResult{PostID: id, Err: err})
	}
	return results
}

// PublishOutcome is what a finished publish run reports back to the machine.
type PublishOutcome struct {
	// PostedIDs holds the native ids of the platforms that succeeded in
	// this run only. Previously recorded ids stay untouched.
	PostedIDs map[platform.Platform]string

	// Failures maps a failed platform to its error message.
	Failures map[platform.Platform]string
}

func (o PublishOutcome) anySuccess() bool { return len(o.PostedIDs) > 0 }

// CompletePublish persists a publish run's results: merges the new platform
// ids into the existing set, appends one timestamped note line per failed
// platform, and moves the post to posted or failed. Everything lands in a
// single conditional write at expectedVersion, so a concurrent edit during
// the publish run surfaces as common.ErrVersionConflict.
func (m *Machine) CompletePublish(ctx context.Context, p *models.Post, expectedVersion int64, outcome PublishOutcome) (*models.Post, error) {
	from := p.Status
	to := models.StatusFailed
	if outcome.anySuccess() {
		to = models.StatusPosted
	}
	if !CanTransition(from, to) {
		return nil, fmt.Errorf("%w: %s -> %s", common.ErrInvalidTransition, from, to)
	}

	now := m.now().UTC()
	if p.PostedIDs == nil {
		p.PostedIDs = make(map[platform.Platform]string, len(outcome.PostedIDs))
	}
	for pl, id := range outcome.PostedIDs {
		p.PostedIDs[pl] = id
	}
	for pl, msg := range outcome.Failures {
		appendNote(p, now, fmt.Sprintf("publish to %s failed: %s", pl, msg))
	}
	p.Status = to
	if outcome.anySuccess() && p.PublishedAt == nil {
		p.PublishedAt = &now
	}

	if err := m.posts.UpdateConditional(ctx, p, expectedVersion); err != nil {
		return nil, err
	}
	detail := fmt.Sprintf("%d succeeded, %d failed", len(outcome.PostedIDs), len(outcome.Failures))
	m.notifier.PipelineChanged(ctx, p, from, to, detail)
	return p, nil
}

func appendNote(p *models.Post, at time.Time, line string) {
	entry := at.Format(time.RFC3339) + " " + line
	if strings.TrimSpace(p.Notes) == "" {
		p.Notes = entry
		return
	}
	p.Notes = p.Notes + "\n" + entry
}
