// Package scheduler periodically publishes approved posts whose scheduled
// time has passed.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/postline/postline/internal/logging"
	"github.com/postline/postline/internal/publish"
	"github.com/postline/postline/internal/server/repositories/posts"
)

// Publisher is the slice of the orchestrator the scheduler needs.
type Publisher interface {
	Publish(ctx context.Context, postID string) (*publish.Outcome, error)
}

type Scheduler struct {
	posts     posts.Repository
	publisher Publisher
	orgID     string
	interval  time.Duration
	log       logging.Logger
	cron      *cron.Cron
}

func New(repo posts.Repository, publisher Publisher, orgID string, interval time.Duration, log logging.Logger) *Scheduler {
	return &Scheduler{
		posts:     repo,
		publisher: publisher,
		orgID:     orgID,
		interval:  interval,
		log:       log,
	}
}

// Start begins the periodic due-post sweep. A zero interval disables the
// scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.interval <= 0 {
		s.log.Info(ctx, "scheduler disabled")
		return nil
	}
	s.cron = cron.New()
	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := s.cron.AddFunc(spec, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule publish sweep: %w", err)
	}
	s.cron.Start()
	s.log.Info(ctx, "scheduler started", "interval", s.interval.String())
	return nil
}

// RunOnce publishes every due post. Per-post failures are logged and do not
// stop the sweep; a post whose publish conflicts with a concurrent edit is
// simply picked up again on the next run.
func (s *Scheduler) RunOnce(ctx context.Context) {
	due, err := s.posts.ListDue(ctx, s.orgID, time.Now())
	if err != nil {
		s.log.Error(ctx, "failed to list due posts", "error", err)
		return
	}
	for _, p := range due {
		out, err := s.publisher.Publish(ctx, p.ID)
		if err != nil {
			s.log.Warn(ctx, "scheduled publish failed", "post_id", p.ID, "error", err)
			continue
		}
		s.log.Info(ctx, "scheduled publish finished",
			"post_id", p.ID,
			"succeeded", out.Summary.Succeeded,
			"failed", out.Summary.Failed,
		)
	}
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}
