package publish

import (
	"context"
	"fmt"
	"sync"

	"github.com/postline/postline/internal/common"
	"github.com/postline/postline/internal/content"
	"github.com/postline/postline/internal/logging"
	"github.com/postline/postline/internal/media"
	"github.com/postline/postline/internal/pipeline"
	"github.com/postline/postline/internal/platform"
	"github.com/postline/postline/internal/server/models"
	"github.com/postline/postline/internal/server/repositories/posts"
	"golang.org/x/sync/errgroup"
)

// CredentialSource resolves an org's stored credentials for one platform.
type CredentialSource interface {
	CredentialsFor(ctx context.Context, orgID string, p platform.Platform) (platform.Credentials, error)
}

// PlatformResult is one platform's slot in a publish outcome.
type PlatformResult struct {
	Success        bool   `json:"success"`
	PlatformPostID string `json:"platformPostId,omitempty"`
	URL            string `json:"url,omitempty"`
	Error          string `json:"error,omitempty"`
	Skipped        bool   `json:"skipped,omitempty"`
}

// Summary counts the attempted platforms.
type Summary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// Outcome is the structured result of one publish run. Success means every
// attempted platform succeeded; a partial success has Success false but a
// non-zero Succeeded count.
type Outcome struct {
	Success bool                                 `json:"success"`
	Results map[platform.Platform]PlatformResult `json:"results"`
	Summary Summary                              `json:"summary"`
}

// Orchestrator validates a post once, fans one retry-wrapped adapter call
// out per target platform, and folds the results back through the state
// machine. Platform attempts are independent, one platform's failure never
// stops the others.
type Orchestrator struct {
	adapters map[platform.Platform]platform.Adapter
	creds    CredentialSource
	posts    posts.Repository
	machine  *pipeline.Machine
	guard    *content.Guard
	enhancer media.Enhancer
	retry    RetryConfig
	log      logging.Logger
}

func NewOrchestrator(
	adapters map[platform.Platform]platform.Adapter,
	creds CredentialSource,
	repo posts.Repository,
	machine *pipeline.Machine,
	guard *content.Guard,
	enhancer media.Enhancer,
	retryCfg RetryConfig,
	log logging.Logger,
) *Orchestrator {
	if enhancer == nil {
		enhancer = media.NoopEnhancer{}
	}
	return &Orchestrator{
		adapters: adapters,
		creds:    creds,
		posts:    repo,
		machine:  machine,
		guard:    guard,
		enhancer: enhancer,
		retry:    retryCfg,
		log:      log,
	}
}

// Publish runs the full publish flow for an approved post. The returned
// Outcome is populated whenever platform attempts were made, even when the
// final conditional write fails.
func (o *Orchestrator) Publish(ctx context.Context, postID string) (*Outcome, error) {
	p, err := o.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if p.Status != models.StatusApproved {
		return nil, fmt.Errorf("%w: %s -> %s", common.ErrInvalidTransition, p.Status, models.StatusPosted)
	}

	issues := content.Validate(p.Text, p.Platforms, p.MediaURLs)
	if content.HasBlockingErrors(issues) {
		return nil, fmt.Errorf("%w: %s", common.ErrValidation, content.ErrorMessages(issues))
	}

	dup := o.guard.CheckDuplicate(ctx, p.OrgID, p.Text, p.Platforms, p.ID)
	if dup.IsDuplicate {
		return nil, fmt.Errorf("%w: %s match with post %s", common.ErrDuplicateContent, dup.MatchType, dup.MatchedPostID)
	}

	targets := make([]platform.Platform, 0, len(p.Platforms))
	results := make(map[platform.Platform]PlatformResult, len(p.Platforms))
	for _, pl := range p.Platforms {
		if _, done := p.PostedIDs[pl]; done {
			// Already live there from a prior partial attempt.
			results[pl] = PlatformResult{Success: true, PlatformPostID: p.PostedIDs[pl], Skipped: true}
			continue
		}
		targets = append(targets, pl)
	}

	if len(targets) == 0 {
		// Every target is already live from a prior partial attempt. Move
		// the post to posted without touching the platforms again.
		machineOutcome := pipeline.PublishOutcome{PostedIDs: p.PostedIDs}
		if _, err := o.machine.CompletePublish(ctx, p, p.Version, machineOutcome); err != nil {
			return nil, err
		}
		out := buildOutcome(nil, results)
		out.Success = true
		return out, nil
	}

	mediaURLs := o.enhancer.Enhance(ctx, p.MediaURLs)
	normalized := platform.NormalizedPost{
		PostID:    p.ID,
		OrgID:     p.OrgID,
		Text:      p.Text,
		MediaURLs: mediaURLs,
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrency(len(targets)))
	for _, target := range targets {
		target := target
		g.Go(func() error {
			res := o.publishOne(gctx, normalized, target)
			mu.Lock()
			results[target] = res
			mu.Unlock()
			// Failures land in the result slot, never abort the group.
			return nil
		})
	}
	_ = g.Wait()

	outcome := buildOutcome(targets, results)

	machineOutcome := pipeline.PublishOutcome{
		PostedIDs: make(map[platform.Platform]string),
		Failures:  make(map[platform.Platform]string),
	}
	for _, pl := range targets {
		r := results[pl]
		if r.Success {
			machineOutcome.PostedIDs[pl] = r.PlatformPostID
		} else {
			machineOutcome.Failures[pl] = r.Error
		}
	}

	if _, err := o.machine.CompletePublish(ctx, p, p.Version, machineOutcome); err != nil {
		return outcome, err
	}
	return outcome, nil
}

func (o *Orchestrator) publishOne(ctx context.Context, post platform.NormalizedPost, target platform.Platform) PlatformResult {
	adapter, ok := o.adapters[target]
	if !ok {
		return PlatformResult{Error: fmt.Sprintf("no adapter registered for %s", target)}
	}
	creds, err := o.creds.CredentialsFor(ctx, post.OrgID, target)
	if err != nil {
		return PlatformResult{Error: fmt.Sprintf("no usable credentials: %v", err)}
	}

	res, err := withRetry(ctx, o.retry, func(ctx context.Context) (*platform.Result, error) {
		return adapter.Publish(ctx, post, creds)
	})
	if err != nil {
		o.log.Warn(ctx, "platform publish failed",
			"post_id", post.PostID, "platform", string(target), "error", err)
		return PlatformResult{Error: err.Error()}
	}

	o.log.Info(ctx, "platform publish succeeded",
		"post_id", post.PostID, "platform", string(target), "platform_post_id", res.PlatformPostID)
	return PlatformResult{Success: true, PlatformPostID: res.PlatformPostID, URL: res.URL}
}

func buildOutcome(targets []platform.Platform, results map[platform.Platform]PlatformResult) *Outcome {
	out := &Outcome{Results: results}
	out.Summary.Total = len(targets)
	for _, pl := range targets {
		if results[pl].Success {
			out.Summary.Succeeded++
		} else {
			out.Summary.Failed++
		}
	}
	out.Success = out.Summary.Failed == 0 && out.Summary.Total > 0
	return out
}

func maxConcurrency(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
