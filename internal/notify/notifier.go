// Package notify delivers pipeline change announcements to operators.
package notify

import (
	"context"

	"github.com/postline/postline/internal/logging"
	"github.com/postline/postline/internal/server/models"
)

// Notifier is told about pipeline status changes. Implementations must not
// block the caller for long and must never fail the operation that
// triggered the notification.
type Notifier interface {
	PipelineChanged(ctx context.Context, p *models.Post, from, to models.Status, detail string)
}

// LogNotifier writes every change to the application log.
type LogNotifier struct {
	log logging.Logger
}

func NewLogNotifier(log logging.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) PipelineChanged(ctx context.Context, p *models.Post, from, to models.Status, detail string) {
	n.log.Info(ctx, "pipeline status changed",
		"post_id", p.ID,
		"org_id", p.OrgID,
		"from", string(from),
		"to", string(to),
		"detail", detail,
	)
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) PipelineChanged(context.Context, *models.Post, models.Status, models.Status, string) {
}
