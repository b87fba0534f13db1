package models

import (
	"encoding/json"
	"time"

	"github.com/postline/postline/internal/platform"
)

// PlatformAccount holds one org's connection to one destination: the stored
// credential blob (decoded into a typed variant at the orchestrator boundary)
// plus behavioral hints surfaced to the setup UI. Lifecycle is owned by the
// setup wizard; the pipeline core only reads these rows.
type PlatformAccount struct {
	ID          string
	OrgID       string
	Platform    platform.Platform
	Credentials json.RawMessage
	Enabled     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
