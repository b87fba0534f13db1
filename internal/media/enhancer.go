// Package media handles asset storage and best-effort image enhancement.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/postline/postline/internal/logging"
)

// Enhancer optionally improves a post's media before publishing. Enhancement
// is best effort, implementations return the original URLs on any failure.
type Enhancer interface {
	Enhance(ctx context.Context, mediaURLs []string) []string
}

// NoopEnhancer returns the input untouched.
type NoopEnhancer struct{}

func (NoopEnhancer) Enhance(_ context.Context, mediaURLs []string) []string { return mediaURLs }

// HTTPEnhancer calls an external enhancement service. A non-200 response or
// any transport error falls back to the original media.
type HTTPEnhancer struct {
	endpoint string
	http     *http.Client
	log      logging.Logger
}

func NewHTTPEnhancer(endpoint string, client *http.Client, log logging.Logger) *HTTPEnhancer {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPEnhancer{endpoint: endpoint, http: client, log: log}
}

func (e *HTTPEnhancer) Enhance(ctx context.Context, mediaURLs []string) []string {
	if len(mediaURLs) == 0 {
		return mediaURLs
	}
	enhanced, err := e.call(ctx, mediaURLs)
	if err != nil {
		e.log.Warn(ctx, "media enhancement failed, using original media", "error", err)
		return mediaURLs
	}
	if len(enhanced) != len(mediaURLs) {
		e.log.Warn(ctx, "enhancer returned wrong media count, using original media",
			"want", len(mediaURLs), "got", len(enhanced))
		return mediaURLs
	}
	return enhanced
}

func (e *HTTPEnhancer) call(ctx context.Context, mediaURLs []string) ([]string, error) {
	body, err := json.Marshal(map[string]any{"mediaUrls": mediaURLs})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("enhancer returned status %d", resp.StatusCode)
	}

	var out struct {
		MediaURLs []string `json:"mediaUrls"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return nil, err
	}
	return out.MediaURLs, nil
}
