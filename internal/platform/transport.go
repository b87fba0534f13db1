package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// restClient is the shared HTTP plumbing for adapters. It classifies every
// failure into the retryable/fatal taxonomy so adapters only deal with
// *Error values.
type restClient struct {
	http *http.Client
}

func newRESTClient(c *http.Client) *restClient {
	if c == nil {
		c = &http.Client{Timeout: 30 * time.Second}
	}
	return &restClient{http: c}
}

type apiError struct {
	Message string `json:"message"`
	Error   struct {
		Message string `json:"message"`
	} `json:"error"`
}

// doJSON sends body (if non-nil) as JSON and decodes a 2xx response into out
// (if non-nil). Non-2xx responses and transport failures come back as *Error.
func (c *restClient) doJSON(ctx context.Context, p Platform, op, method, url string, headers map[string]string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return FatalErr(p, op, fmt.Errorf("encode request: %w", err))
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return FatalErr(p, op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Timeouts and network errors are transient for a single attempt.
		return RetryableErr(p, op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return RetryableErr(p, op, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := fmt.Errorf("status %d: %s", resp.StatusCode, errorMessage(raw))
		if retryableStatus(resp.StatusCode) {
			return RetryableErr(p, op, err)
		}
		return FatalErr(p, op, err)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return FatalErr(p, op, fmt.Errorf("decode response: %w", err))
		}
	}
	return nil
}

// retryableStatus: rate limits, request timeouts and server-side errors are
// worth another attempt; every other non-2xx is a platform rejection.
func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusRequestTimeout ||
		code >= 500
}

func errorMessage(raw []byte) string {
	var e apiError
	if err := json.Unmarshal(raw, &e); err == nil {
		if e.Error.Message != "" {
			return e.Error.Message
		}
		if e.Message != "" {
			return e.Message
		}
	}
	s := string(raw)
	if len(s) > 200 {
		s = s[:200]
	}
	if s == "" {
		s = "no response body"
	}
	return s
}
