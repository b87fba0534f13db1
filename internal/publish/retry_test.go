package publish

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/postline/postline/internal/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry(maxRetries uint64) RetryConfig {
	return RetryConfig{MaxRetries: maxRetries, BaseDelay: time.Millisecond, Jitter: time.Millisecond}
}

func TestWithRetry_RetryableRunsMaxRetriesPlusOne(t *testing.T) {
	calls := 0
	_, err := withRetry(context.Background(), fastRetry(3), func(ctx context.Context) (*platform.Result, error) {
		calls++
		return nil, platform.RetryableErr(platform.Twitter, "publish", errors.New("rate limited"))
	})
	require.Error(t, err)
	assert.Equal(t, 4, calls)
}

func TestWithRetry_FatalStopsImmediately(t *testing.T) {
	calls := 0
	_, err := withRetry(context.Background(), fastRetry(5), func(ctx context.Context) (*platform.Result, error) {
		calls++
		return nil, platform.FatalErr(platform.Twitter, "publish", errors.New("bad credentials"))
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_PropagatesAdapterErrorUnchanged(t *testing.T) {
	original := platform.RetryableErr(platform.Instagram, "container-create", errors.New("rate limited"))
	_, err := withRetry(context.Background(), fastRetry(1), func(ctx context.Context) (*platform.Result, error) {
		return nil, original
	})
	var perr *platform.Error
	require.ErrorAs(t, err, &perr)
	assert.Same(t, original, perr)
}

func TestWithRetry_RecoversAfterTransientFailure(t *testing.T) {
	calls := 0
	res, err := withRetry(context.Background(), fastRetry(3), func(ctx context.Context) (*platform.Result, error) {
		calls++
		if calls < 3 {
			return nil, platform.RetryableErr(platform.Facebook, "publish", errors.New("throttled"))
		}
		return &platform.Result{Platform: platform.Facebook, PlatformPostID: "fb1"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, "fb1", res.PlatformPostID)
}

func TestWithRetry_FirstTrySuccess(t *testing.T) {
	calls := 0
	res, err := withRetry(context.Background(), fastRetry(3), func(ctx context.Context) (*platform.Result, error) {
		calls++
		return &platform.Result{Platform: platform.LinkedIn, PlatformPostID: "li1"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "li1", res.PlatformPostID)
}
