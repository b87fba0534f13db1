package accounts

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/postline/postline/internal/common"
	"github.com/postline/postline/internal/platform"
	"github.com/postline/postline/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedAccount(t *testing.T, repo Repository, p platform.Platform, enabled bool, creds any) {
	t.Helper()
	raw, err := json.Marshal(creds)
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(context.Background(), &models.PlatformAccount{
		ID:          "acct-" + string(p),
		OrgID:       "org1",
		Platform:    p,
		Credentials: raw,
		Enabled:     enabled,
		CreatedAt:   time.Now(),
	}))
}

func TestInMemory_GetEnabled(t *testing.T) {
	repo := NewInMemoryRepository()
	seedAccount(t, repo, platform.Facebook, true,
		platform.FacebookCredentials{PageID: "pg", PageToken: "tok"})
	seedAccount(t, repo, platform.Twitter, false,
		platform.TwitterCredentials{ConsumerKey: "ck"})

	a, err := repo.GetEnabled(context.Background(), "org1", platform.Facebook)
	require.NoError(t, err)
	assert.Equal(t, platform.Facebook, a.Platform)

	_, err = repo.GetEnabled(context.Background(), "org1", platform.Twitter)
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = repo.GetEnabled(context.Background(), "org2", platform.Facebook)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestInMemory_UpsertReplacesCredentials(t *testing.T) {
	repo := NewInMemoryRepository()
	seedAccount(t, repo, platform.Facebook, true,
		platform.FacebookCredentials{PageID: "pg", PageToken: "old"})
	seedAccount(t, repo, platform.Facebook, true,
		platform.FacebookCredentials{PageID: "pg", PageToken: "new"})

	a, err := repo.GetEnabled(context.Background(), "org1", platform.Facebook)
	require.NoError(t, err)

	var fc platform.FacebookCredentials
	require.NoError(t, json.Unmarshal(a.Credentials, &fc))
	assert.Equal(t, "new", fc.PageToken)

	list, err := repo.ListByOrg(context.Background(), "org1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestInMemory_SetEnabled(t *testing.T) {
	repo := NewInMemoryRepository()
	seedAccount(t, repo, platform.Facebook, true,
		platform.FacebookCredentials{PageID: "pg", PageToken: "tok"})

	require.NoError(t, repo.SetEnabled(context.Background(), "org1", platform.Facebook, false))
	_, err := repo.GetEnabled(context.Background(), "org1", platform.Facebook)
	assert.ErrorIs(t, err, common.ErrNotFound)

	err = repo.SetEnabled(context.Background(), "org1", platform.Nextdoor, true)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSource_DecodesTypedCredentials(t *testing.T) {
	repo := NewInMemoryRepository()
	seedAccount(t, repo, platform.Twitter, true, platform.TwitterCredentials{
		ConsumerKey:       "ck",
		ConsumerSecret:    "cs",
		AccessToken:       "at",
		AccessTokenSecret: "as",
	})

	src := NewSource(repo)
	creds, err := src.CredentialsFor(context.Background(), "org1", platform.Twitter)
	require.NoError(t, err)

	tc, ok := creds.(platform.TwitterCredentials)
	require.True(t, ok)
	assert.Equal(t, "ck", tc.ConsumerKey)
	assert.Equal(t, platform.Twitter, creds.Platform())
}

func TestSource_MissingAccount(t *testing.T) {
	src := NewSource(NewInMemoryRepository())
	_, err := src.CredentialsFor(context.Background(), "org1", platform.Twitter)
	assert.ErrorIs(t, err, common.ErrNotFound)
}
