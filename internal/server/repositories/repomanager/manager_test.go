package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postline/postline/internal/common"
	"github.com/postline/postline/internal/platform"
	"github.com/postline/postline/internal/server/models"
)

func TestNewFromDSN_SelectsBackend(t *testing.T) {
	tests := []struct {
		name string
		dsn  string
		want any
	}{
		{"empty selects in-memory", "", &InMemoryRepositoryManager{}},
		{"memory keyword", "memory", &InMemoryRepositoryManager{}},
		{"postgres url", "postgres://u:p@localhost:5432/postline", &PostgresRepositoryManager{}},
		{"postgresql url", "postgresql://u:p@localhost:5432/postline", &PostgresRepositoryManager{}},
		{"file path selects sqlite", "postline.db", &SQLiteRepositoryManager{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewFromDSN(tt.dsn)
			require.NoError(t, err)
			defer m.Close()
			assert.IsType(t, tt.want, m)
		})
	}
}

func TestInMemoryManager_VendsWorkingRepos(t *testing.T) {
	m := NewInMemoryRepositoryManager()
	require.NoError(t, m.RunMigrations(context.Background()))
	assert.NotNil(t, m.Posts())
	assert.NotNil(t, m.Accounts())
	assert.NoError(t, m.Close())
}

func TestSQLiteManager_PostRoundTrip(t *testing.T) {
	m, err := NewSQLiteRepositoryManager(":memory:")
	require.NoError(t, err)
	defer m.Close()
	require.NoError(t, m.RunMigrations(context.Background()))

	repo := m.Posts()
	p := &models.Post{
		ID:          "p1",
		OrgID:       "org1",
		Version:     1,
		Text:        "Come see the new autumn menu",
		Platforms:   []platform.Platform{platform.Facebook, platform.Twitter},
		ContentHash: "abc123",
		Status:      models.StatusIdea,
		PostedIDs:   map[platform.Platform]string{},
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	require.NoError(t, repo.Create(context.Background(), p))

	got, err := repo.GetByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, p.Text, got.Text)
	assert.Equal(t, []platform.Platform{platform.Facebook, platform.Twitter}, got.Platforms)
	assert.Equal(t, int64(1), got.Version)

	got.Status = models.StatusIdeaApproved
	require.NoError(t, repo.UpdateConditional(context.Background(), got, 1))
	assert.Equal(t, int64(2), got.Version)

	stale := got.Clone()
	stale.Text = "edited elsewhere"
	err = repo.UpdateConditional(context.Background(), stale, 1)
	assert.ErrorIs(t, err, common.ErrVersionConflict)
}

func TestSQLiteManager_RunMigrationsError(t *testing.T) {
	orig := gooseUpContext
	defer func() { gooseUpContext = orig }()
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("migrate-fail")
	}

	m, err := NewSQLiteRepositoryManager("file:repomanager_tests?mode=memory&cache=shared")
	require.NoError(t, err)
	defer m.Close()

	err = m.RunMigrations(context.Background())
	assert.EqualError(t, err, "migrate-fail")
}
