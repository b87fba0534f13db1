package pipeline

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/postline/postline/internal/common"
	"github.com/postline/postline/internal/logging"
	"github.com/postline/postline/internal/notify"
	"github.com/postline/postline/internal/platform"
	"github.com/postline/postline/internal/server/models"
	"github.com/postline/postline/internal/server/repositories/posts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestMachine() (*Machine, *posts.InMemoryRepository) {
	repo := posts.NewInMemoryRepository()
	m := NewMachine(repo, notify.NopNotifier{}, testLogger())
	return m, repo
}

func seedPost(t *testing.T, repo *posts.InMemoryRepository, status models.Status, mediaURLs ...string) *models.Post {
	t.Helper()
	p := &models.Post{
		ID:        "p-" + string(status),
		OrgID:     "org1",
		Version:   1,
		Text:      "Grand opening this Saturday, come say hi",
		Platforms: []platform.Platform{platform.Facebook, platform.Twitter},
		MediaURLs: mediaURLs,
		Status:    status,
		PostedIDs: map[platform.Platform]string{},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func TestApproveIdea_BumpsVersionByOne(t *testing.T) {
	m, repo := newTestMachine()
	seeded := seedPost(t, repo, models.StatusIdea)

	p, err := m.ApproveIdea(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusIdeaApproved, p.Status)
	assert.Equal(t, seeded.Version+1, p.Version)
}

func TestApprove_SetsApprovedAt(t *testing.T) {
	m, repo := newTestMachine()
	seeded := seedPost(t, repo, models.StatusIdeaApproved)

	p, err := m.Approve(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, p.Status)
	require.NotNil(t, p.ApprovedAt)
}

func TestApprovePhotos_RequiresMedia(t *testing.T) {
	m, repo := newTestMachine()
	seeded := seedPost(t, repo, models.StatusPhotoReview)

	_, err := m.ApprovePhotos(context.Background(), seeded.ID)
	assert.ErrorIs(t, err, common.ErrValidation)

	stored, err := repo.GetByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPhotoReview, stored.Status)
	assert.Equal(t, seeded.Version, stored.Version)
}

func TestApprovePhotos_WithMedia(t *testing.T) {
	m, repo := newTestMachine()
	seeded := seedPost(t, repo, models.StatusPhotoReview, "https://cdn.example.com/a.jpg")

	p, err := m.ApprovePhotos(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, p.Status)
	require.NotNil(t, p.ApprovedAt)
}

func TestApprovePhotos_RejectsWrongStage(t *testing.T) {
	m, repo := newTestMachine()
	seeded := seedPost(t, repo, models.StatusIdea, "https://cdn.example.com/a.jpg")

	_, err := m.ApprovePhotos(context.Background(), seeded.ID)
	assert.ErrorIs(t, err, common.ErrInvalidTransition)
}

func TestInvalidTransition_LeavesPostUnchanged(t *testing.T) {
	m, repo := newTestMachine()
	seeded := seedPost(t, repo, models.StatusIdea)

	_, err := m.StartGeneration(context.Background(), seeded.ID)
	assert.ErrorIs(t, err, common.ErrInvalidTransition)

	stored, err := repo.GetByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusIdea, stored.Status)
	assert.Equal(t, seeded.Version, stored.Version)
}

func TestAttachGeneratedMedia(t *testing.T) {
	m, repo := newTestMachine()
	seeded := seedPost(t, repo, models.StatusGenerating)

	p, err := m.AttachGeneratedMedia(context.Background(), seeded.ID, []string{"https://cdn.example.com/gen.jpg"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPhotoReview, p.Status)
	assert.Equal(t, []string{"https://cdn.example.com/gen.jpg"}, p.MediaURLs)

	_, err = m.AttachGeneratedMedia(context.Background(), seeded.ID, nil)
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestReject_AppendsReasonToNotes(t *testing.T) {
	m, repo := newTestMachine()
	seeded := seedPost(t, repo, models.StatusPhotoReview)

	p, err := m.Reject(context.Background(), seeded.ID, "wrong campaign")
	require.NoError(t, err)
	assert.Equal(t, models.StatusIdea, p.Status)
	assert.Contains(t, p.Notes, "rejected: wrong campaign")
}

func TestReject_PostStillInIdea(t *testing.T) {
	m, repo := newTestMachine()
	seeded := seedPost(t, repo, models.StatusIdea)

	p, err := m.Reject(context.Background(), seeded.ID, "not on brand")
	require.NoError(t, err)
	assert.Equal(t, models.StatusIdea, p.Status)
	assert.Equal(t, seeded.Version+1, p.Version)
	assert.Contains(t, p.Notes, "rejected: not on brand")
}

func TestSchedule_OnlyApprovedPosts(t *testing.T) {
	m, repo := newTestMachine()
	approved := seedPost(t, repo, models.StatusApproved)
	idea := &models.Post{ID: "idea1", OrgID: "org1", Version: 1, Status: models.StatusIdea}
	require.NoError(t, repo.Create(context.Background(), idea))

	at := time.Now().Add(2 * time.Hour)
	p, err := m.Schedule(context.Background(), approved.ID, at)
	require.NoError(t, err)
	require.NotNil(t, p.ScheduledFor)
	assert.Equal(t, at.UTC().Unix(), p.ScheduledFor.Unix())
	assert.Equal(t, models.StatusApproved, p.Status)

	_, err = m.Schedule(context.Background(), idea.ID, at)
	assert.ErrorIs(t, err, common.ErrInvalidTransition)

	p, err = m.Schedule(context.Background(), approved.ID, time.Time{})
	require.NoError(t, err)
	assert.Nil(t, p.ScheduledFor)
}

func TestStaleVersionIsRejected(t *testing.T) {
	_, repo := newTestMachine()
	seeded := seedPost(t, repo, models.StatusIdea)

	// A concurrent editor wins the race.
	winner := seeded.Clone()
	require.NoError(t, repo.UpdateConditional(context.Background(), winner, seeded.Version))

	stale := seeded.Clone()
	stale.Status = models.StatusIdeaApproved
	err := repo.UpdateConditional(context.Background(), stale, seeded.Version)
	assert.ErrorIs(t, err, common.ErrVersionConflict)
}

func TestBulkMove_PartialFailure(t *testing.T) {
	m, repo := newTestMachine()
	ok := seedPost(t, repo, models.StatusIdea)
	bad := &models.Post{ID: "bad1", OrgID: "org1", Version: 1, Status: models.StatusGenerating}
	require.NoError(t, repo.Create(context.Background(), bad))

	results := m.BulkMove(context.Background(), []string{ok.ID, bad.ID, "missing"}, models.StatusIdeaApproved)
	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, common.ErrInvalidTransition)
	assert.ErrorIs(t, results[2].Err, common.ErrNotFound)

	moved, err := repo.GetByID(context.Background(), ok.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusIdeaApproved, moved.Status)
}

func TestBulkMove_RefusesPublishOutcomes(t *testing.T) {
	m, repo := newTestMachine()
	seeded := seedPost(t, repo, models.StatusApproved)

	for _, to := range []models.Status{models.StatusPosted, models.StatusFailed} {
		results := m.BulkMove(context.Background(), []string{seeded.ID}, to)
		require.Len(t, results, 1)
		assert.ErrorIs(t, results[0].Err, common.ErrInvalidTransition)
	}
}

func TestCompletePublish_PartialSuccess(t *testing.T) {
	m, repo := newTestMachine()
	seeded := seedPost(t, repo, models.StatusApproved)

	loaded, err := repo.GetByID(context.Background(), seeded.ID)
	require.NoError(t, err)

	p, err := m.CompletePublish(context.Background(), loaded, loaded.Version, PublishOutcome{
		PostedIDs: map[platform.Platform]string{platform.Facebook: "fb123"},
		Failures:  map[platform.Platform]string{platform.Twitter: "rate limited"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPosted, p.Status)
	assert.Equal(t, "fb123", p.PostedIDs[platform.Facebook])
	assert.Contains(t, p.Notes, "publish to twitter failed: rate limited")
	require.NotNil(t, p.PublishedAt)
}

func TestCompletePublish_AllFailed(t *testing.T) {
	m, repo := newTestMachine()
	seeded := seedPost(t, repo, models.StatusApproved)

	loaded, err := repo.GetByID(context.Background(), seeded.ID)
	require.NoError(t, err)

	p, err := m.CompletePublish(context.Background(), loaded, loaded.Version, PublishOutcome{
		Failures: map[platform.Platform]string{
			platform.Facebook: "bad credentials",
			platform.Twitter:  "bad credentials",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, p.Status)
	assert.Nil(t, p.PublishedAt)
	assert.Empty(t, p.PostedIDs)
}

func TestCompletePublish_NeverErasesPriorPostedIDs(t *testing.T) {
	m, repo := newTestMachine()
	seeded := seedPost(t, repo, models.StatusFailed)
	seeded.PostedIDs = map[platform.Platform]string{platform.Facebook: "fb-old"}
	require.NoError(t, repo.UpdateConditional(context.Background(), seeded, 1))

	// Retry the failed platform after re-approval.
	loaded, err := repo.GetByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	loaded.Status = models.StatusApproved
	require.NoError(t, repo.UpdateConditional(context.Background(), loaded, loaded.Version))

	p, err := m.CompletePublish(context.Background(), loaded, loaded.Version, PublishOutcome{
		PostedIDs: map[platform.Platform]string{platform.Twitter: "tw-new"},
	})
	require.NoError(t, err)
	assert.Equal(t, "fb-old", p.PostedIDs[platform.Facebook])
	assert.Equal(t, "tw-new", p.PostedIDs[platform.Twitter])
}

func TestCompletePublish_StaleVersion(t *testing.T) {
	m, repo := newTestMachine()
	seeded := seedPost(t, repo, models.StatusApproved)

	loaded, err := repo.GetByID(context.Background(), seeded.ID)
	require.NoError(t, err)

	// Someone edits the post while publishing is in flight.
	editor := loaded.Clone()
	editor.Text = "edited mid publish"
	require.NoError(t, repo.UpdateConditional(context.Background(), editor, loaded.Version))

	_, err = m.CompletePublish(context.Background(), loaded, loaded.Version, PublishOutcome{
		PostedIDs: map[platform.Platform]string{platform.Facebook: "fb123"},
	})
	assert.ErrorIs(t, err, common.ErrVersionConflict)
}
