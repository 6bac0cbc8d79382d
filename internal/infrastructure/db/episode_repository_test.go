package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/jestelle/slash-podcast/internal/config"
	"github.com/jestelle/slash-podcast/internal/domain/episode"
)

func newTestRepo(t *testing.T) episode.Repository {
	t.Helper()
	manager, err := Connect(context.Background(), config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          "file:" + filepath.Join(t.TempDir(), "episodes.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		AutoMigrate:  true,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = manager.Close() })
	return NewEpisodeRepository(manager.DB)
}

func newStoredEpisode(createdAt time.Time) *episode.Episode {
	return &episode.Episode{
		ID:         uuid.New(),
		Title:      "Stored Episode",
		SourceKind: episode.SourceGoogleDoc,
		SourceRef:  "1abc_DEF-123",
		Status:     episode.StatusPending,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
}

func TestEpisodeRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	ep := newStoredEpisode(time.Now().UTC())
	require.NoError(t, repo.Create(ctx, ep))

	loaded, err := repo.GetByID(ctx, ep.ID)
	require.NoError(t, err)
	require.Equal(t, ep.ID, loaded.ID)
	require.Equal(t, ep.Title, loaded.Title)
	require.Equal(t, episode.StatusPending, loaded.Status)

	ep.Status = episode.StatusComplete
	ep.Transcript = "female-1: Welcome.\n\n"
	ep.AudioPath = "/tmp/audio.mp3"
	ep.Characters = 8
	ep.UpdatedAt = time.Now().UTC()
	require.NoError(t, repo.Update(ctx, ep))

	loaded, err = repo.GetByID(ctx, ep.ID)
	require.NoError(t, err)
	require.Equal(t, episode.StatusComplete, loaded.Status)
	require.Equal(t, "/tmp/audio.mp3", loaded.AudioPath)
	require.Equal(t, 8, loaded.Characters)
}

func TestGetByIDNotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetByID(context.Background(), uuid.New())

	require.Error(t, err)
	require.True(t, errors.Is(err, episode.ErrNotFound))
}

func TestListNewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	older := newStoredEpisode(time.Now().UTC().Add(-time.Hour))
	older.Title = "Older"
	newer := newStoredEpisode(time.Now().UTC())
	newer.Title = "Newer"
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))

	episodes, total, err := repo.List(ctx, episode.Filter{Limit: 10})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, episodes, 2)
	require.Equal(t, "Newer", episodes[0].Title)

	episodes, total, err = repo.List(ctx, episode.Filter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, episodes, 1)
	require.Equal(t, "Older", episodes[0].Title)
}

func TestExpireBefore(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	old := newStoredEpisode(time.Now().UTC().Add(-48 * time.Hour))
	old.Status = episode.StatusComplete
	old.AudioPath = "/tmp/old.mp3"
	recent := newStoredEpisode(time.Now().UTC())
	recent.Status = episode.StatusComplete
	require.NoError(t, repo.Create(ctx, old))
	require.NoError(t, repo.Create(ctx, recent))

	expired, err := repo.ExpireBefore(ctx, time.Now().UTC().Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, expired, 1)
	require.Equal(t, old.ID, expired[0].ID)
	require.Equal(t, "/tmp/old.mp3", expired[0].AudioPath)

	loaded, err := repo.GetByID(ctx, old.ID)
	require.NoError(t, err)
	require.Equal(t, episode.StatusExpired, loaded.Status)
	require.Empty(t, loaded.AudioPath)

	loaded, err = repo.GetByID(ctx, recent.ID)
	require.NoError(t, err)
	require.Equal(t, episode.StatusComplete, loaded.Status)
}
