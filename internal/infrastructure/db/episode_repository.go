package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jestelle/slash-podcast/internal/domain/episode"
)

// EpisodeRepository implements episode.Repository using sqlx.
type EpisodeRepository struct {
	db *sqlx.DB
}

// NewEpisodeRepository constructs the repo.
func NewEpisodeRepository(db *sqlx.DB) episode.Repository {
	return &EpisodeRepository{db: db}
}

func (r *EpisodeRepository) Create(ctx context.Context, ep *episode.Episode) error {
	query := `INSERT INTO episodes (id, title, source_kind, source_ref, status, transcript, audio_path, characters, error_detail, created_at, updated_at)
		VALUES (:id, :title, :source_kind, :source_ref, :status, :transcript, :audio_path, :characters, :error_detail, :created_at, :updated_at)`
	_, err := r.db.NamedExecContext(ctx, query, ep)
	return err
}

func (r *EpisodeRepository) Update(ctx context.Context, ep *episode.Episode) error {
	query := `UPDATE episodes SET title = :title, status = :status, transcript = :transcript,
		audio_path = :audio_path, characters = :characters, error_detail = :error_detail,
		updated_at = :updated_at WHERE id = :id`
	_, err := r.db.NamedExecContext(ctx, query, ep)
	return err
}

func (r *EpisodeRepository) GetByID(ctx context.Context, id uuid.UUID) (*episode.Episode, error) {
	var ep episode.Episode
	query := r.db.Rebind(`SELECT * FROM episodes WHERE id = ?`)
	err := r.db.GetContext(ctx, &ep, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, episode.ErrNotFound
		}
		return nil, err
	}
	return &ep, nil
}

func (r *EpisodeRepository) List(ctx context.Context, filter episode.Filter) ([]episode.Episode, int, error) {
	query := r.db.Rebind(`SELECT * FROM episodes ORDER BY created_at DESC LIMIT ? OFFSET ?`)
	episodes := []episode.Episode{}
	if err := r.db.SelectContext(ctx, &episodes, query, filter.Limit, filter.Offset); err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM episodes`); err != nil {
		return nil, 0, err
	}
	return episodes, total, nil
}

// ExpireBefore flips completed episodes older than cutoff to expired and
// returns them so the caller can remove their audio files. Select and
// update run in one transaction so an episode completing mid-sweep cannot
// be expired without being returned.
func (r *EpisodeRepository) ExpireBefore(ctx context.Context, cutoff time.Time) ([]episode.Episode, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	selectQuery := tx.Rebind(`SELECT * FROM episodes WHERE status = ? AND created_at < ?`)
	var expired []episode.Episode
	if err := tx.SelectContext(ctx, &expired, selectQuery, episode.StatusComplete, cutoff); err != nil {
		return nil, err
	}
	if len(expired) == 0 {
		return nil, nil
	}

	updateQuery := tx.Rebind(`UPDATE episodes SET status = ?, audio_path = '', updated_at = ? WHERE status = ? AND created_at < ?`)
	if _, err := tx.ExecContext(ctx, updateQuery, episode.StatusExpired, time.Now().UTC(), episode.StatusComplete, cutoff); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return expired, nil
}
