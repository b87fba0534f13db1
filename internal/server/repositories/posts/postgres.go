package posts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/postline/postline/internal/common"
	"github.com/postline/postline/internal/dbx"
	"github.com/postline/postline/internal/platform"
	"github.com/postline/postline/internal/server/models"
)

// PostgresRepository implements post storage over a dbx.DBTX (*sql.DB or
// *sql.Tx). Set-valued fields (platforms, media urls, posted ids) are stored
// as JSONB.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const postColumns = `id, org_id, version, post_text, platforms, media_urls, content_hash,
		status, posted_ids, notes, scheduled_for, created_at, updated_at, approved_at, published_at`

func (r *PostgresRepository) Create(ctx context.Context, p *models.Post) error {
	query := `
		INSERT INTO posts (` + postColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	platforms, mediaURLs, postedIDs, err := marshalSets(p)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, query,
		p.ID, p.OrgID, p.Version, p.Text, platforms, mediaURLs, p.ContentHash,
		string(p.Status), postedIDs, p.Notes, p.ScheduledFor,
		p.CreatedAt, p.UpdatedAt, p.ApprovedAt, p.PublishedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// UpdateConditional writes the row only when the stored version matches
// expectedVersion. The version bump is part of the same statement, so the
// bump can never be skipped while the write succeeds.
func (r *PostgresRepository) UpdateConditional(ctx context.Context, p *models.Post, expectedVersion int64) error {
	query := `
		UPDATE posts SET
			post_text = $3,
			platforms = $4,
			media_urls = $5,
			content_hash = $6,
			status = $7,
			posted_ids = $8,
			notes = $9,
			scheduled_for = $10,
			approved_at = $11,
			published_at = $12,
			updated_at = $13,
			version = version + 1
		WHERE id = $1 AND version = $2;
	`
	platforms, mediaURLs, postedIDs, err := marshalSets(p)
	if err != nil {
		return err
	}
	now := time.Now()
	res, err := r.db.ExecContext(ctx, query,
		p.ID, expectedVersion, p.Text, platforms, mediaURLs, p.ContentHash,
		string(p.Status), postedIDs, p.Notes, p.ScheduledFor,
		p.ApprovedAt, p.PublishedAt, now)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		p.Version = expectedVersion + 1
		p.UpdatedAt = now
		return nil
	case 0:
		return common.ErrVersionConflict
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	p, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select post: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) FindByContentHash(ctx context.Context, orgID, hash, excludeID string) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts
		WHERE org_id = $1 AND content_hash = $2 AND id <> $3`
	return r.selectPosts(ctx, query, orgID, hash, excludeID)
}

func (r *PostgresRepository) ListRecent(ctx context.Context, orgID string, since time.Time) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts
		WHERE org_id = $1 AND updated_at >= $2`
	return r.selectPosts(ctx, query, orgID, since)
}

func (r *PostgresRepository) ListDue(ctx context.Context, orgID string, now time.Time) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts
		WHERE org_id = $1 AND status = 'approved' AND scheduled_for IS NOT NULL AND scheduled_for <= $2`
	return r.selectPosts(ctx, query, orgID, now)
}

func (r *PostgresRepository) selectPosts(ctx context.Context, query string, args ...any) ([]*models.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select posts: %w", err)
	}
	defer rows.Close()

	var result []*models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*models.Post, error) {
	var (
		p         models.Post
		status    string
		platforms []byte
		mediaURLs []byte
		postedIDs []byte
	)
	err := row.Scan(
		&p.ID, &p.OrgID, &p.Version, &p.Text, &platforms, &mediaURLs, &p.ContentHash,
		&status, &postedIDs, &p.Notes, &p.ScheduledFor,
		&p.CreatedAt, &p.UpdatedAt, &p.ApprovedAt, &p.PublishedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Status = models.Status(status)
	if err := unmarshalSets(&p, platforms, mediaURLs, postedIDs); err != nil {
		return nil, err
	}
	return &p, nil
}

func marshalSets(p *models.Post) (platforms, mediaURLs, postedIDs []byte, err error) {
	if platforms, err = json.Marshal(p.Platforms); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal platforms: %w", err)
	}
	if mediaURLs, err = json.Marshal(p.MediaURLs); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal media urls: %w", err)
	}
	if postedIDs, err = json.Marshal(p.PostedIDs); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal posted ids: %w", err)
	}
	return platforms, mediaURLs, postedIDs, nil
}

func unmarshalSets(p *models.Post, platforms, mediaURLs, postedIDs []byte) error {
	if len(platforms) > 0 {
		if err := json.Unmarshal(platforms, &p.Platforms); err != nil {
			return fmt.Errorf("unmarshal platforms: %w", err)
		}
	}
	if len(mediaURLs) > 0 {
		if err := json.Unmarshal(mediaURLs, &p.MediaURLs); err != nil {
			return fmt.Errorf("unmarshal media urls: %w", err)
		}
	}
	if len(postedIDs) > 0 {
		if err := json.Unmarshal(postedIDs, &p.PostedIDs); err != nil {
			return fmt.Errorf("unmarshal posted ids: %w", err)
		}
	}
	if p.PostedIDs == nil {
		p.PostedIDs = map[platform.Platform]string{}
	}
	return nil
}
