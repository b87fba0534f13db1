package posts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/postline/postline/internal/common"
	"github.com/postline/postline/internal/server/models"
)

// SQLiteRepository implements post storage over sqlx for single-box
// deployments. Same conditional-write contract as Postgres; set-valued
// fields are stored as JSON text.
type SQLiteRepository struct {
	db *sqlx.DB
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(db *sqlx.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

type postRow struct {
	ID           string       `db:"id"`
	OrgID        string       `db:"org_id"`
	Version      int64        `db:"version"`
	Text         string       `db:"post_text"`
	Platforms    string       `db:"platforms"`
	MediaURLs    string       `db:"media_urls"`
	ContentHash  string       `db:"content_hash"`
	Status       string       `db:"status"`
	PostedIDs    string       `db:"posted_ids"`
	Notes        string       `db:"notes"`
	ScheduledFor sql.NullTime `db:"scheduled_for"`
	CreatedAt    time.Time    `db:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at"`
	ApprovedAt   sql.NullTime `db:"approved_at"`
	PublishedAt  sql.NullTime `db:"published_at"`
}

func toRow(p *models.Post) (map[string]any, error) {
	platforms, mediaURLs, postedIDs, err := marshalSets(p)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"id":            p.ID,
		"org_id":        p.OrgID,
		"version":       p.Version,
		"post_text":     p.Text,
		"platforms":     string(platforms),
		"media_urls":    string(mediaURLs),
		"content_hash":  p.ContentHash,
		"status":        string(p.Status),
		"posted_ids":    string(postedIDs),
		"notes":         p.Notes,
		"scheduled_for": nullableTime(p.ScheduledFor),
		"created_at":    p.CreatedAt,
		"updated_at":    p.UpdatedAt,
		"approved_at":   nullableTime(p.ApprovedAt),
		"published_at":  nullableTime(p.PublishedAt),
	}, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func (row *postRow) toModel() (*models.Post, error) {
	p := models.Post{
		ID:           row.ID,
		OrgID:        row.OrgID,
		Version:      row.Version,
		Text:         row.Text,
		ContentHash:  row.ContentHash,
		Status:       models.Status(row.Status),
		Notes:        row.Notes,
		ScheduledFor: timePtr(row.ScheduledFor),
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
		ApprovedAt:   timePtr(row.ApprovedAt),
		PublishedAt:  timePtr(row.PublishedAt),
	}
	if err := unmarshalSets(&p, []byte(row.Platforms), []byte(row.MediaURLs), []byte(row.PostedIDs)); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *SQLiteRepository) Create(ctx context.Context, p *models.Post) error {
	args, err := toRow(p)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO posts (id, org_id, version, post_text, platforms, media_urls, content_hash,
			status, posted_ids, notes, scheduled_for, created_at, updated_at, approved_at, published_at)
		VALUES (:id, :org_id, :version, :post_text, :platforms, :media_urls, :content_hash,
			:status, :posted_ids, :notes, :scheduled_for, :created_at, :updated_at, :approved_at, :published_at)
	`
	if _, err := r.db.NamedExecContext(ctx, query, args); err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpdateConditional(ctx context.Context, p *models.Post, expectedVersion int64) error {
	args, err := toRow(p)
	if err != nil {
		return err
	}
	now := time.Now()
	args["updated_at"] = now
	args["expected_version"] = expectedVersion

	query := `
		UPDATE posts SET
			post_text = :post_text, platforms = :platforms, media_urls = :media_urls,
			content_hash = :content_hash, status = :status, posted_ids = :posted_ids,
			notes = :notes, scheduled_for = :scheduled_for, approved_at = :approved_at,
			published_at = :published_at, updated_at = :updated_at,
			version = version + 1
		WHERE id = :id AND version = :expected_version
	`
	res, err := r.db.NamedExecContext(ctx, query, args)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
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

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	var row postRow
	if err := r.db.GetContext(ctx, &row, `SELECT * FROM posts WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	return row.toModel()
}

func (r *SQLiteRepository) FindByContentHash(ctx context.Context, orgID, hash, excludeID string) ([]*models.Post, error) {
	return r.selectPosts(ctx,
		`SELECT * FROM posts WHERE org_id = ? AND content_hash = ? AND id <> ?`,
		orgID, hash, excludeID)
}

func (r *SQLiteRepository) ListRecent(ctx context.Context, orgID string, since time.Time) ([]*models.Post, error) {
	return r.selectPosts(ctx,
		`SELECT * FROM posts WHERE org_id = ? AND updated_at >= ?`,
		orgID, since)
}

func (r *SQLiteRepository) ListDue(ctx context.Context, orgID string, now time.Time) ([]*models.Post, error) {
	return r.selectPosts(ctx,
		`SELECT * FROM posts WHERE org_id = ? AND status = 'approved'
			AND scheduled_for IS NOT NULL AND scheduled_for <= ?`,
		orgID, now)
}

func (r *SQLiteRepository) selectPosts(ctx context.Context, query string, args ...any) ([]*models.Post, error) {
	var rows []postRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select posts: %w", err)
	}
	out := make([]*models.Post, 0, len(rows))
	for i := range rows {
		p, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
