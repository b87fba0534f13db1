package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/postline/postline/internal/common"
	"github.com/postline/postline/internal/platform"
	"github.com/postline/postline/internal/server/models"
)

// SQLiteRepository stores platform accounts over sqlx for single-box
// deployments. The credential blob is kept as JSON text.
type SQLiteRepository struct {
	db *sqlx.DB
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(db *sqlx.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

type accountRow struct {
	ID          string    `db:"id"`
	OrgID       string    `db:"org_id"`
	Platform    string    `db:"platform"`
	Credentials string    `db:"credentials"`
	Enabled     bool      `db:"enabled"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r accountRow) toModel() *models.PlatformAccount {
	return &models.PlatformAccount{
		ID:          r.ID,
		OrgID:       r.OrgID,
		Platform:    platform.Platform(r.Platform),
		Credentials: []byte(r.Credentials),
		Enabled:     r.Enabled,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, a *models.PlatformAccount) error {
	query := `
		INSERT INTO platform_accounts (id, org_id, platform, credentials, enabled, created_at, updated_at)
		VALUES (:id, :org_id, :platform, :credentials, :enabled, :created_at, :updated_at)
		ON CONFLICT (org_id, platform) DO UPDATE SET
			credentials = excluded.credentials,
			enabled = excluded.enabled,
			updated_at = excluded.updated_at;
	`
	now := time.Now()
	_, err := r.db.NamedExecContext(ctx, query, map[string]any{
		"id":          a.ID,
		"org_id":      a.OrgID,
		"platform":    string(a.Platform),
		"credentials": string(a.Credentials),
		"enabled":     a.Enabled,
		"created_at":  a.CreatedAt,
		"updated_at":  now,
	})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	a.UpdatedAt = now
	return nil
}

func (r *SQLiteRepository) GetEnabled(ctx context.Context, orgID string, p platform.Platform) (*models.PlatformAccount, error) {
	query := `
		SELECT id, org_id, platform, credentials, enabled, created_at, updated_at
		FROM platform_accounts
		WHERE org_id = ? AND platform = ? AND enabled;
	`
	var row accountRow
	err := r.db.GetContext(ctx, &row, query, orgID, string(p))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return row.toModel(), nil
}

func (r *SQLiteRepository) ListByOrg(ctx context.Context, orgID string) ([]*models.PlatformAccount, error) {
	query := `
		SELECT id, org_id, platform, credentials, enabled, created_at, updated_at
		FROM platform_accounts
		WHERE org_id = ?
		ORDER BY platform;
	`
	var rows []accountRow
	if err := r.db.SelectContext(ctx, &rows, query, orgID); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	accounts := make([]*models.PlatformAccount, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, row.toModel())
	}
	return accounts, nil
}

func (r *SQLiteRepository) SetEnabled(ctx context.Context, orgID string, p platform.Platform, enabled bool) error {
	query := `
		UPDATE platform_accounts SET enabled = ?, updated_at = ?
		WHERE org_id = ? AND platform = ?;
	`
	res, err := r.db.ExecContext(ctx, query, enabled, time.Now(), orgID, string(p))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
