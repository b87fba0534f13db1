package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/postline/postline/internal/common"
	"github.com/postline/postline/internal/dbx"
	"github.com/postline/postline/internal/platform"
	"github.com/postline/postline/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var _ Repository = (*PostgresRepository)(nil)

// Upsert keeps one row per (org, platform). Reconnecting a platform
// replaces the stored credentials.
func (r *PostgresRepository) Upsert(ctx context.Context, a *models.PlatformAccount) error {
	query := `
		INSERT INTO platform_accounts (id, org_id, platform, credentials, enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (org_id, platform) DO UPDATE SET
			credentials = EXCLUDED.credentials,
			enabled = EXCLUDED.enabled,
			updated_at = EXCLUDED.updated_at;
	`
	now := time.Now()
	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.OrgID, string(a.Platform), []byte(a.Credentials), a.Enabled, now)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	a.UpdatedAt = now
	return nil
}

func (r *PostgresRepository) GetEnabled(ctx context.Context, orgID string, p platform.Platform) (*models.PlatformAccount, error) {
	query := `
		SELECT id, org_id, platform, credentials, enabled, created_at, updated_at
		FROM platform_accounts
		WHERE org_id = $1 AND platform = $2 AND enabled;
	`
	a, err := scanAccount(r.db.QueryRowContext(ctx, query, orgID, string(p)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) ListByOrg(ctx context.Context, orgID string) ([]*models.PlatformAccount, error) {
	query := `
		SELECT id, org_id, platform, credentials, enabled, created_at, updated_at
		FROM platform_accounts
		WHERE org_id = $1
		ORDER BY platform;
	`
	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var accounts []*models.PlatformAccount
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return accounts, nil
}

func (r *PostgresRepository) SetEnabled(ctx context.Context, orgID string, p platform.Platform, enabled bool) error {
	query := `
		UPDATE platform_accounts SET enabled = $3, updated_at = $4
		WHERE org_id = $1 AND platform = $2;
	`
	res, err := r.db.ExecContext(ctx, query, orgID, string(p), enabled, time.Now())
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.PlatformAccount, error) {
	a := &models.PlatformAccount{}
	var pl string
	var creds []byte
	if err := row.Scan(&a.ID, &a.OrgID, &pl, &creds, &a.Enabled, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.Platform = platform.Platform(pl)
	a.Credentials = creds
	return a, nil
}
