package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"thermostat_automation/internal/models"
)

type TokenSQLite struct {
	db *sql.DB
}

func NewTokenSQLite(db *sql.DB) *TokenSQLite { return &TokenSQLite{db: db} }

var _ TokenRepo = (*TokenSQLite)(nil)

const (
	selectTokenSQL = `
		SELECT owner_id, access_token, refresh_token, scope, expires_at, updated_at
		FROM owner_tokens WHERE owner_id = ?
	`

	swapTokenSQL = `
		UPDATE owner_tokens
		SET access_token = ?, refresh_token = ?, scope = ?, expires_at = ?, updated_at = ?
		WHERE owner_id = ? AND refresh_token = ?
	`
)

// Get returns the owner's token row, or (nil, nil) if the owner never linked the vendor account.
func (r *TokenSQLite) Get(ctx context.Context, ownerID string) (*models.OwnerToken, error) {
	var t models.OwnerToken
	err := r.db.QueryRowContext(ctx, selectTokenSQL, ownerID).Scan(
		&t.OwnerID,
		&t.AccessToken,
		&t.RefreshToken,
		&t.Scope,
		&t.ExpiresAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select token of owner %q: %w", ownerID, err)
	}
	t.ExpiresAt = t.ExpiresAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return &t, nil
}

// CompareAndSwap writes t only if the stored refresh token is still prevRefresh,
// so two writers consuming the same refresh token cannot both persist.
func (r *TokenSQLite) CompareAndSwap(ctx context.Context, prevRefresh string, t models.OwnerToken) (bool, error) {
	updated := t.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}
	res, err := r.db.ExecContext(ctx, swapTokenSQL,
		t.AccessToken,
		t.RefreshToken,
		t.Scope,
		t.ExpiresAt.UTC(),
		updated.UTC(),
		t.OwnerID,
		prevRefresh,
	)
	if err != nil {
		return false, fmt.Errorf("update token of owner %q: %w", t.OwnerID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected for owner %q: %w", t.OwnerID, err)
	}
	return n == 1, nil
}
