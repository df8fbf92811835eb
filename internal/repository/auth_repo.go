package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"thermostat_automation/internal/models"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Ensure implementation of Roles interface at compile time.
var _ Roles = (*UserRepository)(nil)

const selectUserRoleSQL = `SELECT role FROM users WHERE id = ?`

// IsAdmin reports whether userID holds the admin role. Unknown users are not admins.
func (r *UserRepository) IsAdmin(ctx context.Context, userID string) (bool, error) {
	var role string
	err := r.db.QueryRowContext(ctx, selectUserRoleSQL, userID).Scan(&role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("select role of user %q: %w", userID, err)
	}
	return role == models.RoleAdmin, nil
}
