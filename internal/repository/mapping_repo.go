package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"thermostat_automation/internal/models"
)

type MappingSQLite struct {
	db *sql.DB
}

func NewMappingSQLite(db *sql.DB) *MappingSQLite { return &MappingSQLite{db: db} }

var _ MappingRepo = (*MappingSQLite)(nil)

const (
	mappingColumns = `id, owner_id, room_id, home_id, device_id, module_id, netatmo_room_id, netatmo_room_name`

	selectMappingByIDSQL     = `SELECT ` + mappingColumns + ` FROM room_mappings WHERE id = ?`
	selectMappingsByOwnerSQL = `SELECT ` + mappingColumns + ` FROM room_mappings WHERE owner_id = ? ORDER BY id ASC`
	selectAllMappingsSQL     = `SELECT ` + mappingColumns + ` FROM room_mappings ORDER BY owner_id ASC, id ASC`
	selectMappingOwnersSQL   = `SELECT DISTINCT owner_id FROM room_mappings ORDER BY owner_id ASC`
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMapping(row rowScanner) (models.RoomMapping, error) {
	var (
		m       models.RoomMapping
		extID   sql.NullString
		extName sql.NullString
	)
	if err := row.Scan(&m.ID, &m.OwnerID, &m.RoomID, &m.HomeID, &m.DeviceID, &m.ModuleID, &extID, &extName); err != nil {
		return models.RoomMapping{}, err
	}
	if extID.Valid {
		m.ExternalRoomID = &extID.String
	}
	if extName.Valid {
		m.ExternalRoomName = &extName.String
	}
	return m, nil
}

// Get returns the mapping with the given id, or (nil, nil) if it does not exist.
func (r *MappingSQLite) Get(ctx context.Context, id int64) (*models.RoomMapping, error) {
	m, err := scanMapping(r.db.QueryRowContext(ctx, selectMappingByIDSQL, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select mapping %d: %w", id, err)
	}
	return &m, nil
}

func (r *MappingSQLite) ListByOwner(ctx context.Context, ownerID string) ([]models.RoomMapping, error) {
	return r.list(ctx, selectMappingsByOwnerSQL, ownerID)
}

func (r *MappingSQLite) ListAll(ctx context.Context) ([]models.RoomMapping, error) {
	return r.list(ctx, selectAllMappingsSQL)
}

func (r *MappingSQLite) list(ctx context.Context, q string, args ...any) ([]models.RoomMapping, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("select mappings: %w", err)
	}
	defer rows.Close()

	out := make([]models.RoomMapping, 0, 16)
	for rows.Next() {
		m, err := scanMapping(rows)
		if err != nil {
			return nil, fmt.Errorf("scan mapping: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListOwners returns every owner with at least one room mapping.
func (r *MappingSQLite) ListOwners(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, selectMappingOwnersSQL)
	if err != nil {
		return nil, fmt.Errorf("select owners: %w", err)
	}
	defer rows.Close()

	var owners []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		owners = append(owners, id)
	}
	return owners, rows.Err()
}
