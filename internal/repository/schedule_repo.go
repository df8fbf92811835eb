package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"thermostat_automation/internal/models"

	"github.com/google/uuid"
)

type ScheduleSQLite struct {
	db *sql.DB
}

func NewScheduleSQLite(db *sql.DB) *ScheduleSQLite { return &ScheduleSQLite{db: db} }

var _ ScheduleRepo = (*ScheduleSQLite)(nil)

const (
	existsScheduleSQL = `
		SELECT 1 FROM schedule_events
		WHERE owner_id = ? AND netatmo_room_id = ? AND type = ? AND start_time = ?
		LIMIT 1
	`

	insertScheduleSQL = `
		INSERT INTO schedule_events
			(id, owner_id, room_mapping_id, home_id, netatmo_room_id, module_id, type, mode, temp, start_time, end_time, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(owner_id, room_mapping_id, type, start_time) DO NOTHING
	`

	selectSchedulesSQL = `SELECT id, owner_id, room_mapping_id, home_id, netatmo_room_id, module_id, type, mode, temp, start_time, end_time, status, created_at FROM schedule_events`
)

// formatStamp renders t as the canonical key string: RFC3339, UTC, second precision.
func formatStamp(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}

// Exists matches the idempotency key exactly; no tolerance window.
func (r *ScheduleSQLite) Exists(ctx context.Context, ownerID, externalRoomID, typ string, start time.Time) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, existsScheduleSQL, ownerID, externalRoomID, typ, formatStamp(start)).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check %s event for owner %q: %w", typ, ownerID, err)
	}
	return true, nil
}

// Insert adds a pending event. A conflicting row is left untouched and reported as not inserted.
func (r *ScheduleSQLite) Insert(ctx context.Context, e models.ScheduleEvent) (bool, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Status == "" {
		e.Status = models.StatusPending
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	var endPtr *string
	if e.EndTime != nil {
		s := formatStamp(*e.EndTime)
		endPtr = &s
	}

	res, err := r.db.ExecContext(ctx, insertScheduleSQL,
		e.ID,
		e.OwnerID,
		e.RoomMappingID,
		e.HomeID,
		e.ExternalRoomID,
		e.ModuleID,
		e.Type,
		e.Mode,
		e.TempC,
		formatStamp(e.StartTime),
		endPtr,
		e.Status,
		e.CreatedAt.UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("insert %s event for mapping %d: %w", e.Type, e.RoomMappingID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected for mapping %d: %w", e.RoomMappingID, err)
	}
	return n == 1, nil
}

// List returns events filtered by owner, start_time in [from, to] (inclusive) and type, ordered ASC.
func (r *ScheduleSQLite) List(ctx context.Context, f ScheduleFilter) ([]models.ScheduleEvent, error) {
	var (
		conds []string
		args  []any
	)

	if f.OwnerID != "" {
		conds = append(conds, "owner_id = ?")
		args = append(args, f.OwnerID)
	}
	if !f.From.IsZero() {
		conds = append(conds, "start_time >= ?")
		args = append(args, formatStamp(f.From))
	}
	if !f.To.IsZero() {
		conds = append(conds, "start_time <= ?")
		args = append(args, formatStamp(f.To))
	}
	if typ := strings.ToLower(strings.TrimSpace(f.Type)); typ != "" {
		conds = append(conds, "type = ?")
		args = append(args, typ)
	}

	q := selectSchedulesSQL
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY start_time ASC, id ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.ScheduleEvent, 0, 64)
	for rows.Next() {
		var (
			ev    models.ScheduleEvent
			temp  sql.NullFloat64
			start string
			end   sql.NullString
		)
		if err := rows.Scan(&ev.ID, &ev.OwnerID, &ev.RoomMappingID, &ev.HomeID, &ev.ExternalRoomID, &ev.ModuleID,
			&ev.Type, &ev.Mode, &temp, &start, &end, &ev.Status, &ev.CreatedAt); err != nil {
			return nil, err
		}
		if temp.Valid {
			v := temp.Float64
			ev.TempC = &v
		}
		if ev.StartTime, err = time.Parse(time.RFC3339, start); err != nil {
			return nil, fmt.Errorf("parse start_time of event %s: %w", ev.ID, err)
		}
		if end.Valid && end.String != "" {
			et, err := time.Parse(time.RFC3339, end.String)
			if err != nil {
				return nil, fmt.Errorf("parse end_time of event %s: %w", ev.ID, err)
			}
			ev.EndTime = &et
		}
		ev.CreatedAt = ev.CreatedAt.UTC()
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
