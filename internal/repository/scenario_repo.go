package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"thermostat_automation/internal/models"
)

type ScenarioSQLite struct {
	db *sql.DB
}

func NewScenarioSQLite(db *sql.DB) *ScenarioSQLite { return &ScenarioSQLite{db: db} }

var _ ScenarioRepo = (*ScenarioSQLite)(nil)

const selectScenarioSQL = `
	SELECT preheat_mode, preheat_minutes, heat_start_time, arrival_temp, stop_time
	FROM heating_scenarios WHERE owner_id = ?
`

// Get returns the owner's scenario or (nil, nil) when none is configured.
// NULL columns fall back to the scenario defaults.
func (r *ScenarioSQLite) Get(ctx context.Context, ownerID string) (*models.HeatingScenario, error) {
	var (
		mode      sql.NullString
		minutes   sql.NullInt64
		startTime sql.NullString
		temp      sql.NullFloat64
		stopTime  sql.NullString
	)
	err := r.db.QueryRowContext(ctx, selectScenarioSQL, ownerID).Scan(&mode, &minutes, &startTime, &temp, &stopTime)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select scenario of owner %q: %w", ownerID, err)
	}

	s := models.DefaultHeatingScenario(ownerID)
	if mode.Valid && mode.String != "" {
		s.PreheatMode = mode.String
	}
	if minutes.Valid {
		s.PreheatMinutes = int(minutes.Int64)
	}
	if startTime.Valid {
		s.HeatStartTime = startTime.String
	}
	if temp.Valid {
		s.ArrivalTempC = temp.Float64
	}
	if stopTime.Valid && stopTime.String != "" {
		s.StopTime = stopTime.String
	}
	return &s, nil
}
