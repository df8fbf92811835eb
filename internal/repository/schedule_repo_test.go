package repository

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"thermostat_automation/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func ctx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	t.Cleanup(cancel)
	return c
}

func TestFormatStamp_UTCSecondPrecision(t *testing.T) {
	rome, _ := time.LoadLocation("Europe/Rome")
	got := formatStamp(time.Date(2026, 1, 10, 12, 0, 0, 999, rome))
	if got != "2026-01-10T11:00:00Z" {
		t.Fatalf("formatStamp = %q", got)
	}
}

func TestScheduleSQLite_Exists(t *testing.T) {
	start := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("sqlmock new: %v", err)
		}
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta(existsScheduleSQL)).
			WithArgs("o1", "r-1", models.EventHeat, "2026-01-10T12:00:00Z").
			WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

		ok, err := NewScheduleSQLite(db).Exists(ctx(t), "o1", "r-1", models.EventHeat, start)
		if err != nil || !ok {
			t.Fatalf("Exists = %v, %v; want true, nil", ok, err)
		}
	})

	t.Run("absent", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("sqlmock new: %v", err)
		}
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta(existsScheduleSQL)).
			WillReturnRows(sqlmock.NewRows([]string{"1"}))

		ok, err := NewScheduleSQLite(db).Exists(ctx(t), "o1", "r-1", models.EventStop, start)
		if err != nil || ok {
			t.Fatalf("Exists = %v, %v; want false, nil", ok, err)
		}
	})

	t.Run("db error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("sqlmock new: %v", err)
		}
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta(existsScheduleSQL)).WillReturnError(errors.New("down"))

		if _, err := NewScheduleSQLite(db).Exists(ctx(t), "o1", "r-1", models.EventStop, start); err == nil || !strings.Contains(err.Error(), "down") {
			t.Fatalf("expected error, got %v", err)
		}
	})
}

func TestScheduleSQLite_Insert_HeatWithDefaults(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	temp := 20.0
	end := time.Date(2026, 1, 15, 11, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta(insertScheduleSQL)).
		WithArgs(sqlmock.AnyArg(), "o1", int64(7), "h1", "r-1", "m1",
			"heat", "manual", 20.0, "2026-01-10T12:00:00Z", "2026-01-15T11:00:00Z",
			"pending", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	inserted, err := NewScheduleSQLite(db).Insert(ctx(t), models.ScheduleEvent{
		OwnerID:        "o1",
		RoomMappingID:  7,
		HomeID:         "h1",
		ExternalRoomID: "r-1",
		ModuleID:       "m1",
		Type:           models.EventHeat,
		Mode:           models.ModeManual,
		TempC:          &temp,
		StartTime:      time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC),
		EndTime:        &end,
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if !inserted {
		t.Fatalf("expected inserted=true")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestScheduleSQLite_Insert_ConflictIsNotAnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(insertScheduleSQL)).
		WithArgs(sqlmock.AnyArg(), "o1", int64(7), "h1", "r-1", "m1",
			"stop", "home", nil, "2026-01-15T11:00:00Z", nil,
			"pending", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	inserted, err := NewScheduleSQLite(db).Insert(ctx(t), models.ScheduleEvent{
		OwnerID:        "o1",
		RoomMappingID:  7,
		HomeID:         "h1",
		ExternalRoomID: "r-1",
		ModuleID:       "m1",
		Type:           models.EventStop,
		Mode:           models.ModeHome,
		StartTime:      time.Date(2026, 1, 15, 11, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if inserted {
		t.Fatalf("expected inserted=false on conflict")
	}
}

func TestScheduleSQLite_List_WithFilters(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	created := time.Date(2026, 1, 9, 8, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "owner_id", "room_mapping_id", "home_id", "netatmo_room_id", "module_id",
		"type", "mode", "temp", "start_time", "end_time", "status", "created_at"}).
		AddRow("e1", "o1", 7, "h1", "r-1", "m1", "heat", "manual", 20.0, "2026-01-10T12:00:00Z", "2026-01-15T11:00:00Z", "pending", created).
		AddRow("e2", "o1", 7, "h1", "r-1", "m1", "stop", "home", nil, "2026-01-15T11:00:00Z", nil, "executed", created)

	from := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(selectSchedulesSQL+" WHERE owner_id = ? AND start_time >= ? AND start_time <= ? AND type = ? ORDER BY start_time ASC, id ASC")).
		WithArgs("o1", "2026-01-10T00:00:00Z", "2026-01-20T00:00:00Z", "heat").
		WillReturnRows(rows)

	got, err := NewScheduleSQLite(db).List(ctx(t), ScheduleFilter{OwnerID: "o1", From: from, To: to, Type: " HEAT "})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 events, got %d", len(got))
	}
	if got[0].TempC == nil || *got[0].TempC != 20 || got[0].EndTime == nil {
		t.Fatalf("heat event fields not decoded: %+v", got[0])
	}
	if got[1].TempC != nil || got[1].EndTime != nil {
		t.Fatalf("stop event should have nil temp/end: %+v", got[1])
	}
	if !got[0].StartTime.Equal(time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start: %v", got[0].StartTime)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}
