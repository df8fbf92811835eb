package repository_test

import (
	"context"
	"regexp"
	"testing"

	"thermostat_automation/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
)

var mappingCols = []string{"id", "owner_id", "room_id", "home_id", "device_id", "module_id", "netatmo_room_id", "netatmo_room_name"}

func TestMappingSQLite_ListByOwner_NullableExternalRoom(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM room_mappings WHERE owner_id = ? ORDER BY id ASC")).
		WithArgs("o1").
		WillReturnRows(sqlmock.NewRows(mappingCols).
			AddRow(1, "o1", 101, "h1", "d1", "m1", "r-1", "Living").
			AddRow(2, "o1", 102, "h1", "d1", "m2", nil, nil))

	got, err := repository.NewMappingSQLite(db).ListByOwner(context.Background(), "o1")
	if err != nil {
		t.Fatalf("ListByOwner() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 mappings, got %d", len(got))
	}
	if !got[0].Paired() || *got[0].ExternalRoomID != "r-1" || *got[0].ExternalRoomName != "Living" {
		t.Fatalf("first mapping not decoded: %+v", got[0])
	}
	if got[1].Paired() || got[1].ExternalRoomID != nil {
		t.Fatalf("second mapping should be unpaired: %+v", got[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMappingSQLite_Get_Missing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM room_mappings WHERE id = ?")).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(mappingCols))

	got, err := repository.NewMappingSQLite(db).Get(context.Background(), 9)
	if err != nil || got != nil {
		t.Fatalf("Get() = %+v, %v; want nil, nil", got, err)
	}
}

func TestMappingSQLite_ListOwners(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT owner_id FROM room_mappings")).
		WillReturnRows(sqlmock.NewRows([]string{"owner_id"}).AddRow("o1").AddRow("o2"))

	got, err := repository.NewMappingSQLite(db).ListOwners(context.Background())
	if err != nil {
		t.Fatalf("ListOwners() error = %v", err)
	}
	if len(got) != 2 || got[0] != "o1" || got[1] != "o2" {
		t.Fatalf("ListOwners() = %v", got)
	}
}
