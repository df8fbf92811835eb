package repository

import (
	"context"
	"database/sql"
	"time"

	"thermostat_automation/internal/models"
)

// Roles looks up the privilege of a caller.
type Roles interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// TokenRepo persists vendor OAuth sessions, one row per owner.
type TokenRepo interface {
	Get(ctx context.Context, ownerID string) (*models.OwnerToken, error)
	// CompareAndSwap replaces the owner's row only if its refresh token still equals prevRefresh.
	CompareAndSwap(ctx context.Context, prevRefresh string, t models.OwnerToken) (bool, error)
}

type MappingRepo interface {
	Get(ctx context.Context, id int64) (*models.RoomMapping, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.RoomMapping, error)
	ListAll(ctx context.Context) ([]models.RoomMapping, error)
	ListOwners(ctx context.Context) ([]string, error)
}

type ScenarioRepo interface {
	Get(ctx context.Context, ownerID string) (*models.HeatingScenario, error)
}

// ScheduleFilter narrows List; zero values mean no bound.
type ScheduleFilter struct {
	OwnerID string
	From    time.Time
	To      time.Time
	Type    string
}

type ScheduleRepo interface {
	Exists(ctx context.Context, ownerID, externalRoomID, typ string, start time.Time) (bool, error)
	// Insert reports false when a row with the same idempotency key already exists.
	Insert(ctx context.Context, e models.ScheduleEvent) (bool, error)
	List(ctx context.Context, f ScheduleFilter) ([]models.ScheduleEvent, error)
}

type Repository struct {
	Roles     Roles
	Tokens    TokenRepo
	Mappings  MappingRepo
	Scenarios ScenarioRepo
	Schedules ScheduleRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Roles:     NewUserRepository(db),
		Tokens:    NewTokenSQLite(db),
		Mappings:  NewMappingSQLite(db),
		Scenarios: NewScenarioSQLite(db),
		Schedules: NewScheduleSQLite(db),
	}
}
