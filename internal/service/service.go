package service

import (
	"context"

	"thermostat_automation"
	"thermostat_automation/internal/config"
	"thermostat_automation/internal/logger"
	"thermostat_automation/internal/models"
	"thermostat_automation/internal/netatmo"
	"thermostat_automation/internal/repository"
)

// Authorization builds the Invocation of a caller and checks operator privilege.
type Authorization interface {
	Authorize(bearer string) (Invocation, error)
	RequireAdmin(ctx context.Context, inv Invocation) error
}

// Planning computes and persists schedule events for the owners in scope.
type Planning interface {
	Run(ctx context.Context, inv Invocation) (PlanReport, error)
}

// Status aggregates live thermostat readings. An empty ownerID means every owner.
type Status interface {
	Aggregate(ctx context.Context, ownerID string) ([]thermostat_automation.StatusItem, error)
}

// ScheduleLog exposes the persisted schedule events.
type ScheduleLog interface {
	List(ctx context.Context, ownerID string, q ScheduleQuery) ([]models.ScheduleEvent, error)
}

// Thermostats exposes on-demand vendor operations for one owner.
type Thermostats interface {
	Homes(ctx context.Context, ownerID, homeID string) (*netatmo.HomesDataResponse, error)
	SetSetpoint(ctx context.Context, ownerID string, p SetpointParams) error
	Weather(ctx context.Context, ownerID, deviceID string) (*netatmo.StationsDataResponse, error)
}

// Service aggregates all sub-services.
type Service struct {
	Authorization
	Planning
	Status
	ScheduleLog
	Thermostats
}

// Dependencies are the outbound collaborators wired in main.
type Dependencies struct {
	Vendor       Vendor
	Refresher    Refresher
	Reservations ReservationSource
	Metrics      *PlannerMetrics
}

// NewService wires repository layer and collaborators into concrete services.
func NewService(repos *repository.Repository, cfg *config.Config, deps Dependencies, log *logger.Logger) *Service {
	tokens := NewTokenService(repos.Tokens, deps.Refresher, log)
	scenarios := NewScenarioService(repos.Scenarios)

	return &Service{
		Authorization: NewAuthorizer(cfg.Auth, repos.Roles),
		Planning: NewPlanner(repos.Mappings, repos.Schedules, scenarios, deps.Reservations,
			cfg.Planner, cfg.Location(), deps.Metrics, log),
		Status:      NewStatusAggregator(repos.Mappings, tokens, deps.Vendor, cfg.Status.Workers, log),
		ScheduleLog: NewScheduleLogService(repos.Schedules),
		Thermostats: NewThermostatService(tokens, deps.Vendor, repos.Mappings, log),
	}
}
