package service

import (
	"context"
	"fmt"
	"time"

	"thermostat_automation"
	"thermostat_automation/internal/config"
	"thermostat_automation/internal/logger"
	"thermostat_automation/internal/models"
	"thermostat_automation/internal/repository"

	"golang.org/x/sync/errgroup"
)

// ReservationSource returns the reservations known for a booking-engine room.
type ReservationSource interface {
	ReservationsForRoom(ctx context.Context, roomID int64) ([]models.Reservation, error)
}

// ScenarioResolver returns an owner's heating policy.
type ScenarioResolver interface {
	Resolve(ctx context.Context, ownerID string) (models.HeatingScenario, error)
}

// Outcome is the result of planning one room.
type Outcome int

const (
	Scheduled Outcome = iota
	Skipped
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Scheduled:
		return "scheduled"
	case Skipped:
		return "skipped"
	default:
		return "failed"
	}
}

// RoomOutcome reports one room. Reason is set for Skipped, Err for Failed.
type RoomOutcome struct {
	MappingID int64
	RoomID    int64
	Outcome   Outcome
	Inserted  int
	Reason    string
	Err       error
}

type OwnerReport struct {
	OwnerID  string
	Inserted int
	Rooms    []RoomOutcome
	Errors   []string
}

type PlanReport struct {
	IsCron bool
	Owners []OwnerReport
}

// Response flattens the report into the wire shape.
func (r PlanReport) Response() thermostat_automation.PlanResponse {
	resp := thermostat_automation.PlanResponse{
		OK:                true,
		IsCron:            r.IsCron,
		ProcessedForUsers: make(map[string]int, len(r.Owners)),
		ErrorsForUsers:    make(map[string][]string),
	}
	for _, o := range r.Owners {
		resp.ProcessedForUsers[o.OwnerID] = o.Inserted
		if len(o.Errors) > 0 {
			resp.ErrorsForUsers[o.OwnerID] = o.Errors
		}
	}
	return resp
}

const (
	skipUnpaired      = "room is not paired with a vendor room"
	skipNoReservation = "no reservations in window"
)

// Planner reconciles reservations against heating scenarios into schedule events.
type Planner struct {
	mappings     repository.MappingRepo
	schedules    repository.ScheduleRepo
	scenarios    ScenarioResolver
	reservations ReservationSource
	loc          *time.Location
	days         int
	workers      int
	metrics      *PlannerMetrics
	log          *logger.Logger
	now          func() time.Time
}

func NewPlanner(
	mappings repository.MappingRepo,
	schedules repository.ScheduleRepo,
	scenarios ScenarioResolver,
	reservations ReservationSource,
	cfg config.PlannerConfig,
	loc *time.Location,
	metrics *PlannerMetrics,
	log *logger.Logger,
) *Planner {
	if log == nil {
		log = logger.Nop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Planner{
		mappings:     mappings,
		schedules:    schedules,
		scenarios:    scenarios,
		reservations: reservations,
		loc:          loc,
		days:         cfg.LookaheadDays,
		workers:      max(cfg.Workers, 1),
		metrics:      metrics,
		log:          log,
		now:          time.Now,
	}
}

// Run plans every owner in scope. Per-room and per-owner failures land in the report;
// only failing to enumerate owners is returned as an error.
func (p *Planner) Run(ctx context.Context, inv Invocation) (PlanReport, error) {
	owners, err := p.owners(ctx, inv)
	if err != nil {
		return PlanReport{}, err
	}
	p.metrics.run(inv)

	reports := make([]OwnerReport, len(owners))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, owner := range owners {
		g.Go(func() error {
			reports[i] = p.planOwner(gctx, owner)
			return nil
		})
	}
	_ = g.Wait()

	return PlanReport{IsCron: IsCron(inv), Owners: reports}, nil
}

func (p *Planner) owners(ctx context.Context, inv Invocation) ([]string, error) {
	switch v := inv.(type) {
	case Sweep:
		owners, err := p.mappings.ListOwners(ctx)
		if err != nil {
			return nil, fmt.Errorf("list owners: %w", err)
		}
		return owners, nil
	case SingleOwner:
		if v.OwnerID == "" {
			return nil, ErrOwnerRequired
		}
		return []string{v.OwnerID}, nil
	default:
		return nil, ErrUnauthorized
	}
}

func (p *Planner) planOwner(ctx context.Context, ownerID string) OwnerReport {
	report := OwnerReport{OwnerID: ownerID}

	sc, err := p.scenarios.Resolve(ctx, ownerID)
	if err != nil {
		p.log.Errorw("planner_owner_failed", "owner_id", ownerID, "err", err)
		report.Errors = append(report.Errors, err.Error())
		return report
	}

	mappings, err := p.mappings.ListByOwner(ctx, ownerID)
	if err != nil {
		p.log.Errorw("planner_owner_failed", "owner_id", ownerID, "err", err)
		report.Errors = append(report.Errors, fmt.Sprintf("list room mappings: %v", err))
		return report
	}

	today := p.now().In(p.loc)
	for _, m := range mappings {
		out := p.planRoom(ctx, sc, m, today)
		report.Rooms = append(report.Rooms, out)
		report.Inserted += out.Inserted
		if out.Outcome == Failed {
			p.metrics.roomFailed()
			p.log.Errorw("planner_room_failed", "owner_id", ownerID, "room_id", m.RoomID, "err", out.Err)
			report.Errors = append(report.Errors, fmt.Sprintf("room %d: %v", m.RoomID, out.Err))
		}
	}

	p.log.Infow("planner_owner_done", "owner_id", ownerID, "inserted", report.Inserted, "errors", len(report.Errors))
	return report
}

func (p *Planner) planRoom(ctx context.Context, sc models.HeatingScenario, m models.RoomMapping, today time.Time) RoomOutcome {
	out := RoomOutcome{MappingID: m.ID, RoomID: m.RoomID}
	if !m.Paired() {
		out.Outcome, out.Reason = Skipped, skipUnpaired
		return out
	}

	reservations, err := p.reservations.ReservationsForRoom(ctx, m.RoomID)
	if err != nil {
		out.Outcome, out.Err = Failed, fmt.Errorf("fetch reservations: %w", err)
		return out
	}

	inWindow := 0
	for _, r := range reservations {
		checkIn := r.CheckIn.In(p.loc)
		if !InWindow(checkIn, today, p.days) {
			continue
		}
		inWindow++

		n, err := p.scheduleReservation(ctx, sc, m, checkIn, r.CheckOut.In(p.loc))
		out.Inserted += n
		if err != nil {
			out.Outcome, out.Err = Failed, fmt.Errorf("reservation %s: %w", r.ID, err)
			return out
		}
	}

	if inWindow == 0 {
		out.Outcome, out.Reason = Skipped, skipNoReservation
		return out
	}
	out.Outcome = Scheduled
	return out
}

// scheduleReservation ensures the heat and stop events of one stay; each is checked independently.
func (p *Planner) scheduleReservation(ctx context.Context, sc models.HeatingScenario, m models.RoomMapping, checkIn, checkOut time.Time) (int, error) {
	heatAt := HeatStart(checkIn, sc)
	stopAt := StopAt(checkOut, sc)
	if heatAt.After(checkIn) {
		p.log.Warnw("heat_start_after_arrival", "owner_id", m.OwnerID, "room_id", m.RoomID,
			"heat_start", heatAt, "check_in", checkIn)
	}

	temp := sc.ArrivalTempC
	events := []models.ScheduleEvent{
		p.event(m, models.EventHeat, models.ModeManual, &temp, heatAt, &stopAt),
		p.event(m, models.EventStop, models.ModeHome, nil, stopAt, nil),
	}

	inserted := 0
	for _, e := range events {
		ok, err := p.ensureEvent(ctx, e)
		if err != nil {
			return inserted, err
		}
		if ok {
			inserted++
			p.metrics.eventInserted(e.Type)
		}
	}
	return inserted, nil
}

func (p *Planner) event(m models.RoomMapping, typ, mode string, temp *float64, start time.Time, end *time.Time) models.ScheduleEvent {
	return models.ScheduleEvent{
		OwnerID:        m.OwnerID,
		RoomMappingID:  m.ID,
		HomeID:         m.HomeID,
		ExternalRoomID: *m.ExternalRoomID,
		ModuleID:       m.ModuleID,
		Type:           typ,
		Mode:           mode,
		TempC:          temp,
		StartTime:      start,
		EndTime:        end,
		Status:         models.StatusPending,
	}
}

// ensureEvent inserts e unless an equivalent row exists. The store's unique key covers concurrent runs.
func (p *Planner) ensureEvent(ctx context.Context, e models.ScheduleEvent) (bool, error) {
	exists, err := p.schedules.Exists(ctx, e.OwnerID, e.ExternalRoomID, e.Type, e.StartTime)
	if err != nil {
		return false, fmt.Errorf("check %s event: %w", e.Type, err)
	}
	if exists {
		return false, nil
	}
	inserted, err := p.schedules.Insert(ctx, e)
	if err != nil {
		return false, fmt.Errorf("insert %s event: %w", e.Type, err)
	}
	return inserted, nil
}
