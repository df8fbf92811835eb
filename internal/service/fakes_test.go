package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"thermostat_automation/internal/models"
	"thermostat_automation/internal/netatmo"
	"thermostat_automation/internal/repository"
)

var errBoom = errors.New("boom")

func strPtr(s string) *string { return &s }

// ---- repositories ----

type fakeTokenRepo struct {
	mu      sync.Mutex
	rows    map[string]models.OwnerToken
	getErr  error
	swapErr error
	swaps   int
}

func newFakeTokenRepo(tokens ...models.OwnerToken) *fakeTokenRepo {
	r := &fakeTokenRepo{rows: map[string]models.OwnerToken{}}
	for _, t := range tokens {
		r.rows[t.OwnerID] = t
	}
	return r
}

func (r *fakeTokenRepo) Get(ctx context.Context, ownerID string) (*models.OwnerToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	t, ok := r.rows[ownerID]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *fakeTokenRepo) CompareAndSwap(ctx context.Context, prevRefresh string, t models.OwnerToken) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.swapErr != nil {
		return false, r.swapErr
	}
	cur, ok := r.rows[t.OwnerID]
	if !ok || cur.RefreshToken != prevRefresh {
		return false, nil
	}
	r.rows[t.OwnerID] = t
	r.swaps++
	return true, nil
}

type fakeMappings struct {
	rows     []models.RoomMapping
	listErr  error
	ownerErr error
}

func (f *fakeMappings) Get(ctx context.Context, id int64) (*models.RoomMapping, error) {
	for _, m := range f.rows {
		if m.ID == id {
			return &m, nil
		}
	}
	return nil, f.listErr
}

func (f *fakeMappings) ListByOwner(ctx context.Context, ownerID string) ([]models.RoomMapping, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.RoomMapping
	for _, m := range f.rows {
		if m.OwnerID == ownerID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMappings) ListAll(ctx context.Context) ([]models.RoomMapping, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.RoomMapping(nil), f.rows...), nil
}

func (f *fakeMappings) ListOwners(ctx context.Context) ([]string, error) {
	if f.ownerErr != nil {
		return nil, f.ownerErr
	}
	seen := map[string]bool{}
	var out []string
	for _, m := range f.rows {
		if !seen[m.OwnerID] {
			seen[m.OwnerID] = true
			out = append(out, m.OwnerID)
		}
	}
	return out, nil
}

// fakeSchedules mimics the store: exact-key pre-check plus a unique key on insert.
type fakeSchedules struct {
	mu        sync.Mutex
	rows      []models.ScheduleEvent
	existsErr error
	// hideExisting makes Exists report false, exercising the unique key path.
	hideExisting bool
	lastFilter   repository.ScheduleFilter
}

func (f *fakeSchedules) Exists(ctx context.Context, ownerID, externalRoomID, typ string, start time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.existsErr != nil {
		return false, f.existsErr
	}
	if f.hideExisting {
		return false, nil
	}
	for _, e := range f.rows {
		if e.OwnerID == ownerID && e.ExternalRoomID == externalRoomID && e.Type == typ && e.StartTime.Equal(start) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSchedules) Insert(ctx context.Context, e models.ScheduleEvent) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.OwnerID == e.OwnerID && row.RoomMappingID == e.RoomMappingID && row.Type == e.Type && row.StartTime.Equal(e.StartTime) {
			return false, nil
		}
	}
	f.rows = append(f.rows, e)
	return true, nil
}

func (f *fakeSchedules) List(ctx context.Context, flt repository.ScheduleFilter) ([]models.ScheduleEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastFilter = flt
	return append([]models.ScheduleEvent(nil), f.rows...), nil
}

func (f *fakeSchedules) byType(typ string) []models.ScheduleEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ScheduleEvent
	for _, e := range f.rows {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

type fakeRoles map[string]bool

func (f fakeRoles) IsAdmin(ctx context.Context, userID string) (bool, error) {
	if userID == "broken" {
		return false, errBoom
	}
	return f[userID], nil
}

// ---- collaborators ----

type fakeScenarios struct {
	byOwner map[string]models.HeatingScenario
	failFor string
}

func (f fakeScenarios) Resolve(ctx context.Context, ownerID string) (models.HeatingScenario, error) {
	if ownerID == f.failFor {
		return models.HeatingScenario{}, errBoom
	}
	if sc, ok := f.byOwner[ownerID]; ok {
		return sc, nil
	}
	return models.DefaultHeatingScenario(ownerID), nil
}

type fakeReservations struct {
	mu     sync.Mutex
	byRoom map[int64][]models.Reservation
	failOn map[int64]error
	calls  []int64
}

func (f *fakeReservations) ReservationsForRoom(ctx context.Context, roomID int64) ([]models.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, roomID)
	if err := f.failOn[roomID]; err != nil {
		return nil, err
	}
	return f.byRoom[roomID], nil
}

type fakeRefresher struct {
	calls   atomic.Int32
	grant   netatmo.Grant
	err     error
	release chan struct{}
}

func (f *fakeRefresher) Refresh(ctx context.Context, refreshToken string) (netatmo.Grant, error) {
	f.calls.Add(1)
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return netatmo.Grant{}, f.err
	}
	return f.grant, nil
}

type fakeTokens struct {
	failFor map[string]error
	calls   atomic.Int32
}

func (f *fakeTokens) ForOwner(ctx context.Context, ownerID string) (models.OwnerToken, error) {
	f.calls.Add(1)
	if err := f.failFor[ownerID]; err != nil {
		return models.OwnerToken{}, err
	}
	return models.OwnerToken{OwnerID: ownerID, AccessToken: "access-" + ownerID}, nil
}

type fakeVendor struct {
	mu           sync.Mutex
	statusByHome map[string]netatmo.HomeStatus
	failHome     map[string]error
	statusCalls  map[string]int
	lastToken    string
	setpoints    []netatmo.SetpointRequest
	setErr       error
}

func (f *fakeVendor) HomeStatus(ctx context.Context, accessToken, homeID string) (*netatmo.HomeStatusResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statusCalls == nil {
		f.statusCalls = map[string]int{}
	}
	f.statusCalls[homeID]++
	f.lastToken = accessToken
	if err := f.failHome[homeID]; err != nil {
		return nil, err
	}
	resp := &netatmo.HomeStatusResponse{Status: "ok"}
	resp.Body.Home = f.statusByHome[homeID]
	return resp, nil
}

func (f *fakeVendor) HomesData(ctx context.Context, accessToken, homeID string) (*netatmo.HomesDataResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastToken = accessToken
	resp := &netatmo.HomesDataResponse{Status: "ok"}
	resp.Body.Homes = []netatmo.Home{{ID: homeID, Name: "home " + homeID}}
	return resp, nil
}

func (f *fakeVendor) SetRoomThermPoint(ctx context.Context, accessToken string, sp netatmo.SetpointRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastToken = accessToken
	if f.setErr != nil {
		return f.setErr
	}
	f.setpoints = append(f.setpoints, sp)
	return nil
}

func (f *fakeVendor) StationsData(ctx context.Context, accessToken, deviceID string) (*netatmo.StationsDataResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastToken = accessToken
	resp := &netatmo.StationsDataResponse{Status: "ok"}
	resp.Body.Devices = []netatmo.StationDevice{{ID: deviceID}}
	return resp, nil
}
