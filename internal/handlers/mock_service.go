package handlers

import (
	"context"
	"net/http"
	"sync"

	"thermostat_automation"
	"thermostat_automation/internal/models"
	"thermostat_automation/internal/netatmo"
	"thermostat_automation/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

// mockAuth accepts "cron" as the cron secret and "user:<id>" as a user token.
type mockAuth struct {
	admins   map[string]bool
	adminErr error

	lastToken string
}

func (m *mockAuth) Authorize(bearer string) (service.Invocation, error) {
	m.lastToken = bearer
	switch {
	case bearer == "cron":
		return service.Sweep{}, nil
	case len(bearer) > 5 && bearer[:5] == "user:":
		return service.SingleOwner{OwnerID: bearer[5:]}, nil
	default:
		return nil, service.ErrUnauthorized
	}
}

func (m *mockAuth) RequireAdmin(ctx context.Context, inv service.Invocation) error {
	if m.adminErr != nil {
		return m.adminErr
	}
	if so, ok := inv.(service.SingleOwner); ok && !m.admins[so.OwnerID] {
		return service.ErrForbidden
	}
	return nil
}

type mockPlanning struct {
	report  service.PlanReport
	err     error
	lastInv service.Invocation
	calls   int
}

func (m *mockPlanning) Run(ctx context.Context, inv service.Invocation) (service.PlanReport, error) {
	m.calls++
	m.lastInv = inv
	return m.report, m.err
}

type mockStatus struct {
	mu        sync.Mutex
	items     []thermostat_automation.StatusItem
	err       error
	lastOwner string
	calls     int
}

func (m *mockStatus) Aggregate(ctx context.Context, ownerID string) ([]thermostat_automation.StatusItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastOwner = ownerID
	return m.items, m.err
}

type mockScheduleLog struct {
	resp      []models.ScheduleEvent
	err       error
	lastOwner string
	lastQuery service.ScheduleQuery
}

func (m *mockScheduleLog) List(ctx context.Context, ownerID string, q service.ScheduleQuery) ([]models.ScheduleEvent, error) {
	m.lastOwner = ownerID
	m.lastQuery = q
	return m.resp, m.err
}

type mockThermostats struct {
	homes        *netatmo.HomesDataResponse
	weather      *netatmo.StationsDataResponse
	err          error
	lastOwner    string
	lastHomeID   string
	lastDeviceID string
	lastSetpoint service.SetpointParams
}

func (m *mockThermostats) Homes(ctx context.Context, ownerID, homeID string) (*netatmo.HomesDataResponse, error) {
	m.lastOwner, m.lastHomeID = ownerID, homeID
	return m.homes, m.err
}

func (m *mockThermostats) SetSetpoint(ctx context.Context, ownerID string, p service.SetpointParams) error {
	m.lastOwner, m.lastSetpoint = ownerID, p
	return m.err
}

func (m *mockThermostats) Weather(ctx context.Context, ownerID, deviceID string) (*netatmo.StationsDataResponse, error) {
	m.lastOwner, m.lastDeviceID = ownerID, deviceID
	return m.weather, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

func withHeader(req *http.Request, h http.Header) *http.Request {
	for k, vv := range h {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	return req
}
