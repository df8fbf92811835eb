package service

import (
	"context"
	"fmt"

	"thermostat_automation"
	"thermostat_automation/internal/logger"
	"thermostat_automation/internal/models"
	"thermostat_automation/internal/netatmo"
	"thermostat_automation/internal/repository"

	"golang.org/x/sync/errgroup"
)

// TokenProvider hands out a fresh vendor session for an owner.
type TokenProvider interface {
	ForOwner(ctx context.Context, ownerID string) (models.OwnerToken, error)
}

// HomeStatusReader reads live status for one vendor home.
type HomeStatusReader interface {
	HomeStatus(ctx context.Context, accessToken, homeID string) (*netatmo.HomeStatusResponse, error)
}

// StatusAggregator merges live vendor readings onto room mappings, one vendor call per (owner, home).
type StatusAggregator struct {
	mappings repository.MappingRepo
	tokens   TokenProvider
	homes    HomeStatusReader
	workers  int
	log      *logger.Logger
}

func NewStatusAggregator(mappings repository.MappingRepo, tokens TokenProvider, homes HomeStatusReader, workers int, log *logger.Logger) *StatusAggregator {
	if log == nil {
		log = logger.Nop()
	}
	return &StatusAggregator{mappings: mappings, tokens: tokens, homes: homes, workers: max(workers, 1), log: log}
}

type homeKey struct {
	ownerID string
	homeID  string
}

// Aggregate returns one item per mapping in scope, in mapping order. An empty ownerID means every owner.
// A failing home marks its own items with an error and leaves the rest untouched.
func (a *StatusAggregator) Aggregate(ctx context.Context, ownerID string) ([]thermostat_automation.StatusItem, error) {
	var (
		mappings []models.RoomMapping
		err      error
	)
	if ownerID == "" {
		mappings, err = a.mappings.ListAll(ctx)
	} else {
		mappings, err = a.mappings.ListByOwner(ctx, ownerID)
	}
	if err != nil {
		return nil, fmt.Errorf("list room mappings: %w", err)
	}

	items := make([]thermostat_automation.StatusItem, len(mappings))
	groups := make(map[homeKey][]int)
	var order []homeKey
	for i, m := range mappings {
		items[i] = baseItem(m)
		k := homeKey{ownerID: m.OwnerID, homeID: m.HomeID}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], i)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for _, k := range order {
		idx := groups[k]
		g.Go(func() error {
			a.fillHome(gctx, k, idx, mappings, items)
			return nil
		})
	}
	_ = g.Wait()

	return items, nil
}

// fillHome writes only to items[idx]; groups never share indices.
func (a *StatusAggregator) fillHome(ctx context.Context, k homeKey, idx []int, mappings []models.RoomMapping, items []thermostat_automation.StatusItem) {
	status, err := a.readHome(ctx, k)
	if err != nil {
		a.log.Errorw("status_home_failed", "owner_id", k.ownerID, "home_id", k.homeID, "err", err)
		for _, i := range idx {
			items[i].Error = err.Error()
		}
		return
	}

	rooms := make(map[string]netatmo.RoomStatus, len(status.Rooms))
	for _, r := range status.Rooms {
		rooms[r.ID] = r
	}
	modules := make(map[string]netatmo.ModuleStatus, len(status.Modules))
	for _, m := range status.Modules {
		modules[m.ID] = m
	}

	for _, i := range idx {
		m := mappings[i]
		if m.ExternalRoomID != nil {
			if r, ok := rooms[*m.ExternalRoomID]; ok {
				mergeRoom(&items[i], r)
			}
		}
		if mod, ok := modules[m.ModuleID]; ok && m.ModuleID != "" {
			items[i].ModuleReachable = mod.Reachable
			items[i].BatteryState = mod.BatteryState
		}
	}
}

func (a *StatusAggregator) readHome(ctx context.Context, k homeKey) (netatmo.HomeStatus, error) {
	tok, err := a.tokens.ForOwner(ctx, k.ownerID)
	if err != nil {
		return netatmo.HomeStatus{}, err
	}
	resp, err := a.homes.HomeStatus(ctx, tok.AccessToken, k.homeID)
	if err != nil {
		return netatmo.HomeStatus{}, fmt.Errorf("home status %s: %w", k.homeID, err)
	}
	return resp.Body.Home, nil
}

func baseItem(m models.RoomMapping) thermostat_automation.StatusItem {
	return thermostat_automation.StatusItem{
		MappingID:        m.ID,
		OwnerID:          m.OwnerID,
		RoomID:           m.RoomID,
		HomeID:           m.HomeID,
		DeviceID:         m.DeviceID,
		ModuleID:         m.ModuleID,
		ExternalRoomID:   m.ExternalRoomID,
		ExternalRoomName: m.ExternalRoomName,
	}
}

func mergeRoom(item *thermostat_automation.StatusItem, r netatmo.RoomStatus) {
	item.Reachable = r.Reachable
	item.MeasuredTempC = r.ThermMeasuredTemperature
	item.SetpointTempC = r.ThermSetpointTemperature
	item.SetpointMode = r.ThermSetpointMode
	item.SetpointEndTime = r.ThermSetpointEndTime
	item.OpenWindow = r.OpenWindow
	item.HeatingPowerRequest = r.HeatingPowerRequest
}
