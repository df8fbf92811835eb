package service

import (
	"context"
	"fmt"

	"thermostat_automation/internal/logger"
	"thermostat_automation/internal/netatmo"
	"thermostat_automation/internal/repository"
)

// Vendor is the subset of the device gateway used by on-demand operations.
type Vendor interface {
	HomeStatusReader
	HomesData(ctx context.Context, accessToken, homeID string) (*netatmo.HomesDataResponse, error)
	SetRoomThermPoint(ctx context.Context, accessToken string, sp netatmo.SetpointRequest) error
	StationsData(ctx context.Context, accessToken, deviceID string) (*netatmo.StationsDataResponse, error)
}

// SetpointParams targets a mapped room by mapping id.
type SetpointParams struct {
	MappingID int64
	Mode      string
	TempC     *float64
	EndTime   *int64
}

// ThermostatService forwards operator commands to the vendor with the owner's session.
type ThermostatService struct {
	tokens   TokenProvider
	vendor   Vendor
	mappings repository.MappingRepo
	log      *logger.Logger
}

func NewThermostatService(tokens TokenProvider, vendor Vendor, mappings repository.MappingRepo, log *logger.Logger) *ThermostatService {
	if log == nil {
		log = logger.Nop()
	}
	return &ThermostatService{tokens: tokens, vendor: vendor, mappings: mappings, log: log}
}

func (s *ThermostatService) Homes(ctx context.Context, ownerID, homeID string) (*netatmo.HomesDataResponse, error) {
	tok, err := s.tokens.ForOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.vendor.HomesData(ctx, tok.AccessToken, homeID)
}

// SetSetpoint validates the request before any token or vendor call.
func (s *ThermostatService) SetSetpoint(ctx context.Context, ownerID string, p SetpointParams) error {
	m, err := s.mappings.Get(ctx, p.MappingID)
	if err != nil {
		return fmt.Errorf("load room mapping: %w", err)
	}
	if m == nil || m.OwnerID != ownerID {
		return ErrMappingNotFound
	}
	if !m.Paired() {
		return ErrRoomUnpaired
	}

	req := netatmo.SetpointRequest{
		HomeID:  m.HomeID,
		RoomID:  *m.ExternalRoomID,
		Mode:    p.Mode,
		TempC:   p.TempC,
		EndTime: p.EndTime,
	}
	if err := req.Validate(); err != nil {
		return err
	}

	tok, err := s.tokens.ForOwner(ctx, ownerID)
	if err != nil {
		return err
	}
	if err := s.vendor.SetRoomThermPoint(ctx, tok.AccessToken, req); err != nil {
		return err
	}
	s.log.Infow("setpoint_sent", "owner_id", ownerID, "mapping_id", m.ID, "mode", p.Mode)
	return nil
}

func (s *ThermostatService) Weather(ctx context.Context, ownerID, deviceID string) (*netatmo.StationsDataResponse, error) {
	tok, err := s.tokens.ForOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.vendor.StationsData(ctx, tok.AccessToken, deviceID)
}
