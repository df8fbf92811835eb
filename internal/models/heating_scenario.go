package models

// Preheat modes.
const (
	PreheatRelative = "relative"
	PreheatAbsolute = "absolute"
)

// Scenario defaults applied when an owner has no configuration row.
const (
	DefaultPreheatMode    = PreheatRelative
	DefaultPreheatMinutes = 240
	DefaultArrivalTempC   = 20.0
	DefaultStopTime       = "11:00"
)

// HeatingScenario is the per-owner heating policy.
type HeatingScenario struct {
	OwnerID        string  `json:"owner_id"`
	PreheatMode    string  `json:"preheat_mode"`              // relative | absolute
	PreheatMinutes int     `json:"preheat_minutes"`           // used when relative
	HeatStartTime  string  `json:"heat_start_time,omitempty"` // HH:MM, used when absolute
	ArrivalTempC   float64 `json:"arrival_temp"`              // °C
	StopTime       string  `json:"stop_time"`                 // HH:MM on checkout day
}

// DefaultHeatingScenario returns the policy used for owners without a scenario row.
func DefaultHeatingScenario(ownerID string) HeatingScenario {
	return HeatingScenario{
		OwnerID:        ownerID,
		PreheatMode:    DefaultPreheatMode,
		PreheatMinutes: DefaultPreheatMinutes,
		ArrivalTempC:   DefaultArrivalTempC,
		StopTime:       DefaultStopTime,
	}
}
