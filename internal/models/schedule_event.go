package models

import "time"

// Event types.
const (
	EventHeat = "heat"
	EventStop = "stop"
)

// Setpoint modes understood by the vendor API.
const (
	ModeManual = "manual"
	ModeHome   = "home"
)

// Execution states. Only StatusPending is written here; the executor owns the rest.
const (
	StatusPending  = "pending"
	StatusExecuted = "executed"
	StatusError    = "error"
)

// ScheduleEvent is a planned heat-start or stop instruction.
type ScheduleEvent struct {
	ID             string     `json:"id"`
	OwnerID        string     `json:"owner_id"`
	RoomMappingID  int64      `json:"room_mapping_id"`
	HomeID         string     `json:"home_id"`
	ExternalRoomID string     `json:"external_room_id"`
	ModuleID       string     `json:"module_id"`
	Type           string     `json:"type"` // heat | stop
	Mode           string     `json:"mode"` // manual | home
	TempC          *float64   `json:"temp"`
	StartTime      time.Time  `json:"start_time"`
	EndTime        *time.Time `json:"end_time"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
}
