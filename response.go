package thermostat_automation

// PlanResponse is the body returned by a planner run.
type PlanResponse struct {
	OK                bool                `json:"ok"`
	IsCron            bool                `json:"isCron"`
	ProcessedForUsers map[string]int      `json:"processedForUsers"`
	ErrorsForUsers    map[string][]string `json:"errorsForUsers"`
}

// StatusItem is one mapped room merged with its live vendor reading.
// Reading fields stay nil when the vendor did not report the room.
type StatusItem struct {
	MappingID        int64   `json:"mapping_id"`
	OwnerID          string  `json:"owner_id"`
	RoomID           int64   `json:"room_id"`
	HomeID           string  `json:"home_id"`
	DeviceID         string  `json:"device_id"`
	ModuleID         string  `json:"module_id"`
	ExternalRoomID   *string `json:"external_room_id"`
	ExternalRoomName *string `json:"external_room_name"`

	Reachable           *bool    `json:"reachable"`
	MeasuredTempC       *float64 `json:"measured_temp"`
	SetpointTempC       *float64 `json:"setpoint_temp"`
	SetpointMode        *string  `json:"setpoint_mode"`
	SetpointEndTime     *int64   `json:"setpoint_end_time"`
	OpenWindow          *bool    `json:"open_window"`
	HeatingPowerRequest *int     `json:"heating_power_request"`
	ModuleReachable     *bool    `json:"module_reachable"`
	BatteryState        *string  `json:"battery_state"`

	Error string `json:"error,omitempty"`
}
