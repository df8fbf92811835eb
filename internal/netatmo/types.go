package netatmo

// HomesDataResponse represents the response from /api/homesdata
type HomesDataResponse struct {
	Status string `json:"status"`
	Body   struct {
		Homes []Home `json:"homes"`
	} `json:"body"`
	TimeServer int64 `json:"time_server"`
}

// HomeStatusResponse represents the response from /api/homestatus
type HomeStatusResponse struct {
	Status string `json:"status"`
	Body   struct {
		Home HomeStatus `json:"home"`
	} `json:"body"`
	TimeServer int64 `json:"time_server"`
}

// Home represents a home's topology
type Home struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Timezone string   `json:"timezone,omitempty"`
	Modules  []Module `json:"modules"`
	Rooms    []Room   `json:"rooms"`
}

// Module represents a Netatmo module (thermostat, valve, relay)
type Module struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Name     string `json:"name"`
	RoomID   string `json:"room_id,omitempty"`
	BridgeID string `json:"bridge,omitempty"`
}

// Room represents a room in a home
type Room struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	ModuleIDs []string `json:"module_ids"`
}

// HomeStatus represents the current status of a home.
type HomeStatus struct {
	ID      string         `json:"id"`
	Modules []ModuleStatus `json:"modules"`
	Rooms   []RoomStatus   `json:"rooms"`
}

// RoomStatus fields are pointers; the vendor omits what it cannot measure.
type RoomStatus struct {
	ID                       string   `json:"id"`
	Reachable                *bool    `json:"reachable,omitempty"`
	ThermMeasuredTemperature *float64 `json:"therm_measured_temperature,omitempty"`
	ThermSetpointTemperature *float64 `json:"therm_setpoint_temperature,omitempty"`
	ThermSetpointMode        *string  `json:"therm_setpoint_mode,omitempty"`
	ThermSetpointEndTime     *int64   `json:"therm_setpoint_end_time,omitempty"`
	OpenWindow               *bool    `json:"open_window,omitempty"`
	HeatingPowerRequest      *int     `json:"heating_power_request,omitempty"`
}

type ModuleStatus struct {
	ID             string  `json:"id"`
	Type           string  `json:"type"`
	Reachable      *bool   `json:"reachable,omitempty"`
	BatteryState   *string `json:"battery_state,omitempty"`
	BatteryPercent *int    `json:"battery_percent,omitempty"`
}

// StationsDataResponse represents the response from the legacy /api/getstationsdata
type StationsDataResponse struct {
	Status string `json:"status"`
	Body   struct {
		Devices []StationDevice `json:"devices"`
	} `json:"body"`
	TimeServer int64 `json:"time_server"`
}

type StationDevice struct {
	ID            string          `json:"_id"`
	StationName   string          `json:"station_name"`
	ModuleName    string          `json:"module_name"`
	Type          string          `json:"type"`
	Reachable     bool            `json:"reachable"`
	DashboardData map[string]any  `json:"dashboard_data,omitempty"`
	Modules       []StationModule `json:"modules,omitempty"`
}

type StationModule struct {
	ID             string         `json:"_id"`
	ModuleName     string         `json:"module_name"`
	Type           string         `json:"type"`
	Reachable      bool           `json:"reachable"`
	BatteryPercent int            `json:"battery_percent,omitempty"`
	DashboardData  map[string]any `json:"dashboard_data,omitempty"`
}

// Setpoint modes accepted by /api/setroomthermpoint.
const (
	SetpointManual = "manual"
	SetpointHome   = "home"
	SetpointMax    = "max"
)

// SetpointRequest is one room override. TempC is required for manual mode only.
type SetpointRequest struct {
	HomeID  string
	RoomID  string
	Mode    string
	TempC   *float64
	EndTime *int64
}
