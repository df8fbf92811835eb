package models

// RoomMapping links an internal rentable room to a vendor home/room/device triple.
type RoomMapping struct {
	ID               int64   `json:"id"`
	OwnerID          string  `json:"owner_id"`
	RoomID           int64   `json:"room_id"`     // booking engine room
	HomeID           string  `json:"home_id"`     // vendor home
	DeviceID         string  `json:"device_id"`   // relay / bridge
	ModuleID         string  `json:"module_id"`   // thermostat or valve
	ExternalRoomID   *string `json:"external_room_id,omitempty"`
	ExternalRoomName *string `json:"external_room_name,omitempty"`
}

// Paired reports whether the mapping points at a vendor room.
func (m RoomMapping) Paired() bool {
	return m.ExternalRoomID != nil && *m.ExternalRoomID != ""
}
