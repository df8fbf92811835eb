package models

import "time"

// Reservation is a guest stay as reported by the booking engine.
type Reservation struct {
	ID       string    `json:"id"`
	Label    string    `json:"label,omitempty"`
	RoomID   int64     `json:"room_id"`
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
	Channel  string    `json:"channel,omitempty"`
}
