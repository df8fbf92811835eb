package netatmo

import (
	"errors"
	"fmt"
)

const maxBodyExcerpt = 512

var (
	ErrMissingHomeID = errors.New("home_id is required")
	ErrMissingRoomID = errors.New("room_id is required")
	ErrInvalidMode   = errors.New("mode must be one of manual, home, max")
	ErrTempRequired  = errors.New("temp is required for manual mode")
	ErrMalformed     = errors.New("malformed vendor response")
)

// UpstreamError is a non-2xx answer from the vendor.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("netatmo responded %d: %s", e.Status, e.Body)
}

func excerpt(body []byte) string {
	if len(body) > maxBodyExcerpt {
		body = body[:maxBodyExcerpt]
	}
	return string(body)
}
