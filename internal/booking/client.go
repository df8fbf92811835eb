// Package booking reads reservations from the booking proxy.
package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"thermostat_automation/internal/models"
)

const (
	reservationsPath = "/reservations"
	actionForRoom    = "get_reservations_for_room"
	maxBodyExcerpt   = 512
)

var ErrMalformed = errors.New("malformed booking response")

// UpstreamError is a non-2xx answer from the booking proxy.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("booking proxy responded %d: %s", e.Status, e.Body)
}

// Client fetches reservations for one room at a time.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	loc        *time.Location
}

// NewClient parses naive timestamps in loc.
func NewClient(baseURL, apiKey string, loc *time.Location, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		loc:        loc,
	}
}

type reservationsRequest struct {
	Action string `json:"action"`
	RoomID int64  `json:"id_room"`
}

type reservationsResponse struct {
	Data []reservationDTO `json:"data"`
}

type reservationDTO struct {
	ID        flexString `json:"id_reservation"`
	Label     string     `json:"label"`
	Arrival   string     `json:"arrival"`
	Departure string     `json:"departure"`
	Channel   flexString `json:"cod_channel"`
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*f = flexString(n.String())
	return nil
}

// ReservationsForRoom returns every reservation the proxy knows for roomID. Window filtering is up to the caller.
func (c *Client) ReservationsForRoom(ctx context.Context, roomID int64) ([]models.Reservation, error) {
	payload, err := json.Marshal(reservationsRequest{Action: actionForRoom, RoomID: roomID})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+reservationsPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch reservations for room %d: %w", roomID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyExcerpt))
		return nil, &UpstreamError{Status: resp.StatusCode, Body: string(raw)}
	}

	var body reservationsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	out := make([]models.Reservation, 0, len(body.Data))
	for _, d := range body.Data {
		r, err := c.toModel(roomID, d)
		if err != nil {
			return nil, fmt.Errorf("%w: reservation %s: %v", ErrMalformed, d.ID, err)
		}
		out = append(out, r)
	}
	return out, nil
}

func (c *Client) toModel(roomID int64, d reservationDTO) (models.Reservation, error) {
	checkIn, err := ParseTime(d.Arrival, c.loc)
	if err != nil {
		return models.Reservation{}, fmt.Errorf("arrival: %w", err)
	}
	checkOut, err := ParseTime(d.Departure, c.loc)
	if err != nil {
		return models.Reservation{}, fmt.Errorf("departure: %w", err)
	}
	return models.Reservation{
		ID:       string(d.ID),
		Label:    d.Label,
		RoomID:   roomID,
		CheckIn:  checkIn,
		CheckOut: checkOut,
		Channel:  string(d.Channel),
	}, nil
}

var layouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTime accepts the timestamp shapes the booking proxy emits. Values without an offset are read in loc.
func ParseTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && len(s) >= 9 {
		return time.Unix(n, 0).In(loc), nil
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}
