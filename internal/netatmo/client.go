// Package netatmo is a thin adapter over the Netatmo Energy and Weather APIs.
// It holds no token state; every call receives the owner's access token.
package netatmo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	homesDataPath    = "/api/homesdata"
	homeStatusPath   = "/api/homestatus"
	setThermPath     = "/api/setroomthermpoint"
	stationsDataPath = "/api/getstationsdata"
)

// Client represents a Netatmo API client
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a new Netatmo API client
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// doRequest performs an authenticated API request
func (c *Client) doRequest(ctx context.Context, accessToken, method, path string, query, form url.Values, result any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyExcerpt))
		return &UpstreamError{Status: resp.StatusCode, Body: excerpt(raw)}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%w: decode %s: %v", ErrMalformed, path, err)
		}
	}
	return nil
}

// HomesData retrieves home topology. An empty homeID returns every home of the account.
func (c *Client) HomesData(ctx context.Context, accessToken, homeID string) (*HomesDataResponse, error) {
	query := url.Values{}
	if homeID != "" {
		query.Set("home_id", homeID)
	}

	var response HomesDataResponse
	if err := c.doRequest(ctx, accessToken, http.MethodGet, homesDataPath, query, nil, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// HomeStatus retrieves live room and module readings of one home.
func (c *Client) HomeStatus(ctx context.Context, accessToken, homeID string) (*HomeStatusResponse, error) {
	if homeID == "" {
		return nil, ErrMissingHomeID
	}

	var response HomeStatusResponse
	query := url.Values{"home_id": {homeID}}
	if err := c.doRequest(ctx, accessToken, http.MethodGet, homeStatusPath, query, nil, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// SetRoomThermPoint sets or clears a room override.
func (c *Client) SetRoomThermPoint(ctx context.Context, accessToken string, sp SetpointRequest) error {
	if err := sp.Validate(); err != nil {
		return err
	}

	form := url.Values{
		"home_id": {sp.HomeID},
		"room_id": {sp.RoomID},
		"mode":    {sp.Mode},
	}
	if sp.TempC != nil {
		form.Set("temp", strconv.FormatFloat(*sp.TempC, 'f', -1, 64))
	}
	if sp.EndTime != nil {
		form.Set("endtime", strconv.FormatInt(*sp.EndTime, 10))
	}

	return c.doRequest(ctx, accessToken, http.MethodPost, setThermPath, nil, form, nil)
}

// StationsData reads the legacy weather station endpoint.
func (c *Client) StationsData(ctx context.Context, accessToken, deviceID string) (*StationsDataResponse, error) {
	query := url.Values{}
	if deviceID != "" {
		query.Set("device_id", deviceID)
	}

	var response StationsDataResponse
	if err := c.doRequest(ctx, accessToken, http.MethodGet, stationsDataPath, query, nil, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// Validate checks the request shape before anything is sent.
func (sp SetpointRequest) Validate() error {
	switch {
	case sp.HomeID == "":
		return ErrMissingHomeID
	case sp.RoomID == "":
		return ErrMissingRoomID
	}
	switch sp.Mode {
	case SetpointManual:
		if sp.TempC == nil {
			return ErrTempRequired
		}
	case SetpointHome, SetpointMax:
	default:
		return ErrInvalidMode
	}
	return nil
}
