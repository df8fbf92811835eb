package netatmo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, srv.Client())
}

func TestHomeStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != homeStatusPath {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("home_id"); got != "h1" {
			t.Errorf("home_id = %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("authorization = %q", got)
		}
		_, _ = w.Write([]byte(`{"status":"ok","body":{"home":{"id":"h1",
			"rooms":[{"id":"r1","reachable":true,"therm_measured_temperature":19.5,"therm_setpoint_mode":"home"},{"id":"r2"}],
			"modules":[{"id":"m1","type":"NRV","reachable":false,"battery_state":"low"}]}}}`))
	})

	resp, err := c.HomeStatus(context.Background(), "tok", "h1")
	if err != nil {
		t.Fatalf("HomeStatus() error = %v", err)
	}
	home := resp.Body.Home
	if len(home.Rooms) != 2 || len(home.Modules) != 1 {
		t.Fatalf("unexpected home %+v", home)
	}
	r1 := home.Rooms[0]
	if r1.ThermMeasuredTemperature == nil || *r1.ThermMeasuredTemperature != 19.5 {
		t.Fatalf("measured temp = %v", r1.ThermMeasuredTemperature)
	}
	if home.Rooms[1].Reachable != nil || home.Rooms[1].ThermMeasuredTemperature != nil {
		t.Fatalf("unreported fields should stay nil: %+v", home.Rooms[1])
	}
	if m := home.Modules[0]; m.Reachable == nil || *m.Reachable || *m.BatteryState != "low" {
		t.Fatalf("module = %+v", m)
	}
}

func TestHomeStatusRequiresHomeID(t *testing.T) {
	c := NewClient("http://unused", nil)
	if _, err := c.HomeStatus(context.Background(), "tok", ""); !errors.Is(err, ErrMissingHomeID) {
		t.Fatalf("want ErrMissingHomeID, got %v", err)
	}
}

func TestHomesDataOptionalHomeID(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"status":"ok","body":{"homes":[{"id":"h1","name":"Sea view","rooms":[{"id":"r1","name":"Lounge"}]}]}}`))
	})

	resp, err := c.HomesData(context.Background(), "tok", "")
	if err != nil {
		t.Fatalf("HomesData() error = %v", err)
	}
	if gotQuery != "" {
		t.Fatalf("query = %q, want empty", gotQuery)
	}
	if len(resp.Body.Homes) != 1 || resp.Body.Homes[0].Rooms[0].Name != "Lounge" {
		t.Fatalf("unexpected homes %+v", resp.Body.Homes)
	}
}

func TestUpstreamErrorCarriesStatusAndExcerpt(t *testing.T) {
	long := strings.Repeat("x", 2000)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, long, http.StatusForbidden)
	})

	_, err := c.HomeStatus(context.Background(), "tok", "h1")
	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("want UpstreamError, got %v", err)
	}
	if ue.Status != http.StatusForbidden {
		t.Fatalf("status = %d", ue.Status)
	}
	if len(ue.Body) > maxBodyExcerpt {
		t.Fatalf("body excerpt too long: %d", len(ue.Body))
	}
}

func TestMalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	})
	if _, err := c.HomeStatus(context.Background(), "tok", "h1"); !errors.Is(err, ErrMalformed) {
		t.Fatalf("want ErrMalformed, got %v", err)
	}
}

func TestSetRoomThermPoint(t *testing.T) {
	temp := 20.5
	end := int64(1767225600)

	tests := []struct {
		name     string
		req      SetpointRequest
		wantErr  error
		wantForm map[string]string
	}{
		{
			name:     "manual with temp and end time",
			req:      SetpointRequest{HomeID: "h1", RoomID: "r1", Mode: SetpointManual, TempC: &temp, EndTime: &end},
			wantForm: map[string]string{"home_id": "h1", "room_id": "r1", "mode": "manual", "temp": "20.5", "endtime": "1767225600"},
		},
		{
			name:     "home without temp",
			req:      SetpointRequest{HomeID: "h1", RoomID: "r1", Mode: SetpointHome},
			wantForm: map[string]string{"mode": "home", "temp": "", "endtime": ""},
		},
		{
			name:    "manual without temp",
			req:     SetpointRequest{HomeID: "h1", RoomID: "r1", Mode: SetpointManual},
			wantErr: ErrTempRequired,
		},
		{
			name:    "unknown mode",
			req:     SetpointRequest{HomeID: "h1", RoomID: "r1", Mode: "off"},
			wantErr: ErrInvalidMode,
		},
		{
			name:    "missing room",
			req:     SetpointRequest{HomeID: "h1", Mode: SetpointHome},
			wantErr: ErrMissingRoomID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				called = true
				if r.Method != http.MethodPost || r.URL.Path != setThermPath {
					t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
				}
				if err := r.ParseForm(); err != nil {
					t.Errorf("parse form: %v", err)
				}
				for k, v := range tt.wantForm {
					if got := r.PostForm.Get(k); got != v {
						t.Errorf("form[%s] = %q, want %q", k, got, v)
					}
				}
				_, _ = w.Write([]byte(`{"status":"ok"}`))
			})

			err := c.SetRoomThermPoint(context.Background(), "tok", tt.req)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("want %v, got %v", tt.wantErr, err)
				}
				if called {
					t.Fatalf("invalid request must not reach the vendor")
				}
				return
			}
			if err != nil {
				t.Fatalf("SetRoomThermPoint() error = %v", err)
			}
			if !called {
				t.Fatalf("vendor was not called")
			}
		})
	}
}

func TestStationsData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != stationsDataPath || r.URL.Query().Get("device_id") != "70:ee" {
			t.Errorf("unexpected request %s", r.URL)
		}
		_, _ = w.Write([]byte(`{"status":"ok","body":{"devices":[{"_id":"70:ee","station_name":"Roof","reachable":true,
			"dashboard_data":{"Temperature":7.1},"modules":[{"_id":"02:00","type":"NAModule1","battery_percent":64}]}]}}`))
	})

	resp, err := c.StationsData(context.Background(), "tok", "70:ee")
	if err != nil {
		t.Fatalf("StationsData() error = %v", err)
	}
	d := resp.Body.Devices[0]
	if d.StationName != "Roof" || d.DashboardData["Temperature"] != 7.1 || d.Modules[0].BatteryPercent != 64 {
		t.Fatalf("unexpected device %+v", d)
	}
}
