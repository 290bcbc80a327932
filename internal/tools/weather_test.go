package tools

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fathom0/fathom/internal/log"
)

func TestGetWeather(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"latitude":  r.URL.Query().Get("latitude"),
			"longitude": r.URL.Query().Get("longitude"),
			"current":   r.URL.Query().Get("current"),
			"timezone":  r.URL.Query().Get("timezone"),
		}
		_, _ = w.Write([]byte(`{"current": {"temperature_2m": 21.5}, "timezone": "Europe/Berlin"}`))
	}))
	t.Cleanup(srv.Close)

	h := NewHandler(Config{WeatherBaseURL: srv.URL}, srv.Client(), nil, nil, nil, log.NewNop())

	result, err := h.GetWeather(toolCtx(), WeatherInput{Latitude: 52.52, Longitude: 13.405})
	if err != nil {
		t.Fatalf("GetWeather() error = %v", err)
	}
	if result.Status != StatusSuccess {
		t.Fatalf("Status = %q, want %q (error: %+v)", result.Status, StatusSuccess, result.Error)
	}

	if gotQuery["latitude"] != "52.52" || gotQuery["longitude"] != "13.405" {
		t.Errorf("coordinates sent upstream = %v", gotQuery)
	}
	if gotQuery["current"] != "temperature_2m" {
		t.Errorf("current = %q, want temperature_2m", gotQuery["current"])
	}
	if gotQuery["timezone"] != "auto" {
		t.Errorf("timezone = %q, want auto", gotQuery["timezone"])
	}
	if result.Data["timezone"] != "Europe/Berlin" {
		t.Errorf("Data[timezone] = %v", result.Data["timezone"])
	}
}

func TestGetWeatherInvalidCoordinates(t *testing.T) {
	h := NewHandler(Config{}, nil, nil, nil, nil, log.NewNop())

	tests := []struct {
		name  string
		input WeatherInput
	}{
		{"latitude too high", WeatherInput{Latitude: 91, Longitude: 0}},
		{"latitude too low", WeatherInput{Latitude: -91, Longitude: 0}},
		{"longitude too high", WeatherInput{Latitude: 0, Longitude: 181}},
		{"longitude too low", WeatherInput{Latitude: 0, Longitude: -181}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.GetWeather(toolCtx(), tt.input)
			if err != nil {
				t.Fatalf("GetWeather() error = %v", err)
			}
			if result.Error == nil || result.Error.Code != ErrCodeValidation {
				t.Errorf("Error = %+v, want code %q", result.Error, ErrCodeValidation)
			}
		})
	}
}

func TestGetWeatherUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	h := NewHandler(Config{WeatherBaseURL: srv.URL}, srv.Client(), nil, nil, nil, log.NewNop())

	result, err := h.GetWeather(toolCtx(), WeatherInput{Latitude: 1, Longitude: 1})
	if err != nil {
		t.Fatalf("GetWeather() error = %v, want nil", err)
	}
	if result.Error == nil || result.Error.Code != ErrCodeNetwork {
		t.Errorf("Error = %+v, want code %q", result.Error, ErrCodeNetwork)
	}
}
