package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/firebase/genkit/go/ai"
)

// WeatherInput defines input for the getWeather tool.
type WeatherInput struct {
	Latitude  float64 `json:"latitude" jsonschema_description:"Latitude of the location"`
	Longitude float64 `json:"longitude" jsonschema_description:"Longitude of the location"`
}

// GetWeather fetches the current forecast for a coordinate pair from the
// Open-Meteo API. No API key required.
func (h *Handler) GetWeather(ctx *ai.ToolContext, input WeatherInput) (Result, error) {
	if input.Latitude < -90 || input.Latitude > 90 {
		return errorResult(ErrCodeValidation,
			fmt.Sprintf("latitude %v out of range [-90, 90]", input.Latitude)), nil
	}
	if input.Longitude < -180 || input.Longitude > 180 {
		return errorResult(ErrCodeValidation,
			fmt.Sprintf("longitude %v out of range [-180, 180]", input.Longitude)), nil
	}

	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(input.Latitude, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(input.Longitude, 'f', -1, 64))
	params.Set("current", "temperature_2m")
	params.Set("hourly", "temperature_2m")
	params.Set("daily", "sunrise,sunset")
	params.Set("timezone", "auto")

	forecast, err := h.fetchJSON(ctx.Context, h.cfg.WeatherBaseURL+"?"+params.Encode())
	if err != nil {
		h.logger.Error("weather fetch failed",
			"latitude", input.Latitude, "longitude", input.Longitude, "error", err)
		return errorResult(ErrCodeNetwork, fmt.Sprintf("weather request failed: %v", err)), nil
	}

	return Result{
		Status:  StatusSuccess,
		Message: fmt.Sprintf("Weather for %.4f, %.4f", input.Latitude, input.Longitude),
		Data:    forecast,
	}, nil
}

// fetchJSON fetches a URL and decodes the JSON object response.
func (h *Handler) fetchJSON(ctx context.Context, rawURL string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}
