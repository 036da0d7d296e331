package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultAirBaseURL = "https://air-quality-by-api-ninjas.p.rapidapi.com"
	airAPIHost        = "air-quality-by-api-ninjas.p.rapidapi.com"
)

// Pollutant is one measured pollutant concentration.
type Pollutant struct {
	Concentration float64 `json:"concentration"`
	AQI           int     `json:"aqi"`
}

// AirQuality is the air-quality response for a city, annotated with the
// derived category label and health tip.
type AirQuality struct {
	OverallAQI int       `json:"overall_aqi"`
	PM25       Pollutant `json:"PM2.5"`
	PM10       Pollutant `json:"PM10"`
	CO         Pollutant `json:"CO"`
	NO2        Pollutant `json:"NO2"`
	O3         Pollutant `json:"O3"`

	Category string `json:"-"`
	Tip      string `json:"-"`
}

// AQI category thresholds and health messages.
var aqiLevels = []struct {
	low, high int
	label     string
	tip       string
}{
	{0, 50, "Good", "✅ Air quality is good. Enjoy outdoor activities."},
	{51, 100, "Moderate", "⚠️ Acceptable, but some pollutants may affect sensitive people."},
	{101, 150, "Unhealthy for Sensitive Groups", "😷 Reduce prolonged outdoor exertion if sensitive."},
	{151, 200, "Unhealthy", "🚫 Everyone may begin to experience health effects."},
	{201, 300, "Very Unhealthy", "🛑 Health warnings of emergency conditions."},
	{301, 500, "Hazardous", "☠️ Serious health effects. Avoid all outdoor activity."},
}

// AQILevel returns the category label and health message for an AQI value.
func AQILevel(aqi int) (label, tip string) {
	for _, l := range aqiLevels {
		if aqi >= l.low && aqi <= l.high {
			return l.label, l.tip
		}
	}
	return "Unknown", "⚠️ AQI is out of range. Stay cautious."
}

// AirClient calls the API Ninjas air-quality API through RapidAPI.
type AirClient struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

// NewAirClient creates an air-quality client using the given RapidAPI key.
func NewAirClient(apiKey string) *AirClient {
	return &AirClient{
		baseURL: defaultAirBaseURL,
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: 10 * time.Second},
	}
}

// NewAirClientWithBaseURL creates a client against a non-default endpoint.
// Used by tests.
func NewAirClientWithBaseURL(apiKey, baseURL string) *AirClient {
	c := NewAirClient(apiKey)
	c.baseURL = baseURL
	return c
}

// ByCity fetches air quality for a city and annotates the result with the
// AQI category and tip.
func (c *AirClient) ByCity(ctx context.Context, city string) (*AirQuality, error) {
	q := url.Values{}
	q.Set("city", strings.TrimSpace(city))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/airquality?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-rapidapi-key", c.apiKey)
	req.Header.Set("x-rapidapi-host", airAPIHost)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("air quality request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("air quality api: status %d", resp.StatusCode)
	}

	// The API answers 200 with an error body for unknown cities, so the
	// overall_aqi presence check below is the real success signal.
	var payload struct {
		AirQuality
		OverallAQI *int `json:"overall_aqi"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode air quality response: %w", err)
	}
	if payload.OverallAQI == nil {
		return nil, fmt.Errorf("no air quality data for %q", city)
	}

	aq := payload.AirQuality
	aq.OverallAQI = *payload.OverallAQI
	aq.Category, aq.Tip = AQILevel(aq.OverallAQI)
	return &aq, nil
}
