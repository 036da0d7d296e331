// Package weather fetches and formats current conditions, forecasts and air
// quality for the bot's weather commands.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultBaseURL = "https://api.openweathermap.org/data/2.5"

// Current is the OpenWeatherMap current-conditions response, trimmed to the
// fields the formatters use.
type Current struct {
	Name string `json:"name"`
	Dt   int64  `json:"dt"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
		Pressure  int     `json:"pressure"`
	} `json:"main"`
	Weather []Condition `json:"weather"`
	Wind    struct {
		Speed float64 `json:"speed"`
		Gust  float64 `json:"gust"`
	} `json:"wind"`
	Clouds struct {
		All int `json:"all"`
	} `json:"clouds"`
	Sys struct {
		Sunrise int64 `json:"sunrise"`
		Sunset  int64 `json:"sunset"`
	} `json:"sys"`
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
}

// Condition is one weather condition entry.
type Condition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Forecast is the 5-day/3-hour forecast response.
type Forecast struct {
	List []ForecastEntry `json:"list"`
}

// ForecastEntry is one 3-hour forecast interval.
type ForecastEntry struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Weather []Condition `json:"weather"`
}

type apiError struct {
	Message string `json:"message"`
}

// Client calls the OpenWeatherMap API with metric units.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

// NewClient creates a weather client using the given API key.
func NewClient(apiKey string) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: 10 * time.Second},
	}
}

// NewClientWithBaseURL creates a client against a non-default endpoint.
// Used by tests.
func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	c := NewClient(apiKey)
	c.baseURL = baseURL
	return c
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e apiError
		if err := json.NewDecoder(resp.Body).Decode(&e); err == nil && e.Message != "" {
			return fmt.Errorf("weather api: %s (status %d)", e.Message, resp.StatusCode)
		}
		return fmt.Errorf("weather api: status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode weather response: %w", err)
	}
	return nil
}

func cityQuery(city string) url.Values {
	return url.Values{"q": []string{city}}
}

func coordQuery(lat, lon float64) url.Values {
	return url.Values{
		"lat": []string{strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon": []string{strconv.FormatFloat(lon, 'f', -1, 64)},
	}
}

// CurrentByCity fetches current conditions for a city.
func (c *Client) CurrentByCity(ctx context.Context, city string) (*Current, error) {
	var cur Current
	if err := c.get(ctx, "/weather", cityQuery(city), &cur); err != nil {
		return nil, err
	}
	return &cur, nil
}

// CurrentByCoords fetches current conditions for a lat/lon pair.
func (c *Client) CurrentByCoords(ctx context.Context, lat, lon float64) (*Current, error) {
	var cur Current
	if err := c.get(ctx, "/weather", coordQuery(lat, lon), &cur); err != nil {
		return nil, err
	}
	return &cur, nil
}

// ForecastByCity fetches the 3-hour forecast for a city.
func (c *Client) ForecastByCity(ctx context.Context, city string) (*Forecast, error) {
	var fc Forecast
	if err := c.get(ctx, "/forecast", cityQuery(city), &fc); err != nil {
		return nil, err
	}
	return &fc, nil
}

// ForecastByCoords fetches the 3-hour forecast for a lat/lon pair.
func (c *Client) ForecastByCoords(ctx context.Context, lat, lon float64) (*Forecast, error) {
	var fc Forecast
	if err := c.get(ctx, "/forecast", coordQuery(lat, lon), &fc); err != nil {
		return nil, err
	}
	return &fc, nil
}

// IconURL returns the weather icon image for a condition icon code.
func IconURL(icon string) string {
	return "https://openweathermap.org/img/wn/" + icon + "@2x.png"
}
