package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCurrentByCity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/weather" {
			t.Errorf("Expected /weather path, got %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("q") != "Muzaffarpur" || q.Get("units") != "metric" || q.Get("appid") != "test-key" {
			t.Errorf("Unexpected query: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"name": "Muzaffarpur",
			"dt": 1700000000,
			"main": {"temp": 28.5, "feels_like": 30.1, "humidity": 70, "pressure": 1008},
			"weather": [{"main": "Clouds", "description": "broken clouds", "icon": "04d"}],
			"wind": {"speed": 3.6, "gust": 5.2},
			"clouds": {"all": 75},
			"sys": {"sunrise": 1699999000, "sunset": 1700040000},
			"coord": {"lat": 26.12, "lon": 85.39}
		}`))
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("test-key", srv.URL)
	cur, err := c.CurrentByCity(context.Background(), "Muzaffarpur")
	if err != nil {
		t.Fatalf("CurrentByCity failed: %v", err)
	}
	if cur.Main.Temp != 28.5 {
		t.Errorf("Expected temp 28.5, got %v", cur.Main.Temp)
	}
	if len(cur.Weather) != 1 || cur.Weather[0].Main != "Clouds" {
		t.Errorf("Unexpected weather conditions: %+v", cur.Weather)
	}
}

func TestCurrentByCity_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"cod": "404", "message": "city not found"}`))
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("test-key", srv.URL)
	_, err := c.CurrentByCity(context.Background(), "Nowhere")
	if err == nil {
		t.Fatal("Expected error for unknown city")
	}
	if !strings.Contains(err.Error(), "city not found") {
		t.Errorf("Expected api message in error, got %v", err)
	}
}

func TestCurrentByCoords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/weather" {
			t.Errorf("Expected /weather path, got %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("lat") != "26.12" || q.Get("lon") != "85.39" {
			t.Errorf("Unexpected coordinates query: %s", r.URL.RawQuery)
		}
		if q.Has("q") {
			t.Error("Coordinate lookups must not carry a city query")
		}
		_, _ = w.Write([]byte(`{"name": "Muzaffarpur", "main": {"temp": 28.5}, "weather": [{"main": "Clear"}]}`))
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("test-key", srv.URL)
	cur, err := c.CurrentByCoords(context.Background(), 26.12, 85.39)
	if err != nil {
		t.Fatalf("CurrentByCoords failed: %v", err)
	}
	if cur.Name != "Muzaffarpur" {
		t.Errorf("Expected resolved name, got %q", cur.Name)
	}
}

func TestForecastByCoords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/forecast" {
			t.Errorf("Expected /forecast path, got %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("lat") != "-33.87" || q.Get("lon") != "151.21" {
			t.Errorf("Unexpected coordinates query: %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"list": [{"dt": 1700000000, "main": {"temp": 19}}]}`))
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("test-key", srv.URL)
	fc, err := c.ForecastByCoords(context.Background(), -33.87, 151.21)
	if err != nil {
		t.Fatalf("ForecastByCoords failed: %v", err)
	}
	if len(fc.List) != 1 {
		t.Errorf("Expected 1 forecast entry, got %d", len(fc.List))
	}
}

func TestForecastByCity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/forecast" {
			t.Errorf("Expected /forecast path, got %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"list": [
			{"dt": 1700000000, "main": {"temp": 25, "humidity": 60}, "weather": [{"main": "Rain", "description": "light rain"}]},
			{"dt": 1700010800, "main": {"temp": 24, "humidity": 65}, "weather": [{"main": "Rain", "description": "light rain"}]}
		]}`))
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("test-key", srv.URL)
	fc, err := c.ForecastByCity(context.Background(), "Delhi")
	if err != nil {
		t.Fatalf("ForecastByCity failed: %v", err)
	}
	if len(fc.List) != 2 {
		t.Errorf("Expected 2 forecast entries, got %d", len(fc.List))
	}
}

func TestAirByCity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-rapidapi-key"); got != "rapid-key" {
			t.Errorf("Expected rapidapi key header, got %q", got)
		}
		if got := r.URL.Query().Get("city"); got != "new delhi" {
			t.Errorf("Expected city=new delhi, got %q", got)
		}
		_, _ = w.Write([]byte(`{
			"overall_aqi": 178,
			"PM2.5": {"concentration": 88.2, "aqi": 167},
			"PM10": {"concentration": 120.1, "aqi": 83},
			"CO": {"concentration": 650.9, "aqi": 7},
			"NO2": {"concentration": 30.5, "aqi": 38},
			"O3": {"concentration": 55.8, "aqi": 44}
		}`))
	}))
	defer srv.Close()

	c := NewAirClientWithBaseURL("rapid-key", srv.URL)
	aq, err := c.ByCity(context.Background(), "new delhi")
	if err != nil {
		t.Fatalf("ByCity failed: %v", err)
	}
	if aq.OverallAQI != 178 {
		t.Errorf("Expected AQI 178, got %d", aq.OverallAQI)
	}
	if aq.Category != "Unhealthy" {
		t.Errorf("Expected Unhealthy category, got %q", aq.Category)
	}
	if aq.PM25.Concentration != 88.2 {
		t.Errorf("Expected PM2.5 88.2, got %v", aq.PM25.Concentration)
	}
}

func TestAirByCity_NoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error": "unknown city"}`))
	}))
	defer srv.Close()

	c := NewAirClientWithBaseURL("rapid-key", srv.URL)
	if _, err := c.ByCity(context.Background(), "Atlantis"); err == nil {
		t.Fatal("Expected error when overall_aqi is missing")
	}
}
