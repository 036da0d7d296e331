package weather

import (
	"strings"
	"testing"
)

func TestAQILevel(t *testing.T) {
	tests := []struct {
		aqi   int
		label string
	}{
		{0, "Good"},
		{50, "Good"},
		{51, "Moderate"},
		{100, "Moderate"},
		{101, "Unhealthy for Sensitive Groups"},
		{151, "Unhealthy"},
		{201, "Very Unhealthy"},
		{301, "Hazardous"},
		{500, "Hazardous"},
		{501, "Unknown"},
	}
	for _, tt := range tests {
		label, tip := AQILevel(tt.aqi)
		if label != tt.label {
			t.Errorf("AQILevel(%d): expected %q, got %q", tt.aqi, tt.label, label)
		}
		if tip == "" {
			t.Errorf("AQILevel(%d): expected a non-empty tip", tt.aqi)
		}
	}
}

func TestConditionEmoji(t *testing.T) {
	tests := []struct {
		condition string
		emoji     string
	}{
		{"Clear", "☀️"},
		{"Clouds", "☁️"},
		{"Rain", "🌧️"},
		{"Thunderstorm", "⛈️"},
		{"Drizzle", "🌦️"},
		{"Snow", "❄️"},
		{"Mist", "🌫️"},
		{"Haze", "🌫️"},
		{"Dust", "🏜️"},
		{"Tornado", "🌡️"},
	}
	for _, tt := range tests {
		if got := ConditionEmoji(tt.condition); got != tt.emoji {
			t.Errorf("ConditionEmoji(%q): expected %q, got %q", tt.condition, tt.emoji, got)
		}
	}
}

func TestTip(t *testing.T) {
	hot := &Current{}
	hot.Main.Temp = 40
	hot.Weather = []Condition{{Main: "Clear"}}
	tip := Tip(hot)
	if !strings.Contains(tip, "extremely hot") || !strings.Contains(tip, "Clear skies") {
		t.Errorf("Expected heat and clear-sky advice, got %q", tip)
	}

	mild := &Current{}
	mild.Main.Temp = 20
	mild.Weather = []Condition{{Main: "Clouds"}}
	if got := Tip(mild); got != "" {
		t.Errorf("Expected no tip for mild cloudy weather, got %q", got)
	}

	if got := Tip(nil); got != "" {
		t.Errorf("Expected empty tip for nil input, got %q", got)
	}
}

func TestFormatForecast(t *testing.T) {
	fc := &Forecast{}
	for i := 0; i < 5; i++ {
		var e ForecastEntry
		e.Dt = 1700000000 + int64(i)*10800
		e.Main.Temp = 20
		e.Main.Humidity = 50
		e.Weather = []Condition{{Main: "Rain", Description: "light rain"}}
		fc.List = append(fc.List, e)
	}

	out := FormatForecast(fc, 3)
	// Header plus three interval lines.
	if got := len(strings.Split(out, "\n")); got != 4 {
		t.Errorf("Expected 4 lines, got %d:\n%s", got, out)
	}
	if !strings.Contains(out, "Light rain") {
		t.Errorf("Expected capitalized description, got:\n%s", out)
	}

	if got := FormatForecast(nil, 3); !strings.Contains(got, "Couldn't retrieve") {
		t.Errorf("Expected fallback message, got %q", got)
	}
}

func TestFormatAirQuality(t *testing.T) {
	aq := &AirQuality{OverallAQI: 42}
	aq.PM25.Concentration = 10.5
	aq.Category, aq.Tip = AQILevel(aq.OverallAQI)

	out := FormatAirQuality(aq)
	if !strings.Contains(out, "42 — Good 😊") {
		t.Errorf("Expected AQI header, got:\n%s", out)
	}
	if !strings.Contains(out, "PM2.5: 10.5") {
		t.Errorf("Expected PM2.5 line, got:\n%s", out)
	}
}
