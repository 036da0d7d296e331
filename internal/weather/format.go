package weather

import (
	"fmt"
	"strings"
	"time"
)

// FormatCurrent renders current conditions into a chat-ready block.
func FormatCurrent(cur *Current) string {
	if cur == nil || len(cur.Weather) == 0 {
		return "⚠️ Couldn't retrieve current weather data."
	}
	w := cur.Weather[0]
	return fmt.Sprintf(
		"%s **%s**\n"+
			"🌡️ Temperature: %.1f°C (Feels like %.1f°C)\n"+
			"💧 Humidity: %d%%\n"+
			"🔵 Pressure: %d hPa\n"+
			"☁️ Cloud Coverage: %d%%\n"+
			"🌬️ Wind: %.1f km/h (Gusts: %.1f km/h)\n"+
			"🌅 Sunrise: %s | 🌇 Sunset: %s\n"+
			"📍 Coordinates: [Lat: %g, Lon: %g]\n"+
			"🕒 Last updated: %s",
		ConditionEmoji(w.Main), capitalize(w.Description),
		cur.Main.Temp, cur.Main.FeelsLike,
		cur.Main.Humidity,
		cur.Main.Pressure,
		cur.Clouds.All,
		cur.Wind.Speed, cur.Wind.Gust,
		clockTime(cur.Sys.Sunrise), clockTime(cur.Sys.Sunset),
		cur.Coord.Lat, cur.Coord.Lon,
		dateTime(cur.Dt),
	)
}

// FormatForecast renders the next count forecast intervals.
func FormatForecast(fc *Forecast, count int) string {
	if fc == nil || len(fc.List) == 0 {
		return "⚠️ Couldn't retrieve forecast data."
	}
	entries := fc.List
	if count > 0 && count < len(entries) {
		entries = entries[:count]
	}
	lines := []string{"**📅 Forecast (next few intervals):**"}
	for _, e := range entries {
		desc := ""
		emoji := "🌡️"
		if len(e.Weather) > 0 {
			desc = capitalize(e.Weather[0].Description)
			emoji = ConditionEmoji(e.Weather[0].Main)
		}
		lines = append(lines, fmt.Sprintf("%s **%s** — %.1f°C, %d%% humidity, %s",
			emoji, clockTime(e.Dt), e.Main.Temp, e.Main.Humidity, desc))
	}
	return strings.Join(lines, "\n")
}

// Tip gives basic advice based on temperature and condition, or an empty
// string when there is nothing worth saying.
func Tip(cur *Current) string {
	if cur == nil || len(cur.Weather) == 0 {
		return ""
	}
	var tips []string
	if cur.Main.Temp >= 35 {
		tips = append(tips, "🔥 It's extremely hot! Stay hydrated and avoid going out.")
	} else if cur.Main.Temp <= 5 {
		tips = append(tips, "🧊 It's freezing! Dress warmly and stay indoors if possible.")
	}

	switch cond := strings.ToLower(cur.Weather[0].Main); {
	case strings.Contains(cond, "rain"):
		tips = append(tips, "☔ Take an umbrella, it's rainy.")
	case strings.Contains(cond, "snow"):
		tips = append(tips, "❄️ Snow expected. Wear boots and warm layers.")
	case strings.Contains(cond, "thunder"):
		tips = append(tips, "⚡ Thunderstorm alert! Stay inside.")
	case strings.Contains(cond, "clear"):
		tips = append(tips, "🌞 Clear skies — a good time to go out!")
	}

	if len(tips) == 0 {
		return ""
	}
	return "💡 **Tip:** " + strings.Join(tips, " ")
}

// FormatAirQuality renders an air-quality reading into a chat-ready block.
func FormatAirQuality(aq *AirQuality) string {
	if aq == nil {
		return "⚠️ Couldn't retrieve air quality data."
	}
	return fmt.Sprintf(
		"**🌫️ Air Quality Index (AQI):** %d — %s\n"+
			"> 🟤 PM2.5: %g μg/m³\n"+
			"> ⚪ PM10: %g μg/m³\n"+
			"> 🟡 CO: %g μg/m³\n"+
			"> 🔵 NO₂: %g μg/m³\n"+
			"> 🟢 O₃: %g μg/m³\n"+
			"%s",
		aq.OverallAQI, interpretAQI(aq.OverallAQI),
		aq.PM25.Concentration,
		aq.PM10.Concentration,
		aq.CO.Concentration,
		aq.NO2.Concentration,
		aq.O3.Concentration,
		aq.Tip,
	)
}

func interpretAQI(aqi int) string {
	switch {
	case aqi <= 50:
		return "Good 😊"
	case aqi <= 100:
		return "Moderate 😐"
	case aqi <= 150:
		return "Unhealthy for Sensitive Groups 🤧"
	case aqi <= 200:
		return "Unhealthy 😷"
	case aqi <= 300:
		return "Very Unhealthy 🤢"
	default:
		return "Hazardous ☠️"
	}
}

// ConditionEmoji maps a weather condition to an emoji.
func ConditionEmoji(condition string) string {
	c := strings.ToLower(condition)
	switch {
	case strings.Contains(c, "clear"):
		return "☀️"
	case strings.Contains(c, "cloud"):
		return "☁️"
	case strings.Contains(c, "thunder"):
		return "⛈️"
	case strings.Contains(c, "drizzle"):
		return "🌦️"
	case strings.Contains(c, "rain"):
		return "🌧️"
	case strings.Contains(c, "snow"):
		return "❄️"
	case strings.Contains(c, "mist"), strings.Contains(c, "fog"), strings.Contains(c, "haze"):
		return "🌫️"
	case strings.Contains(c, "smoke"):
		return "🚬"
	case strings.Contains(c, "dust"), strings.Contains(c, "sand"):
		return "🏜️"
	default:
		return "🌡️"
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func clockTime(ts int64) string {
	return time.Unix(ts, 0).Format("03:04 PM")
}

func dateTime(ts int64) string {
	return time.Unix(ts, 0).Format("2006-01-02 03:04 PM")
}
