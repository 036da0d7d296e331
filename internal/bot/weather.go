package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rishx/venombot/internal/platform"
	"github.com/rishx/venombot/internal/weather"
)

// forecastIntervals is how many 3-hour intervals the forecast message shows.
const forecastIntervals = 3

func cmdWeather(ctx context.Context, b *Bot, inv *invocation) {
	city := inv.rest("city", 0)
	if city == "" {
		city = b.cfg.DefaultCity
	}

	cur, err := b.weather.CurrentByCity(ctx, city)
	if err != nil {
		slog.Warn("weather lookup failed", "city", city, "error", err)
		inv.replyText(ctx, fmt.Sprintf("⚠️ Couldn't fetch weather for **%s**. Check the city name and try again.", city))
		return
	}

	desc := weather.FormatCurrent(cur)
	if tip := weather.Tip(cur); tip != "" {
		desc += "\n\n" + tip
	}
	embed := platform.Embed{
		Title:       fmt.Sprintf("🌍 Weather in %s", cur.Name),
		Description: desc,
		Color:       0x00b0f4,
	}
	if len(cur.Weather) > 0 {
		embed.Thumbnail = &platform.EmbedMedia{URL: weather.IconURL(cur.Weather[0].Icon)}
	}
	if _, err := inv.reply(ctx, platform.SendMessage{Embeds: []platform.Embed{embed}}); err != nil {
		slog.Warn("weather reply failed", "error", err)
		return
	}

	// The forecast goes out as a separate message so the current-conditions
	// embed stays readable on mobile.
	fc, err := b.weather.ForecastByCity(ctx, city)
	if err != nil {
		slog.Warn("forecast lookup failed", "city", city, "error", err)
		return
	}
	if _, err := b.rest.Send(ctx, inv.channelID, platform.SendMessage{Content: weather.FormatForecast(fc, forecastIntervals)}); err != nil {
		slog.Warn("forecast send failed", "error", err)
	}
}

func cmdAir(ctx context.Context, b *Bot, inv *invocation) {
	city := inv.rest("city", 0)
	if city == "" {
		inv.replyText(ctx, "❌ Tell me a city. Usage: `"+b.cfg.Prefix+"air <city>`")
		return
	}

	aq, err := b.air.ByCity(ctx, city)
	if err != nil {
		slog.Warn("air quality lookup failed", "city", city, "error", err)
		inv.replyText(ctx, fmt.Sprintf("⚠️ Couldn't fetch air quality for **%s**.", city))
		return
	}
	content := fmt.Sprintf("📍 **Air Quality in %s**\n%s", city, weather.FormatAirQuality(aq))
	inv.replyText(ctx, content)
}

func cmdWiki(ctx context.Context, b *Bot, inv *invocation) {
	topic := inv.rest("topic", 0)
	if topic == "" {
		inv.replyText(ctx, "❌ Give me a topic. Usage: `"+b.cfg.Prefix+"wiki <topic>`")
		return
	}

	sum, err := b.wiki.Lookup(ctx, topic, 3)
	if err != nil {
		slog.Warn("wiki lookup failed", "topic", topic, "error", err)
		inv.replyText(ctx, fmt.Sprintf("🔍 Couldn't find anything for **%s**.", topic))
		return
	}

	embed := platform.Embed{
		Title:       "📚 " + sum.Title,
		Description: sum.Extract,
		URL:         sum.URL,
		Color:       0xffd700,
		Footer:      &platform.EmbedFooter{Text: "Source: Wikipedia"},
	}
	if sum.ImageURL != "" {
		embed.Thumbnail = &platform.EmbedMedia{URL: sum.ImageURL}
	}
	if _, err := inv.reply(ctx, platform.SendMessage{Embeds: []platform.Embed{embed}}); err != nil {
		slog.Warn("wiki reply failed", "error", err)
	}
}
