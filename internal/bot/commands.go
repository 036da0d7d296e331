package bot

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/rishx/venombot/internal/platform"
)

const memeCooldown = 10 * time.Second

func commandTable() map[string]command {
	return map[string]command{
		"weather": {
			description: "Get current weather and forecast for a city.",
			options: []platform.CommandOptionSpec{
				{Type: platform.OptionString, Name: "city", Description: "Name of the city to get weather for"},
			},
			handler: cmdWeather,
		},
		"air": {
			description: "Get real-time air quality data for a city.",
			options: []platform.CommandOptionSpec{
				{Type: platform.OptionString, Name: "city", Description: "The name of the city to check air quality for", Required: true},
			},
			handler: cmdAir,
		},
		"wiki": {
			description: "Get a short Wikipedia summary about a topic.",
			options: []platform.CommandOptionSpec{
				{Type: platform.OptionString, Name: "topic", Description: "Topic to look up", Required: true},
			},
			handler: cmdWiki,
		},
		"ping": {
			description: "Check the bot's latency and connection stats.",
			handler:     cmdPing,
		},
		"help": {
			description: "Show all available commands and usage.",
			handler:     cmdHelp,
		},
		"ui": {
			description: "Get detailed information about a user.",
			options: []platform.CommandOptionSpec{
				{Type: platform.OptionUser, Name: "user", Description: "User to inspect"},
			},
			handler: cmdUserInfo,
		},
		"dm": {
			description: "Send a beautiful DM to a user (admin-only).",
			options: []platform.CommandOptionSpec{
				{Type: platform.OptionUser, Name: "user", Description: "Recipient", Required: true},
				{Type: platform.OptionString, Name: "message", Description: "Message to deliver", Required: true},
			},
			handler: cmdDM,
		},
		"mutual": {
			description: "List mutual servers between the bot and another user.",
			options: []platform.CommandOptionSpec{
				{Type: platform.OptionUser, Name: "user", Description: "User to check", Required: true},
			},
			handler: cmdMutual,
		},
		"meme": {
			description: "Steal someone's name and roast them 💀",
			options: []platform.CommandOptionSpec{
				{Type: platform.OptionUser, Name: "member", Description: "Who to meme", Required: true},
			},
			handler: cmdMeme,
		},
		"kick": {
			description: "Kick a member from the server.",
			options: []platform.CommandOptionSpec{
				{Type: platform.OptionUser, Name: "member", Description: "Member to kick", Required: true},
				{Type: platform.OptionString, Name: "reason", Description: "Reason"},
			},
			handler: cmdKick,
		},
		"ban": {
			description: "Ban a member from the server.",
			options: []platform.CommandOptionSpec{
				{Type: platform.OptionUser, Name: "member", Description: "Member to ban", Required: true},
				{Type: platform.OptionString, Name: "reason", Description: "Reason"},
			},
			handler: cmdBan,
		},
		"unban": {
			description: "Unban a previously banned user by ID.",
			options: []platform.CommandOptionSpec{
				{Type: platform.OptionString, Name: "user_id", Description: "User id to unban", Required: true},
			},
			handler: cmdUnban,
		},
		"emojilist": {
			description: "List custom emojis in the server.",
			handler:     cmdEmojiList,
		},
		"emojiadd": {
			description: "Add an emoji from URL or attachment.",
			options: []platform.CommandOptionSpec{
				{Type: platform.OptionString, Name: "name", Description: "Name for emoji", Required: true},
				{Type: platform.OptionString, Name: "url", Description: "Image URL (optional if an image is attached)"},
			},
			handler: cmdEmojiAdd,
		},
		"emojidel": {
			description: "Delete a custom emoji by name or ID.",
			options: []platform.CommandOptionSpec{
				{Type: platform.OptionString, Name: "identifier", Description: "Emoji name or id", Required: true},
			},
			handler: cmdEmojiDel,
		},
		"stickerlist": {
			description: "List stickers in the server.",
			handler:     cmdStickerList,
		},
		"stickeradd": {
			description: "Add a sticker from an image URL or attachment.",
			options: []platform.CommandOptionSpec{
				{Type: platform.OptionString, Name: "name", Description: "Sticker name", Required: true},
				{Type: platform.OptionString, Name: "url", Description: "Image URL (optional if an image is attached)"},
				{Type: platform.OptionString, Name: "description", Description: "Short description"},
				{Type: platform.OptionString, Name: "emoji", Description: "Associated emoji"},
			},
			handler: cmdStickerAdd,
		},
		"stickerdel": {
			description: "Delete a sticker by name or ID.",
			options: []platform.CommandOptionSpec{
				{Type: platform.OptionString, Name: "identifier", Description: "Sticker name or id", Required: true},
			},
			handler: cmdStickerDel,
		},
		"steal": {
			description: "Steal images from a message and add them as emoji or sticker.",
			options: []platform.CommandOptionSpec{
				{Type: platform.OptionString, Name: "message_id", Description: "Message to steal from (or reply to one)"},
			},
			handler: cmdSteal,
		},
		"tictactoe": {
			description: "Play Tic Tac Toe with a friend or the bot!",
			options: []platform.CommandOptionSpec{
				{Type: platform.OptionUser, Name: "opponent", Description: "Who to challenge"},
			},
			handler: cmdTicTacToe,
		},
	}
}

func cmdPing(ctx context.Context, b *Bot, inv *invocation) {
	ws := b.latency().Milliseconds()
	uptime := time.Since(b.started).Round(time.Second)

	days := int(uptime.Hours()) / 24
	hours := int(uptime.Hours()) % 24
	minutes := int(uptime.Minutes()) % 60
	seconds := int(uptime.Seconds()) % 60

	embed := platform.Embed{
		Title: "📡 Bot Connection Stats",
		Color: 0x8a2be2,
		Fields: []platform.EmbedField{
			{Name: "🔌 Gateway Latency", Value: fmt.Sprintf("`%d ms`", ws), Inline: true},
			{Name: "⏳ Uptime", Value: fmt.Sprintf("`%dd %dh %dm %ds`", days, hours, minutes, seconds), Inline: true},
			{Name: "🎮 Live Sessions", Value: fmt.Sprintf("`%d`", b.sessions.Count()), Inline: true},
		},
	}
	if _, err := inv.reply(ctx, platform.SendMessage{Content: "🏓 Pong!", Embeds: []platform.Embed{embed}}); err != nil {
		slog.Warn("ping reply failed", "error", err)
	}
}

func cmdHelp(ctx context.Context, b *Bot, inv *invocation) {
	p := b.cfg.Prefix
	embed := platform.Embed{
		Title:       "📖 Venombot Help",
		Description: "Here are the commands you can use:",
		Color:       0x00b0f4,
		Fields: []platform.EmbedField{
			{Name: fmt.Sprintf("`%sweather [city]` or `/weather`", p), Value: "Current weather and forecast. Defaults to " + b.cfg.DefaultCity + "."},
			{Name: fmt.Sprintf("`%sair <city>` or `/air`", p), Value: "Real-time air quality with health tips."},
			{Name: fmt.Sprintf("`%swiki <topic>` or `/wiki`", p), Value: "Short Wikipedia summary."},
			{Name: fmt.Sprintf("`%ssteal` (reply to a message)", p), Value: "Grab images from a message and add them as emoji or stickers."},
			{Name: fmt.Sprintf("`%stictactoe [@opponent]`", p), Value: "Play Tic-Tac-Toe with a friend or the bot."},
			{Name: fmt.Sprintf("`%sui [@user]`", p), Value: "Detailed user profile."},
			{Name: fmt.Sprintf("`%smeme @someone`", p), Value: "Steal someone's name and roast them."},
			{Name: fmt.Sprintf("`%sping`", p), Value: "Latency and uptime."},
			{Name: fmt.Sprintf("`%skick` / `%sban` / `%sunban`", p, p, p), Value: "Moderation (permission-gated)."},
		},
	}
	if _, err := inv.reply(ctx, platform.SendMessage{Embeds: []platform.Embed{embed}}); err != nil {
		slog.Warn("help reply failed", "error", err)
	}
}

func cmdUserInfo(ctx context.Context, b *Bot, inv *invocation) {
	user, ok := inv.userArg(ctx, "user", 0)
	if !ok {
		user = inv.actor
	}

	created := platform.IDTime(user.ID)
	accountType := "👤 Human"
	if user.Bot {
		accountType = "🤖 Bot"
	}

	embed := platform.Embed{
		Title: fmt.Sprintf("🌌 %s's Profile Overview", user.Username),
		Color: 0x8a2be2,
		Fields: []platform.EmbedField{
			{Name: "🪪 Username", Value: user.Username, Inline: true},
			{Name: "🆔 ID", Value: "`" + user.ID + "`", Inline: true},
			{Name: "🧬 Type", Value: accountType, Inline: true},
			{Name: "📅 Account Created", Value: created.Format("2006-01-02 15:04 MST"), Inline: true},
		},
		Thumbnail: &platform.EmbedMedia{URL: user.AvatarURL()},
		Footer:    &platform.EmbedFooter{Text: "Requested by " + inv.actor.DisplayName()},
	}
	if user.GlobalName != "" {
		embed.Fields = append(embed.Fields, platform.EmbedField{Name: "✨ Display Name", Value: user.GlobalName, Inline: true})
	}
	if _, err := inv.reply(ctx, platform.SendMessage{Embeds: []platform.Embed{embed}}); err != nil {
		slog.Warn("userinfo reply failed", "error", err)
	}
}

func cmdDM(ctx context.Context, b *Bot, inv *invocation) {
	if !inv.hasPermission(platform.PermAdministrator) {
		inv.replyEphemeral(ctx, "❌ You need administrator permissions to use this.")
		return
	}
	user, ok := inv.userArg(ctx, "user", 0)
	if !ok {
		inv.replyText(ctx, "❌ Tag a user to DM. Usage: `"+b.cfg.Prefix+"dm @user <message>`")
		return
	}
	message := inv.rest("message", 1)
	if message == "" {
		inv.replyText(ctx, "❌ Provide a message to send.")
		return
	}

	embed := platform.Embed{
		Title:       "You've got a new message! 💌",
		Description: message,
		Color:       0x5865f2,
		Footer:      &platform.EmbedFooter{Text: "Sent via Venombot"},
	}
	if _, err := b.rest.DM(ctx, user.ID, platform.SendMessage{Embeds: []platform.Embed{embed}}); err != nil {
		slog.Warn("dm failed", "user_id", user.ID, "error", err)
		inv.replyText(ctx, fmt.Sprintf("❌ Couldn't DM %s — their DMs may be closed.", user.Mention()))
		return
	}
	inv.replyText(ctx, fmt.Sprintf("✅ Message delivered to %s.", user.Mention()))
}

func cmdMutual(ctx context.Context, b *Bot, inv *invocation) {
	if !inv.isOwner() {
		inv.replyEphemeral(ctx, "❌ Only the bot owner can use this command.")
		return
	}
	user, ok := inv.userArg(ctx, "user", 0)
	if !ok {
		inv.replyText(ctx, "❌ Tag a user to check mutual servers for.")
		return
	}
	if user.Bot {
		inv.replyText(ctx, "🤖 Bots aren't supported for mutual guild lookup.")
		return
	}

	guilds, err := b.rest.MyGuilds(ctx)
	if err != nil {
		slog.Warn("guild list failed", "error", err)
		inv.replyText(ctx, "❌ Couldn't list servers right now.")
		return
	}
	var mutual []string
	for _, g := range guilds {
		if _, err := b.rest.GetMember(ctx, g.ID, user.ID); err == nil {
			mutual = append(mutual, "• "+g.Name)
		}
	}
	if len(mutual) == 0 {
		inv.replyText(ctx, fmt.Sprintf("🔍 No mutual servers with %s.", user.Mention()))
		return
	}
	embed := platform.Embed{
		Title:       fmt.Sprintf("🌐 Mutual Servers with %s", user.DisplayName()),
		Description: strings.Join(mutual, "\n"),
		Color:       0x8a2be2,
	}
	if _, err := inv.reply(ctx, platform.SendMessage{Embeds: []platform.Embed{embed}}); err != nil {
		slog.Warn("mutual reply failed", "error", err)
	}
}

var memeSuffixes = []string{"inator", "zilla", "master3000", "the_fake", "bot.exe", "sus", "v2", "jr", "the_third"}

var memeEmojis = []string{"😈", "🧠", "💀", "🛸", "🎭", "🔥"}

// twistName reverses the name's core and bolts on a random suffix.
func twistName(name string) string {
	core := strings.ToLower(strings.ReplaceAll(name, " ", ""))
	if len(core) > 8 {
		core = core[:8]
	}
	runes := []rune(core)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	twist := string(runes)
	if twist != "" {
		twist = strings.ToUpper(twist[:1]) + twist[1:]
	}
	return twist + memeSuffixes[rand.Intn(len(memeSuffixes))] + " " + memeEmojis[rand.Intn(len(memeEmojis))]
}

func cmdMeme(ctx context.Context, b *Bot, inv *invocation) {
	if ok, wait := b.cooldowns.tryAcquire("meme", inv.actor.ID, memeCooldown); !ok {
		inv.replyEphemeral(ctx, fmt.Sprintf("⏳ Slow down! Try again in %.0fs.", wait.Seconds()))
		return
	}
	target, ok := inv.userArg(ctx, "member", 0)
	if !ok {
		inv.replyText(ctx, "🧐 You gotta tag someone to meme! Try `"+b.cfg.Prefix+"meme @someone`.")
		return
	}

	original := target.DisplayName()
	twisted := twistName(original)
	jokePacks := [][]string{
		{
			fmt.Sprintf("🎭 Meme upload complete. **%s** just got roasted.", original),
			fmt.Sprintf("💡 New alias: **%s**.", twisted),
			"📞 Calling the FBI now... oops, too late. 🚓💨",
		},
		{
			fmt.Sprintf("🧠 Downloaded brain data of **%s**...", original),
			fmt.Sprintf("🔁 Rebooted as: **%s** 2.0.", twisted),
			"💀 You're legally a meme now.",
		},
		{
			fmt.Sprintf("🥷 Just borrowed **%s**'s personality.", original),
			fmt.Sprintf("🧬 Rebranded to: **%s**.", twisted),
			"📦 Packaging meme... Delivered to Area 51. 🛸",
		},
	}
	jokes := jokePacks[rand.Intn(len(jokePacks))]
	colors := []int{0x5865f2, 0xed4245, 0x57f287, 0xfee75c}

	embed := platform.Embed{
		Title:       "🕵️ Meme Heist In Progress...",
		Description: strings.Join(jokes, "\n"),
		Color:       colors[rand.Intn(len(colors))],
		Thumbnail:   &platform.EmbedMedia{URL: target.AvatarURL()},
		Footer:      &platform.EmbedFooter{Text: "Initiated by " + inv.actor.DisplayName()},
	}
	if _, err := inv.reply(ctx, platform.SendMessage{Embeds: []platform.Embed{embed}}); err != nil {
		slog.Warn("meme reply failed", "error", err)
	}
}
