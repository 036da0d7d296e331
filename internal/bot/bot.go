// Package bot wires chat commands and interaction events to the weather,
// wiki and session services. Every command is reachable both as a
// prefix-text command and as a slash command, sharing one handler.
package bot

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rishx/venombot/internal/config"
	"github.com/rishx/venombot/internal/platform"
	"github.com/rishx/venombot/internal/session"
	"github.com/rishx/venombot/internal/weather"
	"github.com/rishx/venombot/internal/wiki"
)

// Bot dispatches platform events to command handlers. It implements
// platform.EventHandler.
type Bot struct {
	cfg      *config.Config
	rest     *platform.Rest
	sessions *session.Controller
	weather  *weather.Client
	air      *weather.AirClient
	wiki     *wiki.Client

	self      platform.User
	started   time.Time
	latency   func() time.Duration
	cooldowns *cooldownMap
	commands  map[string]command

	mu       sync.Mutex
	surfaces map[string]surface // session id -> message being rendered into
}

// surface is the message a session renders into.
type surface struct {
	channelID string
	messageID string
}

// New creates the bot. self must be the bot's own user, fetched before the
// gateway connects so opponent checks and self-message filtering work from
// the first event on.
func New(cfg *config.Config, rest *platform.Rest, self platform.User, wc *weather.Client, ac *weather.AirClient, wk *wiki.Client) *Bot {
	b := &Bot{
		cfg:       cfg,
		rest:      rest,
		weather:   wc,
		air:       ac,
		wiki:      wk,
		self:      self,
		started:   time.Now(),
		latency:   func() time.Duration { return 0 },
		cooldowns: newCooldownMap(),
		surfaces:  make(map[string]surface),
	}
	b.sessions = session.NewController(rest, self.ID, cfg.SessionTimeout, b.applyExpiry)
	b.commands = commandTable()
	return b
}

// Sessions exposes the session controller (janitor startup, health counts).
func (b *Bot) Sessions() *session.Controller {
	return b.sessions
}

// SetLatencySource plugs in the gateway latency probe used by ping.
func (b *Bot) SetLatencySource(fn func() time.Duration) {
	if fn != nil {
		b.latency = fn
	}
}

// CommandSpecs returns the slash-command registrations for every command.
func (b *Bot) CommandSpecs() []platform.CommandSpec {
	specs := make([]platform.CommandSpec, 0, len(b.commands))
	for name, cmd := range b.commands {
		specs = append(specs, platform.CommandSpec{
			Name:        name,
			Description: cmd.description,
			Options:     cmd.options,
		})
	}
	return specs
}

// HandleReady logs the established gateway session.
func (b *Bot) HandleReady(_ context.Context, r *platform.Ready) {
	slog.Info("gateway ready", "user", r.User.Username, "session_id", r.SessionID)
}

// HandleMessage runs prefix-text commands.
func (b *Bot) HandleMessage(ctx context.Context, m *platform.Message) {
	if m.Author.Bot || m.Author.ID == b.self.ID {
		return
	}
	if !strings.HasPrefix(m.Content, b.cfg.Prefix) {
		return
	}

	fields := strings.Fields(strings.TrimPrefix(m.Content, b.cfg.Prefix))
	if len(fields) == 0 {
		return
	}
	name := strings.ToLower(fields[0])
	cmd, ok := b.commands[name]
	if !ok {
		return
	}

	inv := &invocation{
		bot:       b,
		guildID:   m.GuildID,
		channelID: m.ChannelID,
		actor:     m.Author,
		member:    m.Member,
		msg:       m,
		args:      fields[1:],
	}
	slog.Info("text command", "command", name, "user", m.Author.ID, "guild", m.GuildID)
	cmd.handler(ctx, b, inv)
}

// HandleInteraction runs slash commands, button clicks and modal submits.
func (b *Bot) HandleInteraction(ctx context.Context, i *platform.Interaction) {
	switch i.Type {
	case platform.InteractionCommand:
		name := strings.ToLower(i.Data.Name)
		cmd, ok := b.commands[name]
		if !ok {
			return
		}
		inv := &invocation{
			bot:       b,
			guildID:   i.GuildID,
			channelID: i.ChannelID,
			actor:     i.Actor(),
			member:    i.Member,
			inter:     i,
		}
		slog.Info("slash command", "command", name, "user", inv.actor.ID, "guild", i.GuildID)
		cmd.handler(ctx, b, inv)
	case platform.InteractionComponent:
		b.handleComponent(ctx, i)
	case platform.InteractionModalSubmit:
		b.handleModalSubmit(ctx, i)
	}
}

// rememberSurface ties a session to the message rendering it.
func (b *Bot) rememberSurface(sessionID, channelID, messageID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.surfaces[sessionID] = surface{channelID: channelID, messageID: messageID}
}

// takeSurface looks up a session's rendering surface, removing the mapping
// when the rendering closes it.
func (b *Bot) takeSurface(sessionID string, closed bool) (surface, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.surfaces[sessionID]
	if ok && closed {
		delete(b.surfaces, sessionID)
	}
	return s, ok
}

// applyExpiry edits a timed-out session's message into its closed state.
// Invoked from the controller's per-session countdown timer.
func (b *Bot) applyExpiry(r session.Render) {
	surf, ok := b.takeSurface(r.SessionID, true)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if _, err := b.rest.Edit(ctx, surf.channelID, surf.messageID, renderMessage(r)); err != nil {
		slog.Warn("failed to render session timeout", "session_id", r.SessionID, "error", err)
	}
}
