package bot

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/rishx/venombot/internal/platform"
	"github.com/rishx/venombot/internal/session"
)

// command is one entry in the dispatch table, shared by the prefix router
// and the slash-command dispatcher.
type command struct {
	description string
	options     []platform.CommandOptionSpec
	handler     func(ctx context.Context, b *Bot, inv *invocation)
}

// invocation is a single command call, whichever way it arrived. Exactly
// one of msg and inter is set.
type invocation struct {
	bot       *Bot
	guildID   string
	channelID string
	actor     platform.User
	member    *platform.Member
	msg       *platform.Message
	inter     *platform.Interaction
	args      []string

	responded bool
}

// reply sends msg back where the command came from: the interaction
// response for slash calls, a channel reply for text calls. Follow-up
// replies after the first fall back to plain channel sends.
func (inv *invocation) reply(ctx context.Context, msg platform.SendMessage) (*platform.Message, error) {
	if inv.inter != nil && !inv.responded {
		inv.responded = true
		if err := inv.bot.rest.Respond(ctx, inv.inter, platform.ResponseMessage, &msg, false); err != nil {
			return nil, err
		}
		// The created reply is needed as a session surface for some
		// commands, so fetch it back through the webhook message.
		return inv.bot.rest.InteractionReply(ctx, inv.bot.cfg.AppID, inv.inter)
	}
	if inv.msg != nil && msg.Reference == nil {
		msg.Reference = &platform.MessageRef{MessageID: inv.msg.ID, ChannelID: inv.msg.ChannelID}
	}
	return inv.bot.rest.Send(ctx, inv.channelID, msg)
}

// replyText is reply with bare content.
func (inv *invocation) replyText(ctx context.Context, content string) {
	if _, err := inv.reply(ctx, platform.SendMessage{Content: content}); err != nil {
		slog.Warn("reply failed", "channel", inv.channelID, "error", err)
	}
}

// replyEphemeral answers privately to the actor. Text invocations have no
// ephemeral channel, so the reply is a normal one addressed by mention.
func (inv *invocation) replyEphemeral(ctx context.Context, content string) {
	if inv.inter != nil && !inv.responded {
		inv.responded = true
		msg := platform.SendMessage{Content: content}
		if err := inv.bot.rest.Respond(ctx, inv.inter, platform.ResponseMessage, &msg, true); err != nil {
			slog.Warn("ephemeral reply failed", "channel", inv.channelID, "error", err)
		}
		return
	}
	inv.replyText(ctx, inv.actor.Mention()+" "+content)
}

// option returns a named slash option, or the nth positional text argument.
func (inv *invocation) option(name string, n int) string {
	if inv.inter != nil {
		return inv.inter.Option(name)
	}
	if n >= 0 && n < len(inv.args) {
		return inv.args[n]
	}
	return ""
}

// rest returns a slash option, or all text arguments from position n
// joined back together (for free-form trailing arguments).
func (inv *invocation) rest(name string, n int) string {
	if inv.inter != nil {
		return inv.inter.Option(name)
	}
	if n < len(inv.args) {
		return strings.Join(inv.args[n:], " ")
	}
	return ""
}

var mentionRe = regexp.MustCompile(`^<@!?(\d+)>$`)

// userID extracts a user id from a mention, a raw id, or a slash option.
func (inv *invocation) userID(name string, n int) string {
	raw := inv.option(name, n)
	if m := mentionRe.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	if raw != "" && strings.Trim(raw, "0123456789") == "" {
		return raw
	}
	return ""
}

// userArg resolves a user argument through the platform, or returns false
// when the argument is missing or unknown.
func (inv *invocation) userArg(ctx context.Context, name string, n int) (platform.User, bool) {
	id := inv.userID(name, n)
	if id == "" {
		return platform.User{}, false
	}
	u, err := inv.bot.rest.GetUser(ctx, id)
	if err != nil {
		slog.Warn("user lookup failed", "user_id", id, "error", err)
		return platform.User{}, false
	}
	return *u, true
}

// hasPermission checks the acting member's permission bitfield. The
// bitfield only travels on interactions, so gated text commands are
// restricted to the configured owner.
func (inv *invocation) hasPermission(bit uint64) bool {
	if inv.actor.ID != "" && inv.actor.ID == inv.bot.cfg.OwnerID {
		return true
	}
	return inv.member.HasPermission(bit)
}

// isOwner reports whether the actor is the configured bot owner.
func (inv *invocation) isOwner() bool {
	return inv.bot.cfg.OwnerID != "" && inv.actor.ID == inv.bot.cfg.OwnerID
}

var styleMap = map[string]int{
	session.StyleSecondary: platform.ButtonSecondary,
	session.StylePrimary:   platform.ButtonPrimary,
	session.StyleSuccess:   platform.ButtonSuccess,
	session.StyleDanger:    platform.ButtonDanger,
}

// renderMessage converts a session rendering instruction into an outgoing
// message. Controls are grouped into action rows by their row index, and
// closed renderings carry no controls at all.
func renderMessage(r session.Render) platform.SendMessage {
	msg := platform.SendMessage{Content: r.Content, Embeds: []platform.Embed{}, Components: []platform.Component{}}

	rowIndex := map[int]int{}
	for _, c := range r.Controls {
		idx, ok := rowIndex[c.Row]
		if !ok {
			idx = len(msg.Components)
			rowIndex[c.Row] = idx
			msg.Components = append(msg.Components, platform.Row())
		}
		style, ok := styleMap[c.Style]
		if !ok {
			style = platform.ButtonSecondary
		}
		msg.Components[idx].Components = append(msg.Components[idx].Components, platform.Btn(c.ID, c.Label, style, c.Disabled))
	}

	if r.Image != nil {
		msg.Files = []platform.File{{Name: r.Image.SuggestedName, Data: r.Image.Bytes}}
	}
	return msg
}
