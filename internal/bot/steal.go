package bot

import (
	"context"
	"errors"
	"log/slog"

	"github.com/rishx/venombot/internal/platform"
	"github.com/rishx/venombot/internal/session"
)

// cmdSteal gathers the images of a target message and opens a triage
// session over them. The target is the replied-to message, or an explicit
// message id.
func cmdSteal(ctx context.Context, b *Bot, inv *invocation) {
	if inv.guildID == "" {
		inv.replyText(ctx, "❌ This command only works in a server.")
		return
	}
	if !inv.hasPermission(platform.PermManageAssets) {
		inv.replyEphemeral(ctx, "❌ You need emoji/sticker permissions to steal images.")
		return
	}

	messageID := inv.option("message_id", 0)
	if messageID == "" && inv.msg != nil && inv.msg.Reference != nil {
		messageID = inv.msg.Reference.MessageID
	}
	if messageID == "" {
		inv.replyText(ctx, "❌ Reply to a message with images, or give a message id. Usage: `"+b.cfg.Prefix+"steal [message_id]`")
		return
	}

	target, err := b.rest.GetMessage(ctx, inv.channelID, messageID)
	if err != nil {
		slog.Warn("steal target fetch failed", "channel", inv.channelID, "message", messageID, "error", err)
		inv.replyText(ctx, "❌ Couldn't find that message in this channel.")
		return
	}

	candidates := platform.ImageCandidates(target)
	if len(candidates) == 0 {
		inv.replyText(ctx, "🔍 No images found in that message.")
		return
	}

	items := make([]session.Item, 0, len(candidates))
	for _, c := range candidates {
		data, err := b.rest.Download(ctx, c.URL)
		if err != nil {
			// Broken links are common in old messages; keep whatever
			// downloads cleanly.
			slog.Warn("candidate download failed", "url", c.URL, "error", err)
			continue
		}
		items = append(items, session.Item{Bytes: data, SuggestedName: c.Filename, SourceURL: c.URL})
	}
	if len(items) == 0 {
		inv.replyText(ctx, "⚠️ Found image links but none of them could be downloaded.")
		return
	}

	owner := session.Participant{ID: inv.actor.ID, Name: inv.actor.DisplayName(), Bot: inv.actor.Bot}
	s, r, err := b.sessions.CreateTriageSession(owner, inv.guildID, items)
	if err != nil {
		if errors.Is(err, session.ErrNoCandidates) {
			inv.replyText(ctx, "🔍 No images found in that message.")
			return
		}
		slog.Warn("triage session create failed", "error", err)
		inv.replyText(ctx, "⚠️ Couldn't start the steal session.")
		return
	}

	sent, err := inv.reply(ctx, renderMessage(r))
	if err != nil || sent == nil {
		slog.Warn("triage render send failed", "session_id", s.ID, "error", err)
		return
	}
	b.rememberSurface(s.ID, sent.ChannelID, sent.ID)
}
