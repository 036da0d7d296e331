package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rishx/venombot/internal/platform"
)

func cmdEmojiList(ctx context.Context, b *Bot, inv *invocation) {
	if inv.guildID == "" {
		inv.replyText(ctx, "❌ This command only works in a server.")
		return
	}
	emojis, err := b.rest.ListEmojis(ctx, inv.guildID)
	if err != nil {
		slog.Warn("emoji list failed", "guild", inv.guildID, "error", err)
		inv.replyText(ctx, "❌ Couldn't list emojis right now.")
		return
	}
	if len(emojis) == 0 {
		inv.replyText(ctx, "😶 This server has no custom emojis yet.")
		return
	}
	var sb strings.Builder
	for _, e := range emojis {
		// Message content caps at 2000 characters.
		if sb.Len() > 1800 {
			sb.WriteString("…")
			break
		}
		sb.WriteString(e.Mention())
		sb.WriteString(" `:" + e.Name + ":`\n")
	}
	embed := platform.Embed{
		Title:       fmt.Sprintf("😀 Custom Emojis (%d)", len(emojis)),
		Description: sb.String(),
		Color:       0xfee75c,
	}
	if _, err := inv.reply(ctx, platform.SendMessage{Embeds: []platform.Embed{embed}}); err != nil {
		slog.Warn("emoji list reply failed", "error", err)
	}
}

// imageArg resolves the image for an add command from the url argument or
// the first image attachment on a text invocation.
func (inv *invocation) imageArg(ctx context.Context, name string, n int) ([]byte, bool) {
	url := inv.option(name, n)
	if url == "" && inv.msg != nil {
		for _, a := range inv.msg.Attachments {
			if strings.HasPrefix(a.ContentType, "image/") || platform.IsImageURL(a.URL) {
				url = a.URL
				break
			}
		}
	}
	if url == "" {
		return nil, false
	}
	data, err := inv.bot.rest.Download(ctx, url)
	if err != nil {
		slog.Warn("image download failed", "url", url, "error", err)
		return nil, false
	}
	return data, true
}

func cmdEmojiAdd(ctx context.Context, b *Bot, inv *invocation) {
	if inv.guildID == "" {
		inv.replyText(ctx, "❌ This command only works in a server.")
		return
	}
	if !inv.hasPermission(platform.PermManageAssets) {
		inv.replyEphemeral(ctx, "❌ You don't have permission to manage emojis.")
		return
	}
	name := inv.option("name", 0)
	if name == "" {
		inv.replyText(ctx, "❌ Give the emoji a name. Usage: `"+b.cfg.Prefix+"emojiadd <name> [url]`")
		return
	}
	data, ok := inv.imageArg(ctx, "url", 1)
	if !ok {
		inv.replyText(ctx, "❌ Provide an image URL or attach an image.")
		return
	}

	mention, err := b.rest.CreateEmoji(ctx, inv.guildID, name, data)
	if err != nil {
		slog.Warn("emoji create failed", "guild", inv.guildID, "name", name, "error", err)
		inv.replyText(ctx, "❌ Couldn't create the emoji. The image may be too large or the emoji slots full.")
		return
	}
	inv.replyText(ctx, fmt.Sprintf("✅ Emoji created: %s `:%s:`", mention, name))
}

func cmdEmojiDel(ctx context.Context, b *Bot, inv *invocation) {
	if inv.guildID == "" {
		inv.replyText(ctx, "❌ This command only works in a server.")
		return
	}
	if !inv.hasPermission(platform.PermManageAssets) {
		inv.replyEphemeral(ctx, "❌ You don't have permission to manage emojis.")
		return
	}
	ident := strings.Trim(inv.option("identifier", 0), ":")
	if ident == "" {
		inv.replyText(ctx, "❌ Tell me which emoji. Usage: `"+b.cfg.Prefix+"emojidel <name|id>`")
		return
	}

	emojis, err := b.rest.ListEmojis(ctx, inv.guildID)
	if err != nil {
		slog.Warn("emoji list failed", "guild", inv.guildID, "error", err)
		inv.replyText(ctx, "❌ Couldn't look up emojis right now.")
		return
	}
	for _, e := range emojis {
		if e.ID == ident || strings.EqualFold(e.Name, ident) {
			if err := b.rest.DeleteEmoji(ctx, inv.guildID, e.ID); err != nil {
				slog.Warn("emoji delete failed", "guild", inv.guildID, "emoji", e.ID, "error", err)
				inv.replyText(ctx, "❌ Couldn't delete that emoji.")
				return
			}
			inv.replyText(ctx, fmt.Sprintf("🗑️ Deleted emoji `:%s:`.", e.Name))
			return
		}
	}
	inv.replyText(ctx, fmt.Sprintf("🔍 No emoji named `%s` here.", ident))
}

func cmdStickerList(ctx context.Context, b *Bot, inv *invocation) {
	if inv.guildID == "" {
		inv.replyText(ctx, "❌ This command only works in a server.")
		return
	}
	stickers, err := b.rest.ListStickers(ctx, inv.guildID)
	if err != nil {
		slog.Warn("sticker list failed", "guild", inv.guildID, "error", err)
		inv.replyText(ctx, "❌ Couldn't list stickers right now.")
		return
	}
	if len(stickers) == 0 {
		inv.replyText(ctx, "😶 This server has no stickers yet.")
		return
	}
	var sb strings.Builder
	for _, s := range stickers {
		line := "• **" + s.Name + "**"
		if s.Description != "" {
			line += " — " + s.Description
		}
		sb.WriteString(line + "\n")
	}
	embed := platform.Embed{
		Title:       fmt.Sprintf("🏷️ Stickers (%d)", len(stickers)),
		Description: sb.String(),
		Color:       0x57f287,
	}
	if _, err := inv.reply(ctx, platform.SendMessage{Embeds: []platform.Embed{embed}}); err != nil {
		slog.Warn("sticker list reply failed", "error", err)
	}
}

func cmdStickerAdd(ctx context.Context, b *Bot, inv *invocation) {
	if inv.guildID == "" {
		inv.replyText(ctx, "❌ This command only works in a server.")
		return
	}
	if !inv.hasPermission(platform.PermManageAssets) {
		inv.replyEphemeral(ctx, "❌ You don't have permission to manage stickers.")
		return
	}
	name := inv.option("name", 0)
	if name == "" {
		inv.replyText(ctx, "❌ Give the sticker a name. Usage: `"+b.cfg.Prefix+"stickeradd <name>` with an image attached.")
		return
	}
	data, ok := inv.imageArg(ctx, "url", -1)
	if !ok {
		inv.replyText(ctx, "❌ Provide an image URL or attach an image.")
		return
	}
	description := inv.option("description", 1)
	emojiHint := inv.option("emoji", 2)

	if _, err := b.rest.CreateSticker(ctx, inv.guildID, name, description, emojiHint, data); err != nil {
		slog.Warn("sticker create failed", "guild", inv.guildID, "name", name, "error", err)
		inv.replyText(ctx, "❌ Couldn't create the sticker. Stickers must be PNG/APNG under 512 KB.")
		return
	}
	inv.replyText(ctx, fmt.Sprintf("✅ Sticker **%s** created.", name))
}

func cmdStickerDel(ctx context.Context, b *Bot, inv *invocation) {
	if inv.guildID == "" {
		inv.replyText(ctx, "❌ This command only works in a server.")
		return
	}
	if !inv.hasPermission(platform.PermManageAssets) {
		inv.replyEphemeral(ctx, "❌ You don't have permission to manage stickers.")
		return
	}
	ident := inv.option("identifier", 0)
	if ident == "" {
		inv.replyText(ctx, "❌ Tell me which sticker. Usage: `"+b.cfg.Prefix+"stickerdel <name|id>`")
		return
	}

	stickers, err := b.rest.ListStickers(ctx, inv.guildID)
	if err != nil {
		slog.Warn("sticker list failed", "guild", inv.guildID, "error", err)
		inv.replyText(ctx, "❌ Couldn't look up stickers right now.")
		return
	}
	for _, s := range stickers {
		if s.ID == ident || strings.EqualFold(s.Name, ident) {
			if err := b.rest.DeleteSticker(ctx, inv.guildID, s.ID); err != nil {
				slog.Warn("sticker delete failed", "guild", inv.guildID, "sticker", s.ID, "error", err)
				inv.replyText(ctx, "❌ Couldn't delete that sticker.")
				return
			}
			inv.replyText(ctx, fmt.Sprintf("🗑️ Deleted sticker **%s**.", s.Name))
			return
		}
	}
	inv.replyText(ctx, fmt.Sprintf("🔍 No sticker named `%s` here.", ident))
}
