package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rishx/venombot/internal/platform"
)

func cmdKick(ctx context.Context, b *Bot, inv *invocation) {
	if inv.guildID == "" {
		inv.replyText(ctx, "❌ This command only works in a server.")
		return
	}
	if !inv.hasPermission(platform.PermKickMembers) {
		inv.replyEphemeral(ctx, "❌ You don't have permission to kick members.")
		return
	}
	target, ok := inv.userArg(ctx, "member", 0)
	if !ok {
		inv.replyText(ctx, "❌ Tag a member to kick. Usage: `"+b.cfg.Prefix+"kick @member [reason]`")
		return
	}
	if target.ID == inv.actor.ID {
		inv.replyText(ctx, "🙃 You can't kick yourself.")
		return
	}
	reason := inv.rest("reason", 1)

	if err := b.rest.Kick(ctx, inv.guildID, target.ID, reason); err != nil {
		slog.Warn("kick failed", "guild", inv.guildID, "target", target.ID, "error", err)
		inv.replyText(ctx, fmt.Sprintf("❌ Couldn't kick %s. Check my role position and permissions.", target.Mention()))
		return
	}
	if reason == "" {
		reason = "No reason provided"
	}
	slog.Info("member kicked", "guild", inv.guildID, "target", target.ID, "by", inv.actor.ID)
	inv.replyText(ctx, fmt.Sprintf("✅ Kicked **%s**. Reason: %s", target.DisplayName(), reason))
}

func cmdBan(ctx context.Context, b *Bot, inv *invocation) {
	if inv.guildID == "" {
		inv.replyText(ctx, "❌ This command only works in a server.")
		return
	}
	if !inv.hasPermission(platform.PermBanMembers) {
		inv.replyEphemeral(ctx, "❌ You don't have permission to ban members.")
		return
	}
	target, ok := inv.userArg(ctx, "member", 0)
	if !ok {
		inv.replyText(ctx, "❌ Tag a member to ban. Usage: `"+b.cfg.Prefix+"ban @member [reason]`")
		return
	}
	if target.ID == inv.actor.ID {
		inv.replyText(ctx, "🙃 You can't ban yourself.")
		return
	}
	reason := inv.rest("reason", 1)

	if err := b.rest.Ban(ctx, inv.guildID, target.ID, reason); err != nil {
		slog.Warn("ban failed", "guild", inv.guildID, "target", target.ID, "error", err)
		inv.replyText(ctx, fmt.Sprintf("❌ Couldn't ban %s. Check my role position and permissions.", target.Mention()))
		return
	}
	if reason == "" {
		reason = "No reason provided"
	}
	slog.Info("member banned", "guild", inv.guildID, "target", target.ID, "by", inv.actor.ID)
	inv.replyText(ctx, fmt.Sprintf("🔨 Banned **%s**. Reason: %s", target.DisplayName(), reason))
}

func cmdUnban(ctx context.Context, b *Bot, inv *invocation) {
	if inv.guildID == "" {
		inv.replyText(ctx, "❌ This command only works in a server.")
		return
	}
	if !inv.hasPermission(platform.PermBanMembers) {
		inv.replyEphemeral(ctx, "❌ You don't have permission to unban members.")
		return
	}
	id := inv.userID("user_id", 0)
	if id == "" {
		inv.replyText(ctx, "❌ Give me a user id. Usage: `"+b.cfg.Prefix+"unban <user_id>`")
		return
	}

	if err := b.rest.Unban(ctx, inv.guildID, id); err != nil {
		slog.Warn("unban failed", "guild", inv.guildID, "target", id, "error", err)
		inv.replyText(ctx, "❌ Couldn't unban that user. Are they actually banned?")
		return
	}
	slog.Info("member unbanned", "guild", inv.guildID, "target", id, "by", inv.actor.ID)
	inv.replyText(ctx, fmt.Sprintf("✅ Unbanned <@%s>.", id))
}
