package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/rishx/venombot/internal/platform"
	"github.com/rishx/venombot/internal/session"
)

// handleComponent routes button clicks by custom id. Game cells are
// "ttt:<session>:<row>:<col>"; triage controls are "steal:<session>:<action>".
func (b *Bot) handleComponent(ctx context.Context, i *platform.Interaction) {
	parts := strings.Split(i.Data.CustomID, ":")
	switch {
	case parts[0] == "ttt" && len(parts) == 4:
		b.handleGameClick(ctx, i, parts[1], parts[2], parts[3])
	case parts[0] == "steal" && len(parts) == 3:
		b.handleTriageClick(ctx, i, parts[1], parts[2])
	default:
		slog.Warn("unknown component", "custom_id", i.Data.CustomID)
	}
}

// updateSurface answers the interaction by rewriting the message it came
// from, and drops the session surface mapping once the session closes.
func (b *Bot) updateSurface(ctx context.Context, i *platform.Interaction, r session.Render) {
	msg := renderMessage(r)
	if err := b.rest.Respond(ctx, i, platform.ResponseUpdateMessage, &msg, false); err != nil {
		slog.Warn("surface update failed", "session_id", r.SessionID, "error", err)
		return
	}
	if r.Closed {
		b.takeSurface(r.SessionID, true)
	}
}

// whisper sends an ephemeral answer to the acting user without touching the
// session message.
func (b *Bot) whisper(ctx context.Context, i *platform.Interaction, content string) {
	msg := platform.SendMessage{Content: content}
	if err := b.rest.Respond(ctx, i, platform.ResponseMessage, &msg, true); err != nil {
		slog.Warn("ephemeral response failed", "error", err)
	}
}

// sessionErrorText maps controller errors to user-facing text. Unknown
// errors fall through to a generic line so the click never goes silent.
func sessionErrorText(err error) string {
	switch {
	case errors.Is(err, session.ErrNotYourTurn):
		return "❌ It's not your turn!"
	case errors.Is(err, session.ErrCellOccupied):
		return "⚠️ That spot is already taken."
	case errors.Is(err, session.ErrNotSessionOwner):
		return "🔒 This isn't your session."
	case errors.Is(err, session.ErrSessionClosed):
		return "⌛ This session has ended."
	case errors.Is(err, session.ErrUnknownSession):
		return "🤷 This session is no longer active."
	default:
		return "⚠️ Something went wrong. Try again."
	}
}

func (b *Bot) handleGameClick(ctx context.Context, i *platform.Interaction, sessionID, rowStr, colStr string) {
	row, err1 := strconv.Atoi(rowStr)
	col, err2 := strconv.Atoi(colStr)
	if err1 != nil || err2 != nil {
		slog.Warn("malformed game cell id", "custom_id", i.Data.CustomID)
		return
	}

	r, err := b.sessions.ApplyGameMove(sessionID, i.Actor().ID, row, col)
	if err != nil {
		b.whisper(ctx, i, sessionErrorText(err))
		return
	}
	b.updateSurface(ctx, i, r)
}

func (b *Bot) handleTriageClick(ctx context.Context, i *platform.Interaction, sessionID, action string) {
	actor := i.Actor()
	switch action {
	case "prev", "next":
		dir := session.Previous
		if action == "next" {
			dir = session.Next
		}
		r, err := b.sessions.NavigateTriage(sessionID, actor.ID, dir)
		if err != nil {
			b.whisper(ctx, i, sessionErrorText(err))
			return
		}
		b.updateSurface(ctx, i, r)
	case "emoji":
		m := platform.Modal{
			CustomID: "steal-emoji:" + sessionID,
			Title:    "Add as Emoji",
			Inputs: []platform.TextInput{{
				Type: platform.ComponentTextInput, CustomID: "name", Label: "Emoji name",
				Style: 1, Placeholder: "cool_emoji", MaxLength: 32, Required: true,
			}},
		}
		if err := b.rest.RespondModal(ctx, i, m); err != nil {
			slog.Warn("modal open failed", "session_id", sessionID, "error", err)
		}
	case "sticker":
		m := platform.Modal{
			CustomID: "steal-sticker:" + sessionID,
			Title:    "Add as Sticker",
			Inputs: []platform.TextInput{
				{
					Type: platform.ComponentTextInput, CustomID: "name", Label: "Sticker name",
					Style: 1, Placeholder: "cool_sticker", MaxLength: 30, Required: true,
				},
				{
					Type: platform.ComponentTextInput, CustomID: "description", Label: "Description",
					Style: 1, Placeholder: "What is this sticker?", MaxLength: 100, Required: false,
				},
				{
					Type: platform.ComponentTextInput, CustomID: "emoji", Label: "Related emoji",
					Style: 1, Placeholder: "🙂", MaxLength: 20, Required: false,
				},
			},
		}
		if err := b.rest.RespondModal(ctx, i, m); err != nil {
			slog.Warn("modal open failed", "session_id", sessionID, "error", err)
		}
	case "cancel":
		r, err := b.sessions.Cancel(sessionID, actor.ID)
		if err != nil {
			b.whisper(ctx, i, sessionErrorText(err))
			return
		}
		b.updateSurface(ctx, i, r)
	default:
		slog.Warn("unknown triage action", "action", action)
	}
}

// handleModalSubmit finishes an artifact creation started from a triage
// modal. A collaborator failure leaves the session open so the user can try
// again with another name.
func (b *Bot) handleModalSubmit(ctx context.Context, i *platform.Interaction) {
	parts := strings.SplitN(i.Data.CustomID, ":", 2)
	if len(parts) != 2 {
		slog.Warn("unknown modal", "custom_id", i.Data.CustomID)
		return
	}
	sessionID := parts[1]

	var kind session.ArtifactKind
	switch parts[0] {
	case "steal-emoji":
		kind = session.ArtifactEmoji
	case "steal-sticker":
		kind = session.ArtifactSticker
	default:
		slog.Warn("unknown modal", "custom_id", i.Data.CustomID)
		return
	}

	name := strings.TrimSpace(i.ModalValue("name"))
	description := strings.TrimSpace(i.ModalValue("description"))
	emojiHint := strings.TrimSpace(i.ModalValue("emoji"))
	if name == "" {
		b.whisper(ctx, i, "❌ The name can't be empty.")
		return
	}

	res, err := b.sessions.RequestArtifactCreation(ctx, sessionID, i.Actor().ID, kind, name, description, emojiHint)
	if err != nil {
		if errors.Is(err, session.ErrCollaborator) {
			b.whisper(ctx, i, fmt.Sprintf("⚠️ Upload failed: %v\nTry again, maybe with a different name.", err))
			return
		}
		b.whisper(ctx, i, sessionErrorText(err))
		return
	}

	r := res.Render
	if kind == session.ArtifactEmoji && res.Ref != "" {
		r.Content += " " + res.Ref
	}
	b.updateSurface(ctx, i, r)
}
