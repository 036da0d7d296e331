package bot

import (
	"context"
	"errors"
	"log/slog"

	"github.com/rishx/venombot/internal/session"
)

// cmdTicTacToe opens a match between the invoker and a tagged opponent.
// With no opponent the bot takes the second seat as a placeholder, so the
// board doubles as a solo scratchpad.
func cmdTicTacToe(ctx context.Context, b *Bot, inv *invocation) {
	initiator := session.Participant{ID: inv.actor.ID, Name: inv.actor.DisplayName(), Bot: inv.actor.Bot}

	opponent := session.Participant{ID: b.self.ID, Name: b.self.DisplayName(), Bot: true}
	if u, ok := inv.userArg(ctx, "opponent", 0); ok {
		opponent = session.Participant{ID: u.ID, Name: u.DisplayName(), Bot: u.Bot}
	}

	s, r, err := b.sessions.CreateGameSession(initiator, opponent)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrInvalidParticipants):
			inv.replyText(ctx, "🙃 You can't play against yourself! Tag someone else.")
		case errors.Is(err, session.ErrUnsupportedOpponent):
			inv.replyText(ctx, "⚠️ You can't challenge another bot.")
		default:
			slog.Warn("game session create failed", "error", err)
			inv.replyText(ctx, "⚠️ Couldn't start the game.")
		}
		return
	}

	sent, err := inv.reply(ctx, renderMessage(r))
	if err != nil || sent == nil {
		slog.Warn("game render send failed", "session_id", s.ID, "error", err)
		return
	}
	b.rememberSurface(s.ID, sent.ChannelID, sent.ID)
}
