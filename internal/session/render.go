package session

import "fmt"

// Control is one interactive element (a button) the host should attach to
// the rendering surface. ID round-trips back in action events.
type Control struct {
	ID       string
	Label    string
	Style    string
	Row      int
	Disabled bool
}

// Control styles understood by the host.
const (
	StyleSecondary = "secondary"
	StylePrimary   = "primary"
	StyleSuccess   = "success"
	StyleDanger    = "danger"
)

// Render is a rendering instruction: the content and controls the host
// should display next for a session. The host turns this into an actual
// message send or edit. Ephemeral renders go to the acting user only.
type Render struct {
	SessionID string
	Content   string
	Image     *Item
	Controls  []Control
	Closed    bool
	Ephemeral bool
}

var symbols = [2]string{"❌", "⭕"}

func mention(p Participant) string {
	if p.ID == "" {
		return p.Name
	}
	return "<@" + p.ID + ">"
}

// renderGame builds the board view for a live or finished match. Caller
// holds the session lock.
func renderGame(s *Session, outcome Outcome, winner int) Render {
	g := s.Game
	var content string
	closed := s.Terminal
	switch outcome {
	case OutcomeWin:
		content = fmt.Sprintf("🎉 %s wins!", mention(g.Players[winner]))
	case OutcomeDraw:
		content = "🤝 It's a draw!"
	default:
		content = fmt.Sprintf("🎮 %s's turn (%s)", mention(g.Players[g.Turn]), symbols[g.Turn])
	}

	controls := make([]Control, 0, 9)
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			c := Control{
				ID:  fmt.Sprintf("ttt:%s:%d:%d", s.ID, row, col),
				Row: row,
			}
			switch mark := g.Board[row][col]; mark {
			case CellEmpty:
				c.Label = "⬜"
				c.Style = StyleSecondary
				c.Disabled = closed
			case 0:
				c.Label = symbols[0]
				c.Style = StyleSuccess
				c.Disabled = true
			default:
				c.Label = symbols[1]
				c.Style = StyleDanger
				c.Disabled = true
			}
			controls = append(controls, c)
		}
	}
	return Render{SessionID: s.ID, Content: content, Controls: controls, Closed: closed}
}

// renderTriage builds the view for the item under the cursor, with
// navigation and artifact controls.
func renderTriage(s *Session) Render {
	t := s.Triage
	item := t.Current()
	content := fmt.Sprintf("🖼️ Image %d/%d\nSource: `%s`\nChoose **Add as Emoji** or **Add as Sticker**.",
		t.Cursor+1, len(t.Items), item.SourceURL)
	controls := []Control{
		{ID: "steal:" + s.ID + ":prev", Label: "⏮ Prev", Style: StyleSecondary, Row: 0},
		{ID: "steal:" + s.ID + ":next", Label: "Next ⏭", Style: StyleSecondary, Row: 0},
		{ID: "steal:" + s.ID + ":emoji", Label: "Add as Emoji", Style: StyleSuccess, Row: 1},
		{ID: "steal:" + s.ID + ":sticker", Label: "Add as Sticker", Style: StylePrimary, Row: 1},
		{ID: "steal:" + s.ID + ":cancel", Label: "Cancel", Style: StyleDanger, Row: 1},
	}
	return Render{SessionID: s.ID, Content: content, Image: &item, Controls: controls}
}

// renderClosed builds the final view shown when a session ends without a
// variant-specific rendering (cancellation, timeout, artifact success).
func renderClosed(s *Session, content string) Render {
	return Render{SessionID: s.ID, Content: content, Closed: true}
}
