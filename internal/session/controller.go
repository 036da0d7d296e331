package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	nanoid "github.com/matoous/go-nanoid/v2"
)

const (
	idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	idLength   = 12
)

func newID() string {
	id, err := nanoid.Generate(idAlphabet, idLength)
	if err != nil {
		// nanoid only fails when the platform RNG is broken.
		panic(fmt.Sprintf("session id generation failed: %v", err))
	}
	return "ses-" + id
}

// AssetCreator is the collaborator that turns triage items into platform
// assets. Implemented by the platform REST client.
type AssetCreator interface {
	CreateEmoji(ctx context.Context, scope, name string, image []byte) (string, error)
	CreateSticker(ctx context.Context, scope, name, description, emojiHint string, image []byte) (string, error)
}

// ArtifactResult reports a successful artifact creation.
type ArtifactResult struct {
	Ref    string
	Render Render
}

// Controller mediates all state transitions for live sessions. Sessions are
// independent of each other; actions targeting one session are serialized on
// that session's lock, in arrival order.
type Controller struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	assets   AssetCreator
	selfID   string
	timeout  time.Duration
	onExpire func(Render)
}

// NewController creates a session controller. selfID is the bot's own user
// id, the only automated account allowed as a game opponent. onExpire is
// invoked with the timeout rendering when a session's idle countdown fires;
// it may be nil.
func NewController(assets AssetCreator, selfID string, timeout time.Duration, onExpire func(Render)) *Controller {
	return &Controller{
		sessions: make(map[string]*Session),
		assets:   assets,
		selfID:   selfID,
		timeout:  timeout,
		onExpire: onExpire,
	}
}

// Count returns the number of tracked sessions, terminal ones included.
func (c *Controller) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sessions)
}

func (c *Controller) lookup(id string) (*Session, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.sessions[id]
	if !ok {
		return nil, ErrUnknownSession
	}
	return s, nil
}

// register stores a new session and starts its idle countdown. The timeout
// is fixed from creation; actions do not reset it.
func (c *Controller) register(s *Session) {
	now := time.Now()
	s.CreatedAt = now
	s.ExpiresAt = now.Add(c.timeout)
	s.timer = time.AfterFunc(c.timeout, func() {
		if r, ok := c.Expire(s.ID); ok && c.onExpire != nil {
			c.onExpire(r)
		}
	})

	c.mu.Lock()
	c.sessions[s.ID] = s
	c.mu.Unlock()
	slog.Info("session created", "session_id", s.ID, "kind", s.Kind, "owner", s.Owner.ID, "expires_at", s.ExpiresAt)
}

// CreateGameSession starts a Tic-Tac-Toe match between initiator and
// opponent. The opponent may be the bot's own placeholder identity but no
// other automated account, and never the initiator themselves.
func (c *Controller) CreateGameSession(initiator, opponent Participant) (*Session, Render, error) {
	if initiator.ID == opponent.ID {
		return nil, Render{}, ErrInvalidParticipants
	}
	if opponent.Bot && opponent.ID != c.selfID {
		return nil, Render{}, ErrUnsupportedOpponent
	}

	s := &Session{
		ID:    newID(),
		Kind:  KindGame,
		Owner: initiator,
		Game: &GameState{
			Board:   emptyBoard(),
			Players: [2]Participant{initiator, opponent},
			Turn:    0,
		},
	}
	c.register(s)
	return s, renderGame(s, OutcomeOpen, 0), nil
}

// CreateTriageSession starts an image-triage workflow over items. scope is
// the asset-creation scope (the guild) artifacts will be created in.
func (c *Controller) CreateTriageSession(owner Participant, scope string, items []Item) (*Session, Render, error) {
	if len(items) == 0 {
		return nil, Render{}, ErrNoCandidates
	}

	s := &Session{
		ID:     newID(),
		Kind:   KindTriage,
		Owner:  owner,
		Scope:  scope,
		Triage: &TriageState{Items: items},
	}
	c.register(s)
	return s, renderTriage(s), nil
}

// ApplyGameMove marks board[row][col] for the player whose turn it is,
// re-evaluates the board and returns the next rendering. The turn flips
// only when the game stays open.
func (c *Controller) ApplyGameMove(sessionID, actorID string, row, col int) (Render, error) {
	s, err := c.lookup(sessionID)
	if err != nil {
		return Render{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Terminal {
		return Render{}, ErrSessionClosed
	}
	if s.Kind != KindGame {
		return Render{}, ErrUnknownSession
	}
	if row < 0 || row > 2 || col < 0 || col > 2 {
		return Render{}, fmt.Errorf("cell (%d,%d) out of range", row, col)
	}

	g := s.Game
	if g.Players[g.Turn].ID != actorID {
		return Render{}, ErrNotYourTurn
	}
	if g.Board[row][col] != CellEmpty {
		return Render{}, ErrCellOccupied
	}

	g.Board[row][col] = Cell(g.Turn)
	outcome, winner := Evaluate(g.Board)
	if outcome != OutcomeOpen {
		s.close(time.Now())
		slog.Info("game finished", "session_id", s.ID, "outcome", outcome, "winner", winner)
	} else {
		g.Turn = 1 - g.Turn
	}
	return renderGame(s, outcome, winner), nil
}

// NavigateTriage moves the cursor one step in dir, wrapping around in both
// directions, and returns a rendering of the item at the new cursor.
func (c *Controller) NavigateTriage(sessionID, actorID string, dir Direction) (Render, error) {
	s, err := c.lookup(sessionID)
	if err != nil {
		return Render{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Terminal {
		return Render{}, ErrSessionClosed
	}
	if s.Kind != KindTriage {
		return Render{}, ErrUnknownSession
	}
	if s.Owner.ID != actorID {
		return Render{}, ErrNotSessionOwner
	}

	t := s.Triage
	n := len(t.Items)
	if dir == Next {
		t.Cursor = (t.Cursor + 1) % n
	} else {
		t.Cursor = (t.Cursor - 1 + n) % n
	}
	return renderTriage(s), nil
}

// RequestArtifactCreation uploads the item under the cursor as an emoji or
// sticker via the asset collaborator. Success closes the session; a
// collaborator failure leaves it open so the user can retry with a
// different name. Session state is untouched until the upload resolves.
func (c *Controller) RequestArtifactCreation(ctx context.Context, sessionID, actorID string, kind ArtifactKind, name, description, emojiHint string) (ArtifactResult, error) {
	s, err := c.lookup(sessionID)
	if err != nil {
		return ArtifactResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Terminal {
		return ArtifactResult{}, ErrSessionClosed
	}
	if s.Kind != KindTriage {
		return ArtifactResult{}, ErrUnknownSession
	}
	if s.Owner.ID != actorID {
		return ArtifactResult{}, ErrNotSessionOwner
	}

	item := s.Triage.Current()
	var ref string
	var content string
	switch kind {
	case ArtifactSticker:
		ref, err = c.assets.CreateSticker(ctx, s.Scope, name, description, emojiHint, item.Bytes)
		content = fmt.Sprintf("✅ Sticker created: `%s`", name)
	default:
		ref, err = c.assets.CreateEmoji(ctx, s.Scope, name, item.Bytes)
		content = fmt.Sprintf("✅ Emoji created: `:%s:`", name)
	}
	if err != nil {
		slog.Warn("artifact creation failed", "session_id", s.ID, "kind", kind, "name", name, "error", err)
		return ArtifactResult{}, fmt.Errorf("%w: %v", ErrCollaborator, err)
	}

	s.close(time.Now())
	slog.Info("artifact created", "session_id", s.ID, "kind", kind, "name", name, "ref", ref)
	return ArtifactResult{Ref: ref, Render: renderClosed(s, content)}, nil
}

// Cancel closes the session on request of a seated participant and returns
// the cancelled rendering with all controls removed.
func (c *Controller) Cancel(sessionID, actorID string) (Render, error) {
	s, err := c.lookup(sessionID)
	if err != nil {
		return Render{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.participant(actorID) {
		return Render{}, ErrNotSessionOwner
	}
	if !s.close(time.Now()) {
		return Render{}, ErrSessionClosed
	}
	slog.Info("session cancelled", "session_id", s.ID, "actor", actorID)
	return renderClosed(s, "❌ Session cancelled."), nil
}

// Expire closes an idle session. It is invoked by the per-session countdown
// timer, not by user actions, and reports false without a rendering when the
// session is unknown or already reached a terminal state some other way.
func (c *Controller) Expire(sessionID string) (Render, bool) {
	s, err := c.lookup(sessionID)
	if err != nil {
		return Render{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.close(time.Now()) {
		return Render{}, false
	}
	slog.Info("session timed out", "session_id", s.ID, "kind", s.Kind)
	return renderClosed(s, "⌛ Session timed out."), true
}

const sweepInterval = time.Minute

// StartJanitor runs a background goroutine that drops terminal sessions
// from the store once they have been closed for at least grace. Terminal
// sessions are kept around for the grace period so late clicks answer
// "session closed" instead of "unknown session".
func (c *Controller) StartJanitor(ctx context.Context, grace time.Duration) {
	ticker := time.NewTicker(sweepInterval)
	go func() {
		defer ticker.Stop()
		slog.Info("session janitor started", "interval", sweepInterval, "grace", grace)
		for {
			select {
			case <-ticker.C:
				c.sweep(grace)
			case <-ctx.Done():
				slog.Info("session janitor shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

func (c *Controller) sweep(grace time.Duration) {
	cutoff := time.Now().Add(-grace)

	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for id, s := range c.sessions {
		s.mu.Lock()
		stale := s.Terminal && s.closedAt.Before(cutoff)
		s.mu.Unlock()
		if stale {
			delete(c.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		slog.Info("session janitor removed closed sessions", "count", removed)
	}
}
