// Package session implements the interactive session controller that backs
// multi-step message interactions: Tic-Tac-Toe matches and image-triage
// ("steal") workflows. Sessions are purely in-memory and vanish on restart.
package session

import (
	"errors"
	"sync"
	"time"
)

// Kind identifies the session variant.
type Kind int

const (
	// KindGame is a two-seat Tic-Tac-Toe match.
	KindGame Kind = iota
	// KindTriage is a single-owner image triage workflow.
	KindTriage
)

// Direction is a triage navigation direction.
type Direction int

const (
	// Previous moves the cursor one item back, wrapping around.
	Previous Direction = iota
	// Next moves the cursor one item forward, wrapping around.
	Next
)

// ArtifactKind selects what the current triage item should become.
type ArtifactKind int

const (
	// ArtifactEmoji creates a custom emoji from the current item.
	ArtifactEmoji ArtifactKind = iota
	// ArtifactSticker creates a sticker from the current item.
	ArtifactSticker
)

// Session errors. All of these are recovered locally and rendered back to
// the acting user; none are fatal to the controller or to other sessions.
var (
	ErrInvalidParticipants = errors.New("cannot play against yourself")
	ErrUnsupportedOpponent = errors.New("cannot challenge another bot")
	ErrNoCandidates        = errors.New("no images to triage")
	ErrUnknownSession      = errors.New("unknown session")
	ErrNotYourTurn         = errors.New("not your turn")
	ErrCellOccupied        = errors.New("that spot is already taken")
	ErrNotSessionOwner     = errors.New("not your session")
	ErrSessionClosed       = errors.New("session is closed")
	ErrCollaborator        = errors.New("asset creation failed")
)

// Participant identifies a user seated at a session.
type Participant struct {
	ID   string
	Name string
	Bot  bool
}

// Item is one candidate image in a triage session. Items are immutable after
// session creation.
type Item struct {
	Bytes         []byte
	SuggestedName string
	SourceURL     string
}

// Cell is one board position: CellEmpty or a player index mark (0 or 1).
type Cell int8

// CellEmpty marks an unoccupied board cell.
const CellEmpty Cell = -1

// GameState holds the Tic-Tac-Toe variant payload.
type GameState struct {
	Board   [3][3]Cell
	Players [2]Participant
	Turn    int
}

// TriageState holds the image-triage variant payload.
type TriageState struct {
	Items  []Item
	Cursor int
}

// Current returns the item under the cursor.
func (t *TriageState) Current() Item {
	return t.Items[t.Cursor]
}

// Session is the unit of interactive state, tied to one rendering surface.
// All mutation goes through the Controller, which serializes actions per
// session via mu.
type Session struct {
	ID        string
	Kind      Kind
	Owner     Participant
	Scope     string // asset-creation scope (guild) for triage sessions
	Game      *GameState
	Triage    *TriageState
	CreatedAt time.Time
	ExpiresAt time.Time
	Terminal  bool

	mu       sync.Mutex
	closedAt time.Time
	timer    *time.Timer
}

// participant reports whether id is seated at this session.
func (s *Session) participant(id string) bool {
	switch s.Kind {
	case KindGame:
		return s.Game.Players[0].ID == id || s.Game.Players[1].ID == id
	default:
		return s.Owner.ID == id
	}
}

// close marks the session terminal and stops its idle timer. Caller must
// hold s.mu. Returns false if the session was already terminal.
func (s *Session) close(now time.Time) bool {
	if s.Terminal {
		return false
	}
	s.Terminal = true
	s.closedAt = now
	if s.timer != nil {
		s.timer.Stop()
	}
	return true
}
