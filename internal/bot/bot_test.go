package bot

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rishx/venombot/internal/config"
	"github.com/rishx/venombot/internal/platform"
	"github.com/rishx/venombot/internal/session"
)

func TestRenderMessageGroupsControlsByRow(t *testing.T) {
	r := session.Render{
		Content: "board",
		Controls: []session.Control{
			{ID: "a", Label: "A", Style: session.StyleSecondary, Row: 0},
			{ID: "b", Label: "B", Style: session.StyleSuccess, Row: 0},
			{ID: "c", Label: "C", Style: session.StyleDanger, Row: 1, Disabled: true},
		},
	}

	msg := renderMessage(r)
	if len(msg.Components) != 2 {
		t.Fatalf("expected 2 action rows, got %d", len(msg.Components))
	}
	if len(msg.Components[0].Components) != 2 {
		t.Errorf("expected 2 buttons in row 0, got %d", len(msg.Components[0].Components))
	}
	btn := msg.Components[1].Components[0]
	if btn.CustomID != "c" || !btn.Disabled {
		t.Errorf("row 1 button = %+v, want custom id c, disabled", btn)
	}
	if btn.Style != platform.ButtonDanger {
		t.Errorf("style = %d, want %d", btn.Style, platform.ButtonDanger)
	}
}

func TestRenderMessageAttachesImage(t *testing.T) {
	r := session.Render{
		Content: "pic",
		Image:   &session.Item{Bytes: []byte{1, 2, 3}, SuggestedName: "cat.png"},
	}
	msg := renderMessage(r)
	if len(msg.Files) != 1 || msg.Files[0].Name != "cat.png" {
		t.Fatalf("expected one file cat.png, got %+v", msg.Files)
	}
}

func TestCooldownWindow(t *testing.T) {
	cd := newCooldownMap()

	ok, _ := cd.tryAcquire("meme", "u1", time.Hour)
	if !ok {
		t.Fatal("first acquire should succeed")
	}
	ok, wait := cd.tryAcquire("meme", "u1", time.Hour)
	if ok {
		t.Error("second acquire inside the window should fail")
	}
	if wait <= 0 || wait > time.Hour {
		t.Errorf("wait = %v, want within (0, 1h]", wait)
	}
	if ok, _ := cd.tryAcquire("meme", "u2", time.Hour); !ok {
		t.Error("other users must not share the window")
	}
	if ok, _ := cd.tryAcquire("ping", "u1", time.Hour); !ok {
		t.Error("other commands must not share the window")
	}
}

func TestTwistNameShape(t *testing.T) {
	got := twistName("Alexander The Great")
	if got == "" {
		t.Fatal("empty twist")
	}
	found := false
	for _, suffix := range memeSuffixes {
		if strings.Contains(got, suffix) {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("twist %q carries no known suffix", got)
	}
	if !strings.HasPrefix(strings.ToLower(got), "ednaxela") {
		t.Errorf("twist %q should start with the reversed name core", got)
	}
}

func TestSessionErrorText(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{session.ErrNotYourTurn, "not your turn"},
		{session.ErrCellOccupied, "already taken"},
		{session.ErrSessionClosed, "ended"},
		{session.ErrUnknownSession, "no longer active"},
		{session.ErrNotSessionOwner, "isn't your session"},
	}
	for _, tc := range cases {
		if got := sessionErrorText(tc.err); !strings.Contains(got, tc.want) {
			t.Errorf("sessionErrorText(%v) = %q, want substring %q", tc.err, got, tc.want)
		}
	}
}

func testBot(t *testing.T, handler http.Handler) *Bot {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		Token:          "t",
		Prefix:         "!",
		OwnerID:        "owner",
		SessionTimeout: time.Minute,
	}
	rest := platform.NewRestWithBaseURL("t", srv.URL)
	return New(cfg, rest, platform.User{ID: "bot-id", Username: "venombot", Bot: true}, nil, nil, nil)
}

func TestGameClickUpdatesSurface(t *testing.T) {
	var updates []string
	b := testBot(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/callback") {
			var body struct {
				Type int `json:"type"`
				Data struct {
					Content string `json:"content"`
				} `json:"data"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode callback: %v", err)
			}
			if body.Type != platform.ResponseUpdateMessage {
				t.Errorf("response type = %d, want %d", body.Type, platform.ResponseUpdateMessage)
			}
			updates = append(updates, body.Data.Content)
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	p1 := session.Participant{ID: "u1", Name: "Alice"}
	p2 := session.Participant{ID: "u2", Name: "Bob"}
	s, _, err := b.Sessions().CreateGameSession(p1, p2)
	if err != nil {
		t.Fatalf("create game: %v", err)
	}

	i := &platform.Interaction{
		ID:    "i1",
		Type:  platform.InteractionComponent,
		Token: "tok",
		User:  &platform.User{ID: "u1", Username: "Alice"},
		Data:  platform.InteractionData{CustomID: "ttt:" + s.ID + ":1:1"},
	}
	b.HandleInteraction(context.Background(), i)

	if len(updates) != 1 {
		t.Fatalf("expected 1 surface update, got %d", len(updates))
	}
	if !strings.Contains(updates[0], "<@u2>") {
		t.Errorf("update %q should hand the turn to the opponent", updates[0])
	}
}

func TestGameClickOutOfTurnIsEphemeral(t *testing.T) {
	var flags []float64
	b := testBot(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/callback") {
			var body struct {
				Data map[string]any `json:"data"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode callback: %v", err)
			}
			if f, ok := body.Data["flags"].(float64); ok {
				flags = append(flags, f)
			} else {
				flags = append(flags, 0)
			}
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	s, _, err := b.Sessions().CreateGameSession(
		session.Participant{ID: "u1", Name: "Alice"},
		session.Participant{ID: "u2", Name: "Bob"},
	)
	if err != nil {
		t.Fatalf("create game: %v", err)
	}

	i := &platform.Interaction{
		ID:    "i1",
		Type:  platform.InteractionComponent,
		Token: "tok",
		User:  &platform.User{ID: "u2", Username: "Bob"},
		Data:  platform.InteractionData{CustomID: "ttt:" + s.ID + ":0:0"},
	}
	b.HandleInteraction(context.Background(), i)

	if len(flags) != 1 || int(flags[0])&64 == 0 {
		t.Fatalf("out-of-turn click should answer ephemerally, flags = %v", flags)
	}
}

func TestImageArgFromSlashOption(t *testing.T) {
	img := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("pngdata"))
	}))
	t.Cleanup(img.Close)

	b := testBot(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	inv := &invocation{
		bot: b,
		inter: &platform.Interaction{
			Data: platform.InteractionData{
				Options: []platform.CommandOption{{Name: "url", Value: img.URL + "/cat.png"}},
			},
		},
	}

	data, ok := inv.imageArg(context.Background(), "url", -1)
	if !ok {
		t.Fatal("slash url option should resolve an image")
	}
	if string(data) != "pngdata" {
		t.Errorf("downloaded %q, want pngdata", data)
	}

	// No option and no message means no image.
	inv.inter.Data.Options = nil
	if _, ok := inv.imageArg(context.Background(), "url", -1); ok {
		t.Error("missing url and attachment should not resolve")
	}
}

func TestModalValueRoundTrip(t *testing.T) {
	i := &platform.Interaction{
		Data: platform.InteractionData{
			CustomID: "steal-emoji:ses-abc",
			Components: []platform.Component{
				platform.Row(platform.Component{Type: platform.ComponentTextInput, CustomID: "name", Value: "pepe"}),
			},
		},
	}
	if got := i.ModalValue("name"); got != "pepe" {
		t.Errorf("ModalValue = %q, want pepe", got)
	}
	if got := i.ModalValue("description"); got != "" {
		t.Errorf("missing field should be empty, got %q", got)
	}
}

func TestCommandSpecsCoverTable(t *testing.T) {
	b := testBot(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	specs := b.CommandSpecs()
	if len(specs) != len(b.commands) {
		t.Fatalf("specs = %d, commands = %d", len(specs), len(b.commands))
	}
	for _, s := range specs {
		if s.Description == "" {
			t.Errorf("command %q has no description", s.Name)
		}
	}
}
