package httpapi

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rishx/venombot/internal/platform"
)

type fakeDispatcher struct {
	mu   sync.Mutex
	seen []*platform.Interaction
}

func (f *fakeDispatcher) HandleInteraction(_ context.Context, i *platform.Interaction) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, i)
}

func (f *fakeDispatcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.seen)
}

type fakeCounter int

func (f fakeCounter) Count() int { return int(f) }

func signedRequest(t *testing.T, priv ed25519.PrivateKey, body []byte) *http.Request {
	t.Helper()
	ts := "1700000000"
	sig := ed25519.Sign(priv, append([]byte(ts), body...))
	req := httptest.NewRequest(http.MethodPost, "/interactions", bytes.NewReader(body))
	req.Header.Set("X-Signature-Ed25519", hex.EncodeToString(sig))
	req.Header.Set("X-Signature-Timestamp", ts)
	return req
}

func newTestHandler(t *testing.T) (*Handler, *fakeDispatcher, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	d := &fakeDispatcher{}
	h, err := NewHandler(d, fakeCounter(3), hex.EncodeToString(pub))
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	return h, d, priv
}

func TestInteractionsPingPong(t *testing.T) {
	h, _, priv := newTestHandler(t)

	body, _ := json.Marshal(map[string]int{"type": platform.InteractionPing})
	rec := httptest.NewRecorder()
	h.Interactions(rec, signedRequest(t, priv, body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["type"] != platform.ResponsePong {
		t.Errorf("type = %d, want pong", resp["type"])
	}
}

func TestInteractionsRejectsBadSignature(t *testing.T) {
	h, d, _ := newTestHandler(t)

	body, _ := json.Marshal(map[string]int{"type": platform.InteractionPing})
	req := httptest.NewRequest(http.MethodPost, "/interactions", bytes.NewReader(body))
	req.Header.Set("X-Signature-Ed25519", hex.EncodeToString(make([]byte, ed25519.SignatureSize)))
	req.Header.Set("X-Signature-Timestamp", "1700000000")

	rec := httptest.NewRecorder()
	h.Interactions(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if d.count() != 0 {
		t.Error("unauthorized request must not be dispatched")
	}
}

func TestInteractionsRejectsWithoutKey(t *testing.T) {
	h, err := NewHandler(&fakeDispatcher{}, nil, "")
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	body, _ := json.Marshal(map[string]int{"type": platform.InteractionPing})
	rec := httptest.NewRecorder()
	h.Interactions(rec, signedRequest(t, mustKey(t), body))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 without a configured key", rec.Code)
	}
}

func mustKey(t *testing.T) ed25519.PrivateKey {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return priv
}

func TestInteractionsDispatchesCommands(t *testing.T) {
	h, d, priv := newTestHandler(t)

	body, _ := json.Marshal(map[string]any{
		"type": platform.InteractionCommand,
		"data": map[string]string{"name": "ping"},
	})
	rec := httptest.NewRecorder()
	h.Interactions(rec, signedRequest(t, priv, body))

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}
	deadline := time.Now().Add(time.Second)
	for d.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if d.count() != 1 {
		t.Fatalf("dispatched = %d, want 1", d.count())
	}
}

func TestReadyReportsSessions(t *testing.T) {
	h, _, _ := newTestHandler(t)
	r := chi.NewRouter()
	h.RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("status = %v, want ok", resp["status"])
	}
	if n, ok := resp["sessions"].(float64); !ok || int(n) != 3 {
		t.Errorf("sessions = %v, want 3", resp["sessions"])
	}
}
