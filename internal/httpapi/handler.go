// Package httpapi exposes the bot's HTTP surface: health probes and the
// signed interactions webhook.
package httpapi

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rishx/venombot/internal/platform"
)

// Dispatcher consumes verified interaction events. Implemented by the bot.
type Dispatcher interface {
	HandleInteraction(ctx context.Context, i *platform.Interaction)
}

// SessionCounter reports how many live sessions the bot is tracking.
type SessionCounter interface {
	Count() int
}

// Handler provides the HTTP handlers and shared response utilities.
type Handler struct {
	dispatcher Dispatcher
	sessions   SessionCounter
	pubKey     ed25519.PublicKey
	started    time.Time
}

// NewHandler creates a Handler. publicKeyHex is the application's
// interaction verification key; when empty the webhook route rejects
// everything.
func NewHandler(d Dispatcher, sessions SessionCounter, publicKeyHex string) (*Handler, error) {
	h := &Handler{dispatcher: d, sessions: sessions, started: time.Now()}
	if publicKeyHex != "" {
		key, err := hex.DecodeString(publicKeyHex)
		if err != nil {
			return nil, err
		}
		h.pubKey = ed25519.PublicKey(key)
	}
	return h, nil
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// RegisterRoutes mounts the API routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ready", h.Ready)
	r.Post("/interactions", h.Interactions)
}

// Ready reports process liveness plus basic runtime stats.
func (h *Handler) Ready(w http.ResponseWriter, _ *http.Request) {
	body := map[string]any{
		"status": "ok",
		"uptime": time.Since(h.started).Round(time.Second).String(),
	}
	if h.sessions != nil {
		body["sessions"] = h.sessions.Count()
	}
	JSON(w, http.StatusOK, body)
}

// verify checks the interaction signature headers against the raw body.
func (h *Handler) verify(r *http.Request, body []byte) bool {
	if len(h.pubKey) != ed25519.PublicKeySize {
		return false
	}
	sig, err := hex.DecodeString(r.Header.Get("X-Signature-Ed25519"))
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}
	ts := r.Header.Get("X-Signature-Timestamp")
	if ts == "" {
		return false
	}
	return ed25519.Verify(h.pubKey, append([]byte(ts), body...), sig)
}

// Interactions is the signed interactions webhook. Pings are answered
// inline; everything else is dispatched to the bot, whose reply goes out
// through the interaction callback endpoint.
func (h *Handler) Interactions(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		Error(w, http.StatusBadRequest, "unreadable body")
		return
	}
	if !h.verify(r, body) {
		Error(w, http.StatusUnauthorized, "invalid request signature")
		return
	}

	var i platform.Interaction
	if err := json.Unmarshal(body, &i); err != nil {
		Error(w, http.StatusBadRequest, "malformed interaction")
		return
	}

	if i.Type == platform.InteractionPing {
		JSON(w, http.StatusOK, map[string]int{"type": platform.ResponsePong})
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("interaction handler panicked", "panic", rec)
			}
		}()
		h.dispatcher.HandleInteraction(ctx, &i)
	}()
	w.WriteHeader(http.StatusAccepted)
}
