package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
)

const defaultGatewayURL = "wss://gateway.discord.gg/?v=10&encoding=json"

// Gateway opcodes.
const (
	opDispatch       = 0
	opHeartbeat      = 1
	opIdentify       = 2
	opReconnect      = 7
	opInvalidSession = 9
	opHello          = 10
	opHeartbeatAck   = 11
)

// Intents requests guild, message-content and direct-message events.
const Intents = 1<<0 | 1<<9 | 1<<12 | 1<<15

// EventHandler receives dispatched gateway events. Events for one
// connection are delivered sequentially in arrival order.
type EventHandler interface {
	HandleReady(ctx context.Context, r *Ready)
	HandleMessage(ctx context.Context, m *Message)
	HandleInteraction(ctx context.Context, i *Interaction)
}

type gatewayPayload struct {
	Op int             `json:"op"`
	D  json.RawMessage `json:"d,omitempty"`
	S  int64           `json:"s,omitempty"`
	T  string          `json:"t,omitempty"`
}

// Gateway maintains the websocket connection to the platform: identify,
// heartbeat, and event dispatch, reconnecting with backoff on failure.
type Gateway struct {
	url     string
	token   string
	handler EventHandler

	mu       sync.Mutex
	seq      int64
	beatSent time.Time
	beatAck  time.Time
}

// NewGateway creates a gateway client. Events go to handler.
func NewGateway(token string, handler EventHandler) *Gateway {
	return &Gateway{
		url:     defaultGatewayURL,
		token:   token,
		handler: handler,
	}
}

// NewGatewayWithURL creates a client against a non-default endpoint.
// Used by tests.
func NewGatewayWithURL(token, url string, handler EventHandler) *Gateway {
	g := NewGateway(token, handler)
	g.url = url
	return g
}

// Latency returns the time between the last heartbeat and its ack.
func (g *Gateway) Latency() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.beatAck.Before(g.beatSent) {
		return 0
	}
	return g.beatAck.Sub(g.beatSent)
}

// Run connects and serves gateway events until ctx is cancelled,
// reconnecting with exponential backoff on connection loss.
func (g *Gateway) Run(ctx context.Context) {
	backoff := time.Second
	for {
		err := g.runOnce(ctx)
		if ctx.Err() != nil {
			slog.Info("gateway shutting down", "reason", ctx.Err())
			return
		}
		slog.Warn("gateway connection lost, reconnecting", "error", err, "backoff", backoff)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return
		}
		if backoff < 60*time.Second {
			backoff *= 2
		}
	}
}

func (g *Gateway) runOnce(ctx context.Context) error {
	conn, _, err := websocket.Dial(ctx, g.url, nil)
	if err != nil {
		return fmt.Errorf("gateway dial: %w", err)
	}
	defer func() {
		_ = conn.Close(websocket.StatusNormalClosure, "closing")
	}()
	conn.SetReadLimit(1 << 22)

	// The first frame must be hello with the heartbeat interval.
	var hello struct {
		HeartbeatInterval int `json:"heartbeat_interval"`
	}
	p, err := g.read(ctx, conn)
	if err != nil {
		return err
	}
	if p.Op != opHello {
		return fmt.Errorf("expected hello, got op %d", p.Op)
	}
	if err := json.Unmarshal(p.D, &hello); err != nil {
		return fmt.Errorf("decode hello: %w", err)
	}

	if err := g.identify(ctx, conn); err != nil {
		return err
	}
	slog.Info("gateway connected", "heartbeat_interval_ms", hello.HeartbeatInterval)

	hbCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go g.heartbeatLoop(hbCtx, conn, time.Duration(hello.HeartbeatInterval)*time.Millisecond)

	for {
		p, err := g.read(ctx, conn)
		if err != nil {
			return err
		}
		switch p.Op {
		case opDispatch:
			g.mu.Lock()
			g.seq = p.S
			g.mu.Unlock()
			g.dispatch(ctx, p)
		case opHeartbeat:
			if err := g.sendHeartbeat(ctx, conn); err != nil {
				return err
			}
		case opHeartbeatAck:
			g.mu.Lock()
			g.beatAck = time.Now()
			g.mu.Unlock()
		case opReconnect, opInvalidSession:
			return fmt.Errorf("gateway requested reconnect (op %d)", p.Op)
		}
	}
}

func (g *Gateway) read(ctx context.Context, conn *websocket.Conn) (*gatewayPayload, error) {
	_, data, err := conn.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("gateway read: %w", err)
	}
	var p gatewayPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode gateway payload: %w", err)
	}
	return &p, nil
}

func (g *Gateway) write(ctx context.Context, conn *websocket.Conn, p any) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		return fmt.Errorf("gateway write: %w", err)
	}
	return nil
}

func (g *Gateway) identify(ctx context.Context, conn *websocket.Conn) error {
	return g.write(ctx, conn, map[string]any{
		"op": opIdentify,
		"d": map[string]any{
			"token":   g.token,
			"intents": Intents,
			"properties": map[string]string{
				"os":      "linux",
				"browser": "venombot",
				"device":  "venombot",
			},
		},
	})
}

func (g *Gateway) sendHeartbeat(ctx context.Context, conn *websocket.Conn) error {
	g.mu.Lock()
	seq := g.seq
	g.beatSent = time.Now()
	g.mu.Unlock()
	return g.write(ctx, conn, map[string]any{"op": opHeartbeat, "d": seq})
}

func (g *Gateway) heartbeatLoop(ctx context.Context, conn *websocket.Conn, interval time.Duration) {
	if interval <= 0 {
		interval = 41250 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := g.sendHeartbeat(ctx, conn); err != nil {
				slog.Debug("heartbeat failed", "error", err)
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// dispatch decodes a dispatch payload and hands it to the event handler.
// Handler panics are recovered so one bad event cannot take down the
// connection.
func (g *Gateway) dispatch(ctx context.Context, p *gatewayPayload) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("event handler panicked", "event", p.T, "panic", r)
		}
	}()

	switch p.T {
	case "READY":
		var r Ready
		if err := json.Unmarshal(p.D, &r); err != nil {
			slog.Error("decode READY failed", "error", err)
			return
		}
		g.handler.HandleReady(ctx, &r)
	case "MESSAGE_CREATE":
		var m Message
		if err := json.Unmarshal(p.D, &m); err != nil {
			slog.Error("decode MESSAGE_CREATE failed", "error", err)
			return
		}
		g.handler.HandleMessage(ctx, &m)
	case "INTERACTION_CREATE":
		var i Interaction
		if err := json.Unmarshal(p.D, &i); err != nil {
			slog.Error("decode INTERACTION_CREATE failed", "error", err)
			return
		}
		g.handler.HandleInteraction(ctx, &i)
	}
}
