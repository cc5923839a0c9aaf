// Package ws implements the WebSocket adapter that pushes listing change
// events to the connected clients of a tenant.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/ERPlora/module-training/internal/domain/tenant"
	"github.com/ERPlora/module-training/internal/middleware"
)

// writeTimeout bounds a single write so one slow client cannot stall a
// broadcast.
const writeTimeout = 5 * time.Second

// Message is the envelope for all WebSocket messages.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// conn wraps a single WebSocket connection.
type conn struct {
	ws       *websocket.Conn
	cancel   context.CancelFunc
	tenantID tenant.ID
}

// Hub manages all active WebSocket connections and broadcasts messages to
// the connections of one tenant.
type Hub struct {
	mu             sync.RWMutex
	conns          map[*conn]struct{}
	originPatterns []string
}

// NewHub creates a new WebSocket hub. Origins matching originPatterns may
// connect in addition to same-origin clients.
func NewHub(originPatterns ...string) *Hub {
	return &Hub{
		conns:          make(map[*conn]struct{}),
		originPatterns: originPatterns,
	}
}

// HandleWS upgrades an authenticated request to a WebSocket bound to the
// caller's tenant.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	tid, ok := middleware.TenantFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"authorization required"}`, http.StatusUnauthorized)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		slog.Error("websocket accept failed", "error", err)
		return
	}

	// The connection outlives the request; detach from its cancellation.
	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	c := &conn{ws: ws, cancel: cancel, tenantID: tid}

	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()

	slog.InfoContext(ctx, "websocket connected", "remote", r.RemoteAddr)

	// Read loop (to detect disconnects and consume pings)
	go func() {
		defer func() {
			h.remove(c)
			_ = ws.Close(websocket.StatusNormalClosure, "")
		}()
		for {
			if _, _, err := ws.Read(ctx); err != nil {
				return
			}
		}
	}()
}

// BroadcastToTenant marshals payload as an event of eventType and sends it
// to every connection of tid.
func (h *Hub) BroadcastToTenant(ctx context.Context, tid tenant.ID, eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.ErrorContext(ctx, "marshal ws event payload", "type", eventType, "error", err)
		return
	}
	msg, err := json.Marshal(Message{Type: eventType, Payload: data})
	if err != nil {
		slog.ErrorContext(ctx, "websocket marshal failed", "error", err)
		return
	}

	for _, c := range h.tenantConns(tid) {
		wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
		err := c.ws.Write(wctx, websocket.MessageText, msg)
		cancel()
		if err != nil {
			slog.Debug("websocket write failed", "error", err)
			h.remove(c)
		}
	}
}

// tenantConns snapshots the connections of tid so writes happen without
// holding the lock.
func (h *Hub) tenantConns(tid tenant.ID) []*conn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []*conn
	for c := range h.conns {
		if c.tenantID == tid {
			out = append(out, c)
		}
	}
	return out
}

// ConnectionCount returns the number of active connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := h.conns
	h.conns = make(map[*conn]struct{})
	h.mu.Unlock()

	for c := range conns {
		c.cancel()
		_ = c.ws.Close(websocket.StatusGoingAway, "server shutting down")
	}
}

func (h *Hub) remove(c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[c]; ok {
		c.cancel()
		delete(h.conns, c)
		slog.Info("websocket disconnected", "tenant_id", c.tenantID)
	}
}
