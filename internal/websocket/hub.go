// Package websocket pushes a session's table notifications to its browser.
package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	gws "github.com/gorilla/websocket"

	"bizdesk/internal/event"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

type Hub struct {
	bus      event.Bus
	upgrader gws.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	conn    *gws.Conn
	actorID string
}

func NewHub(bus event.Bus, allowedOrigins []string) *Hub {
	h := &Hub{
		bus:     bus,
		clients: make(map[*client]struct{}),
	}
	h.upgrader = gws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*") {
				return true
			}
			return slices.Contains(allowedOrigins, origin)
		},
	}

	return h
}

// Clients returns the number of connected sockets.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.clients)
}

// Serve upgrades the request and streams every event published for actorID
// until the peer goes away or ctx ends.
func (h *Hub) Serve(ctx context.Context, w http.ResponseWriter, r *http.Request, actorID string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	events, unsubscribe := h.bus.Subscribe(event.ForActor(actorID))
	defer unsubscribe()

	c := &client{conn: conn, actorID: actorID}
	h.register(c)
	defer h.unregister(c)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go c.readPump(cancel)

	return c.writePump(ctx, events)
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	slog.Debug("notification socket connected", "actor", c.actorID)
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	slog.Debug("notification socket closed", "actor", c.actorID)
}

// readPump only services control frames; the socket is push-only.
func (c *client) readPump(done context.CancelFunc) {
	defer done()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump(ctx context.Context, events <-chan event.Event) error {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = c.conn.WriteControl(gws.CloseMessage,
				gws.FormatCloseMessage(gws.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return nil
		case e, ok := <-events:
			if !ok {
				return nil
			}
			message, err := json.Marshal(e)
			if err != nil {
				slog.Error("failed to marshal event", "error", err)
				continue
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(gws.TextMessage, message); err != nil {
				return err
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(gws.PingMessage, nil); err != nil {
				return err
			}
		}
	}
}
