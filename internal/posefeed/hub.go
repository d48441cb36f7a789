// Package posefeed streams committed vehicle poses to websocket clients.
//
// The hub is a session sink. ConsumePose never blocks the step loop: each
// client has a small outbound buffer and frames that do not fit are dropped
// for that client only.
package posefeed

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cxd309/kart-engine/internal/log"
	"github.com/cxd309/kart-engine/internal/vehicle"
)

const (
	DefaultBuffer = 16
	writeWait     = time.Second
)

// Frame is the message sent for every pose.
type Frame struct {
	Type string       `json:"type"`
	Pose vehicle.Pose `json:"pose"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans poses out to every connected client.
type Hub struct {
	log      log.Log
	upgrader websocket.Upgrader
	buffer   int

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool

	dropped atomic.Uint64
}

// Option configures a Hub.
type Option func(*Hub)

// AllowOrigins restricts browser connections to the listed Origin values.
// Browsers always send Origin, so requests without one come from other
// clients and are accepted.
func AllowOrigins(origins ...string) Option {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	return func(h *Hub) {
		h.upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			_, ok := allowed[origin]
			return ok
		}
	}
}

// NewHub creates a hub whose clients buffer up to buffer frames. A
// non-positive buffer uses DefaultBuffer.
//
// Without AllowOrigins the hub accepts websocket upgrades from any origin.
// That suits a feed bound to localhost; pass AllowOrigins before listening on
// a public address.
func NewHub(logger log.Log, buffer int, opts ...Option) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	if logger == nil {
		logger = log.Nop()
	}
	h := &Hub{
		log: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		buffer:  buffer,
		clients: make(map[*client]struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handler upgrades requests to websocket connections and registers them.
func (h *Hub) Handler() http.Handler {
	return http.HandlerFunc(h.serveWS)
}

func (h *Hub) serveWS(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()
	if closed {
		http.Error(w, "pose feed closed", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", log.Err(err))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, h.buffer)}
	if !h.register(c) {
		conn.Close()
		return
	}
	h.log.Info("feed client connected", log.String("remote", conn.RemoteAddr().String()))

	go h.writeLoop(c)

	// Inbound messages are ignored; reading only detects the peer going away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.unregister(c)
	h.log.Info("feed client disconnected", log.String("remote", conn.RemoteAddr().String()))
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

// unregister removes c and closes its send channel. Only the caller that finds
// c in the set closes the channel.
func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) writeLoop(c *client) {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.log.Debug("feed write failed", log.Err(err))
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// ConsumePose encodes p and queues it for every client without blocking.
func (h *Hub) ConsumePose(p vehicle.Pose) {
	msg, err := json.Marshal(Frame{Type: "pose", Pose: p})
	if err != nil {
		h.log.Error("encoding pose frame", log.Err(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.dropped.Add(1)
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Dropped returns the number of frames discarded for slow clients.
func (h *Hub) Dropped() uint64 { return h.dropped.Load() }

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
	return nil
}
