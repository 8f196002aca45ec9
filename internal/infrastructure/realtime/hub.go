// Package realtime pushes notifications to connected websocket clients.
package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 512
	sendBuffer     = 16
)

// Hub tracks websocket clients per user.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]map[*client]struct{}

	pingInterval time.Duration
	onCount      func(int)
	logger       *zap.Logger
}

type client struct {
	userID uuid.UUID
	conn   *websocket.Conn
	send   chan []byte

	mu     sync.Mutex
	closed bool
}

func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

type sendResult int

const (
	sendDelivered sendResult = iota
	sendFull
	sendClosed
)

// trySend never blocks. The client lock orders it against close so a
// concurrent unregister cannot close the channel mid-send.
func (c *client) trySend(payload []byte) sendResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return sendClosed
	}
	select {
	case c.send <- payload:
		return sendDelivered
	default:
		return sendFull
	}
}

// Option configures a Hub.
type Option func(*Hub)

// WithPingInterval sets how often the server pings idle clients.
func WithPingInterval(d time.Duration) Option {
	return func(h *Hub) {
		if d > 0 {
			h.pingInterval = d
		}
	}
}

// WithConnectionGauge is called with the number of open connections after every change.
func WithConnectionGauge(fn func(int)) Option {
	return func(h *Hub) { h.onCount = fn }
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger, opts ...Option) *Hub {
	h := &Hub{
		clients:      make(map[uuid.UUID]map[*client]struct{}),
		pingInterval: 25 * time.Second,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Serve registers conn for userID and pumps messages until the peer goes away
// or ctx is cancelled. It closes conn before returning.
func (h *Hub) Serve(ctx context.Context, userID uuid.UUID, conn *websocket.Conn) {
	c := &client{userID: userID, conn: conn, send: make(chan []byte, sendBuffer)}
	h.register(c)

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.writePump(ctx, c)
	}()

	h.readPump(c)
	cancel()
	h.unregister(c)
	<-done
	_ = conn.Close()
}

// Send delivers payload to every connection of userID. A nil userID broadcasts.
// Slow clients whose buffer is full are dropped.
func (h *Hub) Send(userID *uuid.UUID, payload []byte) int {
	h.mu.RLock()
	var targets []*client
	if userID == nil {
		for _, set := range h.clients {
			for c := range set {
				targets = append(targets, c)
			}
		}
	} else {
		for c := range h.clients[*userID] {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	delivered := 0
	for _, c := range targets {
		switch c.trySend(payload) {
		case sendDelivered:
			delivered++
		case sendFull:
			h.logger.Warn("websocket client too slow, dropping connection",
				zap.String("user_id", c.userID.String()))
			h.unregister(c)
		case sendClosed:
		}
	}
	return delivered
}

// Connections returns the number of open connections.
func (h *Hub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.countLocked()
}

// CloseAll disconnects every client; used on shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	for _, set := range h.clients {
		for c := range set {
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(writeWait))
			_ = c.conn.Close()
		}
	}
	h.mu.Unlock()
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*client]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
	n := h.countLocked()
	h.mu.Unlock()

	h.logger.Debug("websocket client registered", zap.String("user_id", c.userID.String()), zap.Int("connections", n))
	h.report(n)
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	set, ok := h.clients[c.userID]
	if ok {
		if _, present := set[c]; present {
			delete(set, c)
			if len(set) == 0 {
				delete(h.clients, c.userID)
			}
			c.close()
		} else {
			ok = false
		}
	}
	n := h.countLocked()
	h.mu.Unlock()

	if ok {
		h.logger.Debug("websocket client unregistered", zap.String("user_id", c.userID.String()), zap.Int("connections", n))
		h.report(n)
	}
}

func (h *Hub) countLocked() int {
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

func (h *Hub) report(n int) {
	if h.onCount != nil {
		h.onCount(n)
	}
}

// readPump discards inbound data; it exists to process control frames and
// detect closed connections.
func (h *Hub) readPump(c *client) {
	pongWait := h.pingInterval * 2
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read error", zap.Error(err))
			}
			return
		}
	}
}

func (h *Hub) writePump(ctx context.Context, c *client) {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = c.conn.Close()
			return
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				_ = c.conn.Close()
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				_ = c.conn.Close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = c.conn.Close()
				return
			}
		}
	}
}
