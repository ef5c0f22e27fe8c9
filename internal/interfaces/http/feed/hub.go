// Package feed streams live service activity (element lookups, analysis
// summaries, client counts) to websocket subscribers.
package feed

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/turtacn/CompoundForge/internal/infrastructure/monitoring/logging"
	prom "github.com/turtacn/CompoundForge/internal/infrastructure/monitoring/prometheus"
)

// Message kinds emitted by the hub itself.
const (
	KindHello   = "feed.hello"
	KindClients = "feed.clients"
)

// Message is the JSON frame sent to subscribers.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
	At   time.Time   `json:"at"`
}

// ClientCount is the payload of hello and clients frames.
type ClientCount struct {
	Clients int `json:"clients"`
}

// Config tunes the hub.
type Config struct {
	PingInterval time.Duration
	WriteTimeout time.Duration
	MaxClients   int
	BufferSize   int
	// CheckOrigin overrides the upgrader origin check; nil allows all.
	CheckOrigin func(r *http.Request) bool
}

func (c *Config) applyDefaults() {
	if c.PingInterval <= 0 {
		c.PingInterval = 30 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.MaxClients <= 0 {
		c.MaxClients = 256
	}
	if c.BufferSize <= 0 {
		c.BufferSize = 64
	}
	if c.CheckOrigin == nil {
		c.CheckOrigin = func(*http.Request) bool { return true }
	}
}

type client struct {
	conn *websocket.Conn
	send chan Message
}

// Hub fans messages out to every connected websocket. Slow subscribers lose
// frames rather than stall publishers.
type Hub struct {
	cfg      Config
	logger   logging.Logger
	metrics  *prom.AppMetrics
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  bool
}

func NewHub(cfg Config, logger logging.Logger, metrics *prom.AppMetrics) *Hub {
	cfg.applyDefaults()
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = prom.NewNopAppMetrics()
	}
	return &Hub{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     cfg.CheckOrigin,
		},
		clients: make(map[*client]struct{}),
	}
}

// Notify broadcasts one event. It never blocks.
func (h *Hub) Notify(kind string, payload interface{}) {
	h.broadcast(Message{Type: kind, Data: payload, At: time.Now().UTC()})
}

func (h *Hub) broadcast(m Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- m:
		default:
			h.logger.Debug("feed frame dropped", logging.String("type", m.Type))
		}
	}
}

// ClientCount reports connected subscribers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and serves the subscriber until it leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	full := len(h.clients) >= h.cfg.MaxClients
	closed := h.closed
	h.mu.RUnlock()
	if closed || full {
		http.Error(w, "feed unavailable", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.logger.Debug("feed upgrade failed", logging.Err(err))
		return
	}
	c := &client{conn: conn, send: make(chan Message, h.cfg.BufferSize)}
	n, ok := h.add(c)
	if !ok {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "feed full"), time.Now().Add(time.Second))
		_ = conn.Close()
		return
	}
	h.broadcast(Message{Type: KindClients, Data: ClientCount{Clients: n}, At: time.Now().UTC()})

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) add(c *client) (int, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed || len(h.clients) >= h.cfg.MaxClients {
		return len(h.clients), false
	}
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.metrics.FeedClients.WithLabelValues("ws").Set(float64(n))
	c.send <- Message{Type: KindHello, Data: ClientCount{Clients: n}, At: time.Now().UTC()}
	return n, true
}

// remove is idempotent; closing send stops the write pump.
func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	close(c.send)
	n := len(h.clients)
	h.metrics.FeedClients.WithLabelValues("ws").Set(float64(n))
	closed := h.closed
	h.mu.Unlock()

	if !closed {
		h.broadcast(Message{Type: KindClients, Data: ClientCount{Clients: n}, At: time.Now().UTC()})
	}
}

// readPump discards inbound frames; it exists to observe pongs and closes.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.remove(c)
		_ = c.conn.Close()
	}()
	pongWait := h.cfg.PingInterval * 2
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

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case m, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(m); err != nil {
				h.logger.Debug("feed write failed", logging.Err(err))
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close disconnects every subscriber and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()
	for _, c := range clients {
		h.remove(c)
	}
}
