package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"tinyplanet-server/internal/game"
)

var ErrHubClosed = errors.New("stream hub is not running")

// Message is the envelope of everything sent to viewers.
type Message struct {
	Type    string `json:"type"`
	Tick    uint64 `json:"tick"`
	Payload any    `json:"payload"`
}

// SnapshotSource provides the state a new viewer starts from.
type SnapshotSource interface {
	Snapshot() game.Snapshot
}

type Config struct {
	WriteTimeout time.Duration
	PingInterval time.Duration
	SendBuffer   int
}

type Client struct {
	id   uuid.UUID
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub fans game snapshots out to websocket viewers. Viewers only listen;
// commands go through the HTTP API.
type Hub struct {
	cfg    Config
	source SnapshotSource
	logger *slog.Logger

	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	count      atomic.Int64

	upgrader websocket.Upgrader
}

func NewHub(cfg Config, source SnapshotSource, logger *slog.Logger) *Hub {
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 16
	}

	return &Hub{
		cfg:        cfg,
		source:     source,
		logger:     logger.With("component", "stream_hub"),
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Run owns the client set until ctx ends.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.drop(client)
			}
			h.logger.Info("Stream hub stopped")
			return
		case client := <-h.register:
			h.clients[client] = true
			h.count.Add(1)
			h.logger.Debug("Viewer connected", "client_id", client.id, "viewers", len(h.clients))
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				h.logger.Debug("Viewer disconnected", "client_id", client.id, "viewers", len(h.clients))
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					h.logger.Warn("Viewer too slow, disconnecting", "client_id", client.id)
					h.drop(client)
				}
			}
		}
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.send)
	h.count.Add(-1)
}

// ClientCount returns the number of connected viewers.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// Publish sends snapshot to every viewer.
func (h *Hub) Publish(ctx context.Context, snapshot game.Snapshot) error {
	data, err := encode("snapshot", snapshot.Tick, snapshot)
	if err != nil {
		return err
	}

	select {
	case h.broadcast <- data:
		return nil
	case <-h.done:
		return ErrHubClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ServeWS upgrades the request and streams snapshots to it, starting with the current one.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With("handler", "stream")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("Websocket upgrade failed", "error", err, "remote_addr", r.RemoteAddr)
		return
	}

	client := &Client{
		id:   uuid.New(),
		hub:  h,
		conn: conn,
		send: make(chan []byte, h.cfg.SendBuffer),
	}

	if h.source != nil {
		snapshot := h.source.Snapshot()
		if data, err := encode("snapshot", snapshot.Tick, snapshot); err == nil {
			client.send <- data
		}
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func encode(kind string, tick uint64, payload any) ([]byte, error) {
	data, err := json.Marshal(Message{Type: kind, Tick: tick, Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s message: %w", kind, err)
	}
	return data, nil
}

// readPump discards inbound frames and notices when the viewer goes away.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	pongWait := 2 * c.hub.cfg.PingInterval
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Debug("Viewer read failed", "client_id", c.id, "error", err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.hub.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
