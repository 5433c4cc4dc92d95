package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Lixing-Zhang/stall-backend/internal/models"
	"github.com/Lixing-Zhang/stall-backend/internal/realtime"
	"github.com/Lixing-Zhang/stall-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendQueueSize  = 64
)

var (
	errClientClosed  = errors.New("realtime client closed")
	errSendQueueFull = errors.New("realtime client send queue full")
)

// Server-originated control frames
const (
	eventJoinedStore = "joined-store"
	eventLeftStore   = "left-store"
	eventError       = "error"
)

// controlFrame is sent to a single client in reply to its own messages
type controlFrame struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// RealtimeHandler upgrades connections to WebSocket and lets clients join
// store rooms to receive menu events.
type RealtimeHandler struct {
	registry *realtime.Registry
	stores   repository.StoreRepository
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewRealtimeHandler creates a realtime handler. Origins are checked against
// allowedOrigins; "*" accepts any origin.
func NewRealtimeHandler(registry *realtime.Registry, stores repository.StoreRepository, allowedOrigins []string, logger *slog.Logger) *RealtimeHandler {
	h := &RealtimeHandler{
		registry: registry,
		stores:   stores,
		logger:   logger,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

// ServeHTTP handles GET /ws
func (h *RealtimeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := newClient(conn, h.logger)
	h.logger.Debug("realtime client connected", "client_id", client.id, "remote_addr", r.RemoteAddr)

	// the connection outlives any request timeout
	ctx := context.WithoutCancel(r.Context())

	go client.writePump()
	h.readPump(ctx, client)

	h.registry.Disconnect(client)
	client.close()
	h.logger.Debug("realtime client disconnected", "client_id", client.id)
}

// readPump processes client messages until the connection fails or closes
func (h *RealtimeHandler) readPump(ctx context.Context, c *client) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	subs := make(map[string]realtime.Subscription)

	for {
		var msg models.ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("realtime read failed", "client_id", c.id, "error", err)
			}
			var (
				syntaxErr *json.SyntaxError
				typeErr   *json.UnmarshalTypeError
			)
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				c.reply(eventError, map[string]string{"message": "malformed message"})
				continue
			}
			return
		}

		switch msg.Event {
		case models.ClientJoinStore:
			store, err := h.resolveStore(ctx, msg.Data)
			if err != nil {
				c.reply(eventError, map[string]string{"message": "unknown store", "store": msg.Data})
				continue
			}
			subs[store.ID] = h.registry.Subscribe(store.ID, c)
			c.reply(eventJoinedStore, map[string]string{"storeId": store.ID})

		case models.ClientLeaveStore:
			store, err := h.resolveStore(ctx, msg.Data)
			if err != nil {
				c.reply(eventError, map[string]string{"message": "unknown store", "store": msg.Data})
				continue
			}
			if sub, ok := subs[store.ID]; ok {
				h.registry.Unsubscribe(sub)
				delete(subs, store.ID)
			}
			c.reply(eventLeftStore, map[string]string{"storeId": store.ID})

		default:
			c.reply(eventError, map[string]string{"message": "unknown event", "event": msg.Event})
		}
	}
}

// resolveStore accepts either a store id or a slug
func (h *RealtimeHandler) resolveStore(ctx context.Context, ref string) (*models.Store, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, repository.ErrStoreNotFound
	}
	if store, err := h.stores.GetByID(ctx, ref); err == nil {
		return store, nil
	}
	return h.stores.GetBySlug(ctx, ref)
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		return false
	}
}

// client is one WebSocket connection. It implements realtime.Handle.
type client struct {
	id     string
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	once   sync.Once
	logger *slog.Logger
}

func newClient(conn *websocket.Conn, logger *slog.Logger) *client {
	return &client{
		id:     uuid.NewString(),
		conn:   conn,
		send:   make(chan []byte, sendQueueSize),
		done:   make(chan struct{}),
		logger: logger,
	}
}

func (c *client) ID() string { return c.id }

// Emit queues an event without blocking. A full queue drops the event.
func (c *client) Emit(event models.BroadcastEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return c.enqueue(payload)
}

func (c *client) reply(event string, data interface{}) {
	payload, err := json.Marshal(controlFrame{Event: event, Data: data})
	if err != nil {
		c.logger.Error("failed to encode control frame", "error", err)
		return
	}
	if err := c.enqueue(payload); err != nil {
		c.logger.Debug("control frame dropped", "client_id", c.id, "error", err)
	}
}

func (c *client) enqueue(payload []byte) error {
	select {
	case <-c.done:
		return errClientClosed
	default:
	}

	select {
	case c.send <- payload:
		return nil
	default:
		return errSendQueueFull
	}
}

func (c *client) close() {
	c.once.Do(func() { close(c.done) })
}

// writePump is the only writer of the connection
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}
