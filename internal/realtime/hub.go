package realtime

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tehtaankatu/tasting/internal/config"
)

var (
	ErrClientNotFound = errors.New("client not found")
	ErrSendBufferFull = errors.New("send buffer full")
)

// Message is the websocket envelope. A connecting client first receives a
// snapshot, then a stream of change events.
type Message struct {
	Type      string          `json:"type"`
	SessionID string          `json:"session_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// Message types.
const (
	MessageTypeConnected = "connected"
	MessageTypeSnapshot  = "snapshot"
	MessageTypeChange    = "change"
	MessageTypePing      = "ping"
	MessageTypePong      = "pong"
	MessageTypeError     = "error"
)

// hubCommand is one join or leave handed to the hub's loop.
type hubCommand struct {
	client *Client
	leave  bool
}

// Hub bridges the broker's change feed onto websocket connections. Each
// connected client holds its own broker channel, so releasing one client
// never disturbs another. Joins and leaves travel on one queue: a client's
// leave can never be processed ahead of its join.
type Hub struct {
	broker *Broker
	cfg    *config.WebSocketConfig

	clientsMu sync.RWMutex
	clients   map[string]*Client

	commands chan hubCommand

	logger *zap.Logger
}

// NewHub creates a Hub over the broker. A nil cfg falls back to the
// built-in connection timings.
func NewHub(broker *Broker, cfg *config.WebSocketConfig, logger *zap.Logger) *Hub {
	return &Hub{
		broker:   broker,
		cfg:      cfg,
		clients:  make(map[string]*Client),
		commands: make(chan hubCommand, 32),
		logger:   logger,
	}
}

// Run processes joins and leaves. Run in its own goroutine.
func (h *Hub) Run() {
	for cmd := range h.commands {
		if cmd.leave {
			h.unregisterClient(cmd.client)
		} else {
			h.registerClient(cmd.client)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.clientsMu.Lock()
	h.clients[client.ID] = client
	h.clientsMu.Unlock()

	// the client's broker channel was opened at construction and has been
	// buffering since; the catch-all handler forwards every change event
	// on the session topic to this client
	client.channel.OnChange(TableAll, func(ev *ChangeEvent) {
		data, err := json.Marshal(ev)
		if err != nil {
			h.logger.Error("failed to marshal change event", zap.Error(err))
			return
		}
		h.send(client, &Message{
			Type:      MessageTypeChange,
			SessionID: client.SessionID,
			Data:      data,
			Timestamp: time.Now().Unix(),
		})
	})
	client.channel.Subscribe()

	h.logger.Info("websocket client connected",
		zap.String("client_id", client.ID),
		zap.String("session_id", client.SessionID))

	h.send(client, &Message{
		Type:      MessageTypeConnected,
		SessionID: client.SessionID,
		Timestamp: time.Now().Unix(),
	})
}

func (h *Hub) unregisterClient(client *Client) {
	h.clientsMu.Lock()
	_, ok := h.clients[client.ID]
	if ok {
		delete(h.clients, client.ID)
	}
	h.clientsMu.Unlock()

	// release the broker channel first: RemoveChannel guarantees no
	// handler is in flight once it returns, so nothing can write to Send
	// after it is closed. Safe for clients that never finished joining.
	h.broker.RemoveChannel(client.channel)

	if !ok {
		return
	}
	close(client.Send)

	h.logger.Info("websocket client disconnected",
		zap.String("client_id", client.ID),
		zap.String("session_id", client.SessionID))
}

// send queues a message on one client, dropping when the buffer is full.
func (h *Hub) send(client *Client, message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("failed to marshal message", zap.Error(err))
		return
	}

	select {
	case client.Send <- data:
	default:
		h.logger.Warn("client send buffer full",
			zap.String("client_id", client.ID),
			zap.String("session_id", client.SessionID))
	}
}

// SendToClient queues a message for the given client id.
func (h *Hub) SendToClient(clientID string, message *Message) error {
	h.clientsMu.RLock()
	client, ok := h.clients[clientID]
	h.clientsMu.RUnlock()

	if !ok {
		return ErrClientNotFound
	}

	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	select {
	case client.Send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// OnlineCount reports how many sockets are connected.
func (h *Hub) OnlineCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// Register hands a client to the hub.
func (h *Hub) Register(client *Client) {
	h.commands <- hubCommand{client: client}
}

// Unregister releases a client from the hub. Safe for clients that were
// never registered; their broker channel is still released.
func (h *Hub) Unregister(client *Client) {
	h.commands <- hubCommand{client: client, leave: true}
}
