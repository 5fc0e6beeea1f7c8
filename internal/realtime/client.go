package realtime

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Fallback connection timings for a hub built without websocket config.
const (
	defaultWriteWait = 10 * time.Second

	defaultPongWait = 60 * time.Second

	defaultMaxMessageSize = 8192
)

// Client is one websocket connection bound to a session topic.
type Client struct {
	ID        string
	SessionID string
	PlayerID  string
	Hub       *Hub
	Conn      *websocket.Conn
	Send      chan []byte

	channel *Channel

	writeWait      time.Duration
	pongWait       time.Duration
	pingPeriod     time.Duration
	maxMessageSize int64
}

// NewClient wraps an upgraded connection. The client's broker channel is
// opened immediately, so change events published from this point on are
// buffered even before the client is registered with the hub.
func NewClient(hub *Hub, conn *websocket.Conn, sessionID, playerID string) *Client {
	c := &Client{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		PlayerID:  playerID,
		Hub:       hub,
		Conn:      conn,
		Send:      make(chan []byte, 256),
		channel:   hub.broker.OpenChannel(sessionID),

		writeWait:      defaultWriteWait,
		pongWait:       defaultPongWait,
		maxMessageSize: defaultMaxMessageSize,
	}

	if cfg := hub.cfg; cfg != nil {
		if cfg.WriteTimeout > 0 {
			c.writeWait = cfg.WriteTimeout
		}
		if cfg.PongTimeout > 0 {
			c.pongWait = cfg.PongTimeout
		}
		if cfg.PingInterval > 0 {
			c.pingPeriod = cfg.PingInterval
		}
		if cfg.MaxMessageSize > 0 {
			c.maxMessageSize = cfg.MaxMessageSize
		}
	}
	if c.pingPeriod <= 0 || c.pingPeriod >= c.pongWait {
		// pings must land before the read deadline expires
		c.pingPeriod = (c.pongWait * 9) / 10
	}

	return c
}

// ReadPump consumes inbound frames until the peer goes away, then releases
// the client. The feed is one-way; the only inbound message honored is ping.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Error("websocket read error",
					zap.String("client_id", c.ID),
					zap.Error(err))
			}
			break
		}

		c.handleMessage(message)
	}
}

func (c *Client) handleMessage(raw []byte) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.Hub.logger.Debug("ignoring malformed client message",
			zap.String("client_id", c.ID))
		return
	}

	if msg.Type == MessageTypePing {
		c.Hub.SendToClient(c.ID, &Message{
			Type:      MessageTypePong,
			Timestamp: time.Now().Unix(),
		})
	}
}

// WritePump drains the send queue onto the socket and keeps the connection
// alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
