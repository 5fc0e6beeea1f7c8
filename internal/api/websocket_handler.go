package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/tehtaankatu/tasting/internal/config"
	"github.com/tehtaankatu/tasting/internal/errors"
	"github.com/tehtaankatu/tasting/internal/middleware"
	"github.com/tehtaankatu/tasting/internal/realtime"
	"github.com/tehtaankatu/tasting/internal/service"
)

// WebSocketHandler upgrades clients onto a session's change feed.
type WebSocketHandler struct {
	svc      service.GameService
	hub      *realtime.Hub
	upgrader websocket.Upgrader
	log      *zap.Logger
}

func NewWebSocketHandler(svc service.GameService, hub *realtime.Hub, cfg *config.WebSocketConfig, log *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		svc: svc,
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:    cfg.ReadBufferSize,
			WriteBufferSize:   cfg.WriteBufferSize,
			EnableCompression: cfg.EnableCompression,
			CheckOrigin: func(r *http.Request) bool {
				// the join code plus the player token gate access, not the origin
				return true
			},
		},
		log: log,
	}
}

// Serve connects a player to their session's feed. The first frame is always
// a full snapshot, so a reconnecting client recovers without replaying the
// events it missed.
func (h *WebSocketHandler) Serve(c *gin.Context) {
	sessionID := c.Param("id")
	if tokenSession := c.GetString(middleware.CtxSessionID); tokenSession != sessionID {
		respondError(c, errors.New(errors.ErrTokenInvalid, "token was issued for another session"))
		return
	}
	playerID := c.GetString(middleware.CtxPlayerID)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error("websocket upgrade failed",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return
	}

	// the client's broker channel opens here; events published while the
	// snapshot query runs are buffered and delivered after registration
	client := realtime.NewClient(h.hub, conn, sessionID, playerID)

	snapshot, err := h.svc.Snapshot(c.Request.Context(), sessionID)
	if err != nil {
		h.log.Error("snapshot failed",
			zap.String("session_id", sessionID),
			zap.Error(err))
		h.hub.Unregister(client)
		conn.Close()
		return
	}

	// queue the snapshot ahead of registration so nothing from the feed can
	// outrun it
	if frame, err := snapshotFrame(sessionID, snapshot); err == nil {
		client.Send <- frame
	} else {
		h.log.Error("failed to marshal snapshot", zap.Error(err))
	}

	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}

func snapshotFrame(sessionID string, snapshot *service.SessionSnapshot) ([]byte, error) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, err
	}
	return json.Marshal(&realtime.Message{
		Type:      realtime.MessageTypeSnapshot,
		SessionID: sessionID,
		Data:      data,
		Timestamp: time.Now().Unix(),
	})
}
