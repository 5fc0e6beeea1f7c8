package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tehtaankatu/tasting/internal/config"
	"github.com/tehtaankatu/tasting/internal/errors"
	"github.com/tehtaankatu/tasting/internal/game"
	"github.com/tehtaankatu/tasting/internal/middleware"
	"github.com/tehtaankatu/tasting/internal/service"
)

// SessionHandler serves the session lifecycle endpoints.
type SessionHandler struct {
	svc service.GameService
	cfg *config.GameConfig
	log *zap.Logger
}

func NewSessionHandler(svc service.GameService, cfg *config.GameConfig, log *zap.Logger) *SessionHandler {
	return &SessionHandler{svc: svc, cfg: cfg, log: log}
}

// Host creates a session for a host holding the shared passphrase.
func (h *SessionHandler) Host(c *gin.Context) {
	var req service.HostSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.New(errors.ErrInvalidInput, err.Error()))
		return
	}

	resp, err := h.svc.HostSession(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, resp)
}

// Join seats a player in an existing session by join code.
func (h *SessionHandler) Join(c *gin.Context) {
	var req service.JoinSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.New(errors.ErrInvalidInput, err.Error()))
		return
	}

	resp, err := h.svc.JoinSession(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, resp)
}

// Get serves the session's full current state.
func (h *SessionHandler) Get(c *gin.Context) {
	sessionID, ok := h.sessionFromPath(c)
	if !ok {
		return
	}

	snapshot, err := h.svc.Snapshot(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, snapshot)
}

// Scores serves the ranked scoreboard.
func (h *SessionHandler) Scores(c *gin.Context) {
	sessionID, ok := h.sessionFromPath(c)
	if !ok {
		return
	}

	scores, err := h.svc.Scoreboard(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{
		"scores": scores,
		"winner": game.Winner(scores),
	})
}

// StartRound opens the numbered round.
func (h *SessionHandler) StartRound(c *gin.Context) {
	sessionID, ok := h.sessionFromPath(c)
	if !ok {
		return
	}

	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		respondError(c, errors.New(errors.ErrInvalidInput, "round number must be an integer"))
		return
	}

	round, err := h.svc.StartRound(c.Request.Context(), sessionID, number)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{
		"round":            round,
		"duration_seconds": int(h.cfg.RoundDuration.Seconds()),
	})
}

// Pause suspends the current round.
func (h *SessionHandler) Pause(c *gin.Context) {
	h.command(c, h.svc.PauseGame)
}

// Resume reopens a paused round.
func (h *SessionHandler) Resume(c *gin.Context) {
	h.command(c, h.svc.ResumeGame)
}

// End closes the session for good.
func (h *SessionHandler) End(c *gin.Context) {
	h.command(c, h.svc.EndGame)
}

func (h *SessionHandler) command(c *gin.Context, fn func(ctx context.Context, sessionID string) error) {
	sessionID, ok := h.sessionFromPath(c)
	if !ok {
		return
	}

	if err := fn(c.Request.Context(), sessionID); err != nil {
		respondError(c, err)
		return
	}

	snapshot, err := h.svc.Snapshot(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, snapshot)
}

// Meta serves the static game vocabulary clients render their pickers from.
func (h *SessionHandler) Meta(c *gin.Context) {
	respondOK(c, http.StatusOK, gin.H{
		"countries":        game.GuessableCountries,
		"selectors":        game.DefaultSelectors,
		"duration_seconds": int(h.cfg.RoundDuration.Seconds()),
	})
}

// sessionFromPath reads the session id and rejects tokens minted for a
// different session.
func (h *SessionHandler) sessionFromPath(c *gin.Context) (string, bool) {
	sessionID := c.Param("id")
	if sessionID == "" {
		respondError(c, errors.New(errors.ErrInvalidInput, "session id is required"))
		return "", false
	}
	if tokenSession := c.GetString(middleware.CtxSessionID); tokenSession != "" && tokenSession != sessionID {
		respondError(c, errors.New(errors.ErrTokenInvalid, "token was issued for another session"))
		return "", false
	}
	return sessionID, true
}
