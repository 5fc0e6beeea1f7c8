package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tehtaankatu/tasting/internal/errors"
	"github.com/tehtaankatu/tasting/internal/middleware"
	"github.com/tehtaankatu/tasting/internal/service"
)

// GuessHandler serves guess submission.
type GuessHandler struct {
	svc service.GameService
	log *zap.Logger
}

func NewGuessHandler(svc service.GameService, log *zap.Logger) *GuessHandler {
	return &GuessHandler{svc: svc, log: log}
}

// Submit records or replaces the caller's guess for a round. The player
// identity comes from the token, never the body.
func (h *GuessHandler) Submit(c *gin.Context) {
	var req service.SubmitGuessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.New(errors.ErrInvalidInput, err.Error()))
		return
	}
	req.PlayerID = c.GetString(middleware.CtxPlayerID)

	guess, err := h.svc.SubmitGuess(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, guess)
}
