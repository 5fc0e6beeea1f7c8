package service

import (
	"context"

	"github.com/tehtaankatu/tasting/internal/game"
	"github.com/tehtaankatu/tasting/internal/models"
)

// HostSessionRequest opens a new session. The host code is the shared
// passphrase gating hosting, not a per-user credential.
type HostSessionRequest struct {
	HostName string `json:"host_name" binding:"required"`
	HostCode string `json:"host_code" binding:"required"`
}

// JoinSessionRequest joins an existing session by its join code.
type JoinSessionRequest struct {
	Code       string `json:"code" binding:"required"`
	PlayerName string `json:"player_name" binding:"required"`
}

// SessionResponse is the result of hosting or joining: the session, the
// caller's player row, and the token that ties the two together.
type SessionResponse struct {
	Session *models.Session `json:"session"`
	Player  *models.Player  `json:"player"`
	Token   string          `json:"token"`
}

// SubmitGuessRequest records or replaces one player's guess for a round.
type SubmitGuessRequest struct {
	PlayerID        string `json:"player_id"`
	RoundID         string `json:"round_id" binding:"required"`
	GuessedCountry  string `json:"guessed_country" binding:"required"`
	GuessedSelector string `json:"guessed_selector" binding:"required"`
}

// SessionSnapshot is the full current state of a session, served to
// reconnecting clients before any change events.
type SessionSnapshot struct {
	Session        *models.Session  `json:"session"`
	Players        []*models.Player `json:"players"`
	CurrentRound   *models.Round    `json:"current_round,omitempty"`
	CurrentGuesses []*models.Guess  `json:"current_guesses,omitempty"`
}

// GameService is the core of the party game: session lifecycle, round
// allocation, guess recording and scoring.
type GameService interface {
	HostSession(ctx context.Context, req *HostSessionRequest) (*SessionResponse, error)
	JoinSession(ctx context.Context, req *JoinSessionRequest) (*SessionResponse, error)
	Snapshot(ctx context.Context, sessionID string) (*SessionSnapshot, error)

	// EnsureRound returns the session's round for the given number,
	// creating it with a freshly drawn answer when absent. Idempotent
	// under concurrent callers.
	EnsureRound(ctx context.Context, sessionID string, roundNumber int) (*models.Round, error)
	StartRound(ctx context.Context, sessionID string, roundNumber int) (*models.Round, error)
	PauseGame(ctx context.Context, sessionID string) error
	ResumeGame(ctx context.Context, sessionID string) error
	EndGame(ctx context.Context, sessionID string) error

	SubmitGuess(ctx context.Context, req *SubmitGuessRequest) (*models.Guess, error)
	Scoreboard(ctx context.Context, sessionID string) ([]game.PlayerScore, error)
}
