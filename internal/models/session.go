package models

import (
	"time"
)

// Session status values. A session starts in waiting, accepts guesses while
// tasting, and once ended never transitions again.
const (
	StatusWaiting = "waiting"
	StatusTasting = "tasting"
	StatusPaused  = "paused"
	StatusEnded   = "ended"

	// StatusInProgress is a legacy spelling of tasting still present in
	// old rows; readers normalize it, writers never produce it.
	StatusInProgress = "in_progress"
)

// Session is one run of the game, identified by a shareable join code and
// owned by one host.
type Session struct {
	BaseModel
	Code     string `gorm:"uniqueIndex;size:10;not null" json:"code"`
	HostName string `gorm:"size:100;not null" json:"host_name"`
	Status   string `gorm:"size:20;default:'waiting'" json:"status"` // waiting, tasting, paused, ended

	// associations
	Players []Player `gorm:"foreignKey:SessionID" json:"players,omitempty"`
	Rounds  []Round  `gorm:"foreignKey:SessionID" json:"rounds,omitempty"`
}

// TableName sets the table name.
func (Session) TableName() string {
	return "game_sessions"
}

// Player is one participant of a session. Players are appended for the life
// of the session; there is no leave or kick.
type Player struct {
	BaseModel
	SessionID string    `gorm:"index;size:36;not null" json:"session_id"`
	Name      string    `gorm:"size:100;not null" json:"player_name"`
	IsHost    bool      `gorm:"default:false" json:"is_host"`
	JoinedAt  time.Time `json:"joined_at"`
}

// TableName sets the table name.
func (Player) TableName() string {
	return "game_players"
}

// Round is one timed question within a session with a fixed answer pair.
// The composite unique index is the serialization point for the allocator
// race: concurrent inserts for the same round number collapse to one row.
type Round struct {
	BaseModel
	SessionID      string `gorm:"uniqueIndex:idx_session_round;size:36;not null" json:"session_id"`
	RoundNumber    int    `gorm:"uniqueIndex:idx_session_round;not null" json:"round_number"`
	AnswerCountry  string `gorm:"size:50;not null" json:"correct_country"`
	AnswerSelector string `gorm:"size:50;not null" json:"wine_selector"`
}

// TableName sets the table name.
func (Round) TableName() string {
	return "rounds"
}

// Guess is one player's submission for one round. The composite unique index
// enforces at most one row per (player, round); later submissions update the
// existing row.
type Guess struct {
	BaseModel
	PlayerID        string `gorm:"uniqueIndex:idx_player_round;size:36;not null" json:"player_id"`
	RoundID         string `gorm:"uniqueIndex:idx_player_round;size:36;not null" json:"round_id"`
	GuessedCountry  string `gorm:"size:50;not null" json:"guessed_country"`
	GuessedSelector string `gorm:"size:50;not null" json:"guessed_selector"`
}

// TableName sets the table name.
func (Guess) TableName() string {
	return "player_guesses"
}
