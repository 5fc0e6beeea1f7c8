package repository

import (
	"sync"

	"gorm.io/gorm"
)

// Manager bundles the four entity repositories behind one handle with
// lazily-built instances.
type Manager struct {
	db *gorm.DB

	sessionOnce sync.Once
	session     SessionRepository

	playerOnce sync.Once
	player     PlayerRepository

	roundOnce sync.Once
	round     RoundRepository

	guessOnce sync.Once
	guess     GuessRepository
}

// NewManager creates a Manager over the given database.
func NewManager(db *gorm.DB) *Manager {
	return &Manager{db: db}
}

// DB returns the underlying database handle.
func (m *Manager) DB() *gorm.DB {
	return m.db
}

// Session returns the session repository.
func (m *Manager) Session() SessionRepository {
	m.sessionOnce.Do(func() {
		m.session = NewSessionRepository(m.db)
	})
	return m.session
}

// Player returns the player repository.
func (m *Manager) Player() PlayerRepository {
	m.playerOnce.Do(func() {
		m.player = NewPlayerRepository(m.db)
	})
	return m.player
}

// Round returns the round repository.
func (m *Manager) Round() RoundRepository {
	m.roundOnce.Do(func() {
		m.round = NewRoundRepository(m.db)
	})
	return m.round
}

// Guess returns the guess repository.
func (m *Manager) Guess() GuessRepository {
	m.guessOnce.Do(func() {
		m.guess = NewGuessRepository(m.db)
	})
	return m.guess
}
