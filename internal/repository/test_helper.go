package repository

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/tehtaankatu/tasting/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB opens an in-memory database with the schema migrated. Each call
// returns a fresh database, so tests never share state.
func TestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// a named in-memory database with shared cache stays alive across the
	// pool's connections while remaining private to this test
	dsn := "file:" + uuid.New().String() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// one connection keeps concurrent writers from tripping over sqlite's
	// file-level lock; calls still interleave between statements
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.Session{},
		&models.Player{},
		&models.Round{},
		&models.Guess{},
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	})

	return db
}

// CreateTestSession builds an unsaved waiting session.
func CreateTestSession(hostName string) *models.Session {
	return &models.Session{
		Code:     uuid.New().String()[:6],
		HostName: hostName,
		Status:   models.StatusWaiting,
	}
}

// CreateTestPlayer builds an unsaved player for a session.
func CreateTestPlayer(sessionID, name string, isHost bool) *models.Player {
	return &models.Player{
		SessionID: sessionID,
		Name:      name,
		IsHost:    isHost,
		JoinedAt:  time.Now(),
	}
}

// CreateTestRound builds an unsaved round.
func CreateTestRound(sessionID string, number int, country, selector string) *models.Round {
	return &models.Round{
		SessionID:      sessionID,
		RoundNumber:    number,
		AnswerCountry:  country,
		AnswerSelector: selector,
	}
}
