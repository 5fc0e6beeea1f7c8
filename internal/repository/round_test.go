package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tehtaankatu/tasting/internal/database"
	"github.com/tehtaankatu/tasting/internal/models"
)

func TestRoundRepository_UniquePerSessionAndNumber(t *testing.T) {
	db := TestDB(t)
	sessions := NewSessionRepository(db)
	rounds := NewRoundRepository(db)
	ctx := context.Background()

	session := CreateTestSession("Harri")
	require.NoError(t, sessions.Create(ctx, session))

	first := CreateTestRound(session.ID, 1, "France", "Harri")
	require.NoError(t, rounds.Create(ctx, first))

	// second insert for the same round number hits the composite index
	dup := CreateTestRound(session.ID, 1, "Italy", "Silja")
	err := rounds.Create(ctx, dup)
	require.Error(t, err)
	assert.True(t, database.IsDuplicateKey(err))

	// the same number in another session is fine
	other := CreateTestSession("Silja")
	require.NoError(t, sessions.Create(ctx, other))
	require.NoError(t, rounds.Create(ctx, CreateTestRound(other.ID, 1, "Spain", "Harri")))
}

func TestRoundRepository_Probes(t *testing.T) {
	db := TestDB(t)
	sessions := NewSessionRepository(db)
	rounds := NewRoundRepository(db)
	ctx := context.Background()

	session := CreateTestSession("Harri")
	require.NoError(t, sessions.Create(ctx, session))

	found, err := rounds.FindBySessionAndNumber(ctx, session.ID, 1)
	require.NoError(t, err)
	assert.Nil(t, found)

	latest, err := rounds.FindLatest(ctx, session.ID)
	require.NoError(t, err)
	assert.Nil(t, latest)

	require.NoError(t, rounds.Create(ctx, CreateTestRound(session.ID, 1, "France", "Harri")))
	require.NoError(t, rounds.Create(ctx, CreateTestRound(session.ID, 2, "Italy", "Silja")))

	found, err = rounds.FindBySessionAndNumber(ctx, session.ID, 2)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Italy", found.AnswerCountry)

	latest, err = rounds.FindLatest(ctx, session.ID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 2, latest.RoundNumber)

	list, err := rounds.FindBySession(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 1, list[0].RoundNumber)
	assert.Equal(t, 2, list[1].RoundNumber)
}

func TestGuessRepository_UniquePerPlayerAndRound(t *testing.T) {
	db := TestDB(t)
	sessions := NewSessionRepository(db)
	players := NewPlayerRepository(db)
	rounds := NewRoundRepository(db)
	guesses := NewGuessRepository(db)
	ctx := context.Background()

	session := CreateTestSession("Harri")
	require.NoError(t, sessions.Create(ctx, session))
	player := CreateTestPlayer(session.ID, "Aino", false)
	require.NoError(t, players.Create(ctx, player))
	round := CreateTestRound(session.ID, 1, "France", "Harri")
	require.NoError(t, rounds.Create(ctx, round))

	first := &models.Guess{
		PlayerID:        player.ID,
		RoundID:         round.ID,
		GuessedCountry:  "Spain",
		GuessedSelector: "Silja",
	}
	require.NoError(t, guesses.Create(ctx, first))

	dup := &models.Guess{
		PlayerID:        player.ID,
		RoundID:         round.ID,
		GuessedCountry:  "France",
		GuessedSelector: "Harri",
	}
	err := guesses.Create(ctx, dup)
	require.Error(t, err)
	assert.True(t, database.IsDuplicateKey(err))

	// update in place is the sanctioned path
	first.GuessedCountry = "France"
	first.GuessedSelector = "Harri"
	require.NoError(t, guesses.Update(ctx, first))

	found, err := guesses.FindByPlayerAndRound(ctx, player.ID, round.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, first.ID, found.ID)
	assert.Equal(t, "France", found.GuessedCountry)

	all, err := guesses.FindByRounds(ctx, []string{round.ID})
	require.NoError(t, err)
	assert.Len(t, all, 1)

	none, err := guesses.FindByRounds(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGuessRepository_ProbeMissing(t *testing.T) {
	db := TestDB(t)
	guesses := NewGuessRepository(db)
	ctx := context.Background()

	found, err := guesses.FindByPlayerAndRound(ctx, "nobody", "nothing")
	require.NoError(t, err)
	assert.Nil(t, found)
}
