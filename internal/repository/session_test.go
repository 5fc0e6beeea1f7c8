package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tehtaankatu/tasting/internal/database"
	"github.com/tehtaankatu/tasting/internal/models"
)

func TestSessionRepository_Create(t *testing.T) {
	db := TestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	session := CreateTestSession("Harri")
	err := repo.Create(ctx, session)
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)

	found, err := repo.FindByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.Code, found.Code)
	assert.Equal(t, "Harri", found.HostName)
	assert.Equal(t, models.StatusWaiting, found.Status)
}

func TestSessionRepository_CodeUnique(t *testing.T) {
	db := TestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	first := CreateTestSession("Harri")
	first.Code = "ABC123"
	require.NoError(t, repo.Create(ctx, first))

	second := CreateTestSession("Silja")
	second.Code = "ABC123"
	err := repo.Create(ctx, second)
	require.Error(t, err)
	assert.True(t, database.IsDuplicateKey(err))
}

func TestSessionRepository_FindByCode(t *testing.T) {
	db := TestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	session := CreateTestSession("Harri")
	session.Code = "XYZ789"
	require.NoError(t, repo.Create(ctx, session))

	found, err := repo.FindByCode(ctx, "XYZ789")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, session.ID, found.ID)

	// a missing code is a normal branch, not an error
	missing, err := repo.FindByCode(ctx, "NOPE42")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSessionRepository_UpdateStatus(t *testing.T) {
	db := TestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	session := CreateTestSession("Harri")
	require.NoError(t, repo.Create(ctx, session))

	require.NoError(t, repo.UpdateStatus(ctx, session.ID, models.StatusTasting))

	found, err := repo.FindByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusTasting, found.Status)
}

func TestPlayerRepository_FindBySessionOrder(t *testing.T) {
	db := TestDB(t)
	sessions := NewSessionRepository(db)
	players := NewPlayerRepository(db)
	ctx := context.Background()

	session := CreateTestSession("Harri")
	require.NoError(t, sessions.Create(ctx, session))

	for i, name := range []string{"Harri", "Aino", "Mikko"} {
		p := CreateTestPlayer(session.ID, name, i == 0)
		p.JoinedAt = p.JoinedAt.Add(time.Duration(i) * time.Second)
		require.NoError(t, players.Create(ctx, p))
	}

	list, err := players.FindBySession(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Harri", list[0].Name)
	assert.True(t, list[0].IsHost)
	assert.Equal(t, "Aino", list[1].Name)
	assert.Equal(t, "Mikko", list[2].Name)
}
