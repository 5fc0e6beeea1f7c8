package repository

import (
	"context"

	"github.com/tehtaankatu/tasting/internal/models"
	"gorm.io/gorm"
)

// PlayerRepository accesses game_players.
type PlayerRepository interface {
	BaseRepository
	Create(ctx context.Context, player *models.Player) error
	FindByID(ctx context.Context, id string) (*models.Player, error)
	FindBySession(ctx context.Context, sessionID string) ([]*models.Player, error)
}

type playerRepo struct {
	*BaseRepo
}

// NewPlayerRepository creates the player repository.
func NewPlayerRepository(db *gorm.DB) PlayerRepository {
	return &playerRepo{BaseRepo: NewBaseRepo(db)}
}

// Create appends a player row.
func (r *playerRepo) Create(ctx context.Context, player *models.Player) error {
	return r.db.WithContext(ctx).Create(player).Error
}

// FindByID loads one player by id.
func (r *playerRepo) FindByID(ctx context.Context, id string) (*models.Player, error) {
	var player models.Player
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&player).Error
	if err != nil {
		return nil, err
	}
	return &player, nil
}

// FindBySession lists a session's players in join order.
func (r *playerRepo) FindBySession(ctx context.Context, sessionID string) ([]*models.Player, error) {
	var players []*models.Player
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("joined_at asc").
		Find(&players).Error
	return players, err
}

// WithTx rebinds to a transaction.
func (r *playerRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &playerRepo{BaseRepo: &BaseRepo{db: tx}}
}
