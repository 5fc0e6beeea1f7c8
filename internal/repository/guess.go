package repository

import (
	"context"

	"github.com/tehtaankatu/tasting/internal/models"
	"gorm.io/gorm"
)

// GuessRepository accesses player_guesses.
type GuessRepository interface {
	BaseRepository
	Create(ctx context.Context, guess *models.Guess) error
	Update(ctx context.Context, guess *models.Guess) error
	// FindByPlayerAndRound probes for a prior guess; (nil, nil) when absent.
	FindByPlayerAndRound(ctx context.Context, playerID, roundID string) (*models.Guess, error)
	FindByRounds(ctx context.Context, roundIDs []string) ([]*models.Guess, error)
}

type guessRepo struct {
	*BaseRepo
}

// NewGuessRepository creates the guess repository.
func NewGuessRepository(db *gorm.DB) GuessRepository {
	return &guessRepo{BaseRepo: NewBaseRepo(db)}
}

// Create inserts a guess row. The (player_id, round_id) unique index rejects
// a second row for the same pair.
func (r *guessRepo) Create(ctx context.Context, guess *models.Guess) error {
	return r.db.WithContext(ctx).Create(guess).Error
}

// Update saves an existing guess row in place.
func (r *guessRepo) Update(ctx context.Context, guess *models.Guess) error {
	return r.db.WithContext(ctx).Save(guess).Error
}

// FindByPlayerAndRound probes for the player's guess in a round.
func (r *guessRepo) FindByPlayerAndRound(ctx context.Context, playerID, roundID string) (*models.Guess, error) {
	var guess models.Guess
	err := r.db.WithContext(ctx).
		Where("player_id = ? AND round_id = ?", playerID, roundID).
		First(&guess).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &guess, nil
}

// FindByRounds lists every guess belonging to the given rounds.
func (r *guessRepo) FindByRounds(ctx context.Context, roundIDs []string) ([]*models.Guess, error) {
	if len(roundIDs) == 0 {
		return nil, nil
	}
	var guesses []*models.Guess
	err := r.db.WithContext(ctx).
		Where("round_id IN ?", roundIDs).
		Order("created_at asc").
		Find(&guesses).Error
	return guesses, err
}

// WithTx rebinds to a transaction.
func (r *guessRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &guessRepo{BaseRepo: &BaseRepo{db: tx}}
}
