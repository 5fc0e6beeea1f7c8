package repository

import (
	"context"

	"github.com/tehtaankatu/tasting/internal/models"
	"gorm.io/gorm"
)

// RoundRepository accesses rounds.
type RoundRepository interface {
	BaseRepository
	Create(ctx context.Context, round *models.Round) error
	FindByID(ctx context.Context, id string) (*models.Round, error)
	// FindBySessionAndNumber probes for one round; (nil, nil) when absent.
	FindBySessionAndNumber(ctx context.Context, sessionID string, roundNumber int) (*models.Round, error)
	FindBySession(ctx context.Context, sessionID string) ([]*models.Round, error)
	// FindLatest probes for the highest-numbered round; (nil, nil) when the
	// session has none yet.
	FindLatest(ctx context.Context, sessionID string) (*models.Round, error)
}

type roundRepo struct {
	*BaseRepo
}

// NewRoundRepository creates the round repository.
func NewRoundRepository(db *gorm.DB) RoundRepository {
	return &roundRepo{BaseRepo: NewBaseRepo(db)}
}

// Create inserts a round row. A duplicate (session_id, round_number) pair is
// rejected by the unique index; callers decide whether that is fatal.
func (r *roundRepo) Create(ctx context.Context, round *models.Round) error {
	return r.db.WithContext(ctx).Create(round).Error
}

// FindByID loads one round by id.
func (r *roundRepo) FindByID(ctx context.Context, id string) (*models.Round, error) {
	var round models.Round
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&round).Error
	if err != nil {
		return nil, err
	}
	return &round, nil
}

// FindBySessionAndNumber probes for one round of a session.
func (r *roundRepo) FindBySessionAndNumber(ctx context.Context, sessionID string, roundNumber int) (*models.Round, error) {
	var round models.Round
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND round_number = ?", sessionID, roundNumber).
		First(&round).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &round, nil
}

// FindBySession lists a session's rounds by round number.
func (r *roundRepo) FindBySession(ctx context.Context, sessionID string) ([]*models.Round, error) {
	var rounds []*models.Round
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("round_number asc").
		Find(&rounds).Error
	return rounds, err
}

// FindLatest probes for the most recent round of a session.
func (r *roundRepo) FindLatest(ctx context.Context, sessionID string) (*models.Round, error) {
	var round models.Round
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("round_number desc").
		First(&round).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &round, nil
}

// WithTx rebinds to a transaction.
func (r *roundRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &roundRepo{BaseRepo: &BaseRepo{db: tx}}
}
