package repository

import (
	"context"

	"github.com/tehtaankatu/tasting/internal/models"
	"gorm.io/gorm"
)

// SessionRepository accesses game_sessions.
type SessionRepository interface {
	BaseRepository
	Create(ctx context.Context, session *models.Session) error
	FindByID(ctx context.Context, id string) (*models.Session, error)
	// FindByCode probes by join code; (nil, nil) when no session has it.
	FindByCode(ctx context.Context, code string) (*models.Session, error)
	UpdateStatus(ctx context.Context, id string, status string) error
}

type sessionRepo struct {
	*BaseRepo
}

// NewSessionRepository creates the session repository.
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepo{BaseRepo: NewBaseRepo(db)}
}

// Create inserts a session row.
func (r *sessionRepo) Create(ctx context.Context, session *models.Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

// FindByID loads one session by id.
func (r *sessionRepo) FindByID(ctx context.Context, id string) (*models.Session, error) {
	var session models.Session
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// FindByCode probes by join code. Not-found is a normal branch, not an error.
func (r *sessionRepo) FindByCode(ctx context.Context, code string) (*models.Session, error) {
	var session models.Session
	err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&session).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// UpdateStatus writes the session status unconditionally.
func (r *sessionRepo) UpdateStatus(ctx context.Context, id string, status string) error {
	return r.db.WithContext(ctx).
		Model(&models.Session{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// WithTx rebinds to a transaction.
func (r *sessionRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &sessionRepo{BaseRepo: &BaseRepo{db: tx}}
}
