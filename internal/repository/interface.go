package repository

import (
	"context"

	"gorm.io/gorm"
)

// BaseRepository is implemented by every entity repository.
type BaseRepository interface {
	// GetDB returns the underlying database handle.
	GetDB() *gorm.DB
	// WithTx rebinds the repository to a transaction.
	WithTx(tx *gorm.DB) BaseRepository
}

// BaseRepo is the shared repository implementation.
type BaseRepo struct {
	db *gorm.DB
}

// NewBaseRepo creates a BaseRepo.
func NewBaseRepo(db *gorm.DB) *BaseRepo {
	return &BaseRepo{db: db}
}

// GetDB returns the underlying database handle.
func (r *BaseRepo) GetDB() *gorm.DB {
	return r.db
}

// WithTx rebinds to a transaction.
func (r *BaseRepo) WithTx(tx *gorm.DB) *BaseRepo {
	return &BaseRepo{db: tx}
}

// Transaction runs fn inside a transaction.
func (r *BaseRepo) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}
