package repository

import (
	"context"
	"errors"

	"github.com/dmehra2102/prod-golang-projects/medsched/internal/domain/recurrence"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type patternRepository struct {
	db *gorm.DB
}

func NewPatternRepository(db *gorm.DB) recurrence.Repository {
	return &patternRepository{db: db}
}

func (r *patternRepository) Create(ctx context.Context, p *recurrence.Pattern) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *patternRepository) GetByID(ctx context.Context, id uuid.UUID) (*recurrence.Pattern, error) {
	var p recurrence.Pattern
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, recurrence.ErrPatternNotFound
		}
		return nil, err
	}
	return &p, nil
}
