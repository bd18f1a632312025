package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"studyshelf/internal/model"
)

type TutorExchangeRepository struct {
	db *gorm.DB
}

func NewTutorExchangeRepository(db *gorm.DB) *TutorExchangeRepository {
	return &TutorExchangeRepository{db: db}
}

func (r *TutorExchangeRepository) Create(ctx context.Context, exchange *model.TutorExchange) error {
	if err := r.db.WithContext(ctx).Create(exchange).Error; err != nil {
		return fmt.Errorf("create tutor exchange failed: %w", err)
	}
	return nil
}
