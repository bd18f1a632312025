package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"studyshelf/internal/model"
)

type ResourceRepository struct {
	db *gorm.DB
}

func NewResourceRepository(db *gorm.DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

func (r *ResourceRepository) Create(ctx context.Context, resource *model.Resource) error {
	if err := r.db.WithContext(ctx).Create(resource).Error; err != nil {
		return fmt.Errorf("create resource failed: %w", err)
	}
	return nil
}

// GetByID returns nil, nil when no row matches.
func (r *ResourceRepository) GetByID(ctx context.Context, id uint) (*model.Resource, error) {
	var resource model.Resource
	if err := r.db.WithContext(ctx).First(&resource, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get resource failed: %w", err)
	}
	return &resource, nil
}

func (r *ResourceRepository) List(ctx context.Context, filter model.ResourceFilter) ([]model.Resource, error) {
	q := r.db.WithContext(ctx).Model(&model.Resource{})
	if filter.Branch != "" {
		q = q.Where("branch = ?", filter.Branch)
	}
	if filter.Year != "" {
		q = q.Where("year = ?", filter.Year)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Subject != "" {
		q = q.Where("subject = ?", filter.Subject)
	}

	resources := []model.Resource{}
	if err := q.Order("created_at DESC").Find(&resources).Error; err != nil {
		return nil, fmt.Errorf("list resources failed: %w", err)
	}
	return resources, nil
}

func (r *ResourceRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&model.Resource{}, id).Error; err != nil {
		return fmt.Errorf("delete resource failed: %w", err)
	}
	return nil
}
