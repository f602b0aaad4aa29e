package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rentbooks/backend/internal/domain/allocation"
	"github.com/rentbooks/backend/internal/domain/shared"
	"github.com/rentbooks/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPropertyRepository implements PropertyRepository using GORM
type GormPropertyRepository struct {
	db *gorm.DB
}

// NewGormPropertyRepository creates a new GormPropertyRepository
func NewGormPropertyRepository(db *gorm.DB) *GormPropertyRepository {
	return &GormPropertyRepository{db: db}
}

// Save creates or updates a property
func (r *GormPropertyRepository) Save(ctx context.Context, property *allocation.Property) error {
	model := models.PropertyModelFromDomain(property)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByID finds a property by its ID
func (r *GormPropertyRepository) FindByID(ctx context.Context, id uuid.UUID) (*allocation.Property, error) {
	var model models.PropertyModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists all properties ordered by code
func (r *GormPropertyRepository) FindAll(ctx context.Context) ([]allocation.Property, error) {
	var propertyModels []models.PropertyModel
	if err := r.db.WithContext(ctx).
		Order("code ASC").
		Find(&propertyModels).Error; err != nil {
		return nil, err
	}
	properties := make([]allocation.Property, len(propertyModels))
	for i := range propertyModels {
		properties[i] = *propertyModels[i].ToDomain()
	}
	return properties, nil
}
