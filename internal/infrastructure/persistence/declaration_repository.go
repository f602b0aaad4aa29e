package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rentbooks/backend/internal/domain/allocation"
	"github.com/rentbooks/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTaxDeclarationRepository implements TaxDeclarationRepository using GORM
type GormTaxDeclarationRepository struct {
	db *gorm.DB
}

// NewGormTaxDeclarationRepository creates a new GormTaxDeclarationRepository
func NewGormTaxDeclarationRepository(db *gorm.DB) *GormTaxDeclarationRepository {
	return &GormTaxDeclarationRepository{db: db}
}

// Save creates or updates a tax declaration
func (r *GormTaxDeclarationRepository) Save(ctx context.Context, declaration *allocation.TaxDeclaration) error {
	model := models.TaxDeclarationModelFromDomain(declaration)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByID finds a tax declaration by its ID. Returns (nil, nil) when no
// declaration exists, matching the repository port contract.
func (r *GormTaxDeclarationRepository) FindByID(ctx context.Context, id uuid.UUID) (*allocation.TaxDeclaration, error) {
	var model models.TaxDeclarationModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindAll lists all tax declarations, newest first
func (r *GormTaxDeclarationRepository) FindAll(ctx context.Context) ([]allocation.TaxDeclaration, error) {
	var declarationModels []models.TaxDeclarationModel
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&declarationModels).Error; err != nil {
		return nil, err
	}
	declarations := make([]allocation.TaxDeclaration, len(declarationModels))
	for i := range declarationModels {
		decl, err := declarationModels[i].ToDomain()
		if err != nil {
			return nil, err
		}
		declarations[i] = *decl
	}
	return declarations, nil
}
