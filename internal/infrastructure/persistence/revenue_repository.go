package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/rentbooks/backend/internal/domain/allocation"
	"github.com/rentbooks/backend/internal/domain/shared/valueobject"
	"github.com/rentbooks/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPropertyRevenueProvider computes per-property revenue from the ledger.
// Revenue is the sum of income transactions dated inside the competency
// period.
type GormPropertyRevenueProvider struct {
	db *gorm.DB
}

// NewGormPropertyRevenueProvider creates a new GormPropertyRevenueProvider
func NewGormPropertyRevenueProvider(db *gorm.DB) *GormPropertyRevenueProvider {
	return &GormPropertyRevenueProvider{db: db}
}

// GetPropertyRevenue sums the property's income transactions over the period
func (r *GormPropertyRevenueProvider) GetPropertyRevenue(ctx context.Context, propertyID uuid.UUID, period allocation.CompetencyPeriod) (valueobject.Money, error) {
	var totalMinor int64
	err := r.db.WithContext(ctx).
		Model(&models.TransactionModel{}).
		Select("COALESCE(SUM(amount_minor), 0)").
		Where("property_id = ? AND kind = ? AND date >= ? AND date <= ?",
			propertyID, models.TransactionKindIncome, period.Start, period.End).
		Scan(&totalMinor).Error
	if err != nil {
		return valueobject.Money{}, err
	}
	return valueobject.NewMoney(totalMinor, valueobject.DefaultCurrency)
}
