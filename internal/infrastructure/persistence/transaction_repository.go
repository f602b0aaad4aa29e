package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/rentbooks/backend/internal/domain/allocation"
	"github.com/rentbooks/backend/internal/domain/shared"
	"github.com/rentbooks/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTransactionWriter persists the transactions a committed plan emits.
// The whole batch is written inside one database transaction so a commit is
// all-or-none.
type GormTransactionWriter struct {
	db *gorm.DB
}

// NewGormTransactionWriter creates a new GormTransactionWriter
func NewGormTransactionWriter(db *gorm.DB) *GormTransactionWriter {
	return &GormTransactionWriter{db: db}
}

// CreateTransactions writes the batch atomically and returns the new IDs in
// input order
func (w *GormTransactionWriter) CreateTransactions(ctx context.Context, transactions []allocation.NewTransaction) ([]uuid.UUID, error) {
	if len(transactions) == 0 {
		return nil, shared.NewValidationError("transaction batch cannot be empty")
	}

	rows := make([]models.TransactionModel, len(transactions))
	ids := make([]uuid.UUID, len(transactions))
	for i, t := range transactions {
		base := shared.NewBaseEntity()
		rows[i] = models.TransactionModel{
			BaseModel: models.BaseModel{
				ID:        base.ID,
				CreatedAt: base.CreatedAt,
				UpdatedAt: base.UpdatedAt,
			},
			PropertyID:  t.PropertyID,
			Kind:        models.TransactionKindExpense,
			AmountMinor: t.Amount.MinorUnits(),
			Currency:    string(t.Amount.Currency()),
			Date:        t.Date,
			Category:    t.Category,
			Description: t.Description,
		}
		ids[i] = base.ID
	}

	err := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&rows).Error
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}
