package allocation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rentbooks/backend/internal/domain/shared/valueobject"
)

// PropertyRevenueProvider supplies each property's revenue figure for a
// competency period. Implemented by the analytics persistence layer; called
// once per selected property per declaration.
type PropertyRevenueProvider interface {
	GetPropertyRevenue(ctx context.Context, propertyID uuid.UUID, period CompetencyPeriod) (valueobject.Money, error)
}

// NewTransaction is a transaction-creation command emitted on commit, one
// per (recipient, installment) pair.
type NewTransaction struct {
	PropertyID  uuid.UUID
	Amount      valueobject.Money
	Date        time.Time
	Category    string
	Description string
}

// TransactionWriter persists the transactions a committed plan emits. The
// batch is atomic: either every transaction is created or none is.
type TransactionWriter interface {
	CreateTransactions(ctx context.Context, transactions []NewTransaction) ([]uuid.UUID, error)
}

// TaxDeclarationRepository persists tax declarations across the
// preview/commit round trip
type TaxDeclarationRepository interface {
	Save(ctx context.Context, declaration *TaxDeclaration) error
	FindByID(ctx context.Context, id uuid.UUID) (*TaxDeclaration, error)
	FindAll(ctx context.Context) ([]TaxDeclaration, error)
}

// PropertyRepository persists properties
type PropertyRepository interface {
	Save(ctx context.Context, property *Property) error
	FindByID(ctx context.Context, id uuid.UUID) (*Property, error)
	FindAll(ctx context.Context) ([]Property, error)
}
