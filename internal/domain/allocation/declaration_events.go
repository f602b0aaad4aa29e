package allocation

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentbooks/backend/internal/domain/shared"
)

// Event type constants for the tax declaration aggregate
const (
	EventTypeTaxDeclarationCreated   = "tax_declaration.created"
	EventTypeTaxDeclarationPreviewed = "tax_declaration.previewed"
	EventTypeTaxDeclarationCommitted = "tax_declaration.committed"
)

const taxDeclarationAggregateType = "TaxDeclaration"

// TaxDeclarationCreatedEvent is raised when a declaration draft is created
type TaxDeclarationCreatedEvent struct {
	shared.BaseDomainEvent
	TaxType     TaxType   `json:"tax_type"`
	TotalAmount string    `json:"total_amount"`
	PaymentDate time.Time `json:"payment_date"`
	Properties  int       `json:"properties"`
}

// NewTaxDeclarationCreatedEvent creates a TaxDeclarationCreatedEvent
func NewTaxDeclarationCreatedEvent(d *TaxDeclaration) *TaxDeclarationCreatedEvent {
	return &TaxDeclarationCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			EventTypeTaxDeclarationCreated, taxDeclarationAggregateType, d.ID),
		TaxType:     d.TaxType,
		TotalAmount: d.TotalAmount.DecimalString(),
		PaymentDate: d.PaymentDate,
		Properties:  len(d.SelectedPropertyIDs),
	}
}

// TaxDeclarationPreviewedEvent is raised when an allocation plan has been
// computed for a declaration
type TaxDeclarationPreviewedEvent struct {
	shared.BaseDomainEvent
	TaxType      TaxType `json:"tax_type"`
	Installments int     `json:"installments"`
	Transactions int     `json:"transactions"`
}

// NewTaxDeclarationPreviewedEvent creates a TaxDeclarationPreviewedEvent
func NewTaxDeclarationPreviewedEvent(d *TaxDeclaration) *TaxDeclarationPreviewedEvent {
	return &TaxDeclarationPreviewedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			EventTypeTaxDeclarationPreviewed, taxDeclarationAggregateType, d.ID),
		TaxType:      d.TaxType,
		Installments: len(d.Plan.Allocations),
		Transactions: d.Plan.TransactionCount(),
	}
}

// TaxDeclarationCommittedEvent is raised when a declaration's transactions
// have been emitted to storage
type TaxDeclarationCommittedEvent struct {
	shared.BaseDomainEvent
	TaxType      TaxType     `json:"tax_type"`
	Transactions int         `json:"transactions"`
	Properties   []uuid.UUID `json:"properties"`
}

// NewTaxDeclarationCommittedEvent creates a TaxDeclarationCommittedEvent
func NewTaxDeclarationCommittedEvent(d *TaxDeclaration) *TaxDeclarationCommittedEvent {
	transactions := 0
	if d.Plan != nil {
		transactions = d.Plan.TransactionCount()
	}
	return &TaxDeclarationCommittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			EventTypeTaxDeclarationCommitted, taxDeclarationAggregateType, d.ID),
		TaxType:      d.TaxType,
		Transactions: transactions,
		Properties:   d.SelectedPropertyIDs,
	}
}
