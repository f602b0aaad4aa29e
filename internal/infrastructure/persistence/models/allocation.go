package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rentbooks/backend/internal/domain/allocation"
	"github.com/rentbooks/backend/internal/domain/shared/valueobject"
)

// TransactionKind separates property income from outflows in the ledger
type TransactionKind string

const (
	TransactionKindIncome  TransactionKind = "INCOME"
	TransactionKindExpense TransactionKind = "EXPENSE"
)

// PropertyModel is the persistence model for the Property aggregate root
type PropertyModel struct {
	AggregateModel
	Code   string `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name   string `gorm:"type:varchar(200);not null"`
	Active bool   `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (PropertyModel) TableName() string {
	return "properties"
}

// ToDomain converts the persistence model to a domain Property
func (m *PropertyModel) ToDomain() *allocation.Property {
	p := &allocation.Property{
		Code:   m.Code,
		Name:   m.Name,
		Active: m.Active,
	}
	m.PopulateAggregateRoot(&p.BaseAggregateRoot)
	return p
}

// PropertyModelFromDomain builds the persistence model from a domain Property
func PropertyModelFromDomain(p *allocation.Property) *PropertyModel {
	m := &PropertyModel{
		Code:   p.Code,
		Name:   p.Name,
		Active: p.Active,
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	return m
}

// TransactionModel is the persistence model for ledger transactions. Amounts
// are stored as integer minor units alongside their currency code.
type TransactionModel struct {
	BaseModel
	PropertyID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Kind        TransactionKind `gorm:"type:varchar(10);not null;index"`
	AmountMinor int64           `gorm:"not null"`
	Currency    string          `gorm:"type:varchar(3);not null"`
	Date        time.Time       `gorm:"not null;index"`
	Category    string          `gorm:"type:varchar(50);not null;index"`
	Description string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "transactions"
}

// Amount reconstructs the Money value stored on the row
func (m *TransactionModel) Amount() (valueobject.Money, error) {
	return valueobject.NewMoney(m.AmountMinor, valueobject.Currency(m.Currency))
}

// PlanDocument stores a computed allocation plan as a JSON column
type PlanDocument struct {
	Plan *allocation.AllocationPlan
}

// Value implements driver.Valuer for JSON columns
func (d PlanDocument) Value() (driver.Value, error) {
	if d.Plan == nil {
		return nil, nil
	}
	return json.Marshal(d.Plan)
}

// Scan implements sql.Scanner for JSON columns
func (d *PlanDocument) Scan(value any) error {
	if value == nil {
		d.Plan = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into PlanDocument", value)
	}
	if len(raw) == 0 {
		d.Plan = nil
		return nil
	}
	plan := &allocation.AllocationPlan{}
	if err := json.Unmarshal(raw, plan); err != nil {
		return err
	}
	d.Plan = plan
	return nil
}

// TaxDeclarationModel is the persistence model for the TaxDeclaration
// aggregate root. The computed plan is stored as a JSON document so a
// preview survives until a later commit request.
type TaxDeclarationModel struct {
	AggregateModel
	TaxType         string       `gorm:"type:varchar(10);not null;index"`
	PeriodStart     time.Time    `gorm:"not null"`
	PeriodEnd       time.Time    `gorm:"not null"`
	TotalMinor      int64        `gorm:"not null"`
	Currency        string       `gorm:"type:varchar(3);not null"`
	PaymentDate     time.Time    `gorm:"not null"`
	PropertyIDs     UUIDList     `gorm:"type:jsonb;not null"`
	Cota1           bool         `gorm:"not null"`
	Cota2           bool         `gorm:"not null"`
	Cota3           bool         `gorm:"not null"`
	Status          string       `gorm:"type:varchar(20);not null;index"`
	Plan            PlanDocument `gorm:"type:jsonb"`
	FailureReason   string       `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (TaxDeclarationModel) TableName() string {
	return "tax_declarations"
}

// ToDomain converts the persistence model to a domain TaxDeclaration
func (m *TaxDeclarationModel) ToDomain() (*allocation.TaxDeclaration, error) {
	total, err := valueobject.NewMoney(m.TotalMinor, valueobject.Currency(m.Currency))
	if err != nil {
		return nil, err
	}
	decl := &allocation.TaxDeclaration{
		TaxType: allocation.TaxType(m.TaxType),
		CompetencyPeriod: allocation.CompetencyPeriod{
			Start: m.PeriodStart,
			End:   m.PeriodEnd,
		},
		TotalAmount:         total,
		PaymentDate:         m.PaymentDate,
		SelectedPropertyIDs: m.PropertyIDs,
		Cota1:               m.Cota1,
		Cota2:               m.Cota2,
		Cota3:               m.Cota3,
		Status:              allocation.DeclarationStatus(m.Status),
		Plan:                m.Plan.Plan,
		FailureReason:       m.FailureReason,
	}
	m.PopulateAggregateRoot(&decl.BaseAggregateRoot)
	return decl, nil
}

// TaxDeclarationModelFromDomain builds the persistence model from a domain
// TaxDeclaration
func TaxDeclarationModelFromDomain(decl *allocation.TaxDeclaration) *TaxDeclarationModel {
	m := &TaxDeclarationModel{
		TaxType:       decl.TaxType.String(),
		PeriodStart:   decl.CompetencyPeriod.Start,
		PeriodEnd:     decl.CompetencyPeriod.End,
		TotalMinor:    decl.TotalAmount.MinorUnits(),
		Currency:      string(decl.TotalAmount.Currency()),
		PaymentDate:   decl.PaymentDate,
		PropertyIDs:   decl.SelectedPropertyIDs,
		Cota1:         decl.Cota1,
		Cota2:         decl.Cota2,
		Cota3:         decl.Cota3,
		Status:        decl.Status.String(),
		Plan:          PlanDocument{Plan: decl.Plan},
		FailureReason: decl.FailureReason,
	}
	m.FromDomainAggregateRoot(decl.BaseAggregateRoot)
	return m
}

// UUIDList stores a slice of UUIDs as a JSON column
type UUIDList []uuid.UUID

// Value implements driver.Valuer for JSON columns
func (l UUIDList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]uuid.UUID{})
	}
	return json.Marshal([]uuid.UUID(l))
}

// Scan implements sql.Scanner for JSON columns
func (l *UUIDList) Scan(value any) error {
	if value == nil {
		*l = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into UUIDList", value)
	}
	return json.Unmarshal(raw, (*[]uuid.UUID)(l))
}
