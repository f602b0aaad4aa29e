package allocation

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rentbooks/backend/internal/domain/shared"
	"github.com/rentbooks/backend/internal/domain/shared/valueobject"
)

// DeclarationStatus represents the workflow state of a tax declaration
type DeclarationStatus string

const (
	DeclarationStatusDraft     DeclarationStatus = "DRAFT"     // Entered, nothing computed yet
	DeclarationStatusPreviewed DeclarationStatus = "PREVIEWED" // Plan computed, no side effects
	DeclarationStatusCommitted DeclarationStatus = "COMMITTED" // Transactions emitted (terminal)
	DeclarationStatusFailed    DeclarationStatus = "FAILED"    // Validation failed
)

// IsValid checks if the status is a valid DeclarationStatus
func (s DeclarationStatus) IsValid() bool {
	switch s {
	case DeclarationStatusDraft, DeclarationStatusPreviewed,
		DeclarationStatusCommitted, DeclarationStatusFailed:
		return true
	}
	return false
}

// String returns the string representation of DeclarationStatus
func (s DeclarationStatus) String() string {
	return string(s)
}

// CanPreview returns true if a plan may be computed in this state
func (s DeclarationStatus) CanPreview() bool {
	return s == DeclarationStatusDraft || s == DeclarationStatusPreviewed
}

// CanCommit returns true if the declaration may be committed
func (s DeclarationStatus) CanCommit() bool {
	return s == DeclarationStatusPreviewed
}

// InstallmentAllocation pairs one installment with its per-property
// distribution
type InstallmentAllocation struct {
	Installment  Installment        `json:"installment"`
	Distribution DistributionResult `json:"distribution"`
}

// AllocationPlan is the fully computed preview of a declaration: every
// installment with every property's share. Commit emits exactly one
// transaction per (share, installment) pair.
type AllocationPlan struct {
	Allocations []InstallmentAllocation `json:"allocations"`
}

// TransactionCount returns how many transaction-creation commands a commit
// of this plan will emit
func (p *AllocationPlan) TransactionCount() int {
	count := 0
	for _, a := range p.Allocations {
		count += len(a.Distribution.Shares)
	}
	return count
}

// TaxDeclaration is the aggregate root for one tax rateio. Its lifecycle is
// Draft -> Previewed -> Committed, with Previewed -> Draft on edit and
// Draft/Previewed -> Failed on validation errors. Committed is terminal and
// one-shot: a second commit on the same declaration is rejected.
type TaxDeclaration struct {
	shared.BaseAggregateRoot
	TaxType             TaxType
	CompetencyPeriod    CompetencyPeriod
	TotalAmount         valueobject.Money
	PaymentDate         time.Time
	SelectedPropertyIDs []uuid.UUID
	Cota1               bool
	Cota2               bool
	Cota3               bool
	Status              DeclarationStatus
	Plan                *AllocationPlan
	FailureReason       string
}

// NewTaxDeclaration creates a draft declaration. The competency period is
// resolved from the payment date at construction so that edits to the
// payment date always re-resolve it.
func NewTaxDeclaration(
	taxType TaxType,
	totalAmount valueobject.Money,
	paymentDate time.Time,
	selectedPropertyIDs []uuid.UUID,
	cota1, cota2, cota3 bool,
) (*TaxDeclaration, error) {
	if !taxType.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("unknown tax type: %q", taxType))
	}
	if len(selectedPropertyIDs) == 0 {
		return nil, shared.NewValidationError("at least one property must be selected")
	}
	if totalAmount.IsNegative() {
		return nil, shared.NewValidationError("total amount cannot be negative")
	}

	period, err := ResolveCompetencyPeriod(taxType, paymentDate)
	if err != nil {
		return nil, err
	}

	// Monthly taxes are always single-installment; the cota flags only
	// apply to CSLL/IRPJ.
	if !taxType.IsQuarterly() {
		cota1, cota2, cota3 = false, false, false
	}

	decl := &TaxDeclaration{
		BaseAggregateRoot:   shared.NewBaseAggregateRoot(),
		TaxType:             taxType,
		CompetencyPeriod:    period,
		TotalAmount:         totalAmount,
		PaymentDate:         paymentDate,
		SelectedPropertyIDs: selectedPropertyIDs,
		Cota1:               cota1,
		Cota2:               cota2,
		Cota3:               cota3,
		Status:              DeclarationStatusDraft,
	}
	decl.AddDomainEvent(NewTaxDeclarationCreatedEvent(decl))
	return decl, nil
}

// SelectedCotaCount returns how many cotas the declaration pays in
func (d *TaxDeclaration) SelectedCotaCount() int {
	count := 0
	for _, on := range []bool{d.Cota1, d.Cota2, d.Cota3} {
		if on {
			count++
		}
	}
	return count
}

// MarkPreviewed records a fully computed allocation plan. Allowed from
// Draft and from Previewed (a re-preview replaces the previous plan).
func (d *TaxDeclaration) MarkPreviewed(plan *AllocationPlan) error {
	if !d.Status.CanPreview() {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Cannot preview declaration in %s status", d.Status))
	}
	if plan == nil || len(plan.Allocations) == 0 {
		return shared.NewValidationError("allocation plan cannot be empty")
	}
	d.Status = DeclarationStatusPreviewed
	d.Plan = plan
	d.FailureReason = ""
	d.UpdatedAt = time.Now()
	d.AddDomainEvent(NewTaxDeclarationPreviewedEvent(d))
	return nil
}

// Update applies edited inputs to a declaration that has not been
// committed. A previewed declaration returns to draft and its plan is
// discarded; a failed one gets a fresh start. The competency period is
// re-resolved from the new payment date.
func (d *TaxDeclaration) Update(
	taxType TaxType,
	totalAmount valueobject.Money,
	paymentDate time.Time,
	selectedPropertyIDs []uuid.UUID,
	cota1, cota2, cota3 bool,
) error {
	if d.Status == DeclarationStatusCommitted {
		return shared.NewDomainError(shared.CodeInvalidState, "Cannot edit a committed declaration")
	}
	if !taxType.IsValid() {
		return shared.NewValidationError(fmt.Sprintf("unknown tax type: %q", taxType))
	}
	if len(selectedPropertyIDs) == 0 {
		return shared.NewValidationError("at least one property must be selected")
	}
	if totalAmount.IsNegative() {
		return shared.NewValidationError("total amount cannot be negative")
	}

	period, err := ResolveCompetencyPeriod(taxType, paymentDate)
	if err != nil {
		return err
	}

	if d.Status == DeclarationStatusPreviewed {
		if err := d.ReturnToDraft(); err != nil {
			return err
		}
	} else {
		d.Status = DeclarationStatusDraft
		d.Plan = nil
	}

	if !taxType.IsQuarterly() {
		cota1, cota2, cota3 = false, false, false
	}

	d.TaxType = taxType
	d.CompetencyPeriod = period
	d.TotalAmount = totalAmount
	d.PaymentDate = paymentDate
	d.SelectedPropertyIDs = selectedPropertyIDs
	d.Cota1 = cota1
	d.Cota2 = cota2
	d.Cota3 = cota3
	d.FailureReason = ""
	d.UpdatedAt = time.Now()
	return nil
}

// ReturnToDraft discards the computed plan after an edit
func (d *TaxDeclaration) ReturnToDraft() error {
	if d.Status != DeclarationStatusPreviewed {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Cannot return declaration in %s status to draft", d.Status))
	}
	d.Status = DeclarationStatusDraft
	d.Plan = nil
	d.UpdatedAt = time.Now()
	return nil
}

// MarkCommitted transitions to the terminal Committed state. The transition
// is one-shot: committing an already-committed declaration is rejected.
func (d *TaxDeclaration) MarkCommitted() error {
	if d.Status == DeclarationStatusCommitted {
		return shared.NewDomainError(shared.CodeInvalidState, "Declaration is already committed")
	}
	if !d.Status.CanCommit() {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Cannot commit declaration in %s status, must be PREVIEWED", d.Status))
	}
	d.Status = DeclarationStatusCommitted
	d.UpdatedAt = time.Now()
	d.AddDomainEvent(NewTaxDeclarationCommittedEvent(d))
	return nil
}

// MarkFailed records a validation failure from the calculator or scheduler
func (d *TaxDeclaration) MarkFailed(reason string) error {
	if d.Status == DeclarationStatusCommitted {
		return shared.NewDomainError(shared.CodeInvalidState,
			"Cannot fail a committed declaration")
	}
	d.Status = DeclarationStatusFailed
	d.Plan = nil
	d.FailureReason = reason
	d.UpdatedAt = time.Now()
	return nil
}

// IsCommitted returns true if the declaration has been committed
func (d *TaxDeclaration) IsCommitted() bool {
	return d.Status == DeclarationStatusCommitted
}
