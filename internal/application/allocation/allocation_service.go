package allocation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rentbooks/backend/internal/domain/allocation"
	"github.com/rentbooks/backend/internal/domain/shared"
	"github.com/rentbooks/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// AllocationService orchestrates the tax declaration workflow: draft entry,
// plan preview and the one-shot commit that turns a plan into transactions.
type AllocationService struct {
	declarationRepo allocation.TaxDeclarationRepository
	revenueProvider allocation.PropertyRevenueProvider
	txWriter        allocation.TransactionWriter
}

// NewAllocationService creates a new AllocationService
func NewAllocationService(
	declarationRepo allocation.TaxDeclarationRepository,
	revenueProvider allocation.PropertyRevenueProvider,
	txWriter allocation.TransactionWriter,
) *AllocationService {
	return &AllocationService{
		declarationRepo: declarationRepo,
		revenueProvider: revenueProvider,
		txWriter:        txWriter,
	}
}

// ===================== Tax Declaration Operations =====================

// CreateDeclarationRequest represents a request to create a declaration draft
type CreateDeclarationRequest struct {
	TaxType     string      `json:"tax_type" binding:"required"`
	TotalAmount string      `json:"total_amount" binding:"required"`
	Currency    string      `json:"currency" binding:"omitempty,currency"`
	PaymentDate time.Time   `json:"payment_date" binding:"required"`
	PropertyIDs []uuid.UUID `json:"property_ids" binding:"required,min=1"`
	Cota1       bool        `json:"cota1"`
	Cota2       bool        `json:"cota2"`
	Cota3       bool        `json:"cota3"`
}

// UpdateDeclarationRequest represents a request to edit a declaration that
// has not been committed
type UpdateDeclarationRequest struct {
	TaxType     string      `json:"tax_type" binding:"required"`
	TotalAmount string      `json:"total_amount" binding:"required"`
	Currency    string      `json:"currency" binding:"omitempty,currency"`
	PaymentDate time.Time   `json:"payment_date" binding:"required"`
	PropertyIDs []uuid.UUID `json:"property_ids" binding:"required,min=1"`
	Cota1       bool        `json:"cota1"`
	Cota2       bool        `json:"cota2"`
	Cota3       bool        `json:"cota3"`
}

// ShareResponse represents one property's share of an installment
type ShareResponse struct {
	PropertyID uuid.UUID `json:"property_id"`
	Amount     string    `json:"amount"`
}

// InstallmentResponse represents one scheduled installment with its shares
type InstallmentResponse struct {
	Sequence int             `json:"sequence"`
	Amount   string          `json:"amount"`
	DueDate  time.Time       `json:"due_date"`
	Shares   []ShareResponse `json:"shares"`
}

// DeclarationResponse represents a tax declaration in API responses
type DeclarationResponse struct {
	ID               uuid.UUID             `json:"id"`
	TaxType          string                `json:"tax_type"`
	CompetencyPeriod string                `json:"competency_period"`
	TotalAmount      string                `json:"total_amount"`
	Currency         string                `json:"currency"`
	PaymentDate      time.Time             `json:"payment_date"`
	PropertyIDs      []uuid.UUID           `json:"property_ids"`
	Cota1            bool                  `json:"cota1"`
	Cota2            bool                  `json:"cota2"`
	Cota3            bool                  `json:"cota3"`
	Status           string                `json:"status"`
	Plan             []InstallmentResponse `json:"plan,omitempty"`
	FailureReason    string                `json:"failure_reason,omitempty"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
}

// CommitResponse reports the transactions a commit emitted
type CommitResponse struct {
	Declaration    *DeclarationResponse `json:"declaration"`
	TransactionIDs []uuid.UUID          `json:"transaction_ids"`
}

// CreateDeclaration creates a new declaration draft
func (s *AllocationService) CreateDeclaration(ctx context.Context, req CreateDeclarationRequest) (*DeclarationResponse, error) {
	currency := valueobject.Currency(req.Currency)
	if req.Currency == "" {
		currency = valueobject.DefaultCurrency
	}
	total, err := valueobject.ParseMoney(req.TotalAmount, currency)
	if err != nil {
		return nil, err
	}

	decl, err := allocation.NewTaxDeclaration(
		allocation.TaxType(req.TaxType),
		total,
		req.PaymentDate,
		req.PropertyIDs,
		req.Cota1, req.Cota2, req.Cota3,
	)
	if err != nil {
		return nil, err
	}

	if err := s.declarationRepo.Save(ctx, decl); err != nil {
		return nil, err
	}
	return toDeclarationResponse(decl), nil
}

// UpdateDeclaration edits an uncommitted declaration. A previewed
// declaration drops back to draft and loses its plan, so the next preview
// always reflects the edited inputs.
func (s *AllocationService) UpdateDeclaration(ctx context.Context, id uuid.UUID, req UpdateDeclarationRequest) (*DeclarationResponse, error) {
	currency := valueobject.Currency(req.Currency)
	if req.Currency == "" {
		currency = valueobject.DefaultCurrency
	}
	total, err := valueobject.ParseMoney(req.TotalAmount, currency)
	if err != nil {
		return nil, err
	}

	decl, err := s.findDeclaration(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := decl.Update(
		allocation.TaxType(req.TaxType),
		total,
		req.PaymentDate,
		req.PropertyIDs,
		req.Cota1, req.Cota2, req.Cota3,
	); err != nil {
		return nil, err
	}

	if err := s.declarationRepo.Save(ctx, decl); err != nil {
		return nil, err
	}
	return toDeclarationResponse(decl), nil
}

// GetDeclaration gets a declaration by ID
func (s *AllocationService) GetDeclaration(ctx context.Context, id uuid.UUID) (*DeclarationResponse, error) {
	decl, err := s.findDeclaration(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDeclarationResponse(decl), nil
}

// ListDeclarations lists all declarations
func (s *AllocationService) ListDeclarations(ctx context.Context) ([]DeclarationResponse, error) {
	declarations, err := s.declarationRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]DeclarationResponse, len(declarations))
	for i := range declarations {
		responses[i] = *toDeclarationResponse(&declarations[i])
	}
	return responses, nil
}

// PreviewDeclaration computes the full allocation plan for a declaration
// without side effects. Quarterly taxes are scheduled into their selected
// cotas; monthly taxes become a single installment due on the payment date.
// Each installment is distributed proportionally to the properties' revenue
// over the declaration's competency period; the weights are fetched once and
// shared across installments. A plan that cannot be computed moves the
// declaration to FAILED with the reason recorded.
func (s *AllocationService) PreviewDeclaration(ctx context.Context, id uuid.UUID) (*DeclarationResponse, error) {
	decl, err := s.findDeclaration(ctx, id)
	if err != nil {
		return nil, err
	}
	if !decl.Status.CanPreview() {
		return nil, shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Cannot preview declaration in %s status", decl.Status))
	}

	plan, err := s.computePlan(ctx, decl)
	if err != nil {
		if shared.IsDomainError(err) {
			if failErr := decl.MarkFailed(err.Error()); failErr == nil {
				if saveErr := s.declarationRepo.Save(ctx, decl); saveErr != nil {
					return nil, saveErr
				}
			}
		}
		return nil, err
	}

	if err := decl.MarkPreviewed(plan); err != nil {
		return nil, err
	}
	if err := s.declarationRepo.Save(ctx, decl); err != nil {
		return nil, err
	}
	return toDeclarationResponse(decl), nil
}

// CommitDeclaration emits one transaction per (property, installment) pair of
// a previewed plan and transitions the declaration to its terminal state. The
// batch insert is atomic and the transition is one-shot: re-committing an
// already committed declaration is rejected before anything is written.
func (s *AllocationService) CommitDeclaration(ctx context.Context, id uuid.UUID) (*CommitResponse, error) {
	decl, err := s.findDeclaration(ctx, id)
	if err != nil {
		return nil, err
	}
	if decl.IsCommitted() {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Declaration is already committed")
	}
	if !decl.Status.CanCommit() {
		return nil, shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Cannot commit declaration in %s status, must be PREVIEWED", decl.Status))
	}

	transactions := buildTransactions(decl)
	ids, err := s.txWriter.CreateTransactions(ctx, transactions)
	if err != nil {
		return nil, err
	}

	if err := decl.MarkCommitted(); err != nil {
		return nil, err
	}
	if err := s.declarationRepo.Save(ctx, decl); err != nil {
		return nil, err
	}

	return &CommitResponse{
		Declaration:    toDeclarationResponse(decl),
		TransactionIDs: ids,
	}, nil
}

func (s *AllocationService) findDeclaration(ctx context.Context, id uuid.UUID) (*allocation.TaxDeclaration, error) {
	decl, err := s.declarationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if decl == nil {
		return nil, shared.NewDomainError(shared.CodeNotFound, "Declaration not found")
	}
	return decl, nil
}

func (s *AllocationService) computePlan(ctx context.Context, decl *allocation.TaxDeclaration) (*allocation.AllocationPlan, error) {
	var installments []allocation.Installment
	if decl.TaxType.IsQuarterly() {
		scheduled, err := allocation.ScheduleInstallments(
			decl.TotalAmount, decl.Cota1, decl.Cota2, decl.Cota3, decl.PaymentDate)
		if err != nil {
			return nil, err
		}
		installments = scheduled
	} else {
		installments = []allocation.Installment{
			allocation.SingleInstallment(decl.TotalAmount, decl.PaymentDate),
		}
	}

	recipients, err := s.revenueRecipients(ctx, decl.SelectedPropertyIDs, decl.CompetencyPeriod)
	if err != nil {
		return nil, err
	}

	allocations := make([]allocation.InstallmentAllocation, 0, len(installments))
	for _, inst := range installments {
		result, err := allocation.Distribute(allocation.DistributionRequest{
			Total:      inst.Amount,
			Recipients: recipients,
			Method:     allocation.MethodProportional,
		})
		if err != nil {
			return nil, err
		}
		allocations = append(allocations, allocation.InstallmentAllocation{
			Installment:  inst,
			Distribution: *result,
		})
	}
	return &allocation.AllocationPlan{Allocations: allocations}, nil
}

// revenueRecipients fetches each property's competency-period revenue once
// and turns it into distribution weights. Negative revenue clamps to zero so
// a loss-making property simply receives no proportional share.
func (s *AllocationService) revenueRecipients(
	ctx context.Context,
	propertyIDs []uuid.UUID,
	period allocation.CompetencyPeriod,
) ([]allocation.Recipient, error) {
	recipients := make([]allocation.Recipient, 0, len(propertyIDs))
	for _, propertyID := range propertyIDs {
		revenue, err := s.revenueProvider.GetPropertyRevenue(ctx, propertyID, period)
		if err != nil {
			return nil, err
		}
		weight := decimal.NewFromInt(revenue.MinorUnits())
		if weight.IsNegative() {
			weight = decimal.Zero
		}
		recipients = append(recipients, allocation.Recipient{
			PropertyID: propertyID,
			Weight:     weight,
		})
	}
	return recipients, nil
}

func buildTransactions(decl *allocation.TaxDeclaration) []allocation.NewTransaction {
	transactions := make([]allocation.NewTransaction, 0, decl.Plan.TransactionCount())
	for _, alloc := range decl.Plan.Allocations {
		for _, share := range alloc.Distribution.Shares {
			transactions = append(transactions, allocation.NewTransaction{
				PropertyID:  share.PropertyID,
				Amount:      share.Amount,
				Date:        alloc.Installment.DueDate,
				Category:    "TAX_" + decl.TaxType.String(),
				Description: fmt.Sprintf("%s %s cota %d", decl.TaxType, decl.CompetencyPeriod, alloc.Installment.Sequence),
			})
		}
	}
	return transactions
}

func toDeclarationResponse(decl *allocation.TaxDeclaration) *DeclarationResponse {
	resp := &DeclarationResponse{
		ID:               decl.ID,
		TaxType:          decl.TaxType.String(),
		CompetencyPeriod: decl.CompetencyPeriod.String(),
		TotalAmount:      decl.TotalAmount.DecimalString(),
		Currency:         string(decl.TotalAmount.Currency()),
		PaymentDate:      decl.PaymentDate,
		PropertyIDs:      decl.SelectedPropertyIDs,
		Cota1:            decl.Cota1,
		Cota2:            decl.Cota2,
		Cota3:            decl.Cota3,
		Status:           decl.Status.String(),
		FailureReason:    decl.FailureReason,
		CreatedAt:        decl.CreatedAt,
		UpdatedAt:        decl.UpdatedAt,
	}
	if decl.Plan != nil {
		resp.Plan = make([]InstallmentResponse, 0, len(decl.Plan.Allocations))
		for _, alloc := range decl.Plan.Allocations {
			shares := make([]ShareResponse, len(alloc.Distribution.Shares))
			for i, share := range alloc.Distribution.Shares {
				shares[i] = ShareResponse{
					PropertyID: share.PropertyID,
					Amount:     share.Amount.DecimalString(),
				}
			}
			resp.Plan = append(resp.Plan, InstallmentResponse{
				Sequence: alloc.Installment.Sequence,
				Amount:   alloc.Installment.Amount.DecimalString(),
				DueDate:  alloc.Installment.DueDate,
				Shares:   shares,
			})
		}
	}
	return resp
}
