package allocation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rentbooks/backend/internal/domain/allocation"
	"github.com/rentbooks/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ExpenseSplitService splits a composite expense (condominium bill, shared
// management fee) across properties with the same exact-reconciliation
// calculator the tax workflow uses. Preview is stateless; commit writes the
// per-property transactions in one batch.
type ExpenseSplitService struct {
	revenueProvider allocation.PropertyRevenueProvider
	txWriter        allocation.TransactionWriter
}

// NewExpenseSplitService creates a new ExpenseSplitService
func NewExpenseSplitService(
	revenueProvider allocation.PropertyRevenueProvider,
	txWriter allocation.TransactionWriter,
) *ExpenseSplitService {
	return &ExpenseSplitService{
		revenueProvider: revenueProvider,
		txWriter:        txWriter,
	}
}

// ExpenseSplitRequest represents a request to split one expense across
// properties. Proportional splits weight by each property's revenue in the
// month before the expense date.
type ExpenseSplitRequest struct {
	TotalAmount string      `json:"total_amount" binding:"required"`
	Currency    string      `json:"currency" binding:"omitempty,currency"`
	Method      string      `json:"method" binding:"required,oneof=EQUAL PROPORTIONAL"`
	ExpenseDate time.Time   `json:"expense_date" binding:"required"`
	PropertyIDs []uuid.UUID `json:"property_ids" binding:"required,min=1"`
	Category    string      `json:"category" binding:"required"`
	Description string      `json:"description"`
}

// ExpenseSplitResponse represents a computed expense split
type ExpenseSplitResponse struct {
	TotalAmount    string          `json:"total_amount"`
	Currency       string          `json:"currency"`
	Method         string          `json:"method"`
	RevenuePeriod  string          `json:"revenue_period,omitempty"`
	Shares         []ShareResponse `json:"shares"`
	TransactionIDs []uuid.UUID     `json:"transaction_ids,omitempty"`
}

// PreviewExpenseSplit computes the per-property shares without side effects
func (s *ExpenseSplitService) PreviewExpenseSplit(ctx context.Context, req ExpenseSplitRequest) (*ExpenseSplitResponse, error) {
	total, result, period, err := s.split(ctx, req)
	if err != nil {
		return nil, err
	}
	return toExpenseSplitResponse(total, req.Method, period, result, nil), nil
}

// CommitExpenseSplit computes the split and writes one transaction per
// property in a single atomic batch
func (s *ExpenseSplitService) CommitExpenseSplit(ctx context.Context, req ExpenseSplitRequest) (*ExpenseSplitResponse, error) {
	total, result, period, err := s.split(ctx, req)
	if err != nil {
		return nil, err
	}

	transactions := make([]allocation.NewTransaction, len(result.Shares))
	for i, share := range result.Shares {
		transactions[i] = allocation.NewTransaction{
			PropertyID:  share.PropertyID,
			Amount:      share.Amount,
			Date:        req.ExpenseDate,
			Category:    req.Category,
			Description: req.Description,
		}
	}
	ids, err := s.txWriter.CreateTransactions(ctx, transactions)
	if err != nil {
		return nil, err
	}
	return toExpenseSplitResponse(total, req.Method, period, result, ids), nil
}

func (s *ExpenseSplitService) split(ctx context.Context, req ExpenseSplitRequest) (valueobject.Money, *allocation.DistributionResult, string, error) {
	currency := valueobject.Currency(req.Currency)
	if req.Currency == "" {
		currency = valueobject.DefaultCurrency
	}
	total, err := valueobject.ParseMoney(req.TotalAmount, currency)
	if err != nil {
		return valueobject.Money{}, nil, "", err
	}

	method := allocation.DistributionMethod(req.Method)
	recipients := make([]allocation.Recipient, len(req.PropertyIDs))
	periodLabel := ""

	if method == allocation.MethodProportional {
		period := allocation.PreviousMonth(req.ExpenseDate)
		periodLabel = period.String()
		for i, propertyID := range req.PropertyIDs {
			revenue, err := s.revenueProvider.GetPropertyRevenue(ctx, propertyID, period)
			if err != nil {
				return valueobject.Money{}, nil, "", err
			}
			weight := decimal.NewFromInt(revenue.MinorUnits())
			if weight.IsNegative() {
				weight = decimal.Zero
			}
			recipients[i] = allocation.Recipient{PropertyID: propertyID, Weight: weight}
		}
	} else {
		for i, propertyID := range req.PropertyIDs {
			recipients[i] = allocation.Recipient{PropertyID: propertyID}
		}
	}

	result, err := allocation.Distribute(allocation.DistributionRequest{
		Total:      total,
		Recipients: recipients,
		Method:     method,
	})
	if err != nil {
		return valueobject.Money{}, nil, "", err
	}
	return total, result, periodLabel, nil
}

func toExpenseSplitResponse(
	total valueobject.Money,
	method, period string,
	result *allocation.DistributionResult,
	transactionIDs []uuid.UUID,
) *ExpenseSplitResponse {
	shares := make([]ShareResponse, len(result.Shares))
	for i, share := range result.Shares {
		shares[i] = ShareResponse{
			PropertyID: share.PropertyID,
			Amount:     share.Amount.DecimalString(),
		}
	}
	return &ExpenseSplitResponse{
		TotalAmount:    total.DecimalString(),
		Currency:       string(total.Currency()),
		Method:         method,
		RevenuePeriod:  period,
		Shares:         shares,
		TransactionIDs: transactionIDs,
	}
}
