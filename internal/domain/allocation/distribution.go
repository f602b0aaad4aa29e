package allocation

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rentbooks/backend/internal/domain/shared"
	"github.com/rentbooks/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// DistributionMethod selects how a total is split across recipients
type DistributionMethod string

const (
	// MethodEqual splits the total into equal shares
	MethodEqual DistributionMethod = "EQUAL"
	// MethodProportional splits the total proportionally to each
	// recipient's weight (typically its competency-period revenue)
	MethodProportional DistributionMethod = "PROPORTIONAL"
)

// IsValid checks if the method is a supported DistributionMethod
func (m DistributionMethod) IsValid() bool {
	return m == MethodEqual || m == MethodProportional
}

// Recipient is a property eligible to receive a share of a distribution.
// Weight must be non-negative; a zero-weight recipient still takes part in
// an equal split but receives nothing under a proportional one.
type Recipient struct {
	PropertyID uuid.UUID
	Weight     decimal.Decimal
}

// DistributionRequest describes a monetary split to compute
type DistributionRequest struct {
	Total      valueobject.Money
	Recipients []Recipient
	Method     DistributionMethod
}

// Share is one recipient's computed portion of the total
type Share struct {
	PropertyID uuid.UUID         `json:"property_id"`
	Amount     valueobject.Money `json:"amount"`
}

// DistributionResult holds the computed shares. Invariant: the shares sum
// exactly to the request total and appear in the request's recipient order.
type DistributionResult struct {
	Shares []Share `json:"shares"`
}

// Total sums the shares. The sum always equals the request total; the
// method exists so callers and tests can assert the invariant cheaply.
func (r *DistributionResult) Total(currency valueobject.Currency) valueobject.Money {
	total := valueobject.Zero(currency)
	for _, s := range r.Shares {
		total = total.MustAdd(s.Amount)
	}
	return total
}

// Distribute splits the request total across its recipients using the
// largest-remainder method. All arithmetic stays in integer minor units:
// each ideal share is truncated independently and the leftover minor units
// are handed out one by one to the first recipients in stable input order.
// The result is deterministic and reconciles to the total exactly.
func Distribute(req DistributionRequest) (*DistributionResult, error) {
	if len(req.Recipients) == 0 {
		return nil, shared.NewValidationError("recipient list cannot be empty")
	}
	if req.Total.IsNegative() {
		return nil, shared.NewValidationError("total cannot be negative")
	}
	if !req.Method.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("unknown distribution method: %q", req.Method))
	}
	for _, r := range req.Recipients {
		if r.Weight.IsNegative() {
			return nil, shared.NewValidationError(
				fmt.Sprintf("recipient %s has negative weight", r.PropertyID))
		}
	}

	currency := req.Total.Currency()
	n := len(req.Recipients)

	// A sole recipient takes the whole total regardless of method or weight.
	if n == 1 {
		return &DistributionResult{Shares: []Share{{
			PropertyID: req.Recipients[0].PropertyID,
			Amount:     req.Total,
		}}}, nil
	}

	shares := make([]Share, n)
	var remainder int64

	switch req.Method {
	case MethodEqual:
		quotient, rem, err := req.Total.Divide(n)
		if err != nil {
			return nil, err
		}
		for i, r := range req.Recipients {
			shares[i] = Share{PropertyID: r.PropertyID, Amount: quotient}
		}
		remainder = rem

	case MethodProportional:
		weightSum := decimal.Zero
		for _, r := range req.Recipients {
			weightSum = weightSum.Add(r.Weight)
		}
		if weightSum.IsZero() {
			return nil, shared.NewInsufficientDataError(
				"cannot distribute proportionally: total weight is zero")
		}

		totalMinor := decimal.NewFromInt(req.Total.MinorUnits())
		var allocated int64
		for i, r := range req.Recipients {
			// floor(total * weight / weightSum), computed independently
			// per recipient so no fractional value is ever accumulated.
			ideal, _ := totalMinor.Mul(r.Weight).QuoRem(weightSum, 0)
			minor := ideal.IntPart()
			amount, err := valueobject.NewMoney(minor, currency)
			if err != nil {
				return nil, err
			}
			shares[i] = Share{PropertyID: r.PropertyID, Amount: amount}
			allocated += minor
		}
		remainder = req.Total.MinorUnits() - allocated
	}

	// Hand out the leftover minor units to the first recipients in input
	// order. remainder < n always holds for valid inputs.
	oneCent, err := valueobject.NewMoney(1, currency)
	if err != nil {
		return nil, err
	}
	for i := int64(0); i < remainder; i++ {
		shares[i].Amount = shares[i].Amount.MustAdd(oneCent)
	}

	result := &DistributionResult{Shares: shares}
	if !result.Total(currency).Equals(req.Total) {
		return nil, shared.NewReconciliationError(fmt.Sprintf(
			"computed shares sum to %s, expected %s",
			result.Total(currency), req.Total))
	}
	return result, nil
}
