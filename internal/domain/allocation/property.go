package allocation

import (
	"strings"

	"github.com/rentbooks/backend/internal/domain/shared"
)

// Property is a rental unit that participates in distributions. It is a thin
// aggregate: the interesting behavior lives in the calculator and the
// declaration workflow, properties mostly anchor revenue and transactions.
type Property struct {
	shared.BaseAggregateRoot
	Code   string
	Name   string
	Active bool
}

// NewProperty creates a new active property
func NewProperty(code, name string) (*Property, error) {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	if code == "" {
		return nil, shared.NewValidationError("property code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewValidationError("property name cannot be empty")
	}
	return &Property{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		Active:            true,
	}, nil
}

// Deactivate removes the property from future selections without touching
// its transaction history
func (p *Property) Deactivate() {
	p.Active = false
}
