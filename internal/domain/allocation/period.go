package allocation

import (
	"fmt"
	"time"

	"github.com/rentbooks/backend/internal/domain/shared"
)

// TaxType identifies the federal taxes the rateio supports
type TaxType string

const (
	TaxPIS    TaxType = "PIS"
	TaxCOFINS TaxType = "COFINS"
	TaxCSLL   TaxType = "CSLL"
	TaxIRPJ   TaxType = "IRPJ"
)

// IsValid checks if the tax type is supported
func (t TaxType) IsValid() bool {
	switch t {
	case TaxPIS, TaxCOFINS, TaxCSLL, TaxIRPJ:
		return true
	}
	return false
}

// IsQuarterly returns true for taxes declared per calendar quarter and
// payable in up to three cotas (CSLL and IRPJ)
func (t TaxType) IsQuarterly() bool {
	return t == TaxCSLL || t == TaxIRPJ
}

// String returns the string representation of TaxType
func (t TaxType) String() string {
	return string(t)
}

// CompetencyPeriod is the revenue-measurement window used to weight each
// property's share of a declaration. Start and End are inclusive dates.
type CompetencyPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether the given date falls inside the period
func (p CompetencyPeriod) Contains(date time.Time) bool {
	return !date.Before(p.Start) && !date.After(p.End)
}

// String returns a compact representation, e.g. "2025-04-01..2025-06-30"
func (p CompetencyPeriod) String() string {
	return fmt.Sprintf("%s..%s", p.Start.Format("2006-01-02"), p.End.Format("2006-01-02"))
}

// PreviousMonth returns the full calendar month immediately preceding the
// month containing date.
func PreviousMonth(date time.Time) CompetencyPeriod {
	firstOfMonth := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
	start := firstOfMonth.AddDate(0, -1, 0)
	end := firstOfMonth.AddDate(0, 0, -1)
	return CompetencyPeriod{Start: start, End: end}
}

// PreviousQuarter returns the full calendar quarter immediately preceding
// the quarter containing date. Quarter boundaries are fixed (Q1=Jan-Mar,
// Q2=Apr-Jun, Q3=Jul-Sep, Q4=Oct-Dec); a date in Q1 rolls back to Q4 of
// the previous year.
func PreviousQuarter(date time.Time) CompetencyPeriod {
	quarter := (int(date.Month()) - 1) / 3 // 0-based quarter of the payment date
	year := date.Year()
	quarter--
	if quarter < 0 {
		quarter = 3
		year--
	}
	startMonth := time.Month(quarter*3 + 1)
	start := time.Date(year, startMonth, 1, 0, 0, 0, 0, date.Location())
	end := start.AddDate(0, 3, -1)
	return CompetencyPeriod{Start: start, End: end}
}

// ResolveCompetencyPeriod maps a payment date and tax type to the revenue
// attribution window: the previous calendar month for the monthly taxes
// (PIS/COFINS), the previous calendar quarter for the quarterly ones
// (CSLL/IRPJ).
func ResolveCompetencyPeriod(taxType TaxType, paymentDate time.Time) (CompetencyPeriod, error) {
	if !taxType.IsValid() {
		return CompetencyPeriod{}, shared.NewValidationError(
			fmt.Sprintf("unknown tax type: %q", taxType))
	}
	if taxType.IsQuarterly() {
		return PreviousQuarter(paymentDate), nil
	}
	return PreviousMonth(paymentDate), nil
}
