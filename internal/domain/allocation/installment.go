package allocation

import (
	"time"

	"github.com/rentbooks/backend/internal/domain/shared"
	"github.com/rentbooks/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// lateCotaSurchargePercent is the surcharge applied to the second and third
// cotas of a quarterly tax, additive on top of the declared total.
var lateCotaSurchargePercent = decimal.NewFromInt(1)

// Installment is one scheduled cota of a quarterly tax payment
type Installment struct {
	Sequence int               `json:"sequence"`
	Amount   valueobject.Money `json:"amount"`
	DueDate  time.Time         `json:"due_date"`
}

// ScheduleInstallments computes the cota amounts and due dates for a
// quarterly tax declaration.
//
// The total is divided by the number of selected cotas with integer-safe
// division; the leftover minor units go to the first selected cota (the
// anchor). Cotas 2 and 3 carry a 1% surcharge on their base amount, rounded
// half-up to the minor unit. Cota k falls due in paymentDate's month plus
// (k-1), on paymentDate's day-of-month clipped to the target month.
func ScheduleInstallments(total valueobject.Money, cota1, cota2, cota3 bool, paymentDate time.Time) ([]Installment, error) {
	selected := make([]int, 0, 3)
	for seq, on := range []bool{cota1, cota2, cota3} {
		if on {
			selected = append(selected, seq+1)
		}
	}
	if len(selected) == 0 {
		return nil, shared.NewValidationError("at least one cota must be selected")
	}

	if total.IsNegative() {
		return nil, shared.NewValidationError("total cannot be negative")
	}

	base, remainder, err := total.Divide(len(selected))
	if err != nil {
		return nil, err
	}

	installments := make([]Installment, 0, len(selected))
	for i, seq := range selected {
		amount := base
		if i == 0 {
			// The anchor absorbs the division remainder.
			extra, err := valueobject.NewMoney(remainder, total.Currency())
			if err != nil {
				return nil, err
			}
			amount = amount.MustAdd(extra)
		}
		if seq > 1 {
			amount = amount.MustAdd(amount.Percent(lateCotaSurchargePercent))
		}
		installments = append(installments, Installment{
			Sequence: seq,
			Amount:   amount,
			DueDate:  addMonthsClipped(paymentDate, seq-1),
		})
	}
	return installments, nil
}

// SingleInstallment wraps a monthly tax total (PIS/COFINS) in the same plan
// shape as a quarterly schedule: one cota, no surcharge, due on the payment
// date itself.
func SingleInstallment(total valueobject.Money, paymentDate time.Time) Installment {
	return Installment{Sequence: 1, Amount: total, DueDate: paymentDate}
}

// addMonthsClipped shifts a date forward by whole months, keeping the
// day-of-month but clipping it to the target month's last day (day 31 in a
// 30-day month becomes day 30). time.AddDate alone would overflow into the
// following month instead.
func addMonthsClipped(date time.Time, months int) time.Time {
	firstOfTarget := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location()).
		AddDate(0, months, 0)
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	day := date.Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, 0, 0, 0, 0, date.Location())
}
