package allocation

import (
	"testing"
	"time"

	"github.com/rentbooks/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleInstallments(t *testing.T) {
	paymentDate := date(2025, time.April, 30)

	t.Run("three cotas with surcharge", func(t *testing.T) {
		// IRPJ R$ 3.000,00 with all cotas: 1.000,00 / 1.010,00 / 1.010,00
		installments, err := ScheduleInstallments(
			valueobject.NewMoneyBRL(300000), true, true, true, paymentDate)
		require.NoError(t, err)
		require.Len(t, installments, 3)

		assert.Equal(t, 1, installments[0].Sequence)
		assert.Equal(t, int64(100000), installments[0].Amount.MinorUnits())
		assert.Equal(t, 2, installments[1].Sequence)
		assert.Equal(t, int64(101000), installments[1].Amount.MinorUnits())
		assert.Equal(t, 3, installments[2].Sequence)
		assert.Equal(t, int64(101000), installments[2].Amount.MinorUnits())
	})

	t.Run("surcharge is additive on top of the total", func(t *testing.T) {
		total := valueobject.NewMoneyBRL(300000)
		installments, err := ScheduleInstallments(total, true, true, true, paymentDate)
		require.NoError(t, err)

		sum := valueobject.ZeroBRL()
		for _, inst := range installments {
			sum = sum.MustAdd(inst.Amount)
		}
		base, _, err := total.Divide(3)
		require.NoError(t, err)
		surcharge := base.Percent(lateCotaSurchargePercent).MultiplyByInt(2)
		assert.Equal(t, total.MustAdd(surcharge).MinorUnits(), sum.MinorUnits())
	})

	t.Run("first selected cota absorbs the division remainder", func(t *testing.T) {
		// R$ 1.000,01 across three cotas: base 333,33 with 2 cents over
		installments, err := ScheduleInstallments(
			valueobject.NewMoneyBRL(100001), true, true, true, paymentDate)
		require.NoError(t, err)
		assert.Equal(t, int64(33335), installments[0].Amount.MinorUnits())
		// 1% of 333,33 = 3,3333 -> rounds to 3,33
		assert.Equal(t, int64(33666), installments[1].Amount.MinorUnits())
		assert.Equal(t, int64(33666), installments[2].Amount.MinorUnits())
	})

	t.Run("single cota has no surcharge", func(t *testing.T) {
		installments, err := ScheduleInstallments(
			valueobject.NewMoneyBRL(300000), true, false, false, paymentDate)
		require.NoError(t, err)
		require.Len(t, installments, 1)
		assert.Equal(t, int64(300000), installments[0].Amount.MinorUnits())
	})

	t.Run("later cotas only", func(t *testing.T) {
		installments, err := ScheduleInstallments(
			valueobject.NewMoneyBRL(200000), false, true, true, paymentDate)
		require.NoError(t, err)
		require.Len(t, installments, 2)
		assert.Equal(t, 2, installments[0].Sequence)
		assert.Equal(t, 3, installments[1].Sequence)
		// both carry the 1% surcharge on their own base
		assert.Equal(t, int64(101000), installments[0].Amount.MinorUnits())
		assert.Equal(t, int64(101000), installments[1].Amount.MinorUnits())
	})

	t.Run("no cota selected rejected", func(t *testing.T) {
		_, err := ScheduleInstallments(
			valueobject.NewMoneyBRL(100), false, false, false, paymentDate)
		assert.Error(t, err)
	})

	t.Run("negative total rejected", func(t *testing.T) {
		_, err := ScheduleInstallments(
			valueobject.NewMoneyBRL(-100), true, false, false, paymentDate)
		assert.Error(t, err)
	})
}

func TestScheduleInstallmentDueDates(t *testing.T) {
	t.Run("due dates advance one month per cota", func(t *testing.T) {
		installments, err := ScheduleInstallments(
			valueobject.NewMoneyBRL(300000), true, true, true, date(2025, time.April, 15))
		require.NoError(t, err)
		assert.Equal(t, date(2025, time.April, 15), installments[0].DueDate)
		assert.Equal(t, date(2025, time.May, 15), installments[1].DueDate)
		assert.Equal(t, date(2025, time.June, 15), installments[2].DueDate)
	})

	t.Run("day of month clips to shorter target months", func(t *testing.T) {
		// Jan 31 -> Feb 28 -> Mar 31
		installments, err := ScheduleInstallments(
			valueobject.NewMoneyBRL(300000), true, true, true, date(2025, time.January, 31))
		require.NoError(t, err)
		assert.Equal(t, date(2025, time.January, 31), installments[0].DueDate)
		assert.Equal(t, date(2025, time.February, 28), installments[1].DueDate)
		assert.Equal(t, date(2025, time.March, 31), installments[2].DueDate)
	})

	t.Run("clips to leap day in february", func(t *testing.T) {
		installments, err := ScheduleInstallments(
			valueobject.NewMoneyBRL(100000), false, true, false, date(2024, time.January, 30))
		require.NoError(t, err)
		assert.Equal(t, date(2024, time.February, 29), installments[0].DueDate)
	})
}

func TestSingleInstallment(t *testing.T) {
	total := valueobject.NewMoneyBRL(54321)
	paymentDate := date(2025, time.March, 20)
	inst := SingleInstallment(total, paymentDate)
	assert.Equal(t, 1, inst.Sequence)
	assert.True(t, inst.Amount.Equals(total))
	assert.Equal(t, paymentDate, inst.DueDate)
}
