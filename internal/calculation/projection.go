package calculation

import (
	"github.com/rgehrsitz/firesim/internal/domain"
	"github.com/rgehrsitz/firesim/internal/sequencing"
	"github.com/shopspring/decimal"
)

// projectYear advances the run by one year and returns its record.
// Order matters: growth, schedule, reinvestment, expense waterfall, tax, tax waterfall.
func (ce *CalculationEngine) projectYear(run *runState, year int) (domain.YearRecord, error) {
	p := run.params
	portfolio := run.portfolio

	portfolio.GrowAll()

	rate := portfolio.Converter.Rate(year)
	expenses := run.scheduler.ForYear(year)

	if err := portfolio.Reinvest(p.Reinvestment.TargetBucket, p.Reinvestment.Annual()); err != nil {
		return domain.YearRecord{}, err
	}

	required := decimal.Max(expenses.TotalExpenses.Sub(expenses.RentalIncome), decimal.Zero)
	available := portfolio.AvailableForWithdrawal(year)
	maxWithdrawable := decimal.Max(available.Sub(p.Buffer), decimal.Zero)

	actual := decimal.Min(required, maxWithdrawable)
	shortfall := required.Sub(actual)

	waterfall, err := sequencing.CreateWaterfall(portfolio.Buckets, run.order, year, p.LockedReleaseToWaterfall)
	if err != nil {
		return domain.YearRecord{}, err
	}
	breakdown := domain.NewWithdrawalBreakdown(run.columns)
	expensePlan := waterfall.Draw(actual, rate, &breakdown)

	taxable := expenses.RentalIncome.Add(actual)
	taxDue := run.taxCalc.CalculateTax(taxable)
	taxCapacity := decimal.Max(maxWithdrawable.Sub(actual), decimal.Zero)
	taxPaid := decimal.Min(taxDue, taxCapacity)
	taxPlan := waterfall.Draw(taxPaid, rate, &breakdown)

	unfunded := expensePlan.RemainingNeed.Add(taxPlan.RemainingNeed)
	if unfunded.IsPositive() {
		ce.logger().Warnf("year %d: %s counted as withdrawable but no bucket in the withdrawal order could supply it",
			year, unfunded.StringFixed(2))
	}

	ending := portfolio.TotalValue(year)
	if ce.Debug {
		ce.logger().Debugf("year %d age %d: expenses=%s rental=%s withdrawn=%s tax=%s ending=%s",
			year, p.StartAge+(year-p.StartYear), expenses.TotalExpenses.StringFixed(0), expenses.RentalIncome.StringFixed(0),
			actual.StringFixed(0), taxPaid.StringFixed(0), ending.StringFixed(0))
	}

	return domain.YearRecord{
		Year:         year,
		Age:          p.StartAge + (year - p.StartYear),
		ExchangeRate: rate,

		RentalIncome:  expenses.RentalIncome,
		Living:        expenses.Living,
		Travel:        expenses.Travel,
		Insurance:     expenses.Insurance,
		HouseRepair:   expenses.HouseRepair,
		OneTimeTotal:  expenses.OneTimeTotal,
		TotalExpenses: expenses.TotalExpenses,

		RequiredWithdrawal: required,
		ActualWithdrawal:   actual,
		Shortfall:          shortfall,
		TaxableIncome:      taxable,
		TaxDue:             taxDue,
		TaxPaid:            taxPaid,

		Withdrawals:        breakdown,
		UnfundedWithdrawal: unfunded,

		EndingPortfolioValue:      ending,
		AvailableForWithdrawStart: available,
		BucketBalances:            portfolio.Balances(),
	}, nil
}
