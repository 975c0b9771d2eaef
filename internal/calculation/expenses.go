package calculation

import (
	"github.com/rgehrsitz/firesim/internal/domain"
	"github.com/shopspring/decimal"
)

var twelve = decimal.NewFromInt(12)

// ExpenseScheduler computes one year's rental income and cash needs.
type ExpenseScheduler struct {
	StartYear int
	Rental    domain.RentalSchedule
	Inflation domain.InflationRates
	Expenses  domain.ExpenseAssumptions
	Events    domain.OneTimeEvents
	Converter CurrencyConverter
}

// NewExpenseScheduler builds a scheduler for the parameter set.
func NewExpenseScheduler(params *domain.ParameterSet) *ExpenseScheduler {
	rental := params.Rental
	if rental.CutoverYear == 0 {
		rental.CutoverYear = domain.DefaultCutoverYear
	}
	return &ExpenseScheduler{
		StartYear: params.StartYear,
		Rental:    rental,
		Inflation: params.Inflation,
		Expenses:  params.Expenses,
		Events:    params.OneTimeEvents,
		Converter: NewCurrencyConverter(params.ExchangeRate, params.StartYear),
	}
}

// MonthlyRent returns the monthly rent in force for the year.
// Up to and including the cutover year rent compounds from the pre-cutover base
// counted from the start year. After it, rent restarts from the post-cutover base
// counted from the year after the cutover. The jump at the cutover is intended.
func (es *ExpenseScheduler) MonthlyRent(year int) decimal.Decimal {
	if year <= es.Rental.CutoverYear {
		return es.Rental.PreCutoverMonthly.Mul(compound(es.Rental.AnnualIncrease, year-es.StartYear))
	}
	return es.Rental.PostCutoverMonthly.Mul(compound(es.Rental.AnnualIncrease, year-(es.Rental.CutoverYear+1)))
}

// RentalIncome returns the annual rent for the year.
func (es *ExpenseScheduler) RentalIncome(year int) decimal.Decimal {
	return es.MonthlyRent(year).Mul(twelve)
}

// LivingExpense returns the inflated annual living cost.
func (es *ExpenseScheduler) LivingExpense(year int) decimal.Decimal {
	return es.Expenses.LivingMonthly.Mul(twelve).Mul(compound(es.Inflation.Domestic, year-es.StartYear))
}

// TravelExpense returns the travel budget when year falls inside the travel window.
func (es *ExpenseScheduler) TravelExpense(year int) decimal.Decimal {
	if year >= es.Expenses.TravelStartYear && year <= es.Expenses.TravelEndYear {
		return es.Expenses.TravelYearly
	}
	return decimal.Zero
}

// OneTimeTotal sums the events dated in year, converting foreign amounts at rate.
func (es *ExpenseScheduler) OneTimeTotal(year int, rate decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, ev := range es.Events.ForYear(year) {
		if ev.AmountDomestic != nil {
			total = total.Add(*ev.AmountDomestic)
		}
		if ev.AmountForeign != nil {
			total = total.Add(ev.AmountForeign.Mul(rate))
		}
	}
	return total
}

// ForYear assembles every expense component for the year.
func (es *ExpenseScheduler) ForYear(year int) domain.ExpenseBreakdown {
	b := domain.ExpenseBreakdown{
		RentalIncome: es.RentalIncome(year),
		Living:       es.LivingExpense(year),
		Travel:       es.TravelExpense(year),
		Insurance:    es.Expenses.InsuranceYearly,
		HouseRepair:  es.Expenses.HouseRepairYearly,
		OneTimeTotal: es.OneTimeTotal(year, es.Converter.Rate(year)),
	}
	b.TotalExpenses = b.Living.Add(b.Travel).Add(b.Insurance).Add(b.HouseRepair).Add(b.OneTimeTotal)
	return b
}
