package calculation

import (
	"github.com/rgehrsitz/firesim/internal/domain"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func intPtr(i int) *int {
	return &i
}

func decimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

func standardSlabs() domain.TaxSlabs {
	return domain.TaxSlabs{
		Slab1: dec("1200000"),
		Slab2: dec("2000000"),
		Rate2: dec("0.20"),
		Rate3: dec("0.33"),
	}
}

// pureGrowthParams is a single domestic bucket at 10% with no cash flows.
func pureGrowthParams() *domain.ParameterSet {
	return &domain.ParameterSet{
		StartYear:        2025,
		StartAge:         40,
		EndAge:           41,
		DomesticCurrency: "INR",
		ForeignCurrency:  "USD",
		Rental:           domain.RentalSchedule{CutoverYear: 2035},
		ExchangeRate:     domain.ExchangeRateAssumptions{BaseRate: dec("83")},
		Buckets: []domain.AssetBucket{
			{Name: "fd_domestic", Currency: domain.Domestic, Balance: dec("1000000"), GrowthRate: dec("0.10")},
		},
		Tax: standardSlabs(),
	}
}

// mixedParams has domestic and foreign buckets, rent, living costs and tax.
func mixedParams() *domain.ParameterSet {
	return &domain.ParameterSet{
		StartYear:        2025,
		StartAge:         45,
		EndAge:           47,
		Buffer:           dec("500000"),
		DomesticCurrency: "INR",
		ForeignCurrency:  "USD",
		Rental: domain.RentalSchedule{
			PreCutoverMonthly:  dec("20000"),
			PostCutoverMonthly: dec("40000"),
			CutoverYear:        2035,
			AnnualIncrease:     dec("0.025"),
		},
		Inflation:    domain.InflationRates{Domestic: dec("0.06"), Foreign: dec("0.025")},
		ExchangeRate: domain.ExchangeRateAssumptions{BaseRate: dec("80"), AnnualGrowth: dec("0.02")},
		Buckets: []domain.AssetBucket{
			{Name: "fd_domestic", Currency: domain.Domestic, Balance: dec("600000"), GrowthRate: dec("0.07")},
			{Name: "mf_domestic", Currency: domain.Domestic, Balance: dec("400000"), GrowthRate: dec("0.10")},
			{Name: "fd_foreign", Currency: domain.Foreign, Balance: dec("20000"), GrowthRate: dec("0.04")},
			{Name: "equity_foreign", Currency: domain.Foreign, Balance: dec("100000"), GrowthRate: dec("0.08")},
		},
		Expenses: domain.ExpenseAssumptions{
			LivingMonthly:     dec("150000"),
			TravelYearly:      dec("200000"),
			TravelStartYear:   2026,
			TravelEndYear:     2026,
			InsuranceYearly:   dec("50000"),
			HouseRepairYearly: dec("25000"),
		},
		Tax: domain.TaxSlabs{
			Slab1: dec("1000000"),
			Slab2: dec("2000000"),
			Rate2: dec("0.20"),
			Rate3: dec("0.30"),
		},
	}
}

// lockedParams has one liquid bucket and one bucket locked until 2027.
func lockedParams() *domain.ParameterSet {
	return &domain.ParameterSet{
		StartYear:        2025,
		StartAge:         60,
		EndAge:           63,
		DomesticCurrency: "INR",
		ForeignCurrency:  "USD",
		Rental:           domain.RentalSchedule{CutoverYear: 2035},
		ExchangeRate:     domain.ExchangeRateAssumptions{BaseRate: dec("83")},
		Buckets: []domain.AssetBucket{
			{Name: "fd_domestic", Currency: domain.Domestic, Balance: dec("1000000")},
			{Name: "locked_equity", Currency: domain.Domestic, Balance: dec("500000"), LockUntilYear: intPtr(2027)},
		},
		WithdrawalOrder: []string{"fd_domestic"},
		Expenses:        domain.ExpenseAssumptions{LivingMonthly: dec("100000")},
		Tax:             standardSlabs(),
	}
}
