package calculation

import (
	"github.com/rgehrsitz/firesim/internal/domain"
	"github.com/shopspring/decimal"
)

// CurrencyConverter turns foreign amounts into domestic ones for a given year.
// The rate drifts by AnnualGrowth per year, compounded from StartYear.
type CurrencyConverter struct {
	BaseRate     decimal.Decimal
	AnnualGrowth decimal.Decimal
	StartYear    int
}

// NewCurrencyConverter builds a converter from the exchange-rate assumptions.
func NewCurrencyConverter(fx domain.ExchangeRateAssumptions, startYear int) CurrencyConverter {
	return CurrencyConverter{
		BaseRate:     fx.BaseRate,
		AnnualGrowth: fx.AnnualGrowth,
		StartYear:    startYear,
	}
}

// Rate returns domestic units per foreign unit in the given year.
func (c CurrencyConverter) Rate(year int) decimal.Decimal {
	return c.BaseRate.Mul(compound(c.AnnualGrowth, year-c.StartYear))
}

// ToDomestic converts a foreign amount at the given year's rate.
func (c CurrencyConverter) ToDomestic(amount decimal.Decimal, year int) decimal.Decimal {
	return amount.Mul(c.Rate(year))
}

// compound returns (1 + rate)^years. Negative years are treated as zero.
func compound(rate decimal.Decimal, years int) decimal.Decimal {
	if years <= 0 {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(1).Add(rate).Pow(decimal.NewFromInt(int64(years)))
}
