package calculation

import (
	"github.com/rgehrsitz/firesim/internal/domain"
	"github.com/shopspring/decimal"
)

// TaxCalculator computes tax owed on a year's taxable income.
type TaxCalculator interface {
	CalculateTax(taxable decimal.Decimal) decimal.Decimal
}

// TaxBracket is one marginal band. A zero Max means unbounded.
type TaxBracket struct {
	Min  decimal.Decimal
	Max  decimal.Decimal
	Rate decimal.Decimal
}

// SlabTaxCalculator applies the fixed three-tier table: nothing up to Slab1,
// Rate2 on the band up to Slab2 and Rate3 on everything above.
type SlabTaxCalculator struct {
	Slab1    decimal.Decimal
	Slab2    decimal.Decimal
	Rate2    decimal.Decimal
	Rate3    decimal.Decimal
	Brackets []TaxBracket
}

// NewSlabTaxCalculator creates a calculator from the configured slabs.
func NewSlabTaxCalculator(slabs domain.TaxSlabs) *SlabTaxCalculator {
	return &SlabTaxCalculator{
		Slab1: slabs.Slab1,
		Slab2: slabs.Slab2,
		Rate2: slabs.Rate2,
		Rate3: slabs.Rate3,
		Brackets: []TaxBracket{
			{Min: decimal.Zero, Max: slabs.Slab1, Rate: decimal.Zero},
			{Min: slabs.Slab1, Max: slabs.Slab2, Rate: slabs.Rate2},
			{Min: slabs.Slab2, Max: decimal.Zero, Rate: slabs.Rate3},
		},
	}
}

// CalculateTax returns the tax due on taxable. Bands share their boundaries so the
// result is continuous at Slab1 and Slab2.
func (stc *SlabTaxCalculator) CalculateTax(taxable decimal.Decimal) decimal.Decimal {
	if !taxable.IsPositive() {
		return decimal.Zero
	}

	totalTax := decimal.Zero
	for _, bracket := range stc.Brackets {
		if taxable.LessThanOrEqual(bracket.Min) {
			break
		}
		upper := taxable
		if !bracket.Max.IsZero() {
			upper = decimal.Min(taxable, bracket.Max)
		}
		incomeInBracket := upper.Sub(bracket.Min)
		if incomeInBracket.IsPositive() {
			totalTax = totalTax.Add(incomeInBracket.Mul(bracket.Rate))
		}
	}
	return totalTax
}

// MarginalRate returns the rate applied to the next unit of income above taxable.
func (stc *SlabTaxCalculator) MarginalRate(taxable decimal.Decimal) decimal.Decimal {
	switch {
	case taxable.LessThan(stc.Slab1):
		return decimal.Zero
	case taxable.LessThan(stc.Slab2):
		return stc.Rate2
	default:
		return stc.Rate3
	}
}
