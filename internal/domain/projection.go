package domain

import (
	"github.com/shopspring/decimal"
)

// ExpenseBreakdown is one year's scheduled cash needs and rental income.
type ExpenseBreakdown struct {
	RentalIncome  decimal.Decimal `json:"rentalIncome"`
	Living        decimal.Decimal `json:"living"`
	Travel        decimal.Decimal `json:"travel"`
	Insurance     decimal.Decimal `json:"insurance"`
	HouseRepair   decimal.Decimal `json:"houseRepair"`
	OneTimeTotal  decimal.Decimal `json:"oneTimeTotal"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
}

// BucketAmount pairs a bucket name with an amount.
type BucketAmount struct {
	Bucket string          `json:"bucket"`
	Amount decimal.Decimal `json:"amount"`
}

// WithdrawalBreakdown is the per-bucket total withdrawn in a year, in domestic
// currency, kept in withdrawal order so every year has the same columns.
type WithdrawalBreakdown []BucketAmount

// NewWithdrawalBreakdown returns a zeroed breakdown for the given bucket names.
func NewWithdrawalBreakdown(names []string) WithdrawalBreakdown {
	b := make(WithdrawalBreakdown, len(names))
	for i, n := range names {
		b[i] = BucketAmount{Bucket: n, Amount: decimal.Zero}
	}
	return b
}

// Add credits amount to the named bucket, appending it if not yet present.
func (b *WithdrawalBreakdown) Add(name string, amount decimal.Decimal) {
	for i := range *b {
		if (*b)[i].Bucket == name {
			(*b)[i].Amount = (*b)[i].Amount.Add(amount)
			return
		}
	}
	*b = append(*b, BucketAmount{Bucket: name, Amount: amount})
}

// Get returns the amount withdrawn from the named bucket.
func (b WithdrawalBreakdown) Get(name string) decimal.Decimal {
	for _, e := range b {
		if e.Bucket == name {
			return e.Amount
		}
	}
	return decimal.Zero
}

// Total sums every bucket's withdrawal.
func (b WithdrawalBreakdown) Total() decimal.Decimal {
	total := decimal.Zero
	for _, e := range b {
		total = total.Add(e.Amount)
	}
	return total
}

// YearRecord is one simulated year. It is built once and never modified.
type YearRecord struct {
	Year         int             `json:"year"`
	Age          int             `json:"age"`
	ExchangeRate decimal.Decimal `json:"exchangeRate"`

	RentalIncome  decimal.Decimal `json:"rentalIncome"`
	Living        decimal.Decimal `json:"living"`
	Travel        decimal.Decimal `json:"travel"`
	Insurance     decimal.Decimal `json:"insurance"`
	HouseRepair   decimal.Decimal `json:"houseRepair"`
	OneTimeTotal  decimal.Decimal `json:"oneTimeTotal"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`

	RequiredWithdrawal decimal.Decimal `json:"requiredWithdrawal"`
	ActualWithdrawal   decimal.Decimal `json:"actualWithdrawal"`
	Shortfall          decimal.Decimal `json:"shortfall"`
	TaxableIncome      decimal.Decimal `json:"taxableIncome"`
	TaxDue             decimal.Decimal `json:"taxDue"`
	TaxPaid            decimal.Decimal `json:"taxPaid"`

	Withdrawals        WithdrawalBreakdown `json:"withdrawals"`
	UnfundedWithdrawal decimal.Decimal     `json:"unfundedWithdrawal"` // counted as available but unreachable by the waterfall

	EndingPortfolioValue      decimal.Decimal `json:"endingPortfolioValue"`
	AvailableForWithdrawStart decimal.Decimal `json:"availableForWithdrawStart"`
	BucketBalances            []BucketAmount  `json:"bucketBalances"` // native currency
}

// SimulationResult is the full projection plus its summary.
type SimulationResult struct {
	Records               []YearRecord    `json:"records"`
	MinimumPortfolioValue decimal.Decimal `json:"minimumPortfolioValue"`
	MinimumPortfolioYear  int             `json:"minimumPortfolioYear"`
	BufferHeld            bool            `json:"bufferHeld"`
	FirstBreachYear       *int            `json:"firstBreachYear,omitempty"`
	FinalPortfolioValue   decimal.Decimal `json:"finalPortfolioValue"`
	TotalShortfall        decimal.Decimal `json:"totalShortfall"`
	TotalUnfunded         decimal.Decimal `json:"totalUnfunded"`
	TotalTaxPaid          decimal.Decimal `json:"totalTaxPaid"`

	Buffer           decimal.Decimal `json:"buffer"`
	DomesticCurrency string          `json:"domesticCurrency"`
	ForeignCurrency  string          `json:"foreignCurrency"`
	BucketOrder      []string        `json:"bucketOrder"`
}

// Summarize derives the summary fields from Records. An empty projection holds
// the buffer trivially.
func (r *SimulationResult) Summarize() {
	r.BufferHeld = true
	r.FirstBreachYear = nil
	r.TotalShortfall = decimal.Zero
	r.TotalUnfunded = decimal.Zero
	r.TotalTaxPaid = decimal.Zero
	r.MinimumPortfolioValue = decimal.Zero
	r.FinalPortfolioValue = decimal.Zero
	for i, rec := range r.Records {
		if i == 0 || rec.EndingPortfolioValue.LessThan(r.MinimumPortfolioValue) {
			r.MinimumPortfolioValue = rec.EndingPortfolioValue
			r.MinimumPortfolioYear = rec.Year
		}
		if rec.EndingPortfolioValue.LessThan(r.Buffer) {
			if r.BufferHeld {
				y := rec.Year
				r.FirstBreachYear = &y
			}
			r.BufferHeld = false
		}
		r.TotalShortfall = r.TotalShortfall.Add(rec.Shortfall)
		r.TotalUnfunded = r.TotalUnfunded.Add(rec.UnfundedWithdrawal)
		r.TotalTaxPaid = r.TotalTaxPaid.Add(rec.TaxPaid)
	}
	if n := len(r.Records); n > 0 {
		r.FinalPortfolioValue = r.Records[n-1].EndingPortfolioValue
	}
}

// YearsUnfunded counts years in which part of the withdrawal could not be drawn
// from any bucket in the withdrawal order.
func (r *SimulationResult) YearsUnfunded() int {
	n := 0
	for _, rec := range r.Records {
		if rec.UnfundedWithdrawal.IsPositive() {
			n++
		}
	}
	return n
}

// YearsWithShortfall counts years in which required spending was not fully funded.
func (r *SimulationResult) YearsWithShortfall() int {
	n := 0
	for _, rec := range r.Records {
		if rec.Shortfall.IsPositive() {
			n++
		}
	}
	return n
}
