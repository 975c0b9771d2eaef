package sequencing

import (
	"github.com/rgehrsitz/firesim/internal/domain"
	"github.com/shopspring/decimal"
)

// WithdrawalSource is one handle in the ordered depletion list.
// Name: bucket identifier
// Currency: domestic sources are drawn 1:1, foreign ones through the exchange rate
// Balance: native-currency balance at planning time
// Priority: position in the order, starting at 1
type WithdrawalSource struct {
	Name     string
	Currency domain.Currency
	Balance  decimal.Decimal
	Priority int

	bucket *domain.AssetBucket
}

// Bucket returns the bucket the source draws from, nil for detached sources.
func (s WithdrawalSource) Bucket() *domain.AssetBucket {
	return s.bucket
}

// WithdrawalAllocation is the amount taken from one source.
// Native: units removed from the bucket in its own currency
// Domestic: the same amount credited in domestic currency
type WithdrawalAllocation struct {
	Source   string
	Native   decimal.Decimal
	Domestic decimal.Decimal
}

// WithdrawalPlan is the result of one waterfall pass.
// Requested: domestic amount the pass tried to source
// Allocations: per-source takes in depletion order
// TotalSourced: sum of Domestic across allocations
// RemainingNeed: part of Requested no source could cover
// ExchangeRate: rate used for foreign sources
type WithdrawalPlan struct {
	Requested     decimal.Decimal
	Allocations   []WithdrawalAllocation
	TotalSourced  decimal.Decimal
	RemainingNeed decimal.Decimal
	ExchangeRate  decimal.Decimal
	Notes         []string
}

// Funded reports whether the plan covered the full request.
func (p WithdrawalPlan) Funded() bool {
	return !p.RemainingNeed.IsPositive()
}
