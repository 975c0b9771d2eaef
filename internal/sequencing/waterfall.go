package sequencing

import (
	"fmt"

	"github.com/rgehrsitz/firesim/internal/domain"
	"github.com/shopspring/decimal"
)

// Waterfall drains a fixed, ordered list of sources until a request is met or
// every source is empty. The same waterfall serves the expense pass and the tax pass.
type Waterfall struct {
	Sources []WithdrawalSource
}

// NewWaterfall wraps an ordered source list.
func NewWaterfall(sources []WithdrawalSource) *Waterfall {
	return &Waterfall{Sources: sources}
}

// Names returns the source names in depletion order.
func (w *Waterfall) Names() []string {
	names := make([]string, len(w.Sources))
	for i, s := range w.Sources {
		names[i] = s.Name
	}
	return names
}

// Plan works out what each source would give toward request without touching any
// balance. A foreign source gives min(balance, remaining/rate) native units.
func Plan(sources []WithdrawalSource, request, rate decimal.Decimal) WithdrawalPlan {
	plan := WithdrawalPlan{
		Requested:    request,
		Allocations:  []WithdrawalAllocation{},
		TotalSourced: decimal.Zero,
		ExchangeRate: rate,
	}
	remaining := request
	for _, src := range sources {
		if !remaining.IsPositive() {
			break
		}
		if !src.Balance.IsPositive() {
			continue
		}

		var alloc WithdrawalAllocation
		switch src.Currency {
		case domain.Foreign:
			if !rate.IsPositive() {
				plan.Notes = append(plan.Notes, fmt.Sprintf("%s skipped: non-positive exchange rate", src.Name))
				continue
			}
			needNative := remaining.Div(rate)
			if src.Balance.LessThanOrEqual(needNative) {
				alloc = WithdrawalAllocation{Source: src.Name, Native: src.Balance, Domestic: src.Balance.Mul(rate)}
			} else {
				// the source covers the rest; credit exactly what was asked
				alloc = WithdrawalAllocation{Source: src.Name, Native: needNative, Domestic: remaining}
			}
		default:
			take := decimal.Min(src.Balance, remaining)
			alloc = WithdrawalAllocation{Source: src.Name, Native: take, Domestic: take}
		}

		plan.Allocations = append(plan.Allocations, alloc)
		plan.TotalSourced = plan.TotalSourced.Add(alloc.Domestic)
		remaining = remaining.Sub(alloc.Domestic)
	}
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	plan.RemainingNeed = remaining
	return plan
}

// Draw plans request against the current bucket balances, removes the planned
// amounts from the buckets and accumulates the domestic credit into breakdown.
func (w *Waterfall) Draw(request, rate decimal.Decimal, breakdown *domain.WithdrawalBreakdown) WithdrawalPlan {
	w.refresh()
	plan := Plan(w.Sources, request, rate)
	for _, alloc := range plan.Allocations {
		src := w.source(alloc.Source)
		if src != nil && src.bucket != nil {
			src.bucket.Withdraw(alloc.Native)
		}
		if breakdown != nil {
			breakdown.Add(alloc.Source, alloc.Domestic)
		}
	}
	w.refresh()
	return plan
}

func (w *Waterfall) refresh() {
	for i := range w.Sources {
		if b := w.Sources[i].bucket; b != nil {
			w.Sources[i].Balance = b.Balance
		}
	}
}

func (w *Waterfall) source(name string) *WithdrawalSource {
	for i := range w.Sources {
		if w.Sources[i].Name == name {
			return &w.Sources[i]
		}
	}
	return nil
}
