package sequencing

import (
	"fmt"

	"github.com/rgehrsitz/firesim/internal/domain"
)

// SourceFromBucket creates a source handle bound to a live bucket.
func SourceFromBucket(b *domain.AssetBucket, priority int) WithdrawalSource {
	return WithdrawalSource{
		Name:     b.Name,
		Currency: b.Currency,
		Balance:  b.Balance,
		Priority: priority,
		bucket:   b,
	}
}

// CreateWithdrawalSources resolves the configured order against the portfolio's
// buckets. Locked buckets are never included while locked. With releaseLocked set,
// a bucket whose lock has expired by year is appended after the configured order.
func CreateWithdrawalSources(buckets []*domain.AssetBucket, order []string, year int, releaseLocked bool) ([]WithdrawalSource, error) {
	lookup := make(map[string]*domain.AssetBucket, len(buckets))
	for _, b := range buckets {
		lookup[b.Name] = b
	}

	sources := make([]WithdrawalSource, 0, len(order)+1)
	listed := make(map[string]bool, len(order))
	for _, name := range order {
		b, ok := lookup[name]
		if !ok {
			return nil, fmt.Errorf("withdrawal order references unknown bucket %q", name)
		}
		if b.IsLocked(year) {
			continue
		}
		listed[name] = true
		sources = append(sources, SourceFromBucket(b, len(sources)+1))
	}

	if releaseLocked {
		for _, b := range buckets {
			if b.LockUntilYear != nil && !b.IsLocked(year) && !listed[b.Name] {
				sources = append(sources, SourceFromBucket(b, len(sources)+1))
			}
		}
	}
	return sources, nil
}

// CreateWaterfall builds the year's waterfall.
func CreateWaterfall(buckets []*domain.AssetBucket, order []string, year int, releaseLocked bool) (*Waterfall, error) {
	sources, err := CreateWithdrawalSources(buckets, order, year, releaseLocked)
	if err != nil {
		return nil, err
	}
	return NewWaterfall(sources), nil
}
