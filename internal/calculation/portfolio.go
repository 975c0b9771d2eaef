package calculation

import (
	"fmt"

	"github.com/rgehrsitz/firesim/internal/domain"
	"github.com/shopspring/decimal"
)

// AssetPortfolio owns one run's buckets. It is single-writer: the engine passes it
// by pointer from year to year and no other run ever sees it.
type AssetPortfolio struct {
	Buckets   []*domain.AssetBucket
	Converter CurrencyConverter
}

// NewAssetPortfolio copies the configured buckets into a fresh portfolio.
func NewAssetPortfolio(buckets []domain.AssetBucket, converter CurrencyConverter) *AssetPortfolio {
	p := &AssetPortfolio{
		Buckets:   make([]*domain.AssetBucket, len(buckets)),
		Converter: converter,
	}
	for i := range buckets {
		b := buckets[i]
		if b.LockUntilYear != nil {
			y := *b.LockUntilYear
			b.LockUntilYear = &y
		}
		p.Buckets[i] = &b
	}
	return p
}

// Clone returns an independent deep copy.
func (p *AssetPortfolio) Clone() *AssetPortfolio {
	buckets := make([]domain.AssetBucket, len(p.Buckets))
	for i, b := range p.Buckets {
		buckets[i] = *b
	}
	return NewAssetPortfolio(buckets, p.Converter)
}

// Bucket returns the named bucket or nil.
func (p *AssetPortfolio) Bucket(name string) *domain.AssetBucket {
	for _, b := range p.Buckets {
		if b.Name == name {
			return b
		}
	}
	return nil
}

// GrowAll applies one year of growth to every bucket.
func (p *AssetPortfolio) GrowAll() {
	for _, b := range p.Buckets {
		b.Grow()
	}
}

// Reinvest adds amount to the named domestic bucket.
func (p *AssetPortfolio) Reinvest(target string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return nil
	}
	b := p.Bucket(target)
	if b == nil {
		return fmt.Errorf("reinvestment target %q not found", target)
	}
	if b.Currency != domain.Domestic {
		return fmt.Errorf("reinvestment target %q is not a domestic bucket", target)
	}
	b.Deposit(amount)
	return nil
}

// DomesticValue returns one bucket's balance in domestic currency for year.
func (p *AssetPortfolio) DomesticValue(b *domain.AssetBucket, year int) decimal.Decimal {
	if b.Currency == domain.Foreign {
		return p.Converter.ToDomestic(b.Balance, year)
	}
	return b.Balance
}

// TotalValue is every bucket valued in domestic currency at year's rate.
func (p *AssetPortfolio) TotalValue(year int) decimal.Decimal {
	domestic := decimal.Zero
	foreign := decimal.Zero
	for _, b := range p.Buckets {
		if b.Currency == domain.Foreign {
			foreign = foreign.Add(b.Balance)
		} else {
			domestic = domestic.Add(b.Balance)
		}
	}
	return domestic.Add(p.Converter.ToDomestic(foreign, year))
}

// AvailableForWithdrawal is TotalValue less any bucket still locked in year.
func (p *AssetPortfolio) AvailableForWithdrawal(year int) decimal.Decimal {
	total := p.TotalValue(year)
	for _, b := range p.Buckets {
		if b.IsLocked(year) {
			total = total.Sub(p.DomesticValue(b, year))
		}
	}
	return total
}

// Balances snapshots each bucket's native balance in portfolio order.
func (p *AssetPortfolio) Balances() []domain.BucketAmount {
	out := make([]domain.BucketAmount, len(p.Buckets))
	for i, b := range p.Buckets {
		out[i] = domain.BucketAmount{Bucket: b.Name, Amount: b.Balance}
	}
	return out
}
