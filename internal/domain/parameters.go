package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency identifies which side of the exchange rate a bucket or amount lives on.
type Currency string

const (
	Domestic Currency = "domestic"
	Foreign  Currency = "foreign"
)

// Valid reports whether c is one of the two supported currencies.
func (c Currency) Valid() bool {
	return c == Domestic || c == Foreign
}

// DefaultCutoverYear is the last year the pre-cutover rent applies when none is configured.
const DefaultCutoverYear = 2035

// DefaultWithdrawalOrder is the depletion order used when the configuration leaves it empty.
var DefaultWithdrawalOrder = []string{
	"fd_domestic",
	"mf_domestic",
	"equity_domestic",
	"bond_domestic",
	"fd_foreign",
	"bond_foreign",
	"equity_foreign",
}

// AssetBucket is a single named store of capital.
// Balance is held in the bucket's own currency.
type AssetBucket struct {
	Name          string          `yaml:"name" json:"name"`
	Currency      Currency        `yaml:"currency" json:"currency"`
	Balance       decimal.Decimal `yaml:"balance" json:"balance"`
	GrowthRate    decimal.Decimal `yaml:"growth_rate" json:"growthRate"`
	LockUntilYear *int            `yaml:"lock_until_year,omitempty" json:"lockUntilYear,omitempty"`
}

// IsLocked reports whether the bucket is still restricted in the given year.
func (b *AssetBucket) IsLocked(year int) bool {
	return b.LockUntilYear != nil && year < *b.LockUntilYear
}

// Grow compounds the balance by one year of growth.
func (b *AssetBucket) Grow() {
	b.Balance = b.Balance.Mul(decimal.NewFromInt(1).Add(b.GrowthRate))
}

// Deposit adds amount (native currency) to the balance.
func (b *AssetBucket) Deposit(amount decimal.Decimal) {
	if amount.IsPositive() {
		b.Balance = b.Balance.Add(amount)
	}
}

// Withdraw removes up to amount (native currency) and returns what was actually taken.
// The balance never goes negative.
func (b *AssetBucket) Withdraw(amount decimal.Decimal) decimal.Decimal {
	if !amount.IsPositive() || !b.Balance.IsPositive() {
		return decimal.Zero
	}
	taken := decimal.Min(b.Balance, amount)
	b.Balance = b.Balance.Sub(taken)
	return taken
}

// RentalSchedule is the two-regime rental income step function.
type RentalSchedule struct {
	PreCutoverMonthly  decimal.Decimal `yaml:"pre_cutover_monthly" json:"preCutoverMonthly"`
	PostCutoverMonthly decimal.Decimal `yaml:"post_cutover_monthly" json:"postCutoverMonthly"`
	CutoverYear        int             `yaml:"cutover_year" json:"cutoverYear"`
	AnnualIncrease     decimal.Decimal `yaml:"annual_increase" json:"annualIncrease"`
}

// InflationRates holds the domestic rate applied to living expenses and the foreign
// rate, which is carried for reporting only.
type InflationRates struct {
	Domestic decimal.Decimal `yaml:"domestic" json:"domestic"`
	Foreign  decimal.Decimal `yaml:"foreign" json:"foreign"`
}

// ExchangeRateAssumptions describes the foreign-to-domestic rate and its annual drift.
type ExchangeRateAssumptions struct {
	BaseRate     decimal.Decimal `yaml:"base_rate" json:"baseRate"`
	AnnualGrowth decimal.Decimal `yaml:"annual_growth" json:"annualGrowth"`
}

// ExpenseAssumptions are the recurring household costs.
type ExpenseAssumptions struct {
	LivingMonthly     decimal.Decimal `yaml:"living_monthly" json:"livingMonthly"`
	TravelYearly      decimal.Decimal `yaml:"travel_yearly" json:"travelYearly"`
	TravelStartYear   int             `yaml:"travel_start_year" json:"travelStartYear"`
	TravelEndYear     int             `yaml:"travel_end_year" json:"travelEndYear"`
	InsuranceYearly   decimal.Decimal `yaml:"insurance_yearly" json:"insuranceYearly"`
	HouseRepairYearly decimal.Decimal `yaml:"house_repair_yearly" json:"houseRepairYearly"`
}

// Reinvestment is the recurring amount added to one domestic bucket at the start of each year.
// YearlyAmount wins when both are set.
type Reinvestment struct {
	TargetBucket  string           `yaml:"target_bucket" json:"targetBucket"`
	MonthlyAmount decimal.Decimal  `yaml:"monthly_amount" json:"monthlyAmount"`
	YearlyAmount  *decimal.Decimal `yaml:"yearly_amount,omitempty" json:"yearlyAmount,omitempty"`
}

// Annual returns the amount reinvested per year.
func (r Reinvestment) Annual() decimal.Decimal {
	if r.YearlyAmount != nil {
		return *r.YearlyAmount
	}
	return r.MonthlyAmount.Mul(decimal.NewFromInt(12))
}

// TaxSlabs is the fixed 3-tier progressive table: nothing up to Slab1, Rate2 up to
// Slab2 and Rate3 above it.
type TaxSlabs struct {
	Slab1 decimal.Decimal `yaml:"slab1" json:"slab1"`
	Slab2 decimal.Decimal `yaml:"slab2" json:"slab2"`
	Rate2 decimal.Decimal `yaml:"rate2" json:"rate2"`
	Rate3 decimal.Decimal `yaml:"rate3" json:"rate3"`
}

// ParameterSet is the complete input for one simulation run.
type ParameterSet struct {
	StartYear int             `yaml:"start_year" json:"startYear"`
	StartAge  int             `yaml:"start_age" json:"startAge"`
	EndAge    int             `yaml:"end_age" json:"endAge"`
	Buffer    decimal.Decimal `yaml:"buffer" json:"buffer"`

	DomesticCurrency string `yaml:"domestic_currency" json:"domesticCurrency"`
	ForeignCurrency  string `yaml:"foreign_currency" json:"foreignCurrency"`

	Rental       RentalSchedule          `yaml:"rental" json:"rental"`
	Inflation    InflationRates          `yaml:"inflation" json:"inflation"`
	ExchangeRate ExchangeRateAssumptions `yaml:"exchange_rate" json:"exchangeRate"`

	Buckets                  []AssetBucket `yaml:"buckets" json:"buckets"`
	WithdrawalOrder          []string      `yaml:"withdrawal_order" json:"withdrawalOrder"`
	LockedReleaseToWaterfall bool          `yaml:"locked_release_to_waterfall,omitempty" json:"lockedReleaseToWaterfall,omitempty"`

	Expenses      ExpenseAssumptions `yaml:"expenses" json:"expenses"`
	OneTimeEvents OneTimeEvents      `yaml:"one_time_events" json:"oneTimeEvents"`
	Reinvestment  Reinvestment       `yaml:"reinvestment" json:"reinvestment"`
	Tax           TaxSlabs           `yaml:"tax" json:"tax"`
}

// EndYear is the last simulated calendar year.
func (p *ParameterSet) EndYear() int {
	return p.StartYear + (p.EndAge - p.StartAge)
}

// Years returns the number of simulated years.
func (p *ParameterSet) Years() int {
	return p.EndAge - p.StartAge + 1
}

// Bucket returns the bucket with the given name, or nil.
func (p *ParameterSet) Bucket(name string) *AssetBucket {
	for i := range p.Buckets {
		if p.Buckets[i].Name == name {
			return &p.Buckets[i]
		}
	}
	return nil
}

// LockedBucket returns the single bucket carrying a lock year, or nil.
func (p *ParameterSet) LockedBucket() *AssetBucket {
	for i := range p.Buckets {
		if p.Buckets[i].LockUntilYear != nil {
			return &p.Buckets[i]
		}
	}
	return nil
}

// DeepCopy returns a copy that shares no mutable state with p.
func (p *ParameterSet) DeepCopy() *ParameterSet {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Buckets = make([]AssetBucket, len(p.Buckets))
	for i, b := range p.Buckets {
		if b.LockUntilYear != nil {
			y := *b.LockUntilYear
			b.LockUntilYear = &y
		}
		cp.Buckets[i] = b
	}
	cp.WithdrawalOrder = append([]string(nil), p.WithdrawalOrder...)
	cp.OneTimeEvents = p.OneTimeEvents.DeepCopy()
	if p.Reinvestment.YearlyAmount != nil {
		v := *p.Reinvestment.YearlyAmount
		cp.Reinvestment.YearlyAmount = &v
	}
	return &cp
}

// Validate checks the parameter set for values that would make the projection
// meaningless. It is called before any year is simulated.
func (p *ParameterSet) Validate() error {
	if p.EndAge <= p.StartAge {
		return fmt.Errorf("end age (%d) must be greater than start age (%d)", p.EndAge, p.StartAge)
	}
	if p.StartYear <= 0 {
		return fmt.Errorf("start year must be positive")
	}
	if p.Buffer.IsNegative() {
		return fmt.Errorf("buffer cannot be negative")
	}
	if !p.ExchangeRate.BaseRate.IsPositive() {
		return fmt.Errorf("exchange rate must be positive, got %s", p.ExchangeRate.BaseRate.String())
	}
	if p.ExchangeRate.AnnualGrowth.LessThanOrEqual(decimal.NewFromInt(-1)) {
		return fmt.Errorf("exchange rate growth must be greater than -100%%")
	}
	if p.Inflation.Domestic.LessThanOrEqual(decimal.NewFromInt(-1)) {
		return fmt.Errorf("domestic inflation must be greater than -100%%")
	}
	if err := p.validateRental(); err != nil {
		return fmt.Errorf("rental: %w", err)
	}
	if err := p.validateExpenses(); err != nil {
		return fmt.Errorf("expenses: %w", err)
	}
	if err := p.validateBuckets(); err != nil {
		return fmt.Errorf("buckets: %w", err)
	}
	if err := p.validateTax(); err != nil {
		return fmt.Errorf("tax: %w", err)
	}
	return nil
}

func (p *ParameterSet) validateRental() error {
	r := p.Rental
	if r.PreCutoverMonthly.IsNegative() || r.PostCutoverMonthly.IsNegative() {
		return fmt.Errorf("monthly rent cannot be negative")
	}
	if r.AnnualIncrease.LessThanOrEqual(decimal.NewFromInt(-1)) {
		return fmt.Errorf("annual increase must be greater than -100%%")
	}
	return nil
}

func (p *ParameterSet) validateExpenses() error {
	e := p.Expenses
	for label, v := range map[string]decimal.Decimal{
		"living_monthly":      e.LivingMonthly,
		"travel_yearly":       e.TravelYearly,
		"insurance_yearly":    e.InsuranceYearly,
		"house_repair_yearly": e.HouseRepairYearly,
	} {
		if v.IsNegative() {
			return fmt.Errorf("%s cannot be negative", label)
		}
	}
	if e.TravelYearly.IsPositive() && e.TravelEndYear < e.TravelStartYear {
		return fmt.Errorf("travel end year %d is before start year %d", e.TravelEndYear, e.TravelStartYear)
	}
	if p.Reinvestment.Annual().IsNegative() {
		return fmt.Errorf("reinvestment amount cannot be negative")
	}
	return nil
}

func (p *ParameterSet) validateBuckets() error {
	if len(p.Buckets) == 0 {
		return fmt.Errorf("at least one bucket is required")
	}
	seen := make(map[string]bool, len(p.Buckets))
	locked := 0
	for _, b := range p.Buckets {
		if b.Name == "" {
			return fmt.Errorf("bucket name is required")
		}
		if seen[b.Name] {
			return fmt.Errorf("duplicate bucket %q", b.Name)
		}
		seen[b.Name] = true
		if !b.Currency.Valid() {
			return fmt.Errorf("bucket %q: currency must be %q or %q", b.Name, Domestic, Foreign)
		}
		if b.Balance.IsNegative() {
			return fmt.Errorf("bucket %q: balance cannot be negative", b.Name)
		}
		if b.GrowthRate.LessThanOrEqual(decimal.NewFromInt(-1)) {
			return fmt.Errorf("bucket %q: growth rate must be greater than -100%%", b.Name)
		}
		if b.LockUntilYear != nil {
			locked++
		}
	}
	if locked > 1 {
		return fmt.Errorf("only one bucket can carry lock_until_year, found %d", locked)
	}

	inOrder := make(map[string]bool, len(p.WithdrawalOrder))
	for _, name := range p.WithdrawalOrder {
		b := p.Bucket(name)
		if b == nil {
			return fmt.Errorf("withdrawal order references unknown bucket %q", name)
		}
		if inOrder[name] {
			return fmt.Errorf("withdrawal order lists %q twice", name)
		}
		inOrder[name] = true
		if b.LockUntilYear != nil {
			return fmt.Errorf("locked bucket %q cannot appear in the withdrawal order", name)
		}
	}

	if p.Reinvestment.Annual().IsPositive() || p.Reinvestment.TargetBucket != "" {
		target := p.Bucket(p.Reinvestment.TargetBucket)
		if target == nil {
			return fmt.Errorf("reinvestment target %q is not a bucket", p.Reinvestment.TargetBucket)
		}
		if target.Currency != Domestic {
			return fmt.Errorf("reinvestment target %q must be a domestic bucket", target.Name)
		}
	}
	return nil
}

func (p *ParameterSet) validateTax() error {
	t := p.Tax
	if t.Slab1.IsNegative() {
		return fmt.Errorf("slab1 cannot be negative")
	}
	if t.Slab2.LessThanOrEqual(t.Slab1) {
		return fmt.Errorf("slab2 (%s) must be greater than slab1 (%s)", t.Slab2.String(), t.Slab1.String())
	}
	one := decimal.NewFromInt(1)
	if t.Rate2.IsNegative() || t.Rate2.GreaterThan(one) {
		return fmt.Errorf("rate2 must be between 0 and 1")
	}
	if t.Rate3.IsNegative() || t.Rate3.GreaterThan(one) {
		return fmt.Errorf("rate3 must be between 0 and 1")
	}
	return nil
}
