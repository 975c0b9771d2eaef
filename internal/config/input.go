package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/rgehrsitz/firesim/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Default currency codes used when a configuration leaves them empty.
const (
	DefaultDomesticCurrency = "INR"
	DefaultForeignCurrency  = "USD"
)

var currencyCode = regexp.MustCompile(`^[A-Z]{3}$`)

// InputParser handles parsing of input configuration files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads a parameter set from a YAML (or JSON) file
func (ip *InputParser) LoadFromFile(filename string) (*domain.ParameterSet, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.LoadFromBytes(data)
}

// LoadFromBytes parses, defaults and validates a parameter set.
// Unknown keys are rejected so that typos do not silently fall back to zero.
func (ip *InputParser) LoadFromBytes(data []byte) (*domain.ParameterSet, error) {
	var params domain.ParameterSet
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&params); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse YAML: empty document")
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	ip.ApplyDefaults(&params)

	if err := ip.ValidateConfiguration(&params); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &params, nil
}

// ApplyDefaults fills in the optional fields a configuration may leave out.
func (ip *InputParser) ApplyDefaults(params *domain.ParameterSet) {
	if params.DomesticCurrency == "" {
		params.DomesticCurrency = DefaultDomesticCurrency
	}
	if params.ForeignCurrency == "" {
		params.ForeignCurrency = DefaultForeignCurrency
	}
	if params.Rental.CutoverYear == 0 {
		params.Rental.CutoverYear = domain.DefaultCutoverYear
	}
	if len(params.WithdrawalOrder) == 0 {
		for _, name := range domain.DefaultWithdrawalOrder {
			if b := params.Bucket(name); b != nil && b.LockUntilYear == nil {
				params.WithdrawalOrder = append(params.WithdrawalOrder, name)
			}
		}
	}
}

// ValidateConfiguration validates the loaded configuration
func (ip *InputParser) ValidateConfiguration(params *domain.ParameterSet) error {
	if err := ip.validateCurrencies(params); err != nil {
		return fmt.Errorf("currency validation failed: %w", err)
	}
	if len(params.WithdrawalOrder) == 0 {
		return fmt.Errorf("withdrawal order is empty and no default bucket names are present")
	}
	if err := params.Validate(); err != nil {
		return err
	}
	return nil
}

func (ip *InputParser) validateCurrencies(params *domain.ParameterSet) error {
	if !currencyCode.MatchString(params.DomesticCurrency) {
		return fmt.Errorf("domestic currency %q must be a three-letter ISO code", params.DomesticCurrency)
	}
	if !currencyCode.MatchString(params.ForeignCurrency) {
		return fmt.Errorf("foreign currency %q must be a three-letter ISO code", params.ForeignCurrency)
	}
	if params.DomesticCurrency == params.ForeignCurrency {
		return fmt.Errorf("domestic and foreign currency must differ")
	}
	return nil
}

// CreateExampleConfiguration returns the default household used by `firesim init`.
func CreateExampleConfiguration() *domain.ParameterSet {
	lockUntil := 2045
	d := decimal.NewFromFloat
	n := decimal.NewFromInt

	events := domain.OneTimeEvents{Events: []domain.OneTimeEvent{
		domesticEvent(2026, "College fees", 100000),
		domesticEvent(2027, "College fees", 100000),
		domesticEvent(2028, "College fees", 100000),
		domesticEvent(2029, "College fees", 100000),
		domesticEvent(2030, "Abroad prep and application", 100000),
		foreignEvent(2030, "Abroad college fees", 50000),
		foreignEvent(2031, "Abroad college fees", 50000),
		domesticEvent(2035, "New car", 1500000),
		domesticEvent(2036, "Wedding", 1500000),
	}}

	return &domain.ParameterSet{
		StartYear:        2025,
		StartAge:         40,
		EndAge:           80,
		Buffer:           n(5000000),
		DomesticCurrency: DefaultDomesticCurrency,
		ForeignCurrency:  DefaultForeignCurrency,
		Rental: domain.RentalSchedule{
			PreCutoverMonthly:  n(20000),
			PostCutoverMonthly: n(30000),
			CutoverYear:        domain.DefaultCutoverYear,
			AnnualIncrease:     d(0.025),
		},
		Inflation:    domain.InflationRates{Domestic: d(0.10), Foreign: d(0.03)},
		ExchangeRate: domain.ExchangeRateAssumptions{BaseRate: n(88), AnnualGrowth: d(0.03)},
		Buckets: []domain.AssetBucket{
			{Name: "fd_domestic", Currency: domain.Domestic, Balance: n(1000000), GrowthRate: d(0.07)},
			{Name: "mf_domestic", Currency: domain.Domestic, Balance: n(1000000), GrowthRate: d(0.12)},
			{Name: "equity_domestic", Currency: domain.Domestic, Balance: n(1000000), GrowthRate: d(0.12)},
			{Name: "bond_domestic", Currency: domain.Domestic, Balance: n(1000000), GrowthRate: d(0.09)},
			{Name: "fd_foreign", Currency: domain.Foreign, Balance: n(10000), GrowthRate: d(0.04)},
			{Name: "bond_foreign", Currency: domain.Foreign, Balance: n(1000), GrowthRate: d(0.04)},
			{Name: "equity_foreign", Currency: domain.Foreign, Balance: n(10000), GrowthRate: d(0.08)},
			{Name: "locked_domestic", Currency: domain.Domestic, Balance: n(1000000), GrowthRate: d(0.12), LockUntilYear: &lockUntil},
		},
		WithdrawalOrder: append([]string(nil), domain.DefaultWithdrawalOrder...),
		Expenses: domain.ExpenseAssumptions{
			LivingMonthly:     n(50000),
			TravelYearly:      n(100000),
			TravelStartYear:   2026,
			TravelEndYear:     2036,
			InsuranceYearly:   n(100000),
			HouseRepairYearly: n(100000),
		},
		OneTimeEvents: events,
		Reinvestment:  domain.Reinvestment{TargetBucket: "equity_domestic", MonthlyAmount: n(25000)},
		Tax: domain.TaxSlabs{
			Slab1: n(1200000),
			Slab2: n(2000000),
			Rate2: d(0.20),
			Rate3: d(0.33),
		},
	}
}

func domesticEvent(year int, label string, amount int64) domain.OneTimeEvent {
	v := decimal.NewFromInt(amount)
	return domain.OneTimeEvent{Year: year, Label: label, AmountDomestic: &v}
}

func foreignEvent(year int, label string, amount int64) domain.OneTimeEvent {
	v := decimal.NewFromInt(amount)
	return domain.OneTimeEvent{Year: year, Label: label, AmountForeign: &v}
}
