package calculation

import (
	"context"
	"fmt"

	"github.com/rgehrsitz/firesim/internal/domain"
)

// CalculationEngine runs deterministic portfolio projections.
// It holds no per-run state, so one engine can serve concurrent runs.
type CalculationEngine struct {
	Logger Logger
	Debug  bool // log one line per simulated year
}

// NewCalculationEngine creates a new calculation engine
func NewCalculationEngine() *CalculationEngine {
	return &CalculationEngine{Logger: NopLogger{}}
}

// SetLogger sets the logger for the calculation engine; nil falls back to a no-op logger.
func (ce *CalculationEngine) SetLogger(l Logger) {
	if l == nil {
		ce.Logger = NopLogger{}
		return
	}
	ce.Logger = l
}

func (ce *CalculationEngine) logger() Logger {
	if ce.Logger == nil {
		return NopLogger{}
	}
	return ce.Logger
}

// RunSimulation validates params and projects every year from the start age to the
// end age inclusive. params is never modified. Each year starts from the previous
// year's ending balances; funding gaps are recorded, never returned as errors.
func (ce *CalculationEngine) RunSimulation(ctx context.Context, params *domain.ParameterSet) (*domain.SimulationResult, error) {
	if params == nil {
		return nil, fmt.Errorf("parameter set is required")
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	run := newRunState(params.DeepCopy())
	for _, s := range run.params.OneTimeEvents.Skipped {
		ce.logger().Warnf("skipping one-time event #%d: %s", s.Index, s.Reason)
	}

	result := &domain.SimulationResult{
		Records:          make([]domain.YearRecord, 0, run.params.Years()),
		Buffer:           run.params.Buffer,
		DomesticCurrency: run.params.DomesticCurrency,
		ForeignCurrency:  run.params.ForeignCurrency,
		BucketOrder:      run.columns,
	}

	for year := run.params.StartYear; year <= run.params.EndYear(); year++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		rec, err := ce.projectYear(run, year)
		if err != nil {
			return nil, fmt.Errorf("year %d: %w", year, err)
		}
		result.Records = append(result.Records, rec)
	}

	result.Summarize()
	ce.logger().Infof("simulated %d years: min portfolio %s in %d, buffer held=%t",
		len(result.Records), result.MinimumPortfolioValue.StringFixed(0), result.MinimumPortfolioYear, result.BufferHeld)
	return result, nil
}

// runState is everything one run mutates. It is never shared between runs.
type runState struct {
	params    *domain.ParameterSet
	portfolio *AssetPortfolio
	scheduler *ExpenseScheduler
	taxCalc   TaxCalculator
	order     []string
	columns   []string
}

func newRunState(params *domain.ParameterSet) *runState {
	converter := NewCurrencyConverter(params.ExchangeRate, params.StartYear)
	order := ResolveWithdrawalOrder(params)
	return &runState{
		params:    params,
		portfolio: NewAssetPortfolio(params.Buckets, converter),
		scheduler: NewExpenseScheduler(params),
		taxCalc:   NewSlabTaxCalculator(params.Tax),
		order:     order,
		columns:   breakdownColumns(params, order),
	}
}

// ResolveWithdrawalOrder returns the configured order, or the default order
// restricted to unlocked buckets that exist when none is configured.
func ResolveWithdrawalOrder(params *domain.ParameterSet) []string {
	if len(params.WithdrawalOrder) > 0 {
		return append([]string(nil), params.WithdrawalOrder...)
	}
	var order []string
	for _, name := range domain.DefaultWithdrawalOrder {
		if b := params.Bucket(name); b != nil && b.LockUntilYear == nil {
			order = append(order, name)
		}
	}
	return order
}

// breakdownColumns lists every bucket that can appear in a withdrawal breakdown:
// the withdrawal order, then the locked bucket when it can be released.
func breakdownColumns(params *domain.ParameterSet, order []string) []string {
	cols := append([]string(nil), order...)
	if locked := params.LockedBucket(); locked != nil && params.LockedReleaseToWaterfall {
		cols = append(cols, locked.Name)
	}
	return cols
}
