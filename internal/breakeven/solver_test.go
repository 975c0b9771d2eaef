package breakeven

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rgehrsitz/firesim/internal/calculation"
	"github.com/rgehrsitz/firesim/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// shortParams needs 600,000 a year for three years from a 1,000,000 bucket with
// no growth and no tax, so the plan is exactly 800,000 short.
func shortParams() *domain.ParameterSet {
	return &domain.ParameterSet{
		StartYear:        2025,
		StartAge:         40,
		EndAge:           42,
		DomesticCurrency: "INR",
		ForeignCurrency:  "USD",
		Rental:           domain.RentalSchedule{CutoverYear: 2035},
		ExchangeRate:     domain.ExchangeRateAssumptions{BaseRate: dec("80")},
		Buckets: []domain.AssetBucket{
			{Name: "fd_domestic", Currency: domain.Domestic, Balance: dec("1000000")},
			{Name: "fd_foreign", Currency: domain.Foreign, Balance: decimal.Zero},
		},
		WithdrawalOrder: []string{"fd_domestic", "fd_foreign"},
		Expenses:        domain.ExpenseAssumptions{LivingMonthly: dec("50000")},
		Tax: domain.TaxSlabs{
			Slab1: dec("10000000"),
			Slab2: dec("20000000"),
			Rate2: dec("0.20"),
			Rate3: dec("0.30"),
		},
	}
}

// lockedParams spends 600,000 a year from a 1,000,000 bucket. A 3,000,000 bucket
// unlocks in 2026 but is not in the withdrawal order, so it counts as withdrawable
// without ever being drawn: 200,000 goes unfunded in 2026 and 600,000 in 2027.
func lockedParams() *domain.ParameterSet {
	p := shortParams()
	lock := 2026
	p.Buckets = []domain.AssetBucket{
		{Name: "fd_domestic", Currency: domain.Domestic, Balance: dec("1000000")},
		{Name: "locked_equity", Currency: domain.Domestic, Balance: dec("3000000"), LockUntilYear: &lock},
	}
	p.WithdrawalOrder = []string{"fd_domestic"}
	return p
}

func totalUnfunded(r *domain.SimulationResult) decimal.Decimal {
	sum := decimal.Zero
	for _, rec := range r.Records {
		sum = sum.Add(rec.UnfundedWithdrawal)
	}
	return sum
}

func TestNewDefaultSolver(t *testing.T) {
	engine := calculation.NewCalculationEngine()
	solver := NewDefaultSolver(engine)

	require.NotNil(t, solver)
	assert.Same(t, engine, solver.CalcEngine)
	assert.True(t, solver.Options.Tolerance.Equal(DefaultSolverOptions().Tolerance))
	assert.Equal(t, DefaultSolverOptions().MaxIterations, solver.Options.MaxIterations)
}

func TestSolveTopUp_DomesticBucket(t *testing.T) {
	solver := NewDefaultSolver(calculation.NewCalculationEngine())

	result, err := solver.SolveTopUp(context.Background(), shortParams(), TopUpRequest{Bucket: "fd_domestic"})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.False(t, result.AlreadyFunded)
	assert.True(t, result.TopUp.Equal(dec("800000")), "expected 800000, got %s", result.TopUp)
	assert.True(t, result.TopUpDomestic.Equal(result.TopUp), "Domestic bucket needs no conversion")
	assert.Equal(t, 11, result.Iterations, "One upper bound plus ten halvings down to the tolerance")
	assert.True(t, result.Baseline.TotalShortfall.Equal(dec("800000")))
	assert.True(t, result.Solved.TotalShortfall.IsZero())
	assert.True(t, result.Solved.BufferHeld)
	assert.Contains(t, result.ConvergenceInfo, "Converged")
}

func TestSolveTopUp_DefaultsToFirstWithdrawalBucket(t *testing.T) {
	solver := NewDefaultSolver(calculation.NewCalculationEngine())

	result, err := solver.SolveTopUp(context.Background(), shortParams(), TopUpRequest{})
	require.NoError(t, err)
	assert.Equal(t, "fd_domestic", result.Bucket)
}

func TestSolveTopUp_ForeignBucket(t *testing.T) {
	solver := NewDefaultSolver(calculation.NewCalculationEngine())

	result, err := solver.SolveTopUp(context.Background(), shortParams(), TopUpRequest{
		Bucket:    "fd_foreign",
		Tolerance: dec("1"),
	})
	require.NoError(t, err)

	// 800,000 at 80 per unit
	assert.True(t, result.TopUp.GreaterThanOrEqual(dec("10000")), "got %s", result.TopUp)
	assert.True(t, result.TopUp.LessThan(dec("10001")), "got %s", result.TopUp)
	assert.True(t, result.TopUpDomestic.Equal(result.TopUp.Mul(dec("80"))))
	assert.Equal(t, domain.Foreign, result.Currency)
}

func TestSolveTopUp_AlreadyFunded(t *testing.T) {
	params := shortParams()
	params.Buckets[0].Balance = dec("2000000")
	solver := NewDefaultSolver(calculation.NewCalculationEngine())

	result, err := solver.SolveTopUp(context.Background(), params, TopUpRequest{Bucket: "fd_domestic"})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.True(t, result.AlreadyFunded)
	assert.True(t, result.TopUp.IsZero())
	assert.Equal(t, 0, result.Iterations)
}

func TestSolveTopUp_Errors(t *testing.T) {
	solver := NewDefaultSolver(calculation.NewCalculationEngine())

	tests := []struct {
		name    string
		req     TopUpRequest
		wantMsg string
	}{
		{"unknown bucket", TopUpRequest{Bucket: "nope"}, "not found"},
		{"negative bound", TopUpRequest{UpperBound: dec("-1")}, "upper bound"},
		{"negative tolerance", TopUpRequest{Tolerance: dec("-1")}, "tolerance"},
		{"bound too low", TopUpRequest{Bucket: "fd_domestic", UpperBound: dec("100000")}, "not funded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := solver.SolveTopUp(context.Background(), shortParams(), tt.req)
			require.Error(t, err)

			var serr *SolverError
			require.True(t, errors.As(err, &serr), "expected SolverError, got %T", err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestSolveTopUp_InvalidParameters(t *testing.T) {
	params := shortParams()
	params.EndAge = params.StartAge

	_, err := NewDefaultSolver(calculation.NewCalculationEngine()).SolveTopUp(context.Background(), params, TopUpRequest{Bucket: "fd_domestic"})
	require.Error(t, err)

	var serr *SolverError
	require.True(t, errors.As(err, &serr))
	assert.NotNil(t, errors.Unwrap(serr), "Should carry the validation error as its cause")
	assert.Contains(t, err.Error(), "end age")
}

func TestSolveTopUp_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDefaultSolver(calculation.NewCalculationEngine()).SolveTopUp(ctx, shortParams(), TopUpRequest{Bucket: "fd_domestic"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestSolveTopUp_DoesNotModifyInput(t *testing.T) {
	params := shortParams()
	_, err := NewDefaultSolver(calculation.NewCalculationEngine()).SolveTopUp(context.Background(), params, TopUpRequest{Bucket: "fd_domestic"})
	require.NoError(t, err)
	assert.True(t, params.Buckets[0].Balance.Equal(dec("1000000")))
}

func TestCompareBuckets(t *testing.T) {
	solver := NewDefaultSolver(calculation.NewCalculationEngine())
	solver.Options.Workers = 2

	comparison, err := solver.CompareBuckets(context.Background(), shortParams(), nil, TopUpRequest{})
	require.NoError(t, err)

	require.Len(t, comparison.Results, 2)
	assert.Equal(t, "fd_domestic", comparison.Results[0].Bucket, "Results keep candidate order")
	assert.Equal(t, "fd_foreign", comparison.Results[1].Bucket)
	require.NotNil(t, comparison.Cheapest)
	assert.Equal(t, "fd_domestic", comparison.Cheapest.Bucket)
	require.NotEmpty(t, comparison.Recommendations)
	assert.True(t, strings.HasPrefix(comparison.Recommendations[0], "Cheapest top-up: 800000 into fd_domestic"))
}

func TestCompareBuckets_NoneSucceed(t *testing.T) {
	solver := NewDefaultSolver(calculation.NewCalculationEngine())

	_, err := solver.CompareBuckets(context.Background(), shortParams(), []string{"nope"}, TopUpRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no bucket top-up funds the plan")
}

func TestTableFormatter(t *testing.T) {
	solver := NewDefaultSolver(calculation.NewCalculationEngine())
	result, err := solver.SolveTopUp(context.Background(), shortParams(), TopUpRequest{Bucket: "fd_domestic"})
	require.NoError(t, err)

	tf := &TableFormatter{}
	out := tf.Format(result)
	assert.Contains(t, out, "TOP-UP NEEDED TO FUND THE PLAN")
	assert.Contains(t, out, "Top-up:              800000 INR")
	assert.Contains(t, out, "Total shortfall")

	comparison, err := solver.CompareBuckets(context.Background(), shortParams(), nil, TopUpRequest{})
	require.NoError(t, err)
	assert.Contains(t, tf.FormatComparison(comparison), "fd_foreign")

	js, err := (&JSONFormatter{}).Format(result)
	require.NoError(t, err)
	assert.Contains(t, js, `"bucket": "fd_domestic"`)
}

func TestFunded_RequiresReachableWithdrawals(t *testing.T) {
	baseline, err := calculation.NewCalculationEngine().RunSimulation(context.Background(), lockedParams())
	require.NoError(t, err)

	assert.True(t, baseline.BufferHeld)
	assert.True(t, baseline.TotalShortfall.IsZero())
	assert.True(t, baseline.TotalUnfunded.Equal(dec("800000")), "got %s", baseline.TotalUnfunded)
	assert.True(t, baseline.TotalUnfunded.Equal(totalUnfunded(baseline)))
	assert.False(t, Funded(baseline))
}

func TestSolveTopUp_CoversUnfundedWithdrawals(t *testing.T) {
	engine := calculation.NewCalculationEngine()
	params := lockedParams()

	result, err := NewDefaultSolver(engine).SolveTopUp(context.Background(), params, TopUpRequest{Bucket: "fd_domestic"})
	require.NoError(t, err)
	assert.False(t, result.AlreadyFunded)
	assert.True(t, result.TopUp.Equal(dec("800000")), "expected 800000, got %s", result.TopUp)
	assert.True(t, result.Baseline.TotalUnfunded.Equal(dec("800000")))
	assert.True(t, result.Solved.TotalUnfunded.IsZero())

	topped := params.DeepCopy()
	topped.Bucket("fd_domestic").Balance = topped.Bucket("fd_domestic").Balance.Add(result.TopUp)
	run, err := engine.RunSimulation(context.Background(), topped)
	require.NoError(t, err)
	assert.True(t, totalUnfunded(run).IsZero(), "every withdrawal is drawn from a bucket")
}

func TestCompareBuckets_SkipsUnreachableBucket(t *testing.T) {
	solver := NewDefaultSolver(calculation.NewCalculationEngine())

	comparison, err := solver.CompareBuckets(context.Background(), lockedParams(), nil, TopUpRequest{})
	require.NoError(t, err)

	require.Len(t, comparison.Results, 1, "topping up the bucket outside the order never funds the plan")
	require.NotNil(t, comparison.Cheapest)
	assert.Equal(t, "fd_domestic", comparison.Cheapest.Bucket)
	assert.True(t, comparison.Cheapest.Solved.TotalUnfunded.IsZero())
}
