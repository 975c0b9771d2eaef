package breakeven

import (
	"context"
	"fmt"

	"github.com/rgehrsitz/firesim/internal/calculation"
	"github.com/rgehrsitz/firesim/internal/domain"
	"github.com/shopspring/decimal"
)

// Solver searches for the lump sum that makes a plan fully funded.
type Solver struct {
	CalcEngine *calculation.CalculationEngine
	Options    SolverOptions
}

// NewSolver creates a new top-up solver
func NewSolver(calcEngine *calculation.CalculationEngine, options SolverOptions) *Solver {
	return &Solver{
		CalcEngine: calcEngine,
		Options:    options,
	}
}

// NewDefaultSolver creates a solver with default options
func NewDefaultSolver(calcEngine *calculation.CalculationEngine) *Solver {
	return NewSolver(calcEngine, DefaultSolverOptions())
}

// SolveTopUp finds the smallest extra starting balance in req.Bucket for which
// every year is fully funded and the buffer holds. The first upper bound is the
// baseline's shortfall plus its unfunded withdrawals; it doubles until the plan
// is funded, then the bracket is bisected down to the tolerance. The reported
// amount always comes from a funded run.
func (s *Solver) SolveTopUp(ctx context.Context, params *domain.ParameterSet, req TopUpRequest) (*TopUpResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.MaxIterations == 0 {
		req.MaxIterations = s.Options.MaxIterations
	}
	if req.Tolerance.IsZero() {
		req.Tolerance = s.Options.Tolerance
	}
	if req.UpperBound.IsZero() {
		req.UpperBound = s.Options.MaxTopUp
	}

	if req.Bucket == "" {
		order := calculation.ResolveWithdrawalOrder(params)
		if len(order) == 0 {
			return nil, &SolverError{Operation: "solve_top_up", Message: "no bucket to top up"}
		}
		req.Bucket = order[0]
	}
	bucket := params.Bucket(req.Bucket)
	if bucket == nil {
		return nil, &SolverError{
			Operation: "solve_top_up",
			Message:   fmt.Sprintf("bucket %q not found", req.Bucket),
		}
	}

	result := &TopUpResult{
		Request:        req,
		Bucket:         bucket.Name,
		Currency:       bucket.Currency,
		TopUp:          decimal.Zero,
		TopUpDomestic:  decimal.Zero,
		DomesticSymbol: params.DomesticCurrency,
		ForeignSymbol:  params.ForeignCurrency,
	}

	baseline, err := s.evaluate(ctx, params, req.Bucket, decimal.Zero)
	if err != nil {
		return nil, err
	}
	result.Baseline = domain.MetricsFromResult(baseline)
	result.Solved = result.Baseline
	if Funded(baseline) {
		result.Success = true
		result.AlreadyFunded = true
		result.ConvergenceInfo = "Plan is already funded without a top-up"
		return result, nil
	}

	lo := decimal.Zero
	hi := s.Options.InitialUpper
	if !hi.IsPositive() {
		hi = decimal.Max(baseline.TotalShortfall.Add(baseline.TotalUnfunded), params.Buffer, decimal.NewFromInt(1))
	}
	if hi.GreaterThan(req.UpperBound) {
		hi = req.UpperBound
	}
	two := decimal.NewFromInt(2)

	var held *domain.SimulationResult
	for {
		result.Iterations++
		run, err := s.evaluate(ctx, params, req.Bucket, hi)
		if err != nil {
			return nil, err
		}
		if Funded(run) {
			held = run
			break
		}
		if hi.GreaterThanOrEqual(req.UpperBound) || result.Iterations >= req.MaxIterations {
			return nil, &SolverError{
				Operation: "solve_top_up",
				Message:   fmt.Sprintf("plan is not funded even with a top-up of %s in %s", hi.StringFixed(0), req.Bucket),
			}
		}
		lo = hi
		hi = decimal.Min(hi.Mul(two), req.UpperBound)
	}

	for hi.Sub(lo).GreaterThan(req.Tolerance) && result.Iterations < req.MaxIterations {
		result.Iterations++
		mid := lo.Add(hi).Div(two)
		run, err := s.evaluate(ctx, params, req.Bucket, mid)
		if err != nil {
			return nil, err
		}
		if Funded(run) {
			hi = mid
			held = run
		} else {
			lo = mid
		}
	}

	result.Success = true
	result.TopUp = hi
	result.TopUpDomestic = hi
	if bucket.Currency == domain.Foreign {
		converter := calculation.NewCurrencyConverter(params.ExchangeRate, params.StartYear)
		result.TopUpDomestic = converter.ToDomestic(hi, params.StartYear)
	}
	result.Solved = domain.MetricsFromResult(held)
	if hi.Sub(lo).GreaterThan(req.Tolerance) {
		result.ConvergenceInfo = fmt.Sprintf("Max iterations (%d) reached", req.MaxIterations)
	} else {
		result.ConvergenceInfo = fmt.Sprintf("Converged within %s", req.Tolerance.StringFixed(0))
	}
	return result, nil
}

// Funded reports whether every year was paid for in full from buckets the
// waterfall can reach, without the portfolio ending any year below the buffer.
func Funded(r *domain.SimulationResult) bool {
	return r.BufferHeld && !r.TotalShortfall.IsPositive() && !r.TotalUnfunded.IsPositive()
}

// evaluate runs the projection with amount added to the named bucket.
func (s *Solver) evaluate(ctx context.Context, params *domain.ParameterSet, bucket string, amount decimal.Decimal) (*domain.SimulationResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	cp := params.DeepCopy()
	b := cp.Bucket(bucket)
	b.Balance = b.Balance.Add(amount)

	run, err := s.CalcEngine.RunSimulation(ctx, cp)
	if err != nil {
		return nil, &SolverError{
			Operation: "solve_top_up",
			Message:   fmt.Sprintf("failed to run projection with top-up %s", amount.StringFixed(0)),
			Cause:     err,
		}
	}
	return run, nil
}
