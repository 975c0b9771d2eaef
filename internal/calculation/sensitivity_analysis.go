package calculation

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"strings"

	"github.com/rgehrsitz/firesim/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// growthPrefix selects a single bucket's growth rate, e.g. "growth:equity_domestic".
const growthPrefix = "growth:"

// GrowthParameter names the growth-rate parameter of a bucket.
func GrowthParameter(bucket string) string {
	return growthPrefix + bucket
}

// SensitivityAnalyzer performs parameter sweep analysis. Each sweep point runs on
// its own deep copy of the parameter set, so points run concurrently.
type SensitivityAnalyzer struct {
	calculationEngine *CalculationEngine
	Workers           int
}

// NewSensitivityAnalyzer creates a new sensitivity analyzer
func NewSensitivityAnalyzer(engine *CalculationEngine) *SensitivityAnalyzer {
	if engine == nil {
		engine = NewCalculationEngine()
	}
	return &SensitivityAnalyzer{
		calculationEngine: engine,
		Workers:           runtime.GOMAXPROCS(0),
	}
}

// SweepableParameters lists the parameter names ApplyParameter understands, with
// one growth entry per bucket.
func SweepableParameters(params *domain.ParameterSet) []string {
	names := []string{"domestic_inflation", "fx_growth", "rental_increase", "living_monthly", "buffer"}
	for _, b := range params.Buckets {
		names = append(names, GrowthParameter(b.Name))
	}
	return names
}

// ParameterValue reads the current value of a sweepable parameter.
func ParameterValue(params *domain.ParameterSet, name string) (decimal.Decimal, error) {
	switch name {
	case "domestic_inflation":
		return params.Inflation.Domestic, nil
	case "fx_growth":
		return params.ExchangeRate.AnnualGrowth, nil
	case "rental_increase":
		return params.Rental.AnnualIncrease, nil
	case "living_monthly":
		return params.Expenses.LivingMonthly, nil
	case "buffer":
		return params.Buffer, nil
	}
	if bucket, ok := strings.CutPrefix(name, growthPrefix); ok {
		if b := params.Bucket(bucket); b != nil {
			return b.GrowthRate, nil
		}
		return decimal.Zero, fmt.Errorf("unknown bucket %q", bucket)
	}
	return decimal.Zero, fmt.Errorf("unknown sensitivity parameter %q", name)
}

// ApplyParameter sets a sweepable parameter on params in place.
func ApplyParameter(params *domain.ParameterSet, name string, value decimal.Decimal) error {
	switch name {
	case "domestic_inflation":
		params.Inflation.Domestic = value
	case "fx_growth":
		params.ExchangeRate.AnnualGrowth = value
	case "rental_increase":
		params.Rental.AnnualIncrease = value
	case "living_monthly":
		params.Expenses.LivingMonthly = value
	case "buffer":
		params.Buffer = value
	default:
		bucket, ok := strings.CutPrefix(name, growthPrefix)
		if !ok {
			return fmt.Errorf("unknown sensitivity parameter %q", name)
		}
		b := params.Bucket(bucket)
		if b == nil {
			return fmt.Errorf("unknown bucket %q", bucket)
		}
		b.GrowthRate = value
	}
	return nil
}

// AnalyzeSingleParameter sweeps one parameter from MinValue to MaxValue.
func (sa *SensitivityAnalyzer) AnalyzeSingleParameter(ctx context.Context, params *domain.ParameterSet, parameter domain.SensitivityParameter) (*domain.ParameterSensitivityAnalysis, error) {
	parameter, err := sa.withBaseValue(params, parameter)
	if err != nil {
		return nil, err
	}
	baseline, err := sa.run(ctx, params, nil)
	if err != nil {
		return nil, fmt.Errorf("baseline run failed: %w", err)
	}

	values := sa.generateParameterValues(parameter)
	points := make([]map[string]decimal.Decimal, len(values))
	for i, v := range values {
		points[i] = map[string]decimal.Decimal{parameter.Name: v}
	}
	results, err := sa.runPoints(ctx, params, points)
	if err != nil {
		return nil, err
	}
	for i := range results {
		applyDelta(&results[i].KeyMetrics, baseline)
	}

	return &domain.ParameterSensitivityAnalysis{
		Parameters:   []domain.SensitivityParameter{parameter},
		Baseline:     baseline,
		Results:      results,
		Summary:      sa.calculateSensitivitySummary(results, []domain.SensitivityParameter{parameter}, baseline),
		AnalysisType: "single",
	}, nil
}

// AnalyzeMultipleParameters sweeps each parameter independently and ranks them.
func (sa *SensitivityAnalyzer) AnalyzeMultipleParameters(ctx context.Context, params *domain.ParameterSet, parameters []domain.SensitivityParameter) (*domain.ParameterSensitivityAnalysis, error) {
	var (
		allResults []domain.SensitivityResult
		allParams  []domain.SensitivityParameter
		baseline   domain.SensitivityMetrics
	)
	for _, param := range parameters {
		analysis, err := sa.AnalyzeSingleParameter(ctx, params, param)
		if err != nil {
			return nil, fmt.Errorf("failed to analyze parameter %s: %w", param.Name, err)
		}
		baseline = analysis.Baseline
		allResults = append(allResults, analysis.Results...)
		allParams = append(allParams, analysis.Parameters...)
	}

	return &domain.ParameterSensitivityAnalysis{
		Parameters:   allParams,
		Baseline:     baseline,
		Results:      allResults,
		Summary:      sa.calculateSensitivitySummary(allResults, allParams, baseline),
		AnalysisType: "multi",
	}, nil
}

// AnalyzeParameterMatrix runs every combination of two parameter sweeps.
func (sa *SensitivityAnalyzer) AnalyzeParameterMatrix(ctx context.Context, params *domain.ParameterSet, param1, param2 domain.SensitivityParameter) (*domain.SensitivityMatrix, error) {
	param1, err := sa.withBaseValue(params, param1)
	if err != nil {
		return nil, err
	}
	param2, err = sa.withBaseValue(params, param2)
	if err != nil {
		return nil, err
	}
	baseline, err := sa.run(ctx, params, nil)
	if err != nil {
		return nil, fmt.Errorf("baseline run failed: %w", err)
	}

	values1 := sa.generateParameterValues(param1)
	values2 := sa.generateParameterValues(param2)
	points := make([]map[string]decimal.Decimal, 0, len(values1)*len(values2))
	for _, v1 := range values1 {
		for _, v2 := range values2 {
			points = append(points, map[string]decimal.Decimal{param1.Name: v1, param2.Name: v2})
		}
	}
	flat, err := sa.runPoints(ctx, params, points)
	if err != nil {
		return nil, err
	}

	matrix := &domain.SensitivityMatrix{
		Parameter1:    param1,
		Parameter2:    param2,
		Baseline:      baseline,
		MatrixResults: make([][]domain.SensitivityResult, len(values1)),
	}
	for i := range values1 {
		row := flat[i*len(values2) : (i+1)*len(values2)]
		for j := range row {
			applyDelta(&row[j].KeyMetrics, baseline)
			if row[j].KeyMetrics.BufferHeld {
				matrix.HeldCount++
			}
		}
		matrix.MatrixResults[i] = row
	}

	total := len(values1) * len(values2)
	switch {
	case matrix.HeldCount == total:
		matrix.Recommendations = []string{"Buffer holds for every combination"}
	case matrix.HeldCount == 0:
		matrix.Recommendations = []string{"Buffer is breached for every combination", "Consider more conservative assumptions"}
	default:
		matrix.Recommendations = []string{
			fmt.Sprintf("Buffer holds in %d of %d combinations", matrix.HeldCount, total),
			"Review the combinations where the buffer is breached",
		}
	}
	return matrix, nil
}

func (sa *SensitivityAnalyzer) withBaseValue(params *domain.ParameterSet, p domain.SensitivityParameter) (domain.SensitivityParameter, error) {
	base, err := ParameterValue(params, p.Name)
	if err != nil {
		return p, err
	}
	p.BaseValue = base
	return p, nil
}

// runPoints simulates each point concurrently. Results keep the order of points.
func (sa *SensitivityAnalyzer) runPoints(ctx context.Context, params *domain.ParameterSet, points []map[string]decimal.Decimal) ([]domain.SensitivityResult, error) {
	results := make([]domain.SensitivityResult, len(points))
	g, gctx := errgroup.WithContext(ctx)
	workers := sa.Workers
	if workers <= 0 {
		workers = 1
	}
	g.SetLimit(workers)

	for i, point := range points {
		g.Go(func() error {
			metrics, err := sa.run(gctx, params, point)
			if err != nil {
				return fmt.Errorf("failed to run scenario for %s: %w", pointLabel(point), err)
			}
			results[i] = domain.SensitivityResult{
				ParameterValues: point,
				Label:           pointLabel(point),
				KeyMetrics:      metrics,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (sa *SensitivityAnalyzer) run(ctx context.Context, params *domain.ParameterSet, overrides map[string]decimal.Decimal) (domain.SensitivityMetrics, error) {
	modified := params.DeepCopy()
	for name, value := range overrides {
		if err := ApplyParameter(modified, name, value); err != nil {
			return domain.SensitivityMetrics{}, err
		}
	}
	result, err := sa.calculationEngine.RunSimulation(ctx, modified)
	if err != nil {
		return domain.SensitivityMetrics{}, err
	}
	return domain.MetricsFromResult(result), nil
}

// generateParameterValues generates values for a parameter sweep
func (sa *SensitivityAnalyzer) generateParameterValues(param domain.SensitivityParameter) []decimal.Decimal {
	if param.Steps <= 1 {
		return []decimal.Decimal{param.BaseValue}
	}

	values := make([]decimal.Decimal, 0, param.Steps)
	stepSize := param.MaxValue.Sub(param.MinValue).Div(decimal.NewFromInt(int64(param.Steps - 1)))
	for i := 0; i < param.Steps; i++ {
		values = append(values, param.MinValue.Add(stepSize.Mul(decimal.NewFromInt(int64(i)))))
	}
	return values
}

func applyDelta(m *domain.SensitivityMetrics, baseline domain.SensitivityMetrics) {
	m.MinPortfolioChange = m.MinimumPortfolioValue.Sub(baseline.MinimumPortfolioValue)
	if !baseline.MinimumPortfolioValue.IsZero() {
		m.MinPortfolioChangePct = m.MinPortfolioChange.Div(baseline.MinimumPortfolioValue.Abs()).Mul(decimal.NewFromInt(100))
	}
}

// calculateSensitivitySummary scores each parameter by the largest elasticity of the
// minimum portfolio value: percent change in the minimum per percent change in the parameter.
// Parameters with a zero base value are scored per unit change instead.
func (sa *SensitivityAnalyzer) calculateSensitivitySummary(results []domain.SensitivityResult, parameters []domain.SensitivityParameter, baseline domain.SensitivityMetrics) domain.SensitivitySummary {
	scores := make(map[string]decimal.Decimal, len(parameters))
	breaches := 0
	for _, r := range results {
		if !r.KeyMetrics.BufferHeld {
			breaches++
		}
	}

	hundred := decimal.NewFromInt(100)
	mostSensitive := ""
	maxScore := decimal.Zero
	for _, param := range parameters {
		score := decimal.Zero
		for _, r := range results {
			value, ok := r.ParameterValues[param.Name]
			if !ok || len(r.ParameterValues) != 1 || value.Equal(param.BaseValue) {
				continue
			}
			change := value.Sub(param.BaseValue)
			if !param.BaseValue.IsZero() {
				change = change.Div(param.BaseValue.Abs()).Mul(hundred)
			} else {
				change = change.Mul(hundred)
			}
			if change.IsZero() {
				continue
			}
			s := r.KeyMetrics.MinPortfolioChangePct.Div(change).Abs()
			if s.GreaterThan(score) {
				score = s
			}
		}
		scores[param.Name] = score.Round(4)
		if mostSensitive == "" || score.GreaterThan(maxScore) {
			maxScore = score
			mostSensitive = param.Name
		}
	}

	summary := domain.SensitivitySummary{
		MostSensitiveParameter: mostSensitive,
		SensitivityScores:      scores,
		BufferBreaches:         breaches,
	}
	summary.RiskLevel = summary.DetermineRiskLevel()
	summary.Recommendations = summary.GenerateRecommendations()
	if baseline.BufferHeld && breaches > 0 {
		summary.Recommendations = append(summary.Recommendations,
			fmt.Sprintf("Baseline holds the buffer but %d swept value(s) breach it", breaches))
	}
	return summary
}

func pointLabel(point map[string]decimal.Decimal) string {
	parts := make([]string, 0, len(point))
	for name, v := range point {
		parts = append(parts, fmt.Sprintf("%s=%s", name, v.Round(4).String()))
	}
	slices.Sort(parts)
	return strings.Join(parts, ",")
}
