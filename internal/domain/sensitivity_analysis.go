package domain

import (
	"github.com/shopspring/decimal"
)

// SensitivityParameter represents a parameter to sweep in sensitivity analysis
type SensitivityParameter struct {
	Name        string          `yaml:"name" json:"name"`
	MinValue    decimal.Decimal `yaml:"min_value" json:"minValue"`
	MaxValue    decimal.Decimal `yaml:"max_value" json:"maxValue"`
	Steps       int             `yaml:"steps" json:"steps"`
	BaseValue   decimal.Decimal `yaml:"base_value" json:"baseValue"`
	Unit        string          `yaml:"unit" json:"unit"` // "percent" or "amount"
	Description string          `yaml:"description" json:"description"`
}

// ParameterSensitivityAnalysis represents a complete parameter sensitivity analysis
type ParameterSensitivityAnalysis struct {
	Parameters   []SensitivityParameter `json:"parameters"`
	Baseline     SensitivityMetrics     `json:"baseline"`
	Results      []SensitivityResult    `json:"results"`
	Summary      SensitivitySummary     `json:"summary"`
	AnalysisType string                 `json:"analysisType"` // "single", "multi"
}

// SensitivityResult is one simulation in a sweep.
type SensitivityResult struct {
	ParameterValues map[string]decimal.Decimal `json:"parameterValues"`
	Label           string                     `json:"label"`
	KeyMetrics      SensitivityMetrics         `json:"keyMetrics"`
}

// SensitivityMetrics are the outcome figures compared across a sweep.
type SensitivityMetrics struct {
	MinimumPortfolioValue decimal.Decimal `json:"minimumPortfolioValue"`
	MinimumPortfolioYear  int             `json:"minimumPortfolioYear"`
	BufferHeld            bool            `json:"bufferHeld"`
	FirstBreachYear       *int            `json:"firstBreachYear,omitempty"`
	FinalPortfolioValue   decimal.Decimal `json:"finalPortfolioValue"`
	TotalShortfall        decimal.Decimal `json:"totalShortfall"`
	TotalUnfunded         decimal.Decimal `json:"totalUnfunded"`
	TotalTaxPaid          decimal.Decimal `json:"totalTaxPaid"`
	MinPortfolioChange    decimal.Decimal `json:"minPortfolioChange"`
	MinPortfolioChangePct decimal.Decimal `json:"minPortfolioChangePct"`
}

// MetricsFromResult extracts the sweep metrics from a finished simulation.
func MetricsFromResult(r *SimulationResult) SensitivityMetrics {
	m := SensitivityMetrics{
		MinimumPortfolioValue: r.MinimumPortfolioValue,
		MinimumPortfolioYear:  r.MinimumPortfolioYear,
		BufferHeld:            r.BufferHeld,
		FinalPortfolioValue:   r.FinalPortfolioValue,
		TotalShortfall:        r.TotalShortfall,
		TotalUnfunded:         r.TotalUnfunded,
		TotalTaxPaid:          r.TotalTaxPaid,
	}
	if r.FirstBreachYear != nil {
		y := *r.FirstBreachYear
		m.FirstBreachYear = &y
	}
	return m
}

// SensitivitySummary provides overall analysis summary
type SensitivitySummary struct {
	MostSensitiveParameter string                     `json:"mostSensitiveParameter"`
	SensitivityScores      map[string]decimal.Decimal `json:"sensitivityScores"`
	BufferBreaches         int                        `json:"bufferBreaches"`
	Recommendations        []string                   `json:"recommendations"`
	RiskLevel              string                     `json:"riskLevel"` // "LOW", "MEDIUM", "HIGH", "CRITICAL"
}

// SensitivityMatrix represents a 2D parameter sweep
type SensitivityMatrix struct {
	Parameter1      SensitivityParameter  `json:"parameter1"`
	Parameter2      SensitivityParameter  `json:"parameter2"`
	Baseline        SensitivityMetrics    `json:"baseline"`
	MatrixResults   [][]SensitivityResult `json:"matrixResults"`
	HeldCount       int                   `json:"heldCount"`
	Recommendations []string              `json:"recommendations"`
}

// Common sensitivity parameters. BaseValue is filled in from the parameter set at run time.
var (
	DomesticInflationParam = SensitivityParameter{
		Name:        "domestic_inflation",
		MinValue:    decimal.NewFromFloat(0.04),
		MaxValue:    decimal.NewFromFloat(0.09),
		Steps:       6,
		Unit:        "percent",
		Description: "Domestic inflation applied to living expenses",
	}

	FXGrowthParam = SensitivityParameter{
		Name:        "fx_growth",
		MinValue:    decimal.NewFromFloat(0.0),
		MaxValue:    decimal.NewFromFloat(0.04),
		Steps:       5,
		Unit:        "percent",
		Description: "Annual drift of the foreign-to-domestic exchange rate",
	}

	RentalIncreaseParam = SensitivityParameter{
		Name:        "rental_increase",
		MinValue:    decimal.NewFromFloat(0.0),
		MaxValue:    decimal.NewFromFloat(0.05),
		Steps:       6,
		Unit:        "percent",
		Description: "Annual rental escalation",
	}
)

// GetCommonParameters returns a list of common sensitivity parameters
func GetCommonParameters() []SensitivityParameter {
	return []SensitivityParameter{
		DomesticInflationParam,
		FXGrowthParam,
		RentalIncreaseParam,
	}
}

// DetermineRiskLevel grades the sweep. Any buffer breach is at least HIGH; a
// breach combined with a score of 3 or more is CRITICAL.
func (ss *SensitivitySummary) DetermineRiskLevel() string {
	worst := decimal.Zero
	for _, score := range ss.SensitivityScores {
		worst = decimal.Max(worst, score)
	}
	one, three := decimal.NewFromInt(1), decimal.NewFromInt(3)

	if ss.BufferBreaches > 0 {
		if worst.GreaterThanOrEqual(three) {
			return "CRITICAL"
		}
		return "HIGH"
	}
	if worst.LessThan(one) {
		return "LOW"
	}
	if worst.LessThan(three) {
		return "MEDIUM"
	}
	return "HIGH"
}

var riskAdvice = map[string][]string{
	"LOW":      {"Buffer survives every swept value", "Current assumptions appear reasonable"},
	"MEDIUM":   {"Buffer survives, but outcomes move noticeably; revisit assumptions yearly"},
	"HIGH":     {"Small changes in assumptions move the outcome a lot", "Consider a larger starting corpus or lower spending"},
	"CRITICAL": {"Buffer is breached across much of the swept range", "Lower spending or add to the corpus before retiring"},
}

var driverAdvice = map[string]string{
	"domestic_inflation": "Living costs drive the outcome; consider inflation-protected holdings",
	"living_monthly":     "Living costs drive the outcome; consider inflation-protected holdings",
	"fx_growth":          "Currency drift drives the outcome; review the foreign allocation",
	"rental_increase":    "Rental escalation drives the outcome",
}

// GenerateRecommendations returns advice for the risk level followed by a note
// on the parameter that moved the outcome most.
func (ss *SensitivitySummary) GenerateRecommendations() []string {
	out := append([]string{}, riskAdvice[ss.DetermineRiskLevel()]...)
	if note, ok := driverAdvice[ss.MostSensitiveParameter]; ok {
		out = append(out, note)
	}
	return out
}
