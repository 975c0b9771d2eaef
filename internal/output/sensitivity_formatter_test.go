package output

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/rgehrsitz/firesim/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestAnalysis() *domain.ParameterSensitivityAnalysis {
	param := domain.FXGrowthParam
	param.BaseValue = decimal.NewFromFloat(0.02)
	breach := 2040
	return &domain.ParameterSensitivityAnalysis{
		Parameters: []domain.SensitivityParameter{param},
		Baseline: domain.SensitivityMetrics{
			MinimumPortfolioValue: decimal.NewFromInt(6000000),
			MinimumPortfolioYear:  2050,
			BufferHeld:            true,
			FinalPortfolioValue:   decimal.NewFromInt(8000000),
		},
		Results: []domain.SensitivityResult{
			{
				ParameterValues: map[string]decimal.Decimal{"fx_growth": decimal.Zero},
				Label:           "fx_growth=0",
				KeyMetrics: domain.SensitivityMetrics{
					MinimumPortfolioValue: decimal.NewFromInt(4000000),
					MinimumPortfolioYear:  2045,
					FirstBreachYear:       &breach,
					FinalPortfolioValue:   decimal.NewFromInt(4500000),
					MinPortfolioChangePct: decimal.NewFromInt(-33),
				},
			},
			{
				ParameterValues: map[string]decimal.Decimal{"fx_growth": decimal.NewFromFloat(0.04)},
				Label:           "fx_growth=0.04",
				KeyMetrics: domain.SensitivityMetrics{
					MinimumPortfolioValue: decimal.NewFromInt(7000000),
					MinimumPortfolioYear:  2050,
					BufferHeld:            true,
					FinalPortfolioValue:   decimal.NewFromInt(9000000),
					MinPortfolioChangePct: decimal.NewFromInt(16),
				},
			},
		},
		Summary: domain.SensitivitySummary{
			MostSensitiveParameter: "fx_growth",
			SensitivityScores:      map[string]decimal.Decimal{"fx_growth": decimal.NewFromFloat(0.8)},
			BufferBreaches:         1,
			RiskLevel:              "HIGH",
			Recommendations:        []string{"Plan is sensitive to parameter changes"},
		},
		AnalysisType: "single",
	}
}

func buildTestMatrix() *domain.SensitivityMatrix {
	p1 := domain.DomesticInflationParam
	p2 := domain.FXGrowthParam
	cell := func(v1, v2 float64, held bool) domain.SensitivityResult {
		return domain.SensitivityResult{
			ParameterValues: map[string]decimal.Decimal{
				p1.Name: decimal.NewFromFloat(v1),
				p2.Name: decimal.NewFromFloat(v2),
			},
			KeyMetrics: domain.SensitivityMetrics{MinimumPortfolioValue: decimal.NewFromInt(1000000), BufferHeld: held},
		}
	}
	return &domain.SensitivityMatrix{
		Parameter1: p1,
		Parameter2: p2,
		MatrixResults: [][]domain.SensitivityResult{
			{cell(0.04, 0, true), cell(0.04, 0.04, true)},
			{cell(0.09, 0, false), cell(0.09, 0.04, true)},
		},
		HeldCount: 3,
	}
}

func TestSensitivityConsoleFormatter_Single(t *testing.T) {
	out, err := SensitivityConsoleFormatter{Currency: "INR"}.FormatSensitivityAnalysis(buildTestAnalysis())
	require.NoError(t, err)

	assert.Contains(t, out, "SENSITIVITY ANALYSIS: FX GROWTH")
	assert.Contains(t, out, "Base Case: fx_growth = 2.00%")
	assert.Contains(t, out, "fx_growth=0.04")
	assert.Contains(t, out, "2040", "Should show the breach year")
	assert.Contains(t, out, "BUFFER BREACHES: 1 of 2 runs")
	assert.Contains(t, out, "RISK LEVEL: HIGH")
}

func TestSensitivityConsoleFormatter_Matrix(t *testing.T) {
	out, err := SensitivityConsoleFormatter{}.FormatSensitivityAnalysis(buildTestMatrix())
	require.NoError(t, err)

	assert.Contains(t, out, "SENSITIVITY MATRIX ANALYSIS")
	assert.Contains(t, out, "₹1,000,000*", "Breached cells should be marked")
	assert.Contains(t, out, "BUFFER HELD: 3 of 4 combinations")
}

func TestSensitivityConsoleFormatter_Errors(t *testing.T) {
	_, err := SensitivityConsoleFormatter{}.FormatSensitivityAnalysis("nope")
	assert.Error(t, err)

	_, err = SensitivityConsoleFormatter{}.FormatSensitivityAnalysis(&domain.ParameterSensitivityAnalysis{})
	assert.Error(t, err)
}

func TestSensitivityCSVFormatter(t *testing.T) {
	out, err := SensitivityCSVFormatter{}.FormatSensitivityAnalysis(buildTestMatrix())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5, "Header plus one row per matrix cell")
	assert.True(t, strings.HasPrefix(lines[0], "domestic_inflation,fx_growth,label,"))
	assert.True(t, strings.HasPrefix(lines[3], "0.09,0,"))
}

func TestSensitivityJSONFormatter(t *testing.T) {
	out, err := SensitivityJSONFormatter{}.FormatSensitivityAnalysis(buildTestAnalysis())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "single", decoded["analysisType"])
}

func TestNewSensitivityFormatter(t *testing.T) {
	assert.Equal(t, "csv", NewSensitivityFormatter("csv", "INR").Name())
	assert.Equal(t, "json", NewSensitivityFormatter("JSON", "INR").Name())
	assert.Equal(t, "console", NewSensitivityFormatter("table", "INR").Name())
	assert.Equal(t, "console", NewSensitivityFormatter("unknown", "INR").Name())
}
