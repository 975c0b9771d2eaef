package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rgehrsitz/firesim/internal/domain"
	"github.com/shopspring/decimal"
)

// SensitivityFormatter renders a sweep or matrix analysis.
type SensitivityFormatter interface {
	FormatSensitivityAnalysis(analysis interface{}) (string, error)
	Name() string
}

// SensitivityConsoleFormatter formats sensitivity analysis output for console
type SensitivityConsoleFormatter struct {
	Currency string
}

func (scf SensitivityConsoleFormatter) Name() string { return "console" }

func (scf SensitivityConsoleFormatter) FormatSensitivityAnalysis(analysis interface{}) (string, error) {
	var buf bytes.Buffer

	switch a := analysis.(type) {
	case *domain.ParameterSensitivityAnalysis:
		return scf.formatSingleAnalysis(&buf, a)
	case *domain.SensitivityMatrix:
		return scf.formatMatrixAnalysis(&buf, a)
	default:
		return "", fmt.Errorf("unsupported analysis type: %T", analysis)
	}
}

func (scf SensitivityConsoleFormatter) money(d decimal.Decimal) string {
	if scf.Currency == "" {
		return FormatMoneyWhole(d, "INR")
	}
	return FormatMoneyWhole(d, scf.Currency)
}

func formatParamValue(p domain.SensitivityParameter, v decimal.Decimal) string {
	if p.Unit == "percent" {
		return FormatPercentage(v)
	}
	return v.StringFixed(0)
}

func (scf SensitivityConsoleFormatter) formatSingleAnalysis(buf *bytes.Buffer, analysis *domain.ParameterSensitivityAnalysis) (string, error) {
	if len(analysis.Parameters) == 0 || len(analysis.Results) == 0 {
		return "", fmt.Errorf("no parameters or results in analysis")
	}

	if len(analysis.Parameters) == 1 {
		param := analysis.Parameters[0]
		fmt.Fprintf(buf, "SENSITIVITY ANALYSIS: %s\n", strings.ToUpper(strings.ReplaceAll(param.Name, "_", " ")))
		fmt.Fprintf(buf, "=================================================================\n")
		fmt.Fprintf(buf, "Base Case: %s = %s\n", param.Name, formatParamValue(param, param.BaseValue))
		fmt.Fprintf(buf, "Range: %s to %s (%d steps)\n",
			formatParamValue(param, param.MinValue), formatParamValue(param, param.MaxValue), param.Steps)
		if param.Description != "" {
			fmt.Fprintf(buf, "Description: %s\n", param.Description)
		}
	} else {
		fmt.Fprintf(buf, "MULTI-PARAMETER SENSITIVITY ANALYSIS\n")
		fmt.Fprintf(buf, "=================================================================\n")
	}
	fmt.Fprintln(buf)

	fmt.Fprintf(buf, "%-28s %-18s %-6s %-8s %-8s %-18s %-10s\n",
		"Value", "Min Portfolio", "Year", "Held", "Breach", "Final", "Change")
	fmt.Fprintln(buf, strings.Repeat("-", 100))
	fmt.Fprintf(buf, "%-28s %-18s %-6d %-8s %-8s %-18s %-10s\n",
		"baseline",
		scf.money(analysis.Baseline.MinimumPortfolioValue),
		analysis.Baseline.MinimumPortfolioYear,
		yesNo(analysis.Baseline.BufferHeld),
		breachYear(analysis.Baseline.FirstBreachYear),
		scf.money(analysis.Baseline.FinalPortfolioValue),
		"")
	for _, result := range analysis.Results {
		fmt.Fprintf(buf, "%-28s %-18s %-6d %-8s %-8s %-18s %-10s\n",
			result.Label,
			scf.money(result.KeyMetrics.MinimumPortfolioValue),
			result.KeyMetrics.MinimumPortfolioYear,
			yesNo(result.KeyMetrics.BufferHeld),
			breachYear(result.KeyMetrics.FirstBreachYear),
			scf.money(result.KeyMetrics.FinalPortfolioValue),
			fmt.Sprintf("%+.1f%%", result.KeyMetrics.MinPortfolioChangePct.InexactFloat64()))
	}
	fmt.Fprintln(buf)

	if len(analysis.Summary.SensitivityScores) > 0 {
		fmt.Fprintln(buf, "SENSITIVITY SCORES:")
		for _, p := range analysis.Parameters {
			score, ok := analysis.Summary.SensitivityScores[p.Name]
			if !ok {
				continue
			}
			fmt.Fprintf(buf, "  %-24s %s\n", p.Name, score.StringFixed(2))
		}
		fmt.Fprintln(buf)
	}

	fmt.Fprintf(buf, "BUFFER BREACHES: %d of %d runs\n", analysis.Summary.BufferBreaches, len(analysis.Results))
	fmt.Fprintf(buf, "RISK LEVEL: %s\n", analysis.Summary.RiskLevel)
	fmt.Fprintln(buf)

	fmt.Fprintln(buf, "RECOMMENDATIONS:")
	for _, rec := range analysis.Summary.Recommendations {
		fmt.Fprintf(buf, "  • %s\n", rec)
	}

	return buf.String(), nil
}

func (scf SensitivityConsoleFormatter) formatMatrixAnalysis(buf *bytes.Buffer, matrix *domain.SensitivityMatrix) (string, error) {
	if len(matrix.MatrixResults) == 0 || len(matrix.MatrixResults[0]) == 0 {
		return "", fmt.Errorf("empty sensitivity matrix")
	}
	p1, p2 := matrix.Parameter1, matrix.Parameter2

	fmt.Fprintf(buf, "SENSITIVITY MATRIX ANALYSIS\n")
	fmt.Fprintf(buf, "=================================================================\n")
	fmt.Fprintf(buf, "Rows:    %s (%s to %s)\n", p1.Name, formatParamValue(p1, p1.MinValue), formatParamValue(p1, p1.MaxValue))
	fmt.Fprintf(buf, "Columns: %s (%s to %s)\n", p2.Name, formatParamValue(p2, p2.MinValue), formatParamValue(p2, p2.MaxValue))
	fmt.Fprintln(buf, "Cells:   minimum portfolio value, * marks a buffer breach")
	fmt.Fprintln(buf)

	fmt.Fprintf(buf, "%-12s", "")
	for _, cell := range matrix.MatrixResults[0] {
		fmt.Fprintf(buf, " %-18s", formatParamValue(p2, cell.ParameterValues[p2.Name]))
	}
	fmt.Fprintln(buf)
	fmt.Fprintln(buf, strings.Repeat("-", 12+19*len(matrix.MatrixResults[0])))

	for _, row := range matrix.MatrixResults {
		fmt.Fprintf(buf, "%-12s", formatParamValue(p1, row[0].ParameterValues[p1.Name]))
		for _, cell := range row {
			mark := ""
			if !cell.KeyMetrics.BufferHeld {
				mark = "*"
			}
			fmt.Fprintf(buf, " %-18s", scf.money(cell.KeyMetrics.MinimumPortfolioValue)+mark)
		}
		fmt.Fprintln(buf)
	}
	fmt.Fprintln(buf)

	total := len(matrix.MatrixResults) * len(matrix.MatrixResults[0])
	fmt.Fprintf(buf, "BUFFER HELD: %d of %d combinations\n", matrix.HeldCount, total)
	fmt.Fprintln(buf)

	fmt.Fprintln(buf, "RECOMMENDATIONS:")
	for _, rec := range matrix.Recommendations {
		fmt.Fprintf(buf, "  • %s\n", rec)
	}

	return buf.String(), nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func breachYear(y *int) string {
	if y == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *y)
}

// SensitivityCSVFormatter formats sensitivity analysis output as CSV
type SensitivityCSVFormatter struct{}

func (scf SensitivityCSVFormatter) Name() string { return "csv" }

func (scf SensitivityCSVFormatter) FormatSensitivityAnalysis(analysis interface{}) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"label", "minimum_portfolio_value", "minimum_portfolio_year", "buffer_held", "first_breach_year", "final_portfolio_value", "total_shortfall", "total_tax_paid"}
	var rows []domain.SensitivityResult
	var names []string

	switch a := analysis.(type) {
	case *domain.ParameterSensitivityAnalysis:
		for _, p := range a.Parameters {
			names = append(names, p.Name)
		}
		rows = a.Results
	case *domain.SensitivityMatrix:
		names = []string{a.Parameter1.Name, a.Parameter2.Name}
		for _, row := range a.MatrixResults {
			rows = append(rows, row...)
		}
	default:
		return "", fmt.Errorf("unsupported analysis type: %T", analysis)
	}

	if err := w.Write(append(append([]string{}, names...), header...)); err != nil {
		return "", err
	}
	for _, r := range rows {
		rec := make([]string, 0, len(names)+len(header))
		for _, n := range names {
			if v, ok := r.ParameterValues[n]; ok {
				rec = append(rec, v.String())
			} else {
				rec = append(rec, "")
			}
		}
		breach := ""
		if r.KeyMetrics.FirstBreachYear != nil {
			breach = fmt.Sprintf("%d", *r.KeyMetrics.FirstBreachYear)
		}
		rec = append(rec,
			r.Label,
			r.KeyMetrics.MinimumPortfolioValue.StringFixed(2),
			fmt.Sprintf("%d", r.KeyMetrics.MinimumPortfolioYear),
			fmt.Sprintf("%t", r.KeyMetrics.BufferHeld),
			breach,
			r.KeyMetrics.FinalPortfolioValue.StringFixed(2),
			r.KeyMetrics.TotalShortfall.StringFixed(2),
			r.KeyMetrics.TotalTaxPaid.StringFixed(2))
		if err := w.Write(rec); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// SensitivityJSONFormatter formats sensitivity analysis output as JSON
type SensitivityJSONFormatter struct{}

func (sjf SensitivityJSONFormatter) Name() string { return "json" }

func (sjf SensitivityJSONFormatter) FormatSensitivityAnalysis(analysis interface{}) (string, error) {
	switch analysis.(type) {
	case *domain.ParameterSensitivityAnalysis, *domain.SensitivityMatrix:
	default:
		return "", fmt.Errorf("unsupported analysis type: %T", analysis)
	}
	data, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// NewSensitivityFormatter creates a sensitivity formatter based on the format name
func NewSensitivityFormatter(format, currency string) SensitivityFormatter {
	switch NormalizeFormatName(format) {
	case "console":
		return SensitivityConsoleFormatter{Currency: currency}
	case "csv":
		return SensitivityCSVFormatter{}
	case "json":
		return SensitivityJSONFormatter{}
	default:
		return SensitivityConsoleFormatter{Currency: currency}
	}
}
