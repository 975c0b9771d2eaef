package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rgehrsitz/firesim/internal/calculation"
	"github.com/rgehrsitz/firesim/internal/domain"
	"github.com/rgehrsitz/firesim/internal/output"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var sensitivityCmd = &cobra.Command{
	Use:   "sensitivity [input-file]",
	Short: "Sweep assumptions and see how the buffer holds",
	Long: `Re-run the projection across a range of values for one or more assumptions.

Parameters: domestic_inflation, fx_growth, rental_increase, living_monthly, buffer,
and growth:<bucket> for any bucket in the plan. Ranges accept min-max or min..max.

Examples:
  # Single parameter sweep
  firesim sensitivity plan.yaml --parameter domestic_inflation --range 0.04-0.09 --steps 6

  # Multiple parameter sweep
  firesim sensitivity plan.yaml --parameter domestic_inflation:0.04-0.09:6 --parameter fx_growth:-0.02..0.04:4

  # Matrix analysis
  firesim sensitivity plan.yaml --parameter domestic_inflation:0.04-0.09:6 --parameter growth:equity_domestic:0.06-0.12:4 --analysis-type matrix

  # Predefined parameter sets
  firesim sensitivity plan.yaml --parameter-set common`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSensitivityAnalysis,
}

var (
	sensitivityParameter    []string
	sensitivityRange        string
	sensitivitySteps        int
	sensitivityOutputFormat string
	sensitivityParameterSet string
	sensitivityAnalysisType string
)

func init() {
	sensitivityCmd.Flags().StringArrayVar(&sensitivityParameter, "parameter", []string{}, "Parameter to analyze (format: name:min-max:steps, or a bare name with --range)")
	sensitivityCmd.Flags().StringVar(&sensitivityRange, "range", "", "Range for single parameter analysis (format: min-max)")
	sensitivityCmd.Flags().IntVar(&sensitivitySteps, "steps", 5, "Number of steps for parameter sweep")
	sensitivityCmd.Flags().StringVar(&sensitivityOutputFormat, "output", "", "Output format (table, csv, json); defaults to FIRESIM_FORMAT")
	sensitivityCmd.Flags().StringVar(&sensitivityParameterSet, "parameter-set", "", "Use predefined parameter set (common, all)")
	sensitivityCmd.Flags().StringVar(&sensitivityAnalysisType, "analysis-type", "single", "Analysis type (single, multi, matrix)")
	sensitivityCmd.Flags().Bool("debug", false, "Log every simulated year")

	rootCmd.AddCommand(sensitivityCmd)
}

func runSensitivityAnalysis(cmd *cobra.Command, args []string) error {
	params, err := loadParams(args)
	if err != nil {
		return err
	}

	analyzer := calculation.NewSensitivityAnalyzer(newEngine(cmd, false))
	if settings.Workers > 0 {
		analyzer.Workers = settings.Workers
	}

	parameters, err := selectParameters(params)
	if err != nil {
		return err
	}

	var analysis interface{}
	switch {
	case len(parameters) == 2 && sensitivityAnalysisType == "matrix":
		analysis, err = analyzer.AnalyzeParameterMatrix(cmd.Context(), params, parameters[0], parameters[1])
	case sensitivityAnalysisType == "matrix":
		return fmt.Errorf("matrix analysis needs exactly two parameters, got %d", len(parameters))
	case len(parameters) == 1:
		analysis, err = analyzer.AnalyzeSingleParameter(cmd.Context(), params, parameters[0])
	default:
		analysis, err = analyzer.AnalyzeMultipleParameters(cmd.Context(), params, parameters)
	}
	if err != nil {
		return fmt.Errorf("sensitivity analysis failed: %w", err)
	}

	formatName := sensitivityOutputFormat
	if formatName == "" {
		formatName = settings.Format
	}
	formatter := output.NewSensitivityFormatter(formatName, params.DomesticCurrency)
	out, err := formatter.FormatSensitivityAnalysis(analysis)
	if err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

// selectParameters resolves the flags into the parameters to sweep.
func selectParameters(params *domain.ParameterSet) ([]domain.SensitivityParameter, error) {
	switch {
	case sensitivityParameterSet != "":
		return getPredefinedParameterSet(params, sensitivityParameterSet)
	case sensitivityRange != "":
		name := "domestic_inflation"
		if len(sensitivityParameter) > 0 {
			name = sensitivityParameter[0]
		}
		p, err := parseSingleParameter(name, sensitivityRange, sensitivitySteps)
		if err != nil {
			return nil, err
		}
		return []domain.SensitivityParameter{p}, nil
	case len(sensitivityParameter) > 0:
		return parseCustomParameters(sensitivityParameter)
	default:
		return nil, fmt.Errorf("must specify either --parameter, --parameter-set, or --range")
	}
}

// getPredefinedParameterSet returns "common" (the rate assumptions) or "all", which
// sweeps every parameter around its configured value.
func getPredefinedParameterSet(params *domain.ParameterSet, setName string) ([]domain.SensitivityParameter, error) {
	switch setName {
	case "common":
		return domain.GetCommonParameters(), nil
	case "all":
		var out []domain.SensitivityParameter
		for _, name := range calculation.SweepableParameters(params) {
			base, err := calculation.ParameterValue(params, name)
			if err != nil {
				return nil, err
			}
			out = append(out, aroundBase(name, base))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown parameter set: %s", setName)
	}
}

// aroundBase sweeps rates two points either side of base and amounts from half to
// one and a half times base.
func aroundBase(name string, base decimal.Decimal) domain.SensitivityParameter {
	p := domain.SensitivityParameter{
		Name:        name,
		Steps:       5,
		Unit:        unitFor(name),
		Description: describe(name),
	}
	if p.Unit == "amount" {
		p.MinValue = base.Mul(decimal.NewFromFloat(0.5))
		p.MaxValue = base.Mul(decimal.NewFromFloat(1.5))
		return p
	}
	spread := decimal.NewFromFloat(0.02)
	p.MinValue = base.Sub(spread)
	p.MaxValue = base.Add(spread)
	return p
}

func parseCustomParameters(paramStrings []string) ([]domain.SensitivityParameter, error) {
	parameters := make([]domain.SensitivityParameter, 0, len(paramStrings))
	for _, paramStr := range paramStrings {
		param, err := parseParameterString(paramStr)
		if err != nil {
			return nil, fmt.Errorf("parameter '%s': %w", paramStr, err)
		}
		parameters = append(parameters, param)
	}
	return parameters, nil
}

// parseParameterString parses name:min-max:steps. The name may itself contain a
// colon (growth:<bucket>), so range and steps are taken from the end.
func parseParameterString(paramStr string) (domain.SensitivityParameter, error) {
	parts := strings.Split(paramStr, ":")
	if len(parts) < 3 {
		return domain.SensitivityParameter{}, fmt.Errorf("invalid parameter format: %s (expected name:min-max:steps)", paramStr)
	}
	n := len(parts)
	name := strings.Join(parts[:n-2], ":")
	steps, err := strconv.Atoi(parts[n-1])
	if err != nil {
		return domain.SensitivityParameter{}, fmt.Errorf("invalid steps value: %v", err)
	}
	return parseSingleParameter(name, parts[n-2], steps)
}

func parseSingleParameter(name, rangeStr string, steps int) (domain.SensitivityParameter, error) {
	lo, hi, err := splitRange(rangeStr)
	if err != nil {
		return domain.SensitivityParameter{}, err
	}
	minValue, err := parseDecimal(lo)
	if err != nil {
		return domain.SensitivityParameter{}, fmt.Errorf("invalid min value: %v", err)
	}
	maxValue, err := parseDecimal(hi)
	if err != nil {
		return domain.SensitivityParameter{}, fmt.Errorf("invalid max value: %v", err)
	}
	if steps < 1 {
		return domain.SensitivityParameter{}, fmt.Errorf("steps must be at least 1, got %d", steps)
	}

	return domain.SensitivityParameter{
		Name:        name,
		MinValue:    minValue,
		MaxValue:    maxValue,
		Steps:       steps,
		Unit:        unitFor(name),
		Description: describe(name),
	}, nil
}

// splitRange splits "min-max" or "min..max". A leading minus sign or one after an
// exponent belongs to the number.
func splitRange(s string) (string, string, error) {
	s = strings.TrimSpace(s)
	if lo, hi, ok := strings.Cut(s, ".."); ok {
		return lo, hi, nil
	}
	for i := 1; i < len(s); i++ {
		if s[i] == '-' && s[i-1] != 'e' && s[i-1] != 'E' {
			return s[:i], s[i+1:], nil
		}
	}
	return "", "", fmt.Errorf("invalid range format: %s (expected min-max)", s)
}

func parseDecimal(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(s))
}

func unitFor(name string) string {
	switch name {
	case "living_monthly", "buffer":
		return "amount"
	}
	return "percent"
}

func describe(name string) string {
	for _, p := range domain.GetCommonParameters() {
		if p.Name == name {
			return p.Description
		}
	}
	switch name {
	case "living_monthly":
		return "Monthly living expense at the start year"
	case "buffer":
		return "Portfolio floor withdrawals never cross"
	}
	if bucket, ok := strings.CutPrefix(name, "growth:"); ok {
		return "Annual growth of " + bucket
	}
	return "Custom parameter"
}
