package breakeven

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rgehrsitz/firesim/internal/domain"
)

// TableFormatter formats solver results as a console table
type TableFormatter struct{}

// Format renders a single top-up result.
func (tf *TableFormatter) Format(result *TopUpResult) string {
	var sb strings.Builder

	sb.WriteString("TOP-UP NEEDED TO FUND THE PLAN\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n")
	sb.WriteString(fmt.Sprintf("Bucket:              %s (%s)\n", result.Bucket, result.Currency))
	sb.WriteString(fmt.Sprintf("Status:              %s\n", tf.formatStatus(result.Success)))
	sb.WriteString(fmt.Sprintf("Iterations:          %d\n", result.Iterations))
	if result.ConvergenceInfo != "" {
		sb.WriteString(fmt.Sprintf("Convergence:         %s\n", result.ConvergenceInfo))
	}
	sb.WriteString("\n")

	if result.AlreadyFunded {
		sb.WriteString("No top-up needed.\n\n")
	} else {
		sb.WriteString(fmt.Sprintf("Top-up:              %s %s\n", result.TopUp.StringFixed(0), tf.nativeCode(result)))
		if result.Currency == domain.Foreign {
			sb.WriteString(fmt.Sprintf("Domestic equivalent: %s %s\n", result.TopUpDomestic.StringFixed(0), result.DomesticSymbol))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("OUTCOME\n")
	sb.WriteString(strings.Repeat("-", 80) + "\n")
	sb.WriteString(fmt.Sprintf("%-22s %-20s %-20s\n", "", "Without top-up", "With top-up"))
	sb.WriteString(fmt.Sprintf("%-22s %-20s %-20s\n", "Minimum portfolio",
		result.Baseline.MinimumPortfolioValue.StringFixed(0), result.Solved.MinimumPortfolioValue.StringFixed(0)))
	sb.WriteString(fmt.Sprintf("%-22s %-20d %-20d\n", "Minimum year",
		result.Baseline.MinimumPortfolioYear, result.Solved.MinimumPortfolioYear))
	sb.WriteString(fmt.Sprintf("%-22s %-20s %-20s\n", "First breach",
		tf.breach(result.Baseline.FirstBreachYear), tf.breach(result.Solved.FirstBreachYear)))
	sb.WriteString(fmt.Sprintf("%-22s %-20s %-20s\n", "Total shortfall",
		result.Baseline.TotalShortfall.StringFixed(0), result.Solved.TotalShortfall.StringFixed(0)))
	sb.WriteString(fmt.Sprintf("%-22s %-20s %-20s\n", "Unreachable spending",
		result.Baseline.TotalUnfunded.StringFixed(0), result.Solved.TotalUnfunded.StringFixed(0)))
	sb.WriteString(fmt.Sprintf("%-22s %-20s %-20s\n", "Final portfolio",
		result.Baseline.FinalPortfolioValue.StringFixed(0), result.Solved.FinalPortfolioValue.StringFixed(0)))
	return sb.String()
}

// FormatComparison renders a per-bucket comparison.
func (tf *TableFormatter) FormatComparison(c *BucketComparison) string {
	var sb strings.Builder

	sb.WriteString("TOP-UP BY BUCKET\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n")
	sb.WriteString(fmt.Sprintf("%-20s %-10s %-18s %-18s %-10s\n", "Bucket", "Currency", "Top-up", "Domestic", "Iter"))
	sb.WriteString(strings.Repeat("-", 80) + "\n")
	for _, r := range c.Results {
		marker := ""
		if c.Cheapest != nil && r.Bucket == c.Cheapest.Bucket {
			marker = " ⭐"
		}
		sb.WriteString(fmt.Sprintf("%-20s %-10s %-18s %-18s %-10d%s\n",
			r.Bucket, tf.nativeCode(&r), r.TopUp.StringFixed(0), r.TopUpDomestic.StringFixed(0), r.Iterations, marker))
	}
	sb.WriteString("\n")

	if len(c.Recommendations) > 0 {
		sb.WriteString("RECOMMENDATIONS\n")
		sb.WriteString(strings.Repeat("-", 80) + "\n")
		for _, rec := range c.Recommendations {
			sb.WriteString("• " + rec + "\n")
		}
	}
	return sb.String()
}

func (tf *TableFormatter) formatStatus(success bool) string {
	if success {
		return "✓ Success"
	}
	return "✗ Failed"
}

func (tf *TableFormatter) nativeCode(r *TopUpResult) string {
	if r.Currency == domain.Foreign {
		return r.ForeignSymbol
	}
	return r.DomesticSymbol
}

func (tf *TableFormatter) breach(y *int) string {
	if y == nil {
		return "none"
	}
	return fmt.Sprintf("%d", *y)
}

// JSONFormatter formats solver results as JSON
type JSONFormatter struct{}

// Format marshals a single result.
func (jf *JSONFormatter) Format(result *TopUpResult) (string, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FormatComparison marshals a per-bucket comparison.
func (jf *JSONFormatter) FormatComparison(c *BucketComparison) (string, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
