package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/rgehrsitz/firesim/internal/domain"
)

// ConsoleFormatter renders the summary followed by a year-by-year table.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(result *domain.SimulationResult) ([]byte, error) {
	var buf bytes.Buffer
	dom := result.DomesticCurrency

	fmt.Fprintln(&buf, "=================================================================================")
	fmt.Fprintln(&buf, "FIRE PORTFOLIO PROJECTION")
	fmt.Fprintln(&buf, "=================================================================================")
	fmt.Fprintln(&buf)
	fmt.Fprintln(&buf, "KEY ASSUMPTIONS:")
	for _, a := range ModelAssumptions {
		fmt.Fprintf(&buf, "• %s\n", a)
	}
	fmt.Fprintln(&buf)

	writeSummary(&buf, result)

	if len(result.Records) == 0 {
		fmt.Fprintln(&buf, "No projection years.")
		return buf.Bytes(), nil
	}

	fmt.Fprintln(&buf, "YEAR-BY-YEAR PROJECTION")
	fmt.Fprintln(&buf, strings.Repeat("-", 135))
	fmt.Fprintf(&buf, "%-6s %-4s %-8s %-16s %-16s %-16s %-14s %-16s %-18s %s\n",
		"Year", "Age", "FX", "Rental", "Expenses", "Withdrawal", "Tax", "Shortfall", "Ending", "")
	fmt.Fprintln(&buf, strings.Repeat("-", 135))
	for _, rec := range result.Records {
		flag := ""
		if rec.EndingPortfolioValue.LessThan(result.Buffer) {
			flag = "below buffer"
		}
		if rec.Shortfall.IsPositive() {
			flag = strings.TrimSpace(flag + " shortfall")
		}
		if rec.UnfundedWithdrawal.IsPositive() {
			flag = strings.TrimSpace(flag + " unreachable " + FormatMoneyWhole(rec.UnfundedWithdrawal, dom))
		}
		fmt.Fprintf(&buf, "%-6d %-4d %-8s %-16s %-16s %-16s %-14s %-16s %-18s %s\n",
			rec.Year,
			rec.Age,
			rec.ExchangeRate.StringFixed(2),
			FormatMoneyWhole(rec.RentalIncome, dom),
			FormatMoneyWhole(rec.TotalExpenses, dom),
			FormatMoneyWhole(rec.ActualWithdrawal, dom),
			FormatMoneyWhole(rec.TaxPaid, dom),
			FormatMoneyWhole(rec.Shortfall, dom),
			FormatMoneyWhole(rec.EndingPortfolioValue, dom),
			flag)
	}
	fmt.Fprintln(&buf)

	writeWithdrawalTable(&buf, result)
	return buf.Bytes(), nil
}

func writeSummary(buf *bytes.Buffer, result *domain.SimulationResult) {
	dom := result.DomesticCurrency
	fmt.Fprintln(buf, "SUMMARY")
	fmt.Fprintln(buf, "=======")
	fmt.Fprintf(buf, "Buffer:                  %s\n", FormatMoney(result.Buffer, dom))
	if result.BufferHeld {
		fmt.Fprintln(buf, "Buffer held:             yes")
	} else {
		fmt.Fprintln(buf, "Buffer held:             NO")
		if result.FirstBreachYear != nil {
			fmt.Fprintf(buf, "First breach year:       %d\n", *result.FirstBreachYear)
		}
	}
	fmt.Fprintf(buf, "Minimum portfolio:       %s (%d)\n", FormatMoney(result.MinimumPortfolioValue, dom), result.MinimumPortfolioYear)
	fmt.Fprintf(buf, "Final portfolio:         %s\n", FormatMoney(result.FinalPortfolioValue, dom))
	fmt.Fprintf(buf, "Total tax paid:          %s\n", FormatMoney(result.TotalTaxPaid, dom))
	fmt.Fprintf(buf, "Total shortfall:         %s\n", FormatMoney(result.TotalShortfall, dom))
	if n := result.YearsWithShortfall(); n > 0 {
		fmt.Fprintf(buf, "Years with shortfall:    %d\n", n)
	}
	if result.TotalUnfunded.IsPositive() {
		fmt.Fprintf(buf, "Unreachable spending:    %s in %d years (counted as withdrawable, no bucket in the order could supply it)\n",
			FormatMoney(result.TotalUnfunded, dom), result.YearsUnfunded())
	}
	fmt.Fprintln(buf)
}

func writeWithdrawalTable(buf *bytes.Buffer, result *domain.SimulationResult) {
	if len(result.BucketOrder) == 0 {
		return
	}
	dom := result.DomesticCurrency
	fmt.Fprintln(buf, "WITHDRAWALS BY BUCKET ("+dom+")")
	fmt.Fprintf(buf, "%-6s", "Year")
	for _, name := range result.BucketOrder {
		fmt.Fprintf(buf, " %-16s", name)
	}
	fmt.Fprintln(buf)
	fmt.Fprintln(buf, strings.Repeat("-", 6+17*len(result.BucketOrder)))
	for _, rec := range result.Records {
		fmt.Fprintf(buf, "%-6d", rec.Year)
		for _, name := range result.BucketOrder {
			fmt.Fprintf(buf, " %-16s", FormatMoneyWhole(rec.Withdrawals.Get(name), dom))
		}
		fmt.Fprintln(buf)
	}
	fmt.Fprintln(buf)
}
