package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rgehrsitz/firesim/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestResult() *domain.SimulationResult {
	order := []string{"fd_domestic", "equity_foreign"}
	mk := func(year int, ending int64, shortfall int64) domain.YearRecord {
		w := domain.NewWithdrawalBreakdown(order)
		w.Add("fd_domestic", decimal.NewFromInt(400000))
		w.Add("equity_foreign", decimal.NewFromInt(100000))
		return domain.YearRecord{
			Year:                      year,
			Age:                       40 + year - 2025,
			ExchangeRate:              decimal.NewFromInt(88),
			RentalIncome:              decimal.NewFromInt(240000),
			Living:                    decimal.NewFromInt(600000),
			TotalExpenses:             decimal.NewFromInt(700000),
			RequiredWithdrawal:        decimal.NewFromInt(460000),
			ActualWithdrawal:          decimal.NewFromInt(460000),
			Shortfall:                 decimal.NewFromInt(shortfall),
			TaxableIncome:             decimal.NewFromInt(460000),
			TaxDue:                    decimal.NewFromInt(40000),
			TaxPaid:                   decimal.NewFromInt(40000),
			Withdrawals:               w,
			UnfundedWithdrawal:        decimal.Zero,
			EndingPortfolioValue:      decimal.NewFromInt(ending),
			AvailableForWithdrawStart: decimal.NewFromInt(ending + 500000),
			BucketBalances: []domain.BucketAmount{
				{Bucket: "fd_domestic", Amount: decimal.NewFromInt(ending - 880000)},
				{Bucket: "equity_foreign", Amount: decimal.NewFromInt(10000)},
			},
		}
	}
	result := &domain.SimulationResult{
		Records: []domain.YearRecord{
			mk(2025, 3000000, 0),
			mk(2026, 2500000, 0),
			mk(2027, 1500000, 25000),
		},
		Buffer:           decimal.NewFromInt(2000000),
		DomesticCurrency: "INR",
		ForeignCurrency:  "USD",
		BucketOrder:      order,
	}
	result.Summarize()
	return result
}

func TestFormatterFunc(t *testing.T) {
	called := false
	formatter := FormatterFunc{
		ID: "test-formatter",
		F: func(result *domain.SimulationResult) ([]byte, error) {
			called = true
			return []byte("test output"), nil
		},
	}

	out, err := formatter.Format(buildTestResult())
	assert.NoError(t, err)
	assert.True(t, called, "Should call the function")
	assert.Equal(t, "test output", string(out))
	assert.Equal(t, "test-formatter", formatter.Name())
}

func TestWriteFormatted(t *testing.T) {
	t.Chdir(t.TempDir())

	formatter := FormatterFunc{
		ID: "test-formatter",
		F: func(result *domain.SimulationResult) ([]byte, error) {
			return []byte("test output content"), nil
		},
	}

	filename, err := WriteFormatted(formatter, buildTestResult(), "txt")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filename, "firesim_report_"), "Should have correct prefix")
	assert.True(t, strings.HasSuffix(filename, ".txt"), "Should have correct extension")

	content, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Equal(t, "test output content", string(content))
}

func TestWriteFormatted_FormatterError(t *testing.T) {
	formatter := FormatterFunc{
		ID: "error-formatter",
		F: func(result *domain.SimulationResult) ([]byte, error) {
			return nil, fmt.Errorf("formatter error")
		},
	}

	filename, err := WriteFormatted(formatter, buildTestResult(), "txt")
	assert.Error(t, err)
	assert.Empty(t, filename, "Should return empty filename on error")
	assert.Contains(t, err.Error(), "formatter error")
}

func TestGetFormatterByName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"console", "console"},
		{"CSV", "csv"},
		{" json ", "json"},
		{"html", "html"},
		{"table", "console"},
		{"verbose", "console"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := GetFormatterByName(tt.name)
			require.NotNil(t, f)
			assert.Equal(t, tt.want, f.Name())
		})
	}

	assert.Nil(t, GetFormatterByName("non-existent"), "Should return nil for unknown formatter")
}

func TestAvailableFormatterNames(t *testing.T) {
	assert.Equal(t, []string{"console", "csv", "html", "json"}, AvailableFormatterNames())
	assert.Contains(t, AvailableFormatAliases(), "verbose")
}

func TestConsoleFormatter(t *testing.T) {
	out, err := ConsoleFormatter{}.Format(buildTestResult())
	require.NoError(t, err)

	content := string(out)
	assert.Contains(t, content, "FIRE PORTFOLIO PROJECTION")
	assert.Contains(t, content, "Buffer held:             NO")
	assert.Contains(t, content, "First breach year:       2027")
	assert.Contains(t, content, "Years with shortfall:    1")
	assert.Contains(t, content, "₹1,500,000", "Should render the minimum portfolio in rupees")
	assert.Contains(t, content, "WITHDRAWALS BY BUCKET (INR)")
	assert.Contains(t, content, "equity_foreign")
}

func TestConsoleFormatter_UnreachableSpending(t *testing.T) {
	result := buildTestResult()
	result.Records[1].UnfundedWithdrawal = decimal.NewFromInt(50000)
	result.Summarize()
	require.True(t, result.TotalUnfunded.Equal(decimal.NewFromInt(50000)))

	out, err := ConsoleFormatter{}.Format(result)
	require.NoError(t, err)
	assert.Contains(t, string(out), "Unreachable spending:    ₹50,000.00 in 1 years")
	assert.Contains(t, string(out), "unreachable ₹50,000")

	out, err = ConsoleFormatter{}.Format(buildTestResult())
	require.NoError(t, err)
	assert.NotContains(t, string(out), "nreachable")
}

func TestConsoleFormatter_Empty(t *testing.T) {
	result := &domain.SimulationResult{Buffer: decimal.NewFromInt(10), DomesticCurrency: "INR"}
	result.Summarize()

	out, err := ConsoleFormatter{}.Format(result)
	require.NoError(t, err)
	assert.Contains(t, string(out), "Buffer held:             yes")
	assert.Contains(t, string(out), "No projection years.")
}

func TestCSVFormatter(t *testing.T) {
	result := buildTestResult()
	out, err := CSVFormatter{}.Format(result)
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1+len(result.Records), "Should write a header plus one row per year")

	header := rows[0]
	assert.Equal(t, "year", header[0])
	assert.Contains(t, header, "withdrawal_fd_domestic")
	assert.Contains(t, header, "withdrawal_equity_foreign")
	assert.Contains(t, header, "available_for_withdraw_start")
	assert.Equal(t, []string{"balance_fd_domestic", "balance_equity_foreign"}, header[len(header)-2:])

	for _, row := range rows[1:] {
		assert.Len(t, row, len(header), "Every row should match the header width")
	}
	assert.Equal(t, "2027", rows[3][0])
	col := indexOf(header, "shortfall")
	require.GreaterOrEqual(t, col, 0)
	assert.Equal(t, "25000.00", rows[3][col])
	assert.Equal(t, "620000.00", rows[3][indexOf(header, "balance_fd_domestic")])
	assert.Equal(t, "10000.00", rows[3][indexOf(header, "balance_equity_foreign")])
}

func TestJSONFormatter(t *testing.T) {
	out, err := JSONFormatter{}.Format(buildTestResult())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Contains(t, decoded, "records")
	assert.Equal(t, false, decoded["bufferHeld"])
	assert.Equal(t, float64(2027), decoded["firstBreachYear"])
}

func TestHTMLFormatter(t *testing.T) {
	out, err := HTMLFormatter{}.Format(buildTestResult())
	require.NoError(t, err)

	content := string(out)
	assert.Contains(t, content, "<!DOCTYPE html>")
	assert.Contains(t, content, "<title>FIRE Portfolio Projection</title>")
	assert.Contains(t, content, "<svg")
	assert.Contains(t, content, "<polyline")
	assert.Contains(t, content, `class="below"`, "Years under the buffer should be highlighted")
	assert.Contains(t, content, "from 2027")
}

func TestHTMLFormatter_NoRecords(t *testing.T) {
	result := &domain.SimulationResult{DomesticCurrency: "INR"}
	result.Summarize()

	out, err := HTMLFormatter{}.Format(result)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "<svg", "Should skip the chart when there is nothing to plot")
}

func TestBuildChart(t *testing.T) {
	chart := buildChart(buildTestResult())
	require.NotNil(t, chart)

	assert.Equal(t, 2025, chart.FirstYear)
	assert.Equal(t, 2027, chart.LastYear)
	points := strings.Fields(chart.PortfolioPoints)
	require.Len(t, points, 3)
	assert.Equal(t, "40.0,40.0", points[0], "The largest value should touch the top of the plot")
	assert.Equal(t, "760.0,160.0", points[2])
}

func TestSaveConfiguration(t *testing.T) {
	params := &domain.ParameterSet{StartYear: 2025, StartAge: 40, EndAge: 45, Buffer: decimal.NewFromInt(100)}
	path := filepath.Join(t.TempDir(), "out.yaml")

	require.NoError(t, SaveConfiguration(params, path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "start_year: 2025")
	assert.Contains(t, string(data), "end_age: 45")
}

func indexOf(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}
