package output

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/rgehrsitz/firesim/internal/domain"
	"github.com/shopspring/decimal"
)

// HTMLFormatter produces a standalone HTML report with an inline SVG chart of
// ending portfolio and total expenses against the buffer line.
type HTMLFormatter struct{}

func (h HTMLFormatter) Name() string { return "html" }

//go:embed templates/report.html.tmpl
var htmlTemplateSource string

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"money": func(d decimal.Decimal) string { return "" },
	"below": func(d decimal.Decimal) bool { return false },
	"fixed": func(d decimal.Decimal) string { return d.StringFixed(2) },
	"deref": func(p *int) int { return *p },
}).Parse(htmlTemplateSource))

func (h HTMLFormatter) Format(result *domain.SimulationResult) ([]byte, error) {
	tmpl, err := htmlTemplate.Clone()
	if err != nil {
		return nil, err
	}
	tmpl.Funcs(template.FuncMap{
		"money": func(d decimal.Decimal) string { return FormatMoneyWhole(d, result.DomesticCurrency) },
		"below": func(d decimal.Decimal) bool { return d.LessThan(result.Buffer) },
	})

	data := struct {
		Result      *domain.SimulationResult
		Chart       *svgChart
		Generated   string
		Assumptions []string
	}{result, buildChart(result), time.Now().Format("2006-01-02 15:04:05"), ModelAssumptions}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type svgChart struct {
	Width, Height            int
	Left, Right, Top, Bottom int
	PortfolioPoints          string
	ExpensePoints            string
	BufferY                  string
	FirstYear, LastYear      int
	MaxLabel                 string
}

const (
	chartWidth   = 800
	chartHeight  = 320
	chartPadding = 40
)

// buildChart scales the series into the plot area. Values below zero are clamped
// to the baseline. Returns nil when there is nothing to draw.
func buildChart(result *domain.SimulationResult) *svgChart {
	n := len(result.Records)
	if n == 0 {
		return nil
	}
	maxV := result.Buffer
	for _, rec := range result.Records {
		maxV = decimal.Max(maxV, rec.EndingPortfolioValue, rec.TotalExpenses)
	}
	if !maxV.IsPositive() {
		maxV = decimal.NewFromInt(1)
	}

	c := &svgChart{
		Width:     chartWidth,
		Height:    chartHeight,
		Left:      chartPadding,
		Right:     chartWidth - chartPadding,
		Top:       chartPadding,
		Bottom:    chartHeight - chartPadding,
		FirstYear: result.Records[0].Year,
		LastYear:  result.Records[n-1].Year,
		MaxLabel:  FormatMoneyWhole(maxV, result.DomesticCurrency),
	}
	plotW := float64(c.Right - c.Left)
	plotH := float64(c.Bottom - c.Top)
	maxF := maxV.InexactFloat64()

	x := func(i int) float64 {
		if n == 1 {
			return float64(c.Left) + plotW/2
		}
		return float64(c.Left) + plotW*float64(i)/float64(n-1)
	}
	y := func(v decimal.Decimal) float64 {
		f := v.InexactFloat64()
		if f < 0 {
			f = 0
		}
		return float64(c.Bottom) - plotH*f/maxF
	}

	var portfolio, expenses strings.Builder
	for i, rec := range result.Records {
		if i > 0 {
			portfolio.WriteByte(' ')
			expenses.WriteByte(' ')
		}
		fmt.Fprintf(&portfolio, "%.1f,%.1f", x(i), y(rec.EndingPortfolioValue))
		fmt.Fprintf(&expenses, "%.1f,%.1f", x(i), y(rec.TotalExpenses))
	}
	c.PortfolioPoints = portfolio.String()
	c.ExpensePoints = expenses.String()
	c.BufferY = fmt.Sprintf("%.1f", y(result.Buffer))
	return c
}
