package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/firesim/internal/domain"
	"github.com/rgehrsitz/firesim/internal/output"
	"github.com/rgehrsitz/firesim/internal/tui/components"
	"github.com/rgehrsitz/firesim/internal/tui/tuistyles"
)

// View renders the current state of the application
func (m Model) View() string {
	if m.err != nil {
		return m.renderError()
	}
	if m.loading {
		return m.renderLoading()
	}

	var content string
	switch m.currentScene {
	case SceneDashboard:
		content = m.renderDashboard()
	case SceneTable:
		content = m.renderTable()
	case SceneHelp:
		content = m.renderHelp()
	default:
		content = "Unknown scene"
	}

	return m.renderApp(content)
}

// renderApp wraps content with title bar, status bar, and main container
func (m Model) renderApp(content string) string {
	titleBar := m.renderTitleBar()
	statusBar := m.renderStatusBar()

	contentHeight := max(m.height-4, 1) // Title (2) + status (1) + padding (1)
	contentContainer := lipgloss.NewStyle().
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		titleBar,
		contentContainer,
		statusBar,
	)
}

// renderTitleBar renders the application title and breadcrumb
func (m Model) renderTitleBar() string {
	title := tuistyles.TitleStyle.Render("FIRESIM - FIRE Portfolio Projection")

	breadcrumb := m.currentScene.String()
	if m.base != nil {
		breadcrumb = fmt.Sprintf("%s / %d-%d, age %d-%d, %s/%s", breadcrumb,
			m.base.StartYear, m.base.EndYear(), m.base.StartAge, m.base.EndAge,
			m.base.DomesticCurrency, m.base.ForeignCurrency)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		tuistyles.SubtitleStyle.Render(breadcrumb),
	)
}

// renderStatusBar renders the bottom status bar with keyboard shortcuts
func (m Model) renderStatusBar() string {
	statusText := m.help.ShortHelpView(m.keys.ShortHelp())
	if m.status != "" {
		note := tuistyles.SubtitleStyle.Render(m.status)
		spacer := strings.Repeat(" ", max(1, m.width-lipgloss.Width(statusText)-lipgloss.Width(note)-4))
		statusText = statusText + spacer + note
	}
	return tuistyles.StatusBarStyle.Width(m.width).Render(statusText)
}

// renderLoading renders a loading message
func (m Model) renderLoading() string {
	message := m.loadingMessage
	if message == "" {
		message = "Loading..."
	}
	return m.renderApp(tuistyles.BorderStyle.Render("⠋ " + message))
}

// renderError renders an error message
func (m Model) renderError() string {
	hint := "Press q to quit"
	if m.base != nil {
		hint = "Press any key to continue..."
	}
	content := tuistyles.ErrorStyle.Render(fmt.Sprintf("Error: %s\n\n%s", m.err, hint))
	return m.renderApp(content)
}

func (m Model) currency() string {
	if m.base == nil {
		return ""
	}
	return m.base.DomesticCurrency
}

// renderDashboard shows the sliders beside the headline metrics and chart.
func (m Model) renderDashboard() string {
	left := m.renderSliders()
	right := lipgloss.JoinVertical(lipgloss.Left, m.renderMetrics(), m.renderChart())
	return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
}

func (m Model) renderSliders() string {
	var rows []string
	for i, s := range m.sliders {
		if i == m.focused {
			rows = append(rows, s.Render())
			continue
		}
		rows = append(rows, s.RenderCompact())
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// renderMetrics shows the projection summary with changes against the loaded plan.
func (m Model) renderMetrics() string {
	r := m.result
	if r == nil {
		return ""
	}
	code := m.currency()

	held := "yes"
	if !r.BufferHeld {
		held = "NO"
		if r.FirstBreachYear != nil {
			held = "NO, from " + strconv.Itoa(*r.FirstBreachYear)
		}
	}

	minCard := components.NewMetricCard("Minimum portfolio", output.FormatMoneyWhole(r.MinimumPortfolioValue, code)).
		WithDescription(fmt.Sprintf("in %d", r.MinimumPortfolioYear)).
		WithWidth(26)
	finalCard := components.NewMetricCard("Final portfolio", output.FormatMoneyWhole(r.FinalPortfolioValue, code)).
		WithWidth(26)
	bufferCard := components.NewMetricCard("Buffer held", held).
		WithDescription(output.FormatMoneyWhole(r.Buffer, code)).
		WithAlert(!r.BufferHeld).
		WithWidth(26)
	shortCard := components.NewMetricCard("Total shortfall", output.FormatMoneyWhole(r.TotalShortfall, code)).
		WithDescription(fmt.Sprintf("%d years short", r.YearsWithShortfall())).
		WithAlert(r.TotalShortfall.IsPositive()).
		WithWidth(26)

	if b := m.baseline; b != nil && b != r {
		withDelta(minCard, r.MinimumPortfolioValue.Sub(b.MinimumPortfolioValue), true, code)
		withDelta(finalCard, r.FinalPortfolioValue.Sub(b.FinalPortfolioValue), true, code)
		withDelta(shortCard, r.TotalShortfall.Sub(b.TotalShortfall), false, code)
	}

	return components.MetricGrid([]*components.MetricCard{minCard, finalCard, bufferCard, shortCard}, 2)
}

// withDelta attaches a trend when delta is non-zero. higherIsBetter picks the
// colour direction.
func withDelta(card *components.MetricCard, delta decimal.Decimal, higherIsBetter bool, code string) {
	if delta.IsZero() {
		return
	}
	good := delta.IsPositive() == higherIsBetter
	card.WithTrend(good, tuistyles.FormatCompact(delta.InexactFloat64(), output.CurrencySymbol(code)))
}

// renderChart plots ending portfolio and expenses per year against the buffer.
func (m Model) renderChart() string {
	r := m.result
	if r == nil || len(r.Records) == 0 {
		return tuistyles.InfoStyle.Render("No projection years.")
	}
	portfolio := make([]float64, len(r.Records))
	expenses := make([]float64, len(r.Records))
	labels := make([]string, len(r.Records))
	for i, rec := range r.Records {
		portfolio[i] = rec.EndingPortfolioValue.InexactFloat64()
		expenses[i] = rec.TotalExpenses.InexactFloat64()
		labels[i] = strconv.Itoa(rec.Year)
	}

	width := max(m.width-lipgloss.Width(m.renderSliders())-6, 40)
	chart := components.NewASCIIChart("Ending portfolio").
		AddSeries("Portfolio", portfolio, tuistyles.ColorChartLine1).
		AddSeries("Expenses", expenses, tuistyles.ColorChartLine2).
		AddThreshold("Buffer", r.Buffer.InexactFloat64(), tuistyles.ColorChartLine3).
		WithLabels(labels).
		WithSymbol(output.CurrencySymbol(m.currency())).
		WithSize(width, max(m.height-22, 8))
	return chart.Render()
}

// renderTable shows a scrolling window of year records.
func (m Model) renderTable() string {
	r := m.result
	if r == nil || len(r.Records) == 0 {
		return tuistyles.BorderStyle.Render("No projection years.")
	}
	code := m.currency()

	header := fmt.Sprintf("%-6s %-4s %14s %14s %14s %14s %12s %16s",
		"Year", "Age", "Expenses", "Rental", "Withdrawn", "Shortfall", "Tax paid", "Ending")
	lines := []string{tuistyles.TableHeaderStyle.Render(header)}

	end := min(m.tableOffset+m.tableRows(), len(r.Records))
	for _, rec := range r.Records[m.tableOffset:end] {
		line := fmt.Sprintf("%-6d %-4d %14s %14s %14s %14s %12s %16s",
			rec.Year, rec.Age,
			output.FormatMoneyWhole(rec.TotalExpenses, code),
			output.FormatMoneyWhole(rec.RentalIncome, code),
			output.FormatMoneyWhole(rec.ActualWithdrawal, code),
			output.FormatMoneyWhole(rec.Shortfall, code),
			output.FormatMoneyWhole(rec.TaxPaid, code),
			output.FormatMoneyWhole(rec.EndingPortfolioValue, code))
		lines = append(lines, rowStyle(rec, r.Buffer).Render(line))
	}
	lines = append(lines, tuistyles.SubtitleStyle.Render(
		fmt.Sprintf("years %d-%d of %d", m.tableOffset+1, end, len(r.Records))))
	return strings.Join(lines, "\n")
}

func rowStyle(rec domain.YearRecord, buffer decimal.Decimal) lipgloss.Style {
	if rec.EndingPortfolioValue.LessThan(buffer) || rec.Shortfall.IsPositive() {
		return tuistyles.TableHighlightStyle
	}
	return tuistyles.TableCellStyle
}

// renderHelp renders the help screen
func (m Model) renderHelp() string {
	var b strings.Builder
	b.WriteString("FIRESIM - FIRE Portfolio Projection\n\n")
	b.WriteString("Move a slider to re-run the projection with that assumption changed.\n")
	b.WriteString("Metric cards show the change against the plan as loaded from the file.\n")
	b.WriteString("Rows in red are years below the buffer or with a shortfall.\n\n")
	b.WriteString(m.help.FullHelpView(m.keys.FullHelp()))
	b.WriteString("\n\nModel conventions:\n")
	for _, a := range output.ModelAssumptions {
		b.WriteString("  - " + a + "\n")
	}
	return tuistyles.BorderStyle.Render(b.String())
}
