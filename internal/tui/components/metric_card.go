package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rgehrsitz/firesim/internal/tui/tuistyles"
)

// MetricCard is a bordered box holding one headline figure of the projection.
type MetricCard struct {
	Label       string
	Value       string
	Description string
	Width       int
	Alert       bool
	Trend       *Trend
}

// Trend is the change of a figure against the loaded plan. IsPositive means
// the change is good news, whatever its sign.
type Trend struct {
	IsPositive bool
	Change     string
}

func NewMetricCard(label, value string) *MetricCard {
	return &MetricCard{Label: label, Value: value, Width: 30}
}

func (m *MetricCard) WithTrend(good bool, change string) *MetricCard {
	m.Trend = &Trend{IsPositive: good, Change: change}
	return m
}

func (m *MetricCard) WithDescription(desc string) *MetricCard {
	m.Description = desc
	return m
}

// WithAlert draws the border in the danger colour.
func (m *MetricCard) WithAlert(alert bool) *MetricCard {
	m.Alert = alert
	return m
}

func (m *MetricCard) WithWidth(width int) *MetricCard {
	m.Width = width
	return m
}

func (m *MetricCard) trendText() string {
	if m.Trend == nil {
		return ""
	}
	return tuistyles.MetricTrendStyle(m.Trend.IsPositive).
		Render(tuistyles.TrendIndicator(m.Trend.IsPositive) + " " + m.Trend.Change)
}

func (m *MetricCard) Render() string {
	lines := []string{
		tuistyles.MetricLabelStyle.Render(m.Label),
		tuistyles.MetricValueStyle.Render(m.Value),
	}
	if t := m.trendText(); t != "" {
		lines = append(lines, t)
	}
	if m.Description != "" {
		lines = append(lines, tuistyles.SubtitleStyle.Render(m.Description))
	}

	edge := tuistyles.ColorBorder
	if m.Alert {
		edge = tuistyles.ColorDanger
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(edge).
		Padding(0, 1).
		Width(m.Width).
		Render(strings.Join(lines, "\n"))
}

// RenderCompact is the borderless one-line form.
func (m *MetricCard) RenderCompact() string {
	parts := []string{
		tuistyles.MetricLabelStyle.Render(m.Label + ":"),
		tuistyles.MetricValueStyle.Render(m.Value),
	}
	if t := m.trendText(); t != "" {
		parts = append(parts, t)
	}
	return strings.Join(parts, " ")
}

// MetricGrid lays cards out left to right, wrapping after columns cards.
func MetricGrid(cards []*MetricCard, columns int) string {
	if len(cards) == 0 {
		return ""
	}
	columns = max(columns, 1)

	var rows []string
	for start := 0; start < len(cards); start += columns {
		end := min(start+columns, len(cards))
		rendered := make([]string, 0, end-start)
		for _, c := range cards[start:end] {
			rendered = append(rendered, c.Render())
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
