package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rgehrsitz/firesim/internal/tui/tuistyles"
	"github.com/shopspring/decimal"
)

// ParameterSlider edits one plan assumption. Value is in display units and
// Scale converts it back to the model value, so a rate shown as 7.25% has
// Scale 100 and DecimalValue 0.0725.
type ParameterSlider struct {
	Key         string
	Label       string
	Description string
	Unit        string
	Format      string
	Value       float64
	Initial     float64
	Min, Max    float64
	Step        float64
	Scale       float64
	Width       int
	IsFocused   bool
}

func NewParameterSlider(label string, value, lo, hi, step float64) *ParameterSlider {
	return &ParameterSlider{
		Label:   label,
		Format:  "%.2f",
		Value:   value,
		Initial: value,
		Min:     lo,
		Max:     hi,
		Step:    step,
		Scale:   1,
		Width:   30,
	}
}

// WithKey names the parameter the slider drives.
func (p *ParameterSlider) WithKey(key string) *ParameterSlider {
	p.Key = key
	return p
}

// WithScale sets the display-to-model divisor. Zero is ignored.
func (p *ParameterSlider) WithScale(scale float64) *ParameterSlider {
	if scale != 0 {
		p.Scale = scale
	}
	return p
}

func (p *ParameterSlider) WithUnit(unit string) *ParameterSlider {
	p.Unit = unit
	return p
}

func (p *ParameterSlider) WithFormat(format string) *ParameterSlider {
	p.Format = format
	return p
}

func (p *ParameterSlider) WithWidth(width int) *ParameterSlider {
	p.Width = width
	return p
}

func (p *ParameterSlider) WithDescription(desc string) *ParameterSlider {
	p.Description = desc
	return p
}

func (p *ParameterSlider) SetFocused(focused bool) *ParameterSlider {
	p.IsFocused = focused
	return p
}

// Increment moves one step up and reports whether the value changed.
func (p *ParameterSlider) Increment() bool { return p.shift(1) }

// Decrement moves one step down and reports whether the value changed.
func (p *ParameterSlider) Decrement() bool { return p.shift(-1) }

// shift snaps to the step grid so repeated presses never accumulate float error.
func (p *ParameterSlider) shift(dir float64) bool {
	before := p.Value
	next := p.Value + dir*p.Step
	if p.Step > 0 {
		next = math.Round(next/p.Step) * p.Step
	}
	p.SetValue(next)
	return p.Value != before
}

// SetValue clamps v into [Min, Max].
func (p *ParameterSlider) SetValue(v float64) {
	p.Value = min(max(v, p.Min), p.Max)
}

// Reset restores the loaded value and reports whether anything changed.
func (p *ParameterSlider) Reset() bool {
	changed := p.Changed()
	p.Value = p.Initial
	return changed
}

func (p *ParameterSlider) Changed() bool { return p.Value != p.Initial }

// DecimalValue is the model value, rounded to eight places.
func (p *ParameterSlider) DecimalValue() decimal.Decimal {
	return decimal.NewFromFloat(p.Value).Div(decimal.NewFromFloat(p.Scale)).Round(8)
}

// Percentage is the position of Value within the range, 0 to 1.
func (p *ParameterSlider) Percentage() float64 {
	if p.Max <= p.Min {
		return 0
	}
	return (p.Value - p.Min) / (p.Max - p.Min)
}

func (p *ParameterSlider) show(v float64) string {
	return fmt.Sprintf(p.Format, v) + p.Unit
}

func (p *ParameterSlider) styles() (label, value lipgloss.Style) {
	label, value = tuistyles.ParameterLabelStyle, tuistyles.ParameterValueStyle
	if p.IsFocused {
		label = label.Foreground(tuistyles.ColorPrimary)
		value = value.Foreground(tuistyles.ColorAccent)
	}
	return label, value
}

// Render is the expanded form shown for the focused slider.
func (p *ParameterSlider) Render() string {
	labelStyle, valueStyle := p.styles()
	muted := lipgloss.NewStyle().Foreground(tuistyles.ColorMuted)

	lines := []string{
		labelStyle.Render(p.Label),
		valueStyle.Render(p.show(p.Value)) + muted.Render(p.movedNote()),
		p.bar(p.Width, true),
		muted.Render(p.show(p.Min) + "  ─  " + p.show(p.Max)),
	}
	if p.Description != "" {
		lines = append(lines, muted.Italic(true).Render(p.Description))
	}
	if p.IsFocused {
		lines = append(lines, lipgloss.NewStyle().Foreground(tuistyles.ColorInfo).Italic(true).
			Render("← → to adjust • ↑↓ to choose • r to reset"))
	}
	return strings.Join(lines, "\n")
}

// movedNote shows the loaded value once the slider has been moved.
func (p *ParameterSlider) movedNote() string {
	if !p.Changed() {
		return ""
	}
	return "  (was " + p.show(p.Initial) + ")"
}

// RenderCompact is the one-line form used for unfocused sliders.
func (p *ParameterSlider) RenderCompact() string {
	labelStyle, valueStyle := p.styles()
	mark := " "
	if p.Changed() {
		mark = "*"
	}
	return labelStyle.Render(p.Label+":") + " " + valueStyle.Render(p.show(p.Value)) + mark + " " + p.bar(10, false)
}

// bar draws the track with the thumb at the current position. A bracketed
// bar of width w has w cells between the brackets.
func (p *ParameterSlider) bar(w int, focused bool) string {
	w = max(w, 1)
	thumbAt := min(int(math.Round(float64(w-1)*p.Percentage())), w-1)

	thumb := tuistyles.SliderThumbStyle
	if focused && p.IsFocused {
		thumb = thumb.Foreground(tuistyles.ColorAccent)
	}
	var b strings.Builder
	b.WriteString("[")
	if thumbAt > 0 {
		b.WriteString(thumb.Render(strings.Repeat("━", thumbAt)))
	}
	b.WriteString(thumb.Render("●"))
	if rest := w - thumbAt - 1; rest > 0 {
		b.WriteString(tuistyles.SliderTrackStyle.Render(strings.Repeat("─", rest)))
	}
	b.WriteString("]")
	return b.String()
}
