package components

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rgehrsitz/firesim/internal/tui/tuistyles"
)

const (
	axisWidth     = 12
	thresholdRune = '┄'
)

var seriesMarks = []rune{'●', '■', '▲', '♦'}

// DataSeries is one plotted line, one point per label.
type DataSeries struct {
	Name   string
	Points []float64
	Color  lipgloss.Color
}

// Threshold is a horizontal reference line such as the safety buffer.
type Threshold struct {
	Name  string
	Value float64
	Color lipgloss.Color
}

// ASCIIChart plots a few series on a character grid with a compact money axis.
type ASCIIChart struct {
	Title      string
	Series     []*DataSeries
	Thresholds []Threshold
	Labels     []string
	Symbol     string
	Width      int
	Height     int
}

func NewASCIIChart(title string) *ASCIIChart {
	return &ASCIIChart{Title: title, Width: 60, Height: 15}
}

func (c *ASCIIChart) AddSeries(name string, points []float64, color lipgloss.Color) *ASCIIChart {
	c.Series = append(c.Series, &DataSeries{Name: name, Points: points, Color: color})
	return c
}

func (c *ASCIIChart) AddThreshold(name string, value float64, color lipgloss.Color) *ASCIIChart {
	c.Thresholds = append(c.Thresholds, Threshold{Name: name, Value: value, Color: color})
	return c
}

// WithSymbol sets the currency symbol printed on the value axis.
func (c *ASCIIChart) WithSymbol(symbol string) *ASCIIChart {
	c.Symbol = symbol
	return c
}

// WithLabels sets the x-axis labels, usually the projection years.
func (c *ASCIIChart) WithLabels(labels []string) *ASCIIChart {
	c.Labels = labels
	return c
}

func (c *ASCIIChart) WithSize(width, height int) *ASCIIChart {
	c.Width = width
	c.Height = height
	return c
}

// cell is one character of the plot area. A zero color leaves it unstyled.
type cell struct {
	mark  rune
	color lipgloss.Color
}

// canvas maps values onto a rows x cols grid between lo and hi.
type canvas struct {
	cells  [][]cell
	lo, hi float64
}

func newCanvas(rows, cols int, lo, hi float64) *canvas {
	cv := &canvas{cells: make([][]cell, rows), lo: lo, hi: hi}
	for r := range cv.cells {
		cv.cells[r] = make([]cell, cols)
		for col := range cv.cells[r] {
			cv.cells[r][col] = cell{mark: ' '}
		}
	}
	return cv
}

func (cv *canvas) rows() int { return len(cv.cells) }
func (cv *canvas) cols() int { return len(cv.cells[0]) }

// row returns the grid row of v; the top row holds hi.
func (cv *canvas) row(v float64) int {
	frac := (v - cv.lo) / (cv.hi - cv.lo)
	return cv.rows() - 1 - int(math.Round(frac*float64(cv.rows()-1)))
}

// col spreads n points evenly over the width.
func (cv *canvas) col(i, n int) int {
	if n <= 1 {
		return 0
	}
	return int(math.Round(float64(i) / float64(n-1) * float64(cv.cols()-1)))
}

func (cv *canvas) set(r, col int, mark rune, color lipgloss.Color, overwrite bool) {
	if r < 0 || r >= cv.rows() || col < 0 || col >= cv.cols() {
		return
	}
	current := cv.cells[r][col].mark
	if !overwrite && current != ' ' && current != thresholdRune {
		return
	}
	cv.cells[r][col] = cell{mark: mark, color: color}
}

// plot marks every point and fills each column between neighbours with the
// linearly interpolated value so steep drops stay connected.
func (cv *canvas) plot(points []float64, mark rune, color lipgloss.Color) {
	n := len(points)
	for i := 0; i+1 < n; i++ {
		x0, x1 := cv.col(i, n), cv.col(i+1, n)
		for x := x0; x <= x1; x++ {
			t := 0.0
			if x1 > x0 {
				t = float64(x-x0) / float64(x1-x0)
			}
			v := points[i] + t*(points[i+1]-points[i])
			cv.set(cv.row(v), x, mark, color, false)
		}
		// vertical fill where one column jumps several rows
		r0, r1 := cv.row(points[i]), cv.row(points[i+1])
		if x1-x0 <= 1 {
			for r := min(r0, r1); r <= max(r0, r1); r++ {
				cv.set(r, x1, mark, color, false)
			}
		}
	}
	for i, p := range points {
		cv.set(cv.row(p), cv.col(i, n), mark, color, true)
	}
}

func (cv *canvas) hline(v float64, color lipgloss.Color) {
	r := cv.row(v)
	for x := 0; x < cv.cols(); x += 2 {
		cv.set(r, x, thresholdRune, color, false)
	}
}

func (cv *canvas) line(r int) string {
	var b strings.Builder
	for _, cl := range cv.cells[r] {
		if cl.color == "" {
			b.WriteRune(cl.mark)
			continue
		}
		b.WriteString(lipgloss.NewStyle().Foreground(cl.color).Render(string(cl.mark)))
	}
	return b.String()
}

// bounds returns the padded value range covering every point and threshold.
func (c *ASCIIChart) bounds() (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	see := func(v float64) {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	for _, s := range c.Series {
		for _, p := range s.Points {
			see(p)
		}
	}
	for _, t := range c.Thresholds {
		see(t.Value)
	}
	switch {
	case math.IsInf(lo, 1):
		return 0, 1
	case lo == hi:
		return lo - 1, hi + 1
	}
	pad := (hi - lo) / 10
	return lo - pad, hi + pad
}

func (c *ASCIIChart) Render() string {
	if len(c.Series) == 0 {
		return tuistyles.InfoStyle.Render("No data to display")
	}

	lo, hi := c.bounds()
	cv := newCanvas(max(c.Height, 2), max(c.Width-axisWidth, 10), lo, hi)
	for _, t := range c.Thresholds {
		cv.hline(t.Value, t.Color)
	}
	for i, s := range c.Series {
		cv.plot(s.Points, seriesMarks[i%len(seriesMarks)], s.Color)
	}

	muted := lipgloss.NewStyle().Foreground(tuistyles.ColorMuted)
	axis := muted.Width(axisWidth).Align(lipgloss.Right)

	var lines []string
	if c.Title != "" {
		lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(tuistyles.ColorPrimary).Render(c.Title), "")
	}
	for r := 0; r < cv.rows(); r++ {
		v := hi - float64(r)/float64(cv.rows()-1)*(hi-lo)
		lines = append(lines, axis.Render(tuistyles.FormatCompact(v, c.Symbol))+" │ "+cv.line(r))
	}
	lines = append(lines, strings.Repeat(" ", axisWidth)+" └"+strings.Repeat("─", cv.cols()))
	if len(c.Labels) > 0 {
		lines = append(lines, strings.Repeat(" ", axisWidth+3)+muted.Render(c.xLabels(cv)))
	}
	if len(c.Series)+len(c.Thresholds) > 1 {
		lines = append(lines, "", c.legend())
	}
	return strings.Join(lines, "\n")
}

// xLabels places up to five labels under their columns without overlap.
func (c *ASCIIChart) xLabels(cv *canvas) string {
	row := []rune(strings.Repeat(" ", cv.cols()))
	n := len(c.Labels)
	every := max(1, (n+4)/5)
	next := 0
	for i := 0; i < n; i += every {
		label := []rune(c.Labels[i])
		at := min(cv.col(i, n), max(cv.cols()-len(label), 0))
		if at < next {
			continue
		}
		copy(row[at:], label)
		next = at + len(label) + 1
	}
	return strings.TrimRight(string(row), " ")
}

func (c *ASCIIChart) legend() string {
	items := make([]string, 0, len(c.Series)+len(c.Thresholds))
	for i, s := range c.Series {
		mark := lipgloss.NewStyle().Foreground(s.Color).Render(string(seriesMarks[i%len(seriesMarks)]))
		items = append(items, mark+" "+s.Name)
	}
	for _, t := range c.Thresholds {
		items = append(items, lipgloss.NewStyle().Foreground(t.Color).Render(string(thresholdRune))+" "+t.Name)
	}
	return lipgloss.NewStyle().Foreground(tuistyles.ColorMuted).Render("Legend: " + strings.Join(items, " • "))
}
