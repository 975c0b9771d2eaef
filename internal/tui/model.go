package tui

import (
	"context"
	"fmt"
	"math"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rgehrsitz/firesim/internal/calculation"
	"github.com/rgehrsitz/firesim/internal/config"
	"github.com/rgehrsitz/firesim/internal/domain"
	"github.com/rgehrsitz/firesim/internal/output"
	"github.com/rgehrsitz/firesim/internal/tui/components"
)

// Model represents the entire application state
type Model struct {
	// Navigation
	currentScene  Scene
	previousScene Scene

	// Terminal dimensions
	width  int
	height int

	// Configuration and data
	configPath string
	base       *domain.ParameterSet // as loaded; sliders apply on top of a copy

	// Calculation engine
	calcEngine *calculation.CalculationEngine

	sliders []*components.ParameterSlider
	focused int

	// generation increases on every slider change so late results can be dropped
	generation int
	result     *domain.SimulationResult
	baseline   *domain.SimulationResult

	tableOffset int

	keys keyMap
	help help.Model

	status string

	// Error state
	err error

	// Loading state
	loading        bool
	loadingMessage string
}

// NewModel creates a model that loads its plan from configPath on Init.
func NewModel(configPath string) Model {
	return Model{
		currentScene:   SceneDashboard,
		configPath:     configPath,
		calcEngine:     calculation.NewCalculationEngine(),
		keys:           defaultKeyMap(),
		help:           help.New(),
		width:          100,
		height:         32,
		loading:        true,
		loadingMessage: "Loading configuration...",
	}
}

// NewModelWithParams creates a model for an already loaded plan.
func NewModelWithParams(params *domain.ParameterSet) Model {
	m := NewModel("")
	m.setParams(params)
	return m
}

// Init initializes the model (required by tea.Model interface)
func (m Model) Init() tea.Cmd {
	if m.base != nil {
		params, err := m.applySliders()
		if err != nil {
			return func() tea.Msg { return ErrorMsg{Err: err} }
		}
		return recalculateCmd(m.calcEngine, params, m.generation)
	}
	return loadConfigCmd(m.configPath)
}

// setParams installs a freshly loaded plan and rebuilds the sliders.
func (m *Model) setParams(params *domain.ParameterSet) {
	m.base = params
	m.sliders = buildSliders(params)
	m.focused = 0
	m.result = nil
	m.baseline = nil
	m.tableOffset = 0
	m.generation++
	m.loading = true
	m.loadingMessage = "Projecting..."
	m.focusSlider(0)
}

func (m *Model) focusSlider(i int) {
	if len(m.sliders) == 0 {
		return
	}
	m.focused = (i + len(m.sliders)) % len(m.sliders)
	for j, s := range m.sliders {
		s.SetFocused(j == m.focused)
	}
}

// applySliders returns a copy of the loaded plan with every moved slider applied.
// Untouched sliders keep the exact loaded value.
func (m Model) applySliders() (*domain.ParameterSet, error) {
	p := m.base.DeepCopy()
	for _, s := range m.sliders {
		if !s.Changed() {
			continue
		}
		if err := calculation.ApplyParameter(p, s.Key, s.DecimalValue()); err != nil {
			return nil, fmt.Errorf("apply %s: %w", s.Label, err)
		}
	}
	return p, nil
}

// recalculate bumps the generation and projects the current slider state.
func (m *Model) recalculate() tea.Cmd {
	m.generation++
	params, err := m.applySliders()
	if err != nil {
		m.err = err
		return nil
	}
	m.loading = m.result == nil
	return recalculateCmd(m.calcEngine, params, m.generation)
}

// loadConfigCmd returns a command that loads the configuration file
func loadConfigCmd(path string) tea.Cmd {
	return func() tea.Msg {
		if path == "" {
			return ErrorMsg{Err: fmt.Errorf("no configuration file given")}
		}
		params, err := config.NewInputParser().LoadFromFile(path)
		if err != nil {
			return ErrorMsg{Err: err}
		}
		return ConfigLoadedMsg{Params: params}
	}
}

// recalculateCmd projects params in the background
func recalculateCmd(engine *calculation.CalculationEngine, params *domain.ParameterSet, generation int) tea.Cmd {
	return func() tea.Msg {
		result, err := engine.RunSimulation(context.Background(), params)
		return CalculationCompleteMsg{Generation: generation, Result: result, Err: err}
	}
}

// exportCmd writes the current projection as CSV in the working directory
func exportCmd(result *domain.SimulationResult) tea.Cmd {
	return func() tea.Msg {
		path, err := output.WriteFormatted(output.CSVFormatter{}, result, "csv")
		return ExportCompleteMsg{Path: path, Err: err}
	}
}

// buildSliders creates one slider per adjustable assumption of params.
// Rates are shown as percentages.
func buildSliders(params *domain.ParameterSet) []*components.ParameterSlider {
	unit := " " + params.DomesticCurrency
	sliders := []*components.ParameterSlider{
		percentSlider("domestic_inflation", "Domestic inflation", params.Inflation.Domestic.InexactFloat64(), 0, 20, 0.25).
			WithDescription("Escalates living, travel, insurance and repairs"),
		percentSlider("fx_growth", "Exchange rate growth", params.ExchangeRate.AnnualGrowth.InexactFloat64(), -10, 15, 0.25).
			WithDescription(fmt.Sprintf("Yearly change of %s per %s", params.DomesticCurrency, params.ForeignCurrency)),
		percentSlider("rental_increase", "Rental increase", params.Rental.AnnualIncrease.InexactFloat64(), 0, 20, 0.5),
		amountSlider("living_monthly", "Living per month", params.Expenses.LivingMonthly.InexactFloat64(), unit),
		amountSlider("buffer", "Safety buffer", params.Buffer.InexactFloat64(), unit).
			WithDescription("Portfolio floor that withdrawals never cross"),
	}
	for _, b := range params.Buckets {
		sliders = append(sliders, percentSlider(calculation.GrowthParameter(b.Name), "Growth "+b.Name, b.GrowthRate.InexactFloat64(), -20, 30, 0.25))
	}
	return sliders
}

func percentSlider(key, label string, rate, lo, hi, step float64) *components.ParameterSlider {
	v := rate * 100
	return components.NewParameterSlider(label, v, math.Min(lo, v), math.Max(hi, v), step).
		WithKey(key).
		WithScale(100).
		WithUnit("%").
		WithFormat("%.2f")
}

// amountSlider ranges from zero to three times the configured amount in
// twentieths of it, rounded to a whole hundred.
func amountSlider(key, label string, amount float64, unit string) *components.ParameterSlider {
	step := math.Max(100, math.Round(amount/20/100)*100)
	hi := math.Max(amount*3, step*20)
	return components.NewParameterSlider(label, amount, 0, hi, step).
		WithKey(key).
		WithUnit(unit).
		WithFormat("%.0f")
}
