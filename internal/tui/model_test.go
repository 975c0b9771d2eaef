package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgehrsitz/firesim/internal/domain"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// shortPlan runs out of money in its second year: 600k a year against 1M.
func shortPlan() *domain.ParameterSet {
	return &domain.ParameterSet{
		StartYear:        2025,
		StartAge:         40,
		EndAge:           42,
		DomesticCurrency: "INR",
		ForeignCurrency:  "USD",
		Rental:           domain.RentalSchedule{CutoverYear: 2035},
		ExchangeRate:     domain.ExchangeRateAssumptions{BaseRate: dec("80")},
		Buckets: []domain.AssetBucket{
			{Name: "fd_domestic", Currency: domain.Domestic, Balance: dec("1000000")},
			{Name: "fd_foreign", Currency: domain.Foreign, Balance: decimal.Zero},
		},
		WithdrawalOrder: []string{"fd_domestic", "fd_foreign"},
		Expenses:        domain.ExpenseAssumptions{LivingMonthly: dec("50000")},
		Tax: domain.TaxSlabs{
			Slab1: dec("10000000"),
			Slab2: dec("20000000"),
			Rate2: dec("0.20"),
			Rate3: dec("0.30"),
		},
	}
}

// drive feeds msg to m and then runs every resulting command synchronously.
func drive(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	for msg != nil {
		next, cmd := m.Update(msg)
		m = next.(Model)
		if cmd == nil {
			break
		}
		msg = cmd()
	}
	return m
}

func start(t *testing.T) Model {
	t.Helper()
	m := NewModelWithParams(shortPlan())
	cmd := m.Init()
	require.NotNil(t, cmd)
	m = drive(t, m, cmd())
	require.NoError(t, m.err)
	require.NotNil(t, m.result)
	return m
}

func keyPress(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func runeKey(r string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(r)} }

func TestModel_InitialProjection(t *testing.T) {
	m := start(t)

	assert.False(t, m.loading)
	assert.Same(t, m.result, m.baseline)
	assert.True(t, m.result.TotalShortfall.Equal(dec("800000")))
	assert.Len(t, m.sliders, 7, "five assumptions plus one growth slider per bucket")
	assert.Equal(t, "growth:fd_foreign", m.sliders[6].Key)
	assert.True(t, m.sliders[0].IsFocused)
}

func TestModel_SliderChangeReprojects(t *testing.T) {
	m := start(t)

	for i := 0; i < 3; i++ {
		m = drive(t, m, keyPress(tea.KeyDown))
	}
	require.Equal(t, "living_monthly", m.sliders[m.focused].Key)

	m = drive(t, m, keyPress(tea.KeyRight))

	assert.InDelta(t, 52500, m.sliders[m.focused].Value, 0.001)
	assert.True(t, m.result.TotalShortfall.Equal(dec("890000")), "got %s", m.result.TotalShortfall)
	assert.True(t, m.baseline.TotalShortfall.Equal(dec("800000")), "baseline stays the loaded plan")
	assert.True(t, m.base.Expenses.LivingMonthly.Equal(dec("50000")), "loaded plan is never modified")
	assert.Contains(t, m.status, "Living per month")

	m = drive(t, m, runeKey("r"))
	assert.True(t, m.result.TotalShortfall.Equal(dec("800000")))
	assert.False(t, m.sliders[m.focused].Changed())
}

func TestModel_FocusWraps(t *testing.T) {
	m := start(t)

	m = drive(t, m, keyPress(tea.KeyUp))
	assert.Equal(t, len(m.sliders)-1, m.focused)
	m = drive(t, m, keyPress(tea.KeyDown))
	assert.Equal(t, 0, m.focused)
}

func TestModel_StaleResultDropped(t *testing.T) {
	m := start(t)
	current := m.result

	m = drive(t, m, CalculationCompleteMsg{Generation: m.generation - 1, Result: &domain.SimulationResult{}})

	assert.Same(t, current, m.result)
}

func TestModel_PercentSliderApplied(t *testing.T) {
	m := start(t)

	m = drive(t, m, keyPress(tea.KeyRight))

	params, err := m.applySliders()
	require.NoError(t, err)
	assert.True(t, params.Inflation.Domestic.Equal(dec("0.0025")), "got %s", params.Inflation.Domestic)
	assert.True(t, params.Expenses.LivingMonthly.Equal(dec("50000")))
}

func TestModel_Navigation(t *testing.T) {
	m := start(t)

	m = drive(t, m, runeKey("t"))
	assert.Equal(t, SceneTable, m.currentScene)
	view := m.View()
	assert.Contains(t, view, "Year")
	assert.Contains(t, view, "2027")

	m = drive(t, m, runeKey("?"))
	assert.Equal(t, SceneHelp, m.currentScene)
	assert.Contains(t, m.View(), "Model conventions")

	m = drive(t, m, runeKey("?"))
	assert.Equal(t, SceneTable, m.currentScene)

	m = drive(t, m, keyPress(tea.KeyEsc))
	assert.Equal(t, SceneDashboard, m.currentScene)
	assert.Contains(t, m.View(), "Minimum portfolio")
}

func TestModel_LoadError(t *testing.T) {
	m := NewModel("testdata/does-not-exist.yaml")
	m = drive(t, m, m.Init()())

	require.Error(t, m.err)
	assert.Contains(t, m.View(), "Error:")

	m = drive(t, m, runeKey("t"))
	assert.Error(t, m.err, "no plan to fall back to")

	_, cmd := m.Update(runeKey("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_Quit(t *testing.T) {
	m := start(t)
	_, cmd := m.Update(keyPress(tea.KeyCtrlC))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_TableScrollClamped(t *testing.T) {
	m := start(t)
	m = drive(t, m, runeKey("t"))
	m = drive(t, m, keyPress(tea.KeyPgDown))
	assert.Equal(t, 0, m.tableOffset, "three years fit on one page")
}

func TestModel_ExportWritesCSV(t *testing.T) {
	t.Chdir(t.TempDir())
	m := start(t)

	m = drive(t, m, runeKey("x"))
	require.NoError(t, m.err)
	assert.Contains(t, m.status, "Exported ")
	assert.Contains(t, m.status, ".csv")
}
