package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles all messages and updates the model state
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	// Standard tea.Msg types
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	// Custom messages
	case NavigateMsg:
		if msg.Scene != m.currentScene {
			m.previousScene = m.currentScene
			m.currentScene = msg.Scene
		}
		return m, nil

	case ErrorMsg:
		m.loading = false
		m.err = msg.Err
		return m, nil

	case ConfigLoadedMsg:
		m.setParams(msg.Params)
		return m, m.Init()

	case CalculationCompleteMsg:
		if msg.Generation != m.generation {
			return m, nil
		}
		m.loading = false
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.result = msg.Result
		if m.baseline == nil {
			m.baseline = msg.Result
		}
		m.clampTableOffset()
		return m, nil

	case ExportCompleteMsg:
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.status = "Exported " + msg.Path
		return m, nil
	}

	return m, nil
}

// handleKeyPress processes keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	// Any key dismisses an error once a plan is loaded
	if m.err != nil {
		if m.base != nil {
			m.err = nil
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		if m.currentScene == SceneHelp {
			return m, navigate(m.previousScene)
		}
		return m, navigate(SceneHelp)

	case key.Matches(msg, m.keys.Back):
		return m, navigate(SceneDashboard)

	case key.Matches(msg, m.keys.Table):
		if m.currentScene == SceneTable {
			return m, navigate(SceneDashboard)
		}
		return m, navigate(SceneTable)

	case key.Matches(msg, m.keys.Export):
		if m.result == nil {
			m.status = "Nothing to export yet"
			return m, nil
		}
		return m, exportCmd(m.result)
	}

	switch m.currentScene {
	case SceneDashboard:
		return m.updateDashboard(msg)
	case SceneTable:
		return m.updateTable(msg)
	}
	return m, nil
}

func navigate(s Scene) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Scene: s} }
}

// updateDashboard moves between sliders and adjusts the focused one.
func (m Model) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if len(m.sliders) == 0 {
		return m, nil
	}
	s := m.sliders[m.focused]

	switch {
	case key.Matches(msg, m.keys.Up):
		m.focusSlider(m.focused - 1)
	case key.Matches(msg, m.keys.Down):
		m.focusSlider(m.focused + 1)
	case key.Matches(msg, m.keys.Left):
		if s.Decrement() {
			m.status = fmt.Sprintf("%s: "+s.Format+"%s", s.Label, s.Value, s.Unit)
			return m, m.recalculate()
		}
	case key.Matches(msg, m.keys.Right):
		if s.Increment() {
			m.status = fmt.Sprintf("%s: "+s.Format+"%s", s.Label, s.Value, s.Unit)
			return m, m.recalculate()
		}
	case key.Matches(msg, m.keys.Reset):
		changed := false
		for _, sl := range m.sliders {
			if sl.Reset() {
				changed = true
			}
		}
		if changed {
			m.status = "Reset to loaded plan"
			return m, m.recalculate()
		}
	}
	return m, nil
}

// updateTable scrolls the year-by-year table.
func (m Model) updateTable(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	page := m.tableRows()
	switch {
	case key.Matches(msg, m.keys.Up):
		m.tableOffset--
	case key.Matches(msg, m.keys.Down):
		m.tableOffset++
	case key.Matches(msg, m.keys.PageUp):
		m.tableOffset -= page
	case key.Matches(msg, m.keys.PageDown):
		m.tableOffset += page
	}
	m.clampTableOffset()
	return m, nil
}

// tableRows is how many year rows fit on screen.
func (m Model) tableRows() int {
	return max(m.height-9, 3)
}

func (m *Model) clampTableOffset() {
	n := 0
	if m.result != nil {
		n = len(m.result.Records)
	}
	m.tableOffset = min(m.tableOffset, n-m.tableRows())
	m.tableOffset = max(m.tableOffset, 0)
}
