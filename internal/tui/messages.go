package tui

import (
	"github.com/rgehrsitz/firesim/internal/domain"
)

// Scene represents different screens in the TUI
type Scene int

const (
	SceneDashboard Scene = iota
	SceneTable
	SceneHelp
)

// Message types for the Bubble Tea update cycle

// NavigateMsg switches to a different scene
type NavigateMsg struct {
	Scene Scene
}

// ErrorMsg displays an error to the user
type ErrorMsg struct {
	Err error
}

// ConfigLoadedMsg signals configuration has been loaded
type ConfigLoadedMsg struct {
	Params *domain.ParameterSet
}

// CalculationCompleteMsg carries a finished projection. Generation identifies the
// slider state it was computed for; stale results are dropped.
type CalculationCompleteMsg struct {
	Generation int
	Result     *domain.SimulationResult
	Err        error
}

// ExportCompleteMsg reports where an export was written
type ExportCompleteMsg struct {
	Path string
	Err  error
}

// String returns a human-readable name for a scene
func (s Scene) String() string {
	switch s {
	case SceneDashboard:
		return "Dashboard"
	case SceneTable:
		return "Year by year"
	case SceneHelp:
		return "Help"
	default:
		return "Unknown"
	}
}
