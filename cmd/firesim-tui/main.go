package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rgehrsitz/firesim/internal/config"
	"github.com/rgehrsitz/firesim/internal/tui"
)

func main() {
	settings, err := config.LoadSettings()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	// Config file from arguments, else FIRESIM_CONFIG
	configPath := settings.ConfigFile
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}
	if configPath == "" {
		fmt.Println("Usage: firesim-tui <config-file>")
		os.Exit(1)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		fmt.Printf("Error: Config file not found: %s\n", configPath)
		os.Exit(1)
	}

	p := tea.NewProgram(
		tui.NewModel(configPath),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
