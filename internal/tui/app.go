package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/liquers/liquers-go/internal/monitor"
	"github.com/liquers/liquers-go/internal/registry"
)

// App wraps the bubbletea program.
type App struct {
	model Model
}

// New creates the TUI application around a coordinator and its registry.
func New(coord *monitor.Coordinator, reg *registry.Registry, tickInterval time.Duration) *App {
	return &App{model: NewModel(coord, reg, tickInterval)}
}

// Run starts the TUI and blocks until the user quits.
func (a *App) Run() error {
	program := tea.NewProgram(a.model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
