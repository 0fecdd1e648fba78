package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run launches the interactive dashboard: a schema/config form, a live
// per-table progress view, a read-only row preview, and a log of past runs.
func Run() error {
	m := NewModel()
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(), // lets Preview's row table scroll with the wheel
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("seedforge TUI: %w", err)
	}
	return nil
}
