package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/restui/internal/app"
)

// Run starts the TUI on rt and blocks until the user quits. Confirmations
// of actions are answered in the UI when confirmer is the one the runtime
// was built with.
func Run(ctx context.Context, rt *app.Runtime, confirmer *Confirmer, opts Options) error {
	m := New(ctx, rt, opts)

	// Mouse is disabled by default in bubbletea
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if confirmer != nil {
		confirmer.Attach(p)
	}
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
