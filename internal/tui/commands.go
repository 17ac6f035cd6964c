package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

var errNoLoader = errors.New("storage not configured")

// loadSnapshot reads the current snapshot from storage.
func (m Model) loadSnapshot() tea.Cmd {
	loader := m.config.Loader
	parent := m.ctx
	return func() tea.Msg {
		if loader == nil {
			return snapshotLoadedMsg{err: errNoLoader}
		}

		ctx, cancel := context.WithTimeout(parent, 10*time.Second)
		defer cancel()

		snap, err := loader.LoadSnapshot(ctx)
		return snapshotLoadedMsg{snapshot: snap, err: err}
	}
}
