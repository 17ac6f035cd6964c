package tui

import "github.com/Veraticus/the-payday-must-flow/internal/model"

// Data loading messages.
type snapshotLoadedMsg struct {
	err      error
	snapshot model.Snapshot
}
