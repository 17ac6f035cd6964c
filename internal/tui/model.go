// Package tui is the read-only payday dashboard: safe-to-spend, the reserved
// breakdown, bucket status, and the balance forecast.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/the-payday-must-flow/internal/tui/themes"
)

// Tab is one dashboard page.
type Tab int

// Dashboard tabs, in display order.
const (
	TabOverview Tab = iota
	TabReserved
	TabBuckets
	TabForecast
)

var tabNames = []string{"Overview", "Reserved", "Buckets", "Forecast"}

func (t Tab) String() string {
	if int(t) < len(tabNames) {
		return tabNames[t]
	}
	return "Unknown"
}

// Model holds the dashboard state.
type Model struct {
	ctx       context.Context
	lastError error
	theme     themes.Theme
	config    Config
	keymap    KeyMap
	help      help.Model
	table     table.Model
	progress  progress.Model
	data      dashboard
	width     int
	height    int
	tab       Tab
	ready     bool
	quitting  bool
}

// newModel creates a new model with the given configuration.
func newModel(ctx context.Context, cfg Config) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	styles := table.DefaultStyles()
	styles.Header = cfg.Theme.Header
	styles.Selected = cfg.Theme.Selected

	m := Model{
		ctx:    ctx,
		config: cfg,
		theme:  cfg.Theme,
		keymap: DefaultKeyMap(),
		help:   help.New(),
		table: table.New(
			table.WithFocused(true),
			table.WithStyles(styles),
		),
		progress: progress.New(
			progress.WithGradient(string(cfg.Theme.Secondary), string(cfg.Theme.Primary)),
			progress.WithWidth(24),
		),
		width:  cfg.Width,
		height: cfg.Height,
	}
	m.help.Width = cfg.Width
	return m
}

// Init loads the first snapshot.
func (m Model) Init() tea.Cmd {
	return m.loadSnapshot()
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if cmd, handled := m.handleGlobalKeys(msg); handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.refreshTable()
		return m, nil

	case snapshotLoadedMsg:
		if msg.err != nil {
			m.lastError = msg.err
			return m, nil
		}
		m.lastError = nil
		m.data = buildDashboard(msg.snapshot, m.config.Clock.Today(), m.config.ForecastDays)
		m.ready = true
		m.refreshTable()
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// handleGlobalKeys processes keys that work on every tab.
func (m *Model) handleGlobalKeys(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keymap.ForceQuit), key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return tea.Quit, true

	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.refreshTable()
		return nil, true

	case key.Matches(msg, m.keymap.Refresh):
		return m.loadSnapshot(), true

	case key.Matches(msg, m.keymap.NextTab):
		m.setTab((m.tab + 1) % Tab(len(tabNames)))
		return nil, true

	case key.Matches(msg, m.keymap.PrevTab):
		m.setTab((m.tab + Tab(len(tabNames)) - 1) % Tab(len(tabNames)))
		return nil, true
	}
	return nil, false
}

func (m *Model) setTab(t Tab) {
	m.tab = t
	m.refreshTable()
	m.table.GotoTop()
}

// refreshTable rebuilds the table for the active tab and the current size.
func (m *Model) refreshTable() {
	titles, weights, rows := m.tableContent()
	m.table.SetRows(nil)
	m.table.SetColumns(layoutColumns(titles, weights, m.width-4))
	m.table.SetRows(rows)
	m.table.SetCursor(m.table.Cursor())
	m.table.SetHeight(max(m.tableHeight(), 3))
}

// tableHeight is what is left after the chrome around the table.
func (m Model) tableHeight() int {
	chrome := 8
	if m.help.ShowAll {
		chrome += 3
	}
	if m.tab == TabBuckets {
		chrome += min(len(m.goals()), 5) + 2
	}
	return m.height - chrome
}

// layoutColumns splits width across columns by weight.
func layoutColumns(titles []string, weights []int, width int) []table.Column {
	total := 0
	for _, w := range weights {
		total += w
	}
	// Cells carry one space of padding on each side.
	usable := width - 2*len(titles)
	cols := make([]table.Column, len(titles))
	for i, t := range titles {
		w := len(t)
		if total > 0 && usable > 0 {
			w = max(w, usable*weights[i]/total)
		}
		cols[i] = table.Column{Title: t, Width: w}
	}
	return cols
}
