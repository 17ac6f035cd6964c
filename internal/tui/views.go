package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/the-payday-must-flow/internal/model"
	"github.com/Veraticus/the-payday-must-flow/internal/money"
)

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return m.renderLoading()
	}

	sections := []string{m.renderTabs(), m.renderSummary(), m.table.View()}
	if m.tab == TabBuckets {
		if goals := m.renderGoals(); goals != "" {
			sections = append(sections, goals)
		}
	}
	if m.lastError != nil {
		sections = append(sections, m.theme.StatusError.Render("Refresh failed: "+m.lastError.Error()))
	}
	sections = append(sections, m.help.View(m.keymap))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderLoading renders the loading screen.
func (m Model) renderLoading() string {
	status := lipgloss.NewStyle().Foreground(m.theme.Muted).Render("Loading balances...")
	if m.lastError != nil {
		status = m.theme.StatusError.Render("Failed to load: " + m.lastError.Error())
	}
	content := lipgloss.JoinVertical(
		lipgloss.Center,
		m.theme.Title.Render("The Payday Must Flow"),
		"",
		status,
	)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m Model) renderTabs() string {
	tabs := make([]string, 0, len(tabNames))
	for i, name := range tabNames {
		if Tab(i) == m.tab {
			tabs = append(tabs, m.theme.TabActive.Render(name))
		} else {
			tabs = append(tabs, m.theme.TabInactive.Render(name))
		}
	}
	title := m.theme.Title.Render("Payday") + m.theme.Faint.Render("  "+m.data.today.String())
	return lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
}

func (m Model) renderSummary() string {
	d := m.data
	var line string
	switch m.tab {
	case TabOverview:
		line = "Safe to spend " + m.theme.StatusSuccess.Render(d.summary.SafeToSpend.String())
		if n := len(d.pending); n > 0 {
			line += m.theme.StatusWarning.Render(fmt.Sprintf("  %d pending transfer(s)", n))
		}
	case TabReserved:
		var total money.Cents
		for _, id := range d.strategy.AccountIDs() {
			total += d.strategy.For(id).Total()
		}
		line = "Reserved " + m.theme.Bold.Render(total.String())
	case TabBuckets:
		line = fmt.Sprintf("%d buckets", len(d.buckets))
	case TabForecast:
		if !d.hasLow {
			line = m.theme.Faint.Render("No forecast")
			break
		}
		style := m.theme.StatusSuccess
		if d.low.Balance < 0 {
			style = m.theme.StatusError
		}
		line = fmt.Sprintf("Low point %s on %s", style.Render(d.low.Balance.String()), d.low.Date)
	}
	return m.theme.BorderedBox.Render(line)
}

// tableContent returns column titles, width weights, and rows for the
// active tab.
func (m Model) tableContent() ([]string, []int, []table.Row) {
	d := m.data
	switch m.tab {
	case TabReserved:
		var rows []table.Row
		for _, id := range d.strategy.AccountIDs() {
			for _, item := range d.strategy.For(id).Items {
				via := ""
				if item.ViaAccountID != "" {
					via = d.accountName(item.ViaAccountID)
				}
				rows = append(rows, table.Row{d.accountName(id), item.Name, string(item.Status), via, item.Amount.String()})
			}
		}
		return []string{"Account", "Bucket", "Status", "Via", "Amount"}, []int{3, 3, 3, 2, 2}, rows

	case TabBuckets:
		rows := make([]table.Row, 0, len(d.buckets))
		for _, b := range d.buckets {
			due := "-"
			if !b.DueDate.IsZero() {
				due = b.DueDate.String()
			}
			rows = append(rows, table.Row{
				b.Name, string(b.Kind), d.accountName(b.AccountID), due,
				b.CurrentBalance.String(), b.Amount.String(), bucketStatus(b),
			})
		}
		return []string{"Bucket", "Kind", "Account", "Due", "Balance", "Amount", "Status"}, []int{3, 2, 3, 2, 2, 2, 2}, rows

	case TabForecast:
		rows := make([]table.Row, 0, len(d.points))
		for _, p := range d.points {
			net := ""
			if p.Net != 0 {
				net = p.Net.String()
			}
			rows = append(rows, table.Row{p.Date.String(), net, p.Balance.String()})
		}
		return []string{"Date", "Change", "Balance"}, []int{1, 1, 1}, rows

	default:
		rows := make([]table.Row, 0, len(d.summary.Accounts))
		for _, a := range d.summary.Accounts {
			rows = append(rows, table.Row{a.Name, a.Balance.String(), a.Reserved.String(), a.Free.String()})
		}
		return []string{"Account", "Balance", "Reserved", "Free"}, []int{3, 2, 2, 2}, rows
	}
}

func (m Model) goals() []model.Bucket {
	var goals []model.Bucket
	for _, b := range m.data.buckets {
		if _, ok := goalProgress(b); ok {
			goals = append(goals, b)
		}
	}
	return goals
}

// renderGoals draws a progress bar per savings goal.
func (m Model) renderGoals() string {
	goals := m.goals()
	if len(goals) == 0 {
		return ""
	}
	nameWidth := 0
	for _, b := range goals {
		nameWidth = max(nameWidth, lipgloss.Width(b.Name))
	}

	var lines []string
	for i, b := range goals {
		if i == 5 {
			lines = append(lines, m.theme.Faint.Render(fmt.Sprintf("…and %d more", len(goals)-i)))
			break
		}
		p, _ := goalProgress(b)
		name := lipgloss.NewStyle().Width(nameWidth).Render(b.Name)
		lines = append(lines, fmt.Sprintf("%s  %s  %s of %s", name, m.progress.ViewAs(p),
			b.CurrentBalance, *b.TargetBalance))
	}
	return m.theme.Subtitle.Render("Goals") + "\n" + strings.Join(lines, "\n")
}
