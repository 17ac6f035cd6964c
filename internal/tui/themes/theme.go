// Package themes holds the dashboard color schemes.
package themes

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style for the TUI.
type Theme struct {
	Title         lipgloss.Style
	Subtitle      lipgloss.Style
	Bold          lipgloss.Style
	Faint         lipgloss.Style
	TabActive     lipgloss.Style
	TabInactive   lipgloss.Style
	BorderedBox   lipgloss.Style
	Selected      lipgloss.Style
	Header        lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusWarning lipgloss.Style
	StatusError   lipgloss.Style
	Primary       lipgloss.Color
	Secondary     lipgloss.Color
	Muted         lipgloss.Color
}

// Palette is the handful of colors a theme is derived from.
type Palette struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Text       lipgloss.Color
	Dim        lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Background lipgloss.Color
	Positive   lipgloss.Color
	Caution    lipgloss.Color
	Negative   lipgloss.Color
}

// Money is the green palette the dashboard ships with.
var Money = Palette{
	Primary:    "#7BC950",
	Secondary:  "#4E9F3D",
	Text:       "#fafafa",
	Dim:        "#a3a3a3",
	Muted:      "#737373",
	Border:     "#404040",
	Background: "#1a1a1a",
	Positive:   "#10b981",
	Caution:    "#f59e0b",
	Negative:   "#ef4444",
}

// Default is the default theme.
var Default = New(Money)

// New derives every dashboard style from p.
func New(p Palette) Theme {
	status := func(c lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c).Bold(true)
	}
	return Theme{
		Primary:   p.Primary,
		Secondary: p.Secondary,
		Muted:     p.Muted,

		Title:    lipgloss.NewStyle().Bold(true).Foreground(p.Primary),
		Subtitle: lipgloss.NewStyle().Foreground(p.Dim),
		Bold:     lipgloss.NewStyle().Bold(true).Foreground(p.Text),
		Faint:    lipgloss.NewStyle().Foreground(p.Muted),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(p.Text).Background(p.Secondary),
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Primary).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(p.Border),

		TabActive:   lipgloss.NewStyle().Bold(true).Foreground(p.Background).Background(p.Primary).Padding(0, 1),
		TabInactive: lipgloss.NewStyle().Foreground(p.Dim).Padding(0, 1),
		BorderedBox: lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(p.Border).Padding(0, 1),

		StatusSuccess: status(p.Positive),
		StatusWarning: status(p.Caution),
		StatusError:   status(p.Negative),
	}
}
