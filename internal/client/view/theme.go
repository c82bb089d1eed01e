// Package view renders the client's screens for the terminal.
package view

import "github.com/charmbracelet/lipgloss"

var (
	// Light mode
	LightForeground = lipgloss.Color("#1f2937")
	LightPrimary    = lipgloss.Color("#4f46e5")
	LightMuted      = lipgloss.Color("#9ca3af")
	LightBorder     = lipgloss.Color("#d1d5db")

	// Dark mode
	DarkForeground = lipgloss.Color("#f3f4f6")
	DarkPrimary    = lipgloss.Color("#a5b4fc")
	DarkMuted      = lipgloss.Color("#6b7280")
	DarkBorder     = lipgloss.Color("#374151")

	// Same in both modes
	Success     = lipgloss.Color("#22c55e")
	Destructive = lipgloss.Color("#ef4444")
	Warning     = lipgloss.Color("#f59e0b")
)

type Theme struct {
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	IsDark     bool
}

func LightTheme() Theme {
	return Theme{
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Muted:      LightMuted,
		Border:     LightBorder,
	}
}

func DarkTheme() Theme {
	return Theme{
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		IsDark:     true,
	}
}

// ThemeFor returns the theme matching the dark mode preference.
func ThemeFor(dark bool) Theme {
	if dark {
		return DarkTheme()
	}
	return LightTheme()
}

// Styles are the lipgloss styles derived from a Theme.
type Styles struct {
	Title     lipgloss.Style
	Text      lipgloss.Style
	Done      lipgloss.Style
	Muted     lipgloss.Style
	High      lipgloss.Style
	Success   lipgloss.Style
	Error     lipgloss.Style
	Box       lipgloss.Style
	Label     lipgloss.Style
	Highlight lipgloss.Style
}

func NewStyles(t Theme) Styles {
	return Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(t.Primary).MarginBottom(1),
		Text:      lipgloss.NewStyle().Foreground(t.Foreground),
		Done:      lipgloss.NewStyle().Foreground(t.Muted).Strikethrough(true),
		Muted:     lipgloss.NewStyle().Foreground(t.Muted),
		High:      lipgloss.NewStyle().Foreground(Warning).Bold(true),
		Success:   lipgloss.NewStyle().Foreground(Success),
		Error:     lipgloss.NewStyle().Foreground(Destructive).Bold(true),
		Box:       lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Border).Padding(0, 1),
		Label:     lipgloss.NewStyle().Foreground(t.Muted).Width(16),
		Highlight: lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
	}
}
