// Package theme holds the lipgloss styles used by the CLI reports.
package theme

import (
	"strings"

	"charm.land/lipgloss/v2"
)

// Color palette
var (
	Primary = lipgloss.Color("#16A34A") // Green
	Accent  = lipgloss.Color("#F59E0B") // Amber
	Success = lipgloss.Color("#22C55E")
	Error   = lipgloss.Color("#F43F5E")
	Text    = lipgloss.Color("#F8FAFC")
	TextDim = lipgloss.Color("#94A3B8")
	Border  = lipgloss.Color("#334155")
)

var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Label = lipgloss.NewStyle().
		Foreground(TextDim).
		Width(18)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)
)

var (
	Unlocked = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	Locked = lipgloss.NewStyle().
		Foreground(Error)

	Warning = lipgloss.NewStyle().
		Foreground(Accent).
		Bold(true)

	BarFilled = lipgloss.NewStyle().
			Foreground(Primary)

	BarEmpty = lipgloss.NewStyle().
			Foreground(Border)
)

// Row renders a label/value line.
func Row(label, value string) string {
	return Label.Render(label) + Body.Render(value)
}

// Access renders an access marker.
func Access(open bool) string {
	if open {
		return Unlocked.Render("open")
	}
	return Locked.Render("locked")
}

// Score colours a percentage by the weak/strong bands.
func Score(pct float64, text string) string {
	switch {
	case pct >= 80:
		return Unlocked.Render(text)
	case pct < 60:
		return Locked.Render(text)
	default:
		return Warning.Render(text)
	}
}

// Bar renders a width-cell bar filled to pct percent.
func Bar(pct float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := int(pct / 100 * float64(width))
	filled = max(0, min(width, filled))
	return BarFilled.Render(strings.Repeat("█", filled)) +
		BarEmpty.Render(strings.Repeat("░", width-filled))
}
