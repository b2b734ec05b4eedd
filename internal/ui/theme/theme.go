// Package theme holds the terminal styles used by the CLI reports.
package theme

import (
	"charm.land/lipgloss/v2"

	"github.com/blumie/wellcheck/internal/store"
)

// Color palette
var (
	Primary = lipgloss.Color("#8B5CF6") // Vivid Purple
	Success = lipgloss.Color("#22C55E") // Green
	Warning = lipgloss.Color("#F97316") // Orange
	Error   = lipgloss.Color("#F43F5E") // Rose
	Text    = lipgloss.Color("#F8FAFC") // White
	TextDim = lipgloss.Color("#94A3B8") // Slate
	Border  = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Label = lipgloss.NewStyle().
		Foreground(TextDim).
		Width(16)

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

// States
var (
	Ok = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Pending = lipgloss.NewStyle().
		Foreground(Warning)

	Flagged = lipgloss.NewStyle().
		Foreground(Error).
		Bold(true)
)

// Status renders a submission status in its state colour.
func Status(status string) string {
	switch status {
	case store.StatusComplete:
		return Ok.Render(status)
	case store.StatusFailed:
		return Flagged.Render(status)
	default:
		return Pending.Render(status)
	}
}

// Outcome renders an alert outcome in its state colour.
func Outcome(outcome string) string {
	switch outcome {
	case store.AlertSent:
		return Ok.Render(outcome)
	case store.AlertFailed:
		return Flagged.Render(outcome)
	default:
		return Pending.Render(outcome)
	}
}

// Swatch renders a block in the given RGB colour.
func Swatch(hex string) string {
	return lipgloss.NewStyle().Background(lipgloss.Color(hex)).Render("  ")
}
