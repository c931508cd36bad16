// Package theme holds the terminal palette and shared styles.
package theme

import (
	"charm.land/lipgloss/v2"
)

// Palette
var (
	Primary = lipgloss.Color("#2563EB") // Blue
	Accent  = lipgloss.Color("#F59E0B") // Amber
	Gem     = lipgloss.Color("#EC4899") // Pink
	Points  = lipgloss.Color("#FACC15") // Yellow
	Streak  = lipgloss.Color("#F97316") // Orange
	Success = lipgloss.Color("#16A34A")
	Error   = lipgloss.Color("#DC2626")
	Warning = lipgloss.Color("#EAB308")
	Text    = lipgloss.Color("#F1F5F9")
	TextDim = lipgloss.Color("#8391A7")
	BgPanel = lipgloss.Color("#111827")
	Border  = lipgloss.Color("#374151")
)

var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Dim = lipgloss.NewStyle().
		Foreground(TextDim)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)

	Modal = lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(Accent).
		Padding(1, 3)
)

var (
	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	Locked = lipgloss.NewStyle().
		Foreground(Border)
)
