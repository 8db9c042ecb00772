package ui

import "github.com/charmbracelet/lipgloss"

// Semantic color palette.
var (
	colorPrimary = lipgloss.Color("#00BFFF") // Cyan: systems
	colorAccent  = lipgloss.Color("#FFD700") // Gold: credits
	colorSuccess = lipgloss.Color("#00E676") // Green: first discoveries
	colorMuted   = lipgloss.Color("#636363") // Gray: timestamps, detail
	colorBlue    = lipgloss.Color("#5B8DEF") // Blue: event names
)

// Line element icons.
const (
	iconScan    = "◆"
	iconEvent   = "·"
	iconSummary = "═"
)

var (
	styleTime = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleEvent = lipgloss.NewStyle().
			Foreground(colorBlue).
			Bold(true)

	styleSystem = lipgloss.NewStyle().
			Foreground(colorPrimary)

	styleBody = lipgloss.NewStyle().
			Bold(true)

	styleDetail = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleCredits = lipgloss.NewStyle().
			Foreground(colorAccent)

	styleFirst = lipgloss.NewStyle().
			Foreground(colorSuccess).
			Bold(true)
)
