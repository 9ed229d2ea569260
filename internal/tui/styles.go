// Package tui provides the live countdown view for the status command.
package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Color palette for the countdown view.
var (
	ColorPrimary = lipgloss.Color("#7C3AED") // Purple
	ColorMuted   = lipgloss.Color("#6B7280") // Gray
	ColorWarning = lipgloss.Color("#F59E0B") // Yellow
	ColorSuccess = lipgloss.Color("#10B981") // Green
	ColorActive  = lipgloss.Color("#3B82F6") // Blue
	ColorBorder  = lipgloss.Color("#4B5563") // Dark gray
)

// Base styles for the countdown view.
var (
	// StyleTitle is used for the room name header.
	StyleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// StyleSubtitle is used for secondary information.
	StyleSubtitle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// StyleCountdown is used for the remaining time readout.
	StyleCountdown = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorActive)

	// StyleCountdownLow is the readout once under a minute remains.
	StyleCountdownLow = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorWarning)

	// StyleDone is shown when the timer has finished.
	StyleDone = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSuccess)

	// StyleProgress is used for the progress bar.
	StyleProgress = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// StyleBox frames the countdown.
	StyleBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(1, 2)
)
