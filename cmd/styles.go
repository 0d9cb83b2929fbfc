package cmd

import "github.com/charmbracelet/lipgloss"

// Styles used across the CLI commands
var (
	titleStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#00BFFF")). // Deep sky blue
		Bold(true).
		Padding(1, 0)

	promptStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#CCCCCC")) // Light Gray

	agentStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#98FB98")) // Pale green

	warningStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FF6347")). // Tomato red
		Bold(true)
)
