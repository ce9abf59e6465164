package cmd

import "github.com/charmbracelet/lipgloss"

var (
	primary = lipgloss.Color("#7C3AED") // Purple
	green   = lipgloss.Color("#10B981")
	muted   = lipgloss.Color("#6B7280")
	amber   = lipgloss.Color("#F59E0B")
	red     = lipgloss.Color("#EF4444")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primary)

	folderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#60A5FA")) // Blue

	urlStyle = lipgloss.NewStyle().
			Foreground(muted)

	successStyle = lipgloss.NewStyle().
			Foreground(green).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(amber)

	errorStyle = lipgloss.NewStyle().
			Foreground(red).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(muted)
)
