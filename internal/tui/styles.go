package tui

import "github.com/charmbracelet/lipgloss"

// One Dark palette
var (
	ColorFgPrimary = lipgloss.Color("#ABB2BF")
	ColorFgMuted   = lipgloss.Color("#636B78")
	ColorHighlight = lipgloss.Color("#2C313C")

	ColorRed     = lipgloss.Color("#E06C75")
	ColorGreen   = lipgloss.Color("#98C379")
	ColorYellow  = lipgloss.Color("#E5C07B")
	ColorBlue    = lipgloss.Color("#61AFEF")
	ColorMagenta = lipgloss.Color("#C678DD")
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorMagenta).
			Bold(true).
			PaddingLeft(1)

	SubtleStyle = lipgloss.NewStyle().
			Foreground(ColorFgMuted)

	BranchStyle = lipgloss.NewStyle().
			Foreground(ColorBlue).
			Bold(true)

	ActiveBranchStyle = lipgloss.NewStyle().
				Foreground(ColorGreen).
				Bold(true)

	TabStyle = lipgloss.NewStyle().
			Foreground(ColorFgPrimary)

	SelectedStyle = lipgloss.NewStyle().
			Background(ColorHighlight)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorFgMuted).
			PaddingLeft(1).
			PaddingTop(1)
)
