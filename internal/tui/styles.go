package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorGreen  = lipgloss.Color("#10b981")
	colorYellow = lipgloss.Color("#f59e0b")
	colorRed    = lipgloss.Color("#ef4444")
	colorGray   = lipgloss.Color("#6b7280")
	colorBlue   = lipgloss.Color("#3b82f6")
	colorCyan   = lipgloss.Color("#06b6d4")
	colorPurple = lipgloss.Color("#8b5cf6")
	colorWhite  = lipgloss.Color("#f8fafc")
	colorDark   = lipgloss.Color("#1e293b")
	colorAlt    = lipgloss.Color("#0f172a")
)

var (
	StyleOnline  = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	StyleOffline = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	StylePending = lipgloss.NewStyle().Foreground(colorGray)
)

var StyleHeader = lipgloss.NewStyle().
	Background(colorDark).
	Foreground(colorWhite).
	Padding(0, 1)

var StyleCard = lipgloss.NewStyle().
	Background(colorAlt).
	Foreground(colorWhite).
	Padding(0, 1).
	Align(lipgloss.Center)

var (
	StyleTableHeader = lipgloss.NewStyle().
				Bold(true).
				Underline(true).
				Foreground(colorGray)

	StyleTableRow = lipgloss.NewStyle().
			Foreground(colorWhite)

	StyleTableRowAlt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#cbd5e1"))

	StyleSelected = lipgloss.NewStyle().
			Background(colorBlue).
			Foreground(colorWhite)
)

var (
	StyleError = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	StyleDim   = lipgloss.NewStyle().Foreground(colorGray)
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(colorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(colorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(colorRed)
	StylePurple = lipgloss.NewStyle().Foreground(colorPurple)
)

// statusStyle picks the reachability style. code 0 means no cycle has
// finished yet.
func statusStyle(reachable bool, code int) lipgloss.Style {
	switch {
	case reachable:
		return StyleOnline
	case code == 0 || code == 502:
		return StylePending
	default:
		return StyleOffline
	}
}

// statusText mirrors statusStyle.
func statusText(reachable bool, code int) string {
	switch {
	case reachable:
		return "● ONLINE"
	case code == 0 || code == 502:
		return "● CONNECTING"
	case code == 403:
		return "● AUTH FAILED"
	default:
		return "● UNREACHABLE"
	}
}
