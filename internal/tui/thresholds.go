package tui

import "github.com/charmbracelet/lipgloss"

type severity int

const (
	severityNormal severity = iota
	severityWarning
	severityCritical
)

// usageSeverity returns Warning above 80% of the quota and Critical above
// 90%.
func usageSeverity(pct float64) severity {
	switch {
	case pct > 90:
		return severityCritical
	case pct > 80:
		return severityWarning
	default:
		return severityNormal
	}
}

func severityToStyle(s severity) lipgloss.Style {
	switch s {
	case severityWarning:
		return StyleYellow
	case severityCritical:
		return StyleRed
	default:
		return lipgloss.NewStyle()
	}
}

func severityColor(s severity) lipgloss.Color {
	switch s {
	case severityWarning:
		return colorYellow
	case severityCritical:
		return colorRed
	default:
		return colorGreen
	}
}
