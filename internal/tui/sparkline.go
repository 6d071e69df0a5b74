package tui

import (
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// RenderSparkline draws the last width values as block characters, left
// padded with spaces. Values are scaled against ceiling, or against their
// maximum when ceiling <= 0.
func RenderSparkline(values []float64, width int, ceiling float64, color lipgloss.Color) string {
	if width <= 0 {
		return ""
	}
	if len(values) == 0 {
		return strings.Repeat(" ", width)
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	top := ceiling
	if top <= 0 {
		top = slices.Max(values)
	}

	var sb strings.Builder
	sb.WriteString(strings.Repeat(" ", width-len(values)))
	for _, v := range values {
		var idx int
		if top > 0 {
			idx = int(v / top * 7)
		}
		sb.WriteRune(sparkBlocks[max(0, min(idx, 7))])
	}
	return lipgloss.NewStyle().Foreground(color).Render(sb.String())
}

// renderUsageSparkline plots space usage percentages on a 0-100 scale,
// colored by the severity of the latest reading.
func renderUsageSparkline(values []float64, width int) string {
	color := colorGreen
	if len(values) > 0 {
		color = severityColor(usageSeverity(values[len(values)-1]))
	}
	return RenderSparkline(values, width, 100, color)
}
