package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dm/sfm-go/internal/format"
	"github.com/dm/sfm-go/internal/model"
)

// renderOverview renders the stat cards for the selected account: status,
// server version, library count, space usage and its trend. Terminals
// narrower than 80 columns get two cards per row.
func renderOverview(app *App) string {
	acc, ok := app.current()
	if !ok {
		return ""
	}

	width := app.width
	if width <= 0 {
		width = 80
	}
	narrow := width < 80

	const cards = 5
	cardWidth := max((width-2*cards)/cards, 8)
	if narrow {
		cardWidth = max((width-4)/2, 10)
	}
	barWidth := max(cardWidth-4, 4)

	reachable := acc.Reachable()
	status := strings.TrimPrefix(statusText(reachable, acc.Code), "● ")
	statusBg := colorGray
	switch {
	case reachable:
		statusBg = colorGreen
	case acc.Code != 0 && acc.Code != 502:
		statusBg = colorRed
	}
	card1 := StyleCard.
		Background(statusBg).
		Foreground(colorDark).
		Bold(true).
		Width(cardWidth).
		Render(status + "\nStatus")

	version := acc.Data.Version
	if version == "" {
		version = "?"
	}
	card2 := StyleCard.
		Foreground(colorBlue).
		Width(cardWidth).
		Render(sanitize(version) + "\nVersion")

	card3 := StyleCard.
		Foreground(colorPurple).
		Width(cardWidth).
		Render(fmt.Sprintf("%d", len(acc.Data.Repositories)) + "\nLibraries")

	used := acc.Data.Space[model.KeySpaceUsage]
	total := acc.Data.Space[model.KeySpaceTotal]
	var pct float64
	if total > 0 {
		pct = float64(used) / float64(total) * 100
	}
	sev := usageSeverity(pct)
	usageVal := format.FormatBytes(used)
	if total > 0 {
		usageVal = format.FormatPercent(pct)
		if sev == severityCritical {
			usageVal += "!"
		}
	}
	card4 := StyleCard.
		Foreground(severityColor(sev)).
		Width(cardWidth).
		Render(usageVal + "\n" + renderMiniBar(pct, barWidth) + "\n" + format.FormatUsage(used, total) + "\nSpace")

	card5 := StyleCard.
		Width(cardWidth).
		Render(renderUsageSparkline(acc.Usage, barWidth) + "\nUsage trend")

	if narrow {
		row1 := lipgloss.JoinHorizontal(lipgloss.Top, card1, card2)
		row2 := lipgloss.JoinHorizontal(lipgloss.Top, card3, card4)
		return lipgloss.JoinVertical(lipgloss.Left, row1, row2, card5)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, card1, card2, card3, card4, card5)
}

// renderMiniBar renders a progress bar of width cells, "█" filled and "░"
// empty.
func renderMiniBar(percent float64, width int) string {
	if width <= 0 {
		return ""
	}
	percent = max(0, min(percent, 100))
	filled := min(int(percent/100*float64(width)), width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
