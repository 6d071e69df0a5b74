package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/dm/sfm-go/internal/format"
)

// renderHeader renders the top bar.
//
//	left:   "user @ url" of the selected account and its position
//	center: reachability of the account
//	right:  age of the last successful cycle and the poll interval
func renderHeader(app *App) string {
	width := app.width
	if width <= 0 {
		width = 80
	}

	var left, center, right string
	acc, ok := app.current()
	if !ok {
		left = "Seafile"
		center = StylePending.Render("● NO ACCOUNTS")
	} else {
		left = sanitize(acc.Username) + " @ " + sanitize(acc.URL)
		if n := len(app.accounts); n > 1 {
			left += fmt.Sprintf("  (%d/%d)", app.selected+1, n)
		}
		center = statusStyle(acc.Reachable(), acc.Code).Render(statusText(acc.Reachable(), acc.Code))
		right = StyleDim.Render(fmt.Sprintf("Updated: %s  Poll: %s",
			format.FormatAge(acc.Data.UpdatedAt, app.now()), formatDuration(acc.Interval)))
	}

	// StyleHeader has Padding(0, 1).
	innerWidth := width - 2
	avail := innerWidth - lipgloss.Width(center) - lipgloss.Width(right)
	if avail < minColWidth {
		right = ""
		avail = innerWidth - lipgloss.Width(center)
	}
	left = truncateName(left, max(avail, 0))

	spacing := max(0, innerWidth-lipgloss.Width(left)-lipgloss.Width(center)-lipgloss.Width(right))
	leftSpacing := spacing / 2

	row := left +
		strings.Repeat(" ", leftSpacing) +
		center +
		strings.Repeat(" ", spacing-leftSpacing) +
		right

	return StyleHeader.Width(width).Render(row)
}

// formatDuration formats a poll interval as "30s", "2m" or "1m30s".
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	m := int(d.Minutes())
	if s := int(d.Seconds()) % 60; s != 0 {
		return fmt.Sprintf("%dm%ds", m, s)
	}
	return fmt.Sprintf("%dm", m)
}
