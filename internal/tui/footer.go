package tui

// renderFooter renders the key hint line at full width, followed by the
// last status message when there is one.
func renderFooter(app *App) string {
	width := app.width
	if width <= 0 {
		width = 80
	}
	text := "? for help"
	if app.showHelp {
		text = helpText
	}
	if app.status != "" {
		text = sanitize(app.status) + "  " + text
	}
	return StyleDim.Width(width).Render(text)
}
