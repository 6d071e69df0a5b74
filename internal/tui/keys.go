package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit        key.Binding
	Refresh     key.Binding
	Tab         key.Binding
	PrevAccount key.Binding
	NextAccount key.Binding
	Up          key.Binding
	Down        key.Binding
	Open        key.Binding
	Back        key.Binding
	Search      key.Binding
	Escape      key.Binding
	Help        key.Binding
	PrevPage    key.Binding
	NextPage    key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh account"),
	),
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "sensors/browser"),
	),
	PrevAccount: key.NewBinding(
		key.WithKeys("["),
		key.WithHelp("[", "prev account"),
	),
	NextAccount: key.NewBinding(
		key.WithKeys("]"),
		key.WithHelp("]", "next account"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Open: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "open"),
	),
	Back: key.NewBinding(
		key.WithKeys("backspace", "h"),
		key.WithHelp("backspace", "parent"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "filter"),
	),
	Escape: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "toggle help"),
	),
	PrevPage: key.NewBinding(
		key.WithKeys("left"),
		key.WithHelp("←", "prev page"),
	),
	NextPage: key.NewBinding(
		key.WithKeys("right"),
		key.WithHelp("→", "next page"),
	),
}

const helpText = "q: quit  r: refresh  tab: sensors/browser  [/]: account  1-5: sort  /: filter  ←/→: page  enter/backspace: browse  ?: help"
