package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dm/sfm-go/internal/engine"
)

type focus int

const (
	focusSensors focus = iota
	focusBrowser
)

// requestTimeout bounds manual refreshes and media requests started from
// the dashboard.
const requestTimeout = 30 * time.Second

// App is the root Bubble Tea model of the dashboard. It only reads state
// the updaters already published; polling happens in the background
// services.
type App struct {
	backend  Backend
	interval time.Duration

	accounts    []AccountView
	selected    int
	lastUpdated time.Time

	focus   focus
	sensors SensorTableModel
	browser BrowserModel

	refreshing bool
	status     string

	width, height int
	showHelp      bool

	now func() time.Time
}

// NewApp returns an App that re-reads backend every interval.
func NewApp(backend Backend, interval time.Duration) *App {
	if interval <= 0 {
		interval = time.Second
	}
	app := &App{
		backend:  backend,
		interval: interval,
		sensors:  NewSensorTable(),
		now:      time.Now,
	}
	app.sensors.focused = true
	app.browser.loading = true
	return app
}

// Init implements tea.Model.
func (app *App) Init() tea.Cmd {
	return tea.Batch(loadCmd(app.backend), browseCmd(app.backend, "", false))
}

// Update implements tea.Model.
func (app *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		app.width = msg.Width
		app.height = msg.Height

	case AccountsMsg:
		app.accounts = msg.Accounts
		app.lastUpdated = msg.At
		if app.selected >= len(app.accounts) {
			app.selected = max(0, len(app.accounts)-1)
		}
		app.syncSensors()
		return app, tickCmd(app.interval)

	case TickMsg:
		return app, loadCmd(app.backend)

	case RefreshedMsg:
		app.refreshing = false
		app.status = fmt.Sprintf("refresh %s: %s", msg.EntryID, engine.VerifyResult(msg.Code))
		return app, loadCmd(app.backend)

	case BrowseMsg:
		app.browser.loading = false
		if msg.Err != nil {
			app.browser.err = msg.Err
			return app, nil
		}
		app.browser.SetNode(msg.Node, msg.Push)

	case ResolveMsg:
		if msg.Err != nil {
			app.status = msg.Err.Error()
			return app, nil
		}
		app.browser.played = msg.Play
		app.status = "resolved " + msg.Play.MimeType

	case tea.KeyMsg:
		return app.handleKey(msg)
	}
	return app, nil
}

func (app *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// While the filter input is open every key belongs to it.
	if app.focus == focusSensors && app.sensors.searching {
		var cmd tea.Cmd
		app.sensors, cmd = app.sensors.Update(msg)
		return app, cmd
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return app, tea.Quit
	case key.Matches(msg, keys.Help):
		app.showHelp = !app.showHelp
		return app, nil
	case key.Matches(msg, keys.Tab):
		app.setFocus((app.focus + 1) % 2)
		return app, nil
	case key.Matches(msg, keys.PrevAccount):
		app.selectAccount(app.selected - 1)
		return app, nil
	case key.Matches(msg, keys.NextAccount):
		app.selectAccount(app.selected + 1)
		return app, nil
	case key.Matches(msg, keys.Refresh):
		acc, ok := app.current()
		if !ok || app.refreshing {
			return app, nil
		}
		app.refreshing = true
		app.status = "refreshing " + acc.Username + "..."
		return app, refreshCmd(app.backend, acc.EntryID)
	}

	if app.focus == focusSensors {
		var cmd tea.Cmd
		app.sensors, cmd = app.sensors.Update(msg)
		return app, cmd
	}
	return app, app.handleBrowserKey(msg)
}

func (app *App) handleBrowserKey(msg tea.KeyMsg) tea.Cmd {
	b := &app.browser
	switch {
	case key.Matches(msg, keys.Up):
		b.Move(-1)
	case key.Matches(msg, keys.Down):
		b.Move(1)
	case key.Matches(msg, keys.Back):
		if !b.Back() && b.node == nil && !b.loading {
			b.loading = true
			return browseCmd(app.backend, "", false)
		}
	case key.Matches(msg, keys.Open):
		child := b.Selected()
		if child == nil || b.loading {
			return nil
		}
		if child.CanExpand {
			b.loading = true
			return browseCmd(app.backend, child.Identifier, true)
		}
		if child.CanPlay {
			return resolveCmd(app.backend, child.Identifier)
		}
	}
	return nil
}

func (app *App) setFocus(f focus) {
	app.focus = f
	app.sensors.focused = f == focusSensors
	app.browser.focused = f == focusBrowser
}

func (app *App) selectAccount(i int) {
	if len(app.accounts) == 0 {
		return
	}
	app.selected = (i + len(app.accounts)) % len(app.accounts)
	app.syncSensors()
}

func (app *App) syncSensors() {
	acc, ok := app.current()
	if !ok {
		app.sensors.SetData(nil)
		return
	}
	app.sensors.SetData(acc.Sensors)
}

// current returns the selected account.
func (app *App) current() (AccountView, bool) {
	if app.selected < 0 || app.selected >= len(app.accounts) {
		return AccountView{}, false
	}
	return app.accounts[app.selected], true
}

// View implements tea.Model.
func (app *App) View() string {
	parts := []string{renderHeader(app)}
	if o := renderOverview(app); o != "" {
		parts = append(parts, o)
	}

	switch app.focus {
	case focusBrowser:
		rows := app.height - 14
		if app.height <= 0 {
			rows = 20
		}
		parts = append(parts, app.browser.render(app.width, rows))
	default:
		parts = append(parts, app.sensors.render(app.width))
	}

	parts = append(parts, renderFooter(app))
	return strings.Join(parts, "\n")
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func loadCmd(b Backend) tea.Cmd {
	return func() tea.Msg {
		return AccountsMsg{Accounts: b.Accounts(), At: time.Now()}
	}
}

func refreshCmd(b Backend, entryID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return RefreshedMsg{EntryID: entryID, Code: b.Refresh(ctx, entryID)}
	}
}

func browseCmd(b Backend, identifier string, push bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		node, err := b.Browse(ctx, identifier)
		return BrowseMsg{Node: node, Err: err, Push: push}
	}
}

func resolveCmd(b Backend, identifier string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		play, err := b.Resolve(ctx, identifier)
		return ResolveMsg{Play: play, Err: err}
	}
}
