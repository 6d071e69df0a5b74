package tui

import (
	"time"

	"github.com/dm/sfm-go/internal/media"
)

// AccountsMsg delivers a fresh read of every account.
type AccountsMsg struct {
	Accounts []AccountView
	At       time.Time
}

// RefreshedMsg reports the outcome of a manual refresh.
type RefreshedMsg struct {
	EntryID string
	Code    int
}

// BrowseMsg delivers a media node for the browser pane. Push is set when
// the node is a child of the one currently shown.
type BrowseMsg struct {
	Node *media.BrowseMedia
	Err  error
	Push bool
}

// ResolveMsg delivers the playable URL of a file.
type ResolveMsg struct {
	Play *media.PlayMedia
	Err  error
}

// TickMsg triggers the next read of account state.
type TickMsg time.Time
