package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dm/sfm-go/internal/media"
)

// BrowserModel walks the media tree one node at a time. trail holds the
// ancestors of node, root first.
type BrowserModel struct {
	node    *media.BrowseMedia
	trail   []*media.BrowseMedia
	cursor  int
	loading bool
	err     error
	played  *media.PlayMedia
	focused bool
}

// SetNode shows node. When push is set the current node becomes its parent.
func (b *BrowserModel) SetNode(node *media.BrowseMedia, push bool) {
	if push && b.node != nil {
		b.trail = append(b.trail, b.node)
	} else if !push {
		b.trail = nil
	}
	b.node = node
	b.cursor = 0
	b.loading = false
	b.err = nil
}

// Back returns to the parent node. It reports false at the root.
func (b *BrowserModel) Back() bool {
	if len(b.trail) == 0 {
		return false
	}
	b.node = b.trail[len(b.trail)-1]
	b.trail = b.trail[:len(b.trail)-1]
	b.cursor = 0
	b.err = nil
	b.played = nil
	return true
}

// Selected returns the child under the cursor.
func (b *BrowserModel) Selected() *media.BrowseMedia {
	if b.node == nil || b.cursor < 0 || b.cursor >= len(b.node.Children) {
		return nil
	}
	return b.node.Children[b.cursor]
}

// Move shifts the cursor by delta, staying within the children.
func (b *BrowserModel) Move(delta int) {
	if b.node == nil {
		return
	}
	b.cursor = max(0, min(b.cursor+delta, len(b.node.Children)-1))
}

// Path is the breadcrumb of the current node.
func (b *BrowserModel) Path() string {
	titles := make([]string, 0, len(b.trail)+1)
	for _, n := range b.trail {
		titles = append(titles, n.Title)
	}
	if b.node != nil {
		titles = append(titles, b.node.Title)
	}
	return strings.Join(titles, " / ")
}

func (b *BrowserModel) render(width, height int) string {
	hdr := StyleTitle.Render("Media") + "  " + StyleDim.Render(sanitize(b.Path()))

	switch {
	case b.loading:
		return lipgloss.JoinVertical(lipgloss.Left, hdr, StyleDim.Render("  loading..."))
	case b.err != nil:
		return lipgloss.JoinVertical(lipgloss.Left, hdr, StyleError.Render("  "+sanitize(b.err.Error())))
	case b.node == nil:
		return lipgloss.JoinVertical(lipgloss.Left, hdr, StyleDim.Render("  (no media)"))
	case len(b.node.Children) == 0:
		return lipgloss.JoinVertical(lipgloss.Left, hdr, StyleDim.Render("  (empty)"))
	}

	rows := max(height, 1)
	start := 0
	if b.cursor >= rows {
		start = b.cursor - rows + 1
	}
	end := min(start+rows, len(b.node.Children))

	nameWidth := width - 16
	if width <= 0 {
		nameWidth = 60
	}

	lines := []string{hdr}
	for i := start; i < end; i++ {
		child := b.node.Children[i]
		marker := "  "
		if child.CanExpand {
			marker = "▸ "
		}
		line := fmt.Sprintf("%s%-*s %s", marker, max(nameWidth, minColWidth),
			truncateName(sanitize(child.Title), max(nameWidth, minColWidth)), child.Class)
		if b.focused && i == b.cursor {
			line = StyleSelected.Render(line)
		} else {
			line = StyleTableRow.Render(line)
		}
		lines = append(lines, line)
	}
	if b.played != nil {
		lines = append(lines, StyleDim.Render("  "+b.played.MimeType+"  "+b.played.URL))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
