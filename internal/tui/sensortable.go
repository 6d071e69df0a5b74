package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
)

// SensorTableModel is a sortable, paginated, searchable list of the
// selected account's entities.
type SensorTableModel struct {
	tableModel
	allRows     []SensorRow
	displayRows []SensorRow
}

// NewSensorTable returns a table sorted by entity id ascending.
func NewSensorTable() SensorTableModel {
	cols := []columnDef{
		{Title: "Entity", Width: 40},
		{Title: "Name", Width: 28},
		{Title: "Value", Width: 14, SortDesc: true},
		{Title: "Category", Width: 11},
		{Title: "Avail", Width: 6, SortDesc: true},
	}
	m := SensorTableModel{tableModel: newTableModel(cols)}
	m.sortCol = colEntity
	m.sortDesc = false
	return m
}

// SetData applies the current filter and sort to rows.
func (m *SensorTableModel) SetData(rows []SensorRow) {
	m.allRows = rows
	m.apply()
}

func (m *SensorTableModel) apply() {
	m.displayRows = sortSensorRows(filterSensorRows(m.allRows, m.search), m.sortCol, m.sortDesc)
	m.clampPage(len(m.displayRows))
	m.clampCursor(m.currentPageRowCount(len(m.displayRows)))
}

// Update delegates to the embedded table and re-applies filter and sort
// when they change.
func (m SensorTableModel) Update(msg tea.Msg) (SensorTableModel, tea.Cmd) {
	prevSort, prevDesc, prevSearch := m.sortCol, m.sortDesc, m.search

	base, cmd := m.tableModel.Update(msg)
	m.tableModel = base

	if m.sortCol != prevSort || m.sortDesc != prevDesc || m.search != prevSearch {
		m.apply()
		return m, cmd
	}
	m.clampPage(len(m.displayRows))
	m.clampCursor(m.currentPageRowCount(len(m.displayRows)))
	return m, cmd
}

// Selected returns the row under the cursor.
func (m *SensorTableModel) Selected() (SensorRow, bool) {
	idx := m.page*m.pageSize + m.cursor
	if idx < 0 || idx >= len(m.displayRows) {
		return SensorRow{}, false
	}
	return m.displayRows[idx], true
}

func (m *SensorTableModel) render(width int) string {
	pc := pageCount(len(m.displayRows), m.pageSize)
	hdr := m.renderHeader(m.page+1, pc)

	allIdx := make([]int, len(m.displayRows))
	for i := range allIdx {
		allIdx[i] = i
	}
	pageIdx := currentPageIndices(allIdx, m.page, m.pageSize)
	if len(pageIdx) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, hdr, StyleDim.Render("  (no sensors)"))
	}

	var widths []int
	if width > 0 {
		widths = columnWidths(width, m.columns)
	}

	sortCol, focused, cursor := m.sortCol, m.focused, m.cursor
	rows := make([]SensorRow, len(pageIdx))
	for i, idx := range pageIdx {
		rows[i] = m.displayRows[idx]
	}

	t := ltable.New().
		Headers(m.headers()...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == ltable.HeaderRow {
				if col == sortCol {
					return lipgloss.NewStyle().Bold(true).Foreground(colorBlue)
				}
				return lipgloss.NewStyle().Bold(true).Foreground(colorGray)
			}
			base := lipgloss.NewStyle()
			if focused && row == cursor {
				base = base.Background(colorBlue)
			} else if row%2 == 0 {
				base = base.Background(colorAlt)
			}
			switch col {
			case colValue:
				return base.Foreground(colorGreen)
			case colCategory:
				return base.Foreground(colorPurple)
			case colAvailable:
				if row >= 0 && row < len(rows) && !rows[row].Available {
					return base.Foreground(colorRed)
				}
				return base.Foreground(colorGreen)
			default:
				return base.Foreground(colorWhite)
			}
		}).
		BorderStyle(lipgloss.NewStyle().Foreground(colorGray)).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(true).
		BorderColumn(false)
	if width > 0 {
		t = t.Width(width)
	}

	for _, r := range rows {
		cells := []string{
			sanitize(r.EntityID),
			sanitize(r.Name),
			r.Value,
			r.Category,
			availText(r.Available),
		}
		if len(widths) == len(cells) {
			cells[colEntity] = truncateName(cells[colEntity], widths[colEntity])
			cells[colName] = truncateName(cells[colName], widths[colName])
		}
		t = t.Row(cells...)
	}
	return lipgloss.JoinVertical(lipgloss.Left, hdr, t.String())
}

func (m *SensorTableModel) renderHeader(page, pages int) string {
	pageInfo := fmt.Sprintf("Page %d/%d", page, pages)

	var right string
	switch {
	case m.searching:
		right = "Search: " + m.input.View()
	case m.search != "":
		right = fmt.Sprintf("filter=%q  %s", m.search, pageInfo)
	default:
		right = fmt.Sprintf("[/: search]  [1-5: sort]  [←→: page]  %s", pageInfo)
	}
	return StyleTitle.Render("Sensors") + "  " + StyleDim.Render(right)
}

func availText(ok bool) string {
	if ok {
		return "yes"
	}
	return "no"
}
