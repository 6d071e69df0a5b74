package tui

import (
	"cmp"
	"slices"
	"strings"
)

// Sensor table columns.
const (
	colEntity = iota
	colName
	colValue
	colCategory
	colAvailable
)

// sortSensorRows returns a sorted copy of rows. col -1 keeps the input
// order. Ties are broken by entity id ascending.
func sortSensorRows(rows []SensorRow, col int, desc bool) []SensorRow {
	out := slices.Clone(rows)
	if col < 0 {
		return out
	}

	slices.SortStableFunc(out, func(a, b SensorRow) int {
		var c int
		switch col {
		case colEntity:
			c = strings.Compare(strings.ToLower(a.EntityID), strings.ToLower(b.EntityID))
		case colName:
			c = strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		case colValue:
			c = cmp.Compare(a.Raw, b.Raw)
			if c == 0 {
				c = strings.Compare(a.Value, b.Value)
			}
		case colCategory:
			c = strings.Compare(a.Category, b.Category)
		case colAvailable:
			c = compareBool(a.Available, b.Available)
		}
		if desc {
			c = -c
		}
		if c != 0 {
			return c
		}
		return strings.Compare(strings.ToLower(a.EntityID), strings.ToLower(b.EntityID))
	})
	return out
}

// filterSensorRows keeps rows whose entity id, name or category contains
// term, case-insensitively. An empty term keeps everything.
func filterSensorRows(rows []SensorRow, term string) []SensorRow {
	if term == "" {
		return rows
	}
	term = strings.ToLower(term)
	var out []SensorRow
	for _, r := range rows {
		if strings.Contains(strings.ToLower(r.EntityID), term) ||
			strings.Contains(strings.ToLower(r.Name), term) ||
			strings.Contains(strings.ToLower(r.Category), term) {
			out = append(out, r)
		}
	}
	return out
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return 1
	default:
		return -1
	}
}
