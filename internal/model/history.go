package model

import "time"

const defaultHistoryCap = 60

// UsagePoint is one storage reading taken after a successful cycle.
type UsagePoint struct {
	Timestamp time.Time
	Usage     int64
	Total     int64
}

// Percent returns usage as a percentage of total, or 0 when the quota is
// unknown or unlimited.
func (p UsagePoint) Percent() float64 {
	if p.Total <= 0 {
		return 0
	}
	return float64(p.Usage) / float64(p.Total) * 100
}

// UsageHistory is a fixed-size ring buffer of UsagePoints.
// When the buffer is full, new pushes overwrite the oldest entry.
type UsageHistory struct {
	buf  []UsagePoint
	head int // index of the next write position
	size int // number of valid entries
}

// NewUsageHistory creates a UsageHistory with the given capacity.
// If capacity <= 0, 60 entries are kept.
func NewUsageHistory(capacity int) *UsageHistory {
	if capacity <= 0 {
		capacity = defaultHistoryCap
	}
	return &UsageHistory{buf: make([]UsagePoint, capacity)}
}

// Push appends a point, overwriting the oldest if full.
func (h *UsageHistory) Push(p UsagePoint) {
	h.buf[h.head] = p
	h.head = (h.head + 1) % len(h.buf)
	if h.size < len(h.buf) {
		h.size++
	}
}

// Len returns the number of valid entries.
func (h *UsageHistory) Len() int {
	return h.size
}

// Last returns the newest point.
func (h *UsageHistory) Last() (UsagePoint, bool) {
	if h.size == 0 {
		return UsagePoint{}, false
	}
	return h.buf[(h.head-1+len(h.buf))%len(h.buf)], true
}

// Values returns the named series oldest first. Valid fields are "usage",
// "total" and "percent".
func (h *UsageHistory) Values(field string) []float64 {
	out := make([]float64, h.size)
	start := (h.head - h.size + len(h.buf)) % len(h.buf)
	for i := 0; i < h.size; i++ {
		p := h.buf[(start+i)%len(h.buf)]
		switch field {
		case "usage":
			out[i] = float64(p.Usage)
		case "total":
			out[i] = float64(p.Total)
		case "percent":
			out[i] = p.Percent()
		}
	}
	return out
}
