// Package format renders sensor values for the dashboard.
package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatBytes formats a byte count with one decimal place using binary
// units. Negative counts mean "unknown" and render as "---".
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < 0 {
		return "---"
	}
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	suffixes := []string{"KB", "MB", "GB", "TB", "PB"}
	value := float64(bytes) / unit
	i := 0
	for value >= unit && i < len(suffixes)-1 {
		value /= unit
		i++
	}
	return fmt.Sprintf("%.1f %s", value, suffixes[i])
}

// FormatNumber formats an integer with comma separators: 12345 → "12,345".
func FormatNumber(n int64) string {
	s := strconv.FormatInt(n, 10)
	if n < 0 {
		return "-" + insertCommas(s[1:])
	}
	return insertCommas(s)
}

// FormatPercent formats a percentage with one decimal place.
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

// FormatUsage renders "used / total (pct)". A non-positive total renders
// just the used amount.
func FormatUsage(used, total int64) string {
	if total <= 0 {
		return FormatBytes(used)
	}
	return FormatBytes(used) + " / " + FormatBytes(total) + " (" + FormatPercent(float64(used)/float64(total)*100) + ")"
}

// FormatValue renders an entity state value. Byte sensors are shown in
// human units, booleans as on/off and nil as "unavailable".
func FormatValue(v any, unit string) string {
	switch t := v.(type) {
	case nil:
		return "unavailable"
	case bool:
		if t {
			return "on"
		}
		return "off"
	case int64:
		if unit == "B" {
			return FormatBytes(t)
		}
		return FormatNumber(t)
	case int:
		return FormatValue(int64(t), unit)
	case float64:
		if unit == "B" {
			return FormatBytes(int64(t))
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case string:
		return t
	}
	return fmt.Sprint(v)
}

// FormatAge renders how long ago t was, e.g. "12s ago" or "3m ago". The
// zero time renders as "never".
func FormatAge(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := now.Sub(t)
	switch {
	case d < time.Second:
		return "just now"
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
}

func insertCommas(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	var buf strings.Builder
	lead := n % 3
	if lead > 0 {
		buf.WriteString(s[:lead])
	}
	for i := lead; i < n; i += 3 {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(s[i : i+3])
	}
	return buf.String()
}
