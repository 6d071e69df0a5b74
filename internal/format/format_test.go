package format

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		name  string
		input int64
		want  string
	}{
		{"negative", -1, "---"},
		{"zero", 0, "0 B"},
		{"bytes_max", 1023, "1023 B"},
		{"one_kb", 1024, "1.0 KB"},
		{"one_and_half_kb", 1536, "1.5 KB"},
		{"just_under_mb", 1024*1024 - 1, "1024.0 KB"},
		{"one_mb", 1024 * 1024, "1.0 MB"},
		{"one_and_half_gb", int64(1.5 * 1024 * 1024 * 1024), "1.5 GB"},
		{"two_tb", 2 * 1024 * 1024 * 1024 * 1024, "2.0 TB"},
		{"one_pb", 1 << 50, "1.0 PB"},
		{"max", math.MaxInt64, "8192.0 PB"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatBytes(tc.input))
		})
	}
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "0", FormatNumber(0))
	assert.Equal(t, "999", FormatNumber(999))
	assert.Equal(t, "1,000", FormatNumber(1000))
	assert.Equal(t, "12,345,678", FormatNumber(12345678))
	assert.Equal(t, "-1,234", FormatNumber(-1234))
	assert.Equal(t, "-9,223,372,036,854,775,808", FormatNumber(math.MinInt64))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "34.5%", FormatPercent(34.5))
	assert.Equal(t, "0.0%", FormatPercent(0))
}

func TestFormatUsage(t *testing.T) {
	assert.Equal(t, "512.0 MB / 1.0 GB (50.0%)", FormatUsage(512<<20, 1<<30))
	assert.Equal(t, "10 B", FormatUsage(10, 0))
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name  string
		value any
		unit  string
		want  string
	}{
		{"nil", nil, "B", "unavailable"},
		{"true", true, "", "on"},
		{"false", false, "", "off"},
		{"bytes int64", int64(2048), "B", "2.0 KB"},
		{"bytes from json", float64(1536), "B", "1.5 KB"},
		{"plain int", int64(12345), "", "12,345"},
		{"plain float", 1.25, "", "1.25"},
		{"string", "Photos", "", "Photos"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatValue(tc.value, tc.unit))
		})
	}
}

func TestFormatAge(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "never", FormatAge(time.Time{}, now))
	assert.Equal(t, "just now", FormatAge(now, now))
	assert.Equal(t, "12s ago", FormatAge(now.Add(-12*time.Second), now))
	assert.Equal(t, "3m ago", FormatAge(now.Add(-3*time.Minute), now))
	assert.Equal(t, "2h ago", FormatAge(now.Add(-2*time.Hour), now))
}
