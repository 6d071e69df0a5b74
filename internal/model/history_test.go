package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsageHistory_PushAndLen(t *testing.T) {
	h := NewUsageHistory(5)
	assert.Equal(t, 0, h.Len())

	h.Push(UsagePoint{Timestamp: time.Now(), Usage: 1})
	h.Push(UsagePoint{Timestamp: time.Now(), Usage: 2})
	assert.Equal(t, 2, h.Len())
}

func TestUsageHistory_OverwritesOldest(t *testing.T) {
	h := NewUsageHistory(3)
	h.Push(UsagePoint{Usage: 10})
	h.Push(UsagePoint{Usage: 20})
	h.Push(UsagePoint{Usage: 30})
	require.Equal(t, 3, h.Len())

	h.Push(UsagePoint{Usage: 40})
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, []float64{20, 30, 40}, h.Values("usage"))

	last, ok := h.Last()
	require.True(t, ok)
	assert.EqualValues(t, 40, last.Usage)
}

func TestUsageHistory_Percent(t *testing.T) {
	h := NewUsageHistory(0)
	h.Push(UsagePoint{Usage: 50, Total: 100})
	h.Push(UsagePoint{Usage: 50, Total: -2})

	assert.Equal(t, []float64{50, 0}, h.Values("percent"))
	assert.Equal(t, []float64{100, -2}, h.Values("total"))
	assert.Equal(t, []float64{0, 0}, h.Values("unknown"))
}

func TestUsageHistory_LastEmpty(t *testing.T) {
	_, ok := NewUsageHistory(2).Last()
	assert.False(t, ok)
}
