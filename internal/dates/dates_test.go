package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, Zone)
}

func TestEffectiveDateRollover(t *testing.T) {
	day := date(2025, 6, 5)

	before := time.Date(2025, 6, 5, 10, 59, 0, 0, Zone)
	assert.Equal(t, day.AddDate(0, 0, -1), EffectiveDate(before))

	at := time.Date(2025, 6, 5, 11, 0, 0, 0, Zone)
	assert.Equal(t, day, EffectiveDate(at))

	late := time.Date(2025, 6, 5, 23, 59, 0, 0, Zone)
	assert.Equal(t, day, EffectiveDate(late))
}

func TestEffectiveDateConvertsZone(t *testing.T) {
	// 01:30 UTC is 10:30 in the display zone, still the previous day.
	now := time.Date(2025, 6, 5, 1, 30, 0, 0, time.UTC)
	assert.Equal(t, date(2025, 6, 4), EffectiveDate(now))
}

func TestWindowAround(t *testing.T) {
	w := WindowAround(date(2025, 6, 5))
	assert.Equal(t, date(2025, 6, 4), w.Start)
	assert.Equal(t, date(2025, 6, 6), w.End)

	from, to := w.Bounds()
	assert.Equal(t, date(2025, 6, 4), from)
	assert.Equal(t, date(2025, 6, 7), to)

	assert.True(t, w.Contains(date(2025, 6, 4)))
	assert.True(t, w.Contains(date(2025, 6, 6)))
	assert.False(t, w.Contains(date(2025, 6, 7)))
}

func TestOverlap(t *testing.T) {
	a0, a1 := date(2025, 6, 1), date(2025, 6, 3)
	assert.True(t, Overlap(a0, a1, date(2025, 6, 3), date(2025, 6, 5)))
	assert.True(t, Overlap(a0, a1, date(2025, 5, 30), date(2025, 6, 1)))
	assert.False(t, Overlap(a0, a1, date(2025, 6, 4), date(2025, 6, 5)))

	// A missing bound never overlaps.
	assert.False(t, Overlap(time.Time{}, a1, a0, a1))
	assert.False(t, Overlap(a0, a1, a0, time.Time{}))
}

func TestFormatClock(t *testing.T) {
	cases := map[string]time.Time{
		"2pm":     time.Date(2025, 6, 5, 14, 0, 0, 0, Zone),
		"2:30pm":  time.Date(2025, 6, 5, 14, 30, 0, 0, Zone),
		"9am":     time.Date(2025, 6, 5, 9, 0, 0, 0, Zone),
		"12am":    time.Date(2025, 6, 5, 0, 0, 0, 0, Zone),
		"12:05pm": time.Date(2025, 6, 5, 12, 5, 0, 0, Zone),
		"11:59pm": time.Date(2025, 6, 5, 23, 59, 0, 0, Zone),
	}
	for want, at := range cases {
		assert.Equal(t, want, FormatClock(at))
	}
}
