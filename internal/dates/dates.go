package dates

import (
	"fmt"
	"time"
)

// Zone is the fixed display timezone. The digest day is anchored to UTC+9
// regardless of where the process runs.
var Zone = time.FixedZone("UTC+9", 9*60*60)

// RolloverHour is the local hour at which the digest rolls to the next day.
const RolloverHour = 11

const DayFormat = "2006-01-02"

func Now() time.Time {
	return time.Now().In(Zone)
}

// DateOf truncates t to midnight in Zone.
func DateOf(t time.Time) time.Time {
	t = t.In(Zone)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, Zone)
}

// EffectiveDate returns today's date when now is at or past the rollover
// hour, otherwise yesterday's. Before 11:00 the previous day is still "today"
// as far as the digest is concerned.
func EffectiveDate(now time.Time) time.Time {
	d := DateOf(now)
	if now.In(Zone).Hour() < RolloverHour {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// Window is an inclusive range of civil dates, both bounds at midnight in Zone.
type Window struct {
	Start time.Time
	End   time.Time
}

// WindowAround returns the three days always considered current: yesterday,
// the effective date and tomorrow.
func WindowAround(effective time.Time) Window {
	d := DateOf(effective)
	return Window{Start: d.AddDate(0, 0, -1), End: d.AddDate(0, 0, 1)}
}

// Bounds returns the half-open instant range [Start 00:00, End+1d 00:00)
// covering the window.
func (w Window) Bounds() (time.Time, time.Time) {
	return w.Start, w.End.AddDate(0, 0, 1)
}

// Contains reports whether the date d falls inside the window.
func (w Window) Contains(d time.Time) bool {
	d = DateOf(d)
	return !d.Before(w.Start) && !d.After(w.End)
}

// Overlap reports whether the inclusive date ranges [aStart,aEnd] and
// [bStart,bEnd] intersect. A range with a missing (zero) bound never overlaps.
func Overlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	if aStart.IsZero() || aEnd.IsZero() || bStart.IsZero() || bEnd.IsZero() {
		return false
	}
	return !aEnd.Before(bStart) && !bEnd.Before(aStart)
}

// FormatClock renders t as a 12-hour clock time with lowercase am/pm,
// dropping the minutes when they are zero: "2pm", "2:30pm", "12am".
func FormatClock(t time.Time) string {
	t = t.In(Zone)
	h, m := t.Hour(), t.Minute()
	ap := "am"
	if h >= 12 {
		ap = "pm"
	}
	h12 := h % 12
	if h12 == 0 {
		h12 = 12
	}
	if m == 0 {
		return fmt.Sprintf("%d%s", h12, ap)
	}
	return fmt.Sprintf("%d:%02d%s", h12, m, ap)
}
