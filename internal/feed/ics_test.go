package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCalendar = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//taskdigest//test//EN
BEGIN:VEVENT
UID:timed-1
SUMMARY:Standup
DTSTART:20250605T090000Z
DTEND:20250605T093000Z
ATTENDEE;PARTSTAT=DECLINED:mailto:me@example.com
END:VEVENT
BEGIN:VEVENT
UID:allday-1
SUMMARY:Conference
DTSTART;VALUE=DATE:20250605
DTEND;VALUE=DATE:20250606
END:VEVENT
BEGIN:VEVENT
UID:old-1
SUMMARY:Long gone
DTSTART:20250401T090000Z
DTEND:20250401T100000Z
END:VEVENT
BEGIN:VEVENT
UID:weekly-1
SUMMARY:Weekly sync
DTSTART:20250602T100000Z
DTEND:20250602T103000Z
RRULE:FREQ=WEEKLY;BYDAY=MO
END:VEVENT
END:VCALENDAR
`

func crlf(s string) string {
	return strings.ReplaceAll(s, "\n", "\r\n")
}

func TestICSList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "user", user)
		assert.Equal(t, "pass", pass)
		w.Header().Set("Content-Type", "text/calendar")
		w.Write([]byte(crlf(testCalendar)))
	}))
	defer srv.Close()

	from := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)
	events, err := NewICS(srv.URL, "user", "pass").List(context.Background(), from, to)
	require.NoError(t, err)

	byID := make(map[string]Event, len(events))
	for _, ev := range events {
		byID[ev.ID] = ev
	}

	timed, ok := byID["timed-1"]
	require.True(t, ok)
	assert.Equal(t, "Standup", timed.Summary)
	assert.False(t, timed.AllDay)
	assert.Equal(t, time.Date(2025, 6, 5, 9, 0, 0, 0, time.UTC).Unix(), timed.StartAt.Unix())
	require.Len(t, timed.Attendees, 1)
	assert.Equal(t, "me@example.com", timed.Attendees[0].Email)
	assert.Equal(t, "declined", timed.Attendees[0].Response)

	allDay, ok := byID["allday-1"]
	require.True(t, ok)
	assert.True(t, allDay.AllDay)
	assert.Equal(t, "Conference", allDay.Summary)

	// Recurring events expand into occurrence-keyed instances within range.
	weekly, ok := byID["weekly-1_20250609T100000Z"]
	require.True(t, ok)
	assert.Equal(t, "Weekly sync", weekly.Summary)
	assert.Equal(t, 30*time.Minute, weekly.EndAt.Sub(weekly.StartAt))

	_, ok = byID["old-1"]
	assert.False(t, ok, "event outside the range must be filtered")
	_, ok = byID["weekly-1"]
	assert.False(t, ok, "recurring base event must not leak through unexpanded")
}

func TestICSListError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewICS(srv.URL, "", "").List(context.Background(), time.Now(), time.Now().Add(time.Hour))
	assert.Error(t, err)
}
