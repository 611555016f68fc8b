package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/calendar/v3"

	"taskdigest/internal/dates"
)

func TestEventFromGoogleTimed(t *testing.T) {
	item := &calendar.Event{
		Id:      "e1",
		Summary: "Standup",
		Status:  "confirmed",
		Start:   &calendar.EventDateTime{DateTime: "2025-06-05T09:00:00+09:00"},
		End:     &calendar.EventDateTime{DateTime: "2025-06-05T09:30:00+09:00"},
		Attendees: []*calendar.EventAttendee{
			{Email: "me@example.com", Self: true, ResponseStatus: "accepted"},
		},
	}

	ev, ok := eventFromGoogle(item)
	require.True(t, ok)
	assert.Equal(t, "e1", ev.ID)
	assert.Equal(t, "Standup", ev.Summary)
	assert.False(t, ev.Cancelled)
	assert.False(t, ev.AllDay)
	assert.Equal(t, time.Date(2025, 6, 5, 9, 0, 0, 0, dates.Zone).Unix(), ev.StartAt.Unix())
	assert.Equal(t, time.Date(2025, 6, 5, 9, 30, 0, 0, dates.Zone).Unix(), ev.EndAt.Unix())
	require.Len(t, ev.Attendees, 1)
	assert.True(t, ev.Attendees[0].Self)
	assert.Equal(t, "accepted", ev.Attendees[0].Response)
}

func TestEventFromGoogleAllDay(t *testing.T) {
	item := &calendar.Event{
		Id:      "e2",
		Summary: "Conference",
		Start:   &calendar.EventDateTime{Date: "2025-06-05"},
		End:     &calendar.EventDateTime{Date: "2025-06-06"},
	}

	ev, ok := eventFromGoogle(item)
	require.True(t, ok)
	assert.True(t, ev.AllDay)
	assert.Equal(t, time.Date(2025, 6, 5, 0, 0, 0, 0, dates.Zone), ev.StartAt)
}

func TestEventFromGoogleCancelled(t *testing.T) {
	item := &calendar.Event{
		Id:     "e3",
		Status: "cancelled",
		Start:  &calendar.EventDateTime{DateTime: "2025-06-05T09:00:00Z"},
	}

	ev, ok := eventFromGoogle(item)
	require.True(t, ok)
	assert.True(t, ev.Cancelled)
}

func TestEventFromGoogleRejectsUnusable(t *testing.T) {
	_, ok := eventFromGoogle(&calendar.Event{Summary: "no id", Start: &calendar.EventDateTime{Date: "2025-06-05"}})
	assert.False(t, ok)

	_, ok = eventFromGoogle(&calendar.Event{Id: "e4", Summary: "no start"})
	assert.False(t, ok)
}
