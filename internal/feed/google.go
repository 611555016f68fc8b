package feed

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"taskdigest/internal/dates"
)

var _ Feed = (*Google)(nil)

// Google reads events from a single Google Calendar using a service account.
type Google struct {
	srv        *calendar.Service
	calendarID string
}

func NewGoogle(ctx context.Context, credentialsJSON []byte, calendarID string) (*Google, error) {
	srv, err := calendar.NewService(ctx,
		option.WithCredentialsJSON(credentialsJSON),
		option.WithScopes(calendar.CalendarReadonlyScope),
	)
	if err != nil {
		return nil, errors.Wrap(err, "error creating calendar service")
	}
	return &Google{srv: srv, calendarID: calendarID}, nil
}

func (g *Google) List(ctx context.Context, from, to time.Time) ([]Event, error) {
	var out []Event
	pageToken := ""
	for {
		call := g.srv.Events.List(g.calendarID).
			TimeMin(from.UTC().Format(time.RFC3339)).
			TimeMax(to.UTC().Format(time.RFC3339)).
			SingleEvents(true).
			OrderBy("startTime").
			ShowDeleted(false).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		res, err := call.Do()
		if err != nil {
			return nil, errors.Wrap(err, "error listing calendar events")
		}
		for _, item := range res.Items {
			ev, ok := eventFromGoogle(item)
			if !ok {
				continue
			}
			out = append(out, ev)
		}
		pageToken = res.NextPageToken
		if pageToken == "" {
			break
		}
	}
	return out, nil
}

func eventFromGoogle(item *calendar.Event) (Event, bool) {
	if item.Id == "" {
		return Event{}, false
	}
	ev := Event{
		ID:        item.Id,
		Summary:   item.Summary,
		Cancelled: item.Status == "cancelled",
	}
	var ok bool
	ev.StartAt, ev.AllDay, ok = parseGoogleTime(item.Start)
	if !ok {
		log.Warn().Str("eventID", item.Id).Str("eventTitle", item.Summary).Msg("event has no parseable start")
		return Event{}, false
	}
	ev.EndAt, _, _ = parseGoogleTime(item.End)
	for _, a := range item.Attendees {
		if a == nil {
			continue
		}
		ev.Attendees = append(ev.Attendees, Attendee{
			Email:    a.Email,
			Self:     a.Self,
			Response: a.ResponseStatus,
		})
	}
	return ev, true
}

func parseGoogleTime(edt *calendar.EventDateTime) (t time.Time, allDay, ok bool) {
	if edt == nil {
		return time.Time{}, false, false
	}
	if edt.DateTime != "" {
		t, err := time.Parse(time.RFC3339, edt.DateTime)
		if err != nil {
			return time.Time{}, false, false
		}
		return t.In(dates.Zone), false, true
	}
	if edt.Date != "" {
		t, err := time.ParseInLocation(dates.DayFormat, edt.Date, dates.Zone)
		if err != nil {
			return time.Time{}, false, false
		}
		return t, true, true
	}
	return time.Time{}, false, false
}
