package feed

import (
	"context"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/teambition/rrule-go"
)

var _ Feed = (*ICS)(nil)

const (
	icsTimeFormat    = "20060102T150405"
	icsUTCTimeFormat = "20060102T150405Z"
	icsDateFormat    = "20060102"
)

// ICS fetches a published iCalendar export over HTTP and expands recurring
// events into single occurrences inside the requested range.
type ICS struct {
	rc  *resty.Client
	url string
}

func NewICS(url, user, pass string) *ICS {
	rc := resty.New()
	if user != "" || pass != "" {
		rc.SetBasicAuth(user, pass)
	}
	return &ICS{rc: rc, url: url}
}

func (c *ICS) List(ctx context.Context, from, to time.Time) ([]Event, error) {
	resp, err := c.rc.R().SetContext(ctx).SetDoNotParseResponse(true).Get(c.url)
	if err != nil {
		return nil, errors.Wrap(err, "error getting calendar")
	}
	if resp.IsError() {
		return nil, errors.New(fmt.Sprintf("error getting calendar: %s", resp.Status()))
	}
	cal, err := ics.ParseCalendar(resp.RawBody())
	if err != nil {
		return nil, errors.Wrap(err, "error parsing calendar")
	}
	loc := calendarLocation(cal.Timezones())

	var out []Event
	for _, vevent := range cal.Events() {
		ev, ok := eventFromICS(vevent, loc)
		if !ok {
			continue
		}
		rule := propValue(vevent.ComponentBase.GetProperty(ics.ComponentPropertyRrule))
		if rule == "" {
			end := ev.EndAt
			if end.IsZero() {
				end = ev.StartAt
			}
			if ev.StartAt.Before(to) && !end.Before(from) {
				out = append(out, ev)
			}
			continue
		}
		out = append(out, expandRecurring(ev, rule, loc, from, to)...)
	}
	return out, nil
}

func eventFromICS(vevent *ics.VEvent, loc *time.Location) (Event, bool) {
	id := propValue(vevent.ComponentBase.GetProperty(ics.ComponentPropertyUniqueId))
	if id == "" {
		return Event{}, false
	}
	ev := Event{
		ID:        id,
		Summary:   propValue(vevent.ComponentBase.GetProperty(ics.ComponentPropertySummary)),
		Cancelled: strings.EqualFold(propValue(vevent.ComponentBase.GetProperty(ics.ComponentProperty(ics.PropertyStatus))), "CANCELLED"),
	}
	start := vevent.ComponentBase.GetProperty(ics.ComponentPropertyDtStart)
	var ok bool
	ev.StartAt, ev.AllDay, ok = parseICSTime(start, loc)
	if !ok {
		log.Warn().Str("eventID", id).Str("eventTitle", ev.Summary).Msg("event has no parseable start date")
		return Event{}, false
	}
	ev.EndAt, _, _ = parseICSTime(vevent.ComponentBase.GetProperty(ics.ComponentPropertyDtEnd), loc)

	for _, prop := range vevent.Properties {
		if prop.IANAToken != string(ics.ComponentPropertyAttendee) {
			continue
		}
		ev.Attendees = append(ev.Attendees, Attendee{
			Email:    strings.TrimPrefix(strings.ToLower(prop.Value), "mailto:"),
			Response: strings.ToLower(firstParam(prop.ICalParameters, "PARTSTAT")),
		})
	}
	return ev, true
}

// expandRecurring emits one event per occurrence in [from, to), suffixing the
// ID with the occurrence instant the way expanded feeds key their instances.
func expandRecurring(base Event, rule string, loc *time.Location, from, to time.Time) []Event {
	ropt, err := rrule.StrToROptionInLocation(rule, loc)
	if err != nil {
		log.Error().Err(err).
			Str("eventID", base.ID).
			Str("eventTitle", base.Summary).
			Str("eventRrule", rule).
			Msg("event has invalid rrule")
		return nil
	}
	ropt.Dtstart = base.StartAt
	rr, err := rrule.NewRRule(*ropt)
	if err != nil {
		log.Error().Err(err).
			Str("eventID", base.ID).
			Str("eventTitle", base.Summary).
			Str("eventRrule", ropt.RRuleString()).
			Msg("event has invalid rrule")
		return nil
	}

	var duration time.Duration
	if !base.EndAt.IsZero() {
		duration = base.EndAt.Sub(base.StartAt)
	}
	occurrences := rr.Between(from, to.Add(-time.Nanosecond), true)
	out := make([]Event, 0, len(occurrences))
	for _, at := range occurrences {
		ev := base
		ev.ID = base.ID + "_" + at.UTC().Format(icsUTCTimeFormat)
		ev.StartAt = at
		if duration != 0 {
			ev.EndAt = at.Add(duration)
		}
		out = append(out, ev)
	}
	return out
}

func parseICSTime(prop *ics.IANAProperty, loc *time.Location) (t time.Time, allDay, ok bool) {
	if prop == nil || prop.Value == "" {
		return time.Time{}, false, false
	}
	v := prop.Value
	if len(v) == len(icsDateFormat) {
		t, err := time.ParseInLocation(icsDateFormat, v, loc)
		if err != nil {
			return time.Time{}, false, false
		}
		return t, true, true
	}
	if strings.HasSuffix(v, "Z") {
		t, err := time.Parse(icsUTCTimeFormat, v)
		if err != nil {
			return time.Time{}, false, false
		}
		return t, false, true
	}
	t, err := time.ParseInLocation(icsTimeFormat, v, loc)
	if err != nil {
		return time.Time{}, false, false
	}
	return t, false, true
}

func propValue(prop *ics.IANAProperty) string {
	if prop == nil {
		return ""
	}
	return prop.Value
}

func firstParam(params map[string][]string, key string) string {
	if vals, ok := params[key]; ok && len(vals) > 0 {
		return vals[0]
	}
	return ""
}

func calendarLocation(tzones []*ics.VTimezone) *time.Location {
	if len(tzones) == 0 {
		return time.Local
	}
	tzid := propValue(tzones[0].ComponentBase.GetProperty(ics.ComponentPropertyTzid))
	loc, err := time.LoadLocation(tzid)
	if err != nil {
		log.Error().Err(err).Str("timezone", tzid).Msg("error getting location by timezone id")
		return time.Local
	}
	return loc
}
