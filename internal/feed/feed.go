package feed

import (
	"context"
	"strings"
	"time"
)

// Feed lists calendar events whose instants intersect [from, to).
type Feed interface {
	List(ctx context.Context, from, to time.Time) ([]Event, error)
}

// Event is a single occurrence fetched from a calendar. Recurring events are
// expanded by the feed; each occurrence carries its own stable ID.
type Event struct {
	ID        string
	Summary   string
	StartAt   time.Time
	EndAt     time.Time
	AllDay    bool
	Cancelled bool
	Attendees []Attendee
}

type Attendee struct {
	Email    string
	Self     bool
	Response string
}

const responseDeclined = "declined"

// DeclinedBy reports whether the calendar owner has declined the event.
// The owner is matched by exact address first; an attendee flagged as "self"
// counts when no address is configured or none matches.
func (e Event) DeclinedBy(owner string) bool {
	owner = strings.ToLower(strings.TrimSpace(owner))
	for _, a := range e.Attendees {
		if strings.ToLower(strings.TrimSpace(a.Response)) != responseDeclined {
			continue
		}
		if owner != "" && strings.ToLower(strings.TrimSpace(a.Email)) == owner {
			return true
		}
		if a.Self {
			return true
		}
	}
	return false
}
