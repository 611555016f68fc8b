package store

import (
	"context"
	"time"

	"taskdigest/internal/dates"
)

// Category is a closed set of task buckets. The string value is the select
// option name in the backing database.
type Category string

const (
	CategoryCalendar    Category = "Calendar"
	CategoryMainWork    Category = "MainWork"
	CategoryOutsourcing Category = "Outsourcing"
	CategoryProjectX    Category = "ProjectX"
	CategoryYouTube     Category = "YouTube"
	CategoryOther       Category = "Other"
)

var knownCategories = map[Category]bool{
	CategoryCalendar:    true,
	CategoryMainWork:    true,
	CategoryOutsourcing: true,
	CategoryProjectX:    true,
	CategoryYouTube:     true,
	CategoryOther:       true,
}

// CategoryOrDefault maps an arbitrary stored value onto the closed set,
// folding anything unknown into Other.
func CategoryOrDefault(s string) Category {
	c := Category(s)
	if knownCategories[c] {
		return c
	}
	return CategoryOther
}

// Status is a closed set of task states. The string value doubles as the
// display text in the digest and the option name in the backing database.
type Status string

const (
	StatusNotStarted Status = "Not started"
	StatusInProgress Status = "In progress"
	StatusDone       Status = "Done"
	StatusOnHold     Status = "On hold"
)

type Priority string

const PriorityNone Priority = "-"

var priorityOrder = []Priority{"1", "2", "3", "4", PriorityNone}

// Rank returns the sort position of the priority; unranked values sort last.
func (p Priority) Rank() int {
	for i, v := range priorityOrder {
		if p == v {
			return i
		}
	}
	return len(priorityOrder)
}

// Record is one row of the task database. Calendar-mirrored records carry the
// source event id in ExternalLink; manually authored records leave it empty.
type Record struct {
	ID           string
	Title        string
	Category     Category
	Status       Status
	Priority     Priority
	StartAt      time.Time
	EndAt        time.Time
	AllDay       bool
	ExternalLink string
	CreatedAt    time.Time
}

func (r Record) StartDate() time.Time {
	if r.StartAt.IsZero() {
		return time.Time{}
	}
	return dates.DateOf(r.StartAt)
}

// EndDate is the last civil date of the record's range; single-day when no
// end is stored.
func (r Record) EndDate() time.Time {
	if r.EndAt.IsZero() {
		return r.StartDate()
	}
	return dates.DateOf(r.EndAt)
}

// ContainsDate reports whether the record's date range covers the civil date d.
func (r Record) ContainsDate(d time.Time) bool {
	start, end := r.StartDate(), r.EndDate()
	if start.IsZero() || end.IsZero() {
		return false
	}
	d = dates.DateOf(d)
	return !d.Before(start) && !d.After(end)
}

// Filter narrows a Query. Zero fields are ignored. From/To bound the record's
// start date (matching what the backing database can filter server-side);
// callers needing exact range overlap filter locally on top.
type Filter struct {
	Category   Category
	LinkedOnly bool
	Link       string
	DatedOnly  bool
	From       time.Time
	To         time.Time
}

// Store abstracts the task database.
type Store interface {
	Query(ctx context.Context, f Filter) ([]Record, error)
	Create(ctx context.Context, r Record) (Record, error)
	Update(ctx context.Context, id string, r Record) (Record, error)
	Archive(ctx context.Context, id string) error
}
