// Package reconcile mirrors an external event feed into the task database.
// It owns the invariant that at most one non-archived record carries a given
// external link, across any number of repeated runs.
package reconcile

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"taskdigest/internal/dates"
	"taskdigest/internal/feed"
	"taskdigest/internal/store"
)

type Reconciler struct {
	store store.Store
	owner string
	now   func() time.Time
}

func New(st store.Store, owner string) *Reconciler {
	return &Reconciler{store: st, owner: owner, now: dates.Now}
}

// WithNow overrides the clock used for status derivation.
func (r *Reconciler) WithNow(now func() time.Time) *Reconciler {
	r.now = now
	return r
}

type Stats struct {
	Created  int
	Updated  int
	Archived int
	Deduped  int
	Skipped  int
}

// Sync reconciles the fetched events against the mirrored records inside the
// window. Afterwards every valid event has exactly one live record, stale
// mirrors inside the window are archived, and duplicate mirrors are healed.
// Running Sync twice on an unchanged feed performs no creates or archives on
// the second pass.
func (r *Reconciler) Sync(ctx context.Context, events []feed.Event, w dates.Window) (Stats, error) {
	var stats Stats

	// Candidate fetch is deliberately one day wider than the window so a
	// range ending on the buffer day is not missed by the start-date filter.
	candidates, err := r.store.Query(ctx, store.Filter{
		Category:   store.CategoryCalendar,
		LinkedOnly: true,
		DatedOnly:  true,
		From:       w.Start,
		To:         w.End.AddDate(0, 0, 1),
	})
	if err != nil {
		return stats, errors.Wrap(err, "error querying mirrored records")
	}

	grouped := make(map[string][]store.Record)
	for _, rec := range candidates {
		grouped[rec.ExternalLink] = append(grouped[rec.ExternalLink], rec)
	}
	byLink := make(map[string]store.Record, len(grouped))
	for link, recs := range grouped {
		byLink[link] = r.dedupe(ctx, recs, &stats)
	}

	valid := make(map[string]bool)
	for _, ev := range events {
		if ev.ID == "" || ev.Cancelled || ev.DeclinedBy(r.owner) {
			continue
		}
		if ev.StartAt.IsZero() {
			log.Warn().Str("eventID", ev.ID).Str("eventTitle", ev.Summary).Msg("skipping event without start")
			stats.Skipped++
			continue
		}
		valid[ev.ID] = true
		if err := r.upsert(ctx, ev, byLink, &stats); err != nil {
			return stats, err
		}
	}

	// Mirrors whose event vanished from the valid set are archived, but only
	// when their stored range overlaps the window: a stale or partial fetch
	// must not take out records beyond the current scope.
	for link, rec := range byLink {
		if valid[link] {
			continue
		}
		if !dates.Overlap(rec.StartDate(), rec.EndDate(), w.Start, w.End) {
			continue
		}
		if err := r.store.Archive(ctx, rec.ID); err != nil {
			log.Warn().Err(err).Str("recordID", rec.ID).Str("eventID", link).Msg("error archiving stale record")
			continue
		}
		stats.Archived++
	}
	return stats, nil
}

// dedupe keeps the oldest record of a duplicate group and archives the rest.
// Duplicates should not happen, but a prior crash mid-run can leave them;
// healing before every reconciliation keeps the link unique afterwards.
// Archive failures are logged and swallowed.
func (r *Reconciler) dedupe(ctx context.Context, recs []store.Record, stats *Stats) store.Record {
	sort.SliceStable(recs, func(i, j int) bool {
		ci, cj := recs[i].CreatedAt, recs[j].CreatedAt
		if ci.IsZero() {
			return false
		}
		if cj.IsZero() {
			return true
		}
		return ci.Before(cj)
	})
	keep := recs[0]
	for _, extra := range recs[1:] {
		if err := r.store.Archive(ctx, extra.ID); err != nil {
			log.Warn().Err(err).Str("recordID", extra.ID).Msg("error archiving duplicate record")
			continue
		}
		stats.Deduped++
	}
	return keep
}

func (r *Reconciler) upsert(ctx context.Context, ev feed.Event, byLink map[string]store.Record, stats *Stats) error {
	rec := r.recordFor(ev)

	keep, found := byLink[ev.ID]
	if !found {
		// The candidate query can miss a mirror whose stored date drifted out
		// of the window; one targeted search prevents a duplicate create.
		strays, err := r.store.Query(ctx, store.Filter{Link: ev.ID, LinkedOnly: true})
		if err != nil {
			return errors.Wrap(err, "error searching for stray record")
		}
		if len(strays) > 0 {
			keep = r.dedupe(ctx, strays, stats)
			byLink[ev.ID] = keep
			found = true
		}
	}

	if found {
		if _, err := r.store.Update(ctx, keep.ID, rec); err != nil {
			return errors.Wrap(err, "error updating mirrored record")
		}
		stats.Updated++
		return nil
	}

	created, err := r.store.Create(ctx, rec)
	if err != nil {
		return errors.Wrap(err, "error creating mirrored record")
	}
	byLink[ev.ID] = created
	stats.Created++
	return nil
}

// recordFor derives the mirrored record fields from the event. Timed events
// get the start clock appended to the title and a status computed from the
// current instant against [start, end); all-day events are stored as a
// single-day date-only range and always read as not started.
func (r *Reconciler) recordFor(ev feed.Event) store.Record {
	summary := ev.Summary
	if summary == "" {
		summary = "(untitled)"
	}
	start := ev.StartAt.In(dates.Zone)
	end := ev.EndAt
	if end.IsZero() {
		end = start.Add(time.Hour)
	} else {
		end = end.In(dates.Zone)
	}

	rec := store.Record{
		Title:        summary,
		Category:     store.CategoryCalendar,
		Status:       store.StatusNotStarted,
		Priority:     store.PriorityNone,
		StartAt:      start,
		AllDay:       ev.AllDay,
		ExternalLink: ev.ID,
	}
	if ev.AllDay {
		return rec
	}

	rec.Title = summary + " " + dates.FormatClock(start)
	rec.EndAt = end
	now := r.now()
	switch {
	case now.Before(start):
		rec.Status = store.StatusNotStarted
	case now.Before(end):
		rec.Status = store.StatusInProgress
	default:
		rec.Status = store.StatusDone
	}
	return rec
}
