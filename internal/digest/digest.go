// Package digest renders the in-window task records into the daily message
// body. It only reads records; all mutation belongs to the reconciler.
package digest

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"taskdigest/internal/dates"
	"taskdigest/internal/store"
)

// Section pairs a category with its display icon. Section order is render
// order and is fixed at construction.
type Section struct {
	Category store.Category
	Icon     string
}

func DefaultSections() []Section {
	return []Section{
		{store.CategoryCalendar, "📧"},
		{store.CategoryMainWork, "1️⃣"},
		{store.CategoryOutsourcing, "2️⃣"},
		{store.CategoryProjectX, "3️⃣"},
		{store.CategoryYouTube, "4️⃣"},
		{store.CategoryOther, "ℹ️"},
	}
}

const emptyPlaceholder = "no tasks"

type Renderer struct {
	sections []Section
}

func New(sections []Section) *Renderer {
	return &Renderer{sections: sections}
}

// Render produces the digest for the target date from the given records.
// Records whose date range does not contain the target date are ignored;
// unknown categories land in Other.
func (r *Renderer) Render(records []store.Record, target time.Time) string {
	target = dates.DateOf(target)
	grouped := make(map[store.Category][]store.Record)
	for _, rec := range records {
		if rec.Title == "" || !rec.ContainsDate(target) {
			continue
		}
		cat := store.CategoryOrDefault(string(rec.Category))
		grouped[cat] = append(grouped[cat], rec)
	}
	for cat, recs := range grouped {
		if cat == store.CategoryCalendar {
			sortByStart(recs)
		} else {
			sortByPriority(recs)
		}
	}

	lines := []string{fmt.Sprintf("📅 **%s**", target.Format(dates.DayFormat)), ""}
	for i, section := range r.sections {
		lines = append(lines, fmt.Sprintf("%s **%s**", section.Icon, section.Category))
		items := grouped[section.Category]
		if len(items) == 0 {
			lines = append(lines, emptyPlaceholder)
		}
		for _, rec := range items {
			lines = append(lines, formatLine(rec))
		}
		if i != len(r.sections)-1 {
			lines = append(lines, "")
		}
	}
	return strings.Join(lines, "\n")
}

// sortByStart orders calendar records by their underlying instant ascending;
// records without one sort last, ties break on title.
func sortByStart(recs []store.Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		si, sj := recs[i].StartAt, recs[j].StartAt
		if si.IsZero() != sj.IsZero() {
			return sj.IsZero()
		}
		if !si.Equal(sj) {
			return si.Before(sj)
		}
		return recs[i].Title < recs[j].Title
	})
}

func sortByPriority(recs []store.Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		ri, rj := recs[i].Priority.Rank(), recs[j].Priority.Rank()
		if ri != rj {
			return ri < rj
		}
		return recs[i].Title < recs[j].Title
	})
}

// formatLine renders one item. Done strikes the line through and On hold
// underlines it; both markers belong to the destination medium and are
// emitted literally.
func formatLine(rec store.Record) string {
	status := rec.Status
	if status == "" {
		status = store.StatusNotStarted
	}
	line := fmt.Sprintf("(%s) %s", status, rec.Title)
	switch status {
	case store.StatusDone:
		line = "~~" + line + "~~"
	case store.StatusOnHold:
		line = "__" + line + "__"
	}
	return line
}
