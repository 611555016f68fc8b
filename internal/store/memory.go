package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

var _ Store = (*Memory)(nil)

// Memory is an in-process Store used by the noop command and tests. It counts
// mutations so callers can assert how much work a pass performed.
type Memory struct {
	mu       sync.Mutex
	seq      int
	records  map[string]Record
	archived map[string]bool

	Creates  int
	Updates  int
	Archives int

	// Now stamps CreatedAt on create; overridable in tests.
	Now func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		records:  make(map[string]Record),
		archived: make(map[string]bool),
		Now:      time.Now,
	}
}

func (m *Memory) Query(_ context.Context, f Filter) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Record
	for id, rec := range m.records {
		if m.archived[id] || !matches(f, rec) {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) Create(_ context.Context, r Record) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	r.ID = fmt.Sprintf("mem-%d", m.seq)
	if r.CreatedAt.IsZero() {
		r.CreatedAt = m.Now()
	}
	m.records[r.ID] = r
	m.Creates++
	return r, nil
}

func (m *Memory) Update(_ context.Context, id string, r Record) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.records[id]
	if !ok || m.archived[id] {
		return Record{}, fmt.Errorf("no such record: %s", id)
	}
	r.ID = id
	r.CreatedAt = existing.CreatedAt
	m.records[id] = r
	m.Updates++
	return r, nil
}

func (m *Memory) Archive(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return fmt.Errorf("no such record: %s", id)
	}
	m.archived[id] = true
	m.Archives++
	return nil
}

// Seed inserts a record verbatim, keeping the given id and created time.
func (m *Memory) Seed(r Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == "" {
		m.seq++
		r.ID = fmt.Sprintf("mem-%d", m.seq)
	}
	m.records[r.ID] = r
}

// Archived reports whether the record with the given id has been archived.
func (m *Memory) Archived(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.archived[id]
}

// Get returns the live record with the given id.
func (m *Memory) Get(id string) (Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	return rec, ok && !m.archived[id]
}

func matches(f Filter, r Record) bool {
	if f.Category != "" && r.Category != f.Category {
		return false
	}
	if f.LinkedOnly && r.ExternalLink == "" {
		return false
	}
	if f.Link != "" && r.ExternalLink != f.Link {
		return false
	}
	if f.DatedOnly && r.StartAt.IsZero() {
		return false
	}
	start := r.StartDate()
	if !f.From.IsZero() && (start.IsZero() || start.Before(f.From)) {
		return false
	}
	if !f.To.IsZero() && (start.IsZero() || start.After(f.To)) {
		return false
	}
	return true
}
