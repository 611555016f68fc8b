package domain

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskdigest/internal/dates"
	"taskdigest/internal/feed"
	"taskdigest/internal/notify"
	"taskdigest/internal/state"
	"taskdigest/internal/store"
)

type fakeFeed struct {
	events []feed.Event
	calls  int
}

func (f *fakeFeed) List(_ context.Context, _, _ time.Time) ([]feed.Event, error) {
	f.calls++
	return f.events, nil
}

type fakeNotifier struct {
	posts []string
	edits map[string]int
}

var _ notify.Notifier = (*fakeNotifier)(nil)

func (n *fakeNotifier) Post(_ context.Context, body string) (string, error) {
	n.posts = append(n.posts, body)
	return fmt.Sprintf("msg-%d", len(n.posts)), nil
}

func (n *fakeNotifier) Edit(_ context.Context, messageID, _ string) error {
	if n.edits == nil {
		n.edits = make(map[string]int)
	}
	n.edits[messageID]++
	return nil
}

func TestRunOncePublishesOneMessagePerDay(t *testing.T) {
	ctx := context.Background()
	statePath := filepath.Join(t.TempDir(), "state.json")

	fd := &fakeFeed{events: []feed.Event{{
		ID:      "e1",
		Summary: "Standup",
		StartAt: time.Date(2025, 6, 5, 9, 0, 0, 0, dates.Zone),
		EndAt:   time.Date(2025, 6, 5, 9, 30, 0, 0, dates.Zone),
	}}}
	mem := store.NewMemory()
	fn := &fakeNotifier{}

	uc := New(ctx, fd, mem, fn, "me@example.com", statePath, 30*time.Minute)
	now := time.Date(2025, 6, 5, 12, 0, 0, 0, dates.Zone)
	uc.now = func() time.Time { return now }

	// First pass: sync runs, a new message is created.
	require.NoError(t, uc.RunOnce(ctx))
	require.Len(t, fn.posts, 1)
	assert.Equal(t, 1, fd.calls)
	assert.Contains(t, fn.posts[0], "Standup 9am")
	assert.Equal(t, 1, mem.Creates)

	st := state.Load(statePath)
	assert.Equal(t, "2025-06-05", st.Date)
	assert.Equal(t, "msg-1", st.MessageID)
	assert.NotEmpty(t, st.LastSyncAt)

	// Second pass inside the interval: no new sync, the message is edited.
	require.NoError(t, uc.RunOnce(ctx))
	assert.Equal(t, 1, fd.calls)
	assert.Len(t, fn.posts, 1)
	assert.Equal(t, 1, fn.edits["msg-1"])

	// Past the interval but same day: sync again, still edit in place.
	now = now.Add(31 * time.Minute)
	require.NoError(t, uc.RunOnce(ctx))
	assert.Equal(t, 2, fd.calls)
	assert.Len(t, fn.posts, 1)
	assert.Equal(t, 2, fn.edits["msg-1"])
	assert.Equal(t, 1, mem.Creates, "unchanged feed must not create more records")

	// Next effective day: a fresh message, old linkage discarded.
	now = now.Add(24 * time.Hour)
	require.NoError(t, uc.RunOnce(ctx))
	require.Len(t, fn.posts, 2)
	st = state.Load(statePath)
	assert.Equal(t, "2025-06-06", st.Date)
	assert.Equal(t, "msg-2", st.MessageID)
}

func TestRunOnceRendersManualRecords(t *testing.T) {
	ctx := context.Background()
	statePath := filepath.Join(t.TempDir(), "state.json")

	mem := store.NewMemory()
	mem.Seed(store.Record{
		ID:       "manual",
		Title:    "Edit script",
		Category: store.CategoryYouTube,
		Status:   store.StatusInProgress,
		Priority: "1",
		StartAt:  time.Date(2025, 6, 5, 0, 0, 0, 0, dates.Zone),
		AllDay:   true,
	})
	fn := &fakeNotifier{}

	uc := New(ctx, &feed.Noop{}, mem, fn, "", statePath, 30*time.Minute)
	uc.now = func() time.Time { return time.Date(2025, 6, 5, 12, 0, 0, 0, dates.Zone) }

	require.NoError(t, uc.RunOnce(ctx))
	require.Len(t, fn.posts, 1)
	assert.Contains(t, fn.posts[0], "(In progress) Edit script")
	assert.Contains(t, fn.posts[0], "📅 **2025-06-05**")
}
