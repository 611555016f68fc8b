package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	st := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Equal(t, State{}, st)
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	assert.Equal(t, State{}, Load(path))
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	st := State{
		LastSyncAt: "2025-06-05T00:15:00Z",
		Date:       "2025-06-05",
		MessageID:  "msg-1",
	}
	require.NoError(t, Save(path, st))
	assert.Equal(t, st, Load(path))
}

func TestShouldSync(t *testing.T) {
	now := time.Date(2025, 6, 5, 1, 0, 0, 0, time.UTC)

	assert.True(t, State{}.ShouldSync(now, 30*time.Minute))
	assert.True(t, State{LastSyncAt: "garbage"}.ShouldSync(now, 30*time.Minute))

	recent := State{LastSyncAt: now.Add(-10 * time.Minute).Format(time.RFC3339)}
	assert.False(t, recent.ShouldSync(now, 30*time.Minute))

	stale := State{LastSyncAt: now.Add(-30 * time.Minute).Format(time.RFC3339)}
	assert.True(t, stale.ShouldSync(now, 30*time.Minute))
}

func TestMarkSynced(t *testing.T) {
	now := time.Date(2025, 6, 5, 10, 15, 0, 0, time.FixedZone("UTC+9", 9*60*60))
	var st State
	st.MarkSynced(now)
	assert.Equal(t, "2025-06-05T01:15:00Z", st.LastSyncAt)
	assert.False(t, st.ShouldSync(now, 30*time.Minute))
}
