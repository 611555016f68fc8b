// Package state persists the tiny bit of memory the process keeps between
// invocations: when the feed was last synced and which message carries the
// current day's digest.
package state

import (
	"encoding/json"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type State struct {
	LastSyncAt string `json:"last_gcal_sync_at,omitempty"`
	Date       string `json:"date,omitempty"`
	MessageID  string `json:"message_id,omitempty"`
}

// Load reads the state file. A missing or unreadable file means "never
// synced, no prior message" and is not an error.
func Load(path string) State {
	data, err := os.ReadFile(path)
	if err != nil {
		return State{}
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("ignoring unparseable state file")
		return State{}
	}
	return st
}

func Save(path string, st State) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return errors.Wrap(err, "error encoding state")
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.Wrap(err, "error writing state file")
	}
	return nil
}

// ShouldSync reports whether the sync interval has elapsed since the last
// recorded sync. An absent or unparseable timestamp always syncs.
func (s State) ShouldSync(now time.Time, every time.Duration) bool {
	if s.LastSyncAt == "" {
		return true
	}
	last, err := time.Parse(time.RFC3339, s.LastSyncAt)
	if err != nil {
		return true
	}
	return now.UTC().Sub(last.UTC()) >= every
}

func (s *State) MarkSynced(now time.Time) {
	s.LastSyncAt = now.UTC().Format(time.RFC3339)
}
