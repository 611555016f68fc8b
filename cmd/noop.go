package cmd

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"taskdigest/internal/domain"
	"taskdigest/internal/feed"
	"taskdigest/internal/notify"
	"taskdigest/internal/store"
)

// noopCmd runs one pass against inert collaborators; useful for checking
// wiring and config without touching any external service.
func noopCmd(ctx context.Context) error {
	statePath := filepath.Join(os.TempDir(), "taskdigest_noop_state.json")
	uc := domain.New(ctx, &feed.Noop{}, store.NewMemory(), &notify.Noop{}, "", statePath, 30*time.Minute)
	return uc.RunOnce(ctx)
}
