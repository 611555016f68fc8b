package cmd

import (
	"context"

	"taskdigest/internal/config"
)

// watchCmd keeps the process alive and runs the pass on a cron schedule.
// State-based interval gating still applies, so a tight cron only means the
// digest is refreshed more often.
func watchCmd(ctx context.Context) error {
	uc, err := buildUseCase(ctx)
	if err != nil {
		return err
	}
	uc.TaskDigest(config.Gist().String(config.WATCH_CRON))
	<-ctx.Done()
	return nil
}
