package cmd

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"taskdigest/internal/config"
	"taskdigest/internal/domain"
	"taskdigest/internal/feed"
	"taskdigest/internal/notify"
	"taskdigest/internal/store"
)

// runCmd performs one sync-and-digest pass and exits; it is the command a
// periodic external trigger invokes.
func runCmd(ctx context.Context) error {
	uc, err := buildUseCase(ctx)
	if err != nil {
		return err
	}
	return uc.RunOnce(ctx)
}

func buildUseCase(ctx context.Context) (*domain.UseCase, error) {
	cfg := config.Gist()

	token := cfg.String(config.STORE_TOKEN)
	if token == "" {
		return nil, errors.New("store token is required")
	}
	database := store.NormalizeDatabaseID(cfg.String(config.STORE_DATABASE))
	if database == "" {
		return nil, errors.New("store database is required")
	}
	webhook := cfg.String(config.NOTIFY_WEBHOOK)
	if webhook == "" {
		return nil, errors.New("notify webhook is required")
	}

	fd, err := buildFeed(ctx)
	if err != nil {
		return nil, err
	}

	return domain.New(
		ctx,
		fd,
		store.NewNotion(token, database, store.DefaultSchema()),
		notify.NewDiscord(webhook),
		cfg.String(config.FEED_OWNER),
		cfg.String(config.STATE_FILE),
		time.Duration(cfg.Int(config.SYNC_INTERVAL))*time.Minute,
	), nil
}

func buildFeed(ctx context.Context) (feed.Feed, error) {
	cfg := config.Gist()
	switch backend := cfg.String(config.FEED_BACKEND); backend {
	case "google":
		credentials := cfg.String(config.FEED_CREDENTIALS)
		if credentials == "" {
			return nil, errors.New("feed credentials are required")
		}
		calendarID := cfg.String(config.FEED_CALENDAR)
		if calendarID == "" {
			return nil, errors.New("feed calendar is required")
		}
		return feed.NewGoogle(ctx, []byte(credentials), calendarID)
	case "ics":
		url := cfg.String(config.ICS_URL)
		if url == "" {
			return nil, errors.New("ics url is required")
		}
		return feed.NewICS(url, cfg.String(config.ICS_USER), cfg.String(config.ICS_PASS)), nil
	case "noop":
		return &feed.Noop{}, nil
	default:
		return nil, errors.New("unknown feed backend: " + backend)
	}
}
