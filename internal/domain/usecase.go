package domain

import (
	"context"
	"time"

	"github.com/adhocore/gronx/pkg/tasker"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"

	"taskdigest/internal/dates"
	"taskdigest/internal/digest"
	"taskdigest/internal/feed"
	"taskdigest/internal/notify"
	"taskdigest/internal/reconcile"
	"taskdigest/internal/state"
	"taskdigest/internal/store"
)

// UseCase wires the feed, the record store and the notifier into one daily
// pass: mirror the calendar when due, then render and publish the digest.
type UseCase struct {
	feed       feed.Feed
	store      store.Store
	notifier   notify.Notifier
	reconciler *reconcile.Reconciler
	renderer   *digest.Renderer
	statePath  string
	interval   time.Duration
	pool       *pool.ContextPool
	ctx        context.Context
	now        func() time.Time
}

func New(ctx context.Context, f feed.Feed, st store.Store, n notify.Notifier, owner, statePath string, interval time.Duration) *UseCase {
	return &UseCase{
		feed:       f,
		store:      st,
		notifier:   n,
		reconciler: reconcile.New(st, owner),
		renderer:   digest.New(digest.DefaultSections()),
		statePath:  statePath,
		interval:   interval,
		pool:       pool.New().WithContext(ctx).WithMaxGoroutines(1),
		ctx:        ctx,
		now:        dates.Now,
	}
}

// RunOnce performs one full pass. State is loaded once at the start and
// persisted after a sync and after a new message; everything runs
// sequentially on the calling goroutine.
func (uc *UseCase) RunOnce(ctx context.Context) error {
	now := uc.now()
	st := state.Load(uc.statePath)
	effective := dates.EffectiveDate(now)
	window := dates.WindowAround(effective)

	if st.ShouldSync(now, uc.interval) {
		from, to := window.Bounds()
		events, err := uc.feed.List(ctx, from, to)
		if err != nil {
			return errors.Wrap(err, "error listing feed events")
		}
		stats, err := uc.reconciler.Sync(ctx, events, window)
		if err != nil {
			return errors.Wrap(err, "error reconciling events")
		}
		log.Info().
			Int("created", stats.Created).
			Int("updated", stats.Updated).
			Int("archived", stats.Archived).
			Int("deduped", stats.Deduped).
			Int("skipped", stats.Skipped).
			Msg("calendar sync finished")
		st.MarkSynced(now)
		if err := state.Save(uc.statePath, st); err != nil {
			return err
		}
	}

	body, err := uc.renderDigest(ctx, effective, window)
	if err != nil {
		return err
	}
	return uc.publish(ctx, &st, effective, body)
}

func (uc *UseCase) renderDigest(ctx context.Context, effective time.Time, window dates.Window) (string, error) {
	// Server-side filter is a day wider than the window; exact overlap is
	// decided locally from the decoded ranges.
	candidates, err := uc.store.Query(ctx, store.Filter{
		DatedOnly: true,
		From:      window.Start,
		To:        window.End.AddDate(0, 0, 1),
	})
	if err != nil {
		return "", errors.Wrap(err, "error querying records for digest")
	}
	records := make([]store.Record, 0, len(candidates))
	for _, rec := range candidates {
		if dates.Overlap(rec.StartDate(), rec.EndDate(), window.Start, window.End) {
			records = append(records, rec)
		}
	}
	return uc.renderer.Render(records, effective), nil
}

// publish keeps exactly one outbound message per effective date: the current
// day's message is edited in place, a new day gets a new message and the
// state forgets the old linkage.
func (uc *UseCase) publish(ctx context.Context, st *state.State, effective time.Time, body string) error {
	day := effective.Format(dates.DayFormat)
	if st.Date == day && st.MessageID != "" {
		if err := uc.notifier.Edit(ctx, st.MessageID, body); err != nil {
			return errors.Wrap(err, "error editing digest message")
		}
		log.Info().Str("messageID", st.MessageID).Str("date", day).Msg("edited digest message")
		return nil
	}
	id, err := uc.notifier.Post(ctx, body)
	if err != nil {
		return errors.Wrap(err, "error posting digest message")
	}
	st.Date = day
	st.MessageID = id
	if err := state.Save(uc.statePath, *st); err != nil {
		return err
	}
	log.Info().Str("messageID", id).Str("date", day).Msg("created digest message")
	return nil
}

// TaskDigest schedules RunOnce on the given cron expression for watch mode.
func (uc *UseCase) TaskDigest(cronExpr string) {
	taskr := tasker.New(tasker.Option{})
	taskr.Task(cronExpr, func(ctx context.Context) (int, error) {
		if err := uc.RunOnce(ctx); err != nil {
			log.Error().Err(err).Msg("digest pass failed")
			return 1, err
		}
		return 0, nil
	})
	uc.pool.Go(func(ctx context.Context) error {
		taskr.Run()
		return nil
	})
}

func (uc *UseCase) Stop() {
	uc.pool.Wait()
}
