package usecase

import (
	"context"
	"fmt"
	"time"

	"EarningsPull/internal/domain/models"
	"EarningsPull/internal/domain/repository"
	"EarningsPull/pkg/logger"
)

// RefresherConfig carries the tunables of a refresh pass.
type RefresherConfig struct {
	StaleDays     int
	HistoryCap    int
	AverageWindow int
	PadDays       int
	Location      *time.Location
}

// Refresher runs one full refresh pass: reconcile the cache against the
// roster, fan out the fetch phases, match reactions, persist. The cache is
// only ever mutated here, single-threaded, after each phase's results are
// collected; tasks return immutable values and never touch shared state.
type Refresher struct {
	roster        repository.RosterProvider
	announcements repository.AnnouncementSource
	prices        repository.PriceSource
	details       repository.DetailSource
	store         repository.SnapshotStore
	sink          repository.ReactionSink
	pool          *FetchPool
	metrics       repository.Metrics
	log           *logger.Logger
	cfg           RefresherConfig
}

func NewRefresher(
	roster repository.RosterProvider,
	announcements repository.AnnouncementSource,
	prices repository.PriceSource,
	details repository.DetailSource,
	store repository.SnapshotStore,
	sink repository.ReactionSink,
	pool *FetchPool,
	metrics repository.Metrics,
	log *logger.Logger,
	cfg RefresherConfig,
) *Refresher {
	if cfg.HistoryCap <= 0 {
		cfg.HistoryCap = 10
	}
	if cfg.AverageWindow <= 0 {
		cfg.AverageWindow = 10
	}
	if cfg.PadDays <= 0 {
		cfg.PadDays = 10
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Refresher{
		roster:        roster,
		announcements: announcements,
		prices:        prices,
		details:       details,
		store:         store,
		sink:          sink,
		pool:          pool,
		metrics:       metrics,
		log:           log,
		cfg:           cfg,
	}
}

// Refresh runs one pass against snap in place and persists after every
// mutating phase. Only a roster failure aborts; per-symbol failures leave the
// symbol for a later pass.
func (r *Refresher) Refresh(ctx context.Context, snap models.Snapshot) error {
	started := time.Now()

	roster, err := r.roster.Companies(ctx)
	if err != nil {
		r.metrics.RecordError("roster")
		return fmt.Errorf("load roster: %w", err)
	}
	names := make(map[string]string, len(roster))
	for _, c := range roster {
		names[c.Symbol] = c.Name
	}

	plan := BuildPlan(snap, roster, started, r.cfg.StaleDays)
	r.log.Info("refresh plan built",
		logger.Int("roster", len(roster)),
		logger.Int("purge", len(plan.Purge)),
		logger.Int("new", len(plan.New)),
		logger.Int("next_due", len(plan.NextEarningsDue)),
		logger.Int("reaction_due", len(plan.ReactionDue)))

	if plan.Empty() {
		r.metrics.SetLastRefresh(started)
		return nil
	}

	// purge before any fetch work; delisted symbols never cost a request
	if len(plan.Purge) > 0 {
		for _, sym := range plan.Purge {
			delete(snap, sym)
		}
		if err := r.persist(ctx, snap); err != nil {
			return err
		}
	}

	r.refreshNextEarnings(ctx, snap, plan.NextEarningsDue)

	full := append(append([]string(nil), plan.New...), plan.ReactionDue...)
	r.refreshRecords(ctx, snap, full, names)

	r.refreshDetails(ctx, snap, plan.New)

	if err := r.persist(ctx, snap); err != nil {
		return err
	}

	r.publish(ctx, snap, full)

	r.metrics.SetLastRefresh(time.Now())
	r.metrics.RecordPhaseDuration("pass", time.Since(started).Seconds())
	r.log.Info("refresh pass complete",
		logger.Duration("elapsed", time.Since(started)),
		logger.Int("cached", len(snap)))
	return nil
}

// refreshNextEarnings re-fetches only the next-earnings date for stale symbols.
func (r *Refresher) refreshNextEarnings(ctx context.Context, snap models.Snapshot, symbols []string) {
	if len(symbols) == 0 {
		return
	}
	phase := time.Now()
	results := RunFetch(ctx, r.pool, "next_earnings", symbols,
		func(ctx context.Context, sym string) (*models.AnnouncementEvent, error) {
			return r.announcements.Next(ctx, sym)
		})
	for sym, next := range results {
		if rec, ok := snap[sym]; ok {
			rec.NextEarnings = next
			rec.UpdatedAt = time.Now()
		}
	}
	r.metrics.RecordPhaseDuration("next_earnings", time.Since(phase).Seconds())
}

// fetchedRecord is the immutable result of one symbol's full fetch.
type fetchedRecord struct {
	events []models.AnnouncementEvent
	next   *models.AnnouncementEvent
	bars   []models.PriceBar
}

// refreshRecords performs the full fetch for new and reaction-due symbols:
// historical events, next earnings, and a padded price window, then matches
// reactions and folds the result into the cache.
func (r *Refresher) refreshRecords(ctx context.Context, snap models.Snapshot, symbols []string, names map[string]string) {
	if len(symbols) == 0 {
		return
	}
	phase := time.Now()
	results := RunFetch(ctx, r.pool, "record", symbols,
		func(ctx context.Context, sym string) (*fetchedRecord, error) {
			return r.fetchRecord(ctx, sym)
		})
	for sym, fetched := range results {
		rec, ok := snap[sym]
		if !ok {
			rec = &models.CompanyRecord{Symbol: sym}
			snap[sym] = rec
		}
		rec.Name = names[sym]
		rec.Events = fetched.events
		if fetched.next != nil {
			rec.NextEarnings = fetched.next
		}
		rec.Reactions = r.match(fetched.events, fetched.bars)
		rec.Average = ComputeAverage(rec.Reactions, r.cfg.AverageWindow)
		rec.UpdatedAt = time.Now()
	}
	r.metrics.RecordPhaseDuration("records", time.Since(phase).Seconds())
}

// fetchRecord pulls one symbol's announcements and the price window padded
// around them. A symbol with no announcement history is ErrNoData, not a
// failure; the price request is skipped entirely so no unbounded range is
// ever asked for.
func (r *Refresher) fetchRecord(ctx context.Context, sym string) (*fetchedRecord, error) {
	events, err := r.announcements.Historical(ctx, sym)
	if err != nil {
		return nil, err
	}
	if len(events) > r.cfg.HistoryCap {
		events = events[:r.cfg.HistoryCap]
	}
	if len(events) == 0 {
		return nil, models.ErrNoData
	}

	next, err := r.announcements.Next(ctx, sym)
	if err != nil {
		next = nil
	}

	// events are most recent first
	start := events[len(events)-1].Timestamp.AddDate(0, 0, -r.cfg.PadDays)
	end := events[0].Anchor().AddDate(0, 0, r.cfg.PadDays)
	bars, err := r.prices.History(ctx, sym, start, end)
	if err != nil {
		return nil, err
	}
	return &fetchedRecord{events: events, next: next, bars: bars}, nil
}

// match brackets each event anchor against bars. Anchors keep event order
// (most recent first) so the reaction table shares the events' ordering.
func (r *Refresher) match(events []models.AnnouncementEvent, bars []models.PriceBar) []models.ReactionRow {
	if len(events) == 0 || len(bars) == 0 {
		return nil
	}
	anchors := make([]time.Time, len(events))
	for i, e := range events {
		anchors[i] = e.Anchor()
	}
	rows := MatchReactions(bars, anchors, r.cfg.Location)
	if len(rows) < len(anchors) {
		r.metrics.RecordError("unbracketed")
	}
	return rows
}

// refreshDetails fills in descriptions for symbols that have none yet.
func (r *Refresher) refreshDetails(ctx context.Context, snap models.Snapshot, symbols []string) {
	targets := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		if rec, ok := snap[sym]; ok && rec.Detail == "" {
			targets = append(targets, sym)
		}
	}
	if len(targets) == 0 {
		return
	}
	phase := time.Now()
	results := RunFetch(ctx, r.pool, "detail", targets,
		func(ctx context.Context, sym string) (string, error) {
			return r.details.Detail(ctx, sym)
		})
	for sym, detail := range results {
		if rec, ok := snap[sym]; ok && detail != "" {
			rec.Detail = detail
		}
	}
	r.metrics.RecordPhaseDuration("details", time.Since(phase).Seconds())
}

func (r *Refresher) persist(ctx context.Context, snap models.Snapshot) error {
	if err := r.store.Save(ctx, snap); err != nil {
		r.metrics.RecordError("persist")
		return fmt.Errorf("persist snapshot: %w", err)
	}
	return nil
}

// publish pushes refreshed records to the configured sink, best-effort.
func (r *Refresher) publish(ctx context.Context, snap models.Snapshot, symbols []string) {
	for _, sym := range symbols {
		rec, ok := snap[sym]
		if !ok {
			continue
		}
		if err := r.sink.Publish(ctx, rec); err != nil {
			r.metrics.RecordError("sink")
			r.log.Warn("sink publish failed",
				logger.String("symbol", sym), logger.Error(err))
		}
	}
}
