package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"EarningsPull/internal/domain/models"
	"EarningsPull/internal/domain/repository"
	"EarningsPull/pkg/logger"
)

// EpochSentinel is returned by NextEarnings when no date is known and the
// on-demand fetch fails too. Callers must treat it as "needs refresh", never
// as a real date. Kept for parity with the data files older deployments wrote.
var EpochSentinel = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

// CompanyInfo is the read surface over the cache. Reads return deep copies;
// a caller can never alias cache-owned slices. The one mutating path is the
// on-demand next-earnings fetch, serialized by mu together with the
// Refresher via Locker.
type CompanyInfo struct {
	mu            sync.RWMutex
	snap          models.Snapshot
	announcements repository.AnnouncementSource
	quotes        repository.QuoteSource
	store         repository.SnapshotStore
	log           *logger.Logger
}

func NewCompanyInfo(
	snap models.Snapshot,
	announcements repository.AnnouncementSource,
	quotes repository.QuoteSource,
	store repository.SnapshotStore,
	log *logger.Logger,
) *CompanyInfo {
	if snap == nil {
		snap = make(models.Snapshot)
	}
	return &CompanyInfo{
		snap:          snap,
		announcements: announcements,
		quotes:        quotes,
		store:         store,
		log:           log,
	}
}

// Snapshot returns the live cache map for the Refresher to mutate. The
// Refresher must hold the write lock via Lock for the whole pass.
func (s *CompanyInfo) Snapshot() models.Snapshot { return s.snap }

// Lock takes the write lock for the duration of a refresh pass.
func (s *CompanyInfo) Lock() func() {
	s.mu.Lock()
	return s.mu.Unlock
}

// Symbols returns every cached symbol, sorted.
func (s *CompanyInfo) Symbols() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.snap))
	for sym := range s.snap {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// Record returns a deep copy of one company's record.
func (s *CompanyInfo) Record(symbol string) (*models.CompanyRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.snap[models.NormalizeSymbol(symbol)]
	if !ok {
		return nil, false
	}
	return rec.Clone(), true
}

// AverageChange returns the cached average reaction for symbol.
func (s *CompanyInfo) AverageChange(symbol string) (models.AverageChange, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.snap[models.NormalizeSymbol(symbol)]
	if !ok {
		return models.AverageChange{}, false
	}
	return rec.Average, true
}

// ReactionTable returns the cached reaction rows, most recent first.
func (s *CompanyInfo) ReactionTable(symbol string) ([]models.ReactionRow, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.snap[models.NormalizeSymbol(symbol)]
	if !ok {
		return nil, false
	}
	return append([]models.ReactionRow(nil), rec.Reactions...), true
}

// EventDates returns the historical announcement timestamps, most recent first.
func (s *CompanyInfo) EventDates(symbol string) ([]time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.snap[models.NormalizeSymbol(symbol)]
	if !ok {
		return nil, false
	}
	out := make([]time.Time, len(rec.Events))
	for i, e := range rec.Events {
		out[i] = e.Timestamp
	}
	return out, true
}

// NextEarnings returns the next scheduled announcement for symbol. When the
// cache has none it fetches synchronously, persisting any result. A fetch
// that also comes up empty yields EpochSentinel.
func (s *CompanyInfo) NextEarnings(ctx context.Context, symbol string) time.Time {
	symbol = models.NormalizeSymbol(symbol)

	s.mu.RLock()
	rec, ok := s.snap[symbol]
	if ok && rec.NextEarnings != nil {
		ts := rec.NextEarnings.Timestamp
		s.mu.RUnlock()
		return ts
	}
	s.mu.RUnlock()

	next, err := s.announcements.Next(ctx, symbol)
	if err != nil || next == nil {
		if err != nil {
			s.log.Warn("on-demand next-earnings fetch failed",
				logger.String("symbol", symbol), logger.Error(err))
		}
		return EpochSentinel
	}

	s.mu.Lock()
	rec, ok = s.snap[symbol]
	if !ok {
		rec = &models.CompanyRecord{Symbol: symbol}
		s.snap[symbol] = rec
	}
	rec.NextEarnings = next
	rec.UpdatedAt = time.Now()
	if err := s.store.Save(ctx, s.snap); err != nil {
		s.log.Warn("persist after on-demand fetch failed",
			logger.String("symbol", symbol), logger.Error(err))
	}
	s.mu.Unlock()

	return next.Timestamp
}

// Detail returns the cached company description.
func (s *CompanyInfo) Detail(symbol string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.snap[models.NormalizeSymbol(symbol)]
	if !ok {
		return "", false
	}
	return rec.Detail, true
}

// DateRange returns the min and max event date of the reaction table.
func (s *CompanyInfo) DateRange(symbol string) (models.DateRange, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.snap[models.NormalizeSymbol(symbol)]
	if !ok || len(rec.Reactions) == 0 {
		return models.DateRange{}, false
	}
	dr := models.DateRange{
		Start: rec.Reactions[0].EventDate,
		End:   rec.Reactions[0].EventDate,
	}
	for _, row := range rec.Reactions[1:] {
		if row.EventDate.Before(dr.Start) {
			dr.Start = row.EventDate
		}
		if row.EventDate.After(dr.End) {
			dr.End = row.EventDate
		}
	}
	return dr, true
}

// LiveQuote returns a best-effort price string per symbol; "" per failure.
func (s *CompanyInfo) LiveQuote(ctx context.Context, symbols []string) map[string]string {
	quotes, err := s.quotes.Quotes(ctx, symbols)
	if err != nil || quotes == nil {
		quotes = make(map[string]string, len(symbols))
	}
	for _, sym := range symbols {
		sym = models.NormalizeSymbol(sym)
		if _, ok := quotes[sym]; !ok {
			quotes[sym] = ""
		}
	}
	return quotes
}
