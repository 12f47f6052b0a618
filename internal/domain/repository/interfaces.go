package repository

import (
	"context"
	"time"

	"EarningsPull/internal/domain/models"
)

// RosterProvider supplies the current index constituents, sorted by symbol.
// An unrecognized upstream structure is a *models.ConfigError and aborts the pass.
type RosterProvider interface {
	Companies(ctx context.Context) ([]models.Company, error)
}

// AnnouncementSource returns historical and upcoming earnings announcements.
// Both calls are best-effort: parse and network failures surface as
// *models.FetchError, an empty upstream result as models.ErrNoData.
type AnnouncementSource interface {
	Historical(ctx context.Context, symbol string) ([]models.AnnouncementEvent, error)
	Next(ctx context.Context, symbol string) (*models.AnnouncementEvent, error)
}

// PriceSource returns daily bars for [start, end) in exchange time.
// Adapter-specific symbol normalization is invisible to callers.
type PriceSource interface {
	History(ctx context.Context, symbol string, start, end time.Time) ([]models.PriceBar, error)
}

// DetailSource returns a short company description, empty on failure.
type DetailSource interface {
	Detail(ctx context.Context, symbol string) (string, error)
}

// QuoteSource returns a best-effort last price per symbol. Failed symbols map
// to an empty string, never a missing key.
type QuoteSource interface {
	Quotes(ctx context.Context, symbols []string) (map[string]string, error)
}

// SnapshotStore persists the whole cache as one blob. Load at startup,
// Save after each mutating phase; wholesale overwrite, no diffing.
type SnapshotStore interface {
	Load(ctx context.Context) (models.Snapshot, error)
	Save(ctx context.Context, snap models.Snapshot) error
	Close() error
}

// ReactionSink receives refreshed records after a pass for downstream
// consumers. Implementations: kafka publisher, clickhouse store, no-op.
type ReactionSink interface {
	Publish(ctx context.Context, rec *models.CompanyRecord) error
	Close() error
}

// Metrics records operational visibility for refresh passes.
type Metrics interface {
	RecordFetch(op, outcome string)
	RecordPhaseDuration(phase string, seconds float64)
	RecordError(kind string)
	SetInFlight(n int)
	SetLastRefresh(t time.Time)
}
