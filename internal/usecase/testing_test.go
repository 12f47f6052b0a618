package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"EarningsPull/internal/domain/models"
)

var errBoom = errors.New("boom")

// fakeRoster returns a fixed company list.
type fakeRoster struct {
	companies []models.Company
	err       error
}

func (f *fakeRoster) Companies(context.Context) ([]models.Company, error) {
	return f.companies, f.err
}

// fakeAnnouncements serves canned events per symbol.
type fakeAnnouncements struct {
	historical map[string][]models.AnnouncementEvent
	next       map[string]*models.AnnouncementEvent
	nextErr    error
}

func (f *fakeAnnouncements) Historical(_ context.Context, symbol string) ([]models.AnnouncementEvent, error) {
	events, ok := f.historical[symbol]
	if !ok || len(events) == 0 {
		return nil, models.ErrNoData
	}
	return events, nil
}

func (f *fakeAnnouncements) Next(_ context.Context, symbol string) (*models.AnnouncementEvent, error) {
	if f.nextErr != nil {
		return nil, f.nextErr
	}
	return f.next[symbol], nil
}

// fakePrices serves the same bars for every symbol.
type fakePrices struct {
	bars []models.PriceBar
	err  error
}

func (f *fakePrices) History(context.Context, string, time.Time, time.Time) ([]models.PriceBar, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.bars) == 0 {
		return nil, models.ErrNoData
	}
	return f.bars, nil
}

type fakeDetails struct{ text string }

func (f *fakeDetails) Detail(context.Context, string) (string, error) { return f.text, nil }

type fakeQuotes struct {
	quotes map[string]string
	err    error
}

func (f *fakeQuotes) Quotes(_ context.Context, symbols []string) (map[string]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]string, len(symbols))
	for _, s := range symbols {
		out[s] = f.quotes[s]
	}
	return out, nil
}

// memStore keeps the last saved snapshot in memory.
type memStore struct {
	mu    sync.Mutex
	saved models.Snapshot
	saves int
}

func (s *memStore) Load(context.Context) (models.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saved == nil {
		return make(models.Snapshot), nil
	}
	return s.saved, nil
}

func (s *memStore) Save(_ context.Context, snap models.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	s.saved = make(models.Snapshot, len(snap))
	for k, v := range snap {
		s.saved[k] = v.Clone()
	}
	return nil
}

func (s *memStore) Close() error { return nil }

type nopSink struct{ published []string }

func (s *nopSink) Publish(_ context.Context, rec *models.CompanyRecord) error {
	s.published = append(s.published, rec.Symbol)
	return nil
}

func (s *nopSink) Close() error { return nil }

type nopMetrics struct{}

func (nopMetrics) RecordFetch(string, string)          {}
func (nopMetrics) RecordPhaseDuration(string, float64) {}
func (nopMetrics) RecordError(string)                  {}
func (nopMetrics) SetInFlight(int)                     {}
func (nopMetrics) SetLastRefresh(time.Time)            {}

func dayET(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, locET)
}

var locET = func() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		panic(err)
	}
	return loc
}()

func bar(date time.Time, close float64) models.PriceBar {
	return models.PriceBar{Date: date, Open: close, High: close, Low: close, Close: close, Volume: 1000}
}
