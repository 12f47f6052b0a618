package usecase

import (
	"context"
	"testing"

	"EarningsPull/internal/domain/models"
	"EarningsPull/pkg/logger"
)

func newTestFacade(snap models.Snapshot, ann *fakeAnnouncements, quotes *fakeQuotes, store *memStore) *CompanyInfo {
	if ann == nil {
		ann = &fakeAnnouncements{}
	}
	if quotes == nil {
		quotes = &fakeQuotes{}
	}
	return NewCompanyInfo(snap, ann, quotes, store, logger.Nop())
}

func seededSnapshot() models.Snapshot {
	return models.Snapshot{
		"AAA": {
			Symbol: "AAA",
			Name:   "Alpha",
			Events: []models.AnnouncementEvent{
				{Timestamp: dayET(2024, 4, 10), Session: models.SessionAfterClose},
				{Timestamp: dayET(2024, 1, 10), Session: models.SessionAfterClose},
			},
			NextEarnings: &models.AnnouncementEvent{Timestamp: dayET(2024, 7, 10)},
			Reactions: []models.ReactionRow{
				{EventDate: dayET(2024, 4, 11), PointChange: -5, PercentChange: -2.5},
				{EventDate: dayET(2024, 1, 11), PointChange: 10, PercentChange: 10},
			},
			Average: models.AverageChange{PointAvg: 2.5, PercentAvg: 3.75, Defined: true},
			Detail:  "Alpha makes things.",
		},
	}
}

func TestFacade_LookupsNormalizeSymbol(t *testing.T) {
	f := newTestFacade(seededSnapshot(), nil, nil, &memStore{})

	if _, ok := f.AverageChange(" aaa "); !ok {
		t.Error("lookup with unnormalized symbol failed")
	}
	if _, ok := f.Detail("Aaa"); !ok {
		t.Error("detail lookup with mixed case failed")
	}
}

func TestFacade_AbsentSymbol(t *testing.T) {
	f := newTestFacade(seededSnapshot(), nil, nil, &memStore{})

	if _, ok := f.AverageChange("ZZZ"); ok {
		t.Error("AverageChange reported data for an unknown symbol")
	}
	if _, ok := f.ReactionTable("ZZZ"); ok {
		t.Error("ReactionTable reported data for an unknown symbol")
	}
	if _, ok := f.EventDates("ZZZ"); ok {
		t.Error("EventDates reported data for an unknown symbol")
	}
	if _, ok := f.Detail("ZZZ"); ok {
		t.Error("Detail reported data for an unknown symbol")
	}
	if _, ok := f.DateRange("ZZZ"); ok {
		t.Error("DateRange reported data for an unknown symbol")
	}
}

func TestFacade_DateRange(t *testing.T) {
	f := newTestFacade(seededSnapshot(), nil, nil, &memStore{})
	dr, ok := f.DateRange("AAA")
	if !ok {
		t.Fatal("DateRange absent for cached symbol")
	}
	if !dr.Start.Equal(dayET(2024, 1, 11)) || !dr.End.Equal(dayET(2024, 4, 11)) {
		t.Errorf("range = %+v, want [2024-01-11, 2024-04-11]", dr)
	}
}

func TestFacade_ReadsAreCopies(t *testing.T) {
	snap := seededSnapshot()
	f := newTestFacade(snap, nil, nil, &memStore{})

	rows, _ := f.ReactionTable("AAA")
	rows[0].PointChange = 999

	again, _ := f.ReactionTable("AAA")
	if again[0].PointChange == 999 {
		t.Error("mutating a returned table leaked into the cache")
	}
}

func TestFacade_NextEarningsCached(t *testing.T) {
	f := newTestFacade(seededSnapshot(), nil, nil, &memStore{})
	got := f.NextEarnings(context.Background(), "AAA")
	if !got.Equal(dayET(2024, 7, 10)) {
		t.Errorf("NextEarnings = %v, want cached 2024-07-10", got)
	}
}

func TestFacade_NextEarningsOnDemandFetch(t *testing.T) {
	next := &models.AnnouncementEvent{Timestamp: dayET(2024, 8, 1), Session: models.SessionBeforeOpen}
	store := &memStore{}
	f := newTestFacade(make(models.Snapshot),
		&fakeAnnouncements{next: map[string]*models.AnnouncementEvent{"NEW": next}},
		nil, store)

	got := f.NextEarnings(context.Background(), "new")
	if !got.Equal(next.Timestamp) {
		t.Fatalf("NextEarnings = %v, want fetched %v", got, next.Timestamp)
	}
	if store.saves != 1 {
		t.Errorf("on-demand fetch persisted %d times, want 1", store.saves)
	}
	if store.saved["NEW"] == nil || store.saved["NEW"].NextEarnings == nil {
		t.Error("fetched next-earnings not persisted")
	}
}

func TestFacade_NextEarningsSentinelOnFailure(t *testing.T) {
	store := &memStore{}
	f := newTestFacade(make(models.Snapshot),
		&fakeAnnouncements{nextErr: errBoom}, nil, store)

	got := f.NextEarnings(context.Background(), "NEW")
	if !got.Equal(EpochSentinel) {
		t.Fatalf("NextEarnings = %v, want the epoch sentinel", got)
	}
	if store.saves != 0 {
		t.Error("failed fetch must not persist")
	}
}

func TestFacade_LiveQuote(t *testing.T) {
	f := newTestFacade(seededSnapshot(), nil,
		&fakeQuotes{quotes: map[string]string{"AAA": "184.20"}}, &memStore{})

	quotes := f.LiveQuote(context.Background(), []string{"AAA", "MISSING"})
	if quotes["AAA"] != "184.20" {
		t.Errorf("quotes[AAA] = %q", quotes["AAA"])
	}
	if v, ok := quotes["MISSING"]; !ok || v != "" {
		t.Errorf("failed symbol must map to empty string, got %q ok=%v", v, ok)
	}
}

func TestFacade_LiveQuoteSourceError(t *testing.T) {
	f := newTestFacade(seededSnapshot(), nil, &fakeQuotes{err: errBoom}, &memStore{})
	quotes := f.LiveQuote(context.Background(), []string{"AAA", "BBB"})
	if len(quotes) != 2 || quotes["AAA"] != "" || quotes["BBB"] != "" {
		t.Errorf("source failure must yield empty strings per symbol, got %v", quotes)
	}
}

func TestFacade_Symbols(t *testing.T) {
	snap := seededSnapshot()
	snap["BBB"] = &models.CompanyRecord{Symbol: "BBB"}
	f := newTestFacade(snap, nil, nil, &memStore{})

	syms := f.Symbols()
	if len(syms) != 2 || syms[0] != "AAA" || syms[1] != "BBB" {
		t.Errorf("Symbols() = %v, want sorted [AAA BBB]", syms)
	}
}
