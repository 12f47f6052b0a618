package usecase

import (
	"context"
	"testing"
	"time"

	"EarningsPull/internal/domain/models"
	"EarningsPull/pkg/logger"
)

func newTestRefresher(roster *fakeRoster, ann *fakeAnnouncements, prices *fakePrices, store *memStore, sink *nopSink) *Refresher {
	return NewRefresher(
		roster, ann, prices,
		&fakeDetails{text: "a company"},
		store, sink,
		newTestPool(8, 5*time.Second),
		nopMetrics{}, logger.Nop(),
		RefresherConfig{
			StaleDays:     15,
			HistoryCap:    10,
			AverageWindow: 10,
			PadDays:       10,
			Location:      locET,
		},
	)
}

// End to end: one company, one after-close announcement on 1/10, daily bars
// around it closing 100 on 1/10 and 110 on 1/11. The reaction anchors on the
// next session and brackets [1/10, 1/11] for a 10 point, 10 percent move.
func TestRefresh_EndToEnd(t *testing.T) {
	event := models.AnnouncementEvent{
		Timestamp: time.Date(2024, 1, 10, 16, 5, 0, 0, locET),
		Session:   models.SessionAfterClose,
	}
	next := &models.AnnouncementEvent{Timestamp: dayET(2024, 4, 10), Session: models.SessionAfterClose}

	var bars []models.PriceBar
	for d := dayET(2023, 12, 31); !d.After(dayET(2024, 1, 20)); d = d.AddDate(0, 0, 1) {
		close := 100.0
		if !d.Before(dayET(2024, 1, 11)) {
			close = 110.0
		}
		bars = append(bars, bar(d, close))
	}

	store := &memStore{}
	sink := &nopSink{}
	r := newTestRefresher(
		&fakeRoster{companies: rosterOf("AAA")},
		&fakeAnnouncements{
			historical: map[string][]models.AnnouncementEvent{"AAA": {event}},
			next:       map[string]*models.AnnouncementEvent{"AAA": next},
		},
		&fakePrices{bars: bars},
		store, sink,
	)

	snap := make(models.Snapshot)
	if err := r.Refresh(context.Background(), snap); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	rec, ok := snap["AAA"]
	if !ok {
		t.Fatal("AAA missing from cache after refresh")
	}
	if rec.Name != "AAA Inc." {
		t.Errorf("name = %q", rec.Name)
	}
	if rec.NextEarnings == nil || !rec.NextEarnings.Timestamp.Equal(next.Timestamp) {
		t.Errorf("next earnings = %+v, want %v", rec.NextEarnings, next.Timestamp)
	}
	if rec.Detail != "a company" {
		t.Errorf("detail = %q", rec.Detail)
	}
	if len(rec.Reactions) != 1 {
		t.Fatalf("got %d reaction rows, want 1", len(rec.Reactions))
	}
	row := rec.Reactions[0]
	if !row.EventDate.Equal(dayET(2024, 1, 11)) {
		t.Errorf("event date = %v, want 2024-01-11 (after-close shifts a day)", row.EventDate)
	}
	if row.Pre.Close != 100 || row.Post.Close != 110 {
		t.Errorf("bracket closes = [%v, %v], want [100, 110]", row.Pre.Close, row.Post.Close)
	}
	if row.PointChange != 10 {
		t.Errorf("point change = %v, want 10", row.PointChange)
	}
	if row.PercentChange != 10.0 {
		t.Errorf("percent change = %v, want 10.0", row.PercentChange)
	}
	if !rec.Average.Defined || rec.Average.PointAvg != 10 || rec.Average.PercentAvg != 10 {
		t.Errorf("average = %+v, want defined 10/10", rec.Average)
	}

	if store.saved == nil || store.saved["AAA"] == nil {
		t.Error("refresh did not persist the snapshot")
	}
	if len(sink.published) != 1 || sink.published[0] != "AAA" {
		t.Errorf("sink saw %v, want [AAA]", sink.published)
	}
}

func TestRefresh_RosterFailureAborts(t *testing.T) {
	store := &memStore{}
	r := newTestRefresher(
		&fakeRoster{err: &models.ConfigError{Source: "roster", Err: errBoom}},
		&fakeAnnouncements{}, &fakePrices{}, store, &nopSink{},
	)
	if err := r.Refresh(context.Background(), make(models.Snapshot)); err == nil {
		t.Fatal("roster failure must abort the pass")
	}
	if store.saves != 0 {
		t.Errorf("pass persisted %d times despite aborting", store.saves)
	}
}

func TestRefresh_PurgesDelisted(t *testing.T) {
	store := &memStore{}
	r := newTestRefresher(
		&fakeRoster{companies: rosterOf("AAA")},
		&fakeAnnouncements{}, &fakePrices{}, store, &nopSink{},
	)

	snap := models.Snapshot{
		"AAA": {Symbol: "AAA", NextEarnings: &models.AnnouncementEvent{Timestamp: dayET(2099, 1, 1)}},
		"OLD": {Symbol: "OLD"},
	}
	if err := r.Refresh(context.Background(), snap); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if _, ok := snap["OLD"]; ok {
		t.Error("delisted symbol still cached after refresh")
	}
	if _, ok := store.saved["OLD"]; ok {
		t.Error("delisted symbol still in the persisted snapshot")
	}
}

func TestRefresh_FetchFailureLeavesSymbolForLater(t *testing.T) {
	store := &memStore{}
	r := newTestRefresher(
		&fakeRoster{companies: rosterOf("AAA", "BBB")},
		&fakeAnnouncements{
			historical: map[string][]models.AnnouncementEvent{
				"AAA": {{Timestamp: dayET(2024, 1, 10), Session: models.SessionBeforeOpen}},
				// BBB has no history; its fetch yields no data
			},
		},
		&fakePrices{bars: []models.PriceBar{
			bar(dayET(2024, 1, 9), 100),
			bar(dayET(2024, 1, 10), 105),
		}},
		store, &nopSink{},
	)

	snap := make(models.Snapshot)
	if err := r.Refresh(context.Background(), snap); err != nil {
		t.Fatalf("one symbol's failure must not abort the pass: %v", err)
	}
	if _, ok := snap["AAA"]; !ok {
		t.Error("healthy symbol missing from cache")
	}
	if _, ok := snap["BBB"]; ok {
		t.Error("failed symbol should stay absent until a later pass succeeds")
	}
}

func TestRefresh_HistoryCapApplied(t *testing.T) {
	events := make([]models.AnnouncementEvent, 0, 14)
	var bars []models.PriceBar
	for q := 0; q < 14; q++ {
		ts := dayET(2024, 6, 1).AddDate(0, -3*q, 0)
		events = append(events, models.AnnouncementEvent{Timestamp: ts, Session: models.SessionBeforeOpen})
	}
	for d := dayET(2020, 1, 1); !d.After(dayET(2024, 7, 1)); d = d.AddDate(0, 0, 1) {
		bars = append(bars, bar(d, 50))
	}

	store := &memStore{}
	r := newTestRefresher(
		&fakeRoster{companies: rosterOf("AAA")},
		&fakeAnnouncements{historical: map[string][]models.AnnouncementEvent{"AAA": events}},
		&fakePrices{bars: bars},
		store, &nopSink{},
	)

	snap := make(models.Snapshot)
	if err := r.Refresh(context.Background(), snap); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if got := len(snap["AAA"].Events); got != 10 {
		t.Errorf("cached %d events, want the 10 most recent", got)
	}
}
