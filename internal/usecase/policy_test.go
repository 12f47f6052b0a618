package usecase

import (
	"testing"

	"EarningsPull/internal/domain/models"
)

func rosterOf(symbols ...string) []models.Company {
	out := make([]models.Company, len(symbols))
	for i, s := range symbols {
		out[i] = models.Company{Symbol: s, Name: s + " Inc."}
	}
	return out
}

func TestBuildPlan_PurgeDelisted(t *testing.T) {
	now := dayET(2024, 6, 1)
	snap := models.Snapshot{
		"AAA": {Symbol: "AAA", NextEarnings: &models.AnnouncementEvent{Timestamp: now.AddDate(0, 0, 30)}},
		"OLD": {Symbol: "OLD"},
	}

	plan := BuildPlan(snap, rosterOf("AAA"), now, 15)
	if len(plan.Purge) != 1 || plan.Purge[0] != "OLD" {
		t.Fatalf("purge = %v, want [OLD]", plan.Purge)
	}

	delete(snap, "OLD")
	again := BuildPlan(snap, rosterOf("AAA"), now, 15)
	if len(again.Purge) != 0 {
		t.Fatalf("second plan purge = %v, purging must be idempotent", again.Purge)
	}
}

func TestBuildPlan_NewSymbolsNeedEverything(t *testing.T) {
	now := dayET(2024, 6, 1)
	plan := BuildPlan(models.Snapshot{}, rosterOf("BBB", "AAA"), now, 15)
	if len(plan.New) != 2 || plan.New[0] != "AAA" || plan.New[1] != "BBB" {
		t.Fatalf("new = %v, want sorted [AAA BBB]", plan.New)
	}
	if len(plan.NextEarningsDue) != 0 || len(plan.ReactionDue) != 0 {
		t.Errorf("new symbols must not appear in staleness sets: %+v", plan)
	}
}

func TestBuildPlan_NextEarningsStale(t *testing.T) {
	now := dayET(2024, 6, 1)
	snap := models.Snapshot{
		// missing next-earnings
		"AAA": {Symbol: "AAA"},
		// next-earnings 20 days in the past, past the 15-day staleness bound
		"BBB": {Symbol: "BBB", NextEarnings: &models.AnnouncementEvent{Timestamp: now.AddDate(0, 0, -20)}},
		// fresh
		"CCC": {Symbol: "CCC", NextEarnings: &models.AnnouncementEvent{Timestamp: now.AddDate(0, 0, -5)}},
	}
	plan := BuildPlan(snap, rosterOf("AAA", "BBB", "CCC"), now, 15)
	want := []string{"AAA", "BBB"}
	if len(plan.NextEarningsDue) != 2 || plan.NextEarningsDue[0] != want[0] || plan.NextEarningsDue[1] != want[1] {
		t.Fatalf("nextEarningsDue = %v, want %v", plan.NextEarningsDue, want)
	}
}

func TestBuildPlan_ReactionDue(t *testing.T) {
	now := dayET(2024, 6, 1)
	passed := models.AnnouncementEvent{Timestamp: now.AddDate(0, 0, -10), Session: models.SessionBeforeOpen}
	next := &models.AnnouncementEvent{Timestamp: now.AddDate(0, 0, 80)}

	snap := models.Snapshot{
		// latest event passed, no reaction row covering it
		"AAA": {Symbol: "AAA", NextEarnings: next,
			Events: []models.AnnouncementEvent{passed}},
		// latest event passed and already covered
		"BBB": {Symbol: "BBB", NextEarnings: next,
			Events:    []models.AnnouncementEvent{passed},
			Reactions: []models.ReactionRow{{EventDate: passed.Anchor()}}},
		// latest event still in the future
		"CCC": {Symbol: "CCC", NextEarnings: next,
			Events: []models.AnnouncementEvent{{Timestamp: now.AddDate(0, 0, 5)}}},
	}
	plan := BuildPlan(snap, rosterOf("AAA", "BBB", "CCC"), now, 15)
	if len(plan.ReactionDue) != 1 || plan.ReactionDue[0] != "AAA" {
		t.Fatalf("reactionDue = %v, want [AAA]", plan.ReactionDue)
	}
}

func TestBuildPlan_Empty(t *testing.T) {
	now := dayET(2024, 6, 1)
	next := &models.AnnouncementEvent{Timestamp: now.AddDate(0, 0, 40)}
	snap := models.Snapshot{"AAA": {Symbol: "AAA", NextEarnings: next}}
	plan := BuildPlan(snap, rosterOf("AAA"), now, 15)
	if !plan.Empty() {
		t.Fatalf("plan should be empty, got %+v", plan)
	}
}
