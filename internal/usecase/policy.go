package usecase

import (
	"sort"
	"time"

	"EarningsPull/internal/domain/models"
)

// RefreshPlan partitions one pass's work. Sets are sorted symbol slices so
// passes are deterministic and log output is stable.
type RefreshPlan struct {
	// Purge lists cached symbols no longer on the roster.
	Purge []string
	// New lists roster symbols with no cached record; they need everything.
	New []string
	// NextEarningsDue lists cached symbols whose next-earnings date is
	// missing or stale.
	NextEarningsDue []string
	// ReactionDue lists cached symbols whose most recent known event has
	// passed without a matching reaction row.
	ReactionDue []string
}

// Empty reports whether the plan carries no fetch or purge work at all.
func (p *RefreshPlan) Empty() bool {
	return len(p.Purge) == 0 && len(p.New) == 0 &&
		len(p.NextEarningsDue) == 0 && len(p.ReactionDue) == 0
}

// BuildPlan reconciles the cache against the current roster at time now.
// A symbol lands in at most one of New / (NextEarningsDue, ReactionDue):
// new symbols get the full treatment anyway, so the staleness sets only
// consider symbols that already have a record.
func BuildPlan(snap models.Snapshot, roster []models.Company, now time.Time, staleDays int) *RefreshPlan {
	onRoster := make(map[string]bool, len(roster))
	for _, c := range roster {
		onRoster[c.Symbol] = true
	}

	plan := &RefreshPlan{}

	for sym := range snap {
		if !onRoster[sym] {
			plan.Purge = append(plan.Purge, sym)
		}
	}

	staleBefore := now.AddDate(0, 0, -staleDays)
	for _, c := range roster {
		rec, ok := snap[c.Symbol]
		if !ok {
			plan.New = append(plan.New, c.Symbol)
			continue
		}
		if rec.NextEarnings == nil || rec.NextEarnings.Timestamp.Before(staleBefore) {
			plan.NextEarningsDue = append(plan.NextEarningsDue, c.Symbol)
		}
		if reactionDue(rec, now) {
			plan.ReactionDue = append(plan.ReactionDue, c.Symbol)
		}
	}

	sort.Strings(plan.Purge)
	sort.Strings(plan.New)
	sort.Strings(plan.NextEarningsDue)
	sort.Strings(plan.ReactionDue)
	return plan
}

// reactionDue reports whether rec's most recent event has fully passed but
// its reaction table does not yet cover it. Events are most recent first.
func reactionDue(rec *models.CompanyRecord, now time.Time) bool {
	if len(rec.Events) == 0 {
		return false
	}
	latest := rec.Events[0]
	if !latest.Timestamp.AddDate(0, 0, 1).Before(now) {
		return false
	}
	// rows store the anchor's day boundary; any row at or past it means the
	// latest event is already covered
	anchor := latest.Anchor()
	for _, row := range rec.Reactions {
		if !row.EventDate.Before(anchor) {
			return false
		}
	}
	return true
}
