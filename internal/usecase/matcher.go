package usecase

import (
	"sort"
	"time"

	"EarningsPull/internal/domain/models"
	"EarningsPull/pkg/util"
)

// MatchReactions brackets each anchor timestamp with the nearest trading day
// on each side and computes the close-to-close change. Bars must be ordered by
// date ascending. Anchors the bars cannot bracket are dropped; callers compare
// output length against input length when they care.
//
// The matcher is session-agnostic: after-close shifting happens on the event
// before its anchor reaches this function.
func MatchReactions(bars []models.PriceBar, anchors []time.Time, loc *time.Location) []models.ReactionRow {
	if len(bars) == 0 || len(anchors) == 0 {
		return nil
	}

	rows := make([]models.ReactionRow, 0, len(anchors))
	for _, anchor := range anchors {
		boundary := util.DayFloor(anchor, loc)

		// first bar at or after the anchor's day
		post := sort.Search(len(bars), func(i int) bool {
			return !bars[i].Date.Before(boundary)
		})
		if post == 0 || post == len(bars) {
			// unbracketed on one side; excluded, never an error
			continue
		}
		pre := post - 1

		row := models.ReactionRow{
			EventDate: boundary,
			Pre:       bars[pre],
			Post:      bars[post],
		}
		if bars[pre].Close == 0 {
			row.Undefined = true
		} else {
			row.PointChange = bars[post].Close - bars[pre].Close
			row.PercentChange = row.PointChange * 100 / bars[pre].Close
		}
		rows = append(rows, row)
	}
	return rows
}

// ComputeAverage averages the point and percent changes over the most recent
// window rows. Rows must be ordered by event recency descending. Undefined
// rows are skipped; an empty contribution yields Defined=false, never zero.
func ComputeAverage(rows []models.ReactionRow, window int) models.AverageChange {
	if window <= 0 || len(rows) == 0 {
		return models.AverageChange{}
	}
	if window > len(rows) {
		window = len(rows)
	}

	var pointSum, percentSum float64
	var n int
	for _, row := range rows[:window] {
		if row.Undefined {
			continue
		}
		pointSum += row.PointChange
		percentSum += row.PercentChange
		n++
	}
	if n == 0 {
		return models.AverageChange{}
	}
	return models.AverageChange{
		PointAvg:   pointSum / float64(n),
		PercentAvg: percentSum / float64(n),
		Defined:    true,
	}
}
