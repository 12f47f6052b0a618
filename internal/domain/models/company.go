package models

import (
	"strings"
	"time"
)

// Session marks whether an announcement lands before the open or after the close.
type Session string

const (
	SessionBeforeOpen Session = "before_open"
	SessionAfterClose Session = "after_close"
)

// Company is one roster entry. Immutable within a refresh pass.
type Company struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// NormalizeSymbol upper-cases and trims a symbol for map lookups.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// AnnouncementEvent is one earnings announcement in exchange time.
type AnnouncementEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Session   Session   `json:"session"`
}

// Anchor returns the timestamp used for market-reaction matching. After-close
// announcements anchor on the next calendar day since the reaction is only
// observable from the next session.
func (e AnnouncementEvent) Anchor() time.Time {
	if e.Session == SessionAfterClose {
		return e.Timestamp.AddDate(0, 0, 1)
	}
	return e.Timestamp
}

// PriceBar is one daily OHLCV bar. Non-trading days are absent, not zero-filled.
type PriceBar struct {
	Date       time.Time `json:"date"`
	Open       float64   `json:"open"`
	High       float64   `json:"high"`
	Low        float64   `json:"low"`
	Close      float64   `json:"close"`
	Volume     float64   `json:"volume"`
	Dividends  float64   `json:"dividends"`
	SplitRatio float64   `json:"split_ratio"`
}

// ReactionRow brackets one announcement with the nearest trading day on each
// side and the close-to-close change between them.
type ReactionRow struct {
	EventDate     time.Time `json:"event_date"`
	Pre           PriceBar  `json:"pre"`
	Post          PriceBar  `json:"post"`
	PointChange   float64   `json:"point_change"`
	PercentChange float64   `json:"percent_change"`
	// Undefined flags a division by a zero pre-close; changes are not meaningful.
	Undefined bool `json:"undefined,omitempty"`
}

// AverageChange is the mean change over the most recent reaction rows.
// Defined is false when no rows contributed; the zero values then carry no meaning.
type AverageChange struct {
	PointAvg   float64 `json:"point_avg"`
	PercentAvg float64 `json:"percent_avg"`
	Defined    bool    `json:"defined"`
}

// DateRange is the min/max event date of a reaction table.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// CompanyRecord is the cached unit for one symbol.
type CompanyRecord struct {
	Symbol       string              `json:"symbol"`
	Name         string              `json:"name,omitempty"`
	Events       []AnnouncementEvent `json:"events"`
	NextEarnings *AnnouncementEvent  `json:"next_earnings,omitempty"`
	Reactions    []ReactionRow       `json:"reactions"`
	Average      AverageChange       `json:"average"`
	Detail       string              `json:"detail"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// Clone returns a deep copy so facade readers never alias cache-owned slices.
func (r *CompanyRecord) Clone() *CompanyRecord {
	if r == nil {
		return nil
	}
	cp := *r
	cp.Events = append([]AnnouncementEvent(nil), r.Events...)
	cp.Reactions = append([]ReactionRow(nil), r.Reactions...)
	if r.NextEarnings != nil {
		ne := *r.NextEarnings
		cp.NextEarnings = &ne
	}
	return &cp
}

// Snapshot is the whole persisted cache, keyed by normalized symbol.
type Snapshot map[string]*CompanyRecord
