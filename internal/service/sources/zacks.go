package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"EarningsPull/internal/domain/models"
	"EarningsPull/internal/service/ratelimit"
	xhttp "EarningsPull/pkg/http"
	"EarningsPull/pkg/util"

	"github.com/PuerkitoBio/goquery"
)

const announcementsTableMarker = "earnings_announcements_earnings_table"

// ZacksAnnouncements scrapes historical and upcoming earnings dates.
// Historical dates live in a script tag on the announcements page; the next
// report date sits in a key/value table on the estimates page. Both calls are
// best-effort: any parse or network failure surfaces as a FetchError and the
// symbol is skipped for this pass.
type ZacksAnnouncements struct {
	client           *xhttp.Client
	limiter          *ratelimit.Limiter
	announcementsURL string
	estimatesURL     string
	userAgent        string
	rps              float64
	loc              *time.Location
}

// NewZacksAnnouncements creates the announcement source.
func NewZacksAnnouncements(client *xhttp.Client, limiter *ratelimit.Limiter, announcementsURL, estimatesURL, userAgent string, rps float64, loc *time.Location) *ZacksAnnouncements {
	return &ZacksAnnouncements{
		client:           client,
		limiter:          limiter,
		announcementsURL: announcementsURL,
		estimatesURL:     estimatesURL,
		userAgent:        userAgent,
		rps:              rps,
		loc:              loc,
	}
}

func (z *ZacksAnnouncements) Historical(ctx context.Context, symbol string) ([]models.AnnouncementEvent, error) {
	symbol = models.NormalizeSymbol(symbol)
	if err := z.limiter.Wait(ctx, "zacks", z.rps, z.rps); err != nil {
		return nil, &models.FetchError{Symbol: symbol, Op: "announcements", Err: err}
	}

	body, err := z.client.GetBody(ctx, &xhttp.RequestOptions{
		URL:     fmt.Sprintf(z.announcementsURL, symbol),
		Headers: z.headers(),
	})
	if err != nil {
		return nil, &models.FetchError{Symbol: symbol, Op: "announcements", Err: err}
	}

	events, err := ParseAnnouncements(body, z.loc)
	if err != nil {
		return nil, &models.FetchError{Symbol: symbol, Op: "announcements", Err: err}
	}
	if len(events) == 0 {
		return nil, models.ErrNoData
	}
	return events, nil
}

func (z *ZacksAnnouncements) Next(ctx context.Context, symbol string) (*models.AnnouncementEvent, error) {
	symbol = models.NormalizeSymbol(symbol)
	if err := z.limiter.Wait(ctx, "zacks", z.rps, z.rps); err != nil {
		return nil, &models.FetchError{Symbol: symbol, Op: "next-earnings", Err: err}
	}

	body, err := z.client.GetBody(ctx, &xhttp.RequestOptions{
		URL:     fmt.Sprintf(z.estimatesURL, symbol),
		Headers: z.headers(),
	})
	if err != nil {
		return nil, &models.FetchError{Symbol: symbol, Op: "next-earnings", Err: err}
	}

	event, err := ParseNextReportDate(body, z.loc)
	if err != nil {
		return nil, &models.FetchError{Symbol: symbol, Op: "next-earnings", Err: err}
	}
	if event == nil {
		return nil, models.ErrNoData
	}
	return event, nil
}

func (z *ZacksAnnouncements) headers() map[string]string {
	return map[string]string{
		"User-Agent":       z.userAgent,
		"X-Requested-With": "XMLHttpRequest",
	}
}

// announcement rows are heterogeneous arrays; date in column 0, session in column 6.
type announcementsPayload struct {
	Table [][]json.RawMessage `json:"earnings_announcements_earnings_table"`
}

// ParseAnnouncements extracts announcement events from the page HTML, most
// recent first. Timestamps are day-resolution in exchange time.
func ParseAnnouncements(html []byte, loc *time.Location) ([]models.AnnouncementEvent, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var js string
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.Contains(s.Text(), announcementsTableMarker) {
			js = s.Text()
			return false
		}
		return true
	})
	if js == "" {
		return nil, fmt.Errorf("announcements script not found")
	}

	start := strings.Index(js, "{")
	end := strings.LastIndex(js, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("announcements script has no object literal")
	}

	var payload announcementsPayload
	if err := json.Unmarshal([]byte(js[start:end+1]), &payload); err != nil {
		return nil, fmt.Errorf("decode announcements table: %w", err)
	}

	events := make([]models.AnnouncementEvent, 0, len(payload.Table))
	for _, row := range payload.Table {
		if len(row) == 0 {
			continue
		}
		var dateStr string
		if err := json.Unmarshal(row[0], &dateStr); err != nil {
			continue
		}
		ts, ok := util.ParseDateIn(dateStr, loc)
		if !ok {
			continue
		}
		session := models.SessionBeforeOpen
		if len(row) > 6 {
			var sessionStr string
			if err := json.Unmarshal(row[6], &sessionStr); err == nil &&
				strings.EqualFold(strings.TrimSpace(sessionStr), "After Close") {
				session = models.SessionAfterClose
			}
		}
		events = append(events, models.AnnouncementEvent{Timestamp: ts, Session: session})
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].Timestamp.After(events[j].Timestamp)
	})
	return events, nil
}

// ParseNextReportDate extracts the next scheduled announcement from the
// estimates page HTML. Returns nil when the table carries no usable date.
func ParseNextReportDate(html []byte, loc *time.Location) (*models.AnnouncementEvent, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var raw string
	doc.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cells := row.Find("th, td")
		if cells.Length() < 2 {
			return true
		}
		if strings.Contains(cells.Eq(0).Text(), "Next Report Date") {
			raw = strings.TrimSpace(cells.Eq(1).Text())
			return false
		}
		return true
	})
	if raw == "" {
		return nil, nil
	}

	session := models.SessionAfterClose
	if strings.Contains(raw, "BMO") {
		session = models.SessionBeforeOpen
	}
	// strip footnote markers like "*AMC" appended to the date
	raw = strings.NewReplacer("*", "", "AMC", "", "BMO", "").Replace(raw)

	ts, ok := util.ParseDateIn(raw, loc)
	if !ok {
		return nil, fmt.Errorf("unparseable next report date %q", raw)
	}
	return &models.AnnouncementEvent{Timestamp: ts, Session: session}, nil
}
