package sources

import (
	"testing"
	"time"

	"EarningsPull/internal/domain/models"
)

var nyc, _ = time.LoadLocation("America/New_York")

func TestParseRosterTable(t *testing.T) {
	html := []byte(`<html><body>
<table class="wikitable sortable">
<tr><th>Symbol</th><th>Security</th><th>GICS Sector</th></tr>
<tr><td><a href="#">MMM</a></td><td>3M</td><td>Industrials</td></tr>
<tr><td><a href="#">aapl </a></td><td>Apple Inc.</td><td>Information Technology</td></tr>
<tr><td>BRK.B</td><td>Berkshire Hathaway</td><td>Financials</td></tr>
</table>
</body></html>`)

	companies, err := ParseRosterTable(html)
	if err != nil {
		t.Fatalf("ParseRosterTable() error = %v", err)
	}
	if len(companies) != 3 {
		t.Fatalf("got %d companies, want 3", len(companies))
	}
	want := []models.Company{
		{Symbol: "AAPL", Name: "Apple Inc."},
		{Symbol: "BRK.B", Name: "Berkshire Hathaway"},
		{Symbol: "MMM", Name: "3M"},
	}
	for i, c := range companies {
		if c != want[i] {
			t.Errorf("companies[%d] = %+v, want %+v", i, c, want[i])
		}
	}
}

func TestParseRosterTable_WrongHeader(t *testing.T) {
	html := []byte(`<table class="wikitable">
<tr><th>Ticker</th><th>Security</th></tr>
<tr><td>MMM</td><td>3M</td></tr>
</table>`)
	if _, err := ParseRosterTable(html); err == nil {
		t.Fatal("expected error for unexpected header layout")
	}
}

func TestParseRosterTable_NoTable(t *testing.T) {
	if _, err := ParseRosterTable([]byte(`<html><body><p>maintenance</p></body></html>`)); err == nil {
		t.Fatal("expected error when constituents table is missing")
	}
}

func TestParseAnnouncements(t *testing.T) {
	html := []byte(`<html><head><script type="text/javascript">
document.obj_data = {
  "earnings_announcements_earnings_table" : [
    [ "1/25/2024", "12/2023", "$2.10", "$2.18", "+0.08", "+3.81%", "After Close" ],
    [ "10/26/2023", "9/2023", "$1.39", "$1.46", "+0.07", "+5.04%", "Before Open" ],
    [ "7/27/2023", "6/2023", "$1.19", "$1.26", "+0.07", "--", "After Close" ]
  ] };
</script></head><body></body></html>`)

	events, err := ParseAnnouncements(html, nyc)
	if err != nil {
		t.Fatalf("ParseAnnouncements() error = %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	if !events[0].Timestamp.After(events[1].Timestamp) || !events[1].Timestamp.After(events[2].Timestamp) {
		t.Errorf("events not ordered most recent first: %v", events)
	}
	if events[0].Session != models.SessionAfterClose {
		t.Errorf("events[0].Session = %q, want after close", events[0].Session)
	}
	if events[1].Session != models.SessionBeforeOpen {
		t.Errorf("events[1].Session = %q, want before open", events[1].Session)
	}
	wantDate := time.Date(2024, 1, 25, 0, 0, 0, 0, nyc)
	if !events[0].Timestamp.Equal(wantDate) {
		t.Errorf("events[0].Timestamp = %v, want %v", events[0].Timestamp, wantDate)
	}
}

func TestParseAnnouncements_Empty(t *testing.T) {
	html := []byte(`<script>
document.obj_data = { "earnings_announcements_earnings_table" : [] };
</script>`)
	events, err := ParseAnnouncements(html, nyc)
	if err != nil {
		t.Fatalf("ParseAnnouncements() error = %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("got %d events from empty table, want 0", len(events))
	}
}

func TestParseNextReportDate(t *testing.T) {
	html := []byte(`<table>
<tr><td>Exp Earnings Growth</td><td>4.2%</td></tr>
<tr><td>Next Report Date</td><td>4/25/2024 *BMO</td></tr>
</table>`)

	event, err := ParseNextReportDate(html, nyc)
	if err != nil {
		t.Fatalf("ParseNextReportDate() error = %v", err)
	}
	want := time.Date(2024, 4, 25, 0, 0, 0, 0, nyc)
	if !event.Timestamp.Equal(want) {
		t.Errorf("Timestamp = %v, want %v", event.Timestamp, want)
	}
	if event.Session != models.SessionBeforeOpen {
		t.Errorf("Session = %q, want before open", event.Session)
	}
}

func TestParseNextReportDate_DefaultSession(t *testing.T) {
	html := []byte(`<table>
<tr><td>Next Report Date</td><td>4/25/2024 *AMC</td></tr>
</table>`)
	event, err := ParseNextReportDate(html, nyc)
	if err != nil {
		t.Fatalf("ParseNextReportDate() error = %v", err)
	}
	if event.Session != models.SessionAfterClose {
		t.Errorf("Session = %q, want after close", event.Session)
	}
}

func TestParseNextReportDate_Missing(t *testing.T) {
	html := []byte(`<table><tr><td>PE Ratio</td><td>28.4</td></tr></table>`)
	event, err := ParseNextReportDate(html, nyc)
	if err != nil {
		t.Fatalf("ParseNextReportDate() error = %v", err)
	}
	if event != nil {
		t.Fatalf("got event %+v, want nil when next report row is absent", event)
	}
}

func TestParseDetail(t *testing.T) {
	html := []byte(`<div class="description">
<p class="description__text">
  Apple Inc. designs, manufactures and markets smartphones.
</p></div>`)
	detail, err := ParseDetail(html)
	if err != nil {
		t.Fatalf("ParseDetail() error = %v", err)
	}
	want := "Apple Inc. designs, manufactures and markets smartphones."
	if detail != want {
		t.Errorf("ParseDetail() = %q, want %q", detail, want)
	}
}

func TestParseDetail_Missing(t *testing.T) {
	if _, err := ParseDetail([]byte(`<div class="intro">nothing here</div>`)); err == nil {
		t.Fatal("expected error when description text is absent")
	}
}
