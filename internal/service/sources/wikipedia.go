package sources

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"EarningsPull/internal/domain/models"
	"EarningsPull/internal/service/ratelimit"
	xhttp "EarningsPull/pkg/http"

	"github.com/PuerkitoBio/goquery"
)

// WikipediaRoster reads index constituents from the Wikipedia members table.
// The first wikitable on the page lists {symbol, security}; any layout change
// is a configuration error that aborts the whole pass.
type WikipediaRoster struct {
	client    *xhttp.Client
	limiter   *ratelimit.Limiter
	url       string
	userAgent string
	rps       float64
}

// NewWikipediaRoster creates the roster provider.
func NewWikipediaRoster(client *xhttp.Client, limiter *ratelimit.Limiter, url, userAgent string, rps float64) *WikipediaRoster {
	return &WikipediaRoster{
		client:    client,
		limiter:   limiter,
		url:       url,
		userAgent: userAgent,
		rps:       rps,
	}
}

func (r *WikipediaRoster) Companies(ctx context.Context) ([]models.Company, error) {
	if err := r.limiter.Wait(ctx, "wikipedia", r.rps, r.rps); err != nil {
		return nil, err
	}

	body, err := r.client.GetBody(ctx, &xhttp.RequestOptions{
		URL:     r.url,
		Headers: map[string]string{"User-Agent": r.userAgent},
	})
	if err != nil {
		return nil, &models.ConfigError{Source: "roster", Err: err}
	}

	companies, err := ParseRosterTable(body)
	if err != nil {
		return nil, &models.ConfigError{Source: "roster", Err: err}
	}
	return companies, nil
}

// ParseRosterTable parses the constituents table out of the page HTML.
func ParseRosterTable(html []byte) ([]models.Company, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	table := doc.Find("table.wikitable").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("constituents table not found")
	}

	// Column headers changing means the page layout changed under us.
	headers := table.Find("tr").First().Find("th")
	if headers.Length() < 2 {
		return nil, fmt.Errorf("constituents table has no headers")
	}
	col0 := strings.TrimSpace(headers.Eq(0).Text())
	col1 := strings.TrimSpace(headers.Eq(1).Text())
	if col0 != "Symbol" || col1 != "Security" {
		return nil, fmt.Errorf("unexpected column headers %q, %q", col0, col1)
	}

	var companies []models.Company
	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return
		}
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		symbol := models.NormalizeSymbol(cells.Eq(0).Text())
		name := strings.TrimSpace(cells.Eq(1).Text())
		if symbol == "" || name == "" {
			return
		}
		companies = append(companies, models.Company{Symbol: symbol, Name: name})
	})

	if len(companies) == 0 {
		return nil, fmt.Errorf("constituents table is empty")
	}

	sort.Slice(companies, func(i, j int) bool {
		return companies[i].Symbol < companies[j].Symbol
	})
	return companies, nil
}
