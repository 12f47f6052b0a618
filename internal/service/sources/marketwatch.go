package sources

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"EarningsPull/internal/domain/models"
	"EarningsPull/internal/service/ratelimit"
	xhttp "EarningsPull/pkg/http"
)

// MarketWatchDetail scrapes the one-paragraph company description from the
// MarketWatch profile page.
type MarketWatchDetail struct {
	client    *xhttp.Client
	limiter   *ratelimit.Limiter
	url       string
	userAgent string
	rps       float64
}

func NewMarketWatchDetail(client *xhttp.Client, limiter *ratelimit.Limiter, url, userAgent string, rps float64) *MarketWatchDetail {
	return &MarketWatchDetail{
		client:    client,
		limiter:   limiter,
		url:       url,
		userAgent: userAgent,
		rps:       rps,
	}
}

func (m *MarketWatchDetail) Detail(ctx context.Context, symbol string) (string, error) {
	symbol = models.NormalizeSymbol(symbol)
	if err := m.limiter.Wait(ctx, "marketwatch", m.rps, m.rps); err != nil {
		return "", &models.FetchError{Symbol: symbol, Op: "detail", Err: err}
	}

	body, err := m.client.GetBody(ctx, &xhttp.RequestOptions{
		URL:     fmt.Sprintf(m.url, strings.ToLower(symbol)),
		Headers: map[string]string{"User-Agent": m.userAgent},
	})
	if err != nil {
		return "", &models.FetchError{Symbol: symbol, Op: "detail", Err: err}
	}

	detail, err := ParseDetail(body)
	if err != nil {
		return "", &models.FetchError{Symbol: symbol, Op: "detail", Err: err}
	}
	return detail, nil
}

// ParseDetail extracts the profile description text.
func ParseDetail(html []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse detail page: %w", err)
	}
	sel := doc.Find(".description__text").First()
	if sel.Length() == 0 {
		return "", models.ErrNoData
	}
	text := strings.TrimSpace(sel.Text())
	if text == "" {
		return "", models.ErrNoData
	}
	return text, nil
}
