package sources

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"EarningsPull/internal/domain/models"
	"EarningsPull/internal/service/ratelimit"
	xhttp "EarningsPull/pkg/http"
	"EarningsPull/pkg/util"
)

// YahooPrices pulls daily OHLCV bars from the Yahoo chart API. Yahoo wants
// dashes where the roster uses dots (BRK.B -> BRK-B); that substitution stays
// inside this adapter.
type YahooPrices struct {
	client    *xhttp.Client
	limiter   *ratelimit.Limiter
	url       string
	userAgent string
	rps       float64
	loc       *time.Location
}

// NewYahooPrices creates the price source.
func NewYahooPrices(client *xhttp.Client, limiter *ratelimit.Limiter, url, userAgent string, rps float64, loc *time.Location) *YahooPrices {
	return &YahooPrices{
		client:    client,
		limiter:   limiter,
		url:       url,
		userAgent: userAgent,
		rps:       rps,
		loc:       loc,
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
			Events struct {
				Dividends map[string]struct {
					Amount float64 `json:"amount"`
					Date   int64   `json:"date"`
				} `json:"dividends"`
				Splits map[string]struct {
					Numerator   float64 `json:"numerator"`
					Denominator float64 `json:"denominator"`
					Date        int64   `json:"date"`
				} `json:"splits"`
			} `json:"events"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (y *YahooPrices) History(ctx context.Context, symbol string, start, end time.Time) ([]models.PriceBar, error) {
	symbol = models.NormalizeSymbol(symbol)
	if err := y.limiter.Wait(ctx, "yahoo", y.rps, y.rps); err != nil {
		return nil, &models.FetchError{Symbol: symbol, Op: "prices", Err: err}
	}

	var resp chartResponse
	err := y.client.GetJSON(ctx, &xhttp.RequestOptions{
		URL:     fmt.Sprintf(y.url, strings.ReplaceAll(symbol, ".", "-")),
		Headers: map[string]string{"User-Agent": y.userAgent},
		QueryParams: map[string][]string{
			"period1":  {strconv.FormatInt(start.Unix(), 10)},
			"period2":  {strconv.FormatInt(end.Unix(), 10)},
			"interval": {"1d"},
			"events":   {"div|split"},
		},
	}, &resp)
	if err != nil {
		return nil, &models.FetchError{Symbol: symbol, Op: "prices", Err: err}
	}

	if resp.Chart.Error != nil {
		return nil, &models.FetchError{Symbol: symbol, Op: "prices",
			Err: fmt.Errorf("chart error %s: %s", resp.Chart.Error.Code, resp.Chart.Error.Description)}
	}
	if len(resp.Chart.Result) == 0 || len(resp.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, models.ErrNoData
	}

	result := resp.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	dividends := make(map[time.Time]float64, len(result.Events.Dividends))
	for _, d := range result.Events.Dividends {
		dividends[util.DayFloor(time.Unix(d.Date, 0), y.loc)] = d.Amount
	}
	splits := make(map[time.Time]float64, len(result.Events.Splits))
	for _, s := range result.Events.Splits {
		if s.Denominator != 0 {
			splits[util.DayFloor(time.Unix(s.Date, 0), y.loc)] = s.Numerator / s.Denominator
		}
	}

	at := func(vals []*float64, i int) float64 {
		if i < len(vals) && vals[i] != nil {
			return *vals[i]
		}
		return 0
	}

	bars := make([]models.PriceBar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		// closed sessions come back with null closes; skip them
		if i >= len(quote.Close) || quote.Close[i] == nil {
			continue
		}
		date := util.DayFloor(time.Unix(ts, 0), y.loc)
		bars = append(bars, models.PriceBar{
			Date:       date,
			Open:       at(quote.Open, i),
			High:       at(quote.High, i),
			Low:        at(quote.Low, i),
			Close:      *quote.Close[i],
			Volume:     at(quote.Volume, i),
			Dividends:  dividends[date],
			SplitRatio: splits[date],
		})
	}
	if len(bars) == 0 {
		return nil, models.ErrNoData
	}
	return bars, nil
}
