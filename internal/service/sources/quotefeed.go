package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"EarningsPull/internal/domain/models"
	"EarningsPull/internal/service/ratelimit"
	xhttp "EarningsPull/pkg/http"
)

// ZacksQuotes fetches delayed quotes from the Zacks quote feed. The feed
// takes a comma-separated symbol list and answers with a JSON object keyed
// by symbol.
type ZacksQuotes struct {
	client    *xhttp.Client
	limiter   *ratelimit.Limiter
	url       string
	userAgent string
	rps       float64
}

func NewZacksQuotes(client *xhttp.Client, limiter *ratelimit.Limiter, url, userAgent string, rps float64) *ZacksQuotes {
	return &ZacksQuotes{
		client:    client,
		limiter:   limiter,
		url:       url,
		userAgent: userAgent,
		rps:       rps,
	}
}

// Quotes returns a price string per requested symbol. A symbol the feed does
// not know, or a feed that cannot be reached at all, yields "" for the
// affected symbols rather than an error; callers always get a complete map.
func (z *ZacksQuotes) Quotes(ctx context.Context, symbols []string) (map[string]string, error) {
	out := make(map[string]string, len(symbols))
	normalized := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = models.NormalizeSymbol(s)
		out[s] = ""
		normalized = append(normalized, s)
	}
	if len(normalized) == 0 {
		return out, nil
	}

	if err := z.limiter.Wait(ctx, "quotefeed", z.rps, z.rps); err != nil {
		return out, nil
	}

	body, err := z.client.GetBody(ctx, &xhttp.RequestOptions{
		URL:     fmt.Sprintf(z.url, strings.Join(normalized, ",")),
		Headers: map[string]string{"User-Agent": z.userAgent},
	})
	if err != nil {
		return out, nil
	}

	var feed map[string]struct {
		Last string `json:"last"`
	}
	if err := json.Unmarshal(body, &feed); err != nil {
		return out, nil
	}
	for sym, q := range feed {
		sym = models.NormalizeSymbol(sym)
		if _, ok := out[sym]; ok {
			out[sym] = q.Last
		}
	}
	return out, nil
}
