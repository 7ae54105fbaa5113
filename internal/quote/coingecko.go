package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"idledger/internal/log"
)

const (
	DefaultBaseURL  = "https://api.coingecko.com"
	DefaultCurrency = "thb"
	historyDays     = "7"
)

// CoinGecko is a Provider backed by the public CoinGecko API.
type CoinGecko struct {
	baseURL  string
	currency string
	client   *http.Client
	logger   *log.Logger
	now      func() time.Time
}

type CoinGeckoOption func(*CoinGecko)

func WithHTTPClient(c *http.Client) CoinGeckoOption {
	return func(g *CoinGecko) { g.client = c }
}

func WithProviderClock(now func() time.Time) CoinGeckoOption {
	return func(g *CoinGecko) { g.now = now }
}

func NewCoinGecko(baseURL, currency string, logger *log.Logger, opts ...CoinGeckoOption) *CoinGecko {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if currency == "" {
		currency = DefaultCurrency
	}
	if logger == nil {
		logger = log.Discard()
	}
	g := &CoinGecko{
		baseURL:  strings.TrimRight(baseURL, "/"),
		currency: strings.ToLower(currency),
		client:   &http.Client{Timeout: 15 * time.Second},
		logger:   logger.WithComponent(log.ComponentQuote),
		now:      time.Now,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Quote fetches the spot price and the 7 day daily history concurrently.
func (g *CoinGecko) Quote(ctx context.Context, in Instrument) (Quote, error) {
	id := in.GeckoID()
	if id == "" {
		return Quote{}, ErrUnknownInstrument
	}

	q := Quote{Instrument: in}
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		spot, change, err := g.price(ctx, id)
		if err != nil {
			return err
		}
		q.Spot, q.Change24h = spot, change
		return nil
	})
	eg.Go(func() error {
		history, err := g.history(ctx, id)
		if err != nil {
			return err
		}
		q.History = history
		return nil
	})
	if err := eg.Wait(); err != nil {
		return Quote{}, fmt.Errorf("quote %s: %w", in, err)
	}
	q.FetchedAt = g.now()

	g.logger.Debug("Quote fetched",
		log.FieldInstrument, string(in),
		"spot", q.Spot.String(),
		log.FieldCount, len(q.History))
	return q, nil
}

func (g *CoinGecko) price(ctx context.Context, id string) (decimal.Decimal, decimal.Decimal, error) {
	query := url.Values{}
	query.Set("ids", id)
	query.Set("vs_currencies", g.currency)
	query.Set("include_24hr_change", "true")

	var body map[string]map[string]decimal.Decimal
	if err := g.getJSON(ctx, "/api/v3/simple/price", query, &body); err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	entry, ok := body[id]
	if !ok {
		return decimal.Zero, decimal.Zero, ErrNoPrice
	}
	spot, ok := entry[g.currency]
	if !ok {
		return decimal.Zero, decimal.Zero, ErrNoPrice
	}
	// a missing change field reads as no change
	return spot, entry[g.currency+"_24h_change"], nil
}

func (g *CoinGecko) history(ctx context.Context, id string) ([]Point, error) {
	query := url.Values{}
	query.Set("vs_currency", g.currency)
	query.Set("days", historyDays)
	query.Set("interval", "daily")

	var body struct {
		Prices [][]decimal.Decimal `json:"prices"`
	}
	if err := g.getJSON(ctx, "/api/v3/coins/"+url.PathEscape(id)+"/market_chart", query, &body); err != nil {
		return nil, err
	}

	points := make([]Point, 0, len(body.Prices))
	for _, p := range body.Prices {
		if len(p) < 2 {
			continue
		}
		points = append(points, Point{
			Time:  time.UnixMilli(p[0].IntPart()).UTC(),
			Price: p[1],
		})
	}
	return points, nil
}

func (g *CoinGecko) getJSON(ctx context.Context, path string, query url.Values, dst any) error {
	endpoint := g.baseURL + path + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
