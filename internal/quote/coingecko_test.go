package quote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGeckoServer(t *testing.T, priceBody string, status int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/simple/price", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "bitcoin", q.Get("ids"))
		assert.Equal(t, "thb", q.Get("vs_currencies"))
		assert.Equal(t, "true", q.Get("include_24hr_change"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(priceBody))
	})
	mux.HandleFunc("/api/v3/coins/bitcoin/market_chart", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "thb", q.Get("vs_currency"))
		assert.Equal(t, "7", q.Get("days"))
		assert.Equal(t, "daily", q.Get("interval"))
		_, _ = w.Write([]byte(`{"prices":[[1700000000000,1200000.5],[1700086400000,1210000]]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestCoinGeckoQuote(t *testing.T) {
	srv := newGeckoServer(t, `{"bitcoin":{"thb":1234567.89,"thb_24h_change":-1.25}}`, http.StatusOK)
	fixed := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	g := NewCoinGecko(srv.URL+"/", "THB", nil, WithProviderClock(func() time.Time { return fixed }))

	q, err := g.Quote(context.Background(), BTC)
	require.NoError(t, err)

	assert.Equal(t, BTC, q.Instrument)
	assert.Equal(t, "1234567.89", q.Spot.String())
	assert.Equal(t, "-1.25", q.Change24h.String())
	assert.Equal(t, fixed, q.FetchedAt)
	require.Len(t, q.History, 2)
	assert.Equal(t, time.UnixMilli(1700000000000).UTC(), q.History[0].Time)
	assert.Equal(t, "1200000.5", q.History[0].Price.String())
}

func TestCoinGeckoMissingChangeReadsZero(t *testing.T) {
	srv := newGeckoServer(t, `{"bitcoin":{"thb":100}}`, http.StatusOK)
	q, err := NewCoinGecko(srv.URL, "thb", nil).Quote(context.Background(), BTC)
	require.NoError(t, err)
	assert.True(t, q.Change24h.IsZero())
}

func TestCoinGeckoErrors(t *testing.T) {
	t.Run("missing id", func(t *testing.T) {
		srv := newGeckoServer(t, `{}`, http.StatusOK)
		_, err := NewCoinGecko(srv.URL, "thb", nil).Quote(context.Background(), BTC)
		assert.ErrorIs(t, err, ErrNoPrice)
	})
	t.Run("upstream status", func(t *testing.T) {
		srv := newGeckoServer(t, `{"error":"rate limited"}`, http.StatusTooManyRequests)
		_, err := NewCoinGecko(srv.URL, "thb", nil).Quote(context.Background(), BTC)
		assert.ErrorContains(t, err, "unexpected status 429")
	})
	t.Run("unknown instrument", func(t *testing.T) {
		_, err := NewCoinGecko("http://127.0.0.1:0", "thb", nil).Quote(context.Background(), Instrument("DOGE"))
		assert.ErrorIs(t, err, ErrUnknownInstrument)
	})
}
