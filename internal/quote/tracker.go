package quote

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"idledger/internal/cache"
	"idledger/internal/log"
)

const (
	defaultTTL          = time.Minute
	defaultStaleFor     = 24 * time.Hour
	defaultFetchTimeout = 20 * time.Second
	cacheSize           = 16
)

// Tracker caches quotes per instrument and tracks the instrument currently
// selected in the converter.
//
// Concurrent lookups of one instrument share a single upstream fetch. A fetch
// that fails leaves the last good quote in place; it is served with Stale set
// until it ages out of the cache.
type Tracker struct {
	provider     Provider
	ttl          time.Duration
	fetchTimeout time.Duration
	cache        *cache.LRUCache[Quote]
	group        singleflight.Group
	logger       *log.Logger
	now          func() time.Time

	mu     sync.Mutex
	active Instrument
	gen    uint64
	cancel context.CancelCauseFunc
}

type TrackerOption func(*Tracker)

func WithClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) { t.now = now }
}

func WithFetchTimeout(d time.Duration) TrackerOption {
	return func(t *Tracker) { t.fetchTimeout = d }
}

// WithStaleFor bounds how long a quote is kept for fallback after it was fetched.
func WithStaleFor(d time.Duration) TrackerOption {
	return func(t *Tracker) {
		t.cache = cache.NewLRUCache[Quote](cacheSize, d).WithClock(t.clock)
	}
}

func NewTracker(provider Provider, ttl time.Duration, logger *log.Logger, opts ...TrackerOption) *Tracker {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if logger == nil {
		logger = log.Discard()
	}
	t := &Tracker{
		provider:     provider,
		ttl:          ttl,
		fetchTimeout: defaultFetchTimeout,
		logger:       logger.WithComponent(log.ComponentQuote),
		now:          time.Now,
		active:       USDT,
	}
	t.cache = cache.NewLRUCache[Quote](cacheSize, defaultStaleFor).WithClock(t.clock)
	for _, o := range opts {
		o(t)
	}
	return t
}

func (t *Tracker) clock() time.Time { return t.now() }

// Cache exposes the quote cache for periodic cleanup.
func (t *Tracker) Cache() cache.Cleaner { return t.cache }

// Active returns the most recently selected instrument.
func (t *Tracker) Active() Instrument {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Select makes in the active instrument and returns its quote. A Select still
// waiting on its fetch when a newer Select arrives returns ErrSuperseded.
func (t *Tracker) Select(ctx context.Context, in Instrument) (Quote, error) {
	if in.GeckoID() == "" {
		return Quote{}, ErrUnknownInstrument
	}

	ctx, cancel := context.WithCancelCause(ctx)
	t.mu.Lock()
	if t.cancel != nil {
		t.cancel(ErrSuperseded)
	}
	t.gen++
	gen := t.gen
	t.active = in
	t.cancel = cancel
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		if t.gen == gen {
			t.cancel = nil
		}
		t.mu.Unlock()
		cancel(nil)
	}()

	return t.Quote(ctx, in)
}

// Quote returns a fresh cached quote or fetches one.
func (t *Tracker) Quote(ctx context.Context, in Instrument) (Quote, error) {
	if in.GeckoID() == "" {
		return Quote{}, ErrUnknownInstrument
	}
	key := string(in)

	cached, hasCached := t.cache.Get(key)
	if hasCached && t.now().Sub(cached.FetchedAt) < t.ttl {
		return cached, nil
	}

	// The fetch outlives any single caller so an abandoned request still
	// refreshes the cache for the next one.
	ch := t.group.DoChan(key, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), t.fetchTimeout)
		defer cancel()

		q, err := t.provider.Quote(fctx, in)
		if err != nil {
			return Quote{}, err
		}
		if q.FetchedAt.IsZero() {
			q.FetchedAt = t.now()
		}
		q.Instrument = in
		q.Stale = false
		t.cache.Set(key, q)
		return q, nil
	})

	select {
	case <-ctx.Done():
		err := context.Cause(ctx)
		if errors.Is(err, ErrSuperseded) {
			return Quote{}, ErrSuperseded
		}
		return t.fallback(in, cached, hasCached, err)
	case res := <-ch:
		if res.Err != nil {
			t.logger.Warn("Quote fetch failed",
				log.FieldInstrument, key,
				log.FieldOperation, log.OpFetch,
				log.FieldError, res.Err.Error())
			return t.fallback(in, cached, hasCached, res.Err)
		}
		return res.Val.(Quote), nil
	}
}

func (t *Tracker) fallback(in Instrument, cached Quote, ok bool, err error) (Quote, error) {
	if !ok {
		return Quote{}, fmt.Errorf("quote %s: %w", in, err)
	}
	cached.Stale = true
	return cached, nil
}
