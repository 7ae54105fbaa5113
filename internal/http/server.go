// Package http serves the ledger's JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"idledger/internal/log"
	"idledger/internal/middleware/ratelimit"
	"idledger/internal/middleware/security"
	"idledger/internal/middleware/trace"
	"idledger/internal/quote"
	"idledger/internal/repository"
)

// QuoteService is the market price lookup behind the converter routes.
type QuoteService interface {
	Select(ctx context.Context, in quote.Instrument) (quote.Quote, error)
	Quote(ctx context.Context, in quote.Instrument) (quote.Quote, error)
}

type Server struct {
	http.Server
	repo   *repository.Repository
	quotes QuoteService
	logger *log.Logger

	loc     *time.Location
	now     func() time.Time
	started time.Time

	changes http.Handler

	rateLimiter *ratelimit.Limiter
	detector    *security.Detector
	tracer      *trace.Middleware

	shutdownOnce sync.Once
}

type Option func(*Server)

func WithLocation(loc *time.Location) Option {
	return func(s *Server) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClock overrides the clock used for default calendar and trend periods.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithChangeFeed mounts a websocket change feed at GET /api/changes.
func WithChangeFeed(feed http.Handler) Option {
	return func(s *Server) { s.changes = feed }
}

// WithRateLimit sets how many mutating requests a client may send per minute.
func WithRateLimit(perMinute int) Option {
	return func(s *Server) {
		s.rateLimiter.Stop()
		s.rateLimiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: perMinute})
	}
}

// NewServer configures routes and middleware, returning a ready-to-run server.
// quotes may be nil, in which case the quote routes answer 503.
func NewServer(addr string, repo *repository.Repository, quotes QuoteService, logger *log.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = log.Discard()
	}
	s := &Server{
		repo:        repo,
		quotes:      quotes,
		logger:      logger.WithComponent(log.ComponentHTTP),
		loc:         time.UTC,
		now:         time.Now,
		rateLimiter: ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector:    security.NewDetector(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.started = s.now()
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)

	mux := http.NewServeMux()
	s.routes(mux)

	var h http.Handler = mux
	h = s.rateLimiter.Middleware(s.detector.ExtractClientIP, s.handleRateLimited)(h)
	h = s.detector.Middleware(logger)(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.tracer.Middleware(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("POST /api/categories", s.handleCreateCategory)
	mux.HandleFunc("PATCH /api/categories/{id}", s.handleUpdateCategory)
	mux.HandleFunc("DELETE /api/categories/{id}", s.handleDeleteCategory)
	mux.HandleFunc("GET /api/categories/{name}/records", s.handleCategoryRecords)

	mux.HandleFunc("GET /api/records", s.handleListRecords)
	mux.HandleFunc("POST /api/records", s.handleCreateRecord)
	mux.HandleFunc("POST /api/records/batch", s.handleCreateRecordBatch)
	mux.HandleFunc("POST /api/records/bulk-update", s.handleBulkUpdateRecords)
	mux.HandleFunc("POST /api/records/bulk-delete", s.handleBulkDeleteRecords)
	mux.HandleFunc("POST /api/records/bulk-toggle", s.handleBulkToggleRecords)
	mux.HandleFunc("PATCH /api/records/{id}", s.handleUpdateRecord)
	mux.HandleFunc("POST /api/records/{id}/toggle", s.handleToggleRecord)
	mux.HandleFunc("DELETE /api/records/{id}", s.handleDeleteRecord)

	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	mux.HandleFunc("PATCH /api/expenses/{id}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)

	mux.HandleFunc("GET /api/summary/overview", s.handleOverview)
	mux.HandleFunc("GET /api/summary/day/{date}", s.handleDaySummary)
	mux.HandleFunc("GET /api/summary/month/{month}", s.handleMonthSummary)
	mux.HandleFunc("GET /api/summary/year/{year}", s.handleYearSummary)
	mux.HandleFunc("GET /api/summary/calendar", s.handleCalendar)
	mux.HandleFunc("GET /api/summary/trend", s.handleTrend)
	mux.HandleFunc("GET /api/summary/categories", s.handleCategoryBreakdown)

	mux.HandleFunc("GET /api/quotes/{instrument}", s.handleQuote)
	mux.HandleFunc("GET /api/convert", s.handleConvert)

	if s.changes != nil {
		mux.Handle("GET /api/changes", s.changes)
	}
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, try again later").Write(w)
}
