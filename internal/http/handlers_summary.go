package http

import (
	"net/http"
	"strconv"
	"time"

	"idledger/internal/aggregate"
	"idledger/internal/core"
)

type periodSummary struct {
	Key    string             `json:"key"`
	Title  string             `json:"title,omitempty"`
	Bucket core.Bucket        `json:"bucket"`
	Net    core.NetFigure     `json:"net"`
	Months []core.MonthPoint  `json:"months,omitempty"`
	Days   []core.CalendarDay `json:"days,omitempty"`
}

func (s *Server) today() time.Time {
	return s.now().In(s.loc)
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	OK(w, aggregate.Overview(s.repo.Snapshot()))
}

func (s *Server) handleDaySummary(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")
	if !core.ValidDate(date) {
		BadRequestError("invalid date " + strconv.Quote(date) + ", want YYYY-MM-DD").Write(w)
		return
	}
	OK(w, aggregate.Day(s.repo.Snapshot(), date))
}

func (s *Server) handleMonthSummary(w http.ResponseWriter, r *http.Request) {
	m, err := parseMonthKey(r.PathValue("month"))
	if err != nil {
		s.writeError(w, r, err, "summary")
		return
	}
	snap := s.repo.Snapshot()
	key := core.MonthKey(m.Year(), m.Month())
	OK(w, periodSummary{
		Key:    key,
		Title:  aggregate.MonthTitle(m.Year(), m.Month(), requestLanguage(r)),
		Bucket: aggregate.BucketFor(snap.Records, key, core.Month),
		Net:    aggregate.Net(snap.Records, snap.Expenses, key, core.Month),
		Days:   aggregate.CalendarMonth(snap.Records, m.Year(), m.Month()),
	})
}

// handleYearSummary returns the year totals with its twelve months, Jan to Dec.
func (s *Server) handleYearSummary(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("year")
	year, err := strconv.Atoi(key)
	if err != nil || len(key) != 4 {
		BadRequestError("invalid year " + strconv.Quote(key) + ", want YYYY").Write(w)
		return
	}
	snap := s.repo.Snapshot()
	dec := time.Date(year, time.December, 1, 0, 0, 0, 0, time.UTC)
	OK(w, periodSummary{
		Key:    key,
		Bucket: aggregate.BucketFor(snap.Records, key, core.Year),
		Net:    aggregate.Net(snap.Records, snap.Expenses, key, core.Year),
		Months: aggregate.TrailingMonths(snap.Records, dec, 12, requestLanguage(r)),
	})
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	year, month, err := parseMonthParams(r.URL.Query(), s.today())
	if err != nil {
		s.writeError(w, r, err, "summary")
		return
	}
	snap := s.repo.Snapshot()
	key := core.MonthKey(year, month)
	OK(w, periodSummary{
		Key:    key,
		Title:  aggregate.MonthTitle(year, month, requestLanguage(r)),
		Bucket: aggregate.BucketFor(snap.Records, key, core.Month),
		Net:    aggregate.Net(snap.Records, snap.Expenses, key, core.Month),
		Days:   aggregate.CalendarMonth(snap.Records, year, month),
	})
}

// handleTrend returns the trailing months ending at ref (default: this month).
func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	n, err := parseIntParam(q, "months", 6, 1, 120)
	if err != nil {
		s.writeError(w, r, err, "summary")
		return
	}
	ref := s.today()
	if v := q.Get("ref"); v != "" {
		if ref, err = parseMonthKey(v); err != nil {
			s.writeError(w, r, err, "summary")
			return
		}
	}
	OK(w, aggregate.TrailingMonths(s.repo.Records(), ref, n, requestLanguage(r)))
}

func (s *Server) handleCategoryBreakdown(w http.ResponseWriter, r *http.Request) {
	snap := s.repo.Snapshot()
	OK(w, aggregate.CategoryBreakdown(snap.Categories, snap.Records))
}
