// Package aggregate derives financial summaries from a ledger snapshot.
// Every function is pure; nothing here is cached or stored.
package aggregate

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"

	"idledger/internal/core"
)

// BucketKey returns the bucket a date falls into: the date itself, its
// YYYY-MM prefix or its YYYY prefix.
func BucketKey(date string, g core.Granularity) string {
	n := len(date)
	switch g {
	case core.Month:
		n = 7
	case core.Year:
		n = 4
	}
	if len(date) < n {
		return date
	}
	return date[:n]
}

func add(b core.Bucket, r core.Record) core.Bucket {
	b.TotalCount++
	if r.Status == core.StatusSold {
		b.Profit = b.Profit.Add(r.Profit)
		b.SoldCount++
	}
	return b
}

// Buckets groups records by the bucket of their dateAdded. Only SOLD records
// contribute profit; every record counts towards TotalCount.
func Buckets(records []core.Record, g core.Granularity) map[string]core.Bucket {
	out := make(map[string]core.Bucket)
	for _, r := range records {
		key := BucketKey(r.DateAdded, g)
		b, ok := out[key]
		if !ok {
			b = core.Bucket{Key: key, Profit: decimal.Zero}
		}
		out[key] = add(b, r)
	}
	return out
}

// DailyStats is the per-date input of the calendar view.
func DailyStats(records []core.Record) map[string]core.Bucket {
	return Buckets(records, core.Day)
}

// BucketFor summarizes the single bucket key. An empty bucket is all zeros.
func BucketFor(records []core.Record, key string, g core.Granularity) core.Bucket {
	b := core.Bucket{Key: key, Profit: decimal.Zero}
	for _, r := range records {
		if BucketKey(r.DateAdded, g) == key {
			b = add(b, r)
		}
	}
	return b
}

// ExpenseTotal sums the expenses whose date falls into key.
func ExpenseTotal(expenses []core.Expense, key string, g core.Granularity) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		if BucketKey(e.Date, g) == key {
			total = total.Add(e.Amount)
		}
	}
	return total
}

// Net is SOLD profit minus expenses for one period, each collection bucketed
// by its own date field.
func Net(records []core.Record, expenses []core.Expense, key string, g core.Granularity) core.NetFigure {
	profit := BucketFor(records, key, g).Profit
	spent := ExpenseTotal(expenses, key, g)
	return core.NetFigure{Key: key, Profit: profit, Expenses: spent, Net: profit.Sub(spent)}
}

// CalendarMonth returns one entry per day of the month, zero-filled.
func CalendarMonth(records []core.Record, year int, month time.Month) []core.CalendarDay {
	stats := DailyStats(records)
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	days := first.AddDate(0, 1, -1).Day()

	out := make([]core.CalendarDay, 0, days)
	for d := first; d.Month() == month; d = d.AddDate(0, 0, 1) {
		date := d.Format(core.DateLayout)
		b, ok := stats[date]
		if !ok {
			b = core.Bucket{Key: date, Profit: decimal.Zero}
		}
		out = append(out, core.CalendarDay{Date: date, Day: d.Day(), Bucket: b})
	}
	return out
}

// TrailingMonths returns exactly n consecutive months ending at the month of
// ref, oldest first. Months without sales carry zero profit.
func TrailingMonths(records []core.Record, ref time.Time, n int, lang language.Tag) []core.MonthPoint {
	if n <= 0 {
		return []core.MonthPoint{}
	}
	monthly := Buckets(records, core.Month)
	start := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(n - 1), 0)

	out := make([]core.MonthPoint, n)
	for i := range out {
		m := start.AddDate(0, i, 0)
		key := core.MonthKey(m.Year(), m.Month())
		profit := decimal.Zero
		if b, ok := monthly[key]; ok {
			profit = b.Profit
		}
		out[i] = core.MonthPoint{Key: key, Label: MonthLabel(m.Month(), lang), Profit: profit}
	}
	return out
}

// CategoryTotals rolls up every record carrying name. Unknown names give zeros.
func CategoryTotals(records []core.Record, name string) core.CategoryTotal {
	t := core.CategoryTotal{Name: name, Profit: decimal.Zero}
	for _, r := range records {
		if r.Category != name {
			continue
		}
		t.Count++
		if r.Status == core.StatusSold {
			t.Profit = t.Profit.Add(r.Profit)
		}
	}
	return t
}

// CategoryBreakdown lists every category in order, then the dangling names
// that records still reference, sorted.
func CategoryBreakdown(categories []core.Category, records []core.Record) []core.CategoryTotal {
	known := make(map[string]bool, len(categories))
	out := make([]core.CategoryTotal, 0, len(categories))
	for _, c := range categories {
		if known[c.Name] {
			continue
		}
		known[c.Name] = true
		t := CategoryTotals(records, c.Name)
		t.Known = true
		out = append(out, t)
	}

	var dangling []string
	seen := make(map[string]bool)
	for _, r := range records {
		if !known[r.Category] && !seen[r.Category] {
			seen[r.Category] = true
			dangling = append(dangling, r.Category)
		}
	}
	sort.Strings(dangling)
	for _, name := range dangling {
		out = append(out, CategoryTotals(records, name))
	}
	return out
}

// Overview is the all-time dashboard summary.
func Overview(snap core.Snapshot) core.Overview {
	o := core.Overview{Profit: decimal.Zero, Expenses: decimal.Zero, RecordCount: len(snap.Records)}
	for _, r := range snap.Records {
		if r.Status == core.StatusSold {
			o.Profit = o.Profit.Add(r.Profit)
			o.SoldCount++
		}
	}
	for _, e := range snap.Expenses {
		o.Expenses = o.Expenses.Add(e.Amount)
	}
	o.Net = o.Profit.Sub(o.Expenses)
	return o
}

// Day bundles one date's bucket, net figure, records and expenses with the
// all-time category cards shown next to them.
func Day(snap core.Snapshot, date string) core.DayDetail {
	d := core.DayDetail{
		Bucket:     BucketFor(snap.Records, date, core.Day),
		Net:        Net(snap.Records, snap.Expenses, date, core.Day),
		Categories: CategoryBreakdown(snap.Categories, snap.Records),
		Records:    []core.Record{},
		Expenses:   []core.Expense{},
	}
	for _, r := range snap.Records {
		if r.DateAdded == date {
			d.Records = append(d.Records, r)
		}
	}
	for _, e := range snap.Expenses {
		if e.Date == date {
			d.Expenses = append(d.Expenses, e)
		}
	}
	return d
}

// SearchCategory returns the records of category whose name contains query,
// ignoring case. An empty query matches every record of the category.
func SearchCategory(records []core.Record, category, query string) []core.Record {
	q := strings.ToLower(query)
	out := []core.Record{}
	for _, r := range records {
		if r.Category != category {
			continue
		}
		if strings.Contains(strings.ToLower(r.Name), q) {
			out = append(out, r)
		}
	}
	return out
}
