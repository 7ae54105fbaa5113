package aggregate

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"idledger/internal/core"
)

func rec(id, cat, name string, profit int64, status core.Status, date string) core.Record {
	return core.Record{ID: id, Category: cat, Name: name, Profit: decimal.NewFromInt(profit), Status: status, DateAdded: date}
}

func exp(id string, amount int64, date string) core.Expense {
	return core.Expense{ID: id, Title: "t" + id, Amount: decimal.NewFromInt(amount), Date: date}
}

func TestCyborgDayBucket(t *testing.T) {
	records := []core.Record{
		rec("1", "Cyborg", "a", 450, core.StatusSold, "2023-10-25"),
		rec("2", "Cyborg", "b", 320, core.StatusAvailable, "2023-10-25"),
	}

	b := DailyStats(records)["2023-10-25"]
	assert.Equal(t, "450", b.Profit.String())
	assert.Equal(t, 1, b.SoldCount)
	assert.Equal(t, 2, b.TotalCount)
}

func TestBucketGranularity(t *testing.T) {
	records := []core.Record{
		rec("1", "A", "a", 100, core.StatusSold, "2023-10-25"),
		rec("2", "A", "b", 50, core.StatusSold, "2023-10-02"),
		rec("3", "A", "c", 70, core.StatusSold, "2023-11-01"),
		rec("4", "A", "d", 999, core.StatusAvailable, "2023-11-01"),
		rec("5", "A", "e", 10, core.StatusSold, "2024-01-01"),
	}

	tests := []struct {
		key   string
		g     core.Granularity
		want  string
		sold  int
		total int
	}{
		{"2023-10-25", core.Day, "100", 1, 1},
		{"2023-10", core.Month, "150", 2, 2},
		{"2023-11", core.Month, "70", 1, 2},
		{"2023", core.Year, "220", 3, 4},
		{"2022", core.Year, "0", 0, 0},
	}
	for _, tt := range tests {
		b := BucketFor(records, tt.key, tt.g)
		assert.Equal(t, tt.want, b.Profit.String(), tt.key)
		assert.Equal(t, tt.sold, b.SoldCount, tt.key)
		assert.Equal(t, tt.total, b.TotalCount, tt.key)
		if tt.total > 0 {
			grouped := Buckets(records, tt.g)[tt.key]
			assert.True(t, b.Profit.Equal(grouped.Profit), tt.key)
			assert.Equal(t, b.TotalCount, grouped.TotalCount, tt.key)
		}
	}
}

func TestNegativeValuesPropagate(t *testing.T) {
	records := []core.Record{
		rec("1", "A", "a", 100, core.StatusSold, "2024-01-01"),
		rec("2", "A", "b", -30, core.StatusSold, "2024-01-01"),
	}
	assert.Equal(t, "70", BucketFor(records, "2024-01-01", core.Day).Profit.String())
}

func TestNetFigures(t *testing.T) {
	records := []core.Record{
		rec("1", "A", "a", 450, core.StatusSold, "2023-10-25"),
		rec("2", "A", "b", 320, core.StatusAvailable, "2023-10-25"),
	}
	expenses := []core.Expense{exp("1", 500, "2023-10-25"), exp("2", 200, "2023-10-26"), exp("3", 5, "2023-09-30")}

	day := Net(records, expenses, "2023-10-25", core.Day)
	assert.Equal(t, "-50", day.Net.String())

	month := Net(records, expenses, "2023-10", core.Month)
	assert.Equal(t, "450", month.Profit.String())
	assert.Equal(t, "700", month.Expenses.String())
	assert.Equal(t, "-250", month.Net.String())
}

func TestCalendarMonthZeroFilled(t *testing.T) {
	records := []core.Record{rec("1", "A", "a", 450, core.StatusSold, "2024-02-29")}

	days := CalendarMonth(records, 2024, time.February)
	require.Len(t, days, 29)
	assert.Equal(t, "2024-02-01", days[0].Date)
	assert.True(t, days[0].Profit.IsZero())
	assert.Equal(t, 29, days[28].Day)
	assert.Equal(t, "450", days[28].Profit.String())

	assert.Len(t, CalendarMonth(nil, 2023, time.February), 28)
}

func TestTrailingMonthsExactlyN(t *testing.T) {
	records := []core.Record{
		rec("1", "A", "a", 100, core.StatusSold, "2023-11-05"),
		rec("2", "A", "b", 40, core.StatusSold, "2024-01-20"),
		rec("3", "A", "c", 40, core.StatusAvailable, "2024-01-20"),
	}
	ref := time.Date(2024, 1, 31, 23, 0, 0, 0, time.UTC)

	for _, n := range []int{1, 4, 12, 25} {
		assert.Len(t, TrailingMonths(records, ref, n, language.English), n)
	}

	series := TrailingMonths(records, ref, 4, language.English)
	keys := []string{}
	for _, p := range series {
		keys = append(keys, p.Key)
	}
	assert.Equal(t, []string{"2023-10", "2023-11", "2023-12", "2024-01"}, keys)
	assert.Equal(t, "Oct", series[0].Label)
	assert.True(t, series[0].Profit.IsZero())
	assert.Equal(t, "100", series[1].Profit.String())
	assert.Equal(t, "40", series[3].Profit.String())

	thai := TrailingMonths(records, ref, 1, language.Thai)
	assert.Equal(t, "ม.ค.", thai[0].Label)

	assert.Empty(t, TrailingMonths(records, ref, 0, language.English))
}

func TestCategoryRollups(t *testing.T) {
	categories := []core.Category{{ID: "1", Name: "Cyborg"}, {ID: "2", Name: "Leopard"}}
	records := []core.Record{
		rec("1", "Cyborg", "a", 450, core.StatusSold, "2023-10-25"),
		rec("2", "Cyborg", "b", 320, core.StatusAvailable, "2023-10-25"),
		rec("3", "Ghost", "c", 90, core.StatusSold, "2023-10-26"),
	}

	empty := CategoryTotals(records, "Leopard")
	assert.True(t, empty.Profit.IsZero())
	assert.Equal(t, 0, empty.Count)

	got := CategoryBreakdown(categories, records)
	require.Len(t, got, 3)
	assert.Equal(t, "Cyborg", got[0].Name)
	assert.Equal(t, "450", got[0].Profit.String())
	assert.Equal(t, 2, got[0].Count)
	assert.True(t, got[0].Known)
	assert.Equal(t, "Leopard", got[1].Name)
	assert.Equal(t, "Ghost", got[2].Name)
	assert.False(t, got[2].Known)
}

func TestOverviewAndDay(t *testing.T) {
	snap := core.Snapshot{
		Categories: []core.Category{{ID: "1", Name: "Cyborg"}},
		Records: []core.Record{
			rec("1", "Cyborg", "a", 450, core.StatusSold, "2023-10-25"),
			rec("2", "Cyborg", "b", 320, core.StatusAvailable, "2023-10-25"),
			rec("3", "Cyborg", "c", 100, core.StatusSold, "2023-10-26"),
		},
		Expenses: []core.Expense{exp("1", 500, "2023-10-25"), exp("2", 200, "2023-10-25")},
	}

	o := Overview(snap)
	assert.Equal(t, "550", o.Profit.String())
	assert.Equal(t, "700", o.Expenses.String())
	assert.Equal(t, "-150", o.Net.String())
	assert.Equal(t, 3, o.RecordCount)
	assert.Equal(t, 2, o.SoldCount)

	d := Day(snap, "2023-10-25")
	assert.Equal(t, "450", d.Profit.String())
	assert.Len(t, d.Records, 2)
	assert.Len(t, d.Expenses, 2)
	assert.Equal(t, "-250", d.Net.Net.String())
	require.Len(t, d.Categories, 1)
	assert.Equal(t, "550", d.Categories[0].Profit.String())

	none := Day(snap, "2020-01-01")
	assert.Empty(t, none.Records)
	assert.NotNil(t, none.Records)
	assert.True(t, none.Profit.IsZero())
}

func TestSearchCategory(t *testing.T) {
	records := []core.Record{
		rec("1", "Cyborg", "KATW63erct25", 0, core.StatusSold, "2023-10-25"),
		rec("2", "Cyborg", "bohf40", 0, core.StatusAvailable, "2023-10-25"),
		rec("3", "Dragon", "katw-dragon", 0, core.StatusAvailable, "2023-10-25"),
	}

	got := SearchCategory(records, "Cyborg", "katw")
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
	assert.Len(t, SearchCategory(records, "Cyborg", ""), 2)
	assert.Empty(t, SearchCategory(records, "Nope", ""))
}

func TestLabels(t *testing.T) {
	assert.Equal(t, language.Thai, MatchLanguage("th-TH,th;q=0.9"))
	assert.Equal(t, language.English, MatchLanguage(""))
	assert.Equal(t, language.English, MatchLanguage("de"))
	assert.Equal(t, "ตุลาคม 2566", MonthTitle(2023, time.October, language.Thai))
	assert.Equal(t, "October 2023", MonthTitle(2023, time.October, language.English))
	assert.Equal(t, "ต.ค.", MonthLabel(time.October, language.MustParse("th-TH")))
}
