package core

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Money fields are stored as plain JSON numbers, never quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

const (
	StatusSold      Status = "SOLD"
	StatusAvailable Status = "AVAILABLE"
)

// Collection names double as the durable storage keys.
const (
	CollectionCategories Collection = "id_categories"
	CollectionRecords    Collection = "id_records"
	CollectionExpenses   Collection = "id_expenses"
)

// DateLayout is the ISO calendar date format used by every date field.
const DateLayout = "2006-01-02"

type (
	Status string

	Collection string

	Category struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		ImageURL string `json:"imageUrl"`
	}

	// Record is one sellable game ID. Category holds the category name, not its id.
	Record struct {
		ID        string          `json:"id"`
		Category  string          `json:"category"`
		Name      string          `json:"name"`
		Details   string          `json:"details"`
		Profit    decimal.Decimal `json:"profit"`
		Status    Status          `json:"status"`
		DateAdded string          `json:"dateAdded"`
	}

	Expense struct {
		ID     string          `json:"id"`
		Title  string          `json:"title"`
		Amount decimal.Decimal `json:"amount"`
		Date   string          `json:"date"`
	}

	// Snapshot is a point-in-time copy of all three collections.
	Snapshot struct {
		Categories []Category
		Records    []Record
		Expenses   []Expense
	}
)

var (
	ErrUnknownCollection = errors.New("unknown collection")
	ErrInvalidDate       = errors.New("invalid ISO calendar date")
)

// Toggle flips between SOLD and AVAILABLE. Anything that is not SOLD becomes SOLD.
func (s Status) Toggle() Status {
	if s == StatusSold {
		return StatusAvailable
	}
	return StatusSold
}

func (s Status) Valid() bool {
	return s == StatusSold || s == StatusAvailable
}

func (c Collection) Valid() bool {
	switch c {
	case CollectionCategories, CollectionRecords, CollectionExpenses:
		return true
	default:
		return false
	}
}

func (c Collection) String() string {
	return string(c)
}

// Collections lists every collection in load order.
func Collections() []Collection {
	return []Collection{CollectionCategories, CollectionRecords, CollectionExpenses}
}

// DateOf formats t as an ISO calendar date in loc (UTC when loc is nil).
func DateOf(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateLayout)
}

// ParseDate parses an ISO calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// ValidDate reports whether s is a well-formed ISO calendar date.
func ValidDate(s string) bool {
	_, err := ParseDate(s)
	return err == nil
}

// MonthKey returns the YYYY-MM bucket key.
func MonthKey(year int, month time.Month) string {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

// Clone returns a snapshot whose slices do not alias s.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Categories: append([]Category(nil), s.Categories...),
		Records:    append([]Record(nil), s.Records...),
		Expenses:   append([]Expense(nil), s.Expenses...),
	}
}
