package core

import "github.com/shopspring/decimal"

// Granularity selects how a date field is bucketed.
type Granularity int

const (
	Day   Granularity = iota // exact YYYY-MM-DD
	Month                    // YYYY-MM prefix
	Year                     // YYYY prefix
)

// Bucket summarizes records sharing one bucket key. SoldCount counts SOLD
// records only; TotalCount counts every record in the bucket.
type Bucket struct {
	Key        string          `json:"key"`
	Profit     decimal.Decimal `json:"profit"`
	SoldCount  int             `json:"soldCount"`
	TotalCount int             `json:"totalCount"`
}

// CategoryTotal is the rollup of records sharing a category name. Known is
// false for dangling names that no Category entity carries anymore.
type CategoryTotal struct {
	Name   string          `json:"name"`
	Profit decimal.Decimal `json:"profit"`
	Count  int             `json:"count"`
	Known  bool            `json:"known"`
}

// MonthPoint is one entry of a trailing month series.
type MonthPoint struct {
	Key    string          `json:"key"`
	Label  string          `json:"label"`
	Profit decimal.Decimal `json:"profit"`
}

// NetFigure is gross sold profit minus expenses for one period.
type NetFigure struct {
	Key      string          `json:"key"`
	Profit   decimal.Decimal `json:"profit"`
	Expenses decimal.Decimal `json:"expenses"`
	Net      decimal.Decimal `json:"net"`
}

// CalendarDay is one cell of a month calendar.
type CalendarDay struct {
	Date string `json:"date"`
	Day  int    `json:"day"`
	Bucket
}

// Overview is the all-time dashboard summary.
type Overview struct {
	Profit      decimal.Decimal `json:"profit"`
	Expenses    decimal.Decimal `json:"expenses"`
	Net         decimal.Decimal `json:"net"`
	RecordCount int             `json:"recordCount"`
	SoldCount   int             `json:"soldCount"`
}

// DayDetail bundles one day's bucket with the entities behind it.
type DayDetail struct {
	Bucket
	Net        NetFigure       `json:"net"`
	Categories []CategoryTotal `json:"categories"`
	Records    []Record        `json:"records"`
	Expenses   []Expense       `json:"expenses"`
}
