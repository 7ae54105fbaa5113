// Package core provides the ledger's data model.
//
// This file contains helpers for parsing monetary amounts typed by a user.
// Amounts are carried as decimal.Decimal so sums never accumulate binary
// floating point error.
package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

// ParseAmount converts a user supplied decimal string to an amount.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted.
// Negative values, signs and thousands separators are rejected.
//
// Examples:
//
//	ParseAmount("450")    -> 450, nil
//	ParseAmount("36,50")  -> 36.5, nil
//	ParseAmount("-1")     -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.Count(s, ".") > 1 || strings.ContainsAny(s, "eE") {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// Sum adds amounts in order.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
