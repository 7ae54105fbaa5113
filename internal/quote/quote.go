// Package quote looks up market prices for the instruments the converter
// offers and converts amounts into the reference currency.
package quote

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Instrument string

const (
	USDT Instrument = "USDT"
	BTC  Instrument = "BTC"
	LTC  Instrument = "LTC"
)

var geckoIDs = map[Instrument]string{
	USDT: "tether",
	BTC:  "bitcoin",
	LTC:  "litecoin",
}

var (
	ErrUnknownInstrument = errors.New("unknown instrument")
	ErrNoPrice           = errors.New("no price in response")
	ErrSuperseded        = errors.New("quote request superseded")
)

// DefaultRate is the rate shown before any quote has been fetched.
var DefaultRate = decimal.RequireFromString("36.50")

// Instruments returns the supported instruments in display order.
func Instruments() []Instrument {
	return []Instrument{USDT, BTC, LTC}
}

// ParseInstrument accepts a symbol in any case.
func ParseInstrument(s string) (Instrument, error) {
	in := Instrument(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := geckoIDs[in]; !ok {
		return "", ErrUnknownInstrument
	}
	return in, nil
}

// GeckoID is the market data id of the instrument, empty when unsupported.
func (i Instrument) GeckoID() string {
	return geckoIDs[i]
}

type Point struct {
	Time  time.Time       `json:"time"`
	Price decimal.Decimal `json:"price"`
}

// Quote is a spot price in the reference currency with its 24h change in
// percent and a trailing daily price history.
type Quote struct {
	Instrument Instrument      `json:"instrument"`
	Spot       decimal.Decimal `json:"spot"`
	Change24h  decimal.Decimal `json:"change24h"`
	History    []Point         `json:"history"`
	FetchedAt  time.Time       `json:"fetchedAt"`
	Stale      bool            `json:"stale"`
}

// Provider fetches a quote from a market data source.
type Provider interface {
	Quote(ctx context.Context, in Instrument) (Quote, error)
}

// Rate returns the spot price, or DefaultRate when the quote carries none.
func (q Quote) Rate() decimal.Decimal {
	if q.Spot.IsPositive() {
		return q.Spot
	}
	return DefaultRate
}

// Convert multiplies amount by rate.
func Convert(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate)
}
