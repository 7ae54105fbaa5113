package http

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"idledger/internal/core"
	"idledger/internal/log"
	"idledger/internal/quote"
)

const (
	rateManual  = "manual"
	rateMarket  = "market"
	rateDefault = "default"
)

type conversion struct {
	Instrument quote.Instrument `json:"instrument"`
	Amount     decimal.Decimal  `json:"amount"`
	Rate       decimal.Decimal  `json:"rate"`
	Result     decimal.Decimal  `json:"result"`
	Source     string           `json:"source"`
	Stale      bool             `json:"stale"`
}

func (s *Server) serviceUnavailable(w http.ResponseWriter) {
	ErrorResponse(http.StatusServiceUnavailable, "price quotes are not configured").Write(w)
}

// handleQuote selects the instrument in the converter and returns its quote.
func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	if s.quotes == nil {
		s.serviceUnavailable(w)
		return
	}
	in, err := quote.ParseInstrument(r.PathValue("instrument"))
	if err == nil {
		var q quote.Quote
		if q, err = s.quotes.Select(r.Context(), in); err == nil {
			OK(w, q)
			return
		}
	}
	s.writeError(w, r, err, log.OpFetch)
}

// handleConvert multiplies amount by a rate: the explicit rate parameter
// when given, else the instrument's market spot, else the default rate.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	in, err := quote.ParseInstrument(strings.TrimSpace(q.Get("instrument")))
	if err != nil {
		s.writeError(w, r, err, "convert")
		return
	}
	amount, err := core.ParseAmount(q.Get("amount"))
	if err != nil {
		s.writeError(w, r, err, "convert")
		return
	}

	c := conversion{Instrument: in, Amount: amount, Rate: quote.DefaultRate, Source: rateDefault}
	switch {
	case q.Get("rate") != "":
		if c.Rate, err = core.ParseAmount(q.Get("rate")); err != nil {
			s.writeError(w, r, err, "convert")
			return
		}
		c.Source = rateManual
	case s.quotes != nil:
		got, err := s.quotes.Quote(r.Context(), in)
		if err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Falling back to default rate",
				log.FieldInstrument, string(in),
				log.FieldError, err.Error())
			break
		}
		c.Rate, c.Source, c.Stale = got.Rate(), rateMarket, got.Stale
	}
	c.Result = quote.Convert(c.Amount, c.Rate)
	OK(w, c)
}
