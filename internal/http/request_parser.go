package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"

	"idledger/internal/aggregate"
	"idledger/internal/core"
	"idledger/internal/log"
	"idledger/internal/quote"
	"idledger/internal/repository"
)

const maxBodyBytes = 1 << 20

// errBadRequest marks malformed requests, as opposed to well-formed but
// invalid input which wraps core.ErrInvalidInput.
var errBadRequest = errors.New("bad request")

// errConflict marks input that collides with stored state.
var errConflict = errors.New("conflict")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// decodeJSON reads a single JSON value from the body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest("empty request body")
		}
		return badRequest("malformed JSON: %v", err)
	}
	if dec.More() {
		return badRequest("unexpected data after JSON body")
	}
	return nil
}

// decodeValid decodes the body and runs struct validation on it.
func decodeValid(w http.ResponseWriter, r *http.Request, dst any) error {
	if err := decodeJSON(w, r, dst); err != nil {
		return err
	}
	return core.Validate(dst)
}

// idsRequest is the body of every bulk record route.
type idsRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,required"`
}

type bulkUpdateRequest struct {
	IDs   []string         `json:"ids" validate:"required,min=1,dive,required"`
	Patch core.RecordPatch `json:"patch"`
}

// batchRequest accepts names either as a list or as the raw multi-line text
// of the bulk add form.
type batchRequest struct {
	core.RecordBatchInput
	NamesText string `json:"namesText"`
}

// input trims every name and drops blank ones, from either source, so an
// all-blank batch fails validation instead of creating nameless records.
func (b batchRequest) input() core.RecordBatchInput {
	in := b.RecordBatchInput
	names := make([]string, 0, len(in.Names))
	for _, n := range in.Names {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	in.Names = append(names, core.SplitNames(b.NamesText)...)
	return in
}

// Patches may omit any field, but a present required field may not be blanked.
func validateRecordPatch(p core.RecordPatch) error {
	var msgs []string
	if p.Category.Set && strings.TrimSpace(p.Category.Value) == "" {
		msgs = append(msgs, "category failed required")
	}
	if p.Name.Set && strings.TrimSpace(p.Name.Value) == "" {
		msgs = append(msgs, "name failed required")
	}
	if p.Profit.Set && p.Profit.Value.IsNegative() {
		msgs = append(msgs, "profit failed gte")
	}
	if p.Status.Set && !p.Status.Value.Valid() {
		msgs = append(msgs, "status failed oneof")
	}
	return patchError(msgs)
}

func validateCategoryPatch(p core.CategoryPatch) error {
	var msgs []string
	if p.Name.Set && strings.TrimSpace(p.Name.Value) == "" {
		msgs = append(msgs, "name failed required")
	}
	if p.ImageURL.Set && strings.TrimSpace(p.ImageURL.Value) == "" {
		msgs = append(msgs, "imageUrl failed required")
	}
	return patchError(msgs)
}

func validateExpensePatch(p core.ExpensePatch) error {
	var msgs []string
	if p.Title.Set && strings.TrimSpace(p.Title.Value) == "" {
		msgs = append(msgs, "title failed required")
	}
	if p.Amount.Set && p.Amount.Value.IsNegative() {
		msgs = append(msgs, "amount failed gte")
	}
	return patchError(msgs)
}

func patchError(msgs []string) error {
	if len(msgs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", core.ErrInvalidInput, strings.Join(msgs, "; "))
}

// parseMonthParams reads year and month, defaulting each to the current one.
func parseMonthParams(query url.Values, now time.Time) (int, time.Month, error) {
	year, month := now.Year(), now.Month()
	if v := strings.TrimSpace(query.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1 || y > 9999 {
			return 0, 0, badRequest("invalid year %q", v)
		}
		year = y
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			return 0, 0, badRequest("invalid month %q", v)
		}
		month = time.Month(m)
	}
	return year, month, nil
}

// parseMonthKey parses a YYYY-MM month key.
func parseMonthKey(s string) (time.Time, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return time.Time{}, badRequest("invalid month %q, want YYYY-MM", s)
	}
	return t, nil
}

// parseIntParam reads an optional integer query parameter bounded to [lo, hi].
func parseIntParam(query url.Values, key string, def, lo, hi int) (int, error) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < lo || n > hi {
		return 0, badRequest("%s must be an integer between %d and %d", key, lo, hi)
	}
	return n, nil
}

// requestLanguage prefers an explicit lang parameter over Accept-Language.
func requestLanguage(r *http.Request) language.Tag {
	if lang := r.URL.Query().Get("lang"); lang != "" {
		return aggregate.MatchLanguage(lang)
	}
	return aggregate.MatchLanguage(r.Header.Get("Accept-Language"))
}

// writeError maps an error to its HTTP status and logs server-side failures.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, op string) {
	switch {
	case errors.Is(err, errBadRequest):
		BadRequestError(err.Error()).Write(w)
	case errors.Is(err, core.ErrInvalidInput), errors.Is(err, core.ErrInvalidAmount):
		UnprocessableEntityError(err.Error()).Write(w)
	case errors.Is(err, errConflict):
		ErrorResponse(http.StatusConflict, err.Error()).Write(w)
	case errors.Is(err, quote.ErrUnknownInstrument):
		NotFoundError(err.Error()).Write(w)
	case errors.Is(err, quote.ErrSuperseded):
		ErrorResponse(http.StatusConflict, err.Error()).Write(w)
	case errors.Is(err, context.Canceled):
		// client went away; nothing useful to send
		w.WriteHeader(499)
	default:
		log.LogError(r.Context(), log.FromContext(r.Context()), "Request failed", err, op,
			log.NewFields().WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent")))
		InternalServerError("internal error").Write(w)
	}
}

// logMutation records a successful write at info level.
func logMutation(r *http.Request, op repository.Op, c core.Collection, ids []string) {
	fields := log.NewFields().WithOperation(string(op)).WithMutation(c.String(), ids)
	log.FromContext(r.Context()).InfoContext(r.Context(), "Ledger updated", fields.ToSlice()...)
}
