package core

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Inputs are what callers submit from forms. Required-field checks live here,
// at the caller boundary; the repository stores whatever it is given.
type (
	CategoryInput struct {
		Name     string `json:"name" validate:"required"`
		ImageURL string `json:"imageUrl" validate:"required"`
	}

	RecordInput struct {
		Category string          `json:"category" validate:"required"`
		Name     string          `json:"name" validate:"required"`
		Details  string          `json:"details"`
		Profit   decimal.Decimal `json:"profit" validate:"gte=0"`
		Status   Status          `json:"status" validate:"omitempty,oneof=SOLD AVAILABLE"`
	}

	// RecordBatchInput is the bulk add form: one name per line, all other
	// fields shared by every created record.
	RecordBatchInput struct {
		Category string          `json:"category" validate:"required"`
		Names    []string        `json:"names" validate:"required,min=1,dive,required"`
		Details  string          `json:"details"`
		Profit   decimal.Decimal `json:"profit" validate:"gte=0"`
	}

	ExpenseInput struct {
		Title  string          `json:"title" validate:"required"`
		Amount decimal.Decimal `json:"amount" validate:"gte=0"`
	}
)

var ErrInvalidInput = errors.New("invalid input")

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		validate.RegisterCustomTypeFunc(func(v reflect.Value) any {
			d, ok := v.Interface().(decimal.Decimal)
			if !ok {
				return nil
			}
			f, _ := d.Float64()
			return f
		}, decimal.Decimal{})
	})
	return validate
}

// Validate checks an input struct and returns an error wrapping ErrInvalidInput
// that names every failing field.
func Validate(v any) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(msgs, "; "))
}

// SplitNames turns the multi-line names field into one trimmed name per
// non-empty line.
func SplitNames(text string) []string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

// Records expands the batch into one AVAILABLE record input per name.
func (b RecordBatchInput) Records() []RecordInput {
	out := make([]RecordInput, 0, len(b.Names))
	for _, name := range b.Names {
		out = append(out, RecordInput{
			Category: b.Category,
			Name:     strings.TrimSpace(name),
			Details:  b.Details,
			Profit:   b.Profit,
			Status:   StatusAvailable,
		})
	}
	return out
}
