package core

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Field is one optional member of a sparse patch. Set distinguishes
// "present in the patch" from "absent, leave unchanged"; a present field
// carrying the zero value is a deliberate overwrite.
type Field[T any] struct {
	Value T
	Set   bool
}

// Some returns a field that is present in the patch.
func Some[T any](v T) Field[T] {
	return Field[T]{Value: v, Set: true}
}

// Apply writes the value into dst when the field is present.
func (f Field[T]) Apply(dst *T) {
	if f.Set {
		*dst = f.Value
	}
}

// UnmarshalJSON marks the field present. A JSON null sets the zero value.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		f.Value = zero
		return nil
	}
	return json.Unmarshal(data, &f.Value)
}

// MarshalJSON emits the value, or null when the field is absent.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Set {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// RecordPatch is applied identically to every record targeted by a bulk update.
// ID and DateAdded are immutable and therefore not patchable.
type RecordPatch struct {
	Category Field[string]          `json:"category"`
	Name     Field[string]          `json:"name"`
	Details  Field[string]          `json:"details"`
	Profit   Field[decimal.Decimal] `json:"profit"`
	Status   Field[Status]          `json:"status"`
}

// Apply returns r with the present fields of p merged in.
func (p RecordPatch) Apply(r Record) Record {
	p.Category.Apply(&r.Category)
	p.Name.Apply(&r.Name)
	p.Details.Apply(&r.Details)
	p.Profit.Apply(&r.Profit)
	p.Status.Apply(&r.Status)
	return r
}

// Empty reports whether no field is present.
func (p RecordPatch) Empty() bool {
	return !p.Category.Set && !p.Name.Set && !p.Details.Set && !p.Profit.Set && !p.Status.Set
}

type CategoryPatch struct {
	Name     Field[string] `json:"name"`
	ImageURL Field[string] `json:"imageUrl"`
}

func (p CategoryPatch) Apply(c Category) Category {
	p.Name.Apply(&c.Name)
	p.ImageURL.Apply(&c.ImageURL)
	return c
}

// ExpensePatch edits title and amount only; the date is never re-stamped.
type ExpensePatch struct {
	Title  Field[string]          `json:"title"`
	Amount Field[decimal.Decimal] `json:"amount"`
}

func (p ExpensePatch) Apply(e Expense) Expense {
	p.Title.Apply(&e.Title)
	p.Amount.Apply(&e.Amount)
	return e
}
