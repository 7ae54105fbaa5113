package core

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidateInputs(t *testing.T) {
	cases := []struct {
		name string
		in   any
		ok   bool
	}{
		{"category ok", CategoryInput{Name: "Cyborg", ImageURL: "https://picsum.photos/seed/c/400/300"}, true},
		{"category missing image", CategoryInput{Name: "Cyborg"}, false},
		{"record ok", RecordInput{Category: "Cyborg", Name: "acc", Profit: decimal.NewFromInt(10)}, true},
		{"record negative profit", RecordInput{Category: "Cyborg", Name: "acc", Profit: decimal.NewFromInt(-1)}, false},
		{"record bad status", RecordInput{Category: "Cyborg", Name: "acc", Status: "LOST"}, false},
		{"batch ok", RecordBatchInput{Category: "Cyborg", Names: []string{"a", "b"}, Profit: decimal.NewFromInt(1)}, true},
		{"batch no names", RecordBatchInput{Category: "Cyborg", Profit: decimal.NewFromInt(1)}, false},
		{"batch blank name", RecordBatchInput{Category: "Cyborg", Names: []string{"a", ""}}, false},
		{"expense ok", ExpenseInput{Title: "ads", Amount: decimal.NewFromInt(500)}, true},
		{"expense zero", ExpenseInput{Title: "ads"}, true},
		{"expense negative", ExpenseInput{Title: "ads", Amount: decimal.NewFromInt(-1)}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.in)
			if tc.ok && err != nil {
				t.Fatalf("expected ok, got %v", err)
			}
			if !tc.ok && !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestValidateNamesJSONField(t *testing.T) {
	err := Validate(CategoryInput{})
	if err == nil || !strings.Contains(err.Error(), "imageUrl") {
		t.Fatalf("expected json field name in error, got %v", err)
	}
}

func TestSplitNamesAndBatchRecords(t *testing.T) {
	names := SplitNames("  a1:pw \r\n\n b2:pw\n   \n")
	if len(names) != 2 || names[0] != "a1:pw" || names[1] != "b2:pw" {
		t.Fatalf("unexpected names: %q", names)
	}
	recs := RecordBatchInput{Category: "Dragon", Names: names, Details: "V3", Profit: decimal.NewFromInt(300)}.Records()
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	for _, r := range recs {
		if r.Status != StatusAvailable || r.Category != "Dragon" || r.Details != "V3" || !r.Profit.Equal(decimal.NewFromInt(300)) {
			t.Fatalf("unexpected record input: %+v", r)
		}
	}
}
