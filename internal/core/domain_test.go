package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestStatusToggle(t *testing.T) {
	cases := []struct {
		in, out Status
	}{
		{StatusSold, StatusAvailable},
		{StatusAvailable, StatusSold},
		{Status("RESERVED"), StatusSold},
	}
	for _, tc := range cases {
		if got := tc.in.Toggle(); got != tc.out {
			t.Fatalf("%q.Toggle() = %q, want %q", tc.in, got, tc.out)
		}
		if !tc.in.Toggle().Valid() {
			t.Fatalf("%q.Toggle() produced invalid status", tc.in)
		}
	}
}

func TestValidDate(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"2023-10-25", true},
		{"2024-02-29", true},
		{"2023-02-29", false},
		{"2023-13-01", false},
		{"2023-10", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := ValidDate(tc.in); got != tc.ok {
			t.Fatalf("ValidDate(%q) = %v, want %v", tc.in, got, tc.ok)
		}
	}
}

func TestDateOfUsesLocation(t *testing.T) {
	ts := time.Date(2023, 10, 25, 20, 0, 0, 0, time.UTC)
	if got := DateOf(ts, nil); got != "2023-10-25" {
		t.Fatalf("utc date = %s", got)
	}
	bkk := time.FixedZone("ICT", 7*3600)
	if got := DateOf(ts, bkk); got != "2023-10-26" {
		t.Fatalf("bangkok date = %s", got)
	}
}

func TestMonthKey(t *testing.T) {
	if got := MonthKey(2023, time.February); got != "2023-02" {
		t.Fatalf("MonthKey = %s", got)
	}
}

func TestRecordJSONShape(t *testing.T) {
	r := Record{
		ID:        "1",
		Category:  "Cyborg",
		Name:      "katw63erct25:kl2pc97640l",
		Details:   "V4 Full",
		Profit:    decimal.NewFromInt(450),
		Status:    StatusSold,
		DateAdded: "2023-10-25",
	}
	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"id":"1","category":"Cyborg","name":"katw63erct25:kl2pc97640l","details":"V4 Full","profit":450,"status":"SOLD","dateAdded":"2023-10-25"}`
	if string(b) != want {
		t.Fatalf("unexpected json\nwant: %s\ngot:  %s", want, b)
	}

	var back Record
	if err := json.Unmarshal([]byte(want), &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Profit.Equal(r.Profit) || back.Status != StatusSold {
		t.Fatalf("unexpected record: %+v", back)
	}
}

func TestSnapshotCloneDoesNotAlias(t *testing.T) {
	s := Snapshot{Records: []Record{{ID: "1"}}}
	c := s.Clone()
	c.Records[0].ID = "2"
	if s.Records[0].ID != "1" {
		t.Fatalf("clone aliases original")
	}
}
