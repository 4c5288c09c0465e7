package core

import (
	"testing"
	"time"
)

func TestIsValidDate(t *testing.T) {
	cases := []struct {
		in    string
		valid bool
	}{
		{"31/12/2025", true},
		{"01/01/2024", true},
		{"29/02/2024", true},  // leap year
		{"29/02/2023", false}, // not a leap year
		{"29/02/2000", true},  // divisible by 400
		{"29/02/1900", false}, // divisible by 100 only
		{"31/02/2024", false},
		{"31/04/2024", false},
		{"32/13/9999", false},
		{"00/01/2020", false},
		{"01/00/2020", false},
		{"01/01/0000", false},
		{"31/12", false},
		{"31/12/25", false},
		{"2025-12-31", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := IsValidDate(tc.in); got != tc.valid {
			t.Fatalf("IsValidDate(%q) = %v, want %v", tc.in, got, tc.valid)
		}
	}
}

func TestDateSortKey(t *testing.T) {
	cases := []struct {
		in  string
		key int
		ok  bool
	}{
		{"01/01/2024", 20240101, true},
		{"31/12/2025", 20251231, true},
		{"29/02/2024", 20240229, true},
		{"31/02/2024", 0, false},
		{"31/12", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		key, ok := DateSortKey(tc.in)
		if ok != tc.ok || key != tc.key {
			t.Fatalf("DateSortKey(%q) = (%d, %v), want (%d, %v)", tc.in, key, ok, tc.key, tc.ok)
		}
	}
}

// The numeric encoding must order exactly like the calendar.
func TestDateSortKeyMonotonic(t *testing.T) {
	ordered := []string{
		"01/01/2024",
		"02/01/2024",
		"31/01/2024",
		"01/02/2024",
		"29/02/2024",
		"01/03/2024",
		"31/12/2024",
		"01/01/2025",
	}
	prev := -1
	for _, d := range ordered {
		key, ok := DateSortKey(d)
		if !ok {
			t.Fatalf("expected %q to be valid", d)
		}
		if key <= prev {
			t.Fatalf("%q key %d not greater than previous %d", d, key, prev)
		}
		prev = key
	}
}

func TestMonthKeys(t *testing.T) {
	if !IsMonthKey("2025-03") {
		t.Fatal("expected 2025-03 to be a month key")
	}
	for _, bad := range []string{"2025-3", "202503", "25-03", "2025-03-01", ""} {
		if IsMonthKey(bad) {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}

	year, month, ok := ParseMonthKey("2025-03")
	if !ok || year != 2025 || month != 3 {
		t.Fatalf("ParseMonthKey = (%d, %d, %v)", year, month, ok)
	}
	if _, _, ok := ParseMonthKey("0000-00"); ok {
		t.Fatal("expected zero key to be rejected")
	}
}

func TestNextMonthKey(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		in  string
		out string
	}{
		{"2025-01", "2025-02"},
		{"2025-11", "2025-12"},
		{"2025-12", "2026-01"},
		{"bogus", "2025-06"}, // malformed falls back to the current month
	}
	for _, tc := range cases {
		if got := NextMonthKey(tc.in, now); got != tc.out {
			t.Fatalf("NextMonthKey(%q) = %q, want %q", tc.in, got, tc.out)
		}
	}
}
