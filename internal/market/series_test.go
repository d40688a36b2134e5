package market

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

// seq builds a daily series of consecutive weekdays starting at start with
// the given closes.
func seq(start time.Time, closes ...float64) Series {
	s := make(Series, 0, len(closes))
	d := start
	for _, c := range closes {
		for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			d = d.AddDate(0, 0, 1)
		}
		s = append(s, Bar{Date: d, Close: c})
		d = d.AddDate(0, 0, 1)
	}
	return s
}

func TestMAValue(t *testing.T) {
	s := seq(day(2024, 1, 1), 10, 11, 12, 13, 14)
	last := s[len(s)-1].Date

	ma, ok := s.MAValue(last, 5, 0)
	if !ok {
		t.Fatal("MAValue(5, 0) should have enough history")
	}
	if ma != 12 {
		t.Errorf("MA5 = %v, want 12", ma)
	}

	ma, ok = s.MAValue(last, 3, 0)
	if !ok || ma != 13 {
		t.Errorf("MA3 = %v (ok=%v), want 13", ma, ok)
	}

	// Offset 1 shifts the window one bar back.
	ma, ok = s.MAValue(last, 3, 1)
	if !ok || ma != 12 {
		t.Errorf("MA3 offset 1 = %v (ok=%v), want 12", ma, ok)
	}

	if _, ok := s.MAValue(last, 6, 0); ok {
		t.Error("MAValue(6, 0) should report insufficient history")
	}
	if _, ok := s.MAValue(last, 5, 1); ok {
		t.Error("MAValue(5, 1) should report insufficient history")
	}
}

func TestClosePrice(t *testing.T) {
	s := seq(day(2024, 1, 1), 10, 11, 12)
	last := s[len(s)-1].Date

	if c, ok := s.ClosePrice(last, 0); !ok || c != 12 {
		t.Errorf("ClosePrice(0) = %v (ok=%v), want 12", c, ok)
	}
	if c, ok := s.ClosePrice(last, 2); !ok || c != 10 {
		t.Errorf("ClosePrice(2) = %v (ok=%v), want 10", c, ok)
	}
	if _, ok := s.ClosePrice(last, 3); ok {
		t.Error("ClosePrice(3) should run out of history")
	}

	// A date before the series starts resolves to no bar.
	if _, ok := s.ClosePrice(day(2023, 12, 1), 0); ok {
		t.Error("ClosePrice before series start should fail")
	}
}

func TestPctChange(t *testing.T) {
	s := Series{
		{Date: day(2024, 1, 2), Close: 100},
		{Date: day(2024, 1, 3), Close: 105, PctChg: 5},
	}
	if pct, ok := s.PctChange(day(2024, 1, 3)); !ok || pct != 5 {
		t.Errorf("PctChange = %v (ok=%v), want 5", pct, ok)
	}

	// Without a stored figure the change is derived from the previous close.
	derived := Series{
		{Date: day(2024, 1, 2), Close: 100},
		{Date: day(2024, 1, 3), Close: 98},
	}
	if pct, ok := derived.PctChange(day(2024, 1, 3)); !ok || pct != -2 {
		t.Errorf("derived PctChange = %v (ok=%v), want -2", pct, ok)
	}
}

func TestIsUpToDate(t *testing.T) {
	// 2024-01-12 is a Friday, 2024-01-13/14 the following weekend.
	friday := day(2024, 1, 12)
	thursday := day(2024, 1, 11)

	tests := []struct {
		name string
		last time.Time
		now  time.Time
		want bool
	}{
		{"weekend with friday data", friday, day(2024, 1, 13).Add(10 * time.Hour), true},
		{"weekend with stale data", thursday, day(2024, 1, 14).Add(10 * time.Hour), false},
		{"weekday after close needs today", day(2024, 1, 15), day(2024, 1, 15).Add(16 * time.Hour), true},
		{"weekday after close stale", friday, day(2024, 1, 15).Add(16 * time.Hour), false},
		{"weekday before close accepts yesterday", day(2024, 1, 15), day(2024, 1, 16).Add(10 * time.Hour), true},
		{"monday before close accepts last friday", friday, day(2024, 1, 15).Add(9 * time.Hour), true},
		{"monday before close stale", thursday, day(2024, 1, 15).Add(9 * time.Hour), false},
		{"empty", time.Time{}, day(2024, 1, 15), false},
	}

	for _, tt := range tests {
		if got := IsUpToDate(tt.last, tt.now); got != tt.want {
			t.Errorf("%s: IsUpToDate = %v, want %v", tt.name, got, tt.want)
		}
	}
}
