package timeutil_test

import (
	"testing"
	"time"

	"github.com/snaplink/snaplink-api/internal/pkg/timeutil"
)

func at(h, m int) time.Time {
	return time.Date(2025, 6, 2, h, m, 0, 0, time.UTC)
}

func TestOverlapsHalfOpen(t *testing.T) {
	cases := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     time.Time
		want                           bool
	}{
		{"identical", at(10, 0), at(12, 0), at(10, 0), at(12, 0), true},
		{"contained", at(10, 0), at(12, 0), at(10, 30), at(11, 0), true},
		{"partial", at(10, 0), at(12, 0), at(11, 0), at(13, 0), true},
		{"touching end to start", at(10, 0), at(12, 0), at(12, 0), at(13, 0), false},
		{"touching start to end", at(12, 0), at(13, 0), at(10, 0), at(12, 0), false},
		{"disjoint", at(8, 0), at(9, 0), at(10, 0), at(11, 0), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := timeutil.Overlaps(tc.aStart, tc.aEnd, tc.bStart, tc.bEnd)
			if got != tc.want {
				t.Fatalf("Overlaps = %v, want %v", got, tc.want)
			}
			// overlap is symmetric
			if timeutil.Overlaps(tc.bStart, tc.bEnd, tc.aStart, tc.aEnd) != tc.want {
				t.Fatalf("Overlaps not symmetric for %s", tc.name)
			}
		})
	}
}

func TestSubtractMiddle(t *testing.T) {
	slot := timeutil.Interval{Start: at(9, 0), End: at(17, 0)}
	busy := []timeutil.Interval{{Start: at(10, 0), End: at(12, 0)}}

	free := timeutil.Subtract(slot, busy)
	if len(free) != 2 {
		t.Fatalf("expected 2 free intervals, got %d", len(free))
	}
	if !free[0].Start.Equal(at(9, 0)) || !free[0].End.Equal(at(10, 0)) {
		t.Fatalf("unexpected first free interval: %v", free[0])
	}
	if !free[1].Start.Equal(at(12, 0)) || !free[1].End.Equal(at(17, 0)) {
		t.Fatalf("unexpected second free interval: %v", free[1])
	}
}

func TestSubtractOverlappingBusy(t *testing.T) {
	slot := timeutil.Interval{Start: at(9, 0), End: at(17, 0)}
	busy := []timeutil.Interval{
		{Start: at(10, 0), End: at(12, 0)},
		{Start: at(11, 0), End: at(13, 0)},
		{Start: at(16, 30), End: at(18, 0)}, // extends past the slot
	}

	free := timeutil.Subtract(slot, busy)
	if len(free) != 2 {
		t.Fatalf("expected 2 free intervals, got %d: %v", len(free), free)
	}
	if !free[1].Start.Equal(at(13, 0)) || !free[1].End.Equal(at(16, 30)) {
		t.Fatalf("unexpected second free interval: %v", free[1])
	}
}

func TestSubtractNoBusy(t *testing.T) {
	slot := timeutil.Interval{Start: at(9, 0), End: at(17, 0)}
	free := timeutil.Subtract(slot, nil)
	if len(free) != 1 || !free[0].Start.Equal(slot.Start) || !free[0].End.Equal(slot.End) {
		t.Fatalf("expected the whole slot back, got %v", free)
	}
}

func TestSubtractFullyCovered(t *testing.T) {
	slot := timeutil.Interval{Start: at(9, 0), End: at(17, 0)}
	busy := []timeutil.Interval{{Start: at(8, 0), End: at(18, 0)}}
	if free := timeutil.Subtract(slot, busy); len(free) != 0 {
		t.Fatalf("expected no free intervals, got %v", free)
	}
}

func TestParseClock(t *testing.T) {
	m, err := timeutil.ParseClock("09:30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m != 570 {
		t.Fatalf("expected 570 minutes, got %d", m)
	}

	// A slot may close exactly at midnight.
	m, err = timeutil.ParseClock("24:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m != 1440 {
		t.Fatalf("expected 1440 minutes, got %d", m)
	}

	for _, bad := range []string{"25:00", "24:30", "09:61", "9", "", "ab:cd"} {
		if _, err := timeutil.ParseClock(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}

	if got := timeutil.FormatClock(570); got != "09:30" {
		t.Fatalf("FormatClock = %q", got)
	}
}

func TestAtDate(t *testing.T) {
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	got := timeutil.AtDate(date, 570)
	if !got.Equal(at(9, 30)) {
		t.Fatalf("AtDate = %v", got)
	}
}
