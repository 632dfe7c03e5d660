package timeutil

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// IsValid reports whether the interval has positive length.
func (i Interval) IsValid() bool {
	return i.End.After(i.Start)
}

// Overlaps reports whether two half-open intervals intersect.
// Touching endpoints ([a,b) and [b,c)) do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// OverlapsInterval is Overlaps on Interval values.
func OverlapsInterval(a, b Interval) bool {
	return Overlaps(a.Start, a.End, b.Start, b.End)
}

// Intersect returns the intersection of a and b and whether it is non-empty.
func Intersect(a, b Interval) (Interval, bool) {
	start := a.Start
	if b.Start.After(start) {
		start = b.Start
	}
	end := a.End
	if b.End.Before(end) {
		end = b.End
	}
	if !end.After(start) {
		return Interval{}, false
	}
	return Interval{Start: start, End: end}, true
}

// Subtract removes every busy interval from slot and returns the uncovered
// remainder in chronological order. Busy intervals may overlap each other
// and may extend past the slot's bounds.
func Subtract(slot Interval, busy []Interval) []Interval {
	if !slot.IsValid() {
		return nil
	}

	clipped := make([]Interval, 0, len(busy))
	for _, b := range busy {
		if iv, ok := Intersect(slot, b); ok {
			clipped = append(clipped, iv)
		}
	}
	if len(clipped) == 0 {
		return []Interval{slot}
	}

	sort.Slice(clipped, func(i, j int) bool {
		return clipped[i].Start.Before(clipped[j].Start)
	})

	var free []Interval
	cursor := slot.Start
	for _, b := range clipped {
		if b.Start.After(cursor) {
			free = append(free, Interval{Start: cursor, End: b.Start})
		}
		if b.End.After(cursor) {
			cursor = b.End
		}
	}
	if slot.End.After(cursor) {
		free = append(free, Interval{Start: cursor, End: slot.End})
	}
	return free
}

// ParseClock parses "HH:MM" into minutes from midnight. "24:00" is
// accepted as the end-of-day boundary for slots closing at midnight.
func ParseClock(s string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 24 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	if h == 24 && m != 0 {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	return h*60 + m, nil
}

// FormatClock renders minutes from midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// AtDate places a minutes-from-midnight clock value on a calendar date,
// in the date's location.
func AtDate(date time.Time, minutes int) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, minutes/60, minutes%60, 0, 0, date.Location())
}

// Minutes returns the interval length in whole minutes.
func (i Interval) Minutes() int64 {
	return int64(i.End.Sub(i.Start) / time.Minute)
}
