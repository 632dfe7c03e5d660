package availability

import (
	"testing"
	"time"

	"github.com/snaplink/snaplink-api/internal/pkg/timeutil"
)

func TestBuildSchedulePartitionsDay(t *testing.T) {
	dayStart := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	slots := []*Slot{
		{StartMin: 9 * 60, EndMin: 12 * 60},
		{StartMin: 14 * 60, EndMin: 18 * 60},
	}
	booked := []timeutil.Interval{
		{Start: timeutil.AtDate(dayStart, 10*60), End: timeutil.AtDate(dayStart, 11*60)},
		{Start: timeutil.AtDate(dayStart, 14*60), End: timeutil.AtDate(dayStart, 15*60+30)},
	}

	schedule := buildSchedule(dayStart, slots, booked)

	if schedule.Date != "2026-09-07" {
		t.Fatalf("unexpected date %s", schedule.Date)
	}
	if len(schedule.Registered) != 2 {
		t.Fatalf("expected 2 registered windows, got %d", len(schedule.Registered))
	}
	if len(schedule.Booked) != 2 {
		t.Fatalf("expected 2 booked ranges, got %d", len(schedule.Booked))
	}

	want := []TimeRange{
		{Start: timeutil.AtDate(dayStart, 9*60), End: timeutil.AtDate(dayStart, 10*60)},
		{Start: timeutil.AtDate(dayStart, 11*60), End: timeutil.AtDate(dayStart, 12*60)},
		{Start: timeutil.AtDate(dayStart, 15*60+30), End: timeutil.AtDate(dayStart, 18*60)},
	}
	if len(schedule.Available) != len(want) {
		t.Fatalf("expected %d free ranges, got %d: %+v", len(want), len(schedule.Available), schedule.Available)
	}
	for i, got := range schedule.Available {
		if !got.Start.Equal(want[i].Start) || !got.End.Equal(want[i].End) {
			t.Fatalf("free range %d: got %v-%v, want %v-%v", i, got.Start, got.End, want[i].Start, want[i].End)
		}
	}
}

func TestBuildScheduleFullyBookedSlot(t *testing.T) {
	dayStart := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	slots := []*Slot{{StartMin: 9 * 60, EndMin: 11 * 60}}
	booked := []timeutil.Interval{
		{Start: timeutil.AtDate(dayStart, 9*60), End: timeutil.AtDate(dayStart, 11*60)},
	}

	schedule := buildSchedule(dayStart, slots, booked)
	if len(schedule.Available) != 0 {
		t.Fatalf("expected no free time, got %+v", schedule.Available)
	}
}

func TestBuildScheduleDisabledSlotRegisteredNotAvailable(t *testing.T) {
	dayStart := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	slots := []*Slot{
		{StartMin: 9 * 60, EndMin: 11 * 60, Status: SlotStatusActive},
		{StartMin: 13 * 60, EndMin: 15 * 60, Status: SlotStatusDisabled},
	}

	schedule := buildSchedule(dayStart, slots, nil)

	if len(schedule.Registered) != 2 {
		t.Fatalf("disabled slot must stay registered, got %d windows", len(schedule.Registered))
	}
	if len(schedule.Available) != 1 {
		t.Fatalf("expected only the active slot free, got %+v", schedule.Available)
	}
	if !schedule.Available[0].Start.Equal(timeutil.AtDate(dayStart, 9*60)) ||
		!schedule.Available[0].End.Equal(timeutil.AtDate(dayStart, 11*60)) {
		t.Fatalf("unexpected free range: %+v", schedule.Available[0])
	}
}

func TestBuildScheduleEmptyDay(t *testing.T) {
	dayStart := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	schedule := buildSchedule(dayStart, nil, nil)
	if len(schedule.Registered) != 0 || len(schedule.Booked) != 0 || len(schedule.Available) != 0 {
		t.Fatalf("expected empty schedule, got %+v", schedule)
	}
}
