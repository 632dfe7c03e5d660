package availability

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/snaplink/snaplink-api/internal/pkg/timeutil"
)

// BookedIntervalSource supplies the intervals already taken by
// pending or confirmed bookings. The booking repository implements it.
type BookedIntervalSource interface {
	BookedIntervals(ctx context.Context, photographerID uuid.UUID, from, to time.Time) ([]timeutil.Interval, error)
}

type Service struct {
	repo   *Repository
	booked BookedIntervalSource
}

func NewService(repo *Repository, booked BookedIntervalSource) *Service {
	return &Service{repo: repo, booked: booked}
}

func (s *Service) AddSlot(ctx context.Context, photographerID uuid.UUID, dayOfWeek, startMin, endMin int) (*Slot, error) {
	if err := s.checkWindow(ctx, photographerID, uuid.Nil, dayOfWeek, startMin, endMin); err != nil {
		return nil, err
	}

	slot := &Slot{
		PhotographerID: photographerID,
		DayOfWeek:      dayOfWeek,
		StartMin:       startMin,
		EndMin:         endMin,
		Status:         SlotStatusActive,
	}
	if err := s.repo.Create(ctx, slot); err != nil {
		return nil, err
	}
	return slot, nil
}

func (s *Service) UpdateSlot(ctx context.Context, photographerID, slotID uuid.UUID, dayOfWeek, startMin, endMin int, status SlotStatus) (*Slot, error) {
	slot, err := s.repo.GetByID(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if slot.PhotographerID != photographerID {
		return nil, ErrNotSlotOwner
	}
	if err := s.checkWindow(ctx, photographerID, slotID, dayOfWeek, startMin, endMin); err != nil {
		return nil, err
	}

	slot.DayOfWeek = dayOfWeek
	slot.StartMin = startMin
	slot.EndMin = endMin
	if status != "" {
		slot.Status = status
	}
	if err := s.repo.Update(ctx, slot); err != nil {
		return nil, err
	}
	return slot, nil
}

func (s *Service) DeleteSlot(ctx context.Context, photographerID, slotID uuid.UUID) error {
	slot, err := s.repo.GetByID(ctx, slotID)
	if err != nil {
		return err
	}
	if slot.PhotographerID != photographerID {
		return ErrNotSlotOwner
	}
	return s.repo.Delete(ctx, slotID)
}

func (s *Service) ListSlots(ctx context.Context, photographerID uuid.UUID) ([]*Slot, error) {
	return s.repo.ListByPhotographer(ctx, photographerID)
}

func (s *Service) checkWindow(ctx context.Context, photographerID, selfID uuid.UUID, dayOfWeek, startMin, endMin int) error {
	if startMin < 0 || endMin > 24*60 || startMin >= endMin {
		return ErrInvalidWindow
	}
	existing, err := s.repo.ListByDay(ctx, photographerID, dayOfWeek)
	if err != nil {
		return err
	}
	for _, other := range existing {
		if other.ID == selfID {
			continue
		}
		if startMin < other.EndMin && other.StartMin < endMin {
			return ErrSlotOverlap
		}
	}
	return nil
}

// Schedule builds a photographer's calendar for one date: registered
// windows made concrete, booked intervals clipped against them, and
// whatever is left as free time.
func (s *Service) Schedule(ctx context.Context, photographerID uuid.UUID, date time.Time) (*DaySchedule, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	slots, err := s.repo.ListByDay(ctx, photographerID, int(dayStart.Weekday()))
	if err != nil {
		return nil, err
	}
	booked, err := s.booked.BookedIntervals(ctx, photographerID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	return buildSchedule(dayStart, slots, booked), nil
}

func buildSchedule(dayStart time.Time, slots []*Slot, booked []timeutil.Interval) *DaySchedule {
	schedule := &DaySchedule{
		Date:       dayStart.Format("2006-01-02"),
		Registered: []TimeRange{},
		Booked:     []TimeRange{},
		Available:  []TimeRange{},
	}

	for _, slot := range slots {
		window := timeutil.Interval{
			Start: timeutil.AtDate(dayStart, slot.StartMin),
			End:   timeutil.AtDate(dayStart, slot.EndMin),
		}
		schedule.Registered = append(schedule.Registered, TimeRange{Start: window.Start, End: window.End})

		// A disabled slot stays visible as part of the template but
		// offers no free time.
		if slot.Status == SlotStatusDisabled {
			continue
		}
		for _, free := range timeutil.Subtract(window, booked) {
			schedule.Available = append(schedule.Available, TimeRange{Start: free.Start, End: free.End})
		}
	}

	for _, b := range booked {
		schedule.Booked = append(schedule.Booked, TimeRange{Start: b.Start, End: b.End})
	}
	return schedule
}

// CheckInterval reports whether [start, end) fits entirely inside one
// registered window and clear of existing bookings. The booking
// transaction re-checks conflicts under lock; this answer is advisory.
func (s *Service) CheckInterval(ctx context.Context, photographerID uuid.UUID, start, end time.Time) error {
	if !start.Before(end) {
		return ErrInvalidWindow
	}

	dayStart := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	slots, err := s.repo.ListByDay(ctx, photographerID, int(dayStart.Weekday()))
	if err != nil {
		return err
	}

	covered := false
	for _, slot := range slots {
		if slot.Status == SlotStatusDisabled {
			continue
		}
		windowStart := timeutil.AtDate(dayStart, slot.StartMin)
		windowEnd := timeutil.AtDate(dayStart, slot.EndMin)
		if !start.Before(windowStart) && !end.After(windowEnd) {
			covered = true
			break
		}
	}
	if !covered {
		return ErrOutsideWindows
	}

	booked, err := s.booked.BookedIntervals(ctx, photographerID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return err
	}
	for _, b := range booked {
		if timeutil.Overlaps(start, end, b.Start, b.End) {
			return ErrOutsideWindows
		}
	}
	return nil
}
