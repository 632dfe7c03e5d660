package availability

import (
	"time"

	"github.com/google/uuid"
)

type SlotStatus string

const (
	SlotStatusActive   SlotStatus = "active"
	SlotStatusDisabled SlotStatus = "disabled"
)

// Slot is a weekly recurring availability window for a photographer.
// Times are minutes from midnight, end exclusive.
type Slot struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	PhotographerID uuid.UUID  `db:"photographer_id" json:"photographer_id"`
	DayOfWeek      int        `db:"day_of_week" json:"day_of_week"`
	StartMin       int        `db:"start_min" json:"start_min"`
	EndMin         int        `db:"end_min" json:"end_min"`
	Status         SlotStatus `db:"status" json:"status"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// DaySchedule is a photographer's calendar for one concrete date,
// partitioned into what they registered, what is already booked, and
// what remains free.
type DaySchedule struct {
	Date       string      `json:"date"`
	Registered []TimeRange `json:"registered"`
	Booked     []TimeRange `json:"booked"`
	Available  []TimeRange `json:"available"`
}

type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
