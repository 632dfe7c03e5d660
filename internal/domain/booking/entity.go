package booking

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// CanTransition encodes the booking lifecycle. Completed and Cancelled
// are terminal.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusConfirmed || to == StatusCancelled
	case StatusConfirmed:
		return to == StatusCompleted || to == StatusCancelled
	default:
		return false
	}
}

// Booking is a photo session reservation. LocationID is null when the
// shoot happens at an external venue the platform does not manage.
// The price split is frozen at creation time so later rate changes
// never affect an already-priced booking.
type Booking struct {
	ID              uuid.UUID      `db:"id" json:"id"`
	CustomerID      uuid.UUID      `db:"customer_id" json:"customer_id"`
	PhotographerID  uuid.UUID      `db:"photographer_id" json:"photographer_id"`
	LocationID      uuid.NullUUID  `db:"location_id" json:"location_id"`
	StartTime       time.Time      `db:"start_time" json:"start_time"`
	EndTime         time.Time      `db:"end_time" json:"end_time"`
	Status          Status         `db:"status" json:"status"`
	TotalPrice      int64          `db:"total_price" json:"total_price"`
	PlatformFee     int64          `db:"platform_fee" json:"platform_fee"`
	LocationFee     int64          `db:"location_fee" json:"location_fee"`
	Payout          int64          `db:"payout" json:"payout"`
	SpecialRequests sql.NullString `db:"special_requests" json:"special_requests"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}
