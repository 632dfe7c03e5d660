package subscription

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusActive         Status = "active"
	StatusExpired        Status = "expired"
	StatusCanceled       Status = "canceled"
	StatusPendingPayment Status = "pending_payment"
	StatusSuspended      Status = "suspended"
)

type OwnerType string

const (
	OwnerTypePhotographer OwnerType = "photographer"
	OwnerTypeLocation     OwnerType = "location"
)

// Package is a purchasable premium tier. Price is in minor units.
type Package struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	OwnerType    OwnerType `db:"owner_type" json:"owner_type"`
	Price        int64     `db:"price" json:"price"`
	DurationDays int       `db:"duration_days" json:"duration_days"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Subscription starts life pending payment; the webhook activates it
// and stamps the validity window from the package duration.
type Subscription struct {
	ID        uuid.UUID    `db:"id" json:"id"`
	OwnerID   uuid.UUID    `db:"owner_id" json:"owner_id"`
	OwnerType OwnerType    `db:"owner_type" json:"owner_type"`
	PackageID uuid.UUID    `db:"package_id" json:"package_id"`
	StartDate sql.NullTime `db:"start_date" json:"start_date"`
	EndDate   sql.NullTime `db:"end_date" json:"end_date"`
	Status    Status       `db:"status" json:"status"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt time.Time    `db:"updated_at" json:"updated_at"`
}
