package payment

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusSuccess   Status = "success"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Payment tracks one checkout attempt against either a booking or a
// premium subscription. OrderCode is the numeric id the gateway echoes
// back in webhooks; it comes from a database sequence so it is unique
// across restarts.
type Payment struct {
	ID             uuid.UUID      `db:"id" json:"id"`
	BookingID      uuid.NullUUID  `db:"booking_id" json:"booking_id"`
	SubscriptionID uuid.NullUUID  `db:"subscription_id" json:"subscription_id"`
	PayerID        uuid.UUID      `db:"payer_id" json:"payer_id"`
	OrderCode      int64          `db:"order_code" json:"order_code"`
	Amount         int64          `db:"amount" json:"amount"`
	Status         Status         `db:"status" json:"status"`
	CheckoutURL    sql.NullString `db:"checkout_url" json:"checkout_url"`
	ExternalRef    sql.NullString `db:"external_ref" json:"external_ref"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}
