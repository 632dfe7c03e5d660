package wallet

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type TransactionType string

const (
	TransactionTypeTopup         TransactionType = "topup"
	TransactionTypeWithdraw      TransactionType = "withdraw"
	TransactionTypeRefund        TransactionType = "refund"
	TransactionTypePayout        TransactionType = "payout"
	TransactionTypeBonus         TransactionType = "bonus"
	TransactionTypeEscrowHold    TransactionType = "escrow_hold"
	TransactionTypeEscrowRelease TransactionType = "escrow_release"
)

type TransactionStatus string

const (
	TransactionStatusSuccess TransactionStatus = "success"
	TransactionStatusPending TransactionStatus = "pending"
	TransactionStatusFailed  TransactionStatus = "failed"
)

// Wallet caches the running balance of a user's ledger. The transaction
// ledger is authoritative; the cache is kept consistent by mutating it
// only inside the same transaction as the ledger row.
type Wallet struct {
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Balance   int64     `db:"balance" json:"balance"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Transaction is one append-only ledger entry. A nil party means the
// platform side. Amount and parties never change after insert; only
// status may advance.
type Transaction struct {
	ID         uuid.UUID         `db:"id" json:"id"`
	FromUserID uuid.NullUUID     `db:"from_user_id" json:"from_user_id,omitempty"`
	ToUserID   uuid.NullUUID     `db:"to_user_id" json:"to_user_id,omitempty"`
	BookingID  uuid.NullUUID     `db:"booking_id" json:"booking_id,omitempty"`
	PaymentID  uuid.NullUUID     `db:"payment_id" json:"payment_id,omitempty"`
	Amount     int64             `db:"amount" json:"amount"`
	Type       TransactionType   `db:"type" json:"type"`
	Status     TransactionStatus `db:"status" json:"status"`
	Note       sql.NullString    `db:"note" json:"note,omitempty"`
	CreatedAt  time.Time         `db:"created_at" json:"created_at"`
}

// ReconcileReport compares the cached balance against the ledger.
type ReconcileReport struct {
	UserID     uuid.UUID `json:"user_id"`
	Cached     int64     `json:"cached"`
	FromLedger int64     `json:"from_ledger"`
	Drift      int64     `json:"drift"`
	Repaired   bool      `json:"repaired"`
}
