package withdrawal

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusApproved   Status = "approved"
	StatusRejected   Status = "rejected"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// CanTransition encodes the moderation workflow. Money only moves on
// the processing -> completed step.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusApproved || to == StatusRejected || to == StatusCancelled
	case StatusApproved:
		return to == StatusProcessing || to == StatusCancelled
	case StatusProcessing:
		return to == StatusCompleted
	default:
		return false
	}
}

// Request is a photographer's ask to move wallet funds to their bank
// account. No funds are reserved until completion; the balance is
// re-checked at that instant.
type Request struct {
	ID             uuid.UUID      `db:"id" json:"id"`
	PhotographerID uuid.UUID      `db:"photographer_id" json:"photographer_id"`
	Amount         int64          `db:"amount" json:"amount"`
	BankName       string         `db:"bank_name" json:"bank_name"`
	BankAccount    string         `db:"bank_account" json:"bank_account"`
	AccountHolder  string         `db:"account_holder" json:"account_holder"`
	Status         Status         `db:"status" json:"status"`
	ProofRef       sql.NullString `db:"proof_ref" json:"proof_ref"`
	RejectReason   sql.NullString `db:"reject_reason" json:"reject_reason"`
	ProcessedBy    uuid.NullUUID  `db:"processed_by" json:"processed_by"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}
