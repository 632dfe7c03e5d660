package escrow

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const heldQuery = `
	SELECT COALESCE(SUM(CASE
		WHEN type = 'escrow_hold' THEN amount
		WHEN type IN ('escrow_release', 'refund') THEN -amount
		ELSE 0
	END), 0)
	FROM transactions
	WHERE booking_id = $1 AND status = 'success'
`

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// HeldTx returns the amount still held for a booking: holds in, minus
// releases and refunds out. Callers serialize on the booking row, so
// reading inside their transaction is race-free.
func (r *Repository) HeldTx(ctx context.Context, tx *sqlx.Tx, bookingID uuid.UUID) (int64, error) {
	var held int64
	err := tx.GetContext(ctx, &held, heldQuery, bookingID)
	return held, err
}

func (r *Repository) Held(ctx context.Context, bookingID uuid.UUID) (int64, error) {
	var held int64
	err := r.db.GetContext(ctx, &held, heldQuery, bookingID)
	return held, err
}
