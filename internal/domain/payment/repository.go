package payment

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const paymentColumns = `id, booking_id, subscription_id, payer_id, order_code, amount,
	status, checkout_url, external_ref, created_at, updated_at`

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) BeginTxx(ctx context.Context) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
}

// Create inserts the payment and assigns its order code from the
// shared sequence.
func (r *Repository) Create(ctx context.Context, p *Payment) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return r.db.GetContext(ctx, &p.OrderCode, `
		INSERT INTO payments (id, booking_id, subscription_id, payer_id, order_code, amount, status, checkout_url)
		VALUES ($1, $2, $3, $4, nextval('payment_order_code_seq'), $5, $6, $7)
		RETURNING order_code
	`, p.ID, p.BookingID, p.SubscriptionID, p.PayerID, p.Amount, string(p.Status), p.CheckoutURL)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Payment, error) {
	var p Payment
	err := r.db.GetContext(ctx, &p, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByOrderCodeForUpdateTx locks the payment row for webhook
// processing; concurrent deliveries of the same event queue up here.
func (r *Repository) GetByOrderCodeForUpdateTx(ctx context.Context, tx *sqlx.Tx, orderCode int64) (*Payment, error) {
	var p Payment
	err := tx.GetContext(ctx, &p, `SELECT `+paymentColumns+` FROM payments WHERE order_code = $1 FOR UPDATE`, orderCode)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// LiveByBooking returns the pending or successful payment for a
// booking, if any. Failed and cancelled attempts do not count.
func (r *Repository) LiveByBooking(ctx context.Context, bookingID uuid.UUID) (*Payment, error) {
	var p Payment
	err := r.db.GetContext(ctx, &p, `
		SELECT `+paymentColumns+` FROM payments
		WHERE booking_id = $1 AND status IN ('pending', 'success')
		ORDER BY created_at DESC LIMIT 1
	`, bookingID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) UpdateStatusTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status Status, externalRef string) error {
	ref := sql.NullString{String: externalRef, Valid: externalRef != ""}
	_, err := tx.ExecContext(ctx, `
		UPDATE payments SET status = $1, external_ref = $2, updated_at = now() WHERE id = $3
	`, string(status), ref, id)
	return err
}

// VoidPendingTx cancels any still-pending payments for a booking.
func (r *Repository) VoidPendingTx(ctx context.Context, tx *sqlx.Tx, bookingID uuid.UUID) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE payments SET status = 'cancelled', updated_at = now()
		WHERE booking_id = $1 AND status = 'pending'
	`, bookingID)
	return err
}
