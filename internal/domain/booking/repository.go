package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/snaplink/snaplink-api/internal/pkg/timeutil"
)

const bookingColumns = `id, customer_id, photographer_id, location_id, start_time, end_time,
	status, total_price, platform_fee, location_fee, payout, special_requests, created_at, updated_at`

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) BeginTxx(ctx context.Context) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
}

// HasConflictTx scans for overlapping pending/confirmed bookings inside
// the caller's transaction, locking the rows it finds. The scan and the
// subsequent insert share one transaction; the exclusion constraint on
// the table backstops anything the scan cannot see yet.
func (r *Repository) HasConflictTx(ctx context.Context, tx *sqlx.Tx, photographerID uuid.UUID, locationID uuid.NullUUID, start, end time.Time, exclude uuid.UUID) (bool, error) {
	var ids []uuid.UUID
	err := tx.SelectContext(ctx, &ids, `
		SELECT id FROM bookings
		WHERE photographer_id = $1
		  AND status IN ('pending', 'confirmed')
		  AND start_time < $3 AND $2 < end_time
		  AND id <> $4
		FOR UPDATE
	`, photographerID, start, end, exclude)
	if err != nil {
		return false, err
	}
	if len(ids) > 0 {
		return true, nil
	}

	if !locationID.Valid {
		return false, nil
	}
	err = tx.SelectContext(ctx, &ids, `
		SELECT id FROM bookings
		WHERE location_id = $1
		  AND status IN ('pending', 'confirmed')
		  AND start_time < $3 AND $2 < end_time
		  AND id <> $4
		FOR UPDATE
	`, locationID.UUID, start, end, exclude)
	if err != nil {
		return false, err
	}
	return len(ids) > 0, nil
}

func (r *Repository) CreateTx(ctx context.Context, tx *sqlx.Tx, b *Booking) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO bookings (id, customer_id, photographer_id, location_id, start_time, end_time,
			status, total_price, platform_fee, location_fee, payout, special_requests)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, b.ID, b.CustomerID, b.PhotographerID, b.LocationID, b.StartTime, b.EndTime,
		string(b.Status), b.TotalPrice, b.PlatformFee, b.LocationFee, b.Payout, b.SpecialRequests)
	return mapBookingDBError(err)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var b Booking
	err := r.db.GetContext(ctx, &b, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetByIDForUpdateTx locks the booking row. Every settlement path
// (confirm, cancel, complete) takes this lock first, which serializes
// escrow movements for the booking.
func (r *Repository) GetByIDForUpdateTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*Booking, error) {
	var b Booking
	err := tx.GetContext(ctx, &b, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *Repository) UpdateStatusTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status Status) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE bookings SET status = $1, updated_at = now() WHERE id = $2
	`, string(status), id)
	return err
}

func (r *Repository) UpdateTx(ctx context.Context, tx *sqlx.Tx, b *Booking) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE bookings
		SET start_time = $1, end_time = $2, total_price = $3, platform_fee = $4,
			location_fee = $5, payout = $6, special_requests = $7, updated_at = now()
		WHERE id = $8
	`, b.StartTime, b.EndTime, b.TotalPrice, b.PlatformFee, b.LocationFee, b.Payout, b.SpecialRequests, b.ID)
	return mapBookingDBError(err)
}

func (r *Repository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*Booking, error) {
	var out []*Booking
	err := r.db.SelectContext(ctx, &out, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE customer_id = $1 ORDER BY start_time DESC
	`, customerID)
	return out, err
}

func (r *Repository) ListByPhotographer(ctx context.Context, photographerID uuid.UUID) ([]*Booking, error) {
	var out []*Booking
	err := r.db.SelectContext(ctx, &out, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE photographer_id = $1 ORDER BY start_time DESC
	`, photographerID)
	return out, err
}

// BookedIntervals returns the occupied intervals for a photographer in
// [from, to). The availability schedule builds on this.
func (r *Repository) BookedIntervals(ctx context.Context, photographerID uuid.UUID, from, to time.Time) ([]timeutil.Interval, error) {
	rows := []struct {
		Start time.Time `db:"start_time"`
		End   time.Time `db:"end_time"`
	}{}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT start_time, end_time FROM bookings
		WHERE photographer_id = $1
		  AND status IN ('pending', 'confirmed')
		  AND start_time < $3 AND $2 < end_time
		ORDER BY start_time
	`, photographerID, from, to)
	if err != nil {
		return nil, err
	}

	out := make([]timeutil.Interval, 0, len(rows))
	for _, row := range rows {
		out = append(out, timeutil.Interval{Start: row.Start, End: row.End})
	}
	return out, nil
}

// LocationOwner resolves who gets the location fee at settlement.
func (r *Repository) LocationOwner(ctx context.Context, locationID uuid.UUID) (uuid.UUID, error) {
	var ownerID uuid.UUID
	err := r.db.GetContext(ctx, &ownerID, `SELECT owner_id FROM locations WHERE id = $1`, locationID)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, ErrInvalidReference
	}
	return ownerID, err
}

func mapBookingDBError(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch pqErr.Code {
	case "23P01":
		return fmt.Errorf("%w: %w", ErrTimeConflict, err)
	case "23503":
		return fmt.Errorf("%w: %w", ErrInvalidReference, err)
	case "23514":
		return fmt.Errorf("%w: %w", ErrInvalidInterval, err)
	default:
		return err
	}
}
