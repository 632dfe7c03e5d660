package booking

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/snaplink/snaplink-api/internal/domain/escrow"
	"github.com/snaplink/snaplink-api/internal/domain/pricing"
	"github.com/snaplink/snaplink-api/internal/pkg/push"
)

// AvailabilityChecker answers whether an interval fits a
// photographer's registered schedule. The availability service
// implements it; the answer is advisory, the conflict scan inside the
// create transaction is what actually protects the slot.
type AvailabilityChecker interface {
	CheckInterval(ctx context.Context, photographerID uuid.UUID, start, end time.Time) error
}

// PaymentVoider cancels a booking's still-pending payment inside the
// caller's transaction. The payment service implements it; it is wired
// after construction because payments also call back into bookings.
type PaymentVoider interface {
	VoidPendingTx(ctx context.Context, tx *sqlx.Tx, bookingID uuid.UUID) error
}

type Service struct {
	repo         *Repository
	pricing      *pricing.Service
	availability AvailabilityChecker
	escrow       *escrow.Service
	notifier     push.Notifier
	payments     PaymentVoider
}

func NewService(repo *Repository, pricingSvc *pricing.Service, availability AvailabilityChecker, escrowSvc *escrow.Service, notifier push.Notifier) *Service {
	return &Service{
		repo:         repo,
		pricing:      pricingSvc,
		availability: availability,
		escrow:       escrowSvc,
		notifier:     notifier,
	}
}

// SetPaymentVoider breaks the construction cycle with the payment
// service, which itself depends on bookings.
func (s *Service) SetPaymentVoider(v PaymentVoider) {
	s.payments = v
}

type CreateParams struct {
	PhotographerID  uuid.UUID
	LocationID      uuid.NullUUID
	StartTime       time.Time
	EndTime         time.Time
	SpecialRequests string
}

// Create reserves a slot as a pending booking. The overlap check and
// the insert run in one transaction so two customers racing for the
// same slot cannot both win.
func (s *Service) Create(ctx context.Context, customerID uuid.UUID, p CreateParams) (*Booking, error) {
	if !p.StartTime.Before(p.EndTime) {
		return nil, ErrInvalidInterval
	}
	if p.StartTime.Before(time.Now()) {
		return nil, ErrInvalidInterval
	}

	if err := s.availability.CheckInterval(ctx, p.PhotographerID, p.StartTime, p.EndTime); err != nil {
		return nil, err
	}

	quote, err := s.pricing.QuoteSession(ctx, p.PhotographerID, p.LocationID, p.StartTime, p.EndTime)
	if err != nil {
		return nil, err
	}

	b := &Booking{
		CustomerID:     customerID,
		PhotographerID: p.PhotographerID,
		LocationID:     p.LocationID,
		StartTime:      p.StartTime,
		EndTime:        p.EndTime,
		Status:         StatusPending,
		TotalPrice:     quote.Total,
		PlatformFee:    quote.PlatformFee,
		LocationFee:    quote.LocationFee,
		Payout:         quote.Payout,
	}
	if p.SpecialRequests != "" {
		b.SpecialRequests = sql.NullString{String: p.SpecialRequests, Valid: true}
	}

	tx, err := s.repo.BeginTxx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	conflict, err := s.repo.HasConflictTx(ctx, tx, p.PhotographerID, p.LocationID, p.StartTime, p.EndTime, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, ErrTimeConflict
	}
	if err := s.repo.CreateTx(ctx, tx, b); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	log.Info().
		Str("booking_id", b.ID.String()).
		Str("customer_id", customerID.String()).
		Str("photographer_id", p.PhotographerID.String()).
		Int64("total_price", b.TotalPrice).
		Msg("booking created")

	s.notifier.Notify(ctx, b.PhotographerID, "New booking request",
		"A customer requested a session on "+b.StartTime.Format("2006-01-02 15:04"),
		map[string]string{"booking_id": b.ID.String()})
	return b, nil
}

func (s *Service) Get(ctx context.Context, actorID uuid.UUID, isStaff bool, id uuid.UUID) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isStaff && b.CustomerID != actorID && b.PhotographerID != actorID {
		return nil, ErrNotParticipant
	}
	return b, nil
}

func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID, asPhotographer bool) ([]*Booking, error) {
	if asPhotographer {
		return s.repo.ListByPhotographer(ctx, userID)
	}
	return s.repo.ListByCustomer(ctx, userID)
}

type UpdateParams struct {
	StartTime       *time.Time
	EndTime         *time.Time
	SpecialRequests *string
}

// Update lets the customer reschedule or annotate a booking while it
// is still pending. Rescheduling re-prices the session and re-runs the
// conflict check under lock.
func (s *Service) Update(ctx context.Context, customerID, id uuid.UUID, p UpdateParams) (*Booking, error) {
	tx, err := s.repo.BeginTxx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	b, err := s.repo.GetByIDForUpdateTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if b.CustomerID != customerID {
		return nil, ErrNotParticipant
	}
	if b.Status != StatusPending {
		return nil, ErrInvalidTransition
	}

	rescheduled := false
	if p.StartTime != nil {
		b.StartTime = *p.StartTime
		rescheduled = true
	}
	if p.EndTime != nil {
		b.EndTime = *p.EndTime
		rescheduled = true
	}
	if p.SpecialRequests != nil {
		b.SpecialRequests = sql.NullString{String: *p.SpecialRequests, Valid: *p.SpecialRequests != ""}
	}

	if rescheduled {
		if !b.StartTime.Before(b.EndTime) {
			return nil, ErrInvalidInterval
		}
		conflict, err := s.repo.HasConflictTx(ctx, tx, b.PhotographerID, b.LocationID, b.StartTime, b.EndTime, b.ID)
		if err != nil {
			return nil, err
		}
		if conflict {
			return nil, ErrTimeConflict
		}

		quote, err := s.pricing.QuoteSession(ctx, b.PhotographerID, b.LocationID, b.StartTime, b.EndTime)
		if err != nil {
			return nil, err
		}
		b.TotalPrice = quote.Total
		b.PlatformFee = quote.PlatformFee
		b.LocationFee = quote.LocationFee
		b.Payout = quote.Payout
	}

	if err := s.repo.UpdateTx(ctx, tx, b); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return b, nil
}

// ConfirmFromPaymentTx moves a paid booking to confirmed and places
// the escrow hold, inside the payment webhook's transaction. Replays
// hit the already-confirmed branch and change nothing.
func (s *Service) ConfirmFromPaymentTx(ctx context.Context, tx *sqlx.Tx, bookingID, paymentID uuid.UUID, amount int64) (*Booking, error) {
	b, err := s.repo.GetByIDForUpdateTx(ctx, tx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status == StatusConfirmed {
		return b, nil
	}
	if !CanTransition(b.Status, StatusConfirmed) {
		return nil, ErrInvalidTransition
	}
	if amount != b.TotalPrice {
		return nil, ErrAmountMismatch
	}

	if err := s.repo.UpdateStatusTx(ctx, tx, b.ID, StatusConfirmed); err != nil {
		return nil, err
	}
	if err := s.escrow.Hold(ctx, tx, escrow.HoldParams{
		BookingID:  b.ID,
		CustomerID: b.CustomerID,
		Amount:     b.TotalPrice,
		PaymentID:  uuid.NullUUID{UUID: paymentID, Valid: true},
	}); err != nil {
		return nil, err
	}

	b.Status = StatusConfirmed
	return b, nil
}

// Cancel ends a pending or confirmed booking. Held escrow goes back to
// the customer; a booking that was never paid just has its pending
// payment voided.
func (s *Service) Cancel(ctx context.Context, actorID uuid.UUID, isStaff bool, id uuid.UUID) (*Booking, error) {
	tx, err := s.repo.BeginTxx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	b, err := s.repo.GetByIDForUpdateTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if !isStaff && b.CustomerID != actorID && b.PhotographerID != actorID {
		return nil, ErrNotParticipant
	}
	if !CanTransition(b.Status, StatusCancelled) {
		return nil, ErrInvalidTransition
	}

	if err := s.repo.UpdateStatusTx(ctx, tx, b.ID, StatusCancelled); err != nil {
		return nil, err
	}

	refunded, err := s.escrow.Refund(ctx, tx, b.ID, b.CustomerID)
	if err != nil {
		return nil, err
	}
	if refunded == 0 && s.payments != nil {
		if err := s.payments.VoidPendingTx(ctx, tx, b.ID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	log.Info().
		Str("booking_id", b.ID.String()).
		Int64("refunded", refunded).
		Msg("booking cancelled")

	b.Status = StatusCancelled
	other := b.PhotographerID
	if actorID == b.PhotographerID {
		other = b.CustomerID
	}
	s.notifier.Notify(ctx, other, "Booking cancelled",
		"The session on "+b.StartTime.Format("2006-01-02 15:04")+" was cancelled",
		map[string]string{"booking_id": b.ID.String()})
	return b, nil
}

// Complete settles a confirmed booking: escrow is released with the
// split frozen at creation. Photographers can complete once the
// session has ended; staff can override earlier.
func (s *Service) Complete(ctx context.Context, actorID uuid.UUID, isStaff bool, id uuid.UUID) (*Booking, error) {
	tx, err := s.repo.BeginTxx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	b, err := s.repo.GetByIDForUpdateTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if !isStaff && b.PhotographerID != actorID {
		return nil, ErrNotParticipant
	}
	if !CanTransition(b.Status, StatusCompleted) {
		return nil, ErrInvalidTransition
	}
	if !isStaff && time.Now().Before(b.EndTime) {
		return nil, ErrNotFinished
	}

	var locationOwner uuid.NullUUID
	if b.LocationID.Valid {
		ownerID, err := s.repo.LocationOwner(ctx, b.LocationID.UUID)
		if err != nil {
			return nil, err
		}
		locationOwner = uuid.NullUUID{UUID: ownerID, Valid: true}
	}

	if err := s.repo.UpdateStatusTx(ctx, tx, b.ID, StatusCompleted); err != nil {
		return nil, err
	}
	if err := s.escrow.Release(ctx, tx, escrow.ReleaseParams{
		BookingID:       b.ID,
		PhotographerID:  b.PhotographerID,
		LocationOwnerID: locationOwner,
		Split: &pricing.Quote{
			Total:             b.TotalPrice,
			PhotographerShare: b.TotalPrice - b.LocationFee,
			LocationFee:       b.LocationFee,
			PlatformFee:       b.PlatformFee,
			Payout:            b.Payout,
		},
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	log.Info().
		Str("booking_id", b.ID.String()).
		Int64("payout", b.Payout).
		Msg("booking completed")

	b.Status = StatusCompleted
	s.notifier.Notify(ctx, b.PhotographerID, "Booking completed",
		"Your payout has been credited to your wallet",
		map[string]string{"booking_id": b.ID.String()})
	return b, nil
}
