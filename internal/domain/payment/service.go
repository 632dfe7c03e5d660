package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/snaplink/snaplink-api/internal/domain/booking"
	"github.com/snaplink/snaplink-api/internal/domain/wallet"
	"github.com/snaplink/snaplink-api/internal/pkg/payos"
	"github.com/snaplink/snaplink-api/internal/pkg/push"
)

const webhookDedupeTTL = 24 * time.Hour

// SubscriptionActivator turns a paid subscription on inside the
// webhook transaction. The subscription service implements it; it is
// wired after construction because subscriptions also create payments.
type SubscriptionActivator interface {
	ActivateTx(ctx context.Context, tx *sqlx.Tx, subscriptionID uuid.UUID) error
}

type Service struct {
	repo          *Repository
	gateway       *payos.Client
	checksumKey   string
	frontendURL   string
	bookings      *booking.Service
	wallets       *wallet.Repository
	subscriptions SubscriptionActivator
	redis         *redis.Client
	notifier      push.Notifier
}

func NewService(repo *Repository, gateway *payos.Client, checksumKey, frontendURL string, bookings *booking.Service, wallets *wallet.Repository, rdb *redis.Client, notifier push.Notifier) *Service {
	return &Service{
		repo:        repo,
		gateway:     gateway,
		checksumKey: checksumKey,
		frontendURL: frontendURL,
		bookings:    bookings,
		wallets:     wallets,
		redis:       rdb,
		notifier:    notifier,
	}
}

func (s *Service) SetSubscriptionActivator(a SubscriptionActivator) {
	s.subscriptions = a
}

// CreateForBooking opens a checkout link for a pending booking. An
// existing live link is returned as-is instead of creating another.
func (s *Service) CreateForBooking(ctx context.Context, customerID, bookingID uuid.UUID) (*Payment, error) {
	b, err := s.bookings.Get(ctx, customerID, false, bookingID)
	if err != nil {
		return nil, err
	}
	if b.CustomerID != customerID {
		return nil, booking.ErrNotParticipant
	}
	if b.Status != booking.StatusPending {
		return nil, ErrNotPayable
	}

	existing, err := s.repo.LiveByBooking(ctx, bookingID)
	switch {
	case err == nil:
		if existing.Status == StatusSuccess {
			return nil, ErrAlreadyPaid
		}
		return existing, nil
	case !errors.Is(err, ErrPaymentNotFound):
		return nil, err
	}

	p := &Payment{
		BookingID: uuid.NullUUID{UUID: bookingID, Valid: true},
		PayerID:   customerID,
		Amount:    b.TotalPrice,
		Status:    StatusPending,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	desc := fmt.Sprintf("Booking %s", bookingID.String()[:8])
	return s.attachCheckoutLink(ctx, p, desc)
}

// CreatePaymentLink opens a checkout link for a premium subscription.
// The subscription service calls this through its own interface.
func (s *Service) CreatePaymentLink(ctx context.Context, payerID, subscriptionID uuid.UUID, amount int64, description string) (string, error) {
	p := &Payment{
		SubscriptionID: uuid.NullUUID{UUID: subscriptionID, Valid: true},
		PayerID:        payerID,
		Amount:         amount,
		Status:         StatusPending,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return "", err
	}

	p, err := s.attachCheckoutLink(ctx, p, description)
	if err != nil {
		return "", err
	}
	return p.CheckoutURL.String, nil
}

func (s *Service) attachCheckoutLink(ctx context.Context, p *Payment, description string) (*Payment, error) {
	resp, err := s.gateway.CreateLink(ctx, payos.CreateLinkRequest{
		OrderCode:   p.OrderCode,
		Amount:      p.Amount,
		Description: description,
		ReturnURL:   s.frontendURL + "/payments/return",
		CancelURL:   s.frontendURL + "/payments/cancel",
	})
	if err != nil {
		log.Error().Err(err).Int64("order_code", p.OrderCode).Msg("checkout link creation failed")
		return nil, fmt.Errorf("%w: %w", ErrGateway, err)
	}

	tx, err := s.repo.BeginTxx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `
		UPDATE payments SET checkout_url = $1, updated_at = now() WHERE id = $2
	`, resp.CheckoutURL, p.ID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	p.CheckoutURL = sql.NullString{String: resp.CheckoutURL, Valid: true}
	return p, nil
}

// ProcessWebhook handles a gateway callback. The signature gate runs
// before anything else; after that, the payment row lock plus its
// stored status make redelivery a no-op. Redis only short-circuits
// replays cheaply, the database check is what actually guarantees
// exactly-once effects.
func (s *Service) ProcessWebhook(ctx context.Context, payload []byte) error {
	event, err := payos.VerifyWebhook(payload, s.checksumKey)
	if err != nil {
		return err
	}

	dedupeKey := fmt.Sprintf("payos:evt:%d", event.OrderCode)
	if s.redis != nil {
		if _, err := s.redis.Get(ctx, dedupeKey).Result(); err == nil {
			log.Debug().Int64("order_code", event.OrderCode).Msg("webhook replay dropped")
			return nil
		}
	}

	tx, err := s.repo.BeginTxx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	p, err := s.repo.GetByOrderCodeForUpdateTx(ctx, tx, event.OrderCode)
	if err != nil {
		return err
	}
	if p.Status == StatusSuccess {
		return tx.Commit()
	}

	if !event.Success {
		if err := s.repo.UpdateStatusTx(ctx, tx, p.ID, StatusFailed, event.Reference); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		log.Info().Int64("order_code", event.OrderCode).Str("code", event.Code).Msg("payment failed")
		return nil
	}

	if event.Amount != p.Amount {
		log.Error().
			Int64("order_code", event.OrderCode).
			Int64("expected", p.Amount).
			Int64("reported", event.Amount).
			Msg("webhook amount mismatch")
		return booking.ErrAmountMismatch
	}

	// The customer can finish checkout while their booking is being
	// cancelled: the void marks the payment cancelled, then the gateway
	// reports success for a charge that really happened. Keep the
	// charge on record and send the money straight to the payer's
	// wallet so redeliveries have nothing left to do.
	if p.Status == StatusCancelled {
		if err := s.repo.UpdateStatusTx(ctx, tx, p.ID, StatusSuccess, event.Reference); err != nil {
			return err
		}
		if err := s.wallets.CreditTx(ctx, tx, p.PayerID, p.Amount); err != nil {
			return err
		}
		if err := s.wallets.InsertTransactionTx(ctx, tx, &wallet.Transaction{
			ToUserID:  uuid.NullUUID{UUID: p.PayerID, Valid: true},
			PaymentID: uuid.NullUUID{UUID: p.ID, Valid: true},
			Amount:    p.Amount,
			Type:      wallet.TransactionTypeRefund,
			Note:      sql.NullString{String: "paid after cancellation", Valid: true},
		}); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}

		if s.redis != nil {
			if err := s.redis.Set(ctx, dedupeKey, "1", webhookDedupeTTL).Err(); err != nil {
				log.Warn().Err(err).Msg("webhook dedupe cache write failed")
			}
		}

		log.Warn().
			Int64("order_code", event.OrderCode).
			Int64("amount", p.Amount).
			Msg("payment landed after cancellation, refunded to wallet")

		s.notifier.Notify(ctx, p.PayerID, "Payment refunded",
			"Your payment arrived after the booking was cancelled and was returned to your wallet",
			map[string]string{"payment_id": p.ID.String()})
		return nil
	}

	if err := s.repo.UpdateStatusTx(ctx, tx, p.ID, StatusSuccess, event.Reference); err != nil {
		return err
	}

	var confirmed *booking.Booking
	switch {
	case p.BookingID.Valid:
		confirmed, err = s.bookings.ConfirmFromPaymentTx(ctx, tx, p.BookingID.UUID, p.ID, p.Amount)
		if err != nil {
			return err
		}
	case p.SubscriptionID.Valid && s.subscriptions != nil:
		if err := s.subscriptions.ActivateTx(ctx, tx, p.SubscriptionID.UUID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	if s.redis != nil {
		if err := s.redis.Set(ctx, dedupeKey, "1", webhookDedupeTTL).Err(); err != nil {
			log.Warn().Err(err).Msg("webhook dedupe cache write failed")
		}
	}

	log.Info().
		Int64("order_code", event.OrderCode).
		Int64("amount", event.Amount).
		Msg("payment succeeded")

	s.notifier.Notify(ctx, p.PayerID, "Payment received", "Your payment was processed", map[string]string{
		"payment_id": p.ID.String(),
	})
	if confirmed != nil {
		s.notifier.Notify(ctx, confirmed.PhotographerID, "Booking confirmed",
			"A booking has been paid and confirmed",
			map[string]string{"booking_id": confirmed.ID.String()})
	}
	return nil
}

// VoidPendingTx lets the booking service cancel a not-yet-paid
// checkout inside its own transaction.
func (s *Service) VoidPendingTx(ctx context.Context, tx *sqlx.Tx, bookingID uuid.UUID) error {
	return s.repo.VoidPendingTx(ctx, tx, bookingID)
}

func (s *Service) Get(ctx context.Context, actorID uuid.UUID, isStaff bool, id uuid.UUID) (*Payment, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isStaff && p.PayerID != actorID {
		return nil, ErrPaymentNotFound
	}
	return p, nil
}
