package escrow

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/snaplink/snaplink-api/internal/domain/pricing"
	"github.com/snaplink/snaplink-api/internal/domain/wallet"
)

// Service keeps a per-booking escrow balance as ledger entries on the
// shared transactions table. Every mutation runs inside the caller's
// transaction, which must already hold the booking row lock — that
// lock is what serializes hold, release and refund against each other.
type Service struct {
	repo    *Repository
	wallets *wallet.Repository
}

func NewService(repo *Repository, wallets *wallet.Repository) *Service {
	return &Service{repo: repo, wallets: wallets}
}

type HoldParams struct {
	BookingID  uuid.UUID
	CustomerID uuid.UUID
	Amount     int64
	PaymentID  uuid.NullUUID
	// FromWallet debits the customer's wallet; otherwise the money
	// arrived through the payment gateway and only the ledger moves.
	FromWallet bool
}

// Hold places funds in escrow for a booking. A booking that already
// has funds held is left untouched, so webhook replays are harmless.
func (s *Service) Hold(ctx context.Context, tx *sqlx.Tx, p HoldParams) error {
	if p.Amount <= 0 {
		return ErrInvalidAmount
	}

	held, err := s.repo.HeldTx(ctx, tx, p.BookingID)
	if err != nil {
		return err
	}
	if held > 0 {
		return nil
	}

	// A wallet-funded hold debits the customer and names them as the
	// ledger's from side. Gateway-funded money enters from outside, so
	// no wallet moves and the row carries only the payment reference —
	// otherwise the ledger would debit a wallet that was never credited.
	hold := &wallet.Transaction{
		BookingID: uuid.NullUUID{UUID: p.BookingID, Valid: true},
		PaymentID: p.PaymentID,
		Amount:    p.Amount,
		Type:      wallet.TransactionTypeEscrowHold,
	}
	if p.FromWallet {
		if err := s.wallets.DebitTx(ctx, tx, p.CustomerID, p.Amount); err != nil {
			return err
		}
		hold.FromUserID = uuid.NullUUID{UUID: p.CustomerID, Valid: true}
	}

	if err := s.wallets.InsertTransactionTx(ctx, tx, hold); err != nil {
		return err
	}

	log.Info().
		Str("booking_id", p.BookingID.String()).
		Int64("amount", p.Amount).
		Bool("from_wallet", p.FromWallet).
		Msg("escrow hold placed")
	return nil
}

type ReleaseParams struct {
	BookingID       uuid.UUID
	PhotographerID  uuid.UUID
	LocationOwnerID uuid.NullUUID
	Split           *pricing.Quote
}

// Release settles a completed booking: the photographer's payout and
// the location fee are credited to their wallets, and the platform
// commission is written out as a release so the escrow drains to zero.
// A booking with nothing held is a no-op.
func (s *Service) Release(ctx context.Context, tx *sqlx.Tx, p ReleaseParams) error {
	held, err := s.repo.HeldTx(ctx, tx, p.BookingID)
	if err != nil {
		return err
	}
	if held == 0 {
		return nil
	}
	if held != p.Split.Total {
		return ErrAmountMismatch
	}

	if err := s.releaseTo(ctx, tx, p.BookingID, uuid.NullUUID{UUID: p.PhotographerID, Valid: true}, p.Split.Payout, "photographer payout"); err != nil {
		return err
	}
	if p.LocationOwnerID.Valid && p.Split.LocationFee > 0 {
		if err := s.releaseTo(ctx, tx, p.BookingID, p.LocationOwnerID, p.Split.LocationFee, "location fee"); err != nil {
			return err
		}
	}
	if p.Split.PlatformFee > 0 {
		if err := s.releaseTo(ctx, tx, p.BookingID, uuid.NullUUID{}, p.Split.PlatformFee, "platform commission"); err != nil {
			return err
		}
	}

	log.Info().
		Str("booking_id", p.BookingID.String()).
		Int64("payout", p.Split.Payout).
		Int64("location_fee", p.Split.LocationFee).
		Int64("platform_fee", p.Split.PlatformFee).
		Msg("escrow released")
	return nil
}

func (s *Service) releaseTo(ctx context.Context, tx *sqlx.Tx, bookingID uuid.UUID, to uuid.NullUUID, amount int64, note string) error {
	if amount <= 0 {
		return nil
	}
	if to.Valid {
		if err := s.wallets.CreditTx(ctx, tx, to.UUID, amount); err != nil {
			return err
		}
	}
	return s.wallets.InsertTransactionTx(ctx, tx, &wallet.Transaction{
		ToUserID:  to,
		BookingID: uuid.NullUUID{UUID: bookingID, Valid: true},
		Amount:    amount,
		Type:      wallet.TransactionTypeEscrowRelease,
		Note:      sql.NullString{String: note, Valid: true},
	})
}

// Refund returns everything still held for a booking to the customer's
// wallet and reports the refunded amount. Zero held means zero refund.
func (s *Service) Refund(ctx context.Context, tx *sqlx.Tx, bookingID, customerID uuid.UUID) (int64, error) {
	held, err := s.repo.HeldTx(ctx, tx, bookingID)
	if err != nil {
		return 0, err
	}
	if held == 0 {
		return 0, nil
	}

	if err := s.wallets.CreditTx(ctx, tx, customerID, held); err != nil {
		return 0, err
	}
	if err := s.wallets.InsertTransactionTx(ctx, tx, &wallet.Transaction{
		ToUserID:  uuid.NullUUID{UUID: customerID, Valid: true},
		BookingID: uuid.NullUUID{UUID: bookingID, Valid: true},
		Amount:    held,
		Type:      wallet.TransactionTypeRefund,
	}); err != nil {
		return 0, err
	}

	log.Info().
		Str("booking_id", bookingID.String()).
		Str("customer_id", customerID.String()).
		Int64("amount", held).
		Msg("escrow refunded")
	return held, nil
}

// Balance reads the currently held amount outside any transaction.
func (s *Service) Balance(ctx context.Context, bookingID uuid.UUID) (int64, error) {
	return s.repo.Held(ctx, bookingID)
}
