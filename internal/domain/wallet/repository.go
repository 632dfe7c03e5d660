package wallet

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) EnsureWallet(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO wallets (user_id, balance)
		VALUES ($1, 0)
		ON CONFLICT (user_id) DO NOTHING
	`, userID)
	return err
}

func (r *Repository) GetBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	if err := r.EnsureWallet(ctx, userID); err != nil {
		return 0, err
	}

	var balance int64
	err := r.db.GetContext(ctx, &balance, `SELECT balance FROM wallets WHERE user_id = $1`, userID)
	return balance, err
}

func (r *Repository) BeginTxx(ctx context.Context) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
}

// LockWallet creates the wallet row if needed and takes a row lock on it,
// returning the current balance. Every balance mutation must go through
// this lock inside the same transaction.
func (r *Repository) LockWallet(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) (int64, error) {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO wallets (user_id, balance)
		VALUES ($1, 0)
		ON CONFLICT (user_id) DO NOTHING
	`, userID); err != nil {
		return 0, err
	}

	var balance int64
	err := tx.GetContext(ctx, &balance, `SELECT balance FROM wallets WHERE user_id = $1 FOR UPDATE`, userID)
	return balance, err
}

// CreditTx adds amount to a locked wallet.
func (r *Repository) CreditTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, amount int64) error {
	balance, err := r.LockWallet(ctx, tx, userID)
	if err != nil {
		return err
	}
	return r.setBalanceTx(ctx, tx, userID, balance+amount)
}

// DebitTx subtracts amount from a locked wallet, failing without effect
// when the balance cannot cover it.
func (r *Repository) DebitTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, amount int64) error {
	balance, err := r.LockWallet(ctx, tx, userID)
	if err != nil {
		return err
	}
	if balance < amount {
		return ErrInsufficientFunds
	}
	return r.setBalanceTx(ctx, tx, userID, balance-amount)
}

func (r *Repository) setBalanceTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, balance int64) error {
	_, err := tx.ExecContext(ctx, `UPDATE wallets SET balance = $1, updated_at = now() WHERE user_id = $2`, balance, userID)
	return err
}

// InsertTransactionTx appends a ledger row inside the caller's transaction.
func (r *Repository) InsertTransactionTx(ctx context.Context, tx *sqlx.Tx, t *Transaction) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Status == "" {
		t.Status = TransactionStatusSuccess
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (id, from_user_id, to_user_id, booking_id, payment_id, amount, type, status, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, t.ID, t.FromUserID, t.ToUserID, t.BookingID, t.PaymentID, t.Amount, string(t.Type), string(t.Status), t.Note)
	return err
}

// Transfer moves amount between two user wallets as one atomic unit.
// Wallets are locked in a deterministic order so concurrent transfers
// touching the same pair cannot deadlock.
func (r *Repository) Transfer(ctx context.Context, from, to uuid.UUID, amount int64, note string) error {
	tx, err := r.BeginTxx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	first, second := from, to
	if strings.Compare(to.String(), from.String()) < 0 {
		first, second = to, from
	}
	if _, err := r.LockWallet(ctx, tx, first); err != nil {
		return err
	}
	if _, err := r.LockWallet(ctx, tx, second); err != nil {
		return err
	}

	if err := r.DebitTx(ctx, tx, from, amount); err != nil {
		return err
	}
	if err := r.CreditTx(ctx, tx, to, amount); err != nil {
		return err
	}

	t := &Transaction{
		FromUserID: uuid.NullUUID{UUID: from, Valid: true},
		ToUserID:   uuid.NullUUID{UUID: to, Valid: true},
		Amount:     amount,
		Type:       TransactionTypeBonus,
	}
	if note != "" {
		t.Note = sql.NullString{String: note, Valid: true}
	}
	if err := r.InsertTransactionTx(ctx, tx, t); err != nil {
		return err
	}

	return tx.Commit()
}

// ListByUser returns ledger entries touching the user, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var out []*Transaction
	err := r.db.SelectContext(ctx, &out, `
		SELECT id, from_user_id, to_user_id, booking_id, payment_id, amount, type, status, note, created_at
		FROM transactions
		WHERE from_user_id = $1 OR to_user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	return out, err
}

// BalanceFromLedger recomputes a user's balance from the authoritative
// transaction ledger: credits in minus debits out, success rows only.
func (r *Repository) BalanceFromLedger(ctx context.Context, userID uuid.UUID) (int64, error) {
	var balance int64
	err := r.db.GetContext(ctx, &balance, `
		SELECT
			COALESCE(SUM(CASE WHEN to_user_id = $1 THEN amount ELSE 0 END), 0) -
			COALESCE(SUM(CASE WHEN from_user_id = $1 THEN amount ELSE 0 END), 0)
		FROM transactions
		WHERE status = 'success' AND (to_user_id = $1 OR from_user_id = $1)
	`, userID)
	return balance, err
}

// RepairBalance rewrites the cached balance from the ledger under lock.
func (r *Repository) RepairBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	tx, err := r.BeginTxx(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := r.LockWallet(ctx, tx, userID); err != nil {
		return 0, err
	}

	var fromLedger int64
	if err := tx.GetContext(ctx, &fromLedger, `
		SELECT
			COALESCE(SUM(CASE WHEN to_user_id = $1 THEN amount ELSE 0 END), 0) -
			COALESCE(SUM(CASE WHEN from_user_id = $1 THEN amount ELSE 0 END), 0)
		FROM transactions
		WHERE status = 'success' AND (to_user_id = $1 OR from_user_id = $1)
	`, userID); err != nil {
		return 0, err
	}

	if err := r.setBalanceTx(ctx, tx, userID, fromLedger); err != nil {
		return 0, err
	}
	return fromLedger, tx.Commit()
}
