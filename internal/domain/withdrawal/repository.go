package withdrawal

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const requestColumns = `id, photographer_id, amount, bank_name, bank_account, account_holder,
	status, proof_ref, reject_reason, processed_by, created_at, updated_at`

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) BeginTxx(ctx context.Context) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
}

func (r *Repository) Create(ctx context.Context, req *Request) error {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO withdrawal_requests (id, photographer_id, amount, bank_name, bank_account, account_holder, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, req.ID, req.PhotographerID, req.Amount, req.BankName, req.BankAccount, req.AccountHolder, string(req.Status))
	return err
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Request, error) {
	var req Request
	err := r.db.GetContext(ctx, &req, `SELECT `+requestColumns+` FROM withdrawal_requests WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// GetByIDForUpdateTx locks the request so each workflow step sees the
// stored status it is guarding on.
func (r *Repository) GetByIDForUpdateTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*Request, error) {
	var req Request
	err := tx.GetContext(ctx, &req, `SELECT `+requestColumns+` FROM withdrawal_requests WHERE id = $1 FOR UPDATE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *Repository) UpdateStatusTx(ctx context.Context, tx *sqlx.Tx, req *Request) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE withdrawal_requests
		SET status = $1, proof_ref = $2, reject_reason = $3, processed_by = $4, updated_at = now()
		WHERE id = $5
	`, string(req.Status), req.ProofRef, req.RejectReason, req.ProcessedBy, req.ID)
	return err
}

func (r *Repository) ListByPhotographer(ctx context.Context, photographerID uuid.UUID) ([]*Request, error) {
	var out []*Request
	err := r.db.SelectContext(ctx, &out, `
		SELECT `+requestColumns+` FROM withdrawal_requests
		WHERE photographer_id = $1 ORDER BY created_at DESC
	`, photographerID)
	return out, err
}

func (r *Repository) ListByStatus(ctx context.Context, status Status, limit, offset int) ([]*Request, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var out []*Request
	err := r.db.SelectContext(ctx, &out, `
		SELECT `+requestColumns+` FROM withdrawal_requests
		WHERE status = $1 ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`, string(status), limit, offset)
	return out, err
}
