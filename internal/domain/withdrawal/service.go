package withdrawal

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/snaplink/snaplink-api/internal/domain/wallet"
	"github.com/snaplink/snaplink-api/internal/pkg/push"
)

type Limits struct {
	Min int64
	Max int64
}

type Service struct {
	repo     *Repository
	wallets  *wallet.Repository
	limits   Limits
	notifier push.Notifier
}

func NewService(repo *Repository, wallets *wallet.Repository, limits Limits, notifier push.Notifier) *Service {
	return &Service{repo: repo, wallets: wallets, limits: limits, notifier: notifier}
}

type CreateParams struct {
	Amount        int64
	BankName      string
	BankAccount   string
	AccountHolder string
}

// Create files a withdrawal request. The amount must fit inside the
// configured bounds and the current balance, but nothing is reserved:
// the balance is checked again when the moderator completes the
// transfer.
func (s *Service) Create(ctx context.Context, photographerID uuid.UUID, p CreateParams) (*Request, error) {
	if p.Amount < s.limits.Min {
		return nil, ErrBelowMinimum
	}
	if p.Amount > s.limits.Max {
		return nil, ErrAboveMaximum
	}

	balance, err := s.wallets.GetBalance(ctx, photographerID)
	if err != nil {
		return nil, err
	}
	if p.Amount > balance {
		return nil, wallet.ErrInsufficientFunds
	}

	req := &Request{
		PhotographerID: photographerID,
		Amount:         p.Amount,
		BankName:       p.BankName,
		BankAccount:    p.BankAccount,
		AccountHolder:  p.AccountHolder,
		Status:         StatusPending,
	}
	if err := s.repo.Create(ctx, req); err != nil {
		return nil, err
	}

	log.Info().
		Str("request_id", req.ID.String()).
		Str("photographer_id", photographerID.String()).
		Int64("amount", p.Amount).
		Msg("withdrawal requested")
	return req, nil
}

// Approve attaches the moderator's proof-of-transfer reference. No
// funds move yet.
func (s *Service) Approve(ctx context.Context, moderatorID, id uuid.UUID, proofRef string) (*Request, error) {
	return s.step(ctx, id, StatusApproved, func(req *Request) error {
		req.ProcessedBy = uuid.NullUUID{UUID: moderatorID, Valid: true}
		if proofRef != "" {
			req.ProofRef = sql.NullString{String: proofRef, Valid: true}
		}
		return nil
	})
}

func (s *Service) Reject(ctx context.Context, moderatorID, id uuid.UUID, reason string) (*Request, error) {
	if reason == "" {
		return nil, ErrReasonRequired
	}
	req, err := s.step(ctx, id, StatusRejected, func(req *Request) error {
		req.ProcessedBy = uuid.NullUUID{UUID: moderatorID, Valid: true}
		req.RejectReason = sql.NullString{String: reason, Valid: true}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, req.PhotographerID, "Withdrawal rejected", reason,
		map[string]string{"request_id": req.ID.String()})
	return req, nil
}

func (s *Service) Process(ctx context.Context, moderatorID, id uuid.UUID) (*Request, error) {
	return s.step(ctx, id, StatusProcessing, func(req *Request) error {
		req.ProcessedBy = uuid.NullUUID{UUID: moderatorID, Valid: true}
		return nil
	})
}

// Complete debits the wallet and finishes the request in one
// transaction. The balance may have dropped since approval, so it is
// validated again here; on failure the request stays processing.
func (s *Service) Complete(ctx context.Context, moderatorID, id uuid.UUID) (*Request, error) {
	tx, err := s.repo.BeginTxx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	req, err := s.repo.GetByIDForUpdateTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(req.Status, StatusCompleted) {
		return nil, ErrInvalidTransition
	}

	if err := s.wallets.DebitTx(ctx, tx, req.PhotographerID, req.Amount); err != nil {
		return nil, err
	}
	if err := s.wallets.InsertTransactionTx(ctx, tx, &wallet.Transaction{
		FromUserID: uuid.NullUUID{UUID: req.PhotographerID, Valid: true},
		Amount:     req.Amount,
		Type:       wallet.TransactionTypeWithdraw,
		Note:       sql.NullString{String: "withdrawal " + req.ID.String(), Valid: true},
	}); err != nil {
		return nil, err
	}

	req.Status = StatusCompleted
	req.ProcessedBy = uuid.NullUUID{UUID: moderatorID, Valid: true}
	if err := s.repo.UpdateStatusTx(ctx, tx, req); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	log.Info().
		Str("request_id", req.ID.String()).
		Str("photographer_id", req.PhotographerID.String()).
		Int64("amount", req.Amount).
		Msg("withdrawal completed")

	s.notifier.Notify(ctx, req.PhotographerID, "Withdrawal completed",
		"Your withdrawal has been transferred",
		map[string]string{"request_id": req.ID.String()})
	return req, nil
}

// Cancel lets the requester back out while no money has moved.
func (s *Service) Cancel(ctx context.Context, photographerID, id uuid.UUID) (*Request, error) {
	tx, err := s.repo.BeginTxx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	req, err := s.repo.GetByIDForUpdateTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if req.PhotographerID != photographerID {
		return nil, ErrNotRequester
	}
	if !CanTransition(req.Status, StatusCancelled) {
		return nil, ErrInvalidTransition
	}

	req.Status = StatusCancelled
	if err := s.repo.UpdateStatusTx(ctx, tx, req); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *Service) ListMine(ctx context.Context, photographerID uuid.UUID) ([]*Request, error) {
	return s.repo.ListByPhotographer(ctx, photographerID)
}

func (s *Service) ListQueue(ctx context.Context, status Status, limit, offset int) ([]*Request, error) {
	return s.repo.ListByStatus(ctx, status, limit, offset)
}

func (s *Service) step(ctx context.Context, id uuid.UUID, to Status, mutate func(*Request) error) (*Request, error) {
	tx, err := s.repo.BeginTxx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	req, err := s.repo.GetByIDForUpdateTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(req.Status, to) {
		return nil, ErrInvalidTransition
	}

	req.Status = to
	if err := mutate(req); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatusTx(ctx, tx, req); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return req, nil
}
