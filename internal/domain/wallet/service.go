package wallet

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.GetBalance(ctx, userID)
}

func (s *Service) History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Transaction, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// TransferFunds moves money between two user wallets. The debit and the
// credit commit together or not at all.
func (s *Service) TransferFunds(ctx context.Context, from, to uuid.UUID, amount int64, note string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if from == to {
		return ErrSameWallet
	}

	if err := s.repo.Transfer(ctx, from, to, amount, note); err != nil {
		return err
	}

	log.Info().
		Str("from_user_id", from.String()).
		Str("to_user_id", to.String()).
		Int64("amount", amount).
		Msg("wallet transfer completed")
	return nil
}

// Reconcile compares the cached balance against the ledger-derived one
// and repairs the cache when they drift. The ledger is authoritative.
func (s *Service) Reconcile(ctx context.Context, userID uuid.UUID, repair bool) (*ReconcileReport, error) {
	cached, err := s.repo.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	fromLedger, err := s.repo.BalanceFromLedger(ctx, userID)
	if err != nil {
		return nil, err
	}

	report := &ReconcileReport{
		UserID:     userID,
		Cached:     cached,
		FromLedger: fromLedger,
		Drift:      cached - fromLedger,
	}
	if report.Drift == 0 {
		return report, nil
	}

	log.Warn().
		Str("user_id", userID.String()).
		Int64("cached", cached).
		Int64("from_ledger", fromLedger).
		Msg("wallet balance drift detected")

	if repair {
		if _, err := s.repo.RepairBalance(ctx, userID); err != nil {
			return nil, err
		}
		report.Repaired = true
	}
	return report, nil
}
