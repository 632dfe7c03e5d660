package subscription

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/snaplink/snaplink-api/internal/middleware"
)

// PaymentLinker opens a gateway checkout for a subscription. The
// payment service implements it; the indirection keeps this package
// out of the payment package's import graph.
type PaymentLinker interface {
	CreatePaymentLink(ctx context.Context, payerID, subscriptionID uuid.UUID, amount int64, description string) (string, error)
}

type Service struct {
	repo     *Repository
	payments PaymentLinker
}

func NewService(repo *Repository, payments PaymentLinker) *Service {
	return &Service{repo: repo, payments: payments}
}

func (s *Service) ListPackages(ctx context.Context, ownerType OwnerType) ([]*Package, error) {
	return s.repo.ListPackages(ctx, ownerType)
}

type PurchaseResult struct {
	Subscription *Subscription `json:"subscription"`
	CheckoutURL  string        `json:"checkout_url"`
}

// Purchase creates a pending subscription and a checkout link for it.
// The subscription only becomes active when the payment webhook
// reports success.
func (s *Service) Purchase(ctx context.Context, ownerID uuid.UUID, role string, packageID uuid.UUID) (*PurchaseResult, error) {
	pkg, err := s.repo.GetPackage(ctx, packageID)
	if err != nil {
		return nil, err
	}
	if !pkg.Active {
		return nil, ErrPackageNotFound
	}
	if err := checkOwnerType(pkg.OwnerType, role); err != nil {
		return nil, err
	}

	if current, err := s.repo.CurrentByOwner(ctx, ownerID); err == nil && current.Status == StatusActive {
		return nil, ErrAlreadySubscribed
	} else if err != nil && !errors.Is(err, ErrSubscriptionNotFound) {
		return nil, err
	}

	sub := &Subscription{
		OwnerID:   ownerID,
		OwnerType: pkg.OwnerType,
		PackageID: pkg.ID,
		Status:    StatusPendingPayment,
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, err
	}

	checkoutURL, err := s.payments.CreatePaymentLink(ctx, ownerID, sub.ID, pkg.Price, fmt.Sprintf("Premium: %s", pkg.Name))
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("subscription_id", sub.ID.String()).
		Str("owner_id", ownerID.String()).
		Str("package", pkg.Name).
		Int64("price", pkg.Price).
		Msg("subscription purchase started")

	return &PurchaseResult{Subscription: sub, CheckoutURL: checkoutURL}, nil
}

// ActivateTx is called by the payment webhook inside its transaction.
func (s *Service) ActivateTx(ctx context.Context, tx *sqlx.Tx, subscriptionID uuid.UUID) error {
	return s.repo.ActivateTx(ctx, tx, subscriptionID)
}

func (s *Service) Current(ctx context.Context, ownerID uuid.UUID) (*Subscription, error) {
	return s.repo.CurrentByOwner(ctx, ownerID)
}

// Cancel ends the owner's subscription immediately. No refunds; the
// paid period is simply given up.
func (s *Service) Cancel(ctx context.Context, ownerID, id uuid.UUID) (*Subscription, error) {
	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.OwnerID != ownerID {
		return nil, ErrNotOwner
	}
	if sub.Status != StatusActive && sub.Status != StatusPendingPayment {
		return nil, ErrNotCancellable
	}

	if err := s.repo.UpdateStatus(ctx, id, StatusCanceled); err != nil {
		return nil, err
	}
	sub.Status = StatusCanceled
	return sub, nil
}

// Sweep expires every overdue subscription and reports how many were
// closed. Safe to run repeatedly.
func (s *Service) Sweep(ctx context.Context) (int64, error) {
	count, err := s.repo.ExpireOverdue(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		log.Info().Int64("count", count).Msg("expired overdue subscriptions")
	}
	return count, nil
}

func checkOwnerType(pkgType OwnerType, role string) error {
	switch pkgType {
	case OwnerTypePhotographer:
		if role != middleware.RolePhotographer {
			return ErrWrongOwnerType
		}
	case OwnerTypeLocation:
		if role != middleware.RoleOwner {
			return ErrWrongOwnerType
		}
	}
	return nil
}
