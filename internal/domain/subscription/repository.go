package subscription

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const subscriptionColumns = `id, owner_id, owner_type, package_id, start_date, end_date, status, created_at, updated_at`

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) BeginTxx(ctx context.Context) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
}

func (r *Repository) ListPackages(ctx context.Context, ownerType OwnerType) ([]*Package, error) {
	var out []*Package
	err := r.db.SelectContext(ctx, &out, `
		SELECT id, name, owner_type, price, duration_days, active, created_at
		FROM premium_packages
		WHERE active AND owner_type = $1
		ORDER BY price
	`, string(ownerType))
	return out, err
}

func (r *Repository) GetPackage(ctx context.Context, id uuid.UUID) (*Package, error) {
	var p Package
	err := r.db.GetContext(ctx, &p, `
		SELECT id, name, owner_type, price, duration_days, active, created_at
		FROM premium_packages WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPackageNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) Create(ctx context.Context, s *Subscription) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO premium_subscriptions (id, owner_id, owner_type, package_id, status)
		VALUES ($1, $2, $3, $4, $5)
	`, s.ID, s.OwnerID, string(s.OwnerType), s.PackageID, string(s.Status))
	return err
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Subscription, error) {
	var s Subscription
	err := r.db.GetContext(ctx, &s, `SELECT `+subscriptionColumns+` FROM premium_subscriptions WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CurrentByOwner returns the owner's live subscription, active or
// still awaiting payment.
func (r *Repository) CurrentByOwner(ctx context.Context, ownerID uuid.UUID) (*Subscription, error) {
	var s Subscription
	err := r.db.GetContext(ctx, &s, `
		SELECT `+subscriptionColumns+` FROM premium_subscriptions
		WHERE owner_id = $1 AND status IN ('active', 'pending_payment')
		ORDER BY created_at DESC LIMIT 1
	`, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ActivateTx flips a paid subscription to active inside the webhook
// transaction, stamping the window from the package duration. Only the
// pending_payment row matches, so replays update nothing.
func (r *Repository) ActivateTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE premium_subscriptions s
		SET status = 'active',
		    start_date = now(),
		    end_date = now() + make_interval(days => p.duration_days),
		    updated_at = now()
		FROM premium_packages p
		WHERE s.id = $1 AND s.package_id = p.id AND s.status = 'pending_payment'
	`, id)
	return err
}

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE premium_subscriptions SET status = $1, updated_at = now() WHERE id = $2
	`, string(status), id)
	if err != nil {
		return err
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

// ExpireOverdue closes every active subscription past its end date.
// The WHERE clause makes the sweep idempotent; a second run matches
// nothing.
func (r *Repository) ExpireOverdue(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE premium_subscriptions
		SET status = 'expired', updated_at = now()
		WHERE status = 'active' AND end_date < now()
	`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
