package pricing

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) PhotographerRate(ctx context.Context, photographerID uuid.UUID) (int64, error) {
	var rate int64
	err := r.db.GetContext(ctx, &rate, `
		SELECT hourly_rate FROM photographer_profiles WHERE user_id = $1
	`, photographerID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrRateNotFound
	}
	return rate, err
}

func (r *Repository) LocationRate(ctx context.Context, locationID uuid.UUID) (int64, error) {
	var rate int64
	err := r.db.GetContext(ctx, &rate, `
		SELECT hourly_rate FROM locations WHERE id = $1
	`, locationID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrRateNotFound
	}
	return rate, err
}
