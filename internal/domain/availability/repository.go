package availability

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

func (r *Repository) Create(ctx context.Context, s *Slot) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO availability_slots (id, photographer_id, day_of_week, start_min, end_min, status)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, s.ID, s.PhotographerID, s.DayOfWeek, s.StartMin, s.EndMin, string(s.Status))
	return err
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Slot, error) {
	var s Slot
	err := r.db.GetContext(ctx, &s, `
		SELECT id, photographer_id, day_of_week, start_min, end_min, status, created_at, updated_at
		FROM availability_slots WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repository) Update(ctx context.Context, s *Slot) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE availability_slots
		SET day_of_week = $1, start_min = $2, end_min = $3, status = $4, updated_at = now()
		WHERE id = $5
	`, s.DayOfWeek, s.StartMin, s.EndMin, string(s.Status), s.ID)
	if err != nil {
		return err
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return ErrSlotNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM availability_slots WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return ErrSlotNotFound
	}
	return nil
}

func (r *Repository) ListByPhotographer(ctx context.Context, photographerID uuid.UUID) ([]*Slot, error) {
	var out []*Slot
	err := r.db.SelectContext(ctx, &out, `
		SELECT id, photographer_id, day_of_week, start_min, end_min, status, created_at, updated_at
		FROM availability_slots
		WHERE photographer_id = $1
		ORDER BY day_of_week, start_min
	`, photographerID)
	return out, err
}

func (r *Repository) ListByDay(ctx context.Context, photographerID uuid.UUID, dayOfWeek int) ([]*Slot, error) {
	var out []*Slot
	err := r.db.SelectContext(ctx, &out, `
		SELECT id, photographer_id, day_of_week, start_min, end_min, status, created_at, updated_at
		FROM availability_slots
		WHERE photographer_id = $1 AND day_of_week = $2
		ORDER BY start_min
	`, photographerID, dayOfWeek)
	return out, err
}
