package pricing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo *Repository
	calc *Calculator
}

func NewService(repo *Repository, calc *Calculator) *Service {
	return &Service{repo: repo, calc: calc}
}

// QuoteSession prices a session with the given photographer. When the
// shoot happens at an external location the platform charges no
// location fee and the quote covers the photographer's time only.
func (s *Service) QuoteSession(ctx context.Context, photographerID uuid.UUID, locationID uuid.NullUUID, start, end time.Time) (*Quote, error) {
	photographerRate, err := s.repo.PhotographerRate(ctx, photographerID)
	if err != nil {
		return nil, err
	}

	var locationRate int64
	if locationID.Valid {
		locationRate, err = s.repo.LocationRate(ctx, locationID.UUID)
		if err != nil {
			return nil, err
		}
	}

	return s.calc.Calculate(photographerRate, locationRate, end.Sub(start))
}
