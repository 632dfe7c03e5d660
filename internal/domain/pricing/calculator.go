package pricing

import "time"

// Quote is a full price breakdown for a session, in minor currency units.
// Total is what the customer pays; Payout is what the photographer
// receives after the platform commission and the location fee.
type Quote struct {
	Total             int64 `json:"total"`
	PhotographerShare int64 `json:"photographer_share"`
	LocationFee       int64 `json:"location_fee"`
	PlatformFee       int64 `json:"platform_fee"`
	Payout            int64 `json:"payout"`
}

type Calculator struct {
	commissionPct int64
}

func NewCalculator(commissionPct int64) *Calculator {
	return &Calculator{commissionPct: commissionPct}
}

// Calculate prices a session of the given duration. Hourly rates are
// prorated by the minute, rounding down. The commission is taken from
// the full total, rounding down, so the platform never rounds in its
// own favor past a whole unit.
func (c *Calculator) Calculate(photographerRate, locationRate int64, duration time.Duration) (*Quote, error) {
	if duration <= 0 {
		return nil, ErrInvalidInterval
	}

	minutes := int64(duration / time.Minute)

	q := &Quote{
		PhotographerShare: photographerRate * minutes / 60,
		LocationFee:       locationRate * minutes / 60,
	}
	q.Total = q.PhotographerShare + q.LocationFee
	q.PlatformFee = q.Total * c.commissionPct / 100
	q.Payout = q.Total - q.PlatformFee - q.LocationFee
	return q, nil
}
