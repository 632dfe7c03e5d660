package pricing_test

import (
	"errors"
	"testing"
	"time"

	"github.com/snaplink/snaplink-api/internal/domain/pricing"
)

func TestCalculateSplit(t *testing.T) {
	calc := pricing.NewCalculator(10)

	tests := []struct {
		name             string
		photographerRate int64
		locationRate     int64
		duration         time.Duration
		want             pricing.Quote
	}{
		{
			name:             "two hours with platform location",
			photographerRate: 100,
			locationRate:     50,
			duration:         2 * time.Hour,
			want: pricing.Quote{
				Total:             300,
				PhotographerShare: 200,
				LocationFee:       100,
				PlatformFee:       30,
				Payout:            170,
			},
		},
		{
			name:             "external location carries no fee",
			photographerRate: 100,
			locationRate:     0,
			duration:         2 * time.Hour,
			want: pricing.Quote{
				Total:             200,
				PhotographerShare: 200,
				LocationFee:       0,
				PlatformFee:       20,
				Payout:            180,
			},
		},
		{
			name:             "partial hour prorates by minute",
			photographerRate: 6000,
			locationRate:     0,
			duration:         90 * time.Minute,
			want: pricing.Quote{
				Total:             9000,
				PhotographerShare: 9000,
				LocationFee:       0,
				PlatformFee:       900,
				Payout:            8100,
			},
		},
		{
			name:             "commission rounds down",
			photographerRate: 99,
			locationRate:     0,
			duration:         time.Hour,
			want: pricing.Quote{
				Total:             99,
				PhotographerShare: 99,
				LocationFee:       0,
				PlatformFee:       9,
				Payout:            90,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := calc.Calculate(tt.photographerRate, tt.locationRate, tt.duration)
			if err != nil {
				t.Fatalf("calculate failed: %v", err)
			}
			if *got != tt.want {
				t.Fatalf("got %+v, want %+v", *got, tt.want)
			}
		})
	}
}

func TestCalculateSplitConservesTotal(t *testing.T) {
	calc := pricing.NewCalculator(15)

	q, err := calc.Calculate(12345, 6789, 95*time.Minute)
	if err != nil {
		t.Fatalf("calculate failed: %v", err)
	}
	if q.Payout+q.PlatformFee+q.LocationFee != q.Total {
		t.Fatalf("split does not sum to total: %+v", q)
	}
}

func TestCalculateInvalidInterval(t *testing.T) {
	calc := pricing.NewCalculator(10)

	if _, err := calc.Calculate(100, 50, 0); !errors.Is(err, pricing.ErrInvalidInterval) {
		t.Fatalf("expected ErrInvalidInterval for zero duration, got %v", err)
	}
	if _, err := calc.Calculate(100, 50, -time.Hour); !errors.Is(err, pricing.ErrInvalidInterval) {
		t.Fatalf("expected ErrInvalidInterval for negative duration, got %v", err)
	}
}
