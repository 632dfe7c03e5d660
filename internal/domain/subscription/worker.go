package subscription

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const sweepLeaseKey = "subscription:sweep:lease"

// Worker runs the expiry sweep on a timer. With several instances
// behind a load balancer, a short redis lease keeps them from sweeping
// at the same moment; the sweep itself is idempotent either way.
type Worker struct {
	svc      *Service
	redis    *redis.Client
	interval time.Duration
	stopCh   chan struct{}
}

func NewWorker(svc *Service, rdb *redis.Client, interval time.Duration) *Worker {
	if interval == 0 {
		interval = 1 * time.Hour
	}
	return &Worker{
		svc:      svc,
		redis:    rdb,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

func (w *Worker) Start() {
	log.Info().Dur("interval", w.interval).Msg("Starting subscription expiry worker...")
	go w.loop()
}

func (w *Worker) Stop() {
	log.Info().Msg("Stopping subscription expiry worker...")
	close(w.stopCh)
}

func (w *Worker) loop() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.sweep()

	for {
		select {
		case <-ticker.C:
			w.sweep()
		case <-w.stopCh:
			return
		}
	}
}

func (w *Worker) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if !w.acquireLease(ctx) {
		log.Debug().Msg("subscription sweep lease held elsewhere, skipping")
		return
	}

	if _, err := w.svc.Sweep(ctx); err != nil {
		log.Error().Err(err).Msg("subscription expiry sweep failed")
	}
}

func (w *Worker) acquireLease(ctx context.Context) bool {
	if w.redis == nil {
		return true
	}
	ok, err := w.redis.SetNX(ctx, sweepLeaseKey, "1", w.interval/2).Result()
	if err != nil {
		log.Warn().Err(err).Msg("sweep lease check failed, sweeping anyway")
		return true
	}
	return ok
}
