package worker

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/umarovdev/konkurs-backend/internal/repository"
	"github.com/umarovdev/konkurs-backend/internal/service"
	"go.uber.org/zap"
)

// RecheckWorker periodically re-runs the subscription verifier for users
// seen within the configured window, so memberships confirmed after the
// user's last explicit check still get credited.
type RecheckWorker struct {
	sched    gocron.Scheduler
	subs     service.SubscriptionService
	ledger   repository.LedgerRepository
	interval time.Duration
	window   time.Duration
	log      *zap.Logger
}

func NewRecheckWorker(subs service.SubscriptionService, ledger repository.LedgerRepository, interval, window time.Duration, log *zap.Logger) (*RecheckWorker, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &RecheckWorker{
		sched:    sched,
		subs:     subs,
		ledger:   ledger,
		interval: interval,
		window:   window,
		log:      log,
	}, nil
}

func (w *RecheckWorker) Start() error {
	_, err := w.sched.NewJob(
		gocron.DurationJob(w.interval),
		gocron.NewTask(w.runOnce),
	)
	if err != nil {
		return err
	}
	w.sched.Start()
	w.log.Info("subscription re-check worker started",
		zap.Duration("interval", w.interval),
		zap.Duration("window", w.window))
	return nil
}

func (w *RecheckWorker) Stop() error {
	return w.sched.Shutdown()
}

func (w *RecheckWorker) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), w.interval)
	defer cancel()

	ids, err := w.ledger.ListSeenSince(ctx, time.Now().Add(-w.window))
	if err != nil {
		w.log.Error("re-check: list recent users", zap.Error(err))
		return
	}
	checked, awarded := 0, 0
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		res, err := w.subs.CheckAndAward(ctx, id)
		if err != nil {
			// Per-user failures are isolated, the batch keeps going.
			w.log.Warn("re-check failed for user", zap.Int64("user_id", id), zap.Error(err))
			continue
		}
		checked++
		awarded += res.NewlyAwardedPoints
	}
	if checked > 0 || len(ids) > 0 {
		w.log.Info("re-check pass complete",
			zap.Int("candidates", len(ids)),
			zap.Int("checked", checked),
			zap.Int("points_awarded", awarded))
	}
}
