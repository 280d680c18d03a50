package exam

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper drives the background deadline pass. It runs one reconciling
// sweep per interval across every live exam; the lazy sweep on read
// covers exams between ticks.
type Sweeper struct {
	svc      *Service
	interval time.Duration
	log      *slog.Logger
}

func NewSweeper(svc *Service, interval time.Duration, log *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if log == nil {
		log = slog.Default()
	}
	return &Sweeper{svc: svc, interval: interval, log: log}
}

// Run sweeps once immediately, then on every tick until ctx is done.
func (w *Sweeper) Run(ctx context.Context) {
	w.SweepOnce(ctx)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.SweepOnce(ctx)
		}
	}
}

// SweepOnce reconciles every live exam. One exam failing must not stop
// the pass: its sweep is retried on the next tick anyway.
func (w *Sweeper) SweepOnce(ctx context.Context) {
	ids, err := w.svc.store.ListLiveExamIDs(ctx)
	if err != nil {
		w.log.Error("list live exams", "err", err)
		return
	}
	missed, finalized := 0, 0
	for _, id := range ids {
		outcome, err := w.svc.SweepExam(ctx, id)
		if err != nil {
			w.log.Error("sweep exam", "exam_id", id, "err", err)
			continue
		}
		missed += len(outcome.Missed)
		if outcome.Finalized {
			finalized++
		}
	}
	if missed > 0 || finalized > 0 {
		w.log.Info("sweep pass", "exams", len(ids), "days_missed", missed, "finalized", finalized)
	}
}
