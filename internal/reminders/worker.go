// Package reminders fires due reminders on a polling loop.
package reminders

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/streakedin/streakedin/internal/metrics"
	"github.com/streakedin/streakedin/internal/model"
)

// Notifier delivers a reminder to its owner.
type Notifier interface {
	Notify(ctx context.Context, r *model.Reminder) error
}

// Scheduler is the subset of the reminder service the worker needs.
type Scheduler interface {
	Due(ctx context.Context, limit int) ([]*model.Reminder, error)
	Fire(ctx context.Context, r *model.Reminder) (*model.Reminder, error)
}

// Config controls batch size and polling cadence.
type Config struct {
	BatchSize int           // reminders fired per cycle
	Interval  time.Duration // poll interval
}

// Worker fires due reminders and schedules their next occurrence.
type Worker struct {
	sched    Scheduler
	notifier Notifier
	cfg      Config
	log      zerolog.Logger
}

func NewWorker(sched Scheduler, notifier Notifier, cfg Config, log zerolog.Logger) *Worker {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if notifier == nil {
		notifier = LogNotifier{Log: log}
	}
	return &Worker{sched: sched, notifier: notifier, cfg: cfg, log: log}
}

// Run starts the polling loop until ctx is canceled.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info().Int("batch", w.cfg.BatchSize).Dur("interval", w.cfg.Interval).Msg("reminder worker starting")
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("reminder worker stopping")
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.ProcessOnce(ctx); err != nil {
				w.log.Error().Err(err).Msg("reminder processOnce")
			}
		}
	}
}

// ProcessOnce fires one batch and returns how many reminders were fired.
// A reminder whose delivery fails keeps its trigger time and is retried
// on the next cycle.
func (w *Worker) ProcessOnce(ctx context.Context) (int, error) {
	due, err := w.sched.Due(ctx, w.cfg.BatchSize)
	if err != nil {
		return 0, err
	}
	fired := 0
	for _, r := range due {
		if err := w.notifier.Notify(ctx, r); err != nil {
			w.log.Warn().Err(err).Str("reminder_id", r.ID).Msg("reminder delivery failed")
			continue
		}
		if _, err := w.sched.Fire(ctx, r); err != nil {
			w.log.Error().Stack().Err(err).Str("reminder_id", r.ID).Msg("advance reminder failed")
			continue
		}
		metrics.RemindersDispatchedTotal.WithLabelValues(string(r.Type)).Inc()
		fired++
	}
	return fired, nil
}

// LogNotifier records deliveries in the service log. Browser reminders
// reach clients through the changefeed; email and SMS have no gateway.
type LogNotifier struct {
	Log zerolog.Logger
}

func (n LogNotifier) Notify(_ context.Context, r *model.Reminder) error {
	n.Log.Info().
		Str("user_id", r.UserID).
		Str("reminder_id", r.ID).
		Str("type", string(r.Type)).
		Str("title", r.Title).
		Msg("reminder triggered")
	return nil
}
