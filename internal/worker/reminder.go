// Package worker holds the background loops: reminder dispatch and
// audit retention cleanup. Both run in the worker binary, off the
// request path.
package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/clinicore/records-api/internal/service/reminder"
)

// ReminderWorker polls for due reminders and dispatches them in batches.
type ReminderWorker struct {
	service  reminder.Service
	interval time.Duration
}

func NewReminderWorker(service reminder.Service, interval time.Duration) *ReminderWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &ReminderWorker{service: service, interval: interval}
}

// Run blocks until ctx is cancelled.
func (w *ReminderWorker) Run(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("reminder worker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("reminder worker stopped")
			return
		case <-ticker.C:
			if _, err := w.service.ProcessDue(ctx); err != nil {
				log.Error().Err(err).Msg("reminder batch failed")
			}
		}
	}
}
