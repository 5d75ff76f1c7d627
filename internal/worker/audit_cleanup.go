package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/clinicore/records-api/internal/service/audit"
	"github.com/clinicore/records-api/pkg/metrics"
)

// AuditCleanupWorker periodically deletes audit entries past the
// configured retention. The retention floor is enforced by the audit
// service, so a misconfigured short retention is rejected every cycle
// rather than silently deleting too much.
type AuditCleanupWorker struct {
	service       *audit.Service
	retentionDays int
	interval      time.Duration
	metrics       *metrics.Metrics
}

func NewAuditCleanupWorker(service *audit.Service, retentionDays int, interval time.Duration, m *metrics.Metrics) *AuditCleanupWorker {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &AuditCleanupWorker{
		service:       service,
		retentionDays: retentionDays,
		interval:      interval,
		metrics:       m,
	}
}

// Run blocks until ctx is cancelled. One cleanup runs at startup, then
// on every tick.
func (w *AuditCleanupWorker) Run(ctx context.Context) {
	log.Info().
		Int("retention_days", w.retentionDays).
		Dur("interval", w.interval).
		Msg("audit cleanup worker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.cleanup(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("audit cleanup worker stopped")
			return
		case <-ticker.C:
			w.cleanup(ctx)
		}
	}
}

func (w *AuditCleanupWorker) cleanup(ctx context.Context) {
	result, err := w.service.Cleanup(ctx, w.retentionDays)
	if err != nil {
		log.Error().Err(err).Msg("audit cleanup failed")
		return
	}
	if w.metrics != nil {
		w.metrics.AuditEntriesPurged.Add(float64(result.Deleted))
	}
	if result.Deleted > 0 {
		log.Info().
			Int64("deleted", result.Deleted).
			Time("cutoff", result.Cutoff).
			Msg("audit cleanup complete")
	}
}
