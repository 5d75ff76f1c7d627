package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/clinicore/records-api/internal/config"
	"github.com/clinicore/records-api/internal/notifier/whatsapp"
	"github.com/clinicore/records-api/internal/repository/postgres"
	auditService "github.com/clinicore/records-api/internal/service/audit"
	reminderService "github.com/clinicore/records-api/internal/service/reminder"
	"github.com/clinicore/records-api/internal/worker"
	"github.com/clinicore/records-api/pkg/logger"
	"github.com/clinicore/records-api/pkg/messaging"
	redisbroker "github.com/clinicore/records-api/pkg/messaging/redis"
	"github.com/clinicore/records-api/pkg/metrics"
)

const healthPort = 8081

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger.Init(&logger.Config{
		Level:  logger.InfoLevel,
		Pretty: !cfg.Production(),
	})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	var broker messaging.Broker
	if cfg.Redis.URL != "" {
		zl := zerolog.New(os.Stderr).With().Timestamp().Logger()
		broker, err = redisbroker.NewBroker(redisbroker.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			RetryBackoff: cfg.Redis.RetryBackoff,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		}, &zl)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer broker.Close()
	}

	waCfg, err := whatsapp.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read whatsapp environment")
	}
	waClient := whatsapp.NewClient(waCfg, log.Logger)

	m := metrics.New("records_worker")
	auditSvc := auditService.NewService(postgres.NewAuditRepository(db))
	reminderSvc := reminderService.NewService(
		postgres.NewReminderRepository(db),
		postgres.NewPatientRepository(db),
		waClient,
		broker,
		m,
		auditSvc,
		cfg.Reminders.BatchSize,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		worker.NewReminderWorker(reminderSvc, cfg.Reminders.PollInterval).Run(ctx)
	}()
	go func() {
		defer wg.Done()
		worker.NewAuditCleanupWorker(auditSvc, cfg.Audit.RetentionDays, cfg.Audit.CleanupInterval, m).Run(ctx)
	}()

	// Health endpoint so orchestrators can probe the worker.
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", healthPort),
		Handler: mux,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("health server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	cancel()
	wg.Wait()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}
