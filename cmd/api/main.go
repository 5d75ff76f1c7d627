package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/clinicore/records-api/internal/config"
	audithandler "github.com/clinicore/records-api/internal/handler/audit"
	authhandler "github.com/clinicore/records-api/internal/handler/auth"
	documenthandler "github.com/clinicore/records-api/internal/handler/document"
	healthhandler "github.com/clinicore/records-api/internal/handler/health"
	mediahandler "github.com/clinicore/records-api/internal/handler/media"
	notehandler "github.com/clinicore/records-api/internal/handler/note"
	notificationhandler "github.com/clinicore/records-api/internal/handler/notification"
	patienthandler "github.com/clinicore/records-api/internal/handler/patient"
	reminderhandler "github.com/clinicore/records-api/internal/handler/reminder"
	surgeryhandler "github.com/clinicore/records-api/internal/handler/surgery"
	"github.com/clinicore/records-api/internal/middleware"
	"github.com/clinicore/records-api/internal/notifier/email"
	"github.com/clinicore/records-api/internal/notifier/whatsapp"
	"github.com/clinicore/records-api/internal/repository/postgres"
	"github.com/clinicore/records-api/internal/router"
	auditService "github.com/clinicore/records-api/internal/service/audit"
	authService "github.com/clinicore/records-api/internal/service/auth"
	documentService "github.com/clinicore/records-api/internal/service/document"
	mediaService "github.com/clinicore/records-api/internal/service/media"
	noteService "github.com/clinicore/records-api/internal/service/note"
	patientService "github.com/clinicore/records-api/internal/service/patient"
	reminderService "github.com/clinicore/records-api/internal/service/reminder"
	surgeryService "github.com/clinicore/records-api/internal/service/surgery"
	"github.com/clinicore/records-api/pkg/auth"
	"github.com/clinicore/records-api/pkg/logger"
	"github.com/clinicore/records-api/pkg/messaging"
	redisbroker "github.com/clinicore/records-api/pkg/messaging/redis"
	"github.com/clinicore/records-api/pkg/metrics"
	"github.com/clinicore/records-api/pkg/upload"
)

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

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	surgeryRepo := postgres.NewSurgeryRepository(db)
	noteRepo := postgres.NewNoteRepository(db)
	auditRepo := postgres.NewAuditRepository(db)
	reminderRepo := postgres.NewReminderRepository(db)
	documentRepo := postgres.NewDocumentRequestRepository(db)
	mediaRepo := postgres.NewMediaRepository(db)

	m := metrics.New("records_api")

	// The broker is optional; without Redis the API runs and reminder
	// outcome events are simply not published.
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

	// Notification adapters; missing credentials degrade to
	// not-configured rather than failing startup.
	waCfg, err := whatsapp.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read whatsapp environment")
	}
	waClient := whatsapp.NewClient(waCfg, log.Logger)

	emailCfg, err := email.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read smtp environment")
	}
	emailSender := email.NewSender(emailCfg)

	tokens := auth.NewJWTService(
		cfg.JWT.Secret,
		time.Duration(cfg.JWT.ExpiryHours)*time.Hour,
		cfg.JWT.Issuer,
	)

	// Services
	auditSvc := auditService.NewService(auditRepo)
	authSvc := authService.NewService(userRepo, tokens, auditSvc)
	patientSvc := patientService.NewService(patientRepo, auditSvc)
	surgerySvc := surgeryService.NewService(surgeryRepo, patientRepo, auditSvc)
	doctorNotesSvc := noteService.NewService(noteRepo, noteService.DoctorNotes(), auditSvc)
	surgicalNotesSvc := noteService.NewService(noteRepo, noteService.SurgicalNotes(), auditSvc)
	reminderSvc := reminderService.NewService(reminderRepo, patientRepo, waClient, broker, m, auditSvc, cfg.Reminders.BatchSize)
	documentSvc := documentService.NewService(documentRepo, patientRepo, waClient, emailSender, m, auditSvc)
	mediaSvc := mediaService.NewService(mediaRepo, upload.NewValidator(cfg.Uploads.MaxBytes), cfg.Uploads.Dir, auditSvc)

	router.RegisterValidators()

	engine := router.New(cfg, middleware.NewAuthMiddleware(tokens), m, router.Handlers{
		Auth:          authhandler.NewHandler(authSvc),
		Patient:       patienthandler.NewHandler(patientSvc),
		Surgery:       surgeryhandler.NewHandler(surgerySvc),
		DoctorNotes:   notehandler.NewDoctorNotesHandler(doctorNotesSvc),
		SurgicalNotes: notehandler.NewSurgicalNotesHandler(surgicalNotesSvc),
		Audit:         audithandler.NewHandler(auditSvc),
		Reminder:      reminderhandler.NewHandler(reminderSvc),
		Document:      documenthandler.NewHandler(documentSvc),
		Media:         mediahandler.NewHandler(mediaSvc),
		Notification:  notificationhandler.NewHandler(waClient, emailSender),
		Webhook:       notificationhandler.NewWebhookHandler(waClient),
		Health:        healthhandler.NewHandler(db),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}
