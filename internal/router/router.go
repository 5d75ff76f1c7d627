package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

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
	"github.com/clinicore/records-api/pkg/metrics"
)

// Handlers collects everything the router mounts.
type Handlers struct {
	Auth          *authhandler.Handler
	Patient       *patienthandler.Handler
	Surgery       *surgeryhandler.Handler
	DoctorNotes   *notehandler.Handler
	SurgicalNotes *notehandler.Handler
	Audit         *audithandler.Handler
	Reminder      *reminderhandler.Handler
	Document      *documenthandler.Handler
	Media         *mediahandler.Handler
	Notification  *notificationhandler.Handler
	Webhook       *notificationhandler.WebhookHandler
	Health        *healthhandler.Handler
}

func New(cfg *config.Config, authMW *middleware.AuthMiddleware, m *metrics.Metrics, h Handlers) *gin.Engine {
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Metrics(m),
		middleware.ErrorHandler(cfg.Production()),
		middleware.NewRateLimiter(cfg.RateLimit).Handler(),
	)

	h.Health.RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	h.Auth.RegisterPublicRoutes(v1)
	h.Webhook.RegisterPublicRoutes(v1)

	authed := v1.Group("")
	authed.Use(authMW.Authenticate(), middleware.AuditMeta())
	{
		h.Auth.RegisterRoutes(authed)
		h.Patient.RegisterRoutes(authed)
		h.Surgery.RegisterRoutes(authed)
		h.DoctorNotes.RegisterRoutes(authed)
		h.SurgicalNotes.RegisterRoutes(authed)
		h.Audit.RegisterRoutes(authed)
		h.Reminder.RegisterRoutes(authed)
		h.Document.RegisterRoutes(authed)
		h.Media.RegisterRoutes(authed)
		h.Notification.RegisterRoutes(authed)
	}

	return r
}
