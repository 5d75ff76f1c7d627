package notification

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clinicore/records-api/internal/handler"
	"github.com/clinicore/records-api/internal/middleware"
	"github.com/clinicore/records-api/internal/notifier"
	"github.com/clinicore/records-api/internal/policy"
)

// Handler exposes adapter readiness. An unconfigured channel is normal
// in development and shows up here instead of failing startup.
type Handler struct {
	adapters []notifier.Notifier
}

func NewHandler(adapters ...notifier.Notifier) *Handler {
	return &Handler{adapters: adapters}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/notifications/status", middleware.Authorize(policy.ResourceNotifications, policy.ActionRead), h.Status)
}

func (h *Handler) Status(c *gin.Context) {
	statuses := make([]notifier.Status, 0, len(h.adapters))
	for _, a := range h.adapters {
		statuses = append(statuses, a.Status())
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(statuses))
}
