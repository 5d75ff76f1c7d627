package audit

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clinicore/records-api/internal/handler"
	"github.com/clinicore/records-api/internal/middleware"
	"github.com/clinicore/records-api/internal/model"
	"github.com/clinicore/records-api/internal/policy"
	"github.com/clinicore/records-api/internal/service/audit"
)

type Handler struct {
	service *audit.Service
}

func NewHandler(service *audit.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	logs := r.Group("/audit-logs")
	{
		logs.GET("", middleware.Authorize(policy.ResourceAuditLogs, policy.ActionList), h.List)
		logs.GET("/stats", middleware.Authorize(policy.ResourceAuditLogs, policy.ActionStats), h.Stats)
		logs.GET("/export", middleware.Authorize(policy.ResourceAuditLogs, policy.ActionExport), h.Export)
		logs.POST("/cleanup", middleware.Authorize(policy.ResourceAuditLogs, policy.ActionCleanup), h.Cleanup)
	}
}

func (h *Handler) List(c *gin.Context) {
	var filter model.AuditFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	logs, total, err := h.service.List(c.Request.Context(), &filter)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewPagedResponse(logs, total, filter.Pagination))
}

func (h *Handler) Stats(c *gin.Context) {
	var filter model.AuditFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	stats, err := h.service.Stats(c.Request.Context(), &filter)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(stats))
}

func (h *Handler) Export(c *gin.Context) {
	var filter model.AuditFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	logs, err := h.service.Export(c.Request.Context(), &filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=audit-logs.json")
	c.JSON(http.StatusOK, logs)
}

func (h *Handler) Cleanup(c *gin.Context) {
	var req model.CleanupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	result, err := h.service.Cleanup(c.Request.Context(), req.Days)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(result))
}
