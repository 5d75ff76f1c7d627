package surgery

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clinicore/records-api/internal/handler"
	"github.com/clinicore/records-api/internal/middleware"
	"github.com/clinicore/records-api/internal/model"
	"github.com/clinicore/records-api/internal/policy"
	"github.com/clinicore/records-api/internal/service/surgery"
)

type Handler struct {
	service surgery.Service
}

func NewHandler(service surgery.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	surgeries := r.Group("/surgeries")
	{
		surgeries.POST("", middleware.Authorize(policy.ResourceSurgeries, policy.ActionCreate), h.Create)
		surgeries.GET("", middleware.Authorize(policy.ResourceSurgeries, policy.ActionList), h.List)
		surgeries.GET("/:id", middleware.Authorize(policy.ResourceSurgeries, policy.ActionRead), h.Get)
		surgeries.PUT("/:id", middleware.Authorize(policy.ResourceSurgeries, policy.ActionUpdate), h.Update)
		surgeries.DELETE("/:id", middleware.Authorize(policy.ResourceSurgeries, policy.ActionArchive), h.Archive)

		surgeries.POST("/:id/follow-ups", middleware.Authorize(policy.ResourceSurgeries, policy.ActionUpdate), h.CreateFollowUp)
		surgeries.GET("/:id/follow-ups", middleware.Authorize(policy.ResourceSurgeries, policy.ActionRead), h.ListFollowUps)
		surgeries.PUT("/:id/follow-ups/:followUpId/complete", middleware.Authorize(policy.ResourceSurgeries, policy.ActionUpdate), h.CompleteFollowUp)
	}
}

func (h *Handler) Create(c *gin.Context) {
	actor, ok := handler.Actor(c)
	if !ok {
		return
	}

	var req model.CreateSurgeryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	created, err := h.service.Create(c.Request.Context(), actor, &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

func (h *Handler) Get(c *gin.Context) {
	actor, ok := handler.Actor(c)
	if !ok {
		return
	}
	id, ok := handler.UUIDParam(c, "id")
	if !ok {
		return
	}

	found, err := h.service.Get(c.Request.Context(), actor, id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(found))
}

func (h *Handler) Update(c *gin.Context) {
	actor, ok := handler.Actor(c)
	if !ok {
		return
	}
	id, ok := handler.UUIDParam(c, "id")
	if !ok {
		return
	}

	var req model.UpdateSurgeryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	updated, err := h.service.Update(c.Request.Context(), actor, id, &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}

func (h *Handler) Archive(c *gin.Context) {
	actor, ok := handler.Actor(c)
	if !ok {
		return
	}
	id, ok := handler.UUIDParam(c, "id")
	if !ok {
		return
	}

	archived, err := h.service.Archive(c.Request.Context(), actor, id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(archived))
}

func (h *Handler) List(c *gin.Context) {
	actor, ok := handler.Actor(c)
	if !ok {
		return
	}

	var filter model.SurgeryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	surgeries, total, err := h.service.List(c.Request.Context(), actor, &filter)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewPagedResponse(surgeries, total, filter.Pagination))
}

func (h *Handler) CreateFollowUp(c *gin.Context) {
	actor, ok := handler.Actor(c)
	if !ok {
		return
	}
	id, ok := handler.UUIDParam(c, "id")
	if !ok {
		return
	}

	var req model.CreateFollowUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	created, err := h.service.CreateFollowUp(c.Request.Context(), actor, id, &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

func (h *Handler) ListFollowUps(c *gin.Context) {
	actor, ok := handler.Actor(c)
	if !ok {
		return
	}
	id, ok := handler.UUIDParam(c, "id")
	if !ok {
		return
	}

	followUps, err := h.service.ListFollowUps(c.Request.Context(), actor, id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(followUps))
}

func (h *Handler) CompleteFollowUp(c *gin.Context) {
	actor, ok := handler.Actor(c)
	if !ok {
		return
	}
	id, ok := handler.UUIDParam(c, "id")
	if !ok {
		return
	}
	followUpID, ok := handler.UUIDParam(c, "followUpId")
	if !ok {
		return
	}

	if err := h.service.CompleteFollowUp(c.Request.Context(), actor, id, followUpID); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}
