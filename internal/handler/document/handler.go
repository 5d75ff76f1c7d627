package document

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clinicore/records-api/internal/handler"
	"github.com/clinicore/records-api/internal/middleware"
	"github.com/clinicore/records-api/internal/model"
	"github.com/clinicore/records-api/internal/policy"
	"github.com/clinicore/records-api/internal/service/document"
)

type Handler struct {
	service document.Service
}

func NewHandler(service document.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	documents := r.Group("/document-requests")
	{
		documents.POST("", middleware.Authorize(policy.ResourceDocuments, policy.ActionCreate), h.Create)
		documents.GET("", middleware.Authorize(policy.ResourceDocuments, policy.ActionList), h.List)
	}
}

func (h *Handler) Create(c *gin.Context) {
	actor, ok := handler.Actor(c)
	if !ok {
		return
	}

	var req model.CreateDocumentRequestRequest
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

func (h *Handler) List(c *gin.Context) {
	actor, ok := handler.Actor(c)
	if !ok {
		return
	}

	var patientID *uuid.UUID
	if raw := c.Query("patient_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient_id"))
			return
		}
		patientID = &id
	}

	var p model.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	requests, total, err := h.service.List(c.Request.Context(), actor, patientID, &p)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewPagedResponse(requests, total, p))
}
