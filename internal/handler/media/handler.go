package media

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clinicore/records-api/internal/handler"
	"github.com/clinicore/records-api/internal/middleware"
	"github.com/clinicore/records-api/internal/model"
	"github.com/clinicore/records-api/internal/policy"
	"github.com/clinicore/records-api/internal/service/media"
)

type Handler struct {
	service media.Service
}

func NewHandler(service media.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	files := r.Group("/media")
	{
		files.POST("", middleware.Authorize(policy.ResourceMedia, policy.ActionCreate), h.Upload)
		files.GET("", middleware.Authorize(policy.ResourceMedia, policy.ActionList), h.List)
		files.GET("/:id", middleware.Authorize(policy.ResourceMedia, policy.ActionRead), h.Download)
		files.DELETE("/:id", middleware.Authorize(policy.ResourceMedia, policy.ActionArchive), h.Archive)
	}
}

func (h *Handler) Upload(c *gin.Context) {
	actor, ok := handler.Actor(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("file is required"))
		return
	}

	var patientID *uuid.UUID
	if raw := c.PostForm("patient_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient_id"))
			return
		}
		patientID = &id
	}

	uploaded, err := h.service.Upload(c.Request.Context(), actor, patientID, fileHeader)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(uploaded))
}

func (h *Handler) Download(c *gin.Context) {
	actor, ok := handler.Actor(c)
	if !ok {
		return
	}
	id, ok := handler.UUIDParam(c, "id")
	if !ok {
		return
	}

	file, path, err := h.service.Get(c.Request.Context(), actor, id)
	if err != nil {
		c.Error(err)
		return
	}
	c.FileAttachment(path, file.FileName)
}

func (h *Handler) List(c *gin.Context) {
	actor, ok := handler.Actor(c)
	if !ok {
		return
	}

	var filter model.MediaFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	files, total, err := h.service.List(c.Request.Context(), actor, &filter)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewPagedResponse(files, total, filter.Pagination))
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
