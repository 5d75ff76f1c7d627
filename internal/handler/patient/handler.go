package patient

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clinicore/records-api/internal/handler"
	"github.com/clinicore/records-api/internal/middleware"
	"github.com/clinicore/records-api/internal/model"
	"github.com/clinicore/records-api/internal/policy"
	"github.com/clinicore/records-api/internal/service/patient"
)

type Handler struct {
	service patient.Service
}

func NewHandler(service patient.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.POST("", middleware.Authorize(policy.ResourcePatients, policy.ActionCreate), h.Create)
		patients.GET("", middleware.Authorize(policy.ResourcePatients, policy.ActionList), h.List)
		patients.GET("/search", middleware.Authorize(policy.ResourcePatients, policy.ActionSearch), h.Search)
		patients.GET("/:patientId", middleware.Authorize(policy.ResourcePatients, policy.ActionRead), h.Get)
		patients.PUT("/:patientId", middleware.Authorize(policy.ResourcePatients, policy.ActionUpdate), h.Update)
		patients.DELETE("/:patientId", middleware.Authorize(policy.ResourcePatients, policy.ActionArchive), h.Archive)
	}
}

func (h *Handler) Create(c *gin.Context) {
	actor, ok := handler.Actor(c)
	if !ok {
		return
	}

	var req model.CreatePatientRequest
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
	id, ok := handler.UUIDParam(c, "patientId")
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
	id, ok := handler.UUIDParam(c, "patientId")
	if !ok {
		return
	}

	var req model.UpdatePatientRequest
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
	id, ok := handler.UUIDParam(c, "patientId")
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

	var filter model.PatientFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	patients, total, err := h.service.List(c.Request.Context(), actor, &filter)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewPagedResponse(patients, total, filter.Pagination))
}

func (h *Handler) Search(c *gin.Context) {
	actor, ok := handler.Actor(c)
	if !ok {
		return
	}

	results, err := h.service.Search(c.Request.Context(), actor, c.Query("q"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(results))
}
