package note

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clinicore/records-api/internal/handler"
	"github.com/clinicore/records-api/internal/middleware"
	"github.com/clinicore/records-api/internal/model"
	"github.com/clinicore/records-api/internal/policy"
	"github.com/clinicore/records-api/internal/service/note"
)

// Handler serves one deployment of the note service. Doctor notes mount
// at /private-notes; surgical notes nest under a patient.
type Handler struct {
	service       note.Service
	resource      policy.Resource
	patientScoped bool
}

func NewDoctorNotesHandler(service note.Service) *Handler {
	return &Handler{service: service, resource: policy.ResourceDoctorNotes}
}

func NewSurgicalNotesHandler(service note.Service) *Handler {
	return &Handler{service: service, resource: policy.ResourceSurgicalNotes, patientScoped: true}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	var notes *gin.RouterGroup
	if h.patientScoped {
		notes = r.Group("/patients/:patientId/notes")
	} else {
		notes = r.Group("/private-notes")
	}

	notes.POST("", middleware.Authorize(h.resource, policy.ActionCreate), h.Create)
	notes.GET("", middleware.Authorize(h.resource, policy.ActionList), h.List)
	notes.GET("/search", middleware.Authorize(h.resource, policy.ActionSearch), h.Search)
	notes.GET("/:id", middleware.Authorize(h.resource, policy.ActionRead), h.Get)
	notes.PUT("/:id", middleware.Authorize(h.resource, policy.ActionUpdate), h.Update)
	notes.DELETE("/:id", middleware.Authorize(h.resource, policy.ActionArchive), h.Archive)
}

// patientID resolves the patient path parameter for the nested variant.
func (h *Handler) patientID(c *gin.Context) (*uuid.UUID, bool) {
	if !h.patientScoped {
		return nil, true
	}
	id, ok := handler.UUIDParam(c, "patientId")
	if !ok {
		return nil, false
	}
	return &id, true
}

func (h *Handler) Create(c *gin.Context) {
	actor, ok := handler.Actor(c)
	if !ok {
		return
	}
	patientID, ok := h.patientID(c)
	if !ok {
		return
	}

	var req model.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	created, err := h.service.Create(c.Request.Context(), actor, patientID, &req)
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

	var req model.UpdateNoteRequest
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
	patientID, ok := h.patientID(c)
	if !ok {
		return
	}

	var filter model.NoteFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	notes, total, err := h.service.List(c.Request.Context(), actor, patientID, &filter)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewPagedResponse(notes, total, filter.Pagination))
}

func (h *Handler) Search(c *gin.Context) {
	actor, ok := handler.Actor(c)
	if !ok {
		return
	}
	patientID, ok := h.patientID(c)
	if !ok {
		return
	}

	results, err := h.service.Search(c.Request.Context(), actor, patientID, c.Query("q"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(results))
}
