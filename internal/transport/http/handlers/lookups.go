package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/msubchak/online-cinema/internal/usecase"
)

// LookupHandler serves one name-keyed lookup collection. The same handler
// backs genres, stars, directors, and certifications; entityName feeds the
// error messages.
type LookupHandler struct {
	service    *usecase.LookupService
	entityName string
}

func NewLookupHandler(service *usecase.LookupService, entityName string) *LookupHandler {
	return &LookupHandler{service: service, entityName: entityName}
}

// LookupListResponse is one page of lookup entries.
type LookupListResponse struct {
	Items []NamedEntityResponse `json:"items"`
	PageMeta
}

func (h *LookupHandler) List(c *gin.Context) {
	page, perPage, err := parsePagination(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, err.Error()))
		return
	}

	result, err := h.service.List(c.Request.Context(), perPage, (page-1)*perPage)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, fmt.Sprintf("Could not list %ss.", h.entityName)))
		return
	}

	c.JSON(http.StatusOK, LookupListResponse{
		Items:    toNamedEntityResponses(result.Entries),
		PageMeta: newPageMeta(c, page, perPage, result.TotalItems),
	})
}

func (h *LookupHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	entity, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrLookupNotFound, Status: http.StatusNotFound, Message: h.notFoundMessage()},
		}, http.StatusInternalServerError, fmt.Sprintf("Could not load %s.", h.entityName))
		return
	}

	c.JSON(http.StatusOK, NamedEntityResponse{ID: entity.ID, Name: entity.Name})
}

func (h *LookupHandler) Create(c *gin.Context) {
	var req NamedEntityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "name is required"))
		return
	}

	entity, err := h.service.Create(c.Request.Context(), req.Name)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrLookupNameRequired, Status: http.StatusBadRequest, Message: "Name is required."},
			{Err: usecase.ErrLookupExists, Status: http.StatusConflict, Message: h.conflictMessage()},
		}, http.StatusInternalServerError, fmt.Sprintf("Could not create %s.", h.entityName))
		return
	}

	c.JSON(http.StatusCreated, NamedEntityResponse{ID: entity.ID, Name: entity.Name})
}

func (h *LookupHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req NamedEntityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "name is required"))
		return
	}

	entity, err := h.service.Rename(c.Request.Context(), id, req.Name)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrLookupNameRequired, Status: http.StatusBadRequest, Message: "Name is required."},
			{Err: usecase.ErrLookupNotFound, Status: http.StatusNotFound, Message: h.notFoundMessage()},
			{Err: usecase.ErrLookupExists, Status: http.StatusConflict, Message: h.conflictMessage()},
		}, http.StatusInternalServerError, fmt.Sprintf("Could not update %s.", h.entityName))
		return
	}

	c.JSON(http.StatusOK, NamedEntityResponse{ID: entity.ID, Name: entity.Name})
}

func (h *LookupHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrLookupNotFound, Status: http.StatusNotFound, Message: h.notFoundMessage()},
		}, http.StatusInternalServerError, fmt.Sprintf("Could not delete %s.", h.entityName))
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *LookupHandler) notFoundMessage() string {
	return strTitle(h.entityName) + " not found."
}

func (h *LookupHandler) conflictMessage() string {
	return fmt.Sprintf("A %s with this name already exists.", h.entityName)
}

// strTitle uppercases the first byte. Entity names here are plain ASCII.
func strTitle(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}
