package handlers

import (
	"github.com/gin-gonic/gin"

	"pustakalaya/internal/domain/catalogs/title"
	"pustakalaya/internal/infrastructure/http/v1/dto"
)

// TitleHandler serves the Title catalog endpoints.
type TitleHandler struct {
	*BaseHandler
	service *title.Service
}

// NewTitleHandler creates a new title handler.
func NewTitleHandler(base *BaseHandler, service *title.Service) *TitleHandler {
	return &TitleHandler{BaseHandler: base, service: service}
}

// RegisterRoutes wires the title endpoints.
func (h *TitleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}

// Create adds a catalog entry.
func (h *TitleHandler) Create(c *gin.Context) {
	var req dto.CreateTitleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	t := req.ToEntity()
	if err := h.service.Create(c.Request.Context(), t); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, t.ID.String())
}

// Get retrieves one catalog entry with its derived status.
func (h *TitleHandler) Get(c *gin.Context) {
	titleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	t, err := h.service.GetByID(c.Request.Context(), titleID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewTitleResponse(t))
}

// List returns catalog entries matching the filter.
func (h *TitleHandler) List(c *gin.Context) {
	var q dto.ListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	items, err := h.service.List(c.Request.Context(), title.ListFilter{
		Search:   q.Search,
		Category: c.Query("category"),
		Limit:    q.Limit,
		Offset:   q.Offset,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewTitleListResponse(items))
}

// Update edits a catalog entry. Copy-count changes preserve the number of
// issued copies.
func (h *TitleHandler) Update(c *gin.Context) {
	titleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateTitleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	t := req.ToEntity()
	t.ID = titleID
	t.Version = req.Version
	if err := h.service.Update(c.Request.Context(), t); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewTitleResponse(t))
}

// Delete soft-deletes an entry; refused while active loans reference it.
func (h *TitleHandler) Delete(c *gin.Context) {
	titleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), titleID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
