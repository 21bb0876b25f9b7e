package handlers

import (
	"github.com/gin-gonic/gin"

	"pustakalaya/internal/domain/catalogs/member"
	"pustakalaya/internal/infrastructure/http/v1/dto"
)

// MemberHandler serves the Member catalog endpoints.
type MemberHandler struct {
	*BaseHandler
	service *member.Service
}

// NewMemberHandler creates a new member handler.
func NewMemberHandler(base *BaseHandler, service *member.Service) *MemberHandler {
	return &MemberHandler{BaseHandler: base, service: service}
}

// RegisterRoutes wires the member endpoints.
func (h *MemberHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Register)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.POST("/:id/deactivate", h.Deactivate)
}

// Register creates a new borrower.
func (h *MemberHandler) Register(c *gin.Context) {
	var req dto.RegisterMemberRequest
	if !h.BindJSON(c, &req) {
		return
	}

	m := req.ToEntity()
	if err := h.service.Register(c.Request.Context(), m); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, m.ID.String())
}

// Get retrieves one member.
func (h *MemberHandler) Get(c *gin.Context) {
	memberID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	m, err := h.service.GetByID(c.Request.Context(), memberID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, m)
}

// List returns members matching the filter.
func (h *MemberHandler) List(c *gin.Context) {
	var q dto.MemberListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	items, err := h.service.List(c.Request.Context(), member.ListFilter{
		Search:     q.Search,
		Category:   member.CategoryCode(q.Category),
		ActiveOnly: q.ActiveOnly,
		Limit:      q.Limit,
		Offset:     q.Offset,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, items)
}

// Update edits member details.
func (h *MemberHandler) Update(c *gin.Context) {
	memberID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateMemberRequest
	if !h.BindJSON(c, &req) {
		return
	}

	current, err := h.service.GetByID(c.Request.Context(), memberID)
	if err != nil {
		h.Error(c, err)
		return
	}

	m := req.ToEntity()
	m.BaseEntity = current.BaseEntity
	m.Version = req.Version
	m.Active = current.Active
	if err := h.service.Update(c.Request.Context(), m); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, m)
}

// Deactivate disables a member without touching loan history.
func (h *MemberHandler) Deactivate(c *gin.Context) {
	memberID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Deactivate(c.Request.Context(), memberID); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "member deactivated")
}
