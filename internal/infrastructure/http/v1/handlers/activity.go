package handlers

import (
	"github.com/gin-gonic/gin"

	"pustakalaya/internal/domain/activity"
	"pustakalaya/internal/infrastructure/http/v1/dto"
)

// ActivityHandler serves the activity feed and loan notices.
type ActivityHandler struct {
	*BaseHandler
	service *activity.Service
}

// NewActivityHandler creates a new activity handler.
func NewActivityHandler(base *BaseHandler, service *activity.Service) *ActivityHandler {
	return &ActivityHandler{BaseHandler: base, service: service}
}

// RegisterRoutes wires the activity endpoints.
func (h *ActivityHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("/hide-before", h.HideBefore)
}

// RegisterNoticeRoutes wires the notice endpoints.
func (h *ActivityHandler) RegisterNoticeRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.ListNotices)
	rg.POST("/generate", h.Generate)
}

// List returns recent events for the requesting viewer, display-normalized.
func (h *ActivityHandler) List(c *gin.Context) {
	limit := h.ParseIntQuery(c, "limit", 50)

	events, err := h.service.List(c.Request.Context(), limit)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, events)
}

// HideBefore moves the viewer's feed cutoff.
func (h *ActivityHandler) HideBefore(c *gin.Context) {
	var req dto.HideActivityRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.HideBefore(c.Request.Context(), req.HiddenBefore); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "activity hidden")
}

// ListNotices returns today's loan notices.
func (h *ActivityHandler) ListNotices(c *gin.Context) {
	limit := h.ParseIntQuery(c, "limit", 100)

	notices, err := h.service.ListNotices(c.Request.Context(), limit)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, notices)
}

// Generate derives overdue and due-soon notices now. Idempotent per day.
func (h *ActivityHandler) Generate(c *gin.Context) {
	if err := h.service.GenerateLoanNotices(c.Request.Context()); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "notices generated")
}
