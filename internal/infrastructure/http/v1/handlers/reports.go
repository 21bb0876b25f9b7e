package handlers

import (
	"github.com/gin-gonic/gin"

	"pustakalaya/internal/domain/reports"
)

// ReportsHandler serves dashboard statistics.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{BaseHandler: base, service: service}
}

// RegisterRoutes wires the report endpoints.
func (h *ReportsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/dashboard", h.Dashboard)
}

// Dashboard returns catalog and circulation counts. The overdue sweep and
// notice generation run inline first, so the numbers are never stale.
func (h *ReportsHandler) Dashboard(c *gin.Context) {
	stats, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, stats)
}
