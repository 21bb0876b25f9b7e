package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"pustakalaya/internal/core/apperror"
	"pustakalaya/internal/core/id"
	"pustakalaya/internal/domain/circulation"
	"pustakalaya/internal/infrastructure/http/v1/dto"
)

// CirculationHandler serves loan endpoints.
type CirculationHandler struct {
	*BaseHandler
	service *circulation.Service
}

// NewCirculationHandler creates a new circulation handler.
func NewCirculationHandler(base *BaseHandler, service *circulation.Service) *CirculationHandler {
	return &CirculationHandler{BaseHandler: base, service: service}
}

// RegisterRoutes wires the loan endpoints.
func (h *CirculationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Issue)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.POST("/:id/return", h.Return)
	rg.POST("/sweep-overdue", h.SweepOverdue)
}

// Issue lends a copy of a title to a member.
func (h *CirculationHandler) Issue(c *gin.Context) {
	var req dto.IssueLoanRequest
	if !h.BindJSON(c, &req) {
		return
	}

	titleID, err := id.Parse(req.TitleID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid titleId"))
		return
	}
	memberID, err := id.Parse(req.MemberID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid memberId"))
		return
	}

	var dueDate time.Time
	if req.DueDate != nil {
		dueDate = *req.DueDate
	}

	loan, err := h.service.Issue(c.Request.Context(), titleID, memberID, dueDate)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, loan)
}

// Get retrieves one loan.
func (h *CirculationHandler) Get(c *gin.Context) {
	loanID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	loan, err := h.service.GetByID(c.Request.Context(), loanID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, loan)
}

// List returns loans matching the filter. Overdue status is recomputed
// before the read.
func (h *CirculationHandler) List(c *gin.Context) {
	var q dto.LoanListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	f := circulation.ListFilter{
		Status:     circulation.LoanStatus(q.Status),
		ActiveOnly: q.ActiveOnly,
		Limit:      q.Limit,
		Offset:     q.Offset,
	}
	if q.MemberID != "" {
		memberID, err := id.Parse(q.MemberID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid memberId"))
			return
		}
		f.MemberID = &memberID
	}
	if q.TitleID != "" {
		titleID, err := id.Parse(q.TitleID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid titleId"))
			return
		}
		f.TitleID = &titleID
	}

	items, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, items)
}

// Return closes a loan and releases its copy. Repeat calls answer with
// ALREADY_RETURNED and never touch availability again.
func (h *CirculationHandler) Return(c *gin.Context) {
	loanID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	loan, err := h.service.Return(c.Request.Context(), loanID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, loan)
}

// SweepOverdue promotes issued loans past their due date.
func (h *CirculationHandler) SweepOverdue(c *gin.Context) {
	promoted, err := h.service.SweepOverdue(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"promoted": promoted})
}
