package dto

import (
	"time"
)

// IssueLoanRequest is the payload for issuing a copy.
// DueDate is optional; when absent it is computed from the member
// category's loan period.
type IssueLoanRequest struct {
	TitleID  string     `json:"titleId" binding:"required"`
	MemberID string     `json:"memberId" binding:"required"`
	DueDate  *time.Time `json:"dueDate"`
}

// LoanListQuery narrows loan listings.
type LoanListQuery struct {
	MemberID   string `form:"memberId"`
	TitleID    string `form:"titleId"`
	Status     string `form:"status"`
	ActiveOnly bool   `form:"activeOnly"`
	Limit      int    `form:"limit,default=50"`
	Offset     int    `form:"offset"`
}
