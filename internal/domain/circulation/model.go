// Package circulation governs the loan state machine: issue, return and the
// overdue sweep. Every transition updates the availability ledger in the
// same transaction.
package circulation

import (
	"context"
	"time"

	"pustakalaya/internal/core/apperror"
	"pustakalaya/internal/core/entity"
	"pustakalaya/internal/core/id"
)

// LoanStatus is the loan state.
// issued -> returned (terminal)
// issued -> overdue  (recomputed by the sweep, not a direct transition)
// overdue -> returned (terminal)
// Nothing leaves returned.
type LoanStatus string

const (
	LoanIssued   LoanStatus = "issued"
	LoanOverdue  LoanStatus = "overdue"
	LoanReturned LoanStatus = "returned"
)

// Loan is one instance of a title lent to a member.
type Loan struct {
	entity.BaseEntity

	TitleID  id.ID `db:"title_id" json:"titleId"`
	MemberID id.ID `db:"member_id" json:"memberId"`

	IssuedAt   time.Time  `db:"issued_at" json:"issuedAt"`
	DueDate    time.Time  `db:"due_date" json:"dueDate"`
	ReturnedAt *time.Time `db:"returned_at" json:"returnedAt,omitempty"`

	Status LoanStatus `db:"status" json:"status"`
}

// NewLoan issues a title to a member.
func NewLoan(titleID, memberID id.ID, dueDate time.Time) *Loan {
	return &Loan{
		BaseEntity: entity.NewBaseEntity(),
		TitleID:    titleID,
		MemberID:   memberID,
		IssuedAt:   time.Now().UTC(),
		DueDate:    dueDate,
		Status:     LoanIssued,
	}
}

// Active reports whether the loan still holds a copy.
func (l *Loan) Active() bool {
	return l.Status == LoanIssued || l.Status == LoanOverdue
}

// Validate implements entity.Validatable.
func (l *Loan) Validate(ctx context.Context) error {
	if id.IsNil(l.TitleID) {
		return apperror.NewValidation("title is required").
			WithDetail("field", "titleId")
	}
	if id.IsNil(l.MemberID) {
		return apperror.NewValidation("member is required").
			WithDetail("field", "memberId")
	}
	if l.DueDate.Before(l.IssuedAt) {
		return apperror.NewValidation("due date cannot precede the issue date").
			WithDetail("field", "dueDate")
	}
	return nil
}
