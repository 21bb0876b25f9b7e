package circulation

import (
	"context"
	"time"

	"pustakalaya/internal/core/id"
)

// Repository defines storage operations for loans.
type Repository interface {
	Create(ctx context.Context, l *Loan) error
	GetByID(ctx context.Context, loanID id.ID) (*Loan, error)
	List(ctx context.Context, f ListFilter) ([]*Loan, error)

	CountActiveByMember(ctx context.Context, memberID id.ID) (int, error)
	CountActiveByTitle(ctx context.Context, titleID id.ID) (int, error)

	// MarkReturned transitions a loan to returned in one conditional update.
	// Returns false when the loan was already returned, so a repeated call
	// can never double-release a copy.
	MarkReturned(ctx context.Context, loanID id.ID, returnedAt time.Time) (bool, error)

	// MarkOverdue promotes every issued loan with a due date strictly before
	// asOf to overdue. Idempotent; returns the number of promoted loans.
	MarkOverdue(ctx context.Context, asOf time.Time) (int64, error)
}

// ListFilter narrows loan listings.
type ListFilter struct {
	MemberID   *id.ID
	TitleID    *id.ID
	Status     LoanStatus
	ActiveOnly bool
	Limit      int
	Offset     int
}
