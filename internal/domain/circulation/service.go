package circulation

import (
	"context"
	"fmt"
	"time"

	"pustakalaya/internal/core/apperror"
	"pustakalaya/internal/core/id"
	"pustakalaya/internal/core/tx"
	"pustakalaya/internal/domain/catalogs/member"
	"pustakalaya/pkg/logger"
)

// CopyLedger is the availability ledger contract, implemented by
// title.Service. Both calls are atomic conditional updates.
type CopyLedger interface {
	ReserveCopy(ctx context.Context, titleID id.ID) error
	ReleaseCopy(ctx context.Context, titleID id.ID) error
}

// MemberReader resolves members and their category limits.
type MemberReader interface {
	GetByID(ctx context.Context, memberID id.ID) (*member.Member, error)
	GetCategory(ctx context.Context, code member.CategoryCode) (*member.Category, error)
}

// Recorder appends circulation activity events. Implemented by activity.Service.
type Recorder interface {
	LoanIssued(ctx context.Context, loanID, titleID, memberID id.ID) error
	LoanReturned(ctx context.Context, loanID, titleID, memberID id.ID) error
}

// Service is the circulation state machine.
type Service struct {
	loans     Repository
	ledger    CopyLedger
	members   MemberReader
	activity  Recorder
	txManager tx.Manager
	now       func() time.Time
}

// NewService creates the circulation service.
func NewService(loans Repository, ledger CopyLedger, members MemberReader, activity Recorder, txManager tx.Manager) *Service {
	return &Service{
		loans:     loans,
		ledger:    ledger,
		members:   members,
		activity:  activity,
		txManager: txManager,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Issue lends one copy of a title to a member. A zero dueDate is computed
// from the member category's loan period.
//
// Preconditions, all checked inside one transaction: the member exists and
// is active, holds fewer than max_books active loans, and a copy is free.
// The copy decrement is a conditional update against the stored count, so
// concurrent issues of the last copy cannot both succeed.
func (s *Service) Issue(ctx context.Context, titleID, memberID id.ID, dueDate time.Time) (*Loan, error) {
	var loan *Loan

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		m, err := s.members.GetByID(ctx, memberID)
		if err != nil {
			return err
		}
		if !m.Active {
			return apperror.NewMemberInactive(memberID)
		}

		cat, err := s.members.GetCategory(ctx, m.Category)
		if err != nil {
			return err
		}

		active, err := s.loans.CountActiveByMember(ctx, memberID)
		if err != nil {
			return fmt.Errorf("count active loans: %w", err)
		}
		if active >= cat.MaxBooks {
			return apperror.NewBorrowLimitExceeded(memberID, cat.MaxBooks)
		}

		if err := s.ledger.ReserveCopy(ctx, titleID); err != nil {
			return err
		}

		if dueDate.IsZero() {
			dueDate = s.now().AddDate(0, 0, cat.LoanPeriodDays)
		}
		loan = NewLoan(titleID, memberID, dueDate)
		if err := loan.Validate(ctx); err != nil {
			return err
		}
		if err := s.loans.Create(ctx, loan); err != nil {
			return fmt.Errorf("create loan: %w", err)
		}

		return s.activity.LoanIssued(ctx, loan.ID, titleID, memberID)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "loan issued",
		"loan_id", loan.ID,
		"title_id", titleID,
		"member_id", memberID,
		"due_date", loan.DueDate.Format("2006-01-02"),
	)
	return loan, nil
}

// Return closes a loan and releases its copy. Idempotency boundary: the
// conditional transition fails with AlreadyReturned on a repeat call and
// availability is incremented exactly once.
func (s *Service) Return(ctx context.Context, loanID id.ID) (*Loan, error) {
	var loan *Loan

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		loan, err = s.loans.GetByID(ctx, loanID)
		if err != nil {
			return err
		}

		returnedAt := s.now()
		ok, err := s.loans.MarkReturned(ctx, loanID, returnedAt)
		if err != nil {
			return fmt.Errorf("mark returned: %w", err)
		}
		if !ok {
			return apperror.NewAlreadyReturned(loanID)
		}
		loan.Status = LoanReturned
		loan.ReturnedAt = &returnedAt

		if err := s.ledger.ReleaseCopy(ctx, loan.TitleID); err != nil {
			return err
		}

		return s.activity.LoanReturned(ctx, loan.ID, loan.TitleID, loan.MemberID)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "loan returned", "loan_id", loanID, "title_id", loan.TitleID)
	return loan, nil
}

// GetByID retrieves a loan.
func (s *Service) GetByID(ctx context.Context, loanID id.ID) (*Loan, error) {
	return s.loans.GetByID(ctx, loanID)
}

// List sweeps overdue status first, then returns loans matching the filter,
// so reads are never stale by more than one call.
func (s *Service) List(ctx context.Context, f ListFilter) ([]*Loan, error) {
	if _, err := s.SweepOverdue(ctx); err != nil {
		return nil, err
	}
	return s.loans.List(ctx, f)
}

// SweepOverdue recomputes overdue status for issued loans past their due
// date. One indexed update; idempotent and commutative with Issue/Return,
// so it is safe to run inline on every read path.
func (s *Service) SweepOverdue(ctx context.Context) (int64, error) {
	promoted, err := s.loans.MarkOverdue(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("overdue sweep: %w", err)
	}
	if promoted > 0 {
		logger.Info(ctx, "overdue sweep promoted loans", "count", promoted)
	}
	return promoted, nil
}
