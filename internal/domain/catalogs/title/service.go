package title

import (
	"context"
	"fmt"

	"pustakalaya/internal/core/apperror"
	"pustakalaya/internal/core/id"
	"pustakalaya/internal/core/tx"
	"pustakalaya/pkg/logger"
)

// ActiveLoanCounter reports active (issued or overdue) loans per title.
// Implemented by the circulation loan repository.
type ActiveLoanCounter interface {
	CountActiveByTitle(ctx context.Context, titleID id.ID) (int, error)
}

// Recorder appends catalog activity events. Implemented by activity.Service.
type Recorder interface {
	BookAdded(ctx context.Context, titleID id.ID, name string) error
}

// Service provides business operations for the Title catalog.
type Service struct {
	repo      Repository
	loans     ActiveLoanCounter
	activity  Recorder
	txManager tx.Manager
}

// NewService creates a new Title catalog service.
func NewService(repo Repository, loans ActiveLoanCounter, activity Recorder, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		loans:     loans,
		activity:  activity,
		txManager: txManager,
	}
}

// Create adds a catalog entry and emits a book_added event.
func (s *Service) Create(ctx context.Context, t *Title) error {
	if err := t.Validate(ctx); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, t); err != nil {
			return fmt.Errorf("create title: %w", err)
		}
		return s.activity.BookAdded(ctx, t.ID, t.Name)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "title created", "id", t.ID, "name", t.Name)
	return nil
}

// GetByID retrieves a catalog entry.
func (s *Service) GetByID(ctx context.Context, titleID id.ID) (*Title, error) {
	return s.repo.GetByID(ctx, titleID)
}

// List returns catalog entries matching the filter.
func (s *Service) List(ctx context.Context, f ListFilter) ([]*Title, error) {
	return s.repo.List(ctx, f)
}

// Update applies a catalog edit. A change of TotalCopies goes through
// SetTotalCopies so the issued-copy count survives the capacity change;
// AvailableCopies is never edited directly.
func (s *Service) Update(ctx context.Context, t *Title) error {
	if err := t.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetByID(ctx, t.ID)
		if err != nil {
			return err
		}

		newTotal := t.TotalCopies
		// Descriptive update first, with the stored copy counts: the ledger
		// owns those columns.
		t.TotalCopies = current.TotalCopies
		t.AvailableCopies = current.AvailableCopies
		if err := s.repo.Update(ctx, t); err != nil {
			return err
		}

		if newTotal != current.TotalCopies {
			if err := s.repo.SetTotalCopies(ctx, t.ID, newTotal); err != nil {
				return err
			}
			t.TotalCopies = newTotal
			t.AvailableCopies = RecomputeAvailable(current.TotalCopies, current.AvailableCopies, newTotal)
		}
		return nil
	})
}

// Delete soft-deletes an entry; refused while active loans reference it.
func (s *Service) Delete(ctx context.Context, titleID id.ID) error {
	active, err := s.loans.CountActiveByTitle(ctx, titleID)
	if err != nil {
		return fmt.Errorf("count active loans: %w", err)
	}
	if active > 0 {
		return apperror.NewTitleHasActiveLoans(titleID, active)
	}
	return s.repo.MarkDeleted(ctx, titleID)
}

// ReserveCopy checks out one copy atomically. Part of the availability
// ledger contract used by circulation.
func (s *Service) ReserveCopy(ctx context.Context, titleID id.ID) error {
	ok, err := s.repo.ReserveCopy(ctx, titleID)
	if err != nil {
		return err
	}
	if !ok {
		// Distinguish a missing title from an exhausted one.
		if _, err := s.repo.GetByID(ctx, titleID); err != nil {
			return err
		}
		return apperror.NewNoCopiesAvailable(titleID)
	}
	return nil
}

// ReleaseCopy returns one copy to the shelf (capped at total_copies).
func (s *Service) ReleaseCopy(ctx context.Context, titleID id.ID) error {
	return s.repo.ReleaseCopy(ctx, titleID)
}
