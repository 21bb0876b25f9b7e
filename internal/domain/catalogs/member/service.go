package member

import (
	"context"
	"fmt"

	"pustakalaya/internal/core/id"
	"pustakalaya/internal/core/tx"
	"pustakalaya/pkg/logger"
)

// Recorder appends member activity events. Implemented by activity.Service.
type Recorder interface {
	MemberAdded(ctx context.Context, memberID id.ID, name string) error
}

// Service provides business operations for the Member catalog.
type Service struct {
	repo      Repository
	activity  Recorder
	txManager tx.Manager
}

// NewService creates a new Member catalog service.
func NewService(repo Repository, activity Recorder, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		activity:  activity,
		txManager: txManager,
	}
}

// Register creates a member and emits a member_added event.
func (s *Service) Register(ctx context.Context, m *Member) error {
	if err := m.Validate(ctx); err != nil {
		return err
	}
	if _, err := s.repo.GetCategory(ctx, m.Category); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, m); err != nil {
			return fmt.Errorf("create member: %w", err)
		}
		return s.activity.MemberAdded(ctx, m.ID, m.Name)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "member registered", "id", m.ID, "category", m.Category)
	return nil
}

// GetByID retrieves a member.
func (s *Service) GetByID(ctx context.Context, memberID id.ID) (*Member, error) {
	return s.repo.GetByID(ctx, memberID)
}

// List returns members matching the filter.
func (s *Service) List(ctx context.Context, f ListFilter) ([]*Member, error) {
	return s.repo.List(ctx, f)
}

// Update modifies member details.
func (s *Service) Update(ctx context.Context, m *Member) error {
	if err := m.Validate(ctx); err != nil {
		return err
	}
	return s.repo.Update(ctx, m)
}

// Deactivate soft-disables a member. Historical loans stay referenced.
func (s *Service) Deactivate(ctx context.Context, memberID id.ID) error {
	m, err := s.repo.GetByID(ctx, memberID)
	if err != nil {
		return err
	}
	if !m.Active {
		return nil
	}
	m.Active = false
	if err := s.repo.Update(ctx, m); err != nil {
		return err
	}
	logger.Info(ctx, "member deactivated", "id", memberID)
	return nil
}

// GetCategory exposes category limits to circulation.
func (s *Service) GetCategory(ctx context.Context, code CategoryCode) (*Category, error) {
	return s.repo.GetCategory(ctx, code)
}
