package reports

import (
	"context"
)

// Repository computes the aggregate counts with indexed queries.
type Repository interface {
	GetStats(ctx context.Context) (Stats, error)
}

// Sweeper recomputes overdue loan status. Implemented by circulation.Service.
type Sweeper interface {
	SweepOverdue(ctx context.Context) (int64, error)
}

// NoticeGenerator derives loan notifications. Implemented by activity.Service.
type NoticeGenerator interface {
	GenerateLoanNotices(ctx context.Context) error
}

// Service serves dashboard statistics.
type Service struct {
	repo    Repository
	sweeper Sweeper
	notices NoticeGenerator
}

// NewService creates the reports service.
func NewService(repo Repository, sweeper Sweeper, notices NoticeGenerator) *Service {
	return &Service{repo: repo, sweeper: sweeper, notices: notices}
}

// Dashboard runs the overdue sweep and notice generation inline, then
// returns the counts. Both side effects are idempotent and cheap, so the
// read path pays a bounded cost and never reports stale overdue numbers.
func (s *Service) Dashboard(ctx context.Context) (Stats, error) {
	if _, err := s.sweeper.SweepOverdue(ctx); err != nil {
		return Stats{}, err
	}
	if err := s.notices.GenerateLoanNotices(ctx); err != nil {
		return Stats{}, err
	}
	return s.repo.GetStats(ctx)
}
