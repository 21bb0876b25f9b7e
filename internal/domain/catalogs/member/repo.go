package member

import (
	"context"

	"pustakalaya/internal/core/id"
)

// Repository defines storage operations for the Member catalog.
type Repository interface {
	Create(ctx context.Context, m *Member) error
	Update(ctx context.Context, m *Member) error
	GetByID(ctx context.Context, memberID id.ID) (*Member, error)
	List(ctx context.Context, f ListFilter) ([]*Member, error)

	// GetCategory returns the borrowing rules for a category code.
	GetCategory(ctx context.Context, code CategoryCode) (*Category, error)
}

// ListFilter narrows member listings.
type ListFilter struct {
	Search     string
	Category   CategoryCode
	ActiveOnly bool
	Limit      int
	Offset     int
}
