package title

import (
	"context"

	"pustakalaya/internal/core/id"
)

// Upsert carries the descriptive fields an import row may refresh.
// Nil pointers mean "keep the existing value": an update never nulls out
// a previously populated column.
type Upsert struct {
	ID          id.ID
	Name        *string
	Author      *string
	AccessionNo *string
	Category    *string
	Publisher   *string
	Year        *int
	Shelf       *string
	Description *string
}

// Repository defines storage operations for the Title catalog and its
// availability ledger.
type Repository interface {
	Create(ctx context.Context, t *Title) error
	// CreateBatch inserts a chunk of titles with one multi-row statement.
	CreateBatch(ctx context.Context, titles []*Title) error
	Update(ctx context.Context, t *Title) error
	UpdateDescriptive(ctx context.Context, u Upsert) error
	GetByID(ctx context.Context, titleID id.ID) (*Title, error)
	// MarkDeleted soft-deletes the entry.
	MarkDeleted(ctx context.Context, titleID id.ID) error

	// Batched lookups for the import matcher.
	FindByAccessionNos(ctx context.Context, nos []string) ([]*Title, error)
	FindByNameAuthor(ctx context.Context, pairs []NameAuthor) ([]*Title, error)

	List(ctx context.Context, f ListFilter) ([]*Title, error)

	// Ledger operations. All three are single conditional statements so the
	// check and the write are atomic against concurrent requests.

	// ReserveCopy decrements available_copies when one is free.
	// Returns false without error when no copy is available.
	ReserveCopy(ctx context.Context, titleID id.ID) (bool, error)

	// ReleaseCopy increments available_copies, capped at total_copies.
	ReleaseCopy(ctx context.Context, titleID id.ID) error

	// SetTotalCopies applies a capacity edit, recomputing available_copies
	// so the issued-copy count is preserved.
	SetTotalCopies(ctx context.Context, titleID id.ID, newTotal int) error
}

// ListFilter narrows catalog listings.
type ListFilter struct {
	Search   string // matches name or author
	Category string
	Limit    int
	Offset   int
}
