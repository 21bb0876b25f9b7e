// Package member provides the Member catalog and membership categories.
package member

import (
	"context"

	"pustakalaya/internal/core/apperror"
	"pustakalaya/internal/core/entity"
)

// CategoryCode identifies a membership category.
type CategoryCode string

const (
	CategoryStudent CategoryCode = "student"
	CategoryFaculty CategoryCode = "faculty"
	CategoryStaff   CategoryCode = "staff"
)

// Category defines borrowing rules for a class of members.
// Rows are seeded by migration and read-only at runtime.
type Category struct {
	Code           CategoryCode `db:"code" json:"code"`
	Name           string       `db:"name" json:"name"`
	MaxBooks       int          `db:"max_books" json:"maxBooks"`
	LoanPeriodDays int          `db:"loan_period_days" json:"loanPeriodDays"`
}

// Member represents a registered borrower.
type Member struct {
	entity.BaseEntity

	Name     string       `db:"name" json:"name"`
	Email    *string      `db:"email" json:"email,omitempty"`
	Phone    *string      `db:"phone" json:"phone,omitempty"`
	Category CategoryCode `db:"category" json:"category"`

	// Active is cleared on deactivation; members are never hard-deleted
	// while historical loans reference them.
	Active bool `db:"active" json:"active"`
}

// NewMember registers a new active member.
func NewMember(name string, category CategoryCode) *Member {
	return &Member{
		BaseEntity: entity.NewBaseEntity(),
		Name:       name,
		Category:   category,
		Active:     true,
	}
}

// Validate implements entity.Validatable.
func (m *Member) Validate(ctx context.Context) error {
	if m.Name == "" {
		return apperror.NewValidation("member name is required").
			WithDetail("field", "name")
	}
	switch m.Category {
	case CategoryStudent, CategoryFaculty, CategoryStaff:
	default:
		return apperror.NewValidation("unknown member category").
			WithDetail("field", "category").
			WithDetail("value", string(m.Category))
	}
	return nil
}
