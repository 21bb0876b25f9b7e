// Package title provides the Title catalog: one entry per book with its
// copy counts. Availability is the stored source of truth; circulation
// status is always derived from it, never persisted.
package title

import (
	"context"

	"pustakalaya/internal/core/apperror"
	"pustakalaya/internal/core/entity"
)

// Status is the derived circulation state of a title.
type Status string

const (
	StatusAvailable       Status = "available"
	StatusPartiallyIssued Status = "partially-issued"
	StatusFullyIssued     Status = "fully-issued"
)

// Title represents a catalog entry (a book, not a physical copy).
type Title struct {
	entity.BaseEntity

	// AccessionNo is the external catalog number, unique when present
	AccessionNo *string `db:"accession_no" json:"accessionNo,omitempty"`

	// Name is the book title
	Name string `db:"name" json:"name"`

	Author    string  `db:"author" json:"author"`
	Category  *string `db:"category" json:"category,omitempty"`
	Publisher *string `db:"publisher" json:"publisher,omitempty"`
	Year      *int    `db:"year" json:"year,omitempty"`

	// Shelf is the physical shelf location
	Shelf *string `db:"shelf" json:"shelf,omitempty"`

	Description *string `db:"description" json:"description,omitempty"`

	// TotalCopies >= 0
	TotalCopies int `db:"total_copies" json:"totalCopies"`

	// AvailableCopies: 0 <= available <= total. Authoritative; the ledger
	// mutates this column only through conditional updates.
	AvailableCopies int `db:"available_copies" json:"availableCopies"`
}

// NewTitle creates a new catalog entry with all copies available.
func NewTitle(name, author string, copies int) *Title {
	if copies < 1 {
		copies = 1
	}
	return &Title{
		BaseEntity:      entity.NewBaseEntity(),
		Name:            name,
		Author:          author,
		TotalCopies:     copies,
		AvailableCopies: copies,
	}
}

// Status derives the 3-state circulation status from the copy counts.
func (t *Title) Status() Status {
	switch {
	case t.TotalCopies == 0 || t.AvailableCopies == t.TotalCopies:
		return StatusAvailable
	case t.AvailableCopies == 0:
		return StatusFullyIssued
	default:
		return StatusPartiallyIssued
	}
}

// IssuedCopies returns the number of copies currently out on loan.
func (t *Title) IssuedCopies() int {
	return t.TotalCopies - t.AvailableCopies
}

// Validate implements entity.Validatable.
func (t *Title) Validate(ctx context.Context) error {
	if t.Name == "" {
		return apperror.NewValidation("title name is required").
			WithDetail("field", "name")
	}
	if t.Author == "" {
		return apperror.NewValidation("author is required").
			WithDetail("field", "author")
	}
	if t.TotalCopies < 0 {
		return apperror.NewValidation("total copies cannot be negative").
			WithDetail("field", "totalCopies")
	}
	if t.AvailableCopies < 0 || t.AvailableCopies > t.TotalCopies {
		return apperror.NewValidation("available copies must be between 0 and total copies").
			WithDetail("field", "availableCopies").
			WithDetail("totalCopies", t.TotalCopies)
	}
	return nil
}

// RecomputeAvailable preserves the issued-copy count across a capacity
// change: available = max(0, newTotal - issued).
func RecomputeAvailable(oldTotal, oldAvailable, newTotal int) int {
	issued := oldTotal - oldAvailable
	if newTotal < issued {
		return 0
	}
	return newTotal - issued
}

// NameAuthor is a (title name, author) lookup key for import matching.
type NameAuthor struct {
	Name   string
	Author string
}
