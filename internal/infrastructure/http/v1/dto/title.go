package dto

import (
	"pustakalaya/internal/domain/catalogs/title"
)

// CreateTitleRequest is the payload for adding a catalog entry.
type CreateTitleRequest struct {
	AccessionNo *string `json:"accessionNo"`
	Name        string  `json:"name" binding:"required"`
	Author      string  `json:"author" binding:"required"`
	Category    *string `json:"category"`
	Publisher   *string `json:"publisher"`
	Year        *int    `json:"year"`
	Shelf       *string `json:"shelf"`
	Description *string `json:"description"`
	TotalCopies int     `json:"totalCopies"`
}

// ToEntity converts the request to a domain entity.
func (r *CreateTitleRequest) ToEntity() *title.Title {
	t := title.NewTitle(r.Name, r.Author, r.TotalCopies)
	t.AccessionNo = r.AccessionNo
	t.Category = r.Category
	t.Publisher = r.Publisher
	t.Year = r.Year
	t.Shelf = r.Shelf
	t.Description = r.Description
	return t
}

// UpdateTitleRequest is the payload for editing a catalog entry.
// Version implements optimistic locking.
type UpdateTitleRequest struct {
	CreateTitleRequest
	Version int `json:"version" binding:"required"`
}

// TitleResponse is a catalog entry with its derived circulation status.
type TitleResponse struct {
	*title.Title
	Status title.Status `json:"status"`
}

// NewTitleResponse wraps a domain title for the API.
func NewTitleResponse(t *title.Title) TitleResponse {
	return TitleResponse{Title: t, Status: t.Status()}
}

// NewTitleListResponse wraps a list of titles.
func NewTitleListResponse(items []*title.Title) []TitleResponse {
	out := make([]TitleResponse, 0, len(items))
	for _, t := range items {
		out = append(out, NewTitleResponse(t))
	}
	return out
}
