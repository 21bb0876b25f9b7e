// Package dto defines request and response shapes for the v1 API.
package dto

// IDResponse returns the created entity ID.
type IDResponse struct {
	ID string `json:"id"`
}

// SuccessResponse is a generic success acknowledgement.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ListQuery carries common pagination parameters.
type ListQuery struct {
	Search string `form:"search"`
	Limit  int    `form:"limit,default=50"`
	Offset int    `form:"offset"`
}
