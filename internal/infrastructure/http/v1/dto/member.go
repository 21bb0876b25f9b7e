package dto

import (
	"pustakalaya/internal/domain/catalogs/member"
)

// RegisterMemberRequest is the payload for registering a borrower.
type RegisterMemberRequest struct {
	Name     string  `json:"name" binding:"required"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Category string  `json:"category" binding:"required"`
}

// ToEntity converts the request to a domain entity.
func (r *RegisterMemberRequest) ToEntity() *member.Member {
	m := member.NewMember(r.Name, member.CategoryCode(r.Category))
	m.Email = r.Email
	m.Phone = r.Phone
	return m
}

// UpdateMemberRequest is the payload for editing a member.
type UpdateMemberRequest struct {
	RegisterMemberRequest
	Version int `json:"version" binding:"required"`
}

// MemberListQuery narrows member listings.
type MemberListQuery struct {
	ListQuery
	Category   string `form:"category"`
	ActiveOnly bool   `form:"activeOnly"`
}
