package dto

import (
	"github.com/spec-kit/membership-portal/internal/domain"
	"github.com/spec-kit/membership-portal/internal/service"
)

// MemberItem represents one member record.
type MemberItem struct {
	ID             string              `json:"id"`
	Name           string              `json:"name"`
	Email          string              `json:"email"`
	Phone          string              `json:"phone"`
	Sambhag        string              `json:"sambhag"`
	District       string              `json:"district"`
	Block          string              `json:"block"`
	MembershipType string              `json:"membershipType"`
	Status         domain.MemberStatus `json:"status"`
	Remark         string              `json:"remark"`
}

// MemberPageResponse is a page of members with one-based numbering.
type MemberPageResponse struct {
	Content       []MemberItem `json:"content"`
	PageNumber    int          `json:"pageNumber"`
	TotalPages    int          `json:"totalPages"`
	TotalElements int64        `json:"totalElements"`
}

// MemberPageFromService converts a service page for the wire.
func MemberPageFromService(page service.MemberPage) MemberPageResponse {
	items := make([]MemberItem, 0, len(page.Content))
	for _, m := range page.Content {
		items = append(items, MemberItem{
			ID:             m.ID,
			Name:           m.Name,
			Email:          m.Email,
			Phone:          m.Phone,
			Sambhag:        m.Sambhag,
			District:       m.District,
			Block:          m.Block,
			MembershipType: m.MembershipType,
			Status:         m.Status,
			Remark:         m.Remark,
		})
	}
	return MemberPageResponse{
		Content:       items,
		PageNumber:    page.PageNumber,
		TotalPages:    page.TotalPages,
		TotalElements: page.TotalElements,
	}
}
