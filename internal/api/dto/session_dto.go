package dto

import (
	"time"

	"github.com/spec-kit/membership-portal/internal/domain"
)

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued session token.
type LoginResponse struct {
	AccessToken string       `json:"accessToken"`
	TokenType   string       `json:"tokenType"`
	ExpiresAt   time.Time    `json:"expiresAt"`
	User        IdentityItem `json:"user"`
}

// IdentityItem represents the signed-in identity.
type IdentityItem struct {
	Role     domain.Role `json:"role"`
	Name     string      `json:"name"`
	Sambhag  string      `json:"sambhag,omitempty"`
	District string      `json:"district,omitempty"`
	Block    string      `json:"block,omitempty"`
}

// IdentityFromDomain converts an identity for the wire.
func IdentityFromDomain(i domain.Identity) IdentityItem {
	return IdentityItem{Role: i.Role, Name: i.Name, Sambhag: i.Sambhag, District: i.District, Block: i.Block}
}

// LabelItem pairs an enumerated value with its display text.
type LabelItem struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// ColorItem pairs a priority with its badge colour.
type ColorItem struct {
	Value string `json:"value"`
	Color string `json:"color"`
}

// LabelsResponse holds every display table of the portal.
type LabelsResponse struct {
	Categories []LabelItem `json:"categories"`
	Statuses   []LabelItem `json:"statuses"`
	Priorities []ColorItem `json:"priorities"`
}

// Labels builds the display tables from the domain enumerations.
func Labels() LabelsResponse {
	resp := LabelsResponse{}
	for _, c := range domain.TicketCategories {
		resp.Categories = append(resp.Categories, LabelItem{Value: string(c), Label: c.Label()})
	}
	for _, s := range domain.TicketStatuses {
		resp.Statuses = append(resp.Statuses, LabelItem{Value: string(s), Label: s.Label()})
	}
	for _, p := range domain.TicketPriorities {
		resp.Priorities = append(resp.Priorities, ColorItem{Value: string(p), Color: p.Color()})
	}
	return resp
}
