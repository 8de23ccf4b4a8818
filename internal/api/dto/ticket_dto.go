package dto

import (
	"time"

	"github.com/spec-kit/membership-portal/internal/domain"
	"github.com/spec-kit/membership-portal/internal/lifecycle"
)

// SubmitTicketRequest payload.
type SubmitTicketRequest struct {
	TicketID    string                `json:"ticketId"`
	Requester   RequesterPayload      `json:"requester"`
	Subject     string                `json:"subject"`
	Category    domain.TicketCategory `json:"category"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
	AssignedTo  string                `json:"assignedTo"`
	Location    LocationPayload       `json:"location"`
}

// TransitionRequest payload.
type TransitionRequest struct {
	Status       domain.TicketStatus `json:"status"`
	ResponseText string              `json:"responseText"`
}

// RespondRequest payload.
type RespondRequest struct {
	Text string `json:"text"`
}

// RequesterPayload carries contact details.
type RequesterPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// LocationPayload carries the requester's place in the hierarchy.
type LocationPayload struct {
	Sambhag  string `json:"sambhag"`
	District string `json:"district"`
	Block    string `json:"block"`
}

// TicketResponse represents a full ticket.
type TicketResponse struct {
	TicketID    string                `json:"ticketId"`
	Requester   RequesterPayload      `json:"requester"`
	Subject     string                `json:"subject"`
	Category    domain.TicketCategory `json:"category"`
	Description string                `json:"description"`
	Status      domain.TicketStatus   `json:"status"`
	Priority    domain.TicketPriority `json:"priority"`
	CreatedAt   time.Time             `json:"createdAt"`
	UpdatedAt   time.Time             `json:"updatedAt"`
	AssignedTo  string                `json:"assignedTo"`
	Location    LocationPayload       `json:"location"`
	Responses   []ResponseItem        `json:"responses"`
}

// ResponseItem represents one reply in a ticket thread.
type ResponseItem struct {
	ID          int       `json:"id"`
	RespondedBy string    `json:"respondedBy"`
	Text        string    `json:"text"`
	Timestamp   time.Time `json:"timestamp"`
}

// TicketStatsResponse counts tickets per status.
type TicketStatsResponse struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"inProgress"`
	Resolved   int `json:"resolved"`
	Rejected   int `json:"rejected"`
	Escalated  int `json:"escalated"`
}

// TicketFromDomain converts a ticket for the wire.
func TicketFromDomain(t domain.Ticket) TicketResponse {
	responses := make([]ResponseItem, 0, len(t.Responses))
	for _, r := range t.Responses {
		responses = append(responses, ResponseItem{
			ID:          r.SequenceID,
			RespondedBy: r.RespondedBy,
			Text:        r.Text,
			Timestamp:   r.Timestamp,
		})
	}
	return TicketResponse{
		TicketID: t.TicketID,
		Requester: RequesterPayload{
			Name:  t.Requester.Name,
			Email: t.Requester.Email,
			Phone: t.Requester.Phone,
		},
		Subject:     t.Subject,
		Category:    t.Category,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		AssignedTo:  t.AssignedTo,
		Location: LocationPayload{
			Sambhag:  t.Location.Sambhag,
			District: t.Location.District,
			Block:    t.Location.Block,
		},
		Responses: responses,
	}
}

// StatsFromDomain converts lifecycle stats for the wire.
func StatsFromDomain(s lifecycle.Stats) TicketStatsResponse {
	return TicketStatsResponse{
		Total:      s.Total,
		Pending:    s.Pending,
		InProgress: s.InProgress,
		Resolved:   s.Resolved,
		Rejected:   s.Rejected,
		Escalated:  s.Escalated,
	}
}
