package domain

import "time"

// TicketStatus enumerates lifecycle states for queries.
type TicketStatus string

const (
	TicketStatusPending    TicketStatus = "pending"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusRejected   TicketStatus = "rejected"
	TicketStatusEscalated  TicketStatus = "escalated"
)

// TicketStatuses lists every status in workflow order.
var TicketStatuses = []TicketStatus{
	TicketStatusPending,
	TicketStatusInProgress,
	TicketStatusResolved,
	TicketStatusRejected,
	TicketStatusEscalated,
}

// Valid reports whether the status is enumerated.
func (s TicketStatus) Valid() bool {
	for _, candidate := range TicketStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Terminal reports whether no further workflow action applies.
func (s TicketStatus) Terminal() bool {
	return s == TicketStatusResolved || s == TicketStatusRejected
}

// TicketCategory classifies what the requester needs help with.
type TicketCategory string

const (
	CategoryDeathCertificate TicketCategory = "death_certificate"
	CategoryPaymentIssue     TicketCategory = "payment_issue"
	CategoryMembership       TicketCategory = "membership"
	CategoryDocumentUpload   TicketCategory = "document_upload"
	CategoryGeneral          TicketCategory = "general"
	CategoryTechnical        TicketCategory = "technical"
)

// TicketCategories lists every category.
var TicketCategories = []TicketCategory{
	CategoryDeathCertificate,
	CategoryPaymentIssue,
	CategoryMembership,
	CategoryDocumentUpload,
	CategoryGeneral,
	CategoryTechnical,
}

// Valid reports whether the category is enumerated.
func (c TicketCategory) Valid() bool {
	for _, candidate := range TicketCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityLow    TicketPriority = "low"
)

// TicketPriorities lists every priority.
var TicketPriorities = []TicketPriority{TicketPriorityHigh, TicketPriorityMedium, TicketPriorityLow}

// Valid reports whether the priority is enumerated.
func (p TicketPriority) Valid() bool {
	return p == TicketPriorityHigh || p == TicketPriorityMedium || p == TicketPriorityLow
}

// DefaultResponder is recorded when the acting identity has no display name.
const DefaultResponder = "Admin"

// Requester holds the submitter's contact details.
type Requester struct {
	Name  string
	Email string
	Phone string
}

// Location places a ticket in the sambhag > district > block hierarchy.
type Location struct {
	Sambhag  string
	District string
	Block    string
}

// Response is an append-only reply on a ticket.
type Response struct {
	SequenceID  int
	RespondedBy string
	Text        string
	Timestamp   time.Time
}

// Ticket is the aggregate for member queries.
type Ticket struct {
	TicketID    string
	Requester   Requester
	Subject     string
	Category    TicketCategory
	Description string
	Status      TicketStatus
	Priority    TicketPriority
	CreatedAt   time.Time
	UpdatedAt   time.Time
	AssignedTo  string
	Location    Location
	Responses   []Response
	Version     int64
}

// Clone returns a deep copy so callers never share the response slice.
func (t Ticket) Clone() Ticket {
	out := t
	if t.Responses != nil {
		out.Responses = make([]Response, len(t.Responses))
		copy(out.Responses, t.Responses)
	}
	return out
}

// NextSequenceID returns the id for the next appended response.
func (t Ticket) NextSequenceID() int {
	if len(t.Responses) == 0 {
		return 1
	}
	return t.Responses[len(t.Responses)-1].SequenceID + 1
}
