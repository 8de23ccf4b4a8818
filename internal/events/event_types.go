package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/membership-portal/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketSubmitted     EventType = "ticket_submitted"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketResponseAdded EventType = "ticket_response_added"
)

// Actor identifies who caused an event.
type Actor struct {
	Name string      `json:"name"`
	Role domain.Role `json:"role,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	TicketID  string    `json:"ticket_id"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// New stamps an event with a fresh id.
func New(eventType EventType, ticketID string, actor Actor, at time.Time, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticketID,
		Actor:     actor,
		Timestamp: at,
		Payload:   payload,
	}
}

// TicketSubmittedPayload payload.
type TicketSubmittedPayload struct {
	Category domain.TicketCategory `json:"category"`
	Priority domain.TicketPriority `json:"priority"`
	Subject  string                `json:"subject"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketResponseAddedPayload payload.
type TicketResponseAddedPayload struct {
	SequenceID  int    `json:"sequence_id"`
	RespondedBy string `json:"responded_by"`
	BodyPreview string `json:"body_preview"`
}
