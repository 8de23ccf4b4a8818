package lifecycle

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spec-kit/membership-portal/internal/domain"
)

var (
	ErrNotFound          = errors.New("ticket not found")
	ErrDuplicateTicket   = errors.New("ticket id already exists")
	ErrTerminal          = errors.New("ticket already closed")
	ErrInvalidStatus     = errors.New("invalid target status")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrEmptyResponse     = errors.New("response text required")
	ErrInvalidTicket     = errors.New("invalid ticket")
)

// Action requests a status change on one ticket, optionally with a response.
type Action struct {
	TicketID     string
	To           domain.TicketStatus
	ResponseText string
	Actor        string
	At           time.Time
}

var allowedTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusPending:    {domain.TicketStatusInProgress, domain.TicketStatusResolved, domain.TicketStatusRejected},
	domain.TicketStatusInProgress: {domain.TicketStatusInProgress, domain.TicketStatusResolved, domain.TicketStatusRejected},
	domain.TicketStatusEscalated:  {domain.TicketStatusInProgress, domain.TicketStatusResolved, domain.TicketStatusRejected},
	domain.TicketStatusResolved:   {},
	domain.TicketStatusRejected:   {},
}

// CanTransition reports whether from -> to is a workflow step that changes state.
func CanTransition(from, to domain.TicketStatus) bool {
	for _, candidate := range allowedTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// Targets returns the statuses an action may request.
func Targets() []domain.TicketStatus {
	return []domain.TicketStatus{domain.TicketStatusInProgress, domain.TicketStatusResolved, domain.TicketStatusRejected}
}

// Apply evaluates action against ticket. It returns the next ticket value and
// whether anything changed. Repeating the terminal status of a closed ticket
// is a no-op; any other request on a closed ticket fails with ErrTerminal.
func Apply(ticket domain.Ticket, action Action) (domain.Ticket, bool, error) {
	if !isTarget(action.To) {
		return ticket, false, fmt.Errorf("%w: %q", ErrInvalidStatus, action.To)
	}
	if ticket.Status.Terminal() {
		if ticket.Status == action.To {
			return ticket, false, nil
		}
		return ticket, false, fmt.Errorf("%w: %s is %s", ErrTerminal, ticket.TicketID, ticket.Status)
	}
	if !CanTransition(ticket.Status, action.To) {
		return ticket, false, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, ticket.Status, action.To)
	}

	next := ticket.Clone()
	at := action.At
	if at.Before(next.CreatedAt) {
		at = next.CreatedAt
	}
	if text := strings.TrimSpace(action.ResponseText); text != "" {
		next.Responses = append(next.Responses, domain.Response{
			SequenceID:  next.NextSequenceID(),
			RespondedBy: responder(action.Actor),
			Text:        text,
			Timestamp:   at,
		})
	}
	next.Status = action.To
	next.UpdatedAt = at
	next.Version++
	return next, true, nil
}

// Respond builds the action for a substantive reply, which keeps or moves
// the ticket to in_progress.
func Respond(ticketID, text, actor string, at time.Time) (Action, error) {
	if strings.TrimSpace(text) == "" {
		return Action{}, ErrEmptyResponse
	}
	return Action{
		TicketID:     ticketID,
		To:           domain.TicketStatusInProgress,
		ResponseText: text,
		Actor:        actor,
		At:           at,
	}, nil
}

// Intake prepares an externally submitted ticket for the workflow. It enters
// in pending with no responses.
func Intake(ticket domain.Ticket, at time.Time) (domain.Ticket, error) {
	ticket.Subject = strings.TrimSpace(ticket.Subject)
	ticket.Description = strings.TrimSpace(ticket.Description)
	if ticket.Subject == "" {
		return domain.Ticket{}, fmt.Errorf("%w: subject required", ErrInvalidTicket)
	}
	if strings.TrimSpace(ticket.Requester.Name) == "" {
		return domain.Ticket{}, fmt.Errorf("%w: requester name required", ErrInvalidTicket)
	}
	if ticket.Category == "" {
		ticket.Category = domain.CategoryGeneral
	}
	if !ticket.Category.Valid() {
		return domain.Ticket{}, fmt.Errorf("%w: unknown category %q", ErrInvalidTicket, ticket.Category)
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityMedium
	}
	if !ticket.Priority.Valid() {
		return domain.Ticket{}, fmt.Errorf("%w: unknown priority %q", ErrInvalidTicket, ticket.Priority)
	}
	ticket.Status = domain.TicketStatusPending
	ticket.CreatedAt = at
	ticket.UpdatedAt = at
	ticket.Responses = nil
	ticket.Version = 1
	return ticket, nil
}

func isTarget(status domain.TicketStatus) bool {
	for _, candidate := range Targets() {
		if candidate == status {
			return true
		}
	}
	return false
}

func responder(actor string) string {
	if name := strings.TrimSpace(actor); name != "" {
		return name
	}
	return domain.DefaultResponder
}
