package service

import (
	"context"
	"errors"
	"iter"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/membership-portal/internal/clock"
	"github.com/spec-kit/membership-portal/internal/domain"
	"github.com/spec-kit/membership-portal/internal/events"
	"github.com/spec-kit/membership-portal/internal/lifecycle"
	"github.com/spec-kit/membership-portal/internal/observability"
	"github.com/spec-kit/membership-portal/internal/repository"
	apperrors "github.com/spec-kit/membership-portal/pkg/util/errorutil"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	clock      clock.Clock
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Dispatcher events.Dispatcher
	Clock      clock.Clock
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// TicketSubmitInput describes an externally created query.
type TicketSubmitInput struct {
	TicketID    string
	Requester   domain.Requester
	Subject     string
	Category    domain.TicketCategory
	Description string
	Priority    domain.TicketPriority
	AssignedTo  string
	Location    domain.Location
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	if deps.Clock == nil {
		deps.Clock = clock.Real()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		dispatcher: deps.Dispatcher,
		clock:      deps.Clock,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
	}
}

// Submit brings a new query into the workflow in pending.
func (s *TicketService) Submit(ctx context.Context, input TicketSubmitInput) (domain.Ticket, error) {
	ticket, err := lifecycle.Intake(domain.Ticket{
		TicketID:    strings.TrimSpace(input.TicketID),
		Requester:   input.Requester,
		Subject:     input.Subject,
		Category:    input.Category,
		Description: input.Description,
		Priority:    input.Priority,
		AssignedTo:  strings.TrimSpace(input.AssignedTo),
		Location:    input.Location,
	}, s.clock.Now())
	if err != nil {
		return domain.Ticket{}, mapTicketError(err, input.TicketID)
	}

	ticket, err = s.tickets.Create(ctx, ticket)
	if err != nil {
		return domain.Ticket{}, mapTicketError(err, input.TicketID)
	}
	s.publishEvent(ctx, events.New(events.EventTicketSubmitted, ticket.TicketID,
		events.Actor{Name: ticket.Requester.Name}, ticket.CreatedAt,
		events.TicketSubmittedPayload{Category: ticket.Category, Priority: ticket.Priority, Subject: ticket.Subject}))
	return ticket, nil
}

// Get returns a snapshot of one ticket.
func (s *TicketService) Get(ctx context.Context, ticketID string) (domain.Ticket, error) {
	ticket, err := s.tickets.Get(ctx, ticketID)
	if err != nil {
		return domain.Ticket{}, mapTicketError(err, ticketID)
	}
	return ticket, nil
}

// List returns the tickets of one status partition in insertion order. The
// sequence reads from a snapshot and may be ranged over repeatedly.
func (s *TicketService) List(ctx context.Context, filter lifecycle.Filter) (iter.Seq[domain.Ticket], error) {
	collection, err := s.tickets.Snapshot(ctx)
	if err != nil {
		return nil, mapTicketError(err, "")
	}
	return collection.Filter(filter), nil
}

// Stats counts tickets per status.
func (s *TicketService) Stats(ctx context.Context) (lifecycle.Stats, error) {
	collection, err := s.tickets.Snapshot(ctx)
	if err != nil {
		return lifecycle.Stats{}, mapTicketError(err, "")
	}
	return collection.Stats(), nil
}

// Transition moves a ticket to status to, appending responseText as a
// response when it is not blank.
func (s *TicketService) Transition(ctx context.Context, actor domain.Identity, ticketID string, to domain.TicketStatus, responseText string) (domain.Ticket, error) {
	return s.apply(ctx, actor, lifecycle.Action{
		TicketID:     ticketID,
		To:           to,
		ResponseText: responseText,
		Actor:        actor.DisplayName(),
		At:           s.clock.Now(),
	})
}

// Respond appends a reply and keeps or moves the ticket to in_progress.
func (s *TicketService) Respond(ctx context.Context, actor domain.Identity, ticketID, text string) (domain.Ticket, error) {
	action, err := lifecycle.Respond(ticketID, text, actor.DisplayName(), s.clock.Now())
	if err != nil {
		return domain.Ticket{}, mapTicketError(err, ticketID)
	}
	return s.apply(ctx, actor, action)
}

func (s *TicketService) apply(ctx context.Context, actor domain.Identity, action lifecycle.Action) (domain.Ticket, error) {
	result, err := s.tickets.Apply(ctx, action)
	if err != nil {
		s.logger.Debug("ticket action rejected",
			zap.String("ticket_id", action.TicketID),
			zap.String("to", string(action.To)),
			zap.Error(err))
		return domain.Ticket{}, mapTicketError(err, action.TicketID)
	}
	if !result.Changed {
		return result.After, nil
	}

	responded := len(result.After.Responses) > len(result.Before.Responses)
	s.metrics.RecordTransition(string(result.Before.Status), string(result.After.Status), responded)

	eventActor := events.Actor{Name: actor.DisplayName(), Role: actor.Role}
	s.publishEvent(ctx, events.New(events.EventTicketStatusChanged, result.After.TicketID, eventActor, result.After.UpdatedAt,
		events.TicketStatusChangedPayload{OldStatus: result.Before.Status, NewStatus: result.After.Status}))
	if responded {
		resp := result.After.Responses[len(result.After.Responses)-1]
		s.publishEvent(ctx, events.New(events.EventTicketResponseAdded, result.After.TicketID, eventActor, resp.Timestamp,
			events.TicketResponseAddedPayload{
				SequenceID:  resp.SequenceID,
				RespondedBy: resp.RespondedBy,
				BodyPreview: stringPreview(resp.Text, 120),
			}))
	}
	return result.After, nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

// mapTicketError translates lifecycle and store errors into DomainErrors.
func mapTicketError(err error, ticketID string) error {
	var details map[string]any
	if ticketID != "" {
		details = map[string]any{"ticket_id": ticketID}
	}
	switch {
	case errors.Is(err, lifecycle.ErrNotFound):
		return apperrors.NewNotFound("ticket", details)
	case errors.Is(err, lifecycle.ErrInvalidStatus),
		errors.Is(err, lifecycle.ErrInvalidTransition),
		errors.Is(err, lifecycle.ErrEmptyResponse),
		errors.Is(err, lifecycle.ErrInvalidTicket):
		return apperrors.NewValidationError(err.Error(), details)
	case errors.Is(err, lifecycle.ErrTerminal),
		errors.Is(err, lifecycle.ErrDuplicateTicket),
		errors.Is(err, repository.ErrVersionConflict):
		return apperrors.NewConflict(err.Error(), details)
	default:
		return apperrors.MapError(err)
	}
}

func stringPreview(body string, max int) string {
	runes := []rune(strings.TrimSpace(body))
	if len(runes) <= max {
		return string(runes)
	}
	return string(runes[:max]) + "..."
}
