package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/membership-portal/internal/events"
)

// AuditService writes ticket lifecycle events to the log. No notification
// is delivered.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger.Named("audit"),
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventTicketSubmitted, a.handleTicketSubmitted)
	a.dispatcher.Subscribe(events.EventTicketStatusChanged, a.handleTicketStatusChanged)
	a.dispatcher.Subscribe(events.EventTicketResponseAdded, a.handleTicketResponseAdded)
}

func (a *AuditService) handleTicketSubmitted(_ context.Context, event events.Event) error {
	a.logger.Info("TicketSubmitted", eventFields(event)...)
	return nil
}

func (a *AuditService) handleTicketStatusChanged(_ context.Context, event events.Event) error {
	a.logger.Info("TicketStatusChanged", eventFields(event)...)
	return nil
}

func (a *AuditService) handleTicketResponseAdded(_ context.Context, event events.Event) error {
	a.logger.Info("TicketResponseAdded", eventFields(event)...)
	return nil
}

func eventFields(event events.Event) []zap.Field {
	return []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("ticket_id", event.TicketID),
		zap.String("actor", event.Actor.Name),
		zap.Time("at", event.Timestamp),
		zap.Any("payload", event.Payload),
	}
}
