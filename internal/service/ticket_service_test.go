package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spec-kit/membership-portal/internal/clock"
	"github.com/spec-kit/membership-portal/internal/domain"
	"github.com/spec-kit/membership-portal/internal/events"
	"github.com/spec-kit/membership-portal/internal/lifecycle"
	"github.com/spec-kit/membership-portal/internal/observability"
	"github.com/spec-kit/membership-portal/internal/repository"
	apperrors "github.com/spec-kit/membership-portal/pkg/util/errorutil"
)

var t0 = time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)

var admin = domain.Identity{Role: domain.RoleAdmin, Name: "Meera"}

func fixtureTickets() []domain.Ticket {
	return []domain.Ticket{
		{
			TicketID: "QRY-001", Requester: domain.Requester{Name: "Ramesh"}, Subject: "Card not received",
			Category: domain.CategoryMembership, Status: domain.TicketStatusPending, Priority: domain.TicketPriorityLow,
			CreatedAt: t0, UpdatedAt: t0, Version: 1,
		},
		{
			TicketID: "QRY-002", Requester: domain.Requester{Name: "Sunita"}, Subject: "मृत्यु प्रमाण पत्र",
			Category: domain.CategoryDeathCertificate, Status: domain.TicketStatusInProgress, Priority: domain.TicketPriorityHigh,
			CreatedAt: t0, UpdatedAt: t0.Add(time.Hour), Version: 2,
			Responses: []domain.Response{{SequenceID: 1, RespondedBy: "Admin", Text: "दस्तावेज़ भेजें", Timestamp: t0.Add(time.Hour)}},
		},
		{
			TicketID: "QRY-003", Requester: domain.Requester{Name: "Kiran"}, Subject: "Escalated",
			Category: domain.CategoryGeneral, Status: domain.TicketStatusEscalated, Priority: domain.TicketPriorityMedium,
			CreatedAt: t0, UpdatedAt: t0, Version: 1,
		},
	}
}

type ticketFixture struct {
	svc    *TicketService
	clock  *clock.FakeClock
	events []events.Event
}

func newTicketFixture(t *testing.T, repo repository.TicketRepository) *ticketFixture {
	t.Helper()
	if repo == nil {
		mem, err := repository.NewMemoryTicketRepository(fixtureTickets()...)
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
		repo = mem
	}
	f := &ticketFixture{clock: clock.Fake(t0.Add(24 * time.Hour))}
	dispatcher := events.NewInMemoryDispatcher()
	record := func(_ context.Context, e events.Event) error {
		f.events = append(f.events, e)
		return nil
	}
	dispatcher.Subscribe(events.EventTicketSubmitted, record)
	dispatcher.Subscribe(events.EventTicketStatusChanged, record)
	dispatcher.Subscribe(events.EventTicketResponseAdded, record)
	f.svc = NewTicketService(TicketDependencies{
		TicketRepo: repo,
		Dispatcher: dispatcher,
		Clock:      f.clock,
		Metrics:    observability.NewMetrics(),
	})
	return f
}

func errorCode(err error) string {
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

func TestTransitionResolveWithResponse(t *testing.T) {
	f := newTicketFixture(t, nil)
	ticket, err := f.svc.Transition(context.Background(), admin, "QRY-002", domain.TicketStatusResolved, "समाधान हो गया")
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if ticket.Status != domain.TicketStatusResolved || len(ticket.Responses) != 2 {
		t.Fatalf("unexpected ticket %+v", ticket)
	}
	last := ticket.Responses[1]
	if last.Text != "समाधान हो गया" || last.SequenceID != 2 || last.RespondedBy != "Meera" {
		t.Fatalf("unexpected response %+v", last)
	}
	if !ticket.UpdatedAt.Equal(f.clock.Now()) {
		t.Fatalf("updatedAt %v, want %v", ticket.UpdatedAt, f.clock.Now())
	}
	if len(f.events) != 2 || f.events[0].Type != events.EventTicketStatusChanged || f.events[1].Type != events.EventTicketResponseAdded {
		t.Fatalf("unexpected events %+v", f.events)
	}
	payload := f.events[0].Payload.(events.TicketStatusChangedPayload)
	if payload.OldStatus != domain.TicketStatusInProgress || payload.NewStatus != domain.TicketStatusResolved {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestResolveTwiceDoesNotRepeatEffects(t *testing.T) {
	f := newTicketFixture(t, nil)
	ctx := context.Background()
	first, err := f.svc.Transition(ctx, admin, "QRY-001", domain.TicketStatusResolved, "")
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	f.clock.Advance(time.Hour)
	second, err := f.svc.Transition(ctx, admin, "QRY-001", domain.TicketStatusResolved, "again")
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if second.Status != domain.TicketStatusResolved || !second.UpdatedAt.Equal(first.UpdatedAt) || len(second.Responses) != 0 {
		t.Fatalf("second resolve changed the ticket: %+v", second)
	}
	if len(f.events) != 1 {
		t.Fatalf("expected one event, got %d", len(f.events))
	}
}

func TestTransitionErrorsMapToDomainErrors(t *testing.T) {
	f := newTicketFixture(t, nil)
	ctx := context.Background()
	if _, err := f.svc.Transition(ctx, admin, "QRY-001", domain.TicketStatusRejected, ""); err != nil {
		t.Fatalf("reject: %v", err)
	}

	tests := []struct {
		name   string
		id     string
		to     domain.TicketStatus
		code   string
		status int
	}{
		{"unknown ticket", "QRY-999", domain.TicketStatusResolved, apperrors.CodeNotFound, 404},
		{"closed ticket", "QRY-001", domain.TicketStatusInProgress, apperrors.CodeConflict, 409},
		{"pending target", "QRY-002", domain.TicketStatusPending, apperrors.CodeValidation, 400},
		{"unknown target", "QRY-002", domain.TicketStatus("archived"), apperrors.CodeValidation, 400},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			before, _ := f.svc.Stats(ctx)
			_, err := f.svc.Transition(ctx, admin, tc.id, tc.to, "")
			domainErr := apperrors.ToDomainError(err)
			if domainErr == nil || domainErr.Code != tc.code || domainErr.HTTPStatus != tc.status {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
			after, _ := f.svc.Stats(ctx)
			if before != after {
				t.Fatalf("failed transition changed stats: %+v -> %+v", before, after)
			}
		})
	}
}

func TestRespond(t *testing.T) {
	f := newTicketFixture(t, nil)
	ctx := context.Background()

	ticket, err := f.svc.Respond(ctx, domain.Identity{Role: domain.RoleAdmin}, "QRY-003", "  checking  ")
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	if ticket.Status != domain.TicketStatusInProgress || len(ticket.Responses) != 1 {
		t.Fatalf("unexpected ticket %+v", ticket)
	}
	if ticket.Responses[0].RespondedBy != domain.DefaultResponder || ticket.Responses[0].Text != "checking" {
		t.Fatalf("unexpected response %+v", ticket.Responses[0])
	}

	if _, err := f.svc.Respond(ctx, admin, "QRY-003", "   "); errorCode(err) != apperrors.CodeValidation {
		t.Fatalf("blank response should fail validation, got %v", err)
	}
	got, _ := f.svc.Get(ctx, "QRY-003")
	if len(got.Responses) != 1 {
		t.Fatalf("blank response must not append")
	}
}

func TestSubmitAssignsNextID(t *testing.T) {
	f := newTicketFixture(t, nil)
	ticket, err := f.svc.Submit(context.Background(), TicketSubmitInput{
		Requester: domain.Requester{Name: "Anil", Phone: "98"},
		Subject:   "Payment failed",
		Category:  domain.CategoryPaymentIssue,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if ticket.TicketID != "QRY-004" || ticket.Status != domain.TicketStatusPending || ticket.Priority != domain.TicketPriorityMedium {
		t.Fatalf("unexpected ticket %+v", ticket)
	}
	if len(f.events) != 1 || f.events[0].Type != events.EventTicketSubmitted {
		t.Fatalf("unexpected events %+v", f.events)
	}

	_, err = f.svc.Submit(context.Background(), TicketSubmitInput{TicketID: "QRY-001", Requester: domain.Requester{Name: "x"}, Subject: "dup"})
	if errorCode(err) != apperrors.CodeConflict {
		t.Fatalf("duplicate id should conflict, got %v", err)
	}
	_, err = f.svc.Submit(context.Background(), TicketSubmitInput{Requester: domain.Requester{Name: "x"}})
	if errorCode(err) != apperrors.CodeValidation {
		t.Fatalf("missing subject should fail validation, got %v", err)
	}
}

func TestListAndStats(t *testing.T) {
	f := newTicketFixture(t, nil)
	ctx := context.Background()

	all, err := f.svc.List(ctx, lifecycle.FilterAll)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var ids []string
	for ticket := range all {
		ids = append(ids, ticket.TicketID)
	}
	if len(ids) != 3 || ids[0] != "QRY-001" || ids[2] != "QRY-003" {
		t.Fatalf("unexpected order %v", ids)
	}

	stats, err := f.svc.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != len(ids) || stats.Pending != 1 || stats.InProgress != 1 || stats.Escalated != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if stats.Pending+stats.InProgress+stats.Resolved+stats.Rejected > stats.Total {
		t.Fatalf("named buckets exceed total")
	}
}

type conflictingRepo struct {
	repository.TicketRepository
}

func (conflictingRepo) Apply(context.Context, lifecycle.Action) (repository.ApplyResult, error) {
	return repository.ApplyResult{}, repository.ErrVersionConflict
}

func TestVersionConflictMapsToConflict(t *testing.T) {
	mem, _ := repository.NewMemoryTicketRepository(fixtureTickets()...)
	f := newTicketFixture(t, conflictingRepo{mem})
	_, err := f.svc.Transition(context.Background(), admin, "QRY-001", domain.TicketStatusResolved, "")
	if errorCode(err) != apperrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestStringPreview(t *testing.T) {
	if got := stringPreview("  नमस्ते दुनिया  ", 5); got != string([]rune("नमस्ते")[:5])+"..." {
		t.Fatalf("unexpected preview %q", got)
	}
	if got := stringPreview("short", 10); got != "short" {
		t.Fatalf("unexpected preview %q", got)
	}
}
