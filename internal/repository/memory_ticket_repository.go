package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/spec-kit/membership-portal/internal/domain"
	"github.com/spec-kit/membership-portal/internal/lifecycle"
)

// MemoryTicketRepository keeps tickets in a lifecycle.Collection guarded by
// a mutex, so transitions on one ticket are applied one at a time.
type MemoryTicketRepository struct {
	mu         sync.Mutex
	collection lifecycle.Collection
}

// NewMemoryTicketRepository seeds the store with tickets.
func NewMemoryTicketRepository(seed ...domain.Ticket) (*MemoryTicketRepository, error) {
	collection, err := lifecycle.NewCollection(seed...)
	if err != nil {
		return nil, err
	}
	return &MemoryTicketRepository{collection: collection}, nil
}

func (r *MemoryTicketRepository) Create(ctx context.Context, ticket domain.Ticket) (domain.Ticket, error) {
	if err := ctx.Err(); err != nil {
		return domain.Ticket{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if ticket.TicketID == "" {
		ticket.TicketID = r.collection.NextTicketID()
	}
	next, err := r.collection.Insert(ticket)
	if err != nil {
		return domain.Ticket{}, err
	}
	r.collection = next
	stored, _ := next.Get(ticket.TicketID)
	return stored, nil
}

func (r *MemoryTicketRepository) Get(ctx context.Context, ticketID string) (domain.Ticket, error) {
	if err := ctx.Err(); err != nil {
		return domain.Ticket{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.collection.Get(ticketID)
	if !ok {
		return domain.Ticket{}, fmt.Errorf("%w: %s", lifecycle.ErrNotFound, ticketID)
	}
	return ticket, nil
}

func (r *MemoryTicketRepository) Snapshot(ctx context.Context) (lifecycle.Collection, error) {
	if err := ctx.Err(); err != nil {
		return lifecycle.Collection{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.collection, nil
}

func (r *MemoryTicketRepository) Apply(ctx context.Context, action lifecycle.Action) (ApplyResult, error) {
	if err := ctx.Err(); err != nil {
		return ApplyResult{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	before, _ := r.collection.Get(action.TicketID)
	next, ticket, err := r.collection.Reduce(action)
	if err != nil {
		return ApplyResult{}, err
	}
	r.collection = next
	return ApplyResult{Before: before, After: ticket, Changed: ticket.Version != before.Version}, nil
}
