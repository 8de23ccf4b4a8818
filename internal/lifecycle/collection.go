package lifecycle

import (
	"fmt"
	"iter"
	"strconv"
	"strings"

	"github.com/spec-kit/membership-portal/internal/domain"
)

// TicketIDPrefix precedes the running number of every ticket id.
const TicketIDPrefix = "QRY-"

// Collection is an immutable, insertion-ordered set of tickets. Every
// mutating method returns a new Collection and leaves the receiver intact.
type Collection struct {
	tickets []domain.Ticket
	index   map[string]int
}

// NewCollection builds a collection, rejecting duplicate ids.
func NewCollection(tickets ...domain.Ticket) (Collection, error) {
	c := Collection{
		tickets: make([]domain.Ticket, 0, len(tickets)),
		index:   make(map[string]int, len(tickets)),
	}
	for _, t := range tickets {
		if _, exists := c.index[t.TicketID]; exists {
			return Collection{}, fmt.Errorf("%w: %s", ErrDuplicateTicket, t.TicketID)
		}
		c.index[t.TicketID] = len(c.tickets)
		c.tickets = append(c.tickets, t.Clone())
	}
	return c, nil
}

// Len returns the number of tickets.
func (c Collection) Len() int {
	return len(c.tickets)
}

// Get returns a snapshot of one ticket.
func (c Collection) Get(ticketID string) (domain.Ticket, bool) {
	i, ok := c.index[ticketID]
	if !ok {
		return domain.Ticket{}, false
	}
	return c.tickets[i].Clone(), true
}

// Insert appends a ticket at the end of the insertion order.
func (c Collection) Insert(ticket domain.Ticket) (Collection, error) {
	if _, exists := c.index[ticket.TicketID]; exists {
		return c, fmt.Errorf("%w: %s", ErrDuplicateTicket, ticket.TicketID)
	}
	next := Collection{
		tickets: make([]domain.Ticket, len(c.tickets), len(c.tickets)+1),
		index:   make(map[string]int, len(c.index)+1),
	}
	copy(next.tickets, c.tickets)
	for id, i := range c.index {
		next.index[id] = i
	}
	next.index[ticket.TicketID] = len(next.tickets)
	next.tickets = append(next.tickets, ticket.Clone())
	return next, nil
}

// Reduce applies action and returns the resulting collection together with
// the affected ticket. On error the receiver is returned unchanged.
func (c Collection) Reduce(action Action) (Collection, domain.Ticket, error) {
	i, ok := c.index[action.TicketID]
	if !ok {
		return c, domain.Ticket{}, fmt.Errorf("%w: %s", ErrNotFound, action.TicketID)
	}
	updated, changed, err := Apply(c.tickets[i], action)
	if err != nil {
		return c, c.tickets[i].Clone(), err
	}
	if !changed {
		return c, updated.Clone(), nil
	}
	next := Collection{tickets: make([]domain.Ticket, len(c.tickets)), index: c.index}
	copy(next.tickets, c.tickets)
	next.tickets[i] = updated
	return next, updated.Clone(), nil
}

// All yields every ticket, oldest first.
func (c Collection) All() iter.Seq[domain.Ticket] {
	return c.Filter(FilterAll)
}

// Filter yields the tickets of one status partition, oldest first. The
// sequence can be ranged over any number of times.
func (c Collection) Filter(filter Filter) iter.Seq[domain.Ticket] {
	return func(yield func(domain.Ticket) bool) {
		for _, t := range c.tickets {
			if !filter.Matches(t) {
				continue
			}
			if !yield(t.Clone()) {
				return
			}
		}
	}
}

// Stats counts tickets per status over the whole collection.
func (c Collection) Stats() Stats {
	stats := Stats{Total: len(c.tickets)}
	for _, t := range c.tickets {
		switch t.Status {
		case domain.TicketStatusPending:
			stats.Pending++
		case domain.TicketStatusInProgress:
			stats.InProgress++
		case domain.TicketStatusResolved:
			stats.Resolved++
		case domain.TicketStatusRejected:
			stats.Rejected++
		case domain.TicketStatusEscalated:
			stats.Escalated++
		}
	}
	return stats
}

// NextTicketID returns the id following the highest numbered ticket.
func (c Collection) NextTicketID() string {
	highest := 0
	for _, t := range c.tickets {
		if n, ok := TicketNumber(t.TicketID); ok && n > highest {
			highest = n
		}
	}
	return FormatTicketID(highest + 1)
}

// FormatTicketID renders a running number as QRY-NNN.
func FormatTicketID(n int) string {
	return fmt.Sprintf("%s%03d", TicketIDPrefix, n)
}

// TicketNumber extracts the running number from a QRY-NNN id.
func TicketNumber(ticketID string) (int, bool) {
	if !strings.HasPrefix(ticketID, TicketIDPrefix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(ticketID, TicketIDPrefix))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
