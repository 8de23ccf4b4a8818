package lifecycle

import (
	"fmt"
	"strings"

	"github.com/spec-kit/membership-portal/internal/domain"
)

// Filter selects a status partition of the collection.
type Filter string

const FilterAll Filter = "all"

// ParseFilter accepts "all" (or empty) and any enumerated status.
func ParseFilter(raw string) (Filter, error) {
	value := strings.TrimSpace(strings.ToLower(raw))
	if value == "" || value == string(FilterAll) {
		return FilterAll, nil
	}
	if !domain.TicketStatus(value).Valid() {
		return "", fmt.Errorf("%w: unknown filter %q", ErrInvalidStatus, raw)
	}
	return Filter(value), nil
}

// Matches reports whether the ticket belongs to the partition.
func (f Filter) Matches(ticket domain.Ticket) bool {
	if f == FilterAll || f == "" {
		return true
	}
	return ticket.Status == domain.TicketStatus(f)
}

// Stats holds per-status counts. Escalated tickets count towards Total but
// none of the four workflow buckets.
type Stats struct {
	Total      int
	Pending    int
	InProgress int
	Resolved   int
	Rejected   int
	Escalated  int
}
