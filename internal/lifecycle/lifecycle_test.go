package lifecycle

import (
	"errors"
	"reflect"
	"slices"
	"testing"
	"time"

	"github.com/spec-kit/membership-portal/internal/domain"
)

var t0 = time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

func fixture(t *testing.T) Collection {
	t.Helper()
	coll, err := NewCollection(
		domain.Ticket{
			TicketID:  "QRY-001",
			Requester: domain.Requester{Name: "राम कुमार", Email: "ram@example.com", Phone: "9876543210"},
			Subject:   "मृत्यु प्रमाण पत्र अपलोड नहीं हो रहा",
			Category:  domain.CategoryDeathCertificate,
			Status:    domain.TicketStatusPending,
			Priority:  domain.TicketPriorityHigh,
			CreatedAt: t0,
			UpdatedAt: t0,
			Location:  domain.Location{Sambhag: "इंदौर", District: "धार", Block: "बदनावर"},
			Version:   1,
		},
		domain.Ticket{
			TicketID:  "QRY-002",
			Requester: domain.Requester{Name: "सीता देवी"},
			Subject:   "भुगतान अपडेट नहीं हुआ",
			Category:  domain.CategoryPaymentIssue,
			Status:    domain.TicketStatusInProgress,
			Priority:  domain.TicketPriorityMedium,
			CreatedAt: t0,
			UpdatedAt: t0.Add(time.Hour),
			Responses: []domain.Response{{SequenceID: 1, RespondedBy: "Admin", Text: "जाँच की जा रही है", Timestamp: t0.Add(time.Hour)}},
			Version:   2,
		},
		domain.Ticket{
			TicketID:  "QRY-003",
			Requester: domain.Requester{Name: "मोहन"},
			Subject:   "सदस्यता नवीनीकरण",
			Category:  domain.CategoryMembership,
			Status:    domain.TicketStatusResolved,
			Priority:  domain.TicketPriorityLow,
			CreatedAt: t0,
			UpdatedAt: t0,
			Version:   3,
		},
		domain.Ticket{
			TicketID:  "QRY-004",
			Requester: domain.Requester{Name: "गीता"},
			Subject:   "तकनीकी समस्या",
			Category:  domain.CategoryTechnical,
			Status:    domain.TicketStatusEscalated,
			Priority:  domain.TicketPriorityHigh,
			CreatedAt: t0,
			UpdatedAt: t0,
			Version:   1,
		},
	)
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	return coll
}

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		from, to domain.TicketStatus
		want     bool
	}{
		{domain.TicketStatusPending, domain.TicketStatusInProgress, true},
		{domain.TicketStatusPending, domain.TicketStatusResolved, true},
		{domain.TicketStatusPending, domain.TicketStatusRejected, true},
		{domain.TicketStatusInProgress, domain.TicketStatusInProgress, true},
		{domain.TicketStatusInProgress, domain.TicketStatusResolved, true},
		{domain.TicketStatusInProgress, domain.TicketStatusRejected, true},
		{domain.TicketStatusEscalated, domain.TicketStatusInProgress, true},
		{domain.TicketStatusEscalated, domain.TicketStatusResolved, true},
		{domain.TicketStatusEscalated, domain.TicketStatusRejected, true},
		{domain.TicketStatusResolved, domain.TicketStatusInProgress, false},
		{domain.TicketStatusRejected, domain.TicketStatusResolved, false},
		{domain.TicketStatusPending, domain.TicketStatusEscalated, false},
		{domain.TicketStatusInProgress, domain.TicketStatusPending, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestResolveWithResponseScenario(t *testing.T) {
	coll := fixture(t)
	at := t0.Add(2 * time.Hour)
	next, ticket, err := coll.Reduce(Action{TicketID: "QRY-002", To: domain.TicketStatusResolved, ResponseText: "समाधान हो गया", Actor: "प्रशासक", At: at})
	if err != nil {
		t.Fatalf("reduce: %v", err)
	}
	if ticket.Status != domain.TicketStatusResolved {
		t.Fatalf("expected resolved, got %s", ticket.Status)
	}
	if len(ticket.Responses) != 2 {
		t.Fatalf("expected 2 responses, got %d", len(ticket.Responses))
	}
	last := ticket.Responses[1]
	if last.Text != "समाधान हो गया" || last.SequenceID != 2 || last.RespondedBy != "प्रशासक" || !last.Timestamp.Equal(at) {
		t.Fatalf("unexpected last response %+v", last)
	}
	if !ticket.UpdatedAt.Equal(at) {
		t.Fatalf("updatedAt not bumped: %v", ticket.UpdatedAt)
	}
	stored, _ := next.Get("QRY-002")
	if !reflect.DeepEqual(stored, ticket) {
		t.Fatalf("returned ticket differs from stored ticket")
	}
	before, _ := coll.Get("QRY-002")
	if before.Status != domain.TicketStatusInProgress || len(before.Responses) != 1 {
		t.Fatalf("reduce mutated the previous collection")
	}
}

func TestResolveTwiceIsIdempotent(t *testing.T) {
	for _, id := range []string{"QRY-001", "QRY-002"} {
		coll := fixture(t)
		once, first, err := coll.Reduce(Action{TicketID: id, To: domain.TicketStatusResolved, At: t0.Add(time.Hour)})
		if err != nil {
			t.Fatalf("%s first resolve: %v", id, err)
		}
		twice, second, err := once.Reduce(Action{TicketID: id, To: domain.TicketStatusResolved, ResponseText: "again", At: t0.Add(2 * time.Hour)})
		if err != nil {
			t.Fatalf("%s second resolve: %v", id, err)
		}
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("%s repeat resolve changed the ticket: %+v vs %+v", id, first, second)
		}
		if twice.Stats() != once.Stats() {
			t.Fatalf("%s repeat resolve changed stats", id)
		}
	}
}

func TestClosedTicketRejectsOtherTargets(t *testing.T) {
	coll := fixture(t)
	for _, to := range []domain.TicketStatus{domain.TicketStatusInProgress, domain.TicketStatusRejected} {
		next, _, err := coll.Reduce(Action{TicketID: "QRY-003", To: to, ResponseText: "x", At: t0})
		if !errors.Is(err, ErrTerminal) {
			t.Fatalf("expected ErrTerminal for %s, got %v", to, err)
		}
		got, _ := next.Get("QRY-003")
		if got.Status != domain.TicketStatusResolved || len(got.Responses) != 0 {
			t.Fatalf("closed ticket changed: %+v", got)
		}
	}
}

func TestInvalidTargets(t *testing.T) {
	coll := fixture(t)
	for _, to := range []domain.TicketStatus{domain.TicketStatusPending, domain.TicketStatusEscalated, "archived"} {
		if _, _, err := coll.Reduce(Action{TicketID: "QRY-001", To: to, At: t0}); !errors.Is(err, ErrInvalidStatus) {
			t.Fatalf("expected ErrInvalidStatus for %q, got %v", to, err)
		}
	}
}

func TestUnknownTicketLeavesCollectionUnchanged(t *testing.T) {
	coll := fixture(t)
	before := slices.Collect(coll.All())
	next, _, err := coll.Reduce(Action{TicketID: "QRY-999", To: domain.TicketStatusResolved, ResponseText: "x", At: t0})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	after := slices.Collect(next.All())
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("collection changed after failed transition")
	}
}

func TestRespondAppendsExactlyOne(t *testing.T) {
	coll := fixture(t)
	for _, id := range []string{"QRY-001", "QRY-002", "QRY-004"} {
		prev, _ := coll.Get(id)
		action, err := Respond(id, "  कृपया दस्तावेज़ भेजें  ", "", t0.Add(3*time.Hour))
		if err != nil {
			t.Fatalf("respond: %v", err)
		}
		var ticket domain.Ticket
		coll, ticket, err = coll.Reduce(action)
		if err != nil {
			t.Fatalf("reduce %s: %v", id, err)
		}
		if len(ticket.Responses) != len(prev.Responses)+1 {
			t.Fatalf("%s: expected one more response", id)
		}
		last := ticket.Responses[len(ticket.Responses)-1]
		if last.SequenceID != prev.NextSequenceID() {
			t.Fatalf("%s: expected sequence %d, got %d", id, prev.NextSequenceID(), last.SequenceID)
		}
		if last.RespondedBy != domain.DefaultResponder || last.Text != "कृपया दस्तावेज़ भेजें" {
			t.Fatalf("%s: unexpected response %+v", id, last)
		}
		if ticket.Status != domain.TicketStatusInProgress {
			t.Fatalf("%s: expected in_progress, got %s", id, ticket.Status)
		}
		for i, r := range ticket.Responses {
			if r.SequenceID != i+1 {
				t.Fatalf("%s: sequence ids not contiguous: %+v", id, ticket.Responses)
			}
		}
	}
}

func TestRespondRejectsBlankText(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t"} {
		if _, err := Respond("QRY-001", text, "x", t0); !errors.Is(err, ErrEmptyResponse) {
			t.Fatalf("expected ErrEmptyResponse for %q, got %v", text, err)
		}
	}
}

func TestStatusChangeWithoutResponseStillBumpsUpdatedAt(t *testing.T) {
	coll := fixture(t)
	at := t0.Add(5 * time.Hour)
	_, ticket, err := coll.Reduce(Action{TicketID: "QRY-001", To: domain.TicketStatusRejected, At: at})
	if err != nil {
		t.Fatalf("reduce: %v", err)
	}
	if !ticket.UpdatedAt.Equal(at) || len(ticket.Responses) != 0 || ticket.Version != 2 {
		t.Fatalf("unexpected ticket %+v", ticket)
	}
}

func TestUpdatedAtNeverPrecedesCreatedAt(t *testing.T) {
	coll := fixture(t)
	_, ticket, err := coll.Reduce(Action{TicketID: "QRY-001", To: domain.TicketStatusInProgress, At: t0.Add(-time.Hour)})
	if err != nil {
		t.Fatalf("reduce: %v", err)
	}
	if ticket.UpdatedAt.Before(ticket.CreatedAt) {
		t.Fatalf("updatedAt %v before createdAt %v", ticket.UpdatedAt, ticket.CreatedAt)
	}
}

func TestStatsMatchPartitions(t *testing.T) {
	coll := fixture(t)
	stats := coll.Stats()
	all := slices.Collect(coll.All())
	if stats.Total != len(all) {
		t.Fatalf("total %d != list(all) %d", stats.Total, len(all))
	}
	if stats.Pending+stats.InProgress+stats.Resolved+stats.Rejected > stats.Total {
		t.Fatalf("buckets exceed total: %+v", stats)
	}
	if stats.Escalated != 1 || stats.Pending+stats.InProgress+stats.Resolved+stats.Rejected != 3 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	for _, status := range []domain.TicketStatus{domain.TicketStatusPending, domain.TicketStatusInProgress, domain.TicketStatusResolved} {
		got := len(slices.Collect(coll.Filter(Filter(status))))
		if got != 1 {
			t.Fatalf("partition %s has %d tickets", status, got)
		}
	}
}

func TestFilterIsRestartableAndOrdered(t *testing.T) {
	coll := fixture(t)
	seq := coll.All()
	first := slices.Collect(seq)
	second := slices.Collect(seq)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("second pass differs from first")
	}
	ids := make([]string, 0, len(first))
	for _, tk := range first {
		ids = append(ids, tk.TicketID)
	}
	if !slices.Equal(ids, []string{"QRY-001", "QRY-002", "QRY-003", "QRY-004"}) {
		t.Fatalf("unexpected order %v", ids)
	}
}

func TestParseFilter(t *testing.T) {
	if f, err := ParseFilter(""); err != nil || f != FilterAll {
		t.Fatalf("empty filter: %v %v", f, err)
	}
	if f, err := ParseFilter("IN_PROGRESS"); err != nil || f != Filter(domain.TicketStatusInProgress) {
		t.Fatalf("in_progress filter: %v %v", f, err)
	}
	if _, err := ParseFilter("open"); err == nil {
		t.Fatalf("expected error for unknown filter")
	}
}

func TestInsertAndIDs(t *testing.T) {
	coll := fixture(t)
	if coll.NextTicketID() != "QRY-005" {
		t.Fatalf("unexpected next id %s", coll.NextTicketID())
	}
	ticket, err := Intake(domain.Ticket{TicketID: coll.NextTicketID(), Subject: " नया ", Requester: domain.Requester{Name: "a"}, Status: domain.TicketStatusResolved}, t0)
	if err != nil {
		t.Fatalf("intake: %v", err)
	}
	if ticket.Status != domain.TicketStatusPending || ticket.Category != domain.CategoryGeneral || ticket.Priority != domain.TicketPriorityMedium {
		t.Fatalf("intake defaults not applied: %+v", ticket)
	}
	next, err := coll.Insert(ticket)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if next.Len() != 5 || coll.Len() != 4 {
		t.Fatalf("insert must not mutate receiver")
	}
	if _, err := next.Insert(ticket); !errors.Is(err, ErrDuplicateTicket) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if _, err := Intake(domain.Ticket{Subject: "x", Requester: domain.Requester{Name: "a"}, Category: "other"}, t0); !errors.Is(err, ErrInvalidTicket) {
		t.Fatalf("expected invalid ticket, got %v", err)
	}
	if n, ok := TicketNumber("QRY-042"); !ok || n != 42 {
		t.Fatalf("TicketNumber parse failed")
	}
}
