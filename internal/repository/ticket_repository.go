package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/membership-portal/internal/domain"
	"github.com/spec-kit/membership-portal/internal/lifecycle"
)

// MaxApplyAttempts bounds how often a transition is re-evaluated against
// fresh state when a concurrent writer bumped the ticket version.
const MaxApplyAttempts = 3

// ErrVersionConflict reports that concurrent writers kept winning.
var ErrVersionConflict = errors.New("ticket changed concurrently")

// TicketRepository stores tickets for the lifecycle engine. Apply evaluates
// the action through lifecycle.Apply against the stored state, so every
// store enforces the same rules.
type TicketRepository interface {
	Create(ctx context.Context, ticket domain.Ticket) (domain.Ticket, error)
	Get(ctx context.Context, ticketID string) (domain.Ticket, error)
	Snapshot(ctx context.Context) (lifecycle.Collection, error)
	Apply(ctx context.Context, action lifecycle.Action) (ApplyResult, error)
}

// ApplyResult carries the ticket before and after an action. Changed is
// false for a repeated terminal status, in which case Before equals After.
type ApplyResult struct {
	Before  domain.Ticket
	After   domain.Ticket
	Changed bool
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository returns the Postgres-backed store.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `ticket_id, requester_name, requester_email, requester_phone, subject, category,
               description, status, priority, assigned_to, sambhag, district, block,
               created_at, updated_at, version`

func (r *ticketRepository) Create(ctx context.Context, ticket domain.Ticket) (domain.Ticket, error) {
	if ticket.TicketID != "" {
		return ticket, r.insertExplicit(ctx, ticket)
	}
	return assignTicketID(ctx, MaxApplyAttempts, ticket, r.nextTicketNumber, func(ctx context.Context, t domain.Ticket) error {
		return insertTicket(ctx, r.pool, t)
	})
}

// insertExplicit stores a ticket whose id the caller chose and moves the
// number sequence past it, so later automatic ids do not collide.
func (r *ticketRepository) insertExplicit(ctx context.Context, ticket domain.Ticket) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := insertTicket(ctx, tx, ticket); err != nil {
		return err
	}
	if n, ok := lifecycle.TicketNumber(ticket.TicketID); ok {
		const advance = `SELECT setval('ticket_number_seq', GREATEST($1, (SELECT last_value FROM ticket_number_seq)))`
		if _, err := tx.Exec(ctx, advance, n); err != nil {
			return fmt.Errorf("advance ticket number: %w", err)
		}
	}
	return tx.Commit(ctx)
}

func (r *ticketRepository) nextTicketNumber(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT nextval('ticket_number_seq')`).Scan(&n); err != nil {
		return 0, fmt.Errorf("next ticket number: %w", err)
	}
	return n, nil
}

// assignTicketID draws numbers until insert accepts one. An id already taken
// by an explicitly numbered ticket makes it draw again.
func assignTicketID(
	ctx context.Context,
	attempts int,
	ticket domain.Ticket,
	next func(context.Context) (int, error),
	insert func(context.Context, domain.Ticket) error,
) (domain.Ticket, error) {
	var err error
	for i := 0; i < attempts; i++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.Ticket{}, ctxErr
		}
		n, nextErr := next(ctx)
		if nextErr != nil {
			return domain.Ticket{}, nextErr
		}
		ticket.TicketID = lifecycle.FormatTicketID(n)
		err = insert(ctx, ticket)
		if err == nil {
			return ticket, nil
		}
		if !errors.Is(err, lifecycle.ErrDuplicateTicket) {
			return domain.Ticket{}, err
		}
	}
	return domain.Ticket{}, fmt.Errorf("%w after %d attempts", err, attempts)
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func insertTicket(ctx context.Context, db execer, ticket domain.Ticket) error {
	const query = `
        INSERT INTO tickets (ticket_id, requester_name, requester_email, requester_phone, subject, category,
            description, status, priority, assigned_to, sambhag, district, block, created_at, updated_at, version)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`
	_, err := db.Exec(ctx, query,
		ticket.TicketID,
		ticket.Requester.Name,
		ticket.Requester.Email,
		ticket.Requester.Phone,
		ticket.Subject,
		ticket.Category,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.AssignedTo,
		ticket.Location.Sambhag,
		ticket.Location.District,
		ticket.Location.Block,
		ticket.CreatedAt,
		ticket.UpdatedAt,
		ticket.Version,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: %s", lifecycle.ErrDuplicateTicket, ticket.TicketID)
		}
		return err
	}
	return nil
}

func (r *ticketRepository) Get(ctx context.Context, ticketID string) (domain.Ticket, error) {
	return loadTicket(ctx, r.pool, ticketID)
}

func (r *ticketRepository) Snapshot(ctx context.Context) (lifecycle.Collection, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+ticketColumns+` FROM tickets ORDER BY seq ASC`)
	if err != nil {
		return lifecycle.Collection{}, err
	}
	tickets, err := pgx.CollectRows(rows, scanTicket)
	if err != nil {
		return lifecycle.Collection{}, err
	}

	responses, err := listResponses(ctx, r.pool, "")
	if err != nil {
		return lifecycle.Collection{}, err
	}
	for i := range tickets {
		tickets[i].Responses = responses[tickets[i].TicketID]
	}
	return lifecycle.NewCollection(tickets...)
}

func (r *ticketRepository) Apply(ctx context.Context, action lifecycle.Action) (ApplyResult, error) {
	var result ApplyResult
	err := retryOnConflict(ctx, MaxApplyAttempts, func() error {
		var err error
		result, err = r.applyOnce(ctx, action)
		return err
	})
	return result, err
}

// applyOnce evaluates action against the stored ticket and writes the result
// only if nobody else bumped the version in between.
func (r *ticketRepository) applyOnce(ctx context.Context, action lifecycle.Action) (ApplyResult, error) {
	current, err := loadTicket(ctx, r.pool, action.TicketID)
	if err != nil {
		return ApplyResult{}, err
	}
	next, changed, err := lifecycle.Apply(current, action)
	if err != nil {
		return ApplyResult{}, err
	}
	if !changed {
		return ApplyResult{Before: current, After: current}, nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return ApplyResult{}, err
	}
	defer tx.Rollback(ctx)

	const update = `
        UPDATE tickets SET status=$1, updated_at=$2, version=$3
        WHERE ticket_id=$4 AND version=$5`
	cmd, err := tx.Exec(ctx, update, next.Status, next.UpdatedAt, next.Version, next.TicketID, current.Version)
	if err != nil {
		return ApplyResult{}, err
	}
	if cmd.RowsAffected() == 0 {
		return ApplyResult{}, ErrVersionConflict
	}
	if err := insertResponses(ctx, tx, next.TicketID, next.Responses[len(current.Responses):]); err != nil {
		return ApplyResult{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return ApplyResult{}, err
	}
	return ApplyResult{Before: current, After: next, Changed: true}, nil
}

// retryOnConflict runs fn until it stops reporting ErrVersionConflict or
// attempts run out.
func retryOnConflict(ctx context.Context, attempts int, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = fn()
		if !errors.Is(err, ErrVersionConflict) {
			return err
		}
	}
	return fmt.Errorf("%w after %d attempts", err, attempts)
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func loadTicket(ctx context.Context, q querier, ticketID string) (domain.Ticket, error) {
	rows, err := q.Query(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE ticket_id=$1`, ticketID)
	if err != nil {
		return domain.Ticket{}, err
	}
	ticket, err := pgx.CollectOneRow(rows, scanTicket)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Ticket{}, fmt.Errorf("%w: %s", lifecycle.ErrNotFound, ticketID)
	}
	if err != nil {
		return domain.Ticket{}, err
	}
	responses, err := listResponses(ctx, q, ticketID)
	if err != nil {
		return domain.Ticket{}, err
	}
	ticket.Responses = responses[ticketID]
	return ticket, nil
}

func scanTicket(row pgx.CollectableRow) (domain.Ticket, error) {
	var ticket domain.Ticket
	err := row.Scan(
		&ticket.TicketID,
		&ticket.Requester.Name,
		&ticket.Requester.Email,
		&ticket.Requester.Phone,
		&ticket.Subject,
		&ticket.Category,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.AssignedTo,
		&ticket.Location.Sambhag,
		&ticket.Location.District,
		&ticket.Location.Block,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.Version,
	)
	return ticket, err
}
