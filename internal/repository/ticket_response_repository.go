package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/membership-portal/internal/domain"
)

// insertResponses appends responses to a ticket thread. The primary key on
// (ticket_id, sequence_id) rejects a second writer reusing a sequence id.
func insertResponses(ctx context.Context, tx pgx.Tx, ticketID string, responses []domain.Response) error {
	if len(responses) == 0 {
		return nil
	}
	const query = `
        INSERT INTO ticket_responses (ticket_id, sequence_id, responded_by, body, created_at)
        VALUES ($1,$2,$3,$4,$5)`
	batch := &pgx.Batch{}
	for _, resp := range responses {
		batch.Queue(query, ticketID, resp.SequenceID, resp.RespondedBy, resp.Text, resp.Timestamp)
	}
	return tx.SendBatch(ctx, batch).Close()
}

// listResponses loads response threads grouped by ticket, in sequence order.
// An empty ticketID loads every thread.
func listResponses(ctx context.Context, q querier, ticketID string) (map[string][]domain.Response, error) {
	const query = `
        SELECT ticket_id, sequence_id, responded_by, body, created_at
        FROM ticket_responses WHERE ($1 = '' OR ticket_id=$1)
        ORDER BY ticket_id, sequence_id ASC`
	rows, err := q.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string][]domain.Response)
	for rows.Next() {
		var (
			id   string
			resp domain.Response
		)
		if err := rows.Scan(&id, &resp.SequenceID, &resp.RespondedBy, &resp.Text, &resp.Timestamp); err != nil {
			return nil, err
		}
		result[id] = append(result[id], resp)
	}
	return result, rows.Err()
}
