package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ClaimEvent is one audit row for a claim or finish.
type ClaimEvent struct {
	ID         string
	TicketID   string
	Agent      string
	Action     string
	OccurredAt time.Time
}

// ClaimEventRepository persists the audit trail. Optional: a nil pool makes
// every call a no-op so the service runs without Postgres.
type ClaimEventRepository interface {
	Insert(ctx context.Context, event *ClaimEvent) error
	ListByTicket(ctx context.Context, ticketID string) ([]ClaimEvent, error)
}

type claimEventRepository struct {
	pool *pgxpool.Pool
}

// NewClaimEventRepository instantiates the repository.
func NewClaimEventRepository(pool *pgxpool.Pool) ClaimEventRepository {
	return &claimEventRepository{pool: pool}
}

func (r *claimEventRepository) Insert(ctx context.Context, event *ClaimEvent) error {
	if r.pool == nil {
		return nil
	}
	const query = `
        INSERT INTO claim_events (id, ticket_id, agent, action, occurred_at)
        VALUES ($1,$2,$3,$4,$5)`
	_, err := r.pool.Exec(ctx, query,
		event.ID,
		event.TicketID,
		event.Agent,
		event.Action,
		event.OccurredAt,
	)
	return err
}

func (r *claimEventRepository) ListByTicket(ctx context.Context, ticketID string) ([]ClaimEvent, error) {
	if r.pool == nil {
		return nil, nil
	}
	const query = `
        SELECT id, ticket_id, agent, action, occurred_at
        FROM claim_events WHERE ticket_id=$1 ORDER BY occurred_at`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []ClaimEvent
	for rows.Next() {
		var ev ClaimEvent
		if err := rows.Scan(&ev.ID, &ev.TicketID, &ev.Agent, &ev.Action, &ev.OccurredAt); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
