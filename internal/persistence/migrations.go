package persistence

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// The audit trail owns a single table; the schema ships inline and is
// idempotent, so applying it on every start is safe.
const claimEventsSchema = `
CREATE TABLE IF NOT EXISTS claim_events (
    id          UUID PRIMARY KEY,
    ticket_id   TEXT NOT NULL,
    agent       TEXT NOT NULL,
    action      TEXT NOT NULL CHECK (action IN ('claim', 'finish')),
    occurred_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_claim_events_ticket ON claim_events (ticket_id, occurred_at);
`

// RunMigrations applies the audit-trail schema.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	if pool == nil {
		logger.Warn("no postgres pool available; skipping migrations")
		return nil
	}

	if _, err := pool.Exec(ctx, claimEventsSchema); err != nil {
		return err
	}

	logger.Info("audit trail schema applied")
	return nil
}
