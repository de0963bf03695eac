package sheets

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/frigelar/esteira/internal/config"
)

// Tables is the worksheet pair every other component depends on.
type Tables struct {
	Tickets Worksheet
	Agents  Worksheet
}

// Bootstrap resolves the tickets and agents worksheets, retrying with a
// growing delay to ride out transient unavailability and API rate limits.
// After the attempt budget is spent the last error is returned verbatim so
// the operator sees the real diagnostic. This is a fatal startup condition
// for the caller.
func Bootstrap(ctx context.Context, client Client, cfg config.SheetsConfig, logger *zap.Logger) (*Tables, error) {
	attempts := cfg.BootstrapAttempts
	if attempts <= 0 {
		attempts = 10
	}
	base := time.Duration(cfg.BootstrapBaseSec) * time.Second
	step := time.Duration(cfg.BootstrapStepSec) * time.Second

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, base+time.Duration(attempt-1)*step); err != nil {
				return nil, err
			}
		}
		tables, err := resolve(ctx, client, cfg)
		if err == nil {
			logger.Info("spreadsheet connected",
				zap.Int("attempt", attempt+1),
				zap.String("tickets", tables.Tickets.Title()),
				zap.String("agents", tables.Agents.Title()),
			)
			return tables, nil
		}
		lastErr = err
		logger.Warn("spreadsheet bootstrap attempt failed",
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}
	return nil, fmt.Errorf("gave up after %d attempts: %w", attempts, lastErr)
}

func resolve(ctx context.Context, client Client, cfg config.SheetsConfig) (*Tables, error) {
	if cfg.Addressing == config.AddressingNamed {
		tickets, err := client.Worksheet(ctx, cfg.TicketsSheet)
		if err != nil {
			return nil, err
		}
		agents, err := client.Worksheet(ctx, cfg.AgentsSheet)
		if err != nil {
			return nil, err
		}
		return &Tables{Tickets: tickets, Agents: agents}, nil
	}

	all, err := client.Worksheets(ctx)
	if err != nil {
		return nil, err
	}
	if len(all) < 2 {
		return nil, fmt.Errorf("spreadsheet has %d visible worksheets, need at least 2", len(all))
	}
	return &Tables{Tickets: all[0], Agents: all[1]}, nil
}

// Hint maps well-known failure texts to an operator-facing suggestion.
// Empty when nothing is recognized.
func Hint(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "429"):
		return "rate limited by the Sheets API; wait a minute before retrying"
	case strings.Contains(msg, "API key not valid"):
		return "check the service account credentials"
	default:
		return ""
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
