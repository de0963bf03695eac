package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/frigelar/esteira/internal/events"
	"github.com/frigelar/esteira/internal/repository"
)

// AuditService records claim-protocol events in the optional Postgres trail.
type AuditService struct {
	dispatcher events.Dispatcher
	trail      repository.ClaimEventRepository
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, trail repository.ClaimEventRepository, logger *zap.Logger) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		trail:      trail,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventTicketClaimed, a.handleEvent("claim"))
	a.dispatcher.Subscribe(events.EventTicketFinished, a.handleEvent("finish"))
}

func (a *AuditService) handleEvent(action string) events.EventHandler {
	return func(ctx context.Context, event events.Event) error {
		err := a.trail.Insert(ctx, &repository.ClaimEvent{
			ID:         event.ID,
			TicketID:   event.TicketID,
			Agent:      event.Agent,
			Action:     action,
			OccurredAt: event.Timestamp,
		})
		if err != nil {
			// The claim already hit the spreadsheet; losing an audit row is
			// logged, never propagated back to the agent.
			a.logger.Warn("audit trail insert failed",
				zap.String("ticket_id", event.TicketID),
				zap.String("action", action),
				zap.Error(err),
			)
		}
		return err
	}
}
