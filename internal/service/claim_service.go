package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/frigelar/esteira/internal/cache"
	"github.com/frigelar/esteira/internal/domain"
	"github.com/frigelar/esteira/internal/events"
	"github.com/frigelar/esteira/internal/observability"
	"github.com/frigelar/esteira/internal/repository"
)

// ErrQueueRaced reports that no claimable row survived the fresh re-read:
// another agent took the last pending ticket first. A normal outcome, not a
// failure.
var ErrQueueRaced = errors.New("no pending ticket left, someone claimed it first")

// ErrNoActiveTicket reports a finish request from an agent with no
// in-progress row.
var ErrNoActiveTicket = errors.New("agent has no ticket in progress")

// ErrAlreadyHolding reports a claim attempt by an agent who still has a
// ticket in progress. One active ticket per agent at a time.
var ErrAlreadyHolding = errors.New("agent already holds a ticket in progress")

// TimestampLayout is how claim and finish times are written to the sheet.
const TimestampLayout = "02/01/2006 15:04:05"

var brazilTZ = loadBrazilTZ()

func loadBrazilTZ() *time.Location {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		return time.FixedZone("BRT", -3*60*60)
	}
	return loc
}

// ClaimService runs the claim protocol: read-fresh, locate, verify, write,
// invalidate. The fresh read immediately before the write is the only race
// mitigation available; the store has no transactions or compare-and-set.
type ClaimService struct {
	tickets    repository.TicketRepository
	snapshot   *cache.Snapshot
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// ClaimDependencies bundles collaborators for the claim service.
type ClaimDependencies struct {
	TicketRepo repository.TicketRepository
	Snapshot   *cache.Snapshot
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewClaimService constructs the service.
func NewClaimService(deps ClaimDependencies) *ClaimService {
	return &ClaimService{
		tickets:    deps.TicketRepo,
		snapshot:   deps.Snapshot,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		now:        time.Now,
	}
}

// FinishResult reports the outcome of FinishCurrent.
type FinishResult struct {
	Ticket domain.Ticket
	// AlreadyDone is set when the agent's row was already Concluido, which
	// happens on a duplicate finish click. The row is left untouched.
	AlreadyDone bool
}

// ClaimNext assigns the earliest unclaimed pending ticket to the agent.
// Returns ErrQueueRaced when the fresh read finds nothing claimable.
func (s *ClaimService) ClaimNext(ctx context.Context, agent string) (*domain.Ticket, error) {
	s.snapshot.Invalidate()

	rows, err := s.tickets.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fresh read before claim: %w", err)
	}

	var next *domain.Ticket
	for i := range rows {
		if rows[i].ActiveFor(agent) {
			return &rows[i], ErrAlreadyHolding
		}
		if next == nil && rows[i].Claimable() {
			next = &rows[i]
		}
	}
	if next == nil {
		s.metrics.RecordClaim("raced")
		return nil, ErrQueueRaced
	}

	stamp := s.timestamp()
	if err := s.tickets.SetClaimed(ctx, next.ID, agent, stamp); err != nil {
		return nil, err
	}
	s.snapshot.Invalidate()

	s.metrics.RecordClaim("claimed")
	s.logger.Info("ticket claimed",
		zap.String("ticket", next.ID),
		zap.String("agent", agent),
	)
	s.publish(ctx, events.EventTicketClaimed, next.ID, agent)

	claimed := *next
	claimed.Status = domain.TicketStatusEmAndamento
	claimed.Responsavel = agent
	claimed.IniciadoEm = stamp
	return &claimed, nil
}

// FinishCurrent marks the agent's in-progress ticket as done. A duplicate
// click lands after the row is already Concluido; that is a no-op, reported
// through FinishResult.AlreadyDone. Responsavel is never touched.
func (s *ClaimService) FinishCurrent(ctx context.Context, agent string) (*FinishResult, error) {
	s.snapshot.Invalidate()

	rows, err := s.tickets.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fresh read before finish: %w", err)
	}

	var active *domain.Ticket
	var lastDone *domain.Ticket
	for i := range rows {
		if rows[i].ActiveFor(agent) {
			active = &rows[i]
			break
		}
		if rows[i].Status == domain.TicketStatusConcluido && rows[i].Responsavel == agent {
			lastDone = &rows[i]
		}
	}

	if active == nil {
		if lastDone != nil {
			s.metrics.RecordClaim("finish_noop")
			s.logger.Warn("finish on already concluded ticket, ignoring",
				zap.String("ticket", lastDone.ID),
				zap.String("agent", agent),
			)
			return &FinishResult{Ticket: *lastDone, AlreadyDone: true}, nil
		}
		return nil, ErrNoActiveTicket
	}

	stamp := s.timestamp()
	if err := s.tickets.SetFinished(ctx, active.ID, stamp); err != nil {
		return nil, err
	}
	s.snapshot.Invalidate()

	s.metrics.RecordClaim("finished")
	s.logger.Info("ticket finished",
		zap.String("ticket", active.ID),
		zap.String("agent", agent),
	)
	s.publish(ctx, events.EventTicketFinished, active.ID, agent)

	done := *active
	done.Status = domain.TicketStatusConcluido
	done.FinalizadoEm = stamp
	return &FinishResult{Ticket: done}, nil
}

// ActiveTicket returns the agent's in-progress ticket from the display
// snapshot, if any. When the snapshot shows more than one, only the first is
// reported.
func (s *ClaimService) ActiveTicket(ctx context.Context, agent string) (*domain.Ticket, bool) {
	for _, t := range s.snapshot.Rows(ctx) {
		if t.ActiveFor(agent) {
			return &t, true
		}
	}
	return nil, false
}

// QueueDepth counts pending tickets in the display snapshot.
func (s *ClaimService) QueueDepth(ctx context.Context) int {
	depth := 0
	for _, t := range s.snapshot.Rows(ctx) {
		if t.Status == domain.TicketStatusPendente {
			depth++
		}
	}
	return depth
}

// SnapshotEmpty reports whether the display snapshot currently has no rows,
// meaning "not yet available" rather than "no tickets".
func (s *ClaimService) SnapshotEmpty(ctx context.Context) bool {
	return len(s.snapshot.Rows(ctx)) == 0
}

// RefreshSnapshot drops the display snapshot; the manual retry control.
func (s *ClaimService) RefreshSnapshot() {
	s.snapshot.Invalidate()
}

func (s *ClaimService) timestamp() string {
	return s.now().In(brazilTZ).Format(TimestampLayout)
}

func (s *ClaimService) publish(ctx context.Context, eventType events.EventType, ticketID, agent string) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		TicketID:  ticketID,
		Agent:     agent,
		Timestamp: s.now(),
	})
}
