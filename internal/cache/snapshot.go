// Package cache holds the display-only snapshot of the ticket table.
package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/frigelar/esteira/internal/domain"
)

// Loader fetches the full ticket table from the backing store.
type Loader func(ctx context.Context) ([]domain.Ticket, error)

// Snapshot is a time-boxed read-through copy of the ticket table. It exists
// to keep screen renders off the rate-limited remote API; mutation paths must
// bypass it by invalidating first and reading through the repository.
type Snapshot struct {
	mu     sync.Mutex
	loader Loader
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time

	rows      []domain.Ticket
	fetchedAt time.Time
	valid     bool
}

// NewSnapshot builds a snapshot cache over the loader.
func NewSnapshot(loader Loader, ttl time.Duration, logger *zap.Logger) *Snapshot {
	return &Snapshot{
		loader: loader,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// Rows returns the cached ticket table, refetching when the validity window
// has passed. A failed fetch degrades to an empty slice: callers must treat
// empty as "not yet available", never as "queue is empty".
func (s *Snapshot) Rows(ctx context.Context) []domain.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.valid && s.now().Sub(s.fetchedAt) < s.ttl {
		return s.rows
	}

	rows, err := s.loader(ctx)
	if err != nil {
		s.logger.Warn("snapshot refresh failed, serving empty", zap.Error(err))
		s.rows = nil
		s.valid = false
		return nil
	}
	s.rows = rows
	s.fetchedAt = s.now()
	s.valid = true
	return s.rows
}

// Invalidate forces the next Rows call to hit the store. Mutation paths call
// this immediately before their fresh read and again after a successful
// write.
func (s *Snapshot) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.valid = false
	s.rows = nil
}
