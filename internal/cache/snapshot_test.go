package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/frigelar/esteira/internal/domain"
)

type countingLoader struct {
	rows  []domain.Ticket
	err   error
	calls int
}

func (l *countingLoader) load(context.Context) ([]domain.Ticket, error) {
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	return l.rows, nil
}

func TestSnapshotServesCachedRowsWithinWindow(t *testing.T) {
	loader := &countingLoader{rows: []domain.Ticket{{ID: "1"}}}
	snap := NewSnapshot(loader.load, 10*time.Second, zap.NewNop())

	now := time.Now()
	snap.now = func() time.Time { return now }

	first := snap.Rows(context.Background())
	require.Len(t, first, 1)

	// The backing store changes, but the window has not passed.
	loader.rows = []domain.Ticket{{ID: "1"}, {ID: "2"}}
	now = now.Add(5 * time.Second)

	second := snap.Rows(context.Background())
	assert.Equal(t, first, second)
	assert.Equal(t, 1, loader.calls)
}

func TestSnapshotRefetchesAfterTTL(t *testing.T) {
	loader := &countingLoader{rows: []domain.Ticket{{ID: "1"}}}
	snap := NewSnapshot(loader.load, 10*time.Second, zap.NewNop())

	now := time.Now()
	snap.now = func() time.Time { return now }

	snap.Rows(context.Background())
	loader.rows = []domain.Ticket{{ID: "1"}, {ID: "2"}}
	now = now.Add(11 * time.Second)

	rows := snap.Rows(context.Background())
	assert.Len(t, rows, 2)
	assert.Equal(t, 2, loader.calls)
}

func TestSnapshotInvalidateForcesRefetch(t *testing.T) {
	loader := &countingLoader{rows: []domain.Ticket{{ID: "1"}}}
	snap := NewSnapshot(loader.load, time.Hour, zap.NewNop())

	snap.Rows(context.Background())
	loader.rows = []domain.Ticket{{ID: "1", Status: domain.TicketStatusEmAndamento}}
	snap.Invalidate()

	rows := snap.Rows(context.Background())
	require.Len(t, rows, 1)
	assert.Equal(t, domain.TicketStatusEmAndamento, rows[0].Status)
	assert.Equal(t, 2, loader.calls)
}

func TestSnapshotDegradesToEmptyOnError(t *testing.T) {
	loader := &countingLoader{err: errors.New("read quota exceeded")}
	snap := NewSnapshot(loader.load, time.Hour, zap.NewNop())

	rows := snap.Rows(context.Background())
	assert.Empty(t, rows)

	// A failed fetch is not cached; the next read tries again.
	loader.err = nil
	loader.rows = []domain.Ticket{{ID: "7"}}
	rows = snap.Rows(context.Background())
	assert.Len(t, rows, 1)
	assert.Equal(t, 2, loader.calls)
}
