package sheets

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/frigelar/esteira/internal/config"
)

type fakeWorksheet struct {
	title string
}

func (w *fakeWorksheet) Title() string { return w.title }

func (w *fakeWorksheet) Rows(context.Context) ([][]string, error) { return nil, nil }

func (w *fakeWorksheet) ColValues(context.Context, int) ([]string, error) { return nil, nil }

func (w *fakeWorksheet) Find(context.Context, string) (int, int, error) {
	return 0, 0, ErrCellNotFound
}

func (w *fakeWorksheet) UpdateCell(context.Context, int, int, string) error { return nil }

type flakyClient struct {
	failures int
	err      error
	sheets   []Worksheet
	calls    int
}

func (c *flakyClient) Worksheets(context.Context) ([]Worksheet, error) {
	c.calls++
	if c.calls <= c.failures {
		return nil, c.err
	}
	return c.sheets, nil
}

func (c *flakyClient) Worksheet(ctx context.Context, name string) (Worksheet, error) {
	all, err := c.Worksheets(ctx)
	if err != nil {
		return nil, err
	}
	for _, ws := range all {
		if ws.Title() == name {
			return ws, nil
		}
	}
	return nil, fmt.Errorf("worksheet %q not found", name)
}

func bootstrapConfig() config.SheetsConfig {
	return config.SheetsConfig{
		Addressing:        config.AddressingPositional,
		TicketsSheet:      "Chamados",
		AgentsSheet:       "Users",
		BootstrapAttempts: 10,
		BootstrapBaseSec:  0,
		BootstrapStepSec:  0,
	}
}

func twoSheets() []Worksheet {
	return []Worksheet{&fakeWorksheet{title: "Chamados"}, &fakeWorksheet{title: "Users"}}
}

func TestBootstrapSucceedsOnLastAttempt(t *testing.T) {
	client := &flakyClient{
		failures: 9,
		err:      errors.New("googleapi: Error 429: rate limit exceeded"),
		sheets:   twoSheets(),
	}

	tables, err := Bootstrap(context.Background(), client, bootstrapConfig(), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 10, client.calls)
	assert.Equal(t, "Chamados", tables.Tickets.Title())
	assert.Equal(t, "Users", tables.Agents.Title())
}

func TestBootstrapExhaustsAttempts(t *testing.T) {
	client := &flakyClient{
		failures: 10,
		err:      errors.New("googleapi: Error 429: rate limit exceeded"),
		sheets:   twoSheets(),
	}

	tables, err := Bootstrap(context.Background(), client, bootstrapConfig(), zap.NewNop())
	require.Error(t, err)
	assert.Nil(t, tables)
	assert.Equal(t, 10, client.calls)
	// The last observed error must survive verbatim for the operator.
	assert.Contains(t, err.Error(), "googleapi: Error 429: rate limit exceeded")
}

func TestBootstrapTooFewWorksheets(t *testing.T) {
	cfg := bootstrapConfig()
	cfg.BootstrapAttempts = 3
	client := &flakyClient{sheets: []Worksheet{&fakeWorksheet{title: "Chamados"}}}

	_, err := Bootstrap(context.Background(), client, cfg, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "need at least 2")
	assert.Equal(t, 3, client.calls)
}

func TestBootstrapNamedAddressing(t *testing.T) {
	cfg := bootstrapConfig()
	cfg.Addressing = config.AddressingNamed
	client := &flakyClient{
		sheets: []Worksheet{
			&fakeWorksheet{title: "Outra"},
			&fakeWorksheet{title: "Users"},
			&fakeWorksheet{title: "Chamados"},
		},
	}

	tables, err := Bootstrap(context.Background(), client, cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "Chamados", tables.Tickets.Title())
	assert.Equal(t, "Users", tables.Agents.Title())
}

func TestBootstrapNamedAddressingMissingTab(t *testing.T) {
	cfg := bootstrapConfig()
	cfg.Addressing = config.AddressingNamed
	cfg.BootstrapAttempts = 2
	client := &flakyClient{sheets: []Worksheet{&fakeWorksheet{title: "Users"}}}

	_, err := Bootstrap(context.Background(), client, cfg, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"Chamados" not found`)
}

func TestBootstrapCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := bootstrapConfig()
	cfg.BootstrapBaseSec = 1
	client := &flakyClient{failures: 10, err: errors.New("down"), sheets: twoSheets()}

	_, err := Bootstrap(ctx, client, cfg, zap.NewNop())
	require.ErrorIs(t, err, context.Canceled)
}

func TestHint(t *testing.T) {
	assert.Contains(t, Hint(errors.New("googleapi: Error 429")), "rate limited")
	assert.Contains(t, Hint(errors.New("API key not valid")), "credentials")
	assert.Empty(t, Hint(errors.New("connection refused")))
	assert.Empty(t, Hint(nil))
}
