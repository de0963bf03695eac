package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frigelar/esteira/internal/domain"
	"github.com/frigelar/esteira/internal/sheets"
)

type cellWrite struct {
	row, col int
	value    string
}

type fakeWorksheet struct {
	title   string
	rows    [][]string
	rowsErr error
	writes  []cellWrite
}

func (w *fakeWorksheet) Title() string { return w.title }

func (w *fakeWorksheet) Rows(context.Context) ([][]string, error) {
	if w.rowsErr != nil {
		return nil, w.rowsErr
	}
	return w.rows, nil
}

func (w *fakeWorksheet) ColValues(_ context.Context, col int) ([]string, error) {
	if w.rowsErr != nil {
		return nil, w.rowsErr
	}
	values := make([]string, 0, len(w.rows))
	for _, row := range w.rows {
		if col-1 < len(row) {
			values = append(values, row[col-1])
		} else {
			values = append(values, "")
		}
	}
	return values, nil
}

func (w *fakeWorksheet) Find(_ context.Context, value string) (int, int, error) {
	for r, row := range w.rows {
		for c, cell := range row {
			if cell == value {
				return r + 1, c + 1, nil
			}
		}
	}
	return 0, 0, sheets.ErrCellNotFound
}

func (w *fakeWorksheet) UpdateCell(_ context.Context, row, col int, value string) error {
	w.writes = append(w.writes, cellWrite{row: row, col: col, value: value})
	for row > len(w.rows) {
		w.rows = append(w.rows, nil)
	}
	line := w.rows[row-1]
	for col > len(line) {
		line = append(line, "")
	}
	line[col-1] = value
	w.rows[row-1] = line
	return nil
}

func ticketSheet() *fakeWorksheet {
	return &fakeWorksheet{
		title: "Chamados",
		rows: [][]string{
			{"ID", "Dados", "Status", "Responsavel", "Inicio", "Fim"},
			{"1", "45001", "Pendente", "", "", ""},
			{"2", "45002", "Em Andamento", "Ana", "25/08/2026 09:00:00", ""},
			{"3", "45003", "Concluido", "Bruno", "24/08/2026 10:00:00", "24/08/2026 11:30:00"},
		},
	}
}

func TestListAllParsesRows(t *testing.T) {
	repo := NewSheetTicketRepository(ticketSheet())

	tickets, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, tickets, 3)

	assert.Equal(t, "1", tickets[0].ID)
	assert.Equal(t, 2, tickets[0].RowIndex)
	assert.Equal(t, domain.TicketStatusPendente, tickets[0].Status)
	assert.True(t, tickets[0].Claimable())

	assert.Equal(t, "Ana", tickets[1].Responsavel)
	assert.True(t, tickets[1].ActiveFor("Ana"))
	assert.Equal(t, "45003", tickets[2].Dados)
	assert.Equal(t, "24/08/2026 11:30:00", tickets[2].FinalizadoEm)
}

func TestListAllSkipsBlankIDs(t *testing.T) {
	ws := ticketSheet()
	ws.rows = append(ws.rows, []string{"", "", "", "", "", ""})
	repo := NewSheetTicketRepository(ws)

	tickets, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, tickets, 3)
}

func TestListAllRejectsForeignHeader(t *testing.T) {
	ws := ticketSheet()
	ws.rows[0] = []string{"ID", "Dados", "Estado", "Dono", "Inicio", "Fim"}
	repo := NewSheetTicketRepository(ws)

	_, err := repo.ListAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Status/Responsavel")
}

func TestSetClaimedWritesThreeCells(t *testing.T) {
	ws := ticketSheet()
	repo := NewSheetTicketRepository(ws)

	err := repo.SetClaimed(context.Background(), "1", "Carla", "26/08/2026 14:00:00")
	require.NoError(t, err)

	require.Len(t, ws.writes, 3)
	assert.Equal(t, cellWrite{row: 2, col: ColStatus, value: "Em Andamento"}, ws.writes[0])
	assert.Equal(t, cellWrite{row: 2, col: ColResponsavel, value: "Carla"}, ws.writes[1])
	assert.Equal(t, cellWrite{row: 2, col: ColIniciadoEm, value: "26/08/2026 14:00:00"}, ws.writes[2])
}

func TestSetFinishedWritesTwoCellsAndKeepsResponsavel(t *testing.T) {
	ws := ticketSheet()
	repo := NewSheetTicketRepository(ws)

	err := repo.SetFinished(context.Background(), "2", "26/08/2026 15:30:00")
	require.NoError(t, err)

	require.Len(t, ws.writes, 2)
	assert.Equal(t, cellWrite{row: 3, col: ColStatus, value: "Concluido"}, ws.writes[0])
	assert.Equal(t, cellWrite{row: 3, col: ColFinalizadoEm, value: "26/08/2026 15:30:00"}, ws.writes[1])
	assert.Equal(t, "Ana", ws.rows[2][ColResponsavel-1])
}

func TestMutationsSurfaceVanishedRows(t *testing.T) {
	repo := NewSheetTicketRepository(ticketSheet())

	err := repo.SetClaimed(context.Background(), "99", "Carla", "26/08/2026 14:00:00")
	require.ErrorIs(t, err, ErrRowVanished)

	err = repo.SetFinished(context.Background(), "99", "26/08/2026 14:00:00")
	require.ErrorIs(t, err, ErrRowVanished)
}

func TestAgentRepositorySkipsHeaderAndBlanks(t *testing.T) {
	ws := &fakeWorksheet{
		title: "Users",
		rows: [][]string{
			{"Nome"},
			{"Ana"},
			{" "},
			{"Bruno"},
			{"  Carla "},
		},
	}
	repo := NewSheetAgentRepository(ws)

	agents, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, agents, 3)
	assert.Equal(t, "Ana", agents[0].Name)
	assert.Equal(t, "Bruno", agents[1].Name)
	assert.Equal(t, "Carla", agents[2].Name)
}

func TestAgentRepositoryEmptySheet(t *testing.T) {
	repo := NewSheetAgentRepository(&fakeWorksheet{rows: [][]string{{"Nome"}}})

	agents, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, agents)
}
