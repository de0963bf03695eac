package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/frigelar/esteira/internal/domain"
	"github.com/frigelar/esteira/internal/sheets"
)

// Column layout of the tickets worksheet (1-based, fixed by the sheet owner).
const (
	ColID           = 1
	ColDados        = 2
	ColStatus       = 3
	ColResponsavel  = 4
	ColIniciadoEm   = 5
	ColFinalizadoEm = 6
)

// ErrRowVanished reports that a ticket located during a fresh read could not
// be found again at write time. This is a store inconsistency and must reach
// the operator, never be swallowed.
var ErrRowVanished = errors.New("ticket row no longer present in worksheet")

// TicketRepository is the cell-level persistence boundary for tickets. The
// backing store has no transactions; each mutation is a locate followed by
// independent single-cell writes.
type TicketRepository interface {
	// ListAll reads the full ticket table, skipping the header row.
	ListAll(ctx context.Context) ([]domain.Ticket, error)
	// SetClaimed marks the row with the given ID as in progress.
	SetClaimed(ctx context.Context, id, agent, claimedAt string) error
	// SetFinished marks the row with the given ID as done. Responsavel is
	// left untouched.
	SetFinished(ctx context.Context, id, finishedAt string) error
}

type sheetTicketRepository struct {
	ws sheets.Worksheet
}

// NewSheetTicketRepository instantiates the repository over a worksheet.
func NewSheetTicketRepository(ws sheets.Worksheet) TicketRepository {
	return &sheetTicketRepository{ws: ws}
}

func (r *sheetTicketRepository) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	rows, err := r.ws.Rows(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if err := checkHeader(rows[0]); err != nil {
		return nil, err
	}

	tickets := make([]domain.Ticket, 0, len(rows)-1)
	for i, row := range rows[1:] {
		id := cell(row, ColID)
		if id == "" {
			continue
		}
		tickets = append(tickets, domain.Ticket{
			RowIndex:     i + 2,
			ID:           id,
			Dados:        cell(row, ColDados),
			Status:       domain.TicketStatus(cell(row, ColStatus)),
			Responsavel:  cell(row, ColResponsavel),
			IniciadoEm:   cell(row, ColIniciadoEm),
			FinalizadoEm: cell(row, ColFinalizadoEm),
		})
	}
	return tickets, nil
}

func (r *sheetTicketRepository) SetClaimed(ctx context.Context, id, agent, claimedAt string) error {
	row, err := r.locate(ctx, id)
	if err != nil {
		return err
	}
	if err := r.ws.UpdateCell(ctx, row, ColStatus, string(domain.TicketStatusEmAndamento)); err != nil {
		return fmt.Errorf("write status: %w", err)
	}
	if err := r.ws.UpdateCell(ctx, row, ColResponsavel, agent); err != nil {
		return fmt.Errorf("write responsavel: %w", err)
	}
	if err := r.ws.UpdateCell(ctx, row, ColIniciadoEm, claimedAt); err != nil {
		return fmt.Errorf("write claimed-at: %w", err)
	}
	return nil
}

func (r *sheetTicketRepository) SetFinished(ctx context.Context, id, finishedAt string) error {
	row, err := r.locate(ctx, id)
	if err != nil {
		return err
	}
	if err := r.ws.UpdateCell(ctx, row, ColStatus, string(domain.TicketStatusConcluido)); err != nil {
		return fmt.Errorf("write status: %w", err)
	}
	if err := r.ws.UpdateCell(ctx, row, ColFinalizadoEm, finishedAt); err != nil {
		return fmt.Errorf("write finished-at: %w", err)
	}
	return nil
}

// locate finds the sheet row holding the given ticket ID as a string.
func (r *sheetTicketRepository) locate(ctx context.Context, id string) (int, error) {
	row, _, err := r.ws.Find(ctx, id)
	if errors.Is(err, sheets.ErrCellNotFound) {
		return 0, fmt.Errorf("ticket %s: %w", id, ErrRowVanished)
	}
	if err != nil {
		return 0, err
	}
	return row, nil
}

func checkHeader(header []string) error {
	if cell(header, ColStatus) != "Status" || cell(header, ColResponsavel) != "Responsavel" {
		return fmt.Errorf("worksheet header missing Status/Responsavel columns: %v", header)
	}
	return nil
}

func cell(row []string, col int) string {
	if col-1 >= len(row) {
		return ""
	}
	return row[col-1]
}
