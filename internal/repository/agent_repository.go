package repository

import (
	"context"
	"strings"

	"github.com/frigelar/esteira/internal/domain"
	"github.com/frigelar/esteira/internal/sheets"
)

// AgentRepository lists the operators allowed to log in.
type AgentRepository interface {
	List(ctx context.Context) ([]domain.Agent, error)
}

type sheetAgentRepository struct {
	ws sheets.Worksheet
}

// NewSheetAgentRepository instantiates the repository over the agents worksheet.
func NewSheetAgentRepository(ws sheets.Worksheet) AgentRepository {
	return &sheetAgentRepository{ws: ws}
}

// List returns the first column of the agents worksheet, header skipped,
// blanks dropped.
func (r *sheetAgentRepository) List(ctx context.Context) ([]domain.Agent, error) {
	values, err := r.ws.ColValues(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(values) <= 1 {
		return nil, nil
	}
	agents := make([]domain.Agent, 0, len(values)-1)
	for _, name := range values[1:] {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		agents = append(agents, domain.Agent{Name: name})
	}
	return agents, nil
}
