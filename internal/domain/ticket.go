package domain

// TicketStatus enumerates lifecycle states for tickets. The values are the
// literal strings stored in the spreadsheet and must not be translated.
type TicketStatus string

const (
	TicketStatusPendente    TicketStatus = "Pendente"
	TicketStatusEmAndamento TicketStatus = "Em Andamento"
	TicketStatusConcluido   TicketStatus = "Concluido"
)

// Ticket is one row of the tickets worksheet. RowIndex is the 1-based sheet
// row the values were read from; mutation paths never trust it and re-locate
// the row by ID before writing.
type Ticket struct {
	RowIndex     int
	ID           string
	Dados        string
	Status       TicketStatus
	Responsavel  string
	IniciadoEm   string
	FinalizadoEm string
}

// Claimable reports whether the ticket is still in the pending queue.
func (t Ticket) Claimable() bool {
	return t.Status == TicketStatusPendente && t.Responsavel == ""
}

// ActiveFor reports whether the ticket is the agent's in-progress ticket.
func (t Ticket) ActiveFor(agent string) bool {
	return t.Status == TicketStatusEmAndamento && t.Responsavel == agent
}
