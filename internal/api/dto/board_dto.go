package dto

// Board screens, mirroring what the front-end renders.
const (
	ScreenActiveTicket = "active_ticket"
	ScreenQueue        = "queue"
	ScreenLoading      = "loading"
)

// ActiveTicketView is the agent's in-progress ticket as displayed.
type ActiveTicketView struct {
	ID         string `json:"id"`
	Dados      string `json:"dados"`
	Link       string `json:"link,omitempty"`
	IniciadoEm string `json:"iniciado_em,omitempty"`
}

// BoardResponse drives the main screen: either the active ticket or the
// queue. An empty snapshot renders as loading, never as an empty queue.
type BoardResponse struct {
	Agent            string            `json:"agent"`
	Screen           string            `json:"screen"`
	ConfirmingFinish bool              `json:"confirming_finish"`
	ActiveTicket     *ActiveTicketView `json:"active_ticket,omitempty"`
	QueueDepth       int               `json:"queue_depth"`
	FinishPolicy     string            `json:"finish_policy"`
}

// ClaimResponse reports a claim attempt. Losing the race is informational,
// not an error.
type ClaimResponse struct {
	Claimed bool              `json:"claimed"`
	Message string            `json:"message,omitempty"`
	Ticket  *ActiveTicketView `json:"ticket,omitempty"`
}

// FinishResponse reports a finish attempt.
type FinishResponse struct {
	Finished        bool   `json:"finished"`
	ConfirmRequired bool   `json:"confirm_required,omitempty"`
	AlreadyDone     bool   `json:"already_done,omitempty"`
	Message         string `json:"message,omitempty"`
	TicketID        string `json:"ticket_id,omitempty"`
	FinalizadoEm    string `json:"finalizado_em,omitempty"`
}
