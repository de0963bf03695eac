package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketClaimed  EventType = "ticket_claimed"
	EventTicketFinished EventType = "ticket_finished"
)

// Event represents a claim-protocol event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	TicketID  string    `json:"ticket_id"`
	Agent     string    `json:"agent"`
	Timestamp time.Time `json:"timestamp"`
}
