package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventActivationRequested    EventType = "account_activation_requested"
	EventPasswordResetRequested EventType = "password_reset_requested"
	EventTicketIssued           EventType = "ticket_issued"
	EventTicketRedeemed         EventType = "ticket_redeemed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	AccountID string    `json:"account_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// New stamps an event with an id and the current time.
func New(eventType EventType, accountID string, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		AccountID: accountID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// ActivationRequestedPayload carries what the activation email needs.
type ActivationRequestedPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Code  string `json:"activation_code"`
}

// PasswordResetRequestedPayload payload.
type PasswordResetRequestedPayload struct {
	Email string `json:"email"`
	Token string `json:"token"`
	Code  string `json:"code"`
}

// TicketIssuedPayload payload.
type TicketIssuedPayload struct {
	Code          string `json:"ticket_code"`
	OrganizerName string `json:"organizer"`
	Type          string `json:"type"`
	Price         string `json:"price"`
	Duplicate     bool   `json:"duplicate"`
}

// TicketRedeemedPayload payload.
type TicketRedeemedPayload struct {
	Code          string `json:"ticket_code"`
	OrganizerName string `json:"organizer"`
	Type          string `json:"type"`
}
