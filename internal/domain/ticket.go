package domain

import "time"

// TicketTypeSelection is one ticket type picked at purchase time.
type TicketTypeSelection struct {
	Type  string `json:"type"`
	Price string `json:"price,omitempty"`
}

// TicketStub is the buyer-side copy of an issued ticket. It is removed from the
// account once the ticket is redeemed.
type TicketStub struct {
	Code          string                `json:"ticket_code"`
	SelectedTypes []TicketTypeSelection `json:"selected_ticket_types"`
	EventID       string                `json:"event_id,omitempty"`
	OrganizerName string                `json:"organizer"`
	CreatedAt     time.Time             `json:"created_at"`
}

// Organizer owns the canonical ledger of tickets it sold. Name is the natural key.
type Organizer struct {
	Name      string
	Entries   []LedgerEntry
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LedgerEntry is the organizer-side record of one issued ticket. Redeemed moves
// from false to true exactly once.
type LedgerEntry struct {
	OrganizerName string
	Code          string
	Type          string
	AccountID     string
	// Price is kept as supplied; aggregation parses it leniently.
	Price      string
	CreatedAt  time.Time
	Redeemed   bool
	RedeemedAt *time.Time
}

// RedemptionResult is returned when a ticket is scanned at the door.
type RedemptionResult struct {
	Code          string
	OrganizerName string
	Type          string
	AccountID     string
	StubRemoved   bool
	RedeemedAt    time.Time
}
