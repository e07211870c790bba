package domain

import "time"

// TicketType is a purchasable tier of an event listing.
type TicketType struct {
	Type  string `json:"type"`
	Price string `json:"price"`
}

// Event is a published party/event listing that tickets are sold for.
type Event struct {
	ID            string
	Name          string
	Description   string
	TicketTypes   []TicketType
	Location      string
	Date          time.Time
	Time          string
	Image         string
	OrganizerName string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
