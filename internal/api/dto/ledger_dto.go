package dto

import (
	"strconv"
	"strings"

	"github.com/spec-kit/event-ticketing/internal/domain"
)

// SelectedTicketType is one tier picked by the buyer. Clients send the price
// either as a number or as a string.
type SelectedTicketType struct {
	Type  string `json:"type"`
	Price any    `json:"price"`
}

// PartyInfo identifies the event a ticket was bought for.
type PartyInfo struct {
	Organizer string `json:"organizer"`
	ID        string `json:"id"`
}

// TicketData is the purchase payload stored against the buyer.
type TicketData struct {
	TicketCode          string               `json:"ticketCode"`
	SelectedTicketTypes []SelectedTicketType `json:"selectedTicketTypes"`
	PartyInfo           PartyInfo            `json:"partyInfo"`
}

// PostTicketRequest payload for POST /post-ticket.
type PostTicketRequest struct {
	TicketData TicketData `json:"ticketData"`
}

// ScanTicketRequest payload for POST /scan-tickets.
type ScanTicketRequest struct {
	TicketCode    string `json:"ticketCode"`
	OrganizerName string `json:"organizerName"`
}

// OrganizerRequest names the organizer a report or listing is for.
type OrganizerRequest struct {
	OrganizerName string `json:"organizerName"`
}

// ScanTicketResponse reports a successful redemption.
type ScanTicketResponse struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Selections converts the wire tiers to domain selections.
func (t TicketData) Selections() []domain.TicketTypeSelection {
	out := make([]domain.TicketTypeSelection, 0, len(t.SelectedTicketTypes))
	for _, sel := range t.SelectedTicketTypes {
		out = append(out, domain.TicketTypeSelection{Type: sel.Type, Price: PriceString(sel.Price)})
	}
	return out
}

// PriceString renders a JSON price as text. Absent, null and blank prices
// become the empty string.
func PriceString(v any) string {
	switch p := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(p)
	case float64:
		return strconv.FormatFloat(p, 'f', -1, 64)
	default:
		return ""
	}
}
