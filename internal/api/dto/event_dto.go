package dto

import (
	"strings"
	"time"

	"github.com/spec-kit/event-ticketing/internal/domain"
	apperrors "github.com/spec-kit/event-ticketing/pkg/util"
)

// TicketTypeRequest is a tier offered by a new event.
type TicketTypeRequest struct {
	Type  string `json:"type"`
	Price any    `json:"price"`
}

// CreateEventRequest payload for POST /create-ticket.
type CreateEventRequest struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	TicketTypes []TicketTypeRequest `json:"ticketTypes"`
	Location    string              `json:"location"`
	Date        string              `json:"date"`
	Time        string              `json:"time"`
	Image       string              `json:"image"`
	Organizer   string              `json:"organizer"`
}

// SearchRequest payload for POST /search-tickets.
type SearchRequest struct {
	Query string `json:"query"`
}

// EventDetailRequest payload for POST /ticket-detail.
type EventDetailRequest struct {
	ID string `json:"id"`
}

// EventResponse is the public view of an event listing.
type EventResponse struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	TicketTypes []domain.TicketType `json:"ticketTypes"`
	Location    string              `json:"location"`
	Date        time.Time           `json:"date"`
	Time        string              `json:"time"`
	Image       string              `json:"image"`
	Organizer   string              `json:"organizer"`
	CreatedAt   time.Time           `json:"createdAt"`
}

// ParseEventDate accepts an RFC 3339 timestamp or a bare YYYY-MM-DD date.
func ParseEventDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, apperrors.NewValidationError("Please provide the event date", nil)
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError("Invalid event date", map[string]any{"date": raw})
	}
	return t, nil
}

// Types converts the wire tiers to domain ticket types.
func (r CreateEventRequest) Types() []domain.TicketType {
	out := make([]domain.TicketType, 0, len(r.TicketTypes))
	for _, t := range r.TicketTypes {
		out = append(out, domain.TicketType{Type: strings.TrimSpace(t.Type), Price: PriceString(t.Price)})
	}
	return out
}

// NewEventResponse maps a listing.
func NewEventResponse(e domain.Event) EventResponse {
	types := e.TicketTypes
	if types == nil {
		types = []domain.TicketType{}
	}
	return EventResponse{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		TicketTypes: types,
		Location:    e.Location,
		Date:        e.Date,
		Time:        e.Time,
		Image:       e.Image,
		Organizer:   e.OrganizerName,
		CreatedAt:   e.CreatedAt,
	}
}

// NewEventResponses maps a slice of listings.
func NewEventResponses(events []domain.Event) []EventResponse {
	out := make([]EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, NewEventResponse(e))
	}
	return out
}
