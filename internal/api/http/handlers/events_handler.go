package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/event-ticketing/internal/api/dto"
	"github.com/spec-kit/event-ticketing/internal/service"
	apperrors "github.com/spec-kit/event-ticketing/pkg/util"
)

// EventsHandler exposes event listings.
type EventsHandler struct {
	events *service.EventService
}

// NewEventsHandler constructs handler.
func NewEventsHandler(events *service.EventService) *EventsHandler {
	return &EventsHandler{events: events}
}

// Create handles POST /create-ticket.
func (h *EventsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	date, err := dto.ParseEventDate(req.Date)
	if err != nil {
		return err
	}
	event, err := h.events.Create(c.UserContext(), service.CreateEventInput{
		Name:          req.Name,
		Description:   req.Description,
		TicketTypes:   req.Types(),
		Location:      req.Location,
		Date:          date,
		Time:          req.Time,
		Image:         req.Image,
		OrganizerName: req.Organizer,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewEventResponse(*event)})
}

// ListByOrganizer handles POST /get-user-ticket.
func (h *EventsHandler) ListByOrganizer(c *fiber.Ctx) error {
	var req dto.OrganizerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	events, err := h.events.ListByOrganizer(c.UserContext(), req.OrganizerName)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEventResponses(events)})
}

// List handles GET /all-tickets?limit=&offset=.
func (h *EventsHandler) List(c *fiber.Ctx) error {
	events, err := h.events.List(c.UserContext(), c.QueryInt("limit", 0), c.QueryInt("offset", 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEventResponses(events)})
}

// Search handles POST /search-tickets.
func (h *EventsHandler) Search(c *fiber.Ctx) error {
	var req dto.SearchRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	events, err := h.events.Search(c.UserContext(), req.Query)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEventResponses(events)})
}

// Detail handles POST /ticket-detail.
func (h *EventsHandler) Detail(c *fiber.Ctx) error {
	var req dto.EventDetailRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	event, err := h.events.Get(c.UserContext(), req.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEventResponse(*event)})
}

// ImageUploadURL handles POST /event-image-upload-url.
func (h *EventsHandler) ImageUploadURL(c *fiber.Ctx) error {
	upload, err := h.events.ImageUploadURL(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": upload})
}
