package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/event-ticketing/internal/api/dto"
	"github.com/spec-kit/event-ticketing/internal/domain"
	"github.com/spec-kit/event-ticketing/internal/service"
	apperrors "github.com/spec-kit/event-ticketing/pkg/util"
)

// LedgerHandler exposes ticket issuance, redemption and organizer reports.
type LedgerHandler struct {
	ledger  *service.LedgerService
	reports *service.ReportService
}

// NewLedgerHandler constructs handler.
func NewLedgerHandler(ledger *service.LedgerService, reports *service.ReportService) *LedgerHandler {
	return &LedgerHandler{ledger: ledger, reports: reports}
}

// PostTicket handles POST /post-ticket. The ticket is issued to the caller.
func (h *LedgerHandler) PostTicket(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.PostTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	data := req.TicketData
	result, err := h.ledger.Issue(c.UserContext(), service.IssueInput{
		AccountID:     principal.AccountID,
		Code:          data.TicketCode,
		OrganizerName: data.PartyInfo.Organizer,
		EventID:       data.PartyInfo.ID,
		SelectedTypes: data.Selections(),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Ticket saved successfully",
		"data":    result.Stub,
	})
}

// GetTickets handles POST /get-tickets.
func (h *LedgerHandler) GetTickets(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	stubs, err := h.ledger.ListForAccount(c.UserContext(), principal.AccountID)
	if err != nil {
		return err
	}
	if stubs == nil {
		stubs = []domain.TicketStub{}
	}
	return c.JSON(fiber.Map{"data": stubs})
}

// ScanTicket handles POST /scan-tickets.
func (h *LedgerHandler) ScanTicket(c *fiber.Ctx) error {
	var req dto.ScanTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	result, err := h.ledger.Redeem(c.UserContext(), req.TicketCode, req.OrganizerName)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": dto.ScanTicketResponse{Message: "Ticket scanned successfully", Type: result.Type},
	})
}

// TicketData handles POST /ticket-data.
func (h *LedgerHandler) TicketData(c *fiber.Ctx) error {
	var req dto.OrganizerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	summary, err := h.reports.SalesSummary(c.UserContext(), req.OrganizerName)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": summary})
}

// WeeklyPrices handles POST /get-prices.
func (h *LedgerHandler) WeeklyPrices(c *fiber.Ctx) error {
	var req dto.OrganizerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	weekly, err := h.reports.WeeklySales(c.UserContext(), req.OrganizerName)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": weekly})
}
