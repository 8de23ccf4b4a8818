package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/membership-portal/internal/api/dto"
	"github.com/spec-kit/membership-portal/internal/auth"
	"github.com/spec-kit/membership-portal/internal/domain"
	"github.com/spec-kit/membership-portal/internal/lifecycle"
	"github.com/spec-kit/membership-portal/internal/service"
	apperrors "github.com/spec-kit/membership-portal/pkg/util/errorutil"
)

// TicketsHandler manages the ticket management endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// ListTickets GET /api/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	filter, err := lifecycle.ParseFilter(c.Query("status"))
	if err != nil {
		return apperrors.NewValidationError(err.Error(), map[string]any{"status": c.Query("status")})
	}
	tickets, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0)
	for ticket := range tickets {
		items = append(items, dto.TicketFromDomain(ticket))
	}
	return c.JSON(fiber.Map{"data": items, "count": len(items)})
}

// Stats GET /api/tickets/stats.
func (h *TicketsHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.StatsFromDomain(stats)})
}

// GetTicket GET /api/tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketFromDomain(ticket)})
}

// SubmitTicket POST /api/tickets.
func (h *TicketsHandler) SubmitTicket(c *fiber.Ctx) error {
	var req dto.SubmitTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.Submit(c.UserContext(), service.TicketSubmitInput{
		TicketID: req.TicketID,
		Requester: domain.Requester{
			Name:  req.Requester.Name,
			Email: req.Requester.Email,
			Phone: req.Requester.Phone,
		},
		Subject:     req.Subject,
		Category:    req.Category,
		Description: req.Description,
		Priority:    req.Priority,
		AssignedTo:  req.AssignedTo,
		Location: domain.Location{
			Sambhag:  req.Location.Sambhag,
			District: req.Location.District,
			Block:    req.Location.Block,
		},
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.TicketFromDomain(ticket)})
}

// Transition POST /api/tickets/:id/transition.
func (h *TicketsHandler) Transition(c *fiber.Ctx) error {
	identity, err := auth.IdentityFromContext(c)
	if err != nil {
		return err
	}
	var req dto.TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status == "" {
		return apperrors.NewValidationError("status required", nil)
	}
	ticket, err := h.service.Transition(c.UserContext(), identity, c.Params("id"), req.Status, req.ResponseText)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketFromDomain(ticket)})
}

// Respond POST /api/tickets/:id/respond.
func (h *TicketsHandler) Respond(c *fiber.Ctx) error {
	identity, err := auth.IdentityFromContext(c)
	if err != nil {
		return err
	}
	var req dto.RespondRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.Respond(c.UserContext(), identity, c.Params("id"), req.Text)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketFromDomain(ticket)})
}
