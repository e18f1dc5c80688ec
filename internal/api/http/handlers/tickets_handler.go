package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/asset-desk/internal/api/dto"
	"github.com/spec-kit/asset-desk/internal/service"
)

// TicketsHandler serves the ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	ticket, err := h.service.CreateTicket(c.UserContext(), actor, service.TicketCreateInput{
		TicketID:    req.TicketID,
		Title:       req.Title,
		Description: req.Description,
		UserID:      req.UserID,
		UserName:    req.UserName,
		Risk:        req.Risk,
		State:       req.State,
		Comment:     req.Comment,
		Images:      req.Images,
		TicketTime:  req.TicketTime.Ptr(),
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, dto.NewTicketResponse(ticket))
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	limit, skip, err := pageParams(c)
	if err != nil {
		return err
	}

	tickets, total, err := h.service.ListTickets(c.UserContext(), actor, service.TicketQuery{
		State:  queryString(c, "state"),
		Title:  queryString(c, "title"),
		UserID: queryString(c, "userId"),
		Limit:  limit,
		Skip:   skip,
	})
	if err != nil {
		return err
	}
	return respondList(c, dto.NewTicketResponses(tickets), len(tickets), total)
}

// GetTicket GET /tickets/:ticketId.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.GetTicket(c.UserContext(), actor, c.Params("ticketId"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewTicketResponse(ticket))
}

// PatchTicket PATCH /tickets/:ticketId.
func (h *TicketsHandler) PatchTicket(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.PatchTicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	ticket, err := h.service.PatchTicket(c.UserContext(), actor, c.Params("ticketId"), service.TicketPatchInput{
		Risk:    req.Risk,
		State:   req.State,
		Comment: req.Comment,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewTicketResponse(ticket))
}

// DeleteTicket DELETE /tickets/:ticketId.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	ticketID := c.Params("ticketId")
	if err := h.service.DeleteTicket(c.UserContext(), actor, ticketID); err != nil {
		return err
	}
	return respond(c, http.StatusOK, fiber.Map{"ticketId": ticketID})
}

// ListPending GET /admin/tickets/pending.
func (h *TicketsHandler) ListPending(c *fiber.Ctx) error {
	tickets, err := h.service.ListPending(c.UserContext())
	if err != nil {
		return err
	}
	return respondList(c, dto.NewTicketResponses(tickets), len(tickets), len(tickets))
}
