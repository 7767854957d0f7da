package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"autoshop/internal/middleware"
	"autoshop/internal/model"
	"autoshop/internal/service"
)

// TicketHandler handles service ticket endpoints. Ownership is enforced by the service.
type TicketHandler struct {
	svc service.TicketService
}

// NewTicketHandler creates a new ticket handler.
func NewTicketHandler(svc service.TicketService) *TicketHandler {
	return &TicketHandler{svc: svc}
}

// CreateTicketRequest represents a new service ticket.
type CreateTicketRequest struct {
	Title       string `json:"title" validate:"max=200"`
	Description string `json:"description" validate:"required"`
	Status      string `json:"status" validate:"omitempty,oneof=pending open in_progress completed closed cancelled"`
	Priority    string `json:"priority" validate:"omitempty,oneof=low normal medium high urgent"`
	VIN         string `json:"vin" validate:"max=17"`
	ServiceDate *Date  `json:"service_date" swaggertype:"string" format:"date"`
	MechanicIDs []uint `json:"mechanic_ids"`
	PartIDs     []uint `json:"part_ids"`
}

// UpdateTicketRequest lists the ticket fields an owner may patch.
type UpdateTicketRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Description *string `json:"description"`
	Status      *string `json:"status" validate:"omitempty,oneof=pending open in_progress completed closed cancelled"`
	Priority    *string `json:"priority" validate:"omitempty,oneof=low normal medium high urgent"`
	VIN         *string `json:"vin" validate:"omitempty,max=17"`
	ServiceDate *Date   `json:"service_date" swaggertype:"string" format:"date"`
}

// EditTicketRequest adds and removes mechanics and parts in one call.
type EditTicketRequest struct {
	AddIDs        []uint `json:"add_ids"`
	RemoveIDs     []uint `json:"remove_ids"`
	AddPartIDs    []uint `json:"add_part_ids"`
	RemovePartIDs []uint `json:"remove_part_ids"`
}

// EditTicketResponse is the full membership after an edit.
type EditTicketResponse struct {
	Message   string           `json:"message"`
	TicketID  uint             `json:"ticket_id"`
	Mechanics []service.Member `json:"mechanics"`
	Parts     []service.Member `json:"parts"`
}

// CreateTicket godoc
// @Summary Open a service ticket
// @Tags service-tickets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTicketRequest true "Ticket"
// @Success 201 {object} TicketResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /service-tickets [post]
func (h *TicketHandler) CreateTicket(c echo.Context) error {
	var req CreateTicketRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	identity := middleware.CurrentIdentity(c)
	ticket, err := h.svc.Create(c.Request().Context(), identity.UserID, service.TicketInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      model.TicketStatus(req.Status),
		Priority:    model.TicketPriority(req.Priority),
		VIN:         req.VIN,
		ServiceDate: req.ServiceDate.TimePtr(),
		MechanicIDs: req.MechanicIDs,
		PartIDs:     req.PartIDs,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, newTicketResponse(ticket))
}

// ListTickets godoc
// @Summary List the caller's service tickets
// @Tags service-tickets
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param per_page query int false "Page size (max 100)"
// @Success 200 {object} map[string]interface{}
// @Router /service-tickets [get]
func (h *TicketHandler) ListTickets(c echo.Context) error {
	identity := middleware.CurrentIdentity(c)
	tickets, err := h.svc.List(c.Request().Context(), identity.UserID, pageFromQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, paginated("service_tickets", tickets, newTicketResponse))
}

// GetTicket godoc
// @Summary Get own service ticket
// @Tags service-tickets
// @Produce json
// @Security BearerAuth
// @Param id path int true "Ticket ID"
// @Success 200 {object} TicketResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /service-tickets/{id} [get]
func (h *TicketHandler) GetTicket(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	ticket, err := h.svc.Get(c.Request().Context(), middleware.CurrentIdentity(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newTicketResponse(ticket))
}

// UpdateTicket godoc
// @Summary Update own service ticket
// @Tags service-tickets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Ticket ID"
// @Param request body UpdateTicketRequest true "Fields to change"
// @Success 200 {object} TicketResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /service-tickets/{id} [put]
func (h *TicketHandler) UpdateTicket(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req UpdateTicketRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	patch := service.TicketPatch{
		Title:       req.Title,
		Description: req.Description,
		VIN:         req.VIN,
		ServiceDate: req.ServiceDate.TimePtr(),
	}
	if req.Status != nil {
		status := model.TicketStatus(*req.Status)
		patch.Status = &status
	}
	if req.Priority != nil {
		priority := model.TicketPriority(*req.Priority)
		patch.Priority = &priority
	}

	ticket, err := h.svc.Update(c.Request().Context(), middleware.CurrentIdentity(c), id, patch)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newTicketResponse(ticket))
}

// DeleteTicket godoc
// @Summary Delete own service ticket
// @Tags service-tickets
// @Security BearerAuth
// @Param id path int true "Ticket ID"
// @Success 204
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /service-tickets/{id} [delete]
func (h *TicketHandler) DeleteTicket(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.svc.Delete(c.Request().Context(), middleware.CurrentIdentity(c), id); err != nil {
		return respondError(c, err)
	}
	return noContent(c)
}

// EditTicket godoc
// @Summary Add and remove mechanics and parts on own ticket
// @Tags service-tickets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Ticket ID"
// @Param request body EditTicketRequest true "Membership changes"
// @Success 200 {object} EditTicketResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /service-tickets/{id}/edit [put]
func (h *TicketHandler) EditTicket(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req EditTicketRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	result, err := h.svc.EditAssociations(c.Request().Context(), middleware.CurrentIdentity(c), id, service.AssociationEdit{
		Mechanics: service.MembershipChange{Add: req.AddIDs, Remove: req.RemoveIDs},
		Parts:     service.MembershipChange{Add: req.AddPartIDs, Remove: req.RemovePartIDs},
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, EditTicketResponse{
		Message:   "ticket updated",
		TicketID:  result.TicketID,
		Mechanics: result.Mechanics,
		Parts:     result.Parts,
	})
}
