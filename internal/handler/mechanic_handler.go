package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"autoshop/internal/service"
)

// MechanicHandler handles mechanic endpoints.
type MechanicHandler struct {
	svc service.MechanicService
}

// NewMechanicHandler creates a new mechanic handler.
func NewMechanicHandler(svc service.MechanicService) *MechanicHandler {
	return &MechanicHandler{svc: svc}
}

// CreateMechanicRequest represents a new mechanic.
type CreateMechanicRequest struct {
	Name      string           `json:"name" validate:"required,max=100"`
	Phone     string           `json:"phone" validate:"required,max=30"`
	Specialty string           `json:"specialty" validate:"max=100"`
	Salary    *decimal.Decimal `json:"salary" swaggertype:"number"`
}

// UpdateMechanicRequest lists the mechanic fields an admin may patch.
type UpdateMechanicRequest struct {
	Name      *string          `json:"name" validate:"omitempty,max=100"`
	Phone     *string          `json:"phone" validate:"omitempty,max=30"`
	Specialty *string          `json:"specialty" validate:"omitempty,max=100"`
	Salary    *decimal.Decimal `json:"salary" swaggertype:"number"`
}

// CreateMechanic godoc
// @Summary Create mechanic
// @Tags mechanics
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateMechanicRequest true "Mechanic"
// @Success 201 {object} MechanicResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /mechanics [post]
func (h *MechanicHandler) CreateMechanic(c echo.Context) error {
	var req CreateMechanicRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	mechanic, err := h.svc.Create(c.Request().Context(), service.MechanicInput{
		Name:      req.Name,
		Phone:     req.Phone,
		Specialty: req.Specialty,
		Salary:    req.Salary,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, newMechanicResponse(mechanic))
}

// ListMechanics godoc
// @Summary List mechanics
// @Tags mechanics
// @Produce json
// @Param page query int false "Page number"
// @Param per_page query int false "Page size (max 100)"
// @Success 200 {object} map[string]interface{}
// @Router /mechanics [get]
func (h *MechanicHandler) ListMechanics(c echo.Context) error {
	mechanics, err := h.svc.List(c.Request().Context(), pageFromQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, paginated("mechanics", mechanics, newMechanicResponse))
}

// GetMechanic godoc
// @Summary Get mechanic by id
// @Tags mechanics
// @Produce json
// @Param id path int true "Mechanic ID"
// @Success 200 {object} MechanicResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /mechanics/{id} [get]
func (h *MechanicHandler) GetMechanic(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	mechanic, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newMechanicResponse(mechanic))
}

// UpdateMechanic godoc
// @Summary Update mechanic
// @Tags mechanics
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Mechanic ID"
// @Param request body UpdateMechanicRequest true "Fields to change"
// @Success 200 {object} MechanicResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /mechanics/{id} [put]
func (h *MechanicHandler) UpdateMechanic(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req UpdateMechanicRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	mechanic, err := h.svc.Update(c.Request().Context(), id, service.MechanicPatch{
		Name:      req.Name,
		Phone:     req.Phone,
		Specialty: req.Specialty,
		Salary:    req.Salary,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newMechanicResponse(mechanic))
}

// DeleteMechanic godoc
// @Summary Delete mechanic
// @Tags mechanics
// @Produce json
// @Security BearerAuth
// @Param id path int true "Mechanic ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /mechanics/{id} [delete]
func (h *MechanicHandler) DeleteMechanic(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "mechanic deleted"})
}

// AssignTicket godoc
// @Summary Assign mechanic to a service ticket
// @Tags mechanics
// @Produce json
// @Security BearerAuth
// @Param id path int true "Mechanic ID"
// @Param ticket_id path int true "Ticket ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /mechanics/{id}/tickets/{ticket_id} [post]
func (h *MechanicHandler) AssignTicket(c echo.Context) error {
	mechanicID, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	ticketID, err := parseID(c, "ticket_id")
	if err != nil {
		return respondError(c, err)
	}
	members, err := h.svc.AssignTicket(c.Request().Context(), mechanicID, ticketID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":   "mechanic assigned",
		"ticket_id": ticketID,
		"mechanics": members,
	})
}

// MechanicTickets godoc
// @Summary List tickets a mechanic is assigned to
// @Tags mechanics
// @Produce json
// @Security BearerAuth
// @Param id path int true "Mechanic ID"
// @Success 200 {array} MechanicTicketResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /mechanics/{id}/tickets [get]
func (h *MechanicHandler) MechanicTickets(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	tickets, err := h.svc.Tickets(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]MechanicTicketResponse, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, MechanicTicketResponse{
			ID:          t.ID,
			Title:       t.Title,
			Status:      string(t.Status),
			Priority:    string(t.Priority),
			VIN:         t.VIN,
			ServiceDate: formatDate(t.ServiceDate),
		})
	}
	return c.JSON(http.StatusOK, out)
}
