package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"autoshop/internal/middleware"
	"autoshop/internal/service"
)

// UserHandler bundles user HTTP handlers.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// UpdateUserRequest lists the user fields a client may patch. Other keys are ignored.
type UpdateUserRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=100"`
	Email    *string `json:"email" validate:"omitempty,email,max=150"`
	Phone    *string `json:"phone" validate:"omitempty,max=30"`
	Password *string `json:"password" validate:"omitempty,min=6"`
}

// ListUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param per_page query int false "Page size (max 100)"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.ErrorResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.svc.List(c.Request().Context(), pageFromQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, paginated("users", users, newUserResponse))
}

// GetUser godoc
// @Summary Get user by id
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} UserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	user, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newUserResponse(user))
}

// UpdateUser godoc
// @Summary Update own profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body UpdateUserRequest true "Fields to change"
// @Success 200 {object} UserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /users/{id} [put]
func (h *UserHandler) UpdateUser(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req UpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	user, err := h.svc.Update(c.Request().Context(), id, service.UserPatch{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newUserResponse(user))
}

// DeleteUser godoc
// @Summary Delete own account and every owned ticket
// @Tags users
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 204
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return noContent(c)
}

// MyTickets godoc
// @Summary List the caller's service tickets
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} TicketResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/my-tickets [get]
func (h *UserHandler) MyTickets(c echo.Context) error {
	identity := middleware.CurrentIdentity(c)
	tickets, err := h.svc.Tickets(c.Request().Context(), identity.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newTicketResponses(tickets))
}

