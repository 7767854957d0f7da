package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"autoshop/internal/service"
)

// InventoryHandler handles parts catalog endpoints.
type InventoryHandler struct {
	svc service.InventoryService
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(svc service.InventoryService) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

// CreatePartRequest represents a new part. Price and quantity accept numbers or numeric strings.
type CreatePartRequest struct {
	Name       string           `json:"name" validate:"required,max=100"`
	PartNumber *string          `json:"part_number" validate:"omitempty,max=64"`
	Price      *decimal.Decimal `json:"price" validate:"required" swaggertype:"number"`
	Quantity   *FlexInt         `json:"quantity" swaggertype:"integer"`
}

// UpdatePartRequest lists the part fields an admin may patch.
type UpdatePartRequest struct {
	Name       *string          `json:"name" validate:"omitempty,max=100"`
	PartNumber *string          `json:"part_number" validate:"omitempty,max=64"`
	Price      *decimal.Decimal `json:"price" swaggertype:"number"`
	Quantity   *FlexInt         `json:"quantity" swaggertype:"integer"`
}

// CreatePart godoc
// @Summary Create inventory part
// @Tags inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreatePartRequest true "Part"
// @Success 201 {object} PartResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /inventory [post]
func (h *InventoryHandler) CreatePart(c echo.Context) error {
	var req CreatePartRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	part, err := h.svc.Create(c.Request().Context(), service.PartInput{
		Name:       req.Name,
		PartNumber: req.PartNumber,
		Price:      *req.Price,
		Quantity:   req.Quantity.IntPtr(),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, newPartResponse(part))
}

// ListParts godoc
// @Summary List inventory parts
// @Tags inventory
// @Produce json
// @Param page query int false "Page number"
// @Param per_page query int false "Page size (max 100)"
// @Success 200 {object} map[string]interface{}
// @Router /inventory [get]
func (h *InventoryHandler) ListParts(c echo.Context) error {
	parts, err := h.svc.List(c.Request().Context(), pageFromQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, paginated("inventory", parts, newPartResponse))
}

// GetPart godoc
// @Summary Get inventory part
// @Tags inventory
// @Produce json
// @Param id path int true "Part ID"
// @Success 200 {object} PartResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /inventory/{id} [get]
func (h *InventoryHandler) GetPart(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	part, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newPartResponse(part))
}

// UpdatePart godoc
// @Summary Update inventory part
// @Tags inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Part ID"
// @Param request body UpdatePartRequest true "Fields to change"
// @Success 200 {object} PartResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /inventory/{id} [put]
func (h *InventoryHandler) UpdatePart(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req UpdatePartRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	part, err := h.svc.Update(c.Request().Context(), id, service.PartPatch{
		Name:       req.Name,
		PartNumber: req.PartNumber,
		Price:      req.Price,
		Quantity:   req.Quantity.IntPtr(),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newPartResponse(part))
}

// DeletePart godoc
// @Summary Delete inventory part
// @Tags inventory
// @Produce json
// @Security BearerAuth
// @Param id path int true "Part ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /inventory/{id} [delete]
func (h *InventoryHandler) DeletePart(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "part deleted"})
}
