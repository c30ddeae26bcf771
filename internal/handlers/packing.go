package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/cargolink/internal/middleware"
	"github.com/example/cargolink/internal/services"
)

// PackingHandler manages packing-list endpoints for the Chinese warehouse.
type PackingHandler struct {
	packing *services.PackingService
}

// NewPackingHandler constructs PackingHandler.
func NewPackingHandler(packing *services.PackingService) *PackingHandler {
	return &PackingHandler{packing: packing}
}

type createListRequest struct {
	OrderID      string `json:"order_id"`
	ShippingMark string `json:"shipping_mark"`
}

// CreateList opens a draft packing list under an order.
func (h *PackingHandler) CreateList(c *fiber.Ctx) error {
	actor, ok := middleware.GetCurrentActor(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req createListRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid order id")
	}

	list, err := h.packing.CreateList(actor, orderID, req.ShippingMark)
	if err != nil {
		return renderError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    list,
	})
}

// AddCarton appends a carton row to a draft list.
func (h *PackingHandler) AddCarton(c *fiber.Ctx) error {
	actor, ok := middleware.GetCurrentActor(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	listID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var in services.CartonInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	carton, err := h.packing.AddCarton(actor, listID, in)
	if err != nil {
		return renderError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    carton,
	})
}

// Finalize freezes a draft packing list.
func (h *PackingHandler) Finalize(c *fiber.Ctx) error {
	actor, ok := middleware.GetCurrentActor(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	listID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	list, err := h.packing.Finalize(actor, listID)
	if err != nil {
		return renderError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    list,
	})
}

// GetList returns a packing list with its cartons.
func (h *PackingHandler) GetList(c *fiber.Ctx) error {
	listID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	list, err := h.packing.GetList(listID)
	if err != nil {
		return renderError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    list,
	})
}
