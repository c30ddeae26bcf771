package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/cargolink/internal/middleware"
	"github.com/example/cargolink/internal/services"
)

// PaymentHandler manages payment submission and verification endpoints.
type PaymentHandler struct {
	payments *services.PaymentService
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(payments *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

type submitPaymentRequest struct {
	OrderID     string   `json:"order_id"`
	Amount      float64  `json:"amount"`
	PaymentType string   `json:"payment_type"`
	CartonIDs   []string `json:"carton_ids"`
	Reference   string   `json:"reference"`
}

// Submit records a customer payment for verification.
func (h *PaymentHandler) Submit(c *fiber.Ctx) error {
	actor, ok := middleware.GetCurrentActor(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req submitPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid order id")
	}

	cartonIDs := make([]uuid.UUID, 0, len(req.CartonIDs))
	for _, raw := range req.CartonIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid carton id")
		}
		cartonIDs = append(cartonIDs, id)
	}

	payment, err := h.payments.Submit(actor, services.SubmitPaymentInput{
		OrderID:     orderID,
		Amount:      req.Amount,
		PaymentType: req.PaymentType,
		CartonIDs:   cartonIDs,
		Reference:   req.Reference,
	})
	if err != nil {
		return renderError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    payment,
	})
}

// Verify marks a payment as verified and returns the reconciled ledger.
func (h *PaymentHandler) Verify(c *fiber.Ctx) error {
	actor, ok := middleware.GetCurrentActor(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	payment, ledger, err := h.payments.Verify(actor, id)
	if err != nil {
		return renderError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    payment,
		"ledger":  ledger,
	})
}

type rejectPaymentRequest struct {
	Reason string `json:"reason"`
}

// Reject marks a payment as rejected with a mandatory reason.
func (h *PaymentHandler) Reject(c *fiber.Ctx) error {
	actor, ok := middleware.GetCurrentActor(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req rejectPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	payment, ledger, err := h.payments.Reject(actor, id, req.Reason)
	if err != nil {
		return renderError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    payment,
		"ledger":  ledger,
	})
}

// ListForOrder returns the payments of an order.
func (h *PaymentHandler) ListForOrder(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	payments, err := h.payments.ListForOrder(orderID)
	if err != nil {
		return renderError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    payments,
	})
}
