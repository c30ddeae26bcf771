package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/cargolink/internal/middleware"
	"github.com/example/cargolink/internal/models"
	"github.com/example/cargolink/internal/services"
)

// DeliveryHandler manages delivery approval and the customer-facing code
// lookup. Staff responses never carry otp_code; the model keeps it out of
// JSON and only the customer endpoint renders it.
type DeliveryHandler struct {
	db       *gorm.DB
	delivery *services.DeliveryService
}

// NewDeliveryHandler constructs DeliveryHandler.
func NewDeliveryHandler(db *gorm.DB, delivery *services.DeliveryService) *DeliveryHandler {
	return &DeliveryHandler{db: db, delivery: delivery}
}

type approveCartonsRequest struct {
	CartonIDs []string `json:"carton_ids"`
}

// ApproveCartons issues delivery codes for the selected preparing cartons.
func (h *DeliveryHandler) ApproveCartons(c *fiber.Ctx) error {
	actor, ok := middleware.GetCurrentActor(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req approveCartonsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	cartonIDs := make([]uuid.UUID, 0, len(req.CartonIDs))
	for _, raw := range req.CartonIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid carton id")
		}
		cartonIDs = append(cartonIDs, id)
	}

	cartons, err := h.delivery.ApproveCartons(actor, cartonIDs)
	if err != nil {
		return renderError(err)
	}

	// Staff view: the serialized cartons exclude the issued codes.
	return c.JSON(fiber.Map{
		"success": true,
		"data":    cartons,
	})
}

// ListReadyCartons returns cartons awaiting handoff, without codes.
func (h *DeliveryHandler) ListReadyCartons(c *fiber.Ctx) error {
	var cartons []models.Carton
	if err := h.db.Where("bd_delivery_status = ?", models.CartonDeliveryReady).
		Order("otp_generated_at desc").
		Find(&cartons).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    cartons,
	})
}

// CustomerDeliveryCodes is the customer-facing lookup of issued codes by
// order code and phone.
func (h *DeliveryHandler) CustomerDeliveryCodes(c *fiber.Ctx) error {
	codes, err := h.delivery.DeliveryCodesForCustomer(c.Params("code"), c.Query("phone"))
	if err != nil {
		return renderError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    codes,
	})
}
