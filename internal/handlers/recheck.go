package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/cargolink/internal/middleware"
	"github.com/example/cargolink/internal/services"
	"github.com/example/cargolink/internal/utils"
)

// RecheckHandler manages shipment-lot endpoints for the BD inbound team.
type RecheckHandler struct {
	recheck *services.RecheckService
}

// NewRecheckHandler constructs RecheckHandler.
func NewRecheckHandler(recheck *services.RecheckService) *RecheckHandler {
	return &RecheckHandler{recheck: recheck}
}

type createLotRequest struct {
	CartonIDs []string `json:"carton_ids"`
}

// CreateLot groups cartons into a new shipment lot.
func (h *RecheckHandler) CreateLot(c *fiber.Ctx) error {
	actor, ok := middleware.GetCurrentActor(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req createLotRequest
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

	lot, err := h.recheck.CreateLot(actor, cartonIDs)
	if err != nil {
		return renderError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    lot,
	})
}

// ListLots returns lots, optionally filtered by bd_status.
func (h *RecheckHandler) ListLots(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)

	lots, total, err := h.recheck.ListLots(c.Query("status"), pg.Limit, pg.Offset)
	if err != nil {
		return renderError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    lots,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetLot returns one lot with its cartons and pending count.
func (h *RecheckHandler) GetLot(c *fiber.Ctx) error {
	lotID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	lot, pending, err := h.recheck.GetLot(lotID)
	if err != nil {
		return renderError(err)
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"data":          lot,
		"pending_count": pending,
	})
}

type saveCartonsRequest struct {
	Cartons []services.CartonRecheckInput `json:"cartons"`
}

// SaveCartons writes recheck results for cartons in a lot.
func (h *RecheckHandler) SaveCartons(c *fiber.Ctx) error {
	actor, ok := middleware.GetCurrentActor(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	lotID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req saveCartonsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.recheck.SaveCartons(actor, lotID, req.Cartons)
	if err != nil {
		return renderError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    result,
	})
}

// MarkReceived is the supervisor sign-off freezing a lot as received.
func (h *RecheckHandler) MarkReceived(c *fiber.Ctx) error {
	actor, ok := middleware.GetCurrentActor(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	lotID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	lot, err := h.recheck.MarkReceived(actor, lotID)
	if err != nil {
		return renderError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    lot,
	})
}

type setLockRequest struct {
	Locked bool `json:"locked"`
}

// SetLock flips the manual editing lock on a lot.
func (h *RecheckHandler) SetLock(c *fiber.Ctx) error {
	actor, ok := middleware.GetCurrentActor(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	lotID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req setLockRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.recheck.SetLock(actor, lotID, req.Locked); err != nil {
		return renderError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"locked":  req.Locked,
	})
}
