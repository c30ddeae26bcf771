package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/cargolink/internal/middleware"
	"github.com/example/cargolink/internal/models"
	"github.com/example/cargolink/internal/services"
	"github.com/example/cargolink/internal/utils"
)

// OrderHandler manages order and workflow endpoints.
type OrderHandler struct {
	db       *gorm.DB
	workflow *services.WorkflowService
	audit    *services.AuditService
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(db *gorm.DB, workflow *services.WorkflowService, audit *services.AuditService) *OrderHandler {
	return &OrderHandler{db: db, workflow: workflow, audit: audit}
}

type createOrderRequest struct {
	CustomerID    string  `json:"customer_id"`
	CustomerName  string  `json:"customer_name"`
	CustomerPhone string  `json:"customer_phone"`
	QueryID       string  `json:"query_id"`
	OrderType     string  `json:"order_type"`
	AmountTotal   float64 `json:"amount_total"`
}

// CreateOrder converts a customer query into an order owned by sales. An
// unknown customer phone creates the customer record on the fly.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	actor, ok := middleware.GetCurrentActor(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	customerID, err := h.resolveCustomer(req)
	if err != nil {
		return err
	}

	in := services.CreateOrderInput{
		CustomerID:  customerID,
		OrderType:   req.OrderType,
		AmountTotal: req.AmountTotal,
	}
	if req.QueryID != "" {
		if id, err := uuid.Parse(req.QueryID); err == nil {
			in.QueryID = &id
		}
	}

	order, err := h.workflow.CreateOrder(actor, in)
	if err != nil {
		return renderError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    order,
	})
}

func (h *OrderHandler) resolveCustomer(req createOrderRequest) (uuid.UUID, error) {
	if req.CustomerID != "" {
		id, err := uuid.Parse(req.CustomerID)
		if err != nil {
			return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid customer id")
		}
		return id, nil
	}

	if req.CustomerPhone == "" {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "customer_id or customer_phone is required")
	}

	var customer models.Customer
	err := h.db.First(&customer, "phone = ?", req.CustomerPhone).Error
	if err == nil {
		return customer.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, err
	}

	customer = models.Customer{FirstName: req.CustomerName, Phone: req.CustomerPhone}
	if err := h.db.Create(&customer).Error; err != nil {
		return uuid.Nil, err
	}
	return customer.ID, nil
}

// ListOrders returns orders filtered by status and/or team.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)

	orders, total, err := h.workflow.ListOrders(c.Query("status"), c.Query("team"), pg.Limit, pg.Offset)
	if err != nil {
		return renderError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetOrder returns one order with payments, packing lists and notes.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	order, err := h.workflow.GetOrder(id)
	if err != nil {
		return renderError(err)
	}

	notes, err := h.audit.ListNotes(id)
	if err != nil {
		return renderError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    order,
		"notes":   notes,
	})
}

// ApplyAction runs one workflow action against an order. An inapplicable
// action is reported as applied=false with the order unchanged.
func (h *OrderHandler) ApplyAction(c *fiber.Ctx) error {
	actor, ok := middleware.GetCurrentActor(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var in services.TransitionInput
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
	}

	order, applied, err := h.workflow.Apply(actor, id, c.Params("action"), in)
	if err != nil {
		return renderError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"applied": applied,
		"data":    order,
	})
}
