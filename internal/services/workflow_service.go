package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/cargolink/internal/models"
)

// WorkflowService is the entry point for every team action on an order. It
// enforces the declared transition table, performs the ownership handoff
// atomically with the status write, and appends the audit trail in the same
// transaction. Undeclared or out-of-state transitions are skipped with an
// internal diagnostic rather than surfaced to the caller.
type WorkflowService struct {
	db       *gorm.DB
	audit    *AuditService
	delivery *DeliveryService
	notifier *TelegramService
}

// NewWorkflowService constructs WorkflowService.
func NewWorkflowService(db *gorm.DB, audit *AuditService, delivery *DeliveryService, notifier *TelegramService) *WorkflowService {
	return &WorkflowService{db: db, audit: audit, delivery: delivery, notifier: notifier}
}

// TransitionInput carries the optional parameters of a workflow action.
type TransitionInput struct {
	Reason        string     `json:"reason"`
	TargetAgentID *uuid.UUID `json:"target_agent_id"`
}

// Apply runs one workflow action against an order. The returned bool reports
// whether the transition was actually applied; a declared-but-inapplicable
// action returns (order, false, nil).
func (s *WorkflowService) Apply(actor models.Actor, orderID uuid.UUID, action string, in TransitionInput) (*models.Order, bool, error) {
	var order models.Order
	applied := false

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewNotFoundError("order not found")
			}
			return err
		}

		tr, ok := findTransition(order.OrderType, order.Status, action)
		if !ok {
			log.Printf("[Workflow] skipped: order=%s type=%s status=%q action=%q not declared",
				order.Code, order.OrderType, order.Status, action)
			return nil
		}

		ownerTeam, err := s.teamCode(tx, order.CurrentTeamID)
		if err != nil {
			return err
		}
		if ownerTeam != tr.FromTeam {
			log.Printf("[Workflow] skipped: order=%s action=%q owned by team %q, stage belongs to %q",
				order.Code, action, ownerTeam, tr.FromTeam)
			return nil
		}

		if tr.Rejection && in.Reason == "" {
			return NewValidationError("a correction reason is required")
		}

		updates := map[string]any{
			"status":            tr.To,
			"status_changed_at": time.Now(),
		}

		if tr.ToTeam != "" && tr.ToTeam != ownerTeam {
			destTeam, err := s.teamIDByCode(tx, tr.ToTeam)
			if err != nil {
				return err
			}
			updates["previous_team_id"] = order.CurrentTeamID
			updates["current_team_id"] = destTeam
		}

		if tr.Rejection {
			updates["assigned_admin_user_id"] = order.LastAssignedAdminUserID
		} else {
			if order.AssignedAdminUserID != nil {
				updates["last_assigned_admin_user_id"] = order.AssignedAdminUserID
			}
			updates["assigned_admin_user_id"] = in.TargetAgentID
		}

		if err := tx.Model(&models.Order{}).
			Where("id = ?", order.ID).
			Updates(updates).Error; err != nil {
			return err
		}

		if action == ActionApproveDelivery {
			if _, err := s.delivery.ApproveOrderCartons(tx, actor, order.ID); err != nil {
				return err
			}
		}

		actorID := actor.ID
		note := fmt.Sprintf("Order moved from %q to %q", order.Status, tr.To)
		if tr.Rejection {
			note = fmt.Sprintf("Order sent back from %q to %q: %s", order.Status, tr.To, in.Reason)
		}
		if err := s.audit.AppendNote(tx, order.ID, &actorID, note); err != nil {
			return err
		}
		if err := s.audit.AppendEvent(tx, "order", order.ID, &actorID, "workflow_"+action, map[string]any{
			"from":      order.Status,
			"to":        tr.To,
			"from_team": ownerTeam,
			"to_team":   tr.ToTeam,
			"reason":    in.Reason,
		}); err != nil {
			return err
		}

		applied = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if applied {
		if err := s.db.First(&order, "id = ?", order.ID).Error; err != nil {
			return nil, false, err
		}
		if s.notifier != nil {
			go s.notifier.NotifyHandoff(order.Code, order.Status)
		}
	}

	return &order, applied, nil
}

// CreateOrderInput describes a new order converted from a customer query.
type CreateOrderInput struct {
	CustomerID  uuid.UUID
	QueryID     *uuid.UUID
	OrderType   string
	AmountTotal float64
}

var validOrderTypes = map[string]bool{
	models.OrderTypeSourcing: true,
	models.OrderTypeShipping: true,
	models.OrderTypeBoth:     true,
}

// CreateOrder opens an order in the query stage, owned by sales.
func (s *WorkflowService) CreateOrder(actor models.Actor, in CreateOrderInput) (*models.Order, error) {
	if !validOrderTypes[in.OrderType] {
		return nil, NewValidationError("unknown order type %q", in.OrderType)
	}
	if in.AmountTotal < 0 {
		return nil, NewValidationError("amount total cannot be negative")
	}

	var order models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var customer models.Customer
		if err := tx.First(&customer, "id = ?", in.CustomerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewNotFoundError("customer not found")
			}
			return err
		}

		salesTeam, err := s.teamIDByCode(tx, models.TeamSales)
		if err != nil {
			return err
		}

		order = models.Order{
			Code:            generateOrderCode(),
			CustomerID:      in.CustomerID,
			QueryID:         in.QueryID,
			OrderType:       in.OrderType,
			AmountTotal:     in.AmountTotal,
			Status:          models.OrderStatusQuery,
			PaymentStatus:   models.PaymentStatusVerifying,
			CurrentTeamID:   &salesTeam,
			StatusChangedAt: time.Now(),
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		actorID := actor.ID
		return s.audit.AppendEvent(tx, "order", order.ID, &actorID, "order_created", map[string]any{
			"code":       order.Code,
			"order_type": order.OrderType,
			"amount":     order.AmountTotal,
		})
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrder loads one order with its payments and packing lists.
func (s *WorkflowService) GetOrder(orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := s.db.Preload("Payments").
		Preload("PackingLists").
		Preload("PackingLists.Cartons").
		First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("order not found")
		}
		return nil, err
	}
	return &order, nil
}

// ListOrders returns orders filtered by status and/or owning team code.
func (s *WorkflowService) ListOrders(status, teamCode string, limit, offset int) ([]models.Order, int64, error) {
	query := s.db.Model(&models.Order{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if teamCode != "" {
		query = query.Where("current_team_id IN (?)",
			s.db.Session(&gorm.Session{NewDB: true}).
				Model(&models.Team{}).
				Select("id").
				Where("code = ?", teamCode),
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	if err := query.Order("created_at desc").
		Limit(limit).Offset(offset).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (s *WorkflowService) teamCode(tx *gorm.DB, teamID *uuid.UUID) (string, error) {
	if teamID == nil {
		return "", nil
	}
	var team models.Team
	if err := tx.First(&team, "id = ?", *teamID).Error; err != nil {
		return "", err
	}
	return team.Code, nil
}

func (s *WorkflowService) teamIDByCode(tx *gorm.DB, code string) (uuid.UUID, error) {
	var team models.Team
	if err := tx.First(&team, "code = ?", code).Error; err != nil {
		return uuid.Nil, err
	}
	return team.ID, nil
}

func generateOrderCode() string {
	return fmt.Sprintf("ORD-%s-%04d", time.Now().Format("20060102"), time.Now().UnixNano()%10000)
}
