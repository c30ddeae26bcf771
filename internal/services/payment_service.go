package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/cargolink/internal/models"
)

// PaymentService owns the payment lifecycle: submission by sales, then a
// single verify-or-reject decision by accounts. Verification drives the
// ledger reconciler and, for carton-bound payments, the allocator, all
// inside one transaction.
type PaymentService struct {
	db        *gorm.DB
	ledger    *LedgerService
	allocator *AllocationService
	audit     *AuditService
}

// NewPaymentService constructs PaymentService.
func NewPaymentService(db *gorm.DB, ledger *LedgerService, allocator *AllocationService, audit *AuditService) *PaymentService {
	return &PaymentService{db: db, ledger: ledger, allocator: allocator, audit: audit}
}

// SubmitPaymentInput describes a customer payment recorded by staff.
type SubmitPaymentInput struct {
	OrderID     uuid.UUID
	Amount      float64
	PaymentType string
	CartonIDs   []uuid.UUID
	Reference   string
}

var knownPaymentTypes = map[string]bool{
	models.PaymentTypeDeposit:     true,
	models.PaymentTypeBDFinal:     true,
	models.PaymentTypeWalletTopup: true,
}

// Submit records a new payment in verifying status.
func (s *PaymentService) Submit(actor models.Actor, in SubmitPaymentInput) (*models.Payment, error) {
	if in.Amount <= amountEpsilon {
		return nil, NewValidationError("payment amount must be positive")
	}
	if !knownPaymentTypes[in.PaymentType] {
		return nil, NewValidationError("unknown payment type %q", in.PaymentType)
	}

	var payment models.Payment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, "id = ?", in.OrderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewNotFoundError("order not found")
			}
			return err
		}

		applied := make(pq.StringArray, 0, len(in.CartonIDs))
		for _, id := range in.CartonIDs {
			applied = append(applied, id.String())
		}

		actorID := actor.ID
		payment = models.Payment{
			OrderID:          in.OrderID,
			Amount:           in.Amount,
			PaymentType:      in.PaymentType,
			Status:           models.PaymentStateVerifying,
			AppliedCartonIDs: applied,
			SubmittedBy:      &actorID,
			Reference:        in.Reference,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		if err := s.audit.AppendNote(tx, order.ID, &actorID,
			fmt.Sprintf("Payment of %.2f (%s) submitted for verification", in.Amount, in.PaymentType)); err != nil {
			return err
		}
		return s.audit.AppendEvent(tx, "payment", payment.ID, &actorID, "payment_submitted", map[string]any{
			"order_id": order.ID.String(),
			"amount":   in.Amount,
			"type":     in.PaymentType,
		})
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// Verify marks a verifying payment as verified, allocates carton-bound
// amounts across dues and reconciles the order ledger. Wallet top-ups credit
// the customer wallet instead of the order ledger.
func (s *PaymentService) Verify(actor models.Actor, paymentID uuid.UUID) (*models.Payment, *ReconcileResult, error) {
	var payment models.Payment
	var ledger *ReconcileResult

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&payment, "id = ?", paymentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewNotFoundError("payment not found")
			}
			return err
		}

		if payment.Status != models.PaymentStateVerifying {
			return NewStateConflictError("payment is not awaiting verification")
		}

		actorID := actor.ID
		now := time.Now()
		updates := map[string]any{
			"status":      models.PaymentStateVerified,
			"verified_by": actorID,
			"verified_at": now,
		}

		if payment.PaymentType == models.PaymentTypeWalletTopup {
			if err := s.creditWallet(tx, &payment, actorID); err != nil {
				return err
			}
		} else if cartonIDs := payment.CartonTargets(); len(cartonIDs) > 0 || payment.PaymentType == models.PaymentTypeBDFinal {
			allocation, err := s.allocator.Allocate(tx, payment.OrderID, payment.Amount, cartonIDs)
			if err != nil {
				return err
			}
			// The recorded amount shrinks to what the dues absorbed; it is
			// never inflated.
			if allocation.AppliedTotal < payment.Amount-amountEpsilon {
				updates["amount"] = allocation.AppliedTotal
				payment.Amount = allocation.AppliedTotal
			}
		}

		if err := tx.Model(&models.Payment{}).
			Where("id = ?", payment.ID).
			Updates(updates).Error; err != nil {
			return err
		}
		payment.Status = models.PaymentStateVerified
		payment.VerifiedBy = &actorID
		payment.VerifiedAt = &now

		result, err := s.ledger.Reconcile(tx, payment.OrderID)
		if err != nil {
			return err
		}
		ledger = result

		if err := s.audit.AppendNote(tx, payment.OrderID, &actorID,
			fmt.Sprintf("Payment of %.2f (%s) verified; order paid total is now %.2f",
				payment.Amount, payment.PaymentType, result.PaidSum)); err != nil {
			return err
		}
		return s.audit.AppendEvent(tx, "payment", payment.ID, &actorID, "payment_verified", map[string]any{
			"order_id": payment.OrderID.String(),
			"amount":   payment.Amount,
			"paid_sum": result.PaidSum,
		})
	})
	if err != nil {
		return nil, nil, err
	}
	return &payment, ledger, nil
}

// Reject marks a payment as rejected with a mandatory reason and reconciles
// the order ledger. Rejecting an already-verified payment removes it from the
// paid sum; carton allocations it produced are left in place.
func (s *PaymentService) Reject(actor models.Actor, paymentID uuid.UUID, reason string) (*models.Payment, *ReconcileResult, error) {
	if reason == "" {
		return nil, nil, NewValidationError("a rejection reason is required")
	}

	var payment models.Payment
	var ledger *ReconcileResult

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&payment, "id = ?", paymentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewNotFoundError("payment not found")
			}
			return err
		}

		if payment.Status == models.PaymentStateRejected {
			return NewStateConflictError("payment is already rejected")
		}

		actorID := actor.ID
		now := time.Now()
		if err := tx.Model(&models.Payment{}).
			Where("id = ?", payment.ID).
			Updates(map[string]any{
				"status":        models.PaymentStateRejected,
				"verified_by":   actorID,
				"verified_at":   now,
				"reject_reason": reason,
			}).Error; err != nil {
			return err
		}
		payment.Status = models.PaymentStateRejected
		payment.RejectReason = reason

		result, err := s.ledger.Reconcile(tx, payment.OrderID)
		if err != nil {
			return err
		}
		ledger = result

		if err := s.audit.AppendNote(tx, payment.OrderID, &actorID,
			fmt.Sprintf("Payment of %.2f (%s) rejected: %s", payment.Amount, payment.PaymentType, reason)); err != nil {
			return err
		}
		return s.audit.AppendEvent(tx, "payment", payment.ID, &actorID, "payment_rejected", map[string]any{
			"order_id": payment.OrderID.String(),
			"reason":   reason,
			"paid_sum": result.PaidSum,
		})
	})
	if err != nil {
		return nil, nil, err
	}
	return &payment, ledger, nil
}

// ListForOrder returns an order's payments, newest first.
func (s *PaymentService) ListForOrder(orderID uuid.UUID) ([]models.Payment, error) {
	var payments []models.Payment
	if err := s.db.Where("order_id = ?", orderID).
		Order("created_at desc").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func (s *PaymentService) creditWallet(tx *gorm.DB, payment *models.Payment, actorID uuid.UUID) error {
	var order models.Order
	if err := tx.First(&order, "id = ?", payment.OrderID).Error; err != nil {
		return err
	}

	paymentID := payment.ID
	wallet := models.WalletTransaction{
		CustomerID: order.CustomerID,
		PaymentID:  &paymentID,
		Direction:  models.WalletCredit,
		Amount:     payment.Amount,
		Note:       "wallet top-up verified",
	}
	return tx.Create(&wallet).Error
}
