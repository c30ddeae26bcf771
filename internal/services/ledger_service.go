package services

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/cargolink/internal/models"
)

// amountEpsilon is the tolerance applied to every money comparison.
const amountEpsilon = 1e-9

// LedgerService recomputes an order's paid total from verified payments and
// derives its status and payment status.
type LedgerService struct {
	db *gorm.DB
}

// NewLedgerService constructs LedgerService.
func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{db: db}
}

// ReconcileResult reports the recomputed ledger figures.
type ReconcileResult struct {
	PaidSum     float64 `json:"paid_sum"`
	AmountTotal float64 `json:"amount_total"`
}

// Reconcile recomputes order.paid_amount from verified, non-wallet payments
// and derives status/payment_status. It must run inside the same transaction
// as the payment state change that triggered it; the order row is locked for
// the duration. Repeated calls with no payment changes are idempotent.
func (s *LedgerService) Reconcile(tx *gorm.DB, orderID uuid.UUID) (*ReconcileResult, error) {
	var order models.Order
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("order not found")
		}
		return nil, err
	}

	var paidSum float64
	if err := tx.Model(&models.Payment{}).
		Where("order_id = ? AND status = ? AND payment_type <> ?",
			orderID, models.PaymentStateVerified, models.PaymentTypeWalletTopup).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&paidSum).Error; err != nil {
		return nil, err
	}

	updates := map[string]any{
		"paid_amount": paidSum,
	}

	status, paymentStatus, statusChanged := deriveLedgerState(paidSum, order.AmountTotal)
	updates["payment_status"] = paymentStatus
	if statusChanged {
		updates["status"] = status
	}

	// amount_total is never written here.
	if err := tx.Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(updates).Error; err != nil {
		return nil, err
	}

	return &ReconcileResult{PaidSum: paidSum, AmountTotal: order.AmountTotal}, nil
}

// deriveLedgerState maps the recomputed paid sum onto status/payment_status.
// First match wins; when nothing is paid the order status is left alone and
// only payment_status reverts to verifying.
func deriveLedgerState(paidSum, amountTotal float64) (status, paymentStatus string, statusChanged bool) {
	switch {
	case amountTotal > amountEpsilon && paidSum >= amountTotal-amountEpsilon:
		return models.OrderStatusPaidForSourcing, models.PaymentStatusPaidForSourcing, true
	case paidSum > amountEpsilon:
		return models.OrderStatusPartiallyPaid, models.PaymentStatusPartiallyPaid, true
	default:
		return "", models.PaymentStatusVerifying, false
	}
}
