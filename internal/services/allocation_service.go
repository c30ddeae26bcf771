package services

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/cargolink/internal/models"
)

// AllocationService waterfalls a verified payment amount across a set of
// cartons' outstanding dues.
type AllocationService struct {
	db *gorm.DB
}

// NewAllocationService constructs AllocationService.
func NewAllocationService(db *gorm.DB) *AllocationService {
	return &AllocationService{db: db}
}

// CartonAllocation is the portion applied to one carton.
type CartonAllocation struct {
	CartonID     uuid.UUID `json:"carton_id"`
	Applied      float64   `json:"applied"`
	RemainingDue float64   `json:"remaining_due"`
}

// AllocationResult reports the full waterfall outcome. AppliedTotal may be
// less than the requested amount when dues run out; the caller reconciles the
// source payment against it.
type AllocationResult struct {
	AppliedTotal float64            `json:"applied_total"`
	PerCarton    []CartonAllocation `json:"per_carton"`
}

// Allocate distributes amount across the order's cartons with outstanding
// dues, optionally restricted to cartonIDs. Candidates are locked for the
// duration of the caller's transaction and consumed in carton order, so two
// concurrent verifications cannot double-allocate the same dues. A
// non-positive amount is a no-op.
func (s *AllocationService) Allocate(tx *gorm.DB, orderID uuid.UUID, amount float64, cartonIDs []uuid.UUID) (*AllocationResult, error) {
	result := &AllocationResult{PerCarton: []CartonAllocation{}}
	if amount <= amountEpsilon {
		return result, nil
	}

	query := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("packing_list_id IN (?)",
			tx.Session(&gorm.Session{NewDB: true}).
				Model(&models.PackingList{}).
				Select("id").
				Where("order_id = ?", orderID),
		)
	if len(cartonIDs) > 0 {
		query = query.Where("id IN ?", cartonIDs)
	}

	var cartons []models.Carton
	if err := query.Order("carton_no asc, id asc").Find(&cartons).Error; err != nil {
		return nil, err
	}

	steps, appliedTotal := planWaterfall(cartons, amount)
	for _, step := range steps {
		updates := map[string]any{
			"total_paid": step.NewPaid,
			"total_due":  step.NewDue,
		}
		if status, ok := deriveCartonPaymentStatus(step.NewPaid, step.NewDue); ok {
			updates["bd_payment_status"] = status
		}

		if err := tx.Model(&models.Carton{}).
			Where("id = ?", step.CartonID).
			Updates(updates).Error; err != nil {
			return nil, err
		}

		result.PerCarton = append(result.PerCarton, CartonAllocation{
			CartonID:     step.CartonID,
			Applied:      step.Applied,
			RemainingDue: step.NewDue,
		})
	}
	result.AppliedTotal = appliedTotal

	return result, nil
}

// waterfallStep is one carton's share of a planned allocation.
type waterfallStep struct {
	CartonID uuid.UUID
	Applied  float64
	NewPaid  float64
	NewDue   float64
}

// planWaterfall consumes the amount against cartons in the given order,
// skipping cartons with no outstanding due. The plan stops when the amount is
// exhausted; the applied total never exceeds either the amount or the sum of
// dues.
func planWaterfall(cartons []models.Carton, amount float64) ([]waterfallStep, float64) {
	var steps []waterfallStep
	remaining := amount
	appliedTotal := 0.0

	for _, carton := range cartons {
		if remaining <= amountEpsilon {
			break
		}

		due := cartonDue(carton.BDTotalPrice, carton.TotalPaid)
		if due <= amountEpsilon {
			continue
		}

		apply := due
		if remaining < apply {
			apply = remaining
		}

		newPaid := carton.TotalPaid + apply
		steps = append(steps, waterfallStep{
			CartonID: carton.ID,
			Applied:  apply,
			NewPaid:  newPaid,
			NewDue:   cartonDue(carton.BDTotalPrice, newPaid),
		})

		remaining -= apply
		appliedTotal += apply
	}

	return steps, appliedTotal
}

// cartonDue is the outstanding due, floored at zero.
func cartonDue(totalPrice, totalPaid float64) float64 {
	due := totalPrice - totalPaid
	if due < 0 {
		return 0
	}
	return due
}

// deriveCartonPaymentStatus maps paid/due onto the carton payment status.
// Returns ok=false when the status should be left unchanged.
func deriveCartonPaymentStatus(totalPaid, totalDue float64) (string, bool) {
	switch {
	case totalDue <= amountEpsilon:
		return models.CartonPaymentVerified, true
	case totalPaid > amountEpsilon:
		return models.CartonPaymentPartial, true
	default:
		return "", false
	}
}
