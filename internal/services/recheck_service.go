package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/cargolink/internal/models"
)

// weightDeviationLimit is the fraction beyond which a rechecked weight needs
// explicit confirmation before the save is accepted.
const weightDeviationLimit = 0.10

// RecheckService manages shipment lots at the Bangladesh inbound stage:
// grouping cartons, per-carton recheck saves with lot readiness aggregation,
// and the supervisor mark-received transition.
type RecheckService struct {
	db    *gorm.DB
	audit *AuditService
}

// NewRecheckService constructs RecheckService.
func NewRecheckService(db *gorm.DB, audit *AuditService) *RecheckService {
	return &RecheckService{db: db, audit: audit}
}

// CreateLot groups cartons from finalized packing lists into a new lot.
func (s *RecheckService) CreateLot(actor models.Actor, cartonIDs []uuid.UUID) (*models.ShipmentLot, error) {
	if len(cartonIDs) == 0 {
		return nil, NewValidationError("at least one carton is required")
	}

	var lot models.ShipmentLot
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var cartons []models.Carton
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id IN ?", uuidStrings(cartonIDs)).
			Find(&cartons).Error; err != nil {
			return err
		}
		if len(cartons) != len(cartonIDs) {
			return NewNotFoundError("one or more cartons do not exist")
		}

		for _, carton := range cartons {
			var list models.PackingList
			if err := tx.First(&list, "id = ?", carton.PackingListID).Error; err != nil {
				return err
			}
			if list.Status != models.PackingListFinalized {
				return NewValidationError("carton %d belongs to a draft packing list", carton.CartonNo)
			}
		}

		var claims []cartonClaim
		if err := tx.Table("lot_cartons").
			Select("lot_cartons.carton_id, shipment_lots.bd_status").
			Joins("JOIN shipment_lots ON shipment_lots.id = lot_cartons.shipment_lot_id").
			Where("lot_cartons.carton_id IN ?", uuidStrings(cartonIDs)).
			Scan(&claims).Error; err != nil {
			return err
		}
		if err := checkCartonsUnclaimed(claims); err != nil {
			return err
		}

		lot = models.ShipmentLot{
			LotCode:  generateLotCode(),
			BDStatus: models.LotStatusPending,
		}
		if err := tx.Create(&lot).Error; err != nil {
			return err
		}
		if err := tx.Model(&lot).Association("Cartons").Append(&cartons); err != nil {
			return err
		}

		actorID := actor.ID
		return s.audit.AppendEvent(tx, "shipment_lot", lot.ID, &actorID, "lot_created", map[string]any{
			"lot_code": lot.LotCode,
			"cartons":  len(cartons),
		})
	})
	if err != nil {
		return nil, err
	}
	return &lot, nil
}

// CartonRecheckInput is one carton's recheck save.
type CartonRecheckInput struct {
	CartonID            uuid.UUID `json:"carton_id"`
	RecheckStatus       string    `json:"recheck_status"`
	BDRecheckedWeightKg *float64  `json:"bd_rechecked_weight_kg"`
	BDPricePerKg        *float64  `json:"bd_price_per_kg"`
	ConfirmDeviation    bool      `json:"confirm_deviation"`
}

// LotRecheckResult reports the lot state after a save.
type LotRecheckResult struct {
	LotID        uuid.UUID `json:"lot_id"`
	BDStatus     string    `json:"bd_status"`
	PendingCount int64     `json:"pending_count"`
}

var validRecheckStatuses = map[string]bool{
	models.RecheckStatusPending:  true,
	models.RecheckStatusReceived: true,
	models.RecheckStatusMissing:  true,
}

// SaveCartons writes recheck results for cartons in a lot, recomputes carton
// totals and re-derives lot readiness, all in one transaction. The lot flips
// to ready_for_review in the same call that clears the last pending carton.
func (s *RecheckService) SaveCartons(actor models.Actor, lotID uuid.UUID, inputs []CartonRecheckInput) (*LotRecheckResult, error) {
	if len(inputs) == 0 {
		return nil, NewValidationError("no carton rechecks supplied")
	}

	var result LotRecheckResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var lot models.ShipmentLot
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&lot, "id = ?", lotID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewNotFoundError("shipment lot not found")
			}
			return err
		}

		if lot.BDStatus == models.LotStatusReceivedBD {
			return NewStateConflictError("lot %s has been received and is immutable", lot.LotCode)
		}
		if !canEditLot(actor, &lot) {
			return NewStateConflictError("lot %s is closed for editing", lot.LotCode)
		}

		memberIDs, err := s.lotCartonIDs(tx, lotID)
		if err != nil {
			return err
		}

		for _, in := range inputs {
			if err := s.saveCarton(tx, memberIDs, in); err != nil {
				return err
			}
		}

		pending, err := s.pendingCount(tx, lotID)
		if err != nil {
			return err
		}

		if next, changed := deriveLotReadiness(lot.BDStatus, pending); changed {
			if err := tx.Model(&models.ShipmentLot{}).
				Where("id = ?", lotID).
				Update("bd_status", next).Error; err != nil {
				return err
			}
			lot.BDStatus = next

			actorID := actor.ID
			if err := s.audit.AppendEvent(tx, "shipment_lot", lotID, &actorID, "lot_ready_for_review", map[string]any{
				"lot_code": lot.LotCode,
			}); err != nil {
				return err
			}
		}

		result = LotRecheckResult{LotID: lotID, BDStatus: lot.BDStatus, PendingCount: pending}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *RecheckService) saveCarton(tx *gorm.DB, memberIDs map[uuid.UUID]bool, in CartonRecheckInput) error {
	if !memberIDs[in.CartonID] {
		return NewValidationError("carton %s is not part of this lot", in.CartonID)
	}
	if !validRecheckStatuses[in.RecheckStatus] {
		return NewValidationError("unknown recheck status %q", in.RecheckStatus)
	}

	var carton models.Carton
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&carton, "id = ?", in.CartonID).Error; err != nil {
		return err
	}

	updates := map[string]any{
		"bd_recheck_status": in.RecheckStatus,
	}

	pricePerKg := carton.BDPricePerKg
	if in.BDPricePerKg != nil {
		if *in.BDPricePerKg <= 0 {
			return NewValidationError("price/kg must be positive for carton %d", carton.CartonNo)
		}
		pricePerKg = *in.BDPricePerKg
		updates["bd_price_per_kg"] = pricePerKg
	}

	weight := carton.BDRecheckedWeightKg
	if in.BDRecheckedWeightKg != nil {
		w := *in.BDRecheckedWeightKg
		if w < 0 {
			return NewValidationError("rechecked weight cannot be negative for carton %d", carton.CartonNo)
		}
		if weightDeviationExceeded(carton.WeightKg, w) && !in.ConfirmDeviation {
			return NewValidationError(
				"rechecked weight for carton %d deviates more than %.0f%% from the origin weight; confirm to proceed",
				carton.CartonNo, weightDeviationLimit*100)
		}
		weight = &w
		updates["bd_rechecked_weight_kg"] = w
	}

	// The stored total tracks the latest rechecked weight and price pair,
	// whichever of the two this save supplied.
	if total, ok := recheckTotal(weight, pricePerKg); ok {
		updates["bd_total_price"] = total
		updates["total_due"] = cartonDue(total, carton.TotalPaid)
	}

	return tx.Model(&models.Carton{}).Where("id = ?", carton.ID).Updates(updates).Error
}

// MarkReceived is the supervisor sign-off: all cartons rechecked, all priced,
// totals recomputed, lot frozen as received_bd. There is no un-receive.
func (s *RecheckService) MarkReceived(actor models.Actor, lotID uuid.UUID) (*models.ShipmentLot, error) {
	var lot models.ShipmentLot
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&lot, "id = ?", lotID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewNotFoundError("shipment lot not found")
			}
			return err
		}

		if lot.BDStatus == models.LotStatusReceivedBD {
			return NewStateConflictError("lot %s is already received", lot.LotCode)
		}

		pending, err := s.pendingCount(tx, lotID)
		if err != nil {
			return err
		}
		if pending > 0 {
			return NewStateConflictError("%d carton(s) are still pending recheck", pending)
		}

		var cartons []models.Carton
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id IN (?)", s.lotCartonSubquery(tx, lotID)).
			Find(&cartons).Error; err != nil {
			return err
		}

		missing := 0
		for _, carton := range cartons {
			if carton.BDPricePerKg <= 0 {
				missing++
			}
		}
		if missing > 0 {
			return NewValidationError("Price/kg is required for all cartons (missing: %d)", missing)
		}

		for _, carton := range cartons {
			weight := carton.WeightKg
			if carton.BDRecheckedWeightKg != nil {
				weight = *carton.BDRecheckedWeightKg
			}
			total := weight * carton.BDPricePerKg
			if err := tx.Model(&models.Carton{}).
				Where("id = ?", carton.ID).
				Updates(map[string]any{
					"bd_total_price": total,
					"total_due":      cartonDue(total, carton.TotalPaid),
				}).Error; err != nil {
				return err
			}
		}

		now := time.Now()
		if err := tx.Model(&models.ShipmentLot{}).
			Where("id = ?", lotID).
			Updates(map[string]any{
				"bd_status":      models.LotStatusReceivedBD,
				"bd_received_at": now,
			}).Error; err != nil {
			return err
		}
		lot.BDStatus = models.LotStatusReceivedBD
		lot.BDReceivedAt = &now

		actorID := actor.ID
		return s.audit.AppendEvent(tx, "shipment_lot", lotID, &actorID, "lot_received_bd", map[string]any{
			"lot_code": lot.LotCode,
			"cartons":  len(cartons),
		})
	})
	if err != nil {
		return nil, err
	}
	return &lot, nil
}

// SetLock flips the manual editing lock on a lot.
func (s *RecheckService) SetLock(actor models.Actor, lotID uuid.UUID, locked bool) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var lot models.ShipmentLot
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&lot, "id = ?", lotID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewNotFoundError("shipment lot not found")
			}
			return err
		}
		if lot.BDStatus == models.LotStatusReceivedBD {
			return NewStateConflictError("lot %s has been received and is immutable", lot.LotCode)
		}
		return tx.Model(&models.ShipmentLot{}).
			Where("id = ?", lotID).
			Update("bd_locked", locked).Error
	})
}

// GetLot loads a lot with its cartons and pending count.
func (s *RecheckService) GetLot(lotID uuid.UUID) (*models.ShipmentLot, int64, error) {
	var lot models.ShipmentLot
	if err := s.db.Preload("Cartons").First(&lot, "id = ?", lotID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, NewNotFoundError("shipment lot not found")
		}
		return nil, 0, err
	}
	pending, err := s.pendingCount(s.db, lotID)
	if err != nil {
		return nil, 0, err
	}
	return &lot, pending, nil
}

// ListLots returns lots newest first, optionally filtered by status.
func (s *RecheckService) ListLots(status string, limit, offset int) ([]models.ShipmentLot, int64, error) {
	query := s.db.Model(&models.ShipmentLot{})
	if status != "" {
		query = query.Where("bd_status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var lots []models.ShipmentLot
	if err := query.Order("created_at desc").
		Limit(limit).Offset(offset).
		Find(&lots).Error; err != nil {
		return nil, 0, err
	}
	return lots, total, nil
}

func (s *RecheckService) pendingCount(tx *gorm.DB, lotID uuid.UUID) (int64, error) {
	var pending int64
	err := tx.Model(&models.Carton{}).
		Where("bd_recheck_status = ? AND id IN (?)", models.RecheckStatusPending, s.lotCartonSubquery(tx, lotID)).
		Count(&pending).Error
	return pending, err
}

func (s *RecheckService) lotCartonSubquery(tx *gorm.DB, lotID uuid.UUID) *gorm.DB {
	return tx.Session(&gorm.Session{NewDB: true}).
		Table("lot_cartons").
		Select("carton_id").
		Where("shipment_lot_id = ?", lotID)
}

func (s *RecheckService) lotCartonIDs(tx *gorm.DB, lotID uuid.UUID) (map[uuid.UUID]bool, error) {
	var ids []uuid.UUID
	if err := tx.Table("lot_cartons").
		Where("shipment_lot_id = ?", lotID).
		Pluck("carton_id", &ids).Error; err != nil {
		return nil, err
	}
	members := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		members[id] = true
	}
	return members, nil
}

// canEditLot is the single editing gate: supervisors always, everyone else
// only while the lot is pending and unlocked.
func canEditLot(actor models.Actor, lot *models.ShipmentLot) bool {
	if actor.IsSupervisor() {
		return true
	}
	return lot.BDStatus == models.LotStatusPending && !lot.BDLocked
}

// cartonClaim is an existing lot membership of a carton.
type cartonClaim struct {
	CartonID uuid.UUID
	BDStatus string
}

// checkCartonsUnclaimed rejects grouping when any carton already belongs to a
// lot. Received lots claim their cartons permanently; a carton is never a
// member of two lots.
func checkCartonsUnclaimed(claims []cartonClaim) error {
	if len(claims) == 0 {
		return nil
	}
	return NewValidationError("%d carton(s) already belong to a lot", len(claims))
}

// deriveLotReadiness reports the lot status after a carton save. The flip to
// ready_for_review happens in the same call that clears the last pending
// carton, is one-way, and never advances to received_bd.
func deriveLotReadiness(currentStatus string, pending int64) (string, bool) {
	if pending == 0 && currentStatus == models.LotStatusPending {
		return models.LotStatusReadyForReview, true
	}
	return currentStatus, false
}

// recheckTotal recomputes a carton total once both a rechecked weight and a
// positive price are on record, regardless of which save supplied them.
func recheckTotal(weight *float64, pricePerKg float64) (float64, bool) {
	if weight == nil || pricePerKg <= 0 {
		return 0, false
	}
	return *weight * pricePerKg, true
}

// weightDeviationExceeded reports whether the rechecked weight drifts more
// than the confirmation threshold from the origin weight.
func weightDeviationExceeded(originWeight, recheckedWeight float64) bool {
	if originWeight <= 0 {
		return false
	}
	return math.Abs(recheckedWeight-originWeight)/originWeight > weightDeviationLimit
}

func generateLotCode() string {
	return fmt.Sprintf("LOT-%s-%04d", time.Now().Format("20060102"), time.Now().UnixNano()%10000)
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
