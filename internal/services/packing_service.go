package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/cargolink/internal/models"
)

// PackingService manages packing lists at the Chinese warehouse: draft
// creation, carton rows, and finalization. Finalization freezes membership
// and stamps the carton numbering.
type PackingService struct {
	db    *gorm.DB
	audit *AuditService
}

// NewPackingService constructs PackingService.
func NewPackingService(db *gorm.DB, audit *AuditService) *PackingService {
	return &PackingService{db: db, audit: audit}
}

// CreateList opens a draft packing list under an order.
func (s *PackingService) CreateList(actor models.Actor, orderID uuid.UUID, shippingMark string) (*models.PackingList, error) {
	var list models.PackingList
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewNotFoundError("order not found")
			}
			return err
		}

		list = models.PackingList{
			OrderID:      orderID,
			ShippingMark: shippingMark,
			Status:       models.PackingListDraft,
		}
		if err := tx.Create(&list).Error; err != nil {
			return err
		}

		actorID := actor.ID
		return s.audit.AppendEvent(tx, "packing_list", list.ID, &actorID, "packing_list_created", map[string]any{
			"order_id":      orderID.String(),
			"shipping_mark": shippingMark,
		})
	})
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// CartonInput is one carton row added while the list is a draft.
type CartonInput struct {
	Description  string  `json:"description"`
	WeightKg     float64 `json:"weight_kg"`
	BDPricePerKg float64 `json:"bd_price_per_kg"`
}

// AddCarton appends a carton row to a draft list.
func (s *PackingService) AddCarton(actor models.Actor, listID uuid.UUID, in CartonInput) (*models.Carton, error) {
	if in.WeightKg <= 0 {
		return nil, NewValidationError("carton weight must be positive")
	}
	if in.BDPricePerKg < 0 {
		return nil, NewValidationError("price/kg cannot be negative")
	}

	var carton models.Carton
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var list models.PackingList
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&list, "id = ?", listID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewNotFoundError("packing list not found")
			}
			return err
		}
		if list.Status != models.PackingListDraft {
			return NewStateConflictError("packing list is finalized; cartons can no longer be added")
		}

		var count int64
		if err := tx.Model(&models.Carton{}).
			Where("packing_list_id = ?", listID).
			Count(&count).Error; err != nil {
			return err
		}

		carton = models.Carton{
			PackingListID:    listID,
			CartonNo:         int(count) + 1,
			Description:      in.Description,
			WeightKg:         in.WeightKg,
			BDRecheckStatus:  models.RecheckStatusPending,
			BDPricePerKg:     in.BDPricePerKg,
			BDPaymentStatus:  models.CartonPaymentPending,
			BDDeliveryStatus: models.CartonDeliveryPending,
		}
		return tx.Create(&carton).Error
	})
	if err != nil {
		return nil, err
	}
	return &carton, nil
}

// Finalize freezes a draft list: computes carton totals for priced rows, sets
// the total carton count and flips the status. Cartons on a finalized list
// are never deleted.
func (s *PackingService) Finalize(actor models.Actor, listID uuid.UUID) (*models.PackingList, error) {
	var list models.PackingList
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&list, "id = ?", listID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewNotFoundError("packing list not found")
			}
			return err
		}
		if list.Status != models.PackingListDraft {
			return NewStateConflictError("packing list is already finalized")
		}

		var cartons []models.Carton
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("packing_list_id = ?", listID).
			Order("carton_no asc").
			Find(&cartons).Error; err != nil {
			return err
		}
		if len(cartons) == 0 {
			return NewValidationError("a packing list needs at least one carton before finalizing")
		}

		for _, carton := range cartons {
			if carton.BDPricePerKg <= 0 {
				continue
			}
			total := carton.WeightKg * carton.BDPricePerKg
			if err := tx.Model(&models.Carton{}).
				Where("id = ?", carton.ID).
				Updates(map[string]any{
					"bd_total_price": total,
					"total_due":      cartonDue(total, carton.TotalPaid),
				}).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&models.PackingList{}).
			Where("id = ?", listID).
			Updates(map[string]any{
				"status":        models.PackingListFinalized,
				"total_cartons": len(cartons),
			}).Error; err != nil {
			return err
		}
		list.Status = models.PackingListFinalized
		list.TotalCartons = len(cartons)

		actorID := actor.ID
		if err := s.audit.AppendNote(tx, list.OrderID, &actorID,
			fmt.Sprintf("Packing list finalized with %d carton(s)", len(cartons))); err != nil {
			return err
		}
		return s.audit.AppendEvent(tx, "packing_list", listID, &actorID, "packing_list_finalized", map[string]any{
			"cartons": len(cartons),
		})
	})
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// GetList loads a packing list with its cartons.
func (s *PackingService) GetList(listID uuid.UUID) (*models.PackingList, error) {
	var list models.PackingList
	if err := s.db.Preload("Cartons", func(db *gorm.DB) *gorm.DB {
		return db.Order("carton_no asc")
	}).First(&list, "id = ?", listID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("packing list not found")
		}
		return nil, err
	}
	return &list, nil
}
