package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/cargolink/internal/models"
)

const otpMaxAttempts = 10

// DeliveryService issues one-time delivery codes when a supervisor approves
// cartons for handoff. Codes are stored per carton and exposed only through
// the customer-facing surface; verification at physical handoff happens
// outside this service.
type DeliveryService struct {
	db    *gorm.DB
	audit *AuditService
}

// NewDeliveryService constructs DeliveryService.
func NewDeliveryService(db *gorm.DB, audit *AuditService) *DeliveryService {
	return &DeliveryService{db: db, audit: audit}
}

// ApproveCartons issues OTP codes for the selected cartons and marks them
// ready for delivery. Every carton must currently be preparing.
func (s *DeliveryService) ApproveCartons(actor models.Actor, cartonIDs []uuid.UUID) ([]models.Carton, error) {
	if len(cartonIDs) == 0 {
		return nil, NewValidationError("at least one carton is required")
	}

	var cartons []models.Carton
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id IN ?", uuidStrings(cartonIDs)).
			Order("carton_no asc").
			Find(&cartons).Error; err != nil {
			return err
		}
		if len(cartons) != len(cartonIDs) {
			return NewNotFoundError("one or more cartons do not exist")
		}

		for i := range cartons {
			if cartons[i].BDDeliveryStatus != models.CartonDeliveryPreparing {
				return NewStateConflictError("carton %d is not preparing for delivery", cartons[i].CartonNo)
			}
		}

		for i := range cartons {
			if err := s.issueCode(tx, actor, &cartons[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cartons, nil
}

// ApproveOrderCartons issues codes for every preparing carton of an order,
// inside the caller's transaction. Called from the workflow approve-delivery
// transition.
func (s *DeliveryService) ApproveOrderCartons(tx *gorm.DB, actor models.Actor, orderID uuid.UUID) (int, error) {
	var cartons []models.Carton
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("bd_delivery_status = ? AND packing_list_id IN (?)",
			models.CartonDeliveryPreparing,
			tx.Session(&gorm.Session{NewDB: true}).
				Model(&models.PackingList{}).
				Select("id").
				Where("order_id = ?", orderID),
		).
		Order("carton_no asc").
		Find(&cartons).Error; err != nil {
		return 0, err
	}

	for i := range cartons {
		if err := s.issueCode(tx, actor, &cartons[i]); err != nil {
			return 0, err
		}
	}
	return len(cartons), nil
}

func (s *DeliveryService) issueCode(tx *gorm.DB, actor models.Actor, carton *models.Carton) error {
	code, err := s.uniqueCode(tx)
	if err != nil {
		return err
	}

	now := time.Now()
	if err := tx.Model(&models.Carton{}).
		Where("id = ?", carton.ID).
		Updates(map[string]any{
			"otp_code":           code,
			"otp_generated_at":   now,
			"bd_delivery_status": models.CartonDeliveryReady,
		}).Error; err != nil {
		return err
	}
	carton.OTPCode = code
	carton.OTPGeneratedAt = &now
	carton.BDDeliveryStatus = models.CartonDeliveryReady

	actorID := actor.ID
	return s.audit.AppendEvent(tx, "carton", carton.ID, &actorID, "delivery_approved", map[string]any{
		"carton_no": carton.CartonNo,
	})
}

// uniqueCode draws 6-digit codes until one is free among currently stored
// codes, falling back to a time-derived code after otpMaxAttempts collisions.
func (s *DeliveryService) uniqueCode(tx *gorm.DB) (string, error) {
	for attempt := 0; attempt < otpMaxAttempts; attempt++ {
		code, err := generateDeliveryCode()
		if err != nil {
			return "", err
		}

		var count int64
		if err := tx.Model(&models.Carton{}).
			Where("otp_code = ?", code).
			Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
	return fallbackDeliveryCode(time.Now().UnixNano()), nil
}

func generateDeliveryCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// fallbackDeliveryCode derives a code from a monotonic time value.
func fallbackDeliveryCode(nanos int64) string {
	return fmt.Sprintf("%06d", nanos%1000000)
}

// CustomerDeliveryCode is the customer-facing view of a ready carton. This is
// the only surface that carries the code.
type CustomerDeliveryCode struct {
	CartonID  uuid.UUID  `json:"carton_id"`
	CartonNo  int        `json:"carton_no"`
	OTPCode   string     `json:"otp_code"`
	IssuedAt  *time.Time `json:"issued_at"`
	OrderCode string     `json:"order_code"`
}

// DeliveryCodesForCustomer returns the codes for a customer's ready cartons,
// looked up by order code and the customer's phone.
func (s *DeliveryService) DeliveryCodesForCustomer(orderCode, phone string) ([]CustomerDeliveryCode, error) {
	if orderCode == "" || phone == "" {
		return nil, NewValidationError("order code and phone are required")
	}

	var order models.Order
	if err := s.db.First(&order, "code = ?", orderCode).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("order not found")
		}
		return nil, err
	}

	var customer models.Customer
	if err := s.db.First(&customer, "id = ?", order.CustomerID).Error; err != nil {
		return nil, err
	}
	if customer.Phone != phone {
		return nil, NewNotFoundError("order not found")
	}

	var cartons []models.Carton
	if err := s.db.
		Where("bd_delivery_status = ? AND packing_list_id IN (?)",
			models.CartonDeliveryReady,
			s.db.Session(&gorm.Session{NewDB: true}).
				Model(&models.PackingList{}).
				Select("id").
				Where("order_id = ?", order.ID),
		).
		Order("carton_no asc").
		Find(&cartons).Error; err != nil {
		return nil, err
	}

	codes := make([]CustomerDeliveryCode, 0, len(cartons))
	for _, carton := range cartons {
		codes = append(codes, CustomerDeliveryCode{
			CartonID:  carton.ID,
			CartonNo:  carton.CartonNo,
			OTPCode:   carton.OTPCode,
			IssuedAt:  carton.OTPGeneratedAt,
			OrderCode: order.Code,
		})
	}
	return codes, nil
}
