package models

import (
	"time"

	"github.com/google/uuid"
)

// PackingList groups cartons under an order at the Chinese warehouse stage.
// Carton membership is frozen once the list is finalized.
type PackingList struct {
	BaseModel
	OrderID      uuid.UUID `gorm:"type:uuid;index" json:"order_id"`
	ShippingMark string    `json:"shipping_mark"`
	TotalCartons int       `json:"total_cartons"`
	Status       string    `json:"status"`
	Cartons      []Carton  `json:"cartons,omitempty"`
}

// Carton is the atomic shippable unit. total_due is kept as
// max(bd_total_price - total_paid, 0) by the payment allocator, and
// bd_total_price is recomputed from the rechecked weight at the BD inbound
// stage. otp_code is never serialized on staff-facing responses.
type Carton struct {
	BaseModel
	PackingListID       uuid.UUID  `gorm:"type:uuid;index" json:"packing_list_id"`
	CartonNo            int        `json:"carton_no"`
	Description         string     `json:"description"`
	WeightKg            float64    `json:"weight_kg"`
	BDRecheckedWeightKg *float64   `json:"bd_rechecked_weight_kg"`
	BDRecheckStatus     string     `gorm:"index" json:"bd_recheck_status"`
	BDPricePerKg        float64    `json:"bd_price_per_kg"`
	BDTotalPrice        float64    `json:"bd_total_price"`
	TotalPaid           float64    `json:"total_paid"`
	TotalDue            float64    `json:"total_due"`
	BDPaymentStatus     string     `json:"bd_payment_status"`
	BDDeliveryStatus    string     `json:"bd_delivery_status"`
	OTPCode             string     `json:"-"`
	OTPGeneratedAt      *time.Time `json:"otp_generated_at"`
}

// ShipmentLot is a batch of cartons received and rechecked together at the
// Bangladesh inbound stage. A lot is immutable once received_bd.
type ShipmentLot struct {
	BaseModel
	LotCode      string     `gorm:"uniqueIndex" json:"lot_code"`
	BDStatus     string     `gorm:"index" json:"bd_status"`
	BDLocked     bool       `json:"bd_locked"`
	BDReceivedAt *time.Time `json:"bd_received_at"`
	Cartons      []Carton   `gorm:"many2many:lot_cartons" json:"cartons,omitempty"`
}
