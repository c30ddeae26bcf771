package models

import "github.com/google/uuid"

// Wallet transaction directions.
const (
	WalletCredit = "credit"
	WalletDebit  = "debit"
)

// WalletTransaction records a customer wallet movement. Verified wallet
// top-ups land here instead of the order ledger.
type WalletTransaction struct {
	BaseModel
	CustomerID uuid.UUID  `gorm:"type:uuid;index" json:"customer_id"`
	PaymentID  *uuid.UUID `gorm:"type:uuid" json:"payment_id"`
	Direction  string     `json:"direction"`
	Amount     float64    `json:"amount"`
	Note       string     `json:"note"`
}
