package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Order moves through the sales → accounts → CN warehouse → QC → BD inbound →
// delivery pipeline. paid_amount is owned by the ledger reconciler and always
// equals its last computed verified sum; amount_total is never touched by
// ledger or workflow logic.
type Order struct {
	BaseModel
	Code                    string        `gorm:"uniqueIndex" json:"code"`
	QueryID                 *uuid.UUID    `gorm:"type:uuid;index" json:"query_id"`
	CustomerID              uuid.UUID     `gorm:"type:uuid;index" json:"customer_id"`
	Customer                *Customer     `json:"customer,omitempty"`
	OrderType               string        `json:"order_type"`
	AmountTotal             float64       `json:"amount_total"`
	PaidAmount              float64       `json:"paid_amount"`
	Status                  string        `gorm:"index" json:"status"`
	PaymentStatus           string        `json:"payment_status"`
	CurrentTeamID           *uuid.UUID    `gorm:"type:uuid;index" json:"current_team_id"`
	PreviousTeamID          *uuid.UUID    `gorm:"type:uuid" json:"previous_team_id"`
	AssignedAdminUserID     *uuid.UUID    `gorm:"type:uuid" json:"assigned_admin_user_id"`
	LastAssignedAdminUserID *uuid.UUID    `gorm:"type:uuid" json:"last_assigned_admin_user_id"`
	StatusChangedAt         time.Time     `json:"status_changed_at"`
	Payments                []Payment     `json:"payments,omitempty"`
	PackingLists            []PackingList `json:"packing_lists,omitempty"`
}

// Payment is a customer-submitted money record. Accounts staff flip it exactly
// once from verifying to verified or rejected.
type Payment struct {
	BaseModel
	OrderID          uuid.UUID      `gorm:"type:uuid;index" json:"order_id"`
	Amount           float64        `json:"amount"`
	PaymentType      string         `json:"payment_type"`
	Status           string         `gorm:"index" json:"status"`
	AppliedCartonIDs pq.StringArray `gorm:"type:text[]" json:"applied_carton_ids"`
	SubmittedBy      *uuid.UUID     `gorm:"type:uuid" json:"submitted_by"`
	VerifiedBy       *uuid.UUID     `gorm:"type:uuid" json:"verified_by"`
	VerifiedAt       *time.Time     `json:"verified_at"`
	RejectReason     string         `json:"reject_reason"`
	Reference        string         `json:"reference"`
}

// CartonTargets parses the explicit carton targets, skipping malformed ids.
func (p *Payment) CartonTargets() []uuid.UUID {
	if len(p.AppliedCartonIDs) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(p.AppliedCartonIDs))
	for _, raw := range p.AppliedCartonIDs {
		if id, err := uuid.Parse(raw); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}
