package models

import "github.com/google/uuid"

// OrderNote is a human-readable audit note appended after ledger changes and
// workflow transitions.
type OrderNote struct {
	BaseModel
	OrderID  uuid.UUID  `gorm:"type:uuid;index" json:"order_id"`
	AuthorID *uuid.UUID `gorm:"type:uuid" json:"author_id"`
	Text     string     `json:"text"`
}

// AuditEvent is a structured event appended on every transition. Meta is a
// JSON document.
type AuditEvent struct {
	BaseModel
	EntityType string     `gorm:"size:50;index" json:"entity_type"`
	EntityID   uuid.UUID  `gorm:"type:uuid;index" json:"entity_id"`
	ActorID    *uuid.UUID `gorm:"type:uuid" json:"actor_id"`
	Action     string     `gorm:"size:80" json:"action"`
	Meta       string     `gorm:"type:text" json:"meta"`
}
