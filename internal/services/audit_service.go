package services

import (
	"encoding/json"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/cargolink/internal/models"
)

// AuditService appends order notes and structured audit events. Both writes
// join the caller's transaction so a rolled-back mutation leaves no trace.
type AuditService struct {
	db *gorm.DB
}

// NewAuditService constructs AuditService.
func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// AppendNote records a human-readable note against an order.
func (s *AuditService) AppendNote(tx *gorm.DB, orderID uuid.UUID, authorID *uuid.UUID, text string) error {
	note := models.OrderNote{
		OrderID:  orderID,
		AuthorID: authorID,
		Text:     text,
	}
	return tx.Create(&note).Error
}

// AppendEvent records a structured event. Meta marshalling failures fall back
// to an empty document rather than failing the parent operation.
func (s *AuditService) AppendEvent(tx *gorm.DB, entityType string, entityID uuid.UUID, actorID *uuid.UUID, action string, meta map[string]any) error {
	payload := "{}"
	if len(meta) > 0 {
		raw, err := json.Marshal(meta)
		if err != nil {
			log.Printf("[Audit] failed to marshal meta for %s/%s: %v", entityType, action, err)
		} else {
			payload = string(raw)
		}
	}

	event := models.AuditEvent{
		EntityType: entityType,
		EntityID:   entityID,
		ActorID:    actorID,
		Action:     action,
		Meta:       payload,
	}
	return tx.Create(&event).Error
}

// ListNotes returns the notes for an order, newest first.
func (s *AuditService) ListNotes(orderID uuid.UUID) ([]models.OrderNote, error) {
	var notes []models.OrderNote
	if err := s.db.Where("order_id = ?", orderID).
		Order("created_at desc").
		Find(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}
