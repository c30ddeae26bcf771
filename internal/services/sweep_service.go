package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/cargolink/internal/models"
)

// SweepService is the scheduled SLA sweep: it flags orders that have sat in
// one stage beyond the configured threshold. Each order is handled in its own
// transaction under the same row-locking discipline as interactive requests,
// so the sweep never races a concurrent supervisor action.
type SweepService struct {
	db         *gorm.DB
	audit      *AuditService
	interval   time.Duration
	staleAfter time.Duration
}

// NewSweepService constructs SweepService.
func NewSweepService(db *gorm.DB, audit *AuditService, interval, staleAfter time.Duration) *SweepService {
	return &SweepService{db: db, audit: audit, interval: interval, staleAfter: staleAfter}
}

var sweepTerminalStatuses = []string{
	models.OrderStatusDelivered,
	models.OrderStatusCancelled,
}

// Start runs the sweep loop until the context is cancelled.
func (s *SweepService) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				flagged, err := s.RunOnce()
				if err != nil {
					log.Printf("[Sweep] run failed: %v", err)
				} else if flagged > 0 {
					log.Printf("[Sweep] flagged %d stalled order(s)", flagged)
				}
			}
		}
	}()
}

// RunOnce flags every stalled order exactly once per stall: an order already
// flagged since its last status change is skipped.
func (s *SweepService) RunOnce() (int, error) {
	cutoff := time.Now().Add(-s.staleAfter)

	var ids []string
	if err := s.db.Model(&models.Order{}).
		Where("status NOT IN ? AND status_changed_at < ?", sweepTerminalStatuses, cutoff).
		Pluck("id", &ids).Error; err != nil {
		return 0, err
	}

	flagged := 0
	for _, id := range ids {
		ok, err := s.flagOrder(id)
		if err != nil {
			log.Printf("[Sweep] failed to flag order %s: %v", id, err)
			continue
		}
		if ok {
			flagged++
		}
	}
	return flagged, nil
}

func (s *SweepService) flagOrder(orderID string) (bool, error) {
	flagged := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&order, "id = ?", orderID).Error; err != nil {
			return err
		}

		// Re-check under the lock; a concurrent action may have moved it.
		if order.StatusChangedAt.After(time.Now().Add(-s.staleAfter)) {
			return nil
		}

		var already int64
		if err := tx.Model(&models.AuditEvent{}).
			Where("entity_type = ? AND entity_id = ? AND action = ? AND created_at > ?",
				"order", order.ID, "sla_flagged", order.StatusChangedAt).
			Count(&already).Error; err != nil {
			return err
		}
		if already > 0 {
			return nil
		}

		idleFor := time.Since(order.StatusChangedAt).Round(time.Hour)
		if err := s.audit.AppendNote(tx, order.ID, nil,
			fmt.Sprintf("SLA alert: order has been in %q for %s", order.Status, idleFor)); err != nil {
			return err
		}
		if err := s.audit.AppendEvent(tx, "order", order.ID, nil, "sla_flagged", map[string]any{
			"status":   order.Status,
			"idle_for": idleFor.String(),
		}); err != nil {
			return err
		}

		flagged = true
		return nil
	})
	return flagged, err
}
