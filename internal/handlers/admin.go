package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/cargolink/internal/models"
)

// AdminHandler manages the operations dashboard.
type AdminHandler struct {
	db *gorm.DB
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db}
}

// DashboardStats returns aggregate statistics across the pipeline.
func (h *AdminHandler) DashboardStats(c *fiber.Ctx) error {
	var totalOrders int64
	if err := h.db.Model(&models.Order{}).Count(&totalOrders).Error; err != nil {
		return err
	}

	type statusCount struct {
		Status string `json:"status"`
		Count  int64  `json:"count"`
	}
	var statusCounts []statusCount
	if err := h.db.Model(&models.Order{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return err
	}

	ordersByStatus := make(map[string]int64)
	for _, sc := range statusCounts {
		ordersByStatus[sc.Status] = sc.Count
	}

	type teamCount struct {
		Code  string `json:"code"`
		Count int64  `json:"count"`
	}
	var teamCounts []teamCount
	if err := h.db.Model(&models.Order{}).
		Select("teams.code, count(*) as count").
		Joins("JOIN teams ON teams.id = orders.current_team_id").
		Group("teams.code").
		Scan(&teamCounts).Error; err != nil {
		return err
	}

	ordersByTeam := make(map[string]int64)
	for _, tc := range teamCounts {
		ordersByTeam[tc.Code] = tc.Count
	}

	var verifiedTotal float64
	if err := h.db.Model(&models.Payment{}).
		Where("status = ? AND payment_type <> ?", models.PaymentStateVerified, models.PaymentTypeWalletTopup).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&verifiedTotal).Error; err != nil {
		return err
	}

	var pendingVerification int64
	if err := h.db.Model(&models.Payment{}).
		Where("status = ?", models.PaymentStateVerifying).
		Count(&pendingVerification).Error; err != nil {
		return err
	}

	var outstandingDues float64
	if err := h.db.Model(&models.Carton{}).
		Select("COALESCE(SUM(total_due), 0)").
		Scan(&outstandingDues).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"total_orders":        totalOrders,
			"orders_by_status":    ordersByStatus,
			"orders_by_team":      ordersByTeam,
			"verified_payments":   verifiedTotal,
			"payments_in_review":  pendingVerification,
			"outstanding_bd_dues": outstandingDues,
		},
	})
}
