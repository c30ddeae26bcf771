package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/cargolink/internal/config"
	"github.com/example/cargolink/internal/handlers"
	"github.com/example/cargolink/internal/middleware"
	"github.com/example/cargolink/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	telegramService := services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat)

	auditService := services.NewAuditService(db)
	ledgerService := services.NewLedgerService(db)
	allocationService := services.NewAllocationService(db)
	paymentService := services.NewPaymentService(db, ledgerService, allocationService, auditService)
	packingService := services.NewPackingService(db, auditService)
	recheckService := services.NewRecheckService(db, auditService)
	deliveryService := services.NewDeliveryService(db, auditService)
	workflowService := services.NewWorkflowService(db, auditService, deliveryService, telegramService)

	authHandler := handlers.NewAuthHandler(db, cfg)
	orderHandler := handlers.NewOrderHandler(db, workflowService, auditService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	packingHandler := handlers.NewPackingHandler(packingService)
	recheckHandler := handlers.NewRecheckHandler(recheckService)
	deliveryHandler := handlers.NewDeliveryHandler(db, deliveryService)
	adminHandler := handlers.NewAdminHandler(db)

	api := app.Group("/api")

	// Staff auth
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)

	// Customer-facing delivery code lookup; session mechanics live outside
	// this service.
	api.Get("/customer/orders/:code/delivery-codes", deliveryHandler.CustomerDeliveryCodes)

	// Staff routes
	protected := api.Group("", middleware.AuthMiddleware(cfg))

	protected.Post("/auth/staff", authHandler.RegisterStaff)

	orders := protected.Group("/orders")
	orders.Post("/", middleware.RequireCapability(middleware.CapManageOrders), orderHandler.CreateOrder)
	orders.Get("/", orderHandler.ListOrders)
	orders.Get("/:id", orderHandler.GetOrder)
	orders.Post("/:id/actions/:action", middleware.RequireActionCapability(), orderHandler.ApplyAction)
	orders.Get("/:id/payments", paymentHandler.ListForOrder)

	payments := protected.Group("/payments")
	payments.Post("/", middleware.RequireCapability(middleware.CapManageOrders), paymentHandler.Submit)
	payments.Post("/:id/verify", middleware.RequireCapability(middleware.CapVerifyPayments), paymentHandler.Verify)
	payments.Post("/:id/reject", middleware.RequireCapability(middleware.CapVerifyPayments), paymentHandler.Reject)

	packing := protected.Group("/packing-lists", middleware.RequireCapability(middleware.CapManagePacking))
	packing.Post("/", packingHandler.CreateList)
	packing.Get("/:id", packingHandler.GetList)
	packing.Post("/:id/cartons", packingHandler.AddCarton)
	packing.Post("/:id/finalize", packingHandler.Finalize)

	lots := protected.Group("/lots")
	lots.Post("/", middleware.RequireCapability(middleware.CapRecheckLots), recheckHandler.CreateLot)
	lots.Get("/", recheckHandler.ListLots)
	lots.Get("/:id", recheckHandler.GetLot)
	lots.Post("/:id/cartons", middleware.RequireCapability(middleware.CapRecheckLots), recheckHandler.SaveCartons)
	lots.Post("/:id/receive", middleware.RequireCapability(middleware.CapReceiveLots), recheckHandler.MarkReceived)
	lots.Post("/:id/lock", middleware.RequireCapability(middleware.CapReceiveLots), recheckHandler.SetLock)

	delivery := protected.Group("/delivery")
	delivery.Get("/cartons", deliveryHandler.ListReadyCartons)
	delivery.Post("/approve", middleware.RequireCapability(middleware.CapApproveDelivery), deliveryHandler.ApproveCartons)

	protected.Get("/dashboard", middleware.RequireCapability(middleware.CapViewDashboard), adminHandler.DashboardStats)
}
