package models

// Order workflow statuses. These strings are persisted verbatim; the workflow
// transition table is the only writer.
const (
	OrderStatusQuery                = "query"
	OrderStatusAssigned             = "assigned"
	OrderStatusPriceSubmitted       = "price_submitted"
	OrderStatusPriceApproved        = "price_approved"
	OrderStatusOrderPlacing         = "order_placing"
	OrderStatusPaymentStage1        = "payment_processing_stage_1"
	OrderStatusPaymentStage2        = "payment_processing_stage_2"
	OrderStatusPaymentStage3        = "payment_processing_stage_3"
	OrderStatusPaidForSourcing      = "paid_for_sourcing"
	OrderStatusPartiallyPaid        = "partially_paid"
	OrderStatusProcessing           = "processing"
	OrderStatusReceivedInWarehouse  = "product_received_in_warehouse"
	OrderStatusPackingDraft         = "packing_draft"
	OrderStatusPackingFinalized     = "packing_finalized"
	OrderStatusQCPending            = "qc_pending"
	OrderStatusQCDone               = "QC_done"
	OrderStatusReadyToShip          = "ready_to_ship"
	OrderStatusPreparingForDelivery = "preparing_for_delivery"
	OrderStatusReadyForDelivery     = "ready_for_delivery"
	OrderStatusDelivered            = "delivered"
	OrderStatusCancelled            = "cancelled"
)

// Order payment statuses as derived by the ledger reconciler.
const (
	PaymentStatusVerifying       = "verifying"
	PaymentStatusPartiallyPaid   = "partially_paid"
	PaymentStatusPaidForSourcing = "paid_for_sourcing"
)

// Order types.
const (
	OrderTypeSourcing = "sourcing"
	OrderTypeShipping = "shipping"
	OrderTypeBoth     = "both"
)

// Payment record statuses.
const (
	PaymentStateVerifying = "verifying"
	PaymentStateVerified  = "verified"
	PaymentStateRejected  = "rejected"
)

// Payment types. Wallet top-ups credit the customer wallet and never count
// toward the order ledger.
const (
	PaymentTypeDeposit     = "deposit"
	PaymentTypeBDFinal     = "bd_final"
	PaymentTypeWalletTopup = "wallet_topup"
)

// Carton recheck statuses at the BD inbound stage.
const (
	RecheckStatusPending  = "pending"
	RecheckStatusReceived = "received"
	RecheckStatusMissing  = "missing"
)

// Carton-level payment statuses.
const (
	CartonPaymentPending  = "pending"
	CartonPaymentPartial  = "partial"
	CartonPaymentVerified = "verified"
	CartonPaymentRejected = "rejected"
)

// Carton delivery statuses.
const (
	CartonDeliveryPending   = "pending"
	CartonDeliveryPreparing = "preparing"
	CartonDeliveryReady     = "ready for delivery"
	CartonDeliveryDelivered = "delivered"
)

// Shipment lot statuses.
const (
	LotStatusPending        = "pending"
	LotStatusReadyForReview = "ready_for_review"
	LotStatusReceivedBD     = "received_bd"
)

// Packing list statuses.
const (
	PackingListDraft     = "draft"
	PackingListFinalized = "finalized"
)

// Team codes.
const (
	TeamSales       = "sales"
	TeamAccounts    = "accounts"
	TeamCNWarehouse = "cn_warehouse"
	TeamQC          = "qc"
	TeamBDInbound   = "bd_inbound"
	TeamDelivery    = "delivery"
)

// Staff roles.
const (
	RoleAgent      = "agent"
	RoleSupervisor = "supervisor"
	RoleAdmin      = "admin"
)

// OrderStatuses lists every persisted workflow status.
var OrderStatuses = []string{
	OrderStatusQuery,
	OrderStatusAssigned,
	OrderStatusPriceSubmitted,
	OrderStatusPriceApproved,
	OrderStatusOrderPlacing,
	OrderStatusPaymentStage1,
	OrderStatusPaymentStage2,
	OrderStatusPaymentStage3,
	OrderStatusPaidForSourcing,
	OrderStatusPartiallyPaid,
	OrderStatusProcessing,
	OrderStatusReceivedInWarehouse,
	OrderStatusPackingDraft,
	OrderStatusPackingFinalized,
	OrderStatusQCPending,
	OrderStatusQCDone,
	OrderStatusReadyToShip,
	OrderStatusPreparingForDelivery,
	OrderStatusReadyForDelivery,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// TeamCodes lists every team in the pipeline.
var TeamCodes = []string{
	TeamSales,
	TeamAccounts,
	TeamCNWarehouse,
	TeamQC,
	TeamBDInbound,
	TeamDelivery,
}
