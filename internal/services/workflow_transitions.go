package services

import "github.com/example/cargolink/internal/models"

// Workflow actions. Each (orderType, fromStatus, action) triple must appear
// in the transition table below; undeclared triples are skipped without
// mutating the order.
const (
	ActionAssign                = "assign"
	ActionSubmitPrice           = "submit_price"
	ActionApprovePrice          = "approve_price"
	ActionRejectPrice           = "reject_price"
	ActionPlaceOrder            = "place_order"
	ActionAdvancePaymentStage   = "advance_payment_stage"
	ActionStartProcessing       = "start_processing"
	ActionMarkReceivedWarehouse = "mark_received_warehouse"
	ActionStartPacking          = "start_packing"
	ActionFinalizePacking       = "finalize_packing"
	ActionSendToQC              = "send_to_qc"
	ActionPassQC                = "pass_qc"
	ActionRejectQC              = "reject_qc"
	ActionApproveShipping       = "approve_shipping"
	ActionStartDeliveryPrep     = "start_delivery_prep"
	ActionApproveDelivery       = "approve_delivery"
	ActionMarkDelivered         = "mark_delivered"
	ActionCancel                = "cancel"
)

// Transition is one declared edge of the workflow graph.
type Transition struct {
	// To is the destination status.
	To string
	// FromTeam owns the source stage; the order must currently sit with it.
	FromTeam string
	// ToTeam receives ownership. Empty keeps the current team.
	ToTeam string
	// Rejection restores the last assigned agent and demands a reason.
	Rejection bool
}

type transitionKey struct {
	orderType string
	from      string
	action    string
}

var transitionTable = map[transitionKey]Transition{}

func register(orderTypes []string, from, action string, tr Transition) {
	for _, ot := range orderTypes {
		transitionTable[transitionKey{orderType: ot, from: from, action: action}] = tr
	}
}

func init() {
	all := []string{models.OrderTypeSourcing, models.OrderTypeShipping, models.OrderTypeBoth}
	sourcing := []string{models.OrderTypeSourcing, models.OrderTypeBoth}
	shipping := []string{models.OrderTypeShipping}

	// Sales intake and pricing.
	register(all, models.OrderStatusQuery, ActionAssign,
		Transition{To: models.OrderStatusAssigned, FromTeam: models.TeamSales})
	register(sourcing, models.OrderStatusAssigned, ActionSubmitPrice,
		Transition{To: models.OrderStatusPriceSubmitted, FromTeam: models.TeamSales})
	register(sourcing, models.OrderStatusPriceSubmitted, ActionApprovePrice,
		Transition{To: models.OrderStatusPriceApproved, FromTeam: models.TeamSales})
	register(sourcing, models.OrderStatusPriceSubmitted, ActionRejectPrice,
		Transition{To: models.OrderStatusAssigned, FromTeam: models.TeamSales, Rejection: true})

	// Order placement hands the order to accounts for payment processing.
	register(sourcing, models.OrderStatusPriceApproved, ActionPlaceOrder,
		Transition{To: models.OrderStatusOrderPlacing, FromTeam: models.TeamSales, ToTeam: models.TeamAccounts})
	register(sourcing, models.OrderStatusOrderPlacing, ActionAdvancePaymentStage,
		Transition{To: models.OrderStatusPaymentStage1, FromTeam: models.TeamAccounts})
	register(sourcing, models.OrderStatusPaymentStage1, ActionAdvancePaymentStage,
		Transition{To: models.OrderStatusPaymentStage2, FromTeam: models.TeamAccounts})
	register(sourcing, models.OrderStatusPaymentStage2, ActionAdvancePaymentStage,
		Transition{To: models.OrderStatusPaymentStage3, FromTeam: models.TeamAccounts})

	// Shipping-only orders skip pricing and sourcing payment stages.
	register(shipping, models.OrderStatusAssigned, ActionPlaceOrder,
		Transition{To: models.OrderStatusOrderPlacing, FromTeam: models.TeamSales, ToTeam: models.TeamCNWarehouse})
	register(shipping, models.OrderStatusOrderPlacing, ActionMarkReceivedWarehouse,
		Transition{To: models.OrderStatusReceivedInWarehouse, FromTeam: models.TeamCNWarehouse})

	// After the ledger reconciler lands the order in a paid status, the
	// Chinese warehouse takes over the shipping leg.
	for _, paid := range []string{models.OrderStatusPaidForSourcing, models.OrderStatusPartiallyPaid} {
		register(sourcing, paid, ActionStartProcessing,
			Transition{To: models.OrderStatusProcessing, FromTeam: models.TeamAccounts, ToTeam: models.TeamCNWarehouse})
	}
	register(sourcing, models.OrderStatusProcessing, ActionMarkReceivedWarehouse,
		Transition{To: models.OrderStatusReceivedInWarehouse, FromTeam: models.TeamCNWarehouse})

	// Packing and QC.
	register(all, models.OrderStatusReceivedInWarehouse, ActionStartPacking,
		Transition{To: models.OrderStatusPackingDraft, FromTeam: models.TeamCNWarehouse})
	register(all, models.OrderStatusPackingDraft, ActionFinalizePacking,
		Transition{To: models.OrderStatusPackingFinalized, FromTeam: models.TeamCNWarehouse})
	register(all, models.OrderStatusPackingFinalized, ActionSendToQC,
		Transition{To: models.OrderStatusQCPending, FromTeam: models.TeamCNWarehouse, ToTeam: models.TeamQC})
	register(all, models.OrderStatusQCPending, ActionPassQC,
		Transition{To: models.OrderStatusQCDone, FromTeam: models.TeamQC})
	register(all, models.OrderStatusQCPending, ActionRejectQC,
		Transition{To: models.OrderStatusReceivedInWarehouse, FromTeam: models.TeamQC, ToTeam: models.TeamCNWarehouse, Rejection: true})

	// Supervisor shipping approval hands the order to BD inbound.
	register(all, models.OrderStatusQCDone, ActionApproveShipping,
		Transition{To: models.OrderStatusReadyToShip, FromTeam: models.TeamQC, ToTeam: models.TeamBDInbound})

	// Delivery leg.
	register(all, models.OrderStatusReadyToShip, ActionStartDeliveryPrep,
		Transition{To: models.OrderStatusPreparingForDelivery, FromTeam: models.TeamBDInbound, ToTeam: models.TeamDelivery})
	register(all, models.OrderStatusPreparingForDelivery, ActionApproveDelivery,
		Transition{To: models.OrderStatusReadyForDelivery, FromTeam: models.TeamDelivery})
	register(all, models.OrderStatusReadyForDelivery, ActionMarkDelivered,
		Transition{To: models.OrderStatusDelivered, FromTeam: models.TeamDelivery})

	// Cancellation is open to sales while the order has not left sourcing.
	for _, from := range []string{
		models.OrderStatusQuery,
		models.OrderStatusAssigned,
		models.OrderStatusPriceSubmitted,
		models.OrderStatusPriceApproved,
	} {
		register(all, from, ActionCancel,
			Transition{To: models.OrderStatusCancelled, FromTeam: models.TeamSales, Rejection: true})
	}
}

// findTransition looks up the declared edge for the triple. ok=false means
// the pair is undeclared and the mutation must be skipped.
func findTransition(orderType, from, action string) (Transition, bool) {
	tr, ok := transitionTable[transitionKey{orderType: orderType, from: from, action: action}]
	return tr, ok
}
