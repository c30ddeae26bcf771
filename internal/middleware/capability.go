package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/cargolink/internal/models"
	"github.com/example/cargolink/internal/services"
)

// Capability names a staff action a route requires. The mapping below is the
// authorization collaborator: services behind it check state preconditions
// only, never identity.
type Capability struct {
	Teams          []string
	SupervisorOnly bool
}

// Capability names.
const (
	CapManageOrders    = "manage_orders"
	CapVerifyPayments  = "verify_payments"
	CapManagePacking   = "manage_packing"
	CapRunQC           = "run_qc"
	CapApproveShipping = "approve_shipping"
	CapRecheckLots     = "recheck_lots"
	CapReceiveLots     = "receive_lots"
	CapApproveDelivery = "approve_delivery"
	CapDeliverOrders   = "deliver_orders"
	CapViewDashboard   = "view_dashboard"
)

var capabilities = map[string]Capability{
	CapManageOrders:    {Teams: []string{models.TeamSales}},
	CapVerifyPayments:  {Teams: []string{models.TeamAccounts}},
	CapManagePacking:   {Teams: []string{models.TeamCNWarehouse}},
	CapRunQC:           {Teams: []string{models.TeamQC}},
	CapApproveShipping: {Teams: []string{models.TeamQC}, SupervisorOnly: true},
	CapRecheckLots:     {Teams: []string{models.TeamBDInbound}},
	CapReceiveLots:     {Teams: []string{models.TeamBDInbound}, SupervisorOnly: true},
	CapApproveDelivery: {Teams: []string{models.TeamDelivery}, SupervisorOnly: true},
	CapDeliverOrders:   {Teams: []string{models.TeamDelivery}},
	CapViewDashboard:   {},
}

// actionCapabilities gates the workflow action route: each declared workflow
// action maps to the capability of the team that owns its stage.
var actionCapabilities = map[string]string{
	services.ActionAssign:                CapManageOrders,
	services.ActionSubmitPrice:           CapManageOrders,
	services.ActionApprovePrice:          CapManageOrders,
	services.ActionRejectPrice:           CapManageOrders,
	services.ActionPlaceOrder:            CapManageOrders,
	services.ActionCancel:                CapManageOrders,
	services.ActionAdvancePaymentStage:   CapVerifyPayments,
	services.ActionStartProcessing:       CapVerifyPayments,
	services.ActionMarkReceivedWarehouse: CapManagePacking,
	services.ActionStartPacking:          CapManagePacking,
	services.ActionFinalizePacking:       CapManagePacking,
	services.ActionSendToQC:              CapManagePacking,
	services.ActionPassQC:                CapRunQC,
	services.ActionRejectQC:              CapRunQC,
	services.ActionApproveShipping:       CapApproveShipping,
	services.ActionStartDeliveryPrep:     CapRecheckLots,
	services.ActionApproveDelivery:       CapApproveDelivery,
	services.ActionMarkDelivered:         CapDeliverOrders,
}

// CapabilityForAction resolves the capability gating a workflow action.
func CapabilityForAction(action string) (string, bool) {
	name, ok := actionCapabilities[action]
	return name, ok
}

// RequireActionCapability gates the workflow action route by the capability
// mapped to the :action parameter. Unknown actions are rejected outright.
func RequireActionCapability() fiber.Handler {
	return func(c *fiber.Ctx) error {
		name, ok := CapabilityForAction(c.Params("action"))
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "unknown action")
		}
		return RequireCapability(name)(c)
	}
}

// RequireCapability rejects requests whose actor does not hold the named
// capability. Admins hold every capability.
func RequireCapability(name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := GetCurrentActor(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
		}

		cap, ok := capabilities[name]
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "unknown capability")
		}

		if actor.Role == models.RoleAdmin {
			return c.Next()
		}

		if cap.SupervisorOnly && !actor.IsSupervisor() {
			return fiber.NewError(fiber.StatusForbidden, "supervisor access required")
		}

		if len(cap.Teams) > 0 && !teamAllowed(cap.Teams, actor.TeamCode) {
			return fiber.NewError(fiber.StatusForbidden, "team not permitted for this action")
		}

		return c.Next()
	}
}

func teamAllowed(teams []string, code string) bool {
	for _, t := range teams {
		if t == code {
			return true
		}
	}
	return false
}
