package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/cargolink/internal/models"
	"github.com/example/cargolink/internal/services"
)

func TestCapabilityForActionCoversEveryAction(t *testing.T) {
	actions := []string{
		services.ActionAssign,
		services.ActionSubmitPrice,
		services.ActionApprovePrice,
		services.ActionRejectPrice,
		services.ActionPlaceOrder,
		services.ActionAdvancePaymentStage,
		services.ActionStartProcessing,
		services.ActionMarkReceivedWarehouse,
		services.ActionStartPacking,
		services.ActionFinalizePacking,
		services.ActionSendToQC,
		services.ActionPassQC,
		services.ActionRejectQC,
		services.ActionApproveShipping,
		services.ActionStartDeliveryPrep,
		services.ActionApproveDelivery,
		services.ActionMarkDelivered,
		services.ActionCancel,
	}

	for _, action := range actions {
		name, ok := CapabilityForAction(action)
		require.True(t, ok, "action %q has no capability", action)
		_, declared := capabilities[name]
		assert.True(t, declared, "action %q maps to undeclared capability %q", action, name)
	}
}

func TestCapabilityForActionSupervisorGates(t *testing.T) {
	name, ok := CapabilityForAction(services.ActionApproveDelivery)
	require.True(t, ok)
	assert.Equal(t, CapApproveDelivery, name)
	assert.True(t, capabilities[name].SupervisorOnly)
	assert.Equal(t, []string{models.TeamDelivery}, capabilities[name].Teams)

	name, ok = CapabilityForAction(services.ActionApproveShipping)
	require.True(t, ok)
	assert.Equal(t, CapApproveShipping, name)
	assert.True(t, capabilities[name].SupervisorOnly)
	assert.Equal(t, []string{models.TeamQC}, capabilities[name].Teams)
}

func actionTestApp(actor models.Actor) *fiber.App {
	app := fiber.New()
	app.Post("/orders/:id/actions/:action",
		func(c *fiber.Ctx) error {
			c.Locals(actorContextKey, actor)
			return c.Next()
		},
		RequireActionCapability(),
		func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusOK)
		})
	return app
}

func postAction(t *testing.T, app *fiber.App, action string) int {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/orders/abc/actions/"+action, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestRequireActionCapability(t *testing.T) {
	salesAgent := models.Actor{Role: models.RoleAgent, TeamCode: models.TeamSales}
	deliveryAgent := models.Actor{Role: models.RoleAgent, TeamCode: models.TeamDelivery}
	deliverySupervisor := models.Actor{Role: models.RoleSupervisor, TeamCode: models.TeamDelivery}
	admin := models.Actor{Role: models.RoleAdmin}

	tests := []struct {
		name   string
		actor  models.Actor
		action string
		want   int
	}{
		{"sales agent assigns", salesAgent, services.ActionAssign, fiber.StatusOK},
		{"sales agent cannot approve delivery", salesAgent, services.ActionApproveDelivery, fiber.StatusForbidden},
		{"delivery agent cannot approve delivery", deliveryAgent, services.ActionApproveDelivery, fiber.StatusForbidden},
		{"delivery supervisor approves delivery", deliverySupervisor, services.ActionApproveDelivery, fiber.StatusOK},
		{"delivery agent marks delivered", deliveryAgent, services.ActionMarkDelivered, fiber.StatusOK},
		{"sales agent cannot mark delivered", salesAgent, services.ActionMarkDelivered, fiber.StatusForbidden},
		{"admin holds every capability", admin, services.ActionApproveDelivery, fiber.StatusOK},
		{"unknown action is rejected", deliverySupervisor, "teleport", fiber.StatusForbidden},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := actionTestApp(tc.actor)
			assert.Equal(t, tc.want, postAction(t, app, tc.action))
		})
	}
}
