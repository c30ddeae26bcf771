package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/cargolink/internal/models"
)

func TestFindTransitionSourcingPath(t *testing.T) {
	path := []struct {
		from   string
		action string
		to     string
	}{
		{models.OrderStatusQuery, ActionAssign, models.OrderStatusAssigned},
		{models.OrderStatusAssigned, ActionSubmitPrice, models.OrderStatusPriceSubmitted},
		{models.OrderStatusPriceSubmitted, ActionApprovePrice, models.OrderStatusPriceApproved},
		{models.OrderStatusPriceApproved, ActionPlaceOrder, models.OrderStatusOrderPlacing},
		{models.OrderStatusOrderPlacing, ActionAdvancePaymentStage, models.OrderStatusPaymentStage1},
		{models.OrderStatusPaymentStage1, ActionAdvancePaymentStage, models.OrderStatusPaymentStage2},
		{models.OrderStatusPaymentStage2, ActionAdvancePaymentStage, models.OrderStatusPaymentStage3},
		{models.OrderStatusPaidForSourcing, ActionStartProcessing, models.OrderStatusProcessing},
		{models.OrderStatusProcessing, ActionMarkReceivedWarehouse, models.OrderStatusReceivedInWarehouse},
		{models.OrderStatusReceivedInWarehouse, ActionStartPacking, models.OrderStatusPackingDraft},
		{models.OrderStatusPackingDraft, ActionFinalizePacking, models.OrderStatusPackingFinalized},
		{models.OrderStatusPackingFinalized, ActionSendToQC, models.OrderStatusQCPending},
		{models.OrderStatusQCPending, ActionPassQC, models.OrderStatusQCDone},
		{models.OrderStatusQCDone, ActionApproveShipping, models.OrderStatusReadyToShip},
		{models.OrderStatusReadyToShip, ActionStartDeliveryPrep, models.OrderStatusPreparingForDelivery},
		{models.OrderStatusPreparingForDelivery, ActionApproveDelivery, models.OrderStatusReadyForDelivery},
		{models.OrderStatusReadyForDelivery, ActionMarkDelivered, models.OrderStatusDelivered},
	}

	for _, step := range path {
		tr, ok := findTransition(models.OrderTypeSourcing, step.from, step.action)
		require.True(t, ok, "expected %s + %s to be declared", step.from, step.action)
		assert.Equal(t, step.to, tr.To)
	}
}

func TestFindTransitionUndeclaredPairs(t *testing.T) {
	undeclared := []struct {
		orderType string
		from      string
		action    string
	}{
		// Cannot skip stages.
		{models.OrderTypeSourcing, models.OrderStatusQuery, ActionMarkDelivered},
		{models.OrderTypeSourcing, models.OrderStatusAssigned, ActionApprovePrice},
		// Delivered is terminal.
		{models.OrderTypeSourcing, models.OrderStatusDelivered, ActionAssign},
		// Shipping orders have no pricing leg.
		{models.OrderTypeShipping, models.OrderStatusAssigned, ActionSubmitPrice},
		// Cancellation closes once the order leaves sourcing.
		{models.OrderTypeSourcing, models.OrderStatusProcessing, ActionCancel},
		// Unknown action.
		{models.OrderTypeSourcing, models.OrderStatusQuery, "teleport"},
	}

	for _, tc := range undeclared {
		_, ok := findTransition(tc.orderType, tc.from, tc.action)
		assert.False(t, ok, "%s/%s + %s must not be declared", tc.orderType, tc.from, tc.action)
	}
}

func TestFindTransitionShippingSkipsSourcingLeg(t *testing.T) {
	tr, ok := findTransition(models.OrderTypeShipping, models.OrderStatusAssigned, ActionPlaceOrder)
	require.True(t, ok)
	assert.Equal(t, models.OrderStatusOrderPlacing, tr.To)
	assert.Equal(t, models.TeamCNWarehouse, tr.ToTeam)

	tr, ok = findTransition(models.OrderTypeShipping, models.OrderStatusOrderPlacing, ActionMarkReceivedWarehouse)
	require.True(t, ok)
	assert.Equal(t, models.OrderStatusReceivedInWarehouse, tr.To)
}

func TestFindTransitionRejectionsDemandReason(t *testing.T) {
	tr, ok := findTransition(models.OrderTypeSourcing, models.OrderStatusPriceSubmitted, ActionRejectPrice)
	require.True(t, ok)
	assert.True(t, tr.Rejection)
	assert.Equal(t, models.OrderStatusAssigned, tr.To)

	tr, ok = findTransition(models.OrderTypeBoth, models.OrderStatusQCPending, ActionRejectQC)
	require.True(t, ok)
	assert.True(t, tr.Rejection)
	assert.Equal(t, models.OrderStatusReceivedInWarehouse, tr.To)
	assert.Equal(t, models.TeamCNWarehouse, tr.ToTeam)
}

func TestFindTransitionHandoffTeams(t *testing.T) {
	tr, ok := findTransition(models.OrderTypeBoth, models.OrderStatusPriceApproved, ActionPlaceOrder)
	require.True(t, ok)
	assert.Equal(t, models.TeamSales, tr.FromTeam)
	assert.Equal(t, models.TeamAccounts, tr.ToTeam)

	tr, ok = findTransition(models.OrderTypeBoth, models.OrderStatusQCDone, ActionApproveShipping)
	require.True(t, ok)
	assert.Equal(t, models.TeamBDInbound, tr.ToTeam)
}

func TestTransitionTableTargetsAreKnownStatuses(t *testing.T) {
	known := make(map[string]bool, len(models.OrderStatuses))
	for _, s := range models.OrderStatuses {
		known[s] = true
	}

	for key, tr := range transitionTable {
		assert.True(t, known[key.from], "unknown source status %q", key.from)
		assert.True(t, known[tr.To], "unknown destination status %q", tr.To)
	}
}
