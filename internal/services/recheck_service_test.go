package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/cargolink/internal/models"
)

func TestCanEditLot(t *testing.T) {
	agent := models.Actor{Role: models.RoleAgent, TeamCode: models.TeamBDInbound}
	supervisor := models.Actor{Role: models.RoleSupervisor, TeamCode: models.TeamBDInbound}
	admin := models.Actor{Role: models.RoleAdmin}

	tests := []struct {
		name  string
		actor models.Actor
		lot   models.ShipmentLot
		want  bool
	}{
		{"agent on pending unlocked", agent, models.ShipmentLot{BDStatus: models.LotStatusPending}, true},
		{"agent on pending locked", agent, models.ShipmentLot{BDStatus: models.LotStatusPending, BDLocked: true}, false},
		{"agent on ready_for_review", agent, models.ShipmentLot{BDStatus: models.LotStatusReadyForReview}, false},
		{"supervisor on locked lot", supervisor, models.ShipmentLot{BDStatus: models.LotStatusPending, BDLocked: true}, true},
		{"supervisor on ready_for_review", supervisor, models.ShipmentLot{BDStatus: models.LotStatusReadyForReview}, true},
		{"admin on locked ready_for_review", admin, models.ShipmentLot{BDStatus: models.LotStatusReadyForReview, BDLocked: true}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, canEditLot(tc.actor, &tc.lot))
		})
	}
}

func TestWeightDeviationExceeded(t *testing.T) {
	tests := []struct {
		name      string
		origin    float64
		rechecked float64
		want      bool
	}{
		{"no drift", 10, 10, false},
		{"exactly at threshold", 10, 11, false},
		{"just over threshold", 10, 11.01, true},
		{"under threshold", 10, 10.5, false},
		{"loss over threshold", 10, 8.5, true},
		{"loss at threshold", 10, 9, false},
		{"zero origin never exceeds", 0, 5, false},
		{"negative origin never exceeds", -1, 5, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, weightDeviationExceeded(tc.origin, tc.rechecked))
		})
	}
}

func TestCheckCartonsUnclaimed(t *testing.T) {
	assert.NoError(t, checkCartonsUnclaimed(nil))

	err := checkCartonsUnclaimed([]cartonClaim{
		{CartonID: uuid.New(), BDStatus: models.LotStatusPending},
	})
	require.Error(t, err)
	de, ok := AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, ErrKindValidation, de.Kind)

	// A received lot claims its cartons permanently.
	err = checkCartonsUnclaimed([]cartonClaim{
		{CartonID: uuid.New(), BDStatus: models.LotStatusReceivedBD},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 carton(s) already belong to a lot")
}

func TestDeriveLotReadiness(t *testing.T) {
	tests := []struct {
		name    string
		status  string
		pending int64
		want    string
		changed bool
	}{
		{"cartons still pending", models.LotStatusPending, 1, models.LotStatusPending, false},
		{"last pending cleared", models.LotStatusPending, 0, models.LotStatusReadyForReview, true},
		{"already ready stays put", models.LotStatusReadyForReview, 0, models.LotStatusReadyForReview, false},
		{"readiness never advances to received", models.LotStatusReceivedBD, 0, models.LotStatusReceivedBD, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, changed := deriveLotReadiness(tc.status, tc.pending)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.changed, changed)
		})
	}
}

// Three cartons rechecked across two saves: the first clears two, the lot
// stays pending; the save clearing the last carton flips it in the same call.
func TestLotReadinessFlipsWithLastCarton(t *testing.T) {
	status, changed := deriveLotReadiness(models.LotStatusPending, 1)
	require.False(t, changed)
	require.Equal(t, models.LotStatusPending, status)

	status, changed = deriveLotReadiness(status, 0)
	require.True(t, changed)
	assert.Equal(t, models.LotStatusReadyForReview, status)
}

func TestRecheckTotal(t *testing.T) {
	weight := 12.5

	total, ok := recheckTotal(&weight, 4)
	require.True(t, ok)
	assert.InDelta(t, 50.0, total, 1e-9)

	// A price supplied on its own recomputes against the stored weight.
	total, ok = recheckTotal(&weight, 2)
	require.True(t, ok)
	assert.InDelta(t, 25.0, total, 1e-9)

	_, ok = recheckTotal(nil, 4)
	assert.False(t, ok)

	_, ok = recheckTotal(&weight, 0)
	assert.False(t, ok)
}

func TestGenerateLotCodeFormat(t *testing.T) {
	code := generateLotCode()
	assert.Regexp(t, `^LOT-\d{8}-\d{4}$`, code)
}
