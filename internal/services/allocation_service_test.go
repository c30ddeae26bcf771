package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/cargolink/internal/models"
)

func carton(no int, totalPrice, totalPaid float64) models.Carton {
	return models.Carton{
		BaseModel:    models.BaseModel{ID: uuid.New()},
		CartonNo:     no,
		BDTotalPrice: totalPrice,
		TotalPaid:    totalPaid,
	}
}

func TestPlanWaterfallOrdering(t *testing.T) {
	c1 := carton(1, 30, 0)
	c2 := carton(2, 50, 0)

	steps, appliedTotal := planWaterfall([]models.Carton{c1, c2}, 40)

	require.Len(t, steps, 2)
	assert.Equal(t, 40.0, appliedTotal)

	assert.Equal(t, c1.ID, steps[0].CartonID)
	assert.Equal(t, 30.0, steps[0].Applied)
	assert.Equal(t, 0.0, steps[0].NewDue)

	assert.Equal(t, c2.ID, steps[1].CartonID)
	assert.Equal(t, 10.0, steps[1].Applied)
	assert.Equal(t, 40.0, steps[1].NewDue)
}

func TestPlanWaterfallInsufficientDues(t *testing.T) {
	cartons := []models.Carton{
		carton(1, 200, 0),
		carton(2, 300, 0),
		carton(3, 100, 100), // already settled
	}

	steps, appliedTotal := planWaterfall(cartons, 1000)

	require.Len(t, steps, 2)
	assert.Equal(t, 500.0, appliedTotal)
	assert.Equal(t, 200.0, steps[0].Applied)
	assert.Equal(t, 300.0, steps[1].Applied)
	for _, step := range steps {
		assert.Equal(t, 0.0, step.NewDue)
	}
}

func TestPlanWaterfallConservation(t *testing.T) {
	cartons := []models.Carton{
		carton(1, 120, 70),
		carton(2, 80, 0),
		carton(3, 45.5, 10),
	}
	duesTotal := 0.0
	for _, c := range cartons {
		duesTotal += cartonDue(c.BDTotalPrice, c.TotalPaid)
	}

	for _, amount := range []float64{0.01, 25, 50, duesTotal, duesTotal + 100} {
		steps, appliedTotal := planWaterfall(cartons, amount)

		sum := 0.0
		for _, step := range steps {
			assert.Greater(t, step.Applied, 0.0)
			sum += step.Applied
		}
		assert.InDelta(t, appliedTotal, sum, 1e-9)
		assert.LessOrEqual(t, appliedTotal, amount+1e-9)
		assert.LessOrEqual(t, appliedTotal, duesTotal+1e-9)
	}
}

func TestPlanWaterfallNonPositiveAmount(t *testing.T) {
	steps, appliedTotal := planWaterfall([]models.Carton{carton(1, 100, 0)}, 0)
	assert.Empty(t, steps)
	assert.Equal(t, 0.0, appliedTotal)

	steps, appliedTotal = planWaterfall([]models.Carton{carton(1, 100, 0)}, -5)
	assert.Empty(t, steps)
	assert.Equal(t, 0.0, appliedTotal)
}

func TestCartonDueFloorsAtZero(t *testing.T) {
	assert.Equal(t, 70.0, cartonDue(100, 30))
	assert.Equal(t, 0.0, cartonDue(100, 100))
	assert.Equal(t, 0.0, cartonDue(100, 130))
}

func TestDeriveCartonPaymentStatus(t *testing.T) {
	status, ok := deriveCartonPaymentStatus(100, 0)
	assert.True(t, ok)
	assert.Equal(t, models.CartonPaymentVerified, status)

	status, ok = deriveCartonPaymentStatus(40, 60)
	assert.True(t, ok)
	assert.Equal(t, models.CartonPaymentPartial, status)

	_, ok = deriveCartonPaymentStatus(0, 100)
	assert.False(t, ok)
}
