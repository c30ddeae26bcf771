package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/cargolink/internal/models"
)

func TestDeriveLedgerState(t *testing.T) {
	tests := []struct {
		name          string
		paidSum       float64
		amountTotal   float64
		wantStatus    string
		wantPayment   string
		wantChanged   bool
	}{
		{
			name:        "fully paid",
			paidSum:     100,
			amountTotal: 100,
			wantStatus:  models.OrderStatusPaidForSourcing,
			wantPayment: models.PaymentStatusPaidForSourcing,
			wantChanged: true,
		},
		{
			name:        "overpaid",
			paidSum:     150,
			amountTotal: 100,
			wantStatus:  models.OrderStatusPaidForSourcing,
			wantPayment: models.PaymentStatusPaidForSourcing,
			wantChanged: true,
		},
		{
			name:        "partially paid",
			paidSum:     40,
			amountTotal: 100,
			wantStatus:  models.OrderStatusPartiallyPaid,
			wantPayment: models.PaymentStatusPartiallyPaid,
			wantChanged: true,
		},
		{
			name:        "nothing verified",
			paidSum:     0,
			amountTotal: 100,
			wantPayment: models.PaymentStatusVerifying,
			wantChanged: false,
		},
		{
			name:        "paid but zero total stays partial",
			paidSum:     50,
			amountTotal: 0,
			wantStatus:  models.OrderStatusPartiallyPaid,
			wantPayment: models.PaymentStatusPartiallyPaid,
			wantChanged: true,
		},
		{
			name:        "float drift within epsilon counts as paid",
			paidSum:     99.9999999999999,
			amountTotal: 100,
			wantStatus:  models.OrderStatusPaidForSourcing,
			wantPayment: models.PaymentStatusPaidForSourcing,
			wantChanged: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, payment, changed := deriveLedgerState(tt.paidSum, tt.amountTotal)
			assert.Equal(t, tt.wantChanged, changed)
			assert.Equal(t, tt.wantPayment, payment)
			if tt.wantChanged {
				assert.Equal(t, tt.wantStatus, status)
			}
		})
	}
}

// A verify-verify-reject sequence on a 100.00 order: the derivation must
// never report paid_for_sourcing below the total and never fall back to
// verifying while anything remains paid.
func TestDeriveLedgerStateVerifyThenRejectSequence(t *testing.T) {
	// First payment of 40 verified.
	status, payment, changed := deriveLedgerState(40, 100)
	assert.True(t, changed)
	assert.Equal(t, models.OrderStatusPartiallyPaid, status)
	assert.Equal(t, models.PaymentStatusPartiallyPaid, payment)

	// Second payment of 60 verified.
	status, payment, changed = deriveLedgerState(100, 100)
	assert.True(t, changed)
	assert.Equal(t, models.OrderStatusPaidForSourcing, status)
	assert.Equal(t, models.PaymentStatusPaidForSourcing, payment)

	// First payment rejected; paid sum recomputes to 60.
	status, payment, changed = deriveLedgerState(60, 100)
	assert.True(t, changed)
	assert.Equal(t, models.OrderStatusPartiallyPaid, status)
	assert.Equal(t, models.PaymentStatusPartiallyPaid, payment)
}

func TestDeriveLedgerStateIdempotent(t *testing.T) {
	s1, p1, c1 := deriveLedgerState(60, 100)
	s2, p2, c2 := deriveLedgerState(60, 100)
	assert.Equal(t, s1, s2)
	assert.Equal(t, p1, p2)
	assert.Equal(t, c1, c2)
}
