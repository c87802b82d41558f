package Models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTreatmentPendingBalance(t *testing.T) {
	treatment := Treatment{
		TotalPrice: decimal.NewFromFloat(1500.50),
		AmountPaid: decimal.NewFromFloat(500.25),
	}
	assert.Equal(t, "1000.25", treatment.PendingBalance().StringFixed(2))
	assert.False(t, treatment.IsPaid())

	treatment.AmountPaid = decimal.NewFromFloat(1500.50)
	assert.True(t, treatment.IsPaid())
	assert.True(t, treatment.PendingBalance().IsZero())

	// Overpayment yields a negative balance and still counts as paid.
	treatment.AmountPaid = decimal.NewFromFloat(1600)
	assert.True(t, treatment.IsPaid())
	assert.Equal(t, "-99.50", treatment.PendingBalance().StringFixed(2))
}

func TestTreatmentProgressPercentage(t *testing.T) {
	treatment := Treatment{TotalSessions: 8, CompletedSessions: 2}
	assert.InDelta(t, 25.0, treatment.ProgressPercentage(), 0.001)

	treatment.CompletedSessions = 8
	assert.InDelta(t, 100.0, treatment.ProgressPercentage(), 0.001)

	noSessions := Treatment{TotalSessions: 0, CompletedSessions: 0}
	assert.Zero(t, noSessions.ProgressPercentage())
}

func TestTreatmentBalanceHelper(t *testing.T) {
	pending, isPaid := TreatmentBalance(decimal.NewFromInt(800), decimal.NewFromInt(300))
	assert.Equal(t, "500.00", pending.StringFixed(2))
	assert.False(t, isPaid)

	pending, isPaid = TreatmentBalance(decimal.NewFromInt(800), decimal.NewFromInt(800))
	assert.True(t, pending.IsZero())
	assert.True(t, isPaid)
}
