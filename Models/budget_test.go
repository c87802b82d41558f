package Models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestBudgetCalculateTotal(t *testing.T) {
	budget := Budget{
		Items: []BudgetItem{
			{Description: "Cleaning", Quantity: 1, UnitPrice: decimal.NewFromFloat(80)},
			{Description: "Filling", Quantity: 3, UnitPrice: decimal.NewFromFloat(120.50)},
		},
	}
	budget.CalculateTotal()

	assert.Equal(t, "80.00", budget.Items[0].Subtotal.StringFixed(2))
	assert.Equal(t, "361.50", budget.Items[1].Subtotal.StringFixed(2))
	assert.Equal(t, "441.50", budget.TotalAmount.StringFixed(2))

	empty := Budget{}
	empty.CalculateTotal()
	assert.True(t, empty.TotalAmount.IsZero())
}

func TestBudgetNumberFor(t *testing.T) {
	day := time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, "BUD-20260901-0001", BudgetNumberFor(day, 1))
	assert.Equal(t, "BUD-20260901-0042", BudgetNumberFor(day, 42))
}
