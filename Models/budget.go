package Models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	BudgetDraft     = "draft"
	BudgetSent      = "sent"
	BudgetAccepted  = "accepted"
	BudgetRejected  = "rejected"
	BudgetConverted = "converted"
	BudgetExpired   = "expired"
)

type Budget struct {
	gorm.Model
	PatientID    uint            `json:"patient_id"`
	BudgetNumber string          `json:"budget_number" gorm:"unique"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Status       string          `json:"status"`
	TotalAmount  decimal.Decimal `json:"total_amount" gorm:"type:numeric(10,2)"`
	CreatedBy    string          `json:"created_by"`
	Items        []BudgetItem    `json:"items" gorm:"foreignKey:BudgetID"`
}

type BudgetItem struct {
	gorm.Model
	BudgetID    uint            `json:"budget_id"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price" gorm:"type:numeric(10,2)"`
	Subtotal    decimal.Decimal `json:"subtotal" gorm:"type:numeric(10,2)"`
}

// ComputeSubtotal fills the item subtotal from quantity and unit price.
func (item *BudgetItem) ComputeSubtotal() {
	item.Subtotal = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
}

// CalculateTotal recomputes every item subtotal and the budget total.
func (budget *Budget) CalculateTotal() {
	total := decimal.Zero
	for index := range budget.Items {
		budget.Items[index].ComputeSubtotal()
		total = total.Add(budget.Items[index].Subtotal)
	}
	budget.TotalAmount = total
}

// BudgetNumberFor builds the BUD-YYYYMMDD-XXXX number for the sequence-th
// budget created on the given day.
func BudgetNumberFor(day time.Time, sequence int) string {
	return fmt.Sprintf("BUD-%s-%04d", day.Format("20060102"), sequence)
}
