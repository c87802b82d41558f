package Models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	TreatmentInProgress = "in_progress"
	TreatmentCompleted  = "completed"
	TreatmentCancelled  = "cancelled"
	TreatmentWithDebt   = "with_debt"
)

type Treatment struct {
	gorm.Model
	PatientID          uint            `json:"patient_id"`
	TreatmentType      string          `json:"treatment_type"`
	DentistResponsible string          `json:"dentist_responsible"`
	StartDate          string          `json:"start_date"` // 2006-01-02
	EndDate            string          `json:"end_date"`
	TotalSessions      int             `json:"total_sessions"`
	CompletedSessions  int             `json:"completed_sessions"`
	TotalPrice         decimal.Decimal `json:"total_price" gorm:"type:numeric(10,2)"`
	AmountPaid         decimal.Decimal `json:"amount_paid" gorm:"type:numeric(10,2)"`
	Status             string          `json:"status"`
	Description        string          `json:"description"`
	Notes              string          `json:"notes"`
}

func (treatment *Treatment) PendingBalance() decimal.Decimal {
	return treatment.TotalPrice.Sub(treatment.AmountPaid)
}

func (treatment *Treatment) IsPaid() bool {
	return treatment.AmountPaid.GreaterThanOrEqual(treatment.TotalPrice)
}

// ProgressPercentage reports completed sessions over total sessions,
// 0 when no sessions are planned.
func (treatment *Treatment) ProgressPercentage() float64 {
	if treatment.TotalSessions == 0 {
		return 0
	}
	return float64(treatment.CompletedSessions) / float64(treatment.TotalSessions) * 100
}

// TreatmentBalance computes the pending balance and paid-off state for a
// price/paid pair without touching any stored treatment.
func TreatmentBalance(totalPrice, amountPaid decimal.Decimal) (pendingBalance decimal.Decimal, isPaid bool) {
	return totalPrice.Sub(amountPaid), amountPaid.GreaterThanOrEqual(totalPrice)
}
