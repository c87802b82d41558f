package Models

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	PlanActive     = "active"
	PlanCompleted  = "completed"
	PlanCancelled  = "cancelled"
	PlanDelinquent = "delinquent"
)

const (
	PaymentPending   = "pending"
	PaymentPaid      = "paid"
	PaymentOverdue   = "overdue"
	PaymentCancelled = "cancelled"
)

const (
	MethodCash     = "cash"
	MethodCard     = "card"
	MethodTransfer = "transfer"
	MethodCheck    = "check"
)

var (
	ErrAlreadyPaid        = errors.New("payment is already marked as paid")
	ErrPlanNotCancellable = errors.New("a completed plan cannot be cancelled")
	ErrInvalidSchedule    = errors.New("installment count must be positive and amounts must not be negative")
)

type InstallmentPlan struct {
	gorm.Model
	PatientID            uint                 `json:"patient_id"`
	BudgetID             *uint                `json:"budget_id" gorm:"default:null"`
	TotalAmount          decimal.Decimal      `json:"total_amount" gorm:"type:numeric(10,2)"`
	NumberOfInstallments int                  `json:"number_of_installments"`
	InstallmentAmount    decimal.Decimal      `json:"installment_amount" gorm:"type:numeric(10,2)"`
	Status               string               `json:"status"`
	StartDate            string               `json:"start_date"` // 2006-01-02
	Notes                string               `json:"notes"`
	Payments             []InstallmentPayment `json:"payments" gorm:"foreignKey:InstallmentPlanID"`
}

type InstallmentPayment struct {
	gorm.Model
	InstallmentPlanID uint            `json:"installment_plan_id" gorm:"uniqueIndex:idx_plan_installment,priority:1"`
	InstallmentNumber int             `json:"installment_number" gorm:"uniqueIndex:idx_plan_installment,priority:2"`
	Amount            decimal.Decimal `json:"amount" gorm:"type:numeric(10,2)"`
	DueDate           string          `json:"due_date"`     // 2006-01-02
	PaymentDate       string          `json:"payment_date"` // empty until paid
	Status            string          `json:"status"`
	PaymentMethod     string          `json:"payment_method"`
	Notes             string          `json:"notes"`
}

// GenerateSchedule materializes one pending payment per calendar month
// offset from startDate: installment i is due on startDate + i months,
// every payment carrying the same amount. The caller supplies the
// per-installment amount; use SplitEvenly to derive one from a total.
func GenerateSchedule(count int, installmentAmount decimal.Decimal, startDate string) ([]InstallmentPayment, error) {
	if count <= 0 || installmentAmount.IsNegative() {
		return nil, ErrInvalidSchedule
	}
	amounts := make([]decimal.Decimal, count)
	for i := range amounts {
		amounts[i] = installmentAmount
	}
	return ScheduleFromAmounts(amounts, startDate)
}

// ScheduleFromAmounts is GenerateSchedule with an explicit amount per
// installment, used when a total is split unevenly.
func ScheduleFromAmounts(amounts []decimal.Decimal, startDate string) ([]InstallmentPayment, error) {
	if len(amounts) == 0 {
		return nil, ErrInvalidSchedule
	}
	start, err := time.Parse(DateLayout, startDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", startDate, err)
	}
	payments := make([]InstallmentPayment, len(amounts))
	for i, amount := range amounts {
		if amount.IsNegative() {
			return nil, ErrInvalidSchedule
		}
		payments[i] = InstallmentPayment{
			InstallmentNumber: i + 1,
			Amount:            amount,
			DueDate:           addMonths(start, i).Format(DateLayout),
			Status:            PaymentPending,
		}
	}
	return payments, nil
}

// addMonths advances by whole calendar months, clamping to the last day of
// the target month (Jan 31 + 1 month = Feb 28/29, not Mar 2).
func addMonths(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	first := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	lastDay := first.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, t.Location())
}

// SplitEvenly divides a total into count parts of two decimal places,
// assigning the rounding remainder to the last part so the parts always
// sum back to the total exactly.
func SplitEvenly(total decimal.Decimal, count int) []decimal.Decimal {
	if count <= 0 {
		return nil
	}
	base := total.Div(decimal.NewFromInt(int64(count))).RoundDown(2)
	parts := make([]decimal.Decimal, count)
	running := decimal.Zero
	for i := 0; i < count-1; i++ {
		parts[i] = base
		running = running.Add(base)
	}
	parts[count-1] = total.Sub(running)
	return parts
}

// PlanSummary aggregates a plan's payment state.
type PlanSummary struct {
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	PendingAmount decimal.Decimal `json:"pending_amount"`
	PaidCount     int             `json:"paid_installments"`
	PendingCount  int             `json:"pending_installments"`
}

// Aggregate sums paid amounts and counts payments by status. The pending
// amount is the plan total minus what has been paid, so partial or uneven
// schedules still reconcile against the total.
func Aggregate(plan *InstallmentPlan, payments []InstallmentPayment) PlanSummary {
	summary := PlanSummary{PaidAmount: decimal.Zero}
	for index := range payments {
		switch payments[index].Status {
		case PaymentPaid:
			summary.PaidAmount = summary.PaidAmount.Add(payments[index].Amount)
			summary.PaidCount++
		case PaymentPending:
			summary.PendingCount++
		}
	}
	summary.PendingAmount = plan.TotalAmount.Sub(summary.PaidAmount)
	return summary
}

// IsOverdue reports whether the payment is pending and strictly past due.
// A payment due exactly today is not overdue.
func (payment *InstallmentPayment) IsOverdue(today string) bool {
	return payment.Status == PaymentPending && payment.DueDate < today
}

// DaysOverdue returns how many days past due the payment is, 0 when it is
// not overdue.
func (payment *InstallmentPayment) DaysOverdue(today string) int {
	if !payment.IsOverdue(today) {
		return 0
	}
	due, err := time.Parse(DateLayout, payment.DueDate)
	if err != nil {
		return 0
	}
	now, err := time.Parse(DateLayout, today)
	if err != nil {
		return 0
	}
	return int(now.Sub(due).Hours() / 24)
}

// DueWindow returns the inclusive [today, today+days] due-date range for
// upcoming-payment queries. Non-positive days fall back to 30.
func DueWindow(today time.Time, days int) (string, string) {
	if days <= 0 {
		days = 30
	}
	return today.Format(DateLayout), today.AddDate(0, 0, days).Format(DateLayout)
}

// IsDelinquent reports whether any payment in the set is overdue.
func IsDelinquent(payments []InstallmentPayment, today string) bool {
	for index := range payments {
		if payments[index].IsOverdue(today) {
			return true
		}
	}
	return false
}

// MarkPaid applies a payment against the full payment set of its plan and
// decides whether the plan completes. It mutates the matched payment in
// place and returns whether zero pending payments remain plan-wide.
// Rejected operations leave the set untouched.
func MarkPaid(payments []InstallmentPayment, paymentID uint, method, paymentDate, notes string) (planCompleted bool, err error) {
	var target *InstallmentPayment
	for index := range payments {
		if payments[index].ID == paymentID {
			target = &payments[index]
			break
		}
	}
	if target == nil {
		return false, gorm.ErrRecordNotFound
	}
	if target.Status == PaymentPaid {
		return false, ErrAlreadyPaid
	}
	if method == "" {
		method = MethodCash
	}
	target.Status = PaymentPaid
	target.PaymentMethod = method
	target.PaymentDate = paymentDate
	target.Notes = notes

	for index := range payments {
		if payments[index].Status == PaymentPending {
			return false, nil
		}
	}
	return true, nil
}
