package Models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestGenerateScheduleMonthlyDueDates(t *testing.T) {
	amount := decimal.NewFromInt(100)
	payments, err := GenerateSchedule(12, amount, "2024-01-01")
	require.NoError(t, err)
	require.Len(t, payments, 12)

	expected := []string{
		"2024-01-01", "2024-02-01", "2024-03-01", "2024-04-01",
		"2024-05-01", "2024-06-01", "2024-07-01", "2024-08-01",
		"2024-09-01", "2024-10-01", "2024-11-01", "2024-12-01",
	}
	total := decimal.Zero
	for i, payment := range payments {
		assert.Equal(t, i+1, payment.InstallmentNumber)
		assert.Equal(t, expected[i], payment.DueDate)
		assert.Equal(t, PaymentPending, payment.Status)
		assert.Empty(t, payment.PaymentDate)
		total = total.Add(payment.Amount)
	}
	assert.True(t, total.Equal(decimal.NewFromInt(1200)))
}

func TestGenerateScheduleClampsMonthEnd(t *testing.T) {
	payments, err := GenerateSchedule(4, decimal.NewFromInt(50), "2024-01-31")
	require.NoError(t, err)

	// 2024 is a leap year.
	assert.Equal(t, "2024-01-31", payments[0].DueDate)
	assert.Equal(t, "2024-02-29", payments[1].DueDate)
	assert.Equal(t, "2024-03-31", payments[2].DueDate)
	assert.Equal(t, "2024-04-30", payments[3].DueDate)

	payments, err = GenerateSchedule(2, decimal.NewFromInt(50), "2023-01-31")
	require.NoError(t, err)
	assert.Equal(t, "2023-02-28", payments[1].DueDate)
}

func TestGenerateScheduleRejectsBadInput(t *testing.T) {
	_, err := GenerateSchedule(0, decimal.NewFromInt(100), "2024-01-01")
	assert.ErrorIs(t, err, ErrInvalidSchedule)

	_, err = GenerateSchedule(-3, decimal.NewFromInt(100), "2024-01-01")
	assert.ErrorIs(t, err, ErrInvalidSchedule)

	_, err = GenerateSchedule(3, decimal.NewFromInt(-100), "2024-01-01")
	assert.ErrorIs(t, err, ErrInvalidSchedule)

	_, err = GenerateSchedule(3, decimal.NewFromInt(100), "January 1st")
	assert.Error(t, err)
}

func TestSplitEvenlyReconciles(t *testing.T) {
	total := decimal.NewFromFloat(1000)
	parts := SplitEvenly(total, 3)
	require.Len(t, parts, 3)

	assert.Equal(t, "333.33", parts[0].StringFixed(2))
	assert.Equal(t, "333.33", parts[1].StringFixed(2))
	assert.Equal(t, "333.34", parts[2].StringFixed(2))

	sum := decimal.Zero
	for _, part := range parts {
		sum = sum.Add(part)
	}
	assert.True(t, sum.Equal(total))

	even := SplitEvenly(decimal.NewFromInt(1200), 12)
	for _, part := range even {
		assert.Equal(t, "100.00", part.StringFixed(2))
	}

	assert.Nil(t, SplitEvenly(total, 0))
}

func TestMarkPaidCompletesPlan(t *testing.T) {
	payments := []InstallmentPayment{
		{Model: model(1), InstallmentNumber: 1, Amount: decimal.NewFromInt(100), DueDate: "2024-01-01", Status: PaymentPaid, PaymentDate: "2024-01-01"},
		{Model: model(2), InstallmentNumber: 2, Amount: decimal.NewFromInt(100), DueDate: "2024-02-01", Status: PaymentPending},
	}

	completed, err := MarkPaid(payments, 2, MethodCard, "2024-02-01", "final")
	require.NoError(t, err)
	assert.True(t, completed)

	assert.Equal(t, PaymentPaid, payments[1].Status)
	assert.Equal(t, MethodCard, payments[1].PaymentMethod)
	assert.Equal(t, "2024-02-01", payments[1].PaymentDate)
	assert.Equal(t, "final", payments[1].Notes)
}

func TestMarkPaidLeavesPendingPlanOpen(t *testing.T) {
	payments := []InstallmentPayment{
		{Model: model(1), InstallmentNumber: 1, Amount: decimal.NewFromInt(100), DueDate: "2024-01-01", Status: PaymentPending},
		{Model: model(2), InstallmentNumber: 2, Amount: decimal.NewFromInt(100), DueDate: "2024-02-01", Status: PaymentPending},
	}

	completed, err := MarkPaid(payments, 1, "", "2024-01-01", "")
	require.NoError(t, err)
	assert.False(t, completed)

	// Method defaults to cash when omitted.
	assert.Equal(t, MethodCash, payments[0].PaymentMethod)
	assert.Equal(t, PaymentPending, payments[1].Status)
}

func TestMarkPaidRejectsDoublePayment(t *testing.T) {
	payments := []InstallmentPayment{
		{Model: model(1), InstallmentNumber: 1, Amount: decimal.NewFromInt(100), DueDate: "2024-01-01", Status: PaymentPaid, PaymentDate: "2024-01-01", PaymentMethod: MethodCash},
	}

	completed, err := MarkPaid(payments, 1, MethodCard, "2024-01-15", "retry")
	assert.ErrorIs(t, err, ErrAlreadyPaid)
	assert.False(t, completed)

	// The rejected attempt leaves the payment untouched.
	assert.Equal(t, "2024-01-01", payments[0].PaymentDate)
	assert.Equal(t, MethodCash, payments[0].PaymentMethod)
	assert.Empty(t, payments[0].Notes)
}

func TestMarkPaidUnknownPayment(t *testing.T) {
	payments := []InstallmentPayment{
		{Model: model(1), InstallmentNumber: 1, Amount: decimal.NewFromInt(100), Status: PaymentPending},
	}
	_, err := MarkPaid(payments, 99, MethodCash, "2024-01-01", "")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestIsOverdueStrictBoundary(t *testing.T) {
	payment := InstallmentPayment{Status: PaymentPending, DueDate: "2024-03-15"}

	assert.False(t, payment.IsOverdue("2024-03-15"), "due today is not overdue")
	assert.True(t, payment.IsOverdue("2024-03-16"))
	assert.False(t, payment.IsOverdue("2024-03-14"))

	paid := InstallmentPayment{Status: PaymentPaid, DueDate: "2024-01-01"}
	assert.False(t, paid.IsOverdue("2024-03-16"))

	assert.Equal(t, 0, payment.DaysOverdue("2024-03-15"))
	assert.Equal(t, 1, payment.DaysOverdue("2024-03-16"))
	assert.Equal(t, 31, payment.DaysOverdue("2024-04-15"))
}

func TestDueWindow(t *testing.T) {
	today := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	from, until := DueWindow(today, 3)
	assert.Equal(t, "2026-09-01", from)
	assert.Equal(t, "2026-09-04", until)

	from, until = DueWindow(today, 30)
	assert.Equal(t, "2026-09-01", from)
	assert.Equal(t, "2026-10-01", until)

	// Non-positive spans fall back to the 30-day default.
	_, until = DueWindow(today, 0)
	assert.Equal(t, "2026-10-01", until)
	_, until = DueWindow(today, -5)
	assert.Equal(t, "2026-10-01", until)
}

func TestIsDelinquent(t *testing.T) {
	payments := []InstallmentPayment{
		{Status: PaymentPaid, DueDate: "2024-01-01"},
		{Status: PaymentPending, DueDate: "2024-02-01"},
	}
	assert.False(t, IsDelinquent(payments, "2024-02-01"))
	assert.True(t, IsDelinquent(payments, "2024-02-02"))
	assert.False(t, IsDelinquent(nil, "2024-02-02"))
}

func TestAggregate(t *testing.T) {
	plan := InstallmentPlan{TotalAmount: decimal.NewFromInt(300)}
	payments := []InstallmentPayment{
		{Status: PaymentPaid, Amount: decimal.NewFromInt(100)},
		{Status: PaymentPending, Amount: decimal.NewFromInt(100)},
		{Status: PaymentPending, Amount: decimal.NewFromInt(100)},
	}

	summary := Aggregate(&plan, payments)
	assert.Equal(t, "100.00", summary.PaidAmount.StringFixed(2))
	assert.Equal(t, "200.00", summary.PendingAmount.StringFixed(2))
	assert.Equal(t, 1, summary.PaidCount)
	assert.Equal(t, 2, summary.PendingCount)

	// Cancelled payments count toward neither bucket, but the pending
	// amount still reconciles against the plan total.
	payments[2].Status = PaymentCancelled
	summary = Aggregate(&plan, payments)
	assert.Equal(t, 1, summary.PendingCount)
	assert.Equal(t, "200.00", summary.PendingAmount.StringFixed(2))
}

func TestScheduleFromAmounts(t *testing.T) {
	amounts := SplitEvenly(decimal.NewFromFloat(1000), 3)
	payments, err := ScheduleFromAmounts(amounts, "2024-01-31")
	require.NoError(t, err)
	require.Len(t, payments, 3)

	assert.Equal(t, "333.33", payments[0].Amount.StringFixed(2))
	assert.Equal(t, "333.34", payments[2].Amount.StringFixed(2))
	assert.Equal(t, "2024-02-29", payments[1].DueDate)

	_, err = ScheduleFromAmounts(nil, "2024-01-01")
	assert.ErrorIs(t, err, ErrInvalidSchedule)

	_, err = ScheduleFromAmounts([]decimal.Decimal{decimal.NewFromInt(-1)}, "2024-01-01")
	assert.ErrorIs(t, err, ErrInvalidSchedule)
}
