package Controllers

import (
	"DentaDesk/Models"
	"DentaDesk/SSE"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
)

// CreateInstallmentPlan creates a plan and materializes its full payment
// schedule in one transaction. When the caller omits the per-installment
// amount the total is split evenly, remainder on the last installment.
func CreateInstallmentPlan(c *gin.Context) {
	var input struct {
		PatientID            uint            `json:"patient_id" binding:"required"`
		BudgetID             *uint           `json:"budget_id"`
		TotalAmount          decimal.Decimal `json:"total_amount"`
		NumberOfInstallments int             `json:"number_of_installments" binding:"required"`
		InstallmentAmount    decimal.Decimal `json:"installment_amount"`
		StartDate            string          `json:"start_date" binding:"required"`
		Notes                string          `json:"notes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.NumberOfInstallments <= 0 || !input.TotalAmount.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": Models.ErrInvalidSchedule.Error()})
		return
	}

	exists, err := Models.PatientExists(input.PatientID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !exists {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Patient not found"})
		return
	}

	var payments []Models.InstallmentPayment
	if input.InstallmentAmount.IsZero() {
		parts := Models.SplitEvenly(input.TotalAmount, input.NumberOfInstallments)
		input.InstallmentAmount = parts[0]
		payments, err = Models.ScheduleFromAmounts(parts, input.StartDate)
	} else {
		payments, err = Models.GenerateSchedule(input.NumberOfInstallments, input.InstallmentAmount, input.StartDate)
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plan := Models.InstallmentPlan{
		PatientID:            input.PatientID,
		BudgetID:             input.BudgetID,
		TotalAmount:          input.TotalAmount,
		NumberOfInstallments: input.NumberOfInstallments,
		InstallmentAmount:    input.InstallmentAmount,
		Status:               Models.PlanActive,
		StartDate:            input.StartDate,
		Notes:                input.Notes,
	}

	tx := Models.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Create(&plan).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	for index := range payments {
		payments[index].InstallmentPlanID = plan.ID
	}
	if err := tx.Create(&payments).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := tx.Commit().Error; err != nil {
		log.Println(err)
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	SSE.Broadcaster.Broadcast("refresh")
	c.JSON(http.StatusOK, gin.H{"message": "Plan Created Successfully", "plan_id": plan.ID})
}

func FetchInstallmentPlans(c *gin.Context) {
	query := Models.DB.Model(&Models.InstallmentPlan{}).Preload("Payments")
	if patientID := c.Query("patient_id"); patientID != "" {
		query = query.Where("patient_id = ?", patientID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var plans []Models.InstallmentPlan
	if err := query.Order("created_at DESC").Find(&plans).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, plans)
}

func FetchInstallmentPlan(c *gin.Context) {
	var input struct {
		PlanID uint `json:"plan_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var plan Models.InstallmentPlan
	if err := Models.DB.Preload("Payments").First(&plan, input.PlanID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Plan not found"})
		return
	}

	today := time.Now().Format(Models.DateLayout)
	c.JSON(http.StatusOK, gin.H{
		"plan":          plan,
		"summary":       Models.Aggregate(&plan, plan.Payments),
		"is_delinquent": Models.IsDelinquent(plan.Payments, today),
	})
}

// MarkPaymentPaid records a payment and completes the plan when the last
// pending payment leaves the schedule. The plan row is locked so two
// concurrent payments cannot both read a stale payment set and leave the
// plan active.
func MarkPaymentPaid(c *gin.Context) {
	var input struct {
		PaymentID     uint   `json:"payment_id" binding:"required"`
		PaymentMethod string `json:"payment_method"`
		PaymentDate   string `json:"payment_date"`
		Notes         string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.PaymentDate == "" {
		input.PaymentDate = time.Now().Format(Models.DateLayout)
	} else if _, err := time.Parse(Models.DateLayout, input.PaymentDate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment date"})
		return
	}

	tx := Models.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var payment Models.InstallmentPayment
	if err := tx.First(&payment, input.PaymentID).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		return
	}

	var plan Models.InstallmentPlan
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&plan, payment.InstallmentPlanID).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusNotFound, gin.H{"error": "Plan not found"})
		return
	}

	var payments []Models.InstallmentPayment
	if err := tx.Where("installment_plan_id = ?", plan.ID).Find(&payments).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	planCompleted, err := Models.MarkPaid(payments, payment.ID, input.PaymentMethod, input.PaymentDate, input.Notes)
	if errors.Is(err, Models.ErrAlreadyPaid) {
		tx.Rollback()
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	} else if err != nil {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	for index := range payments {
		if payments[index].ID == payment.ID {
			if err := tx.Save(&payments[index]).Error; err != nil {
				tx.Rollback()
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}
	}

	if planCompleted {
		if err := tx.Model(&Models.InstallmentPlan{}).Where("id = ?", plan.ID).
			Update("status", Models.PlanCompleted).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		log.Println(err)
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	SSE.Broadcaster.Broadcast("refresh")
	c.JSON(http.StatusOK, gin.H{"message": "Payment Marked Successfully", "plan_completed": planCompleted})
}

// CancelInstallmentPlan cancels a plan and cascades the cancellation onto
// its pending payments. Paid payments are untouched; a second cancel is a
// no-op; a completed plan cannot be cancelled.
func CancelInstallmentPlan(c *gin.Context) {
	var input struct {
		PlanID uint `json:"plan_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx := Models.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var plan Models.InstallmentPlan
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&plan, input.PlanID).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusNotFound, gin.H{"error": "Plan not found"})
		return
	}

	if plan.Status == Models.PlanCompleted {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": Models.ErrPlanNotCancellable.Error()})
		return
	}

	if plan.Status == Models.PlanCancelled {
		tx.Rollback()
		c.JSON(http.StatusOK, gin.H{"message": "Plan already cancelled"})
		return
	}

	if err := tx.Model(&Models.InstallmentPlan{}).Where("id = ?", plan.ID).
		Update("status", Models.PlanCancelled).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := tx.Model(&Models.InstallmentPayment{}).
		Where("installment_plan_id = ? AND status = ?", plan.ID, Models.PaymentPending).
		Update("status", Models.PaymentCancelled).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := tx.Commit().Error; err != nil {
		log.Println(err)
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	SSE.Broadcaster.Broadcast("refresh")
	c.JSON(http.StatusOK, gin.H{"message": "Plan Cancelled Successfully"})
}

// MarkPlanDelinquent flags a plan without touching its payments; the
// delinquent list itself is always derived from due dates.
func MarkPlanDelinquent(c *gin.Context) {
	var input struct {
		PlanID uint `json:"plan_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := Models.DB.Model(&Models.InstallmentPlan{}).Where("id = ? AND status = ?", input.PlanID, Models.PlanActive).
		Update("status", Models.PlanDelinquent).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Marked Successfully"})
}

func FetchDelinquentPlans(c *gin.Context) {
	var plans []Models.InstallmentPlan
	if err := Models.DB.Preload("Payments").
		Where("status IN ?", []string{Models.PlanActive, Models.PlanDelinquent}).
		Find(&plans).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	today := time.Now().Format(Models.DateLayout)
	delinquent := make([]Models.InstallmentPlan, 0)
	for index := range plans {
		if Models.IsDelinquent(plans[index].Payments, today) {
			delinquent = append(delinquent, plans[index])
		}
	}
	c.JSON(http.StatusOK, delinquent)
}

func FetchOverduePayments(c *gin.Context) {
	today := time.Now().Format(Models.DateLayout)
	var payments []Models.InstallmentPayment
	if err := Models.DB.
		Where("status = ? AND due_date < ?", Models.PaymentPending, today).
		Order("due_date").
		Find(&payments).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, payments)
}

// FetchUpcomingPayments lists pending payments due within the next N
// days, defaulting to 30.
func FetchUpcomingPayments(c *gin.Context) {
	days := 30
	if raw := c.Query("within_days"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			days = parsed
		}
	}
	today, until := Models.DueWindow(time.Now(), days)

	var payments []Models.InstallmentPayment
	if err := Models.DB.
		Where("status = ? AND due_date BETWEEN ? AND ?", Models.PaymentPending, today, until).
		Order("due_date").
		Find(&payments).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, payments)
}
