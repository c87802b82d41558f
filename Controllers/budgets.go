package Controllers

import (
	"DentaDesk/Models"
	"DentaDesk/SSE"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/clause"
)

func CreateBudget(c *gin.Context) {
	var input Models.Budget
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
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

	if input.Status == "" {
		input.Status = Models.BudgetDraft
	}
	input.CalculateTotal()

	tx := Models.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	// Number budgets per day; the count is taken inside the transaction so
	// concurrent creates on the same day produce distinct numbers (the
	// unique index is the backstop).
	today := time.Now()
	var createdToday int64
	if err := tx.Model(&Models.Budget{}).
		Where("budget_number LIKE ?", "BUD-"+today.Format("20060102")+"-%").
		Count(&createdToday).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input.BudgetNumber = Models.BudgetNumberFor(today, int(createdToday)+1)

	if err := tx.Create(&input).Error; err != nil {
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

	c.JSON(http.StatusOK, gin.H{
		"message":       "Budget Created Successfully",
		"budget_id":     input.ID,
		"budget_number": input.BudgetNumber,
		"total_amount":  input.TotalAmount,
	})
}

func FetchBudgets(c *gin.Context) {
	query := Models.DB.Model(&Models.Budget{}).Preload("Items")
	if patientID := c.Query("patient_id"); patientID != "" {
		query = query.Where("patient_id = ?", patientID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var budgets []Models.Budget
	if err := query.Order("created_at DESC").Find(&budgets).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, budgets)
}

func UpdateBudgetStatus(c *gin.Context) {
	var input struct {
		BudgetID uint   `json:"budget_id" binding:"required"`
		Status   string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Status == Models.BudgetConverted {
		c.JSON(http.StatusBadRequest, gin.H{"error": "conversion happens through ConvertBudgetToTreatment"})
		return
	}

	if err := Models.DB.Model(&Models.Budget{}).Where("id = ?", input.BudgetID).
		Update("status", input.Status).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Budget Updated Successfully"})
}

// ConvertBudgetToTreatment materializes a treatment from an accepted
// budget and optionally opens an installment plan for its total, all in
// one transaction. A budget converts at most once.
func ConvertBudgetToTreatment(c *gin.Context) {
	var input struct {
		BudgetID             uint   `json:"budget_id" binding:"required"`
		DentistResponsible   string `json:"dentist_responsible"`
		TotalSessions        int    `json:"total_sessions"`
		NumberOfInstallments int    `json:"number_of_installments"`
		StartDate            string `json:"start_date"`
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

	var budget Models.Budget
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&budget, input.BudgetID).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusNotFound, gin.H{"error": "Budget not found"})
		return
	}

	if budget.Status == Models.BudgetConverted {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Budget already converted"})
		return
	}

	if input.TotalSessions <= 0 {
		input.TotalSessions = 1
	}
	if input.DentistResponsible == "" {
		input.DentistResponsible = budget.CreatedBy
	}

	treatment := Models.Treatment{
		PatientID:          budget.PatientID,
		TreatmentType:      budget.Title,
		DentistResponsible: input.DentistResponsible,
		StartDate:          time.Now().Format(Models.DateLayout),
		TotalSessions:      input.TotalSessions,
		TotalPrice:         budget.TotalAmount,
		Description:        budget.Description,
		Status:             Models.TreatmentInProgress,
	}
	if err := tx.Create(&treatment).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var planID uint
	if input.NumberOfInstallments > 0 {
		startDate := input.StartDate
		if startDate == "" {
			startDate = time.Now().Format(Models.DateLayout)
		}

		parts := Models.SplitEvenly(budget.TotalAmount, input.NumberOfInstallments)
		payments, err := Models.ScheduleFromAmounts(parts, startDate)
		if err != nil {
			tx.Rollback()
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		plan := Models.InstallmentPlan{
			PatientID:            budget.PatientID,
			BudgetID:             &budget.ID,
			TotalAmount:          budget.TotalAmount,
			NumberOfInstallments: input.NumberOfInstallments,
			InstallmentAmount:    parts[0],
			Status:               Models.PlanActive,
			StartDate:            startDate,
		}
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
		planID = plan.ID
	}

	if err := tx.Model(&Models.Budget{}).Where("id = ?", budget.ID).
		Update("status", Models.BudgetConverted).Error; err != nil {
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
	c.JSON(http.StatusOK, gin.H{
		"message":      "Budget converted to treatment successfully",
		"treatment_id": treatment.ID,
		"plan_id":      planID,
	})
}
