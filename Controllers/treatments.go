package Controllers

import (
	"DentaDesk/Models"
	"DentaDesk/SSE"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
)

func CreateTreatment(c *gin.Context) {
	var input Models.Treatment
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
		input.Status = Models.TreatmentInProgress
	}
	if input.StartDate == "" {
		input.StartDate = time.Now().Format(Models.DateLayout)
	}

	if err := Models.DB.Create(&input).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Treatment Created Successfully", "treatment_id": input.ID})
}

func FetchTreatments(c *gin.Context) {
	query := Models.DB.Model(&Models.Treatment{})
	if patientID := c.Query("patient_id"); patientID != "" {
		query = query.Where("patient_id = ?", patientID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var treatments []Models.Treatment
	if err := query.Order("start_date DESC").Find(&treatments).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, treatments)
}

// FetchTreatmentBalance exposes the derived financial state of one
// treatment.
func FetchTreatmentBalance(c *gin.Context) {
	var input struct {
		TreatmentID uint `json:"treatment_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var treatment Models.Treatment
	if err := Models.DB.First(&treatment, input.TreatmentID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Treatment not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"treatment_id":        treatment.ID,
		"total_price":         treatment.TotalPrice,
		"amount_paid":         treatment.AmountPaid,
		"pending_balance":     treatment.PendingBalance(),
		"is_paid":             treatment.IsPaid(),
		"progress_percentage": treatment.ProgressPercentage(),
	})
}

// CompleteTreatmentSession advances the session counter; the treatment
// completes when every session is done and nothing is owed, or moves to
// with_debt when sessions finish with a balance outstanding.
func CompleteTreatmentSession(c *gin.Context) {
	var input struct {
		TreatmentID uint `json:"treatment_id" binding:"required"`
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

	var treatment Models.Treatment
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&treatment, input.TreatmentID).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusNotFound, gin.H{"error": "Treatment not found"})
		return
	}

	if treatment.CompletedSessions >= treatment.TotalSessions {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": "All sessions are already completed"})
		return
	}

	treatment.CompletedSessions++
	if treatment.CompletedSessions == treatment.TotalSessions {
		treatment.EndDate = time.Now().Format(Models.DateLayout)
		if treatment.IsPaid() {
			treatment.Status = Models.TreatmentCompleted
		} else {
			treatment.Status = Models.TreatmentWithDebt
		}
	}

	if err := tx.Save(&treatment).Error; err != nil {
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
	c.JSON(http.StatusOK, gin.H{"message": "Session Completed Successfully", "progress": treatment.ProgressPercentage()})
}

// RegisterTreatmentPayment adds an amount to the treatment's paid total.
func RegisterTreatmentPayment(c *gin.Context) {
	var input struct {
		TreatmentID uint            `json:"treatment_id" binding:"required"`
		Amount      decimal.Decimal `json:"amount"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !input.Amount.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payment amount must be positive"})
		return
	}

	tx := Models.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var treatment Models.Treatment
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&treatment, input.TreatmentID).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusNotFound, gin.H{"error": "Treatment not found"})
		return
	}

	treatment.AmountPaid = treatment.AmountPaid.Add(input.Amount)
	if treatment.Status == Models.TreatmentWithDebt && treatment.IsPaid() {
		treatment.Status = Models.TreatmentCompleted
	}

	if err := tx.Save(&treatment).Error; err != nil {
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
		"message":         "Payment Registered Successfully",
		"pending_balance": treatment.PendingBalance(),
		"is_paid":         treatment.IsPaid(),
	})
}

func UpdateTreatment(c *gin.Context) {
	var input Models.Treatment
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.ID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "treatment id is required"})
		return
	}
	if err := Models.DB.Save(&input).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Treatment Updated Successfully"})
}
