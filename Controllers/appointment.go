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
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockScheduleDay serializes every booking write for one calendar date.
// Two overlapping candidates for the same day therefore never pass the
// conflict check concurrently, including inserts into an empty day that
// row locks alone would not cover.
func lockScheduleDay(tx *gorm.DB, date string) error {
	return tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", "appointments:"+date).Error
}

func appointmentRejection(c *gin.Context, err error) {
	var conflict *Models.ConflictError
	if errors.As(err, &conflict) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func CreateAppointment(c *gin.Context) {
	var input Models.Appointment
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Status == "" {
		input.Status = Models.AppointmentPending
	}
	if input.Status != Models.AppointmentPending && input.Status != Models.AppointmentConfirmed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "new appointments must be pending or confirmed"})
		return
	}

	var patient Models.Patient
	if err := Models.DB.First(&patient, input.PatientID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Patient not found"})
		return
	}
	input.PatientName = patient.Name

	tx := Models.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := lockScheduleDay(tx, input.Date); err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var existing []Models.Appointment
	if err := tx.Where("date = ?", input.Date).Find(&existing).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := Models.ValidateAppointment(&input, existing, Models.Hours); err != nil {
		tx.Rollback()
		appointmentRejection(c, err)
		return
	}

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

	SSE.Broadcaster.Broadcast("refresh")
	c.JSON(http.StatusOK, gin.H{"message": "Appointment registered successfully", "appointment_id": input.ID})
}

// RescheduleAppointment edits date, times or dental unit and re-runs the
// full validation against the target day.
func RescheduleAppointment(c *gin.Context) {
	var input struct {
		ID         uint    `json:"id" binding:"required"`
		Date       string  `json:"date"`
		StartTime  string  `json:"start_time"`
		EndTime    string  `json:"end_time"`
		DentalUnit *string `json:"dental_unit"`
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

	var appointment Models.Appointment
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&appointment, input.ID).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Appointment not found"})
		return
	}

	if !appointment.BlocksSchedule() {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only pending or confirmed appointments can be rescheduled"})
		return
	}

	appointment.ApplyReschedule(input.Date, input.StartTime, input.EndTime, input.DentalUnit)

	if err := lockScheduleDay(tx, appointment.Date); err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var existing []Models.Appointment
	if err := tx.Where("date = ?", appointment.Date).Find(&existing).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := Models.ValidateAppointment(&appointment, existing, Models.Hours); err != nil {
		tx.Rollback()
		appointmentRejection(c, err)
		return
	}

	if err := tx.Save(&appointment).Error; err != nil {
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
	c.JSON(http.StatusOK, gin.H{"message": "Appointment rescheduled successfully"})
}

// TransitionAppointment moves an appointment through its lifecycle.
// Terminal states reject every further transition.
func TransitionAppointment(c *gin.Context) {
	var input struct {
		ID     uint   `json:"id" binding:"required"`
		Status string `json:"status" binding:"required"`
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

	var appointment Models.Appointment
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&appointment, input.ID).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Appointment not found"})
		return
	}

	if !Models.CanTransition(appointment.Status, input.Status) {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": Models.ErrInvalidTransition.Error()})
		return
	}

	if err := tx.Model(&Models.Appointment{}).Where("id = ?", input.ID).Update("status", input.Status).Error; err != nil {
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
	c.JSON(http.StatusOK, gin.H{"message": "Marked Successfully"})
}

func FetchAppointments(c *gin.Context) {
	query := Models.DB.Model(&Models.Appointment{})
	if patientID := c.Query("patient_id"); patientID != "" {
		query = query.Where("patient_id = ?", patientID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if date := c.Query("date"); date != "" {
		query = query.Where("date = ?", date)
	}

	var appointments []Models.Appointment
	if err := query.Order("date, start_time").Find(&appointments).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, appointments)
}

func DailyAgenda(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		date = time.Now().Format(Models.DateLayout)
	}

	var appointments []Models.Appointment
	if err := Models.DB.Where("date = ?", date).Order("start_time").Find(&appointments).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, appointments)
}

func WeeklyAgenda(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		date = time.Now().Format(Models.DateLayout)
	}

	monday, sunday, err := Models.WeekBounds(date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var appointments []Models.Appointment
	if err := Models.DB.Where("date BETWEEN ? AND ?", monday, sunday).Find(&appointments).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	week, err := Models.WeeklyAgenda(date, appointments)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, week)
}

func MonthlyAgenda(c *gin.Context) {
	month := c.Query("month") // 2006-01
	if month == "" {
		month = time.Now().Format("2006-01")
	}

	var appointments []Models.Appointment
	if err := Models.DB.Where("date LIKE ?", month+"%").Order("date, start_time").Find(&appointments).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, appointments)
}

// UpcomingAppointments lists blocking appointments starting within the
// next N days, for the reminder worker and the dashboard.
func UpcomingAppointments(c *gin.Context) {
	days := 7
	if raw := c.Query("within_days"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			days = parsed
		}
	}

	today := time.Now().Format(Models.DateLayout)
	until := time.Now().AddDate(0, 0, days).Format(Models.DateLayout)

	var appointments []Models.Appointment
	if err := Models.DB.
		Where("date BETWEEN ? AND ? AND status IN ?", today, until,
			[]string{Models.AppointmentPending, Models.AppointmentConfirmed}).
		Order("date, start_time").
		Find(&appointments).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, appointments)
}
