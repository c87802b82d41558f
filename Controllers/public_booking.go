package Controllers

import (
	"DentaDesk/FirebaseMessaging"
	"DentaDesk/Models"
	"DentaDesk/SSE"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetAvailableSlots is the public availability view: the business-hours
// window of a date cut into fixed slots, each flagged bookable or not.
func GetAvailableSlots(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		date = time.Now().Format(Models.DateLayout)
	}
	if _, err := time.Parse(Models.DateLayout, date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid date %q", date)})
		return
	}

	slotMinutes := 30
	if raw := c.Query("slot_minutes"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			slotMinutes = parsed
		}
	}

	var existing []Models.Appointment
	if err := Models.DB.
		Where("date = ? AND status IN ?", date,
			[]string{Models.AppointmentPending, Models.AppointmentConfirmed}).
		Find(&existing).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":  date,
		"slots": Models.AvailableSlots(date, slotMinutes, Models.Hours, existing),
	})
}

// BookPublicAppointment books a slot for a patient identified by phone,
// creating the patient record on first contact. The booking is always a
// pending public booking created by "public"; staff confirm it later.
func BookPublicAppointment(c *gin.Context) {
	var input struct {
		PatientName      string `json:"patient_name"`
		PhoneNumber      string `json:"phone_number" binding:"required"`
		IsExisting       bool   `json:"is_existing"`
		ConsultationType string `json:"consultation_type"`
		Date             string `json:"date" binding:"required"`
		StartTime        string `json:"start_time" binding:"required"`
		EndTime          string `json:"end_time" binding:"required"`
		Notes            string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !strings.HasPrefix(input.PhoneNumber, "+") {
		input.PhoneNumber = "+52" + input.PhoneNumber
	}

	// Public patients cannot book arbitrarily far ahead.
	if bookingDay, err := time.Parse(Models.DateLayout, input.Date); err == nil {
		if bookingDay.Sub(time.Now()) > 14*24*time.Hour {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Can't book more than 14 days ahead"})
			return
		}
	}

	tx := Models.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong, transaction rolled back"})
		}
	}()

	var patient Models.Patient
	err := tx.Model(&Models.Patient{}).Where("phone = ?", input.PhoneNumber).First(&patient).Error
	if errors.Is(err, gorm.ErrRecordNotFound) && input.IsExisting {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Phone Number Not Registered, Try Booking As a New Patient"})
		return
	} else if err == nil && !input.IsExisting {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Phone Already Registered, Try Booking As an Existing Patient"})
		return
	} else if errors.Is(err, gorm.ErrRecordNotFound) {
		patient = Models.Patient{Name: input.PatientName, Phone: input.PhoneNumber}
		if err := tx.Create(&patient).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusBadRequest, gin.H{"error": "Couldn't Create Patient"})
			return
		}
	} else if err != nil {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// One public booking per patient per day.
	var sameDay int64
	if err := tx.Model(&Models.Appointment{}).
		Where("patient_id = ? AND date = ? AND status IN ?", patient.ID, input.Date,
			[]string{Models.AppointmentPending, Models.AppointmentConfirmed}).
		Count(&sameDay).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to check existing appointments"})
		return
	}
	if sameDay > 0 {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Patient can only book one appointment per day"})
		return
	}

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

	appointment := Models.Appointment{
		PatientID:        patient.ID,
		PatientName:      patient.Name,
		ConsultationType: input.ConsultationType,
		Date:             input.Date,
		StartTime:        input.StartTime,
		EndTime:          input.EndTime,
		Status:           Models.AppointmentPending,
		PublicBooking:    true,
		ConfirmationCode: uuid.NewString(),
		CreatedBy:        "public",
		Notes:            input.Notes,
	}

	if err := Models.ValidateAppointment(&appointment, existing, Models.Hours); err != nil {
		tx.Rollback()
		appointmentRejection(c, err)
		return
	}

	if err := tx.Create(&appointment).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	SSE.Broadcaster.Broadcast("refresh")
	fcms, _ := Models.GetStaffFCMs()
	if len(fcms) > 0 {
		FirebaseMessaging.SendMessage(Models.NotificationRequest{
			Tokens: fcms,
			Title:  "New Public Booking",
			Body:   fmt.Sprintf("%s booked %s %s-%s", patient.Name, appointment.Date, appointment.StartTime, appointment.EndTime),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"message":           "Booked Successfully",
		"appointment_id":    appointment.ID,
		"patient_id":        patient.ID,
		"confirmation_code": appointment.ConfirmationCode,
	})
}

// GetPatientIdByPhone lets the public surface recover a patient reference
// without exposing the record itself.
func GetPatientIdByPhone(c *gin.Context) {
	var input struct {
		PhoneNumber string `json:"phone_number" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !strings.HasPrefix(input.PhoneNumber, "+") {
		input.PhoneNumber = "+52" + input.PhoneNumber
	}

	var patient Models.Patient
	if err := Models.DB.Where("phone = ?", input.PhoneNumber).First(&patient).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No patient found with this phone number"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"patient_id": patient.ID})
}

// FetchAppointmentsByPatientID returns the trimmed appointment history the
// public surface may see.
func FetchAppointmentsByPatientID(c *gin.Context) {
	var input struct {
		ID uint `json:"id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	type AppointmentResponse struct {
		ID        uint   `json:"id"`
		Date      string `json:"date"`
		StartTime string `json:"start_time"`
		EndTime   string `json:"end_time"`
		Status    string `json:"status"`
	}

	var responses []AppointmentResponse
	if err := Models.DB.Model(&Models.Appointment{}).
		Select("id, date, start_time, end_time, status").
		Where("patient_id = ?", input.ID).
		Order("date, start_time").
		Find(&responses).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"appointments": responses})
}
