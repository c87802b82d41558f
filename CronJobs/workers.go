package CronJobs

import (
	"fmt"
	"log"
	"time"

	"DentaDesk/FirebaseMessaging"
	"DentaDesk/Models"
	"DentaDesk/Whatsapp"

	"github.com/go-co-op/gocron"
	"gorm.io/gorm"
)

// ReminderService drives the scheduled reminder jobs: same-day appointment
// reminders roughly three hours ahead, and daily installment notices.
type ReminderService struct {
	DB *gorm.DB
}

func NewReminderService(db *gorm.DB) *ReminderService {
	return &ReminderService{
		DB: db,
	}
}

func (rs *ReminderService) StartReminderCron() *gocron.Scheduler {
	scheduler := gocron.NewScheduler(time.Local)

	scheduler.Every(1).Minutes().Do(func() {
		if err := rs.SendAppointmentReminders(time.Now()); err != nil {
			log.Printf("Error sending appointment reminders: %v", err)
		}
	})

	scheduler.Every(1).Day().At("09:00").Do(func() {
		if err := rs.SendPaymentReminders(time.Now()); err != nil {
			log.Printf("Error sending payment reminders: %v", err)
		}
		if err := rs.NotifyOverduePayments(time.Now()); err != nil {
			log.Printf("Error notifying overdue payments: %v", err)
		}
	})

	scheduler.StartAsync()
	log.Println("Reminder cron jobs started")

	return scheduler
}

// SendAppointmentReminders messages patients whose appointment starts about
// three hours from now. The window is a few minutes wide on each side so a
// tick can never miss a slot, and ReminderSent keeps repeats out.
func (rs *ReminderService) SendAppointmentReminders(now time.Time) error {
	startWindow := now.Add(2*time.Hour + 53*time.Minute)
	endWindow := now.Add(3*time.Hour + 7*time.Minute)

	var appointments []Models.Appointment

	result := rs.DB.Model(&Models.Appointment{}).
		Where("status IN ? AND reminder_sent = ? AND date = ?",
			[]string{Models.AppointmentPending, Models.AppointmentConfirmed},
			false,
			now.Format(Models.DateLayout)).
		Find(&appointments)

	if result.Error != nil {
		return fmt.Errorf("failed to query upcoming appointments: %w", result.Error)
	}

	for index := range appointments {
		appointment := &appointments[index]
		startsAt, err := time.ParseInLocation(
			Models.DateLayout+" "+Models.TimeLayout,
			appointment.Date+" "+appointment.StartTime,
			now.Location(),
		)
		if err != nil {
			log.Printf("Failed to parse appointment time for ID %d: %v", appointment.ID, err)
			continue
		}
		if startsAt.Before(startWindow) || startsAt.After(endWindow) {
			continue
		}

		var patient Models.Patient
		if err := rs.DB.First(&patient, appointment.PatientID).Error; err != nil {
			log.Printf("Failed to find patient for appointment ID %d: %v", appointment.ID, err)
			continue
		}

		if patient.Phone == "" {
			continue
		}

		message := fmt.Sprintf(
			"Reminder: You have a %s appointment today at %s (in 3 hours). "+
				"Please arrive 10 minutes early. If you need to reschedule, please contact us.",
			appointment.ConsultationType,
			startsAt.Format("3:04 PM"),
		)

		sendErr := Whatsapp.SendMessage(patient.Phone, message)
		logReminder(rs.DB, Models.ReminderLog{
			AppointmentID: &appointment.ID,
			Method:        Models.ReminderWhatsapp,
			Success:       sendErr == nil,
			ErrorMessage:  errText(sendErr),
		})
		if sendErr != nil {
			log.Printf("Failed to send reminder to patient %s: %v", patient.Name, sendErr)
			continue
		}

		sentAt := time.Now()
		appointment.ReminderSent = true
		appointment.ReminderSentAt = &sentAt
		if err := rs.DB.Model(appointment).
			Updates(map[string]interface{}{"reminder_sent": true, "reminder_sent_at": sentAt}).Error; err != nil {
			log.Printf("Failed to mark reminder sent for appointment ID %d: %v", appointment.ID, err)
		}

		log.Printf("Reminder sent to %s for appointment at %s %s", patient.Name, appointment.Date, appointment.StartTime)
	}

	return nil
}

// SendPaymentReminders messages patients with an installment due in exactly
// three days.
func (rs *ReminderService) SendPaymentReminders(now time.Time) error {
	dueDate := now.AddDate(0, 0, 3).Format(Models.DateLayout)

	var payments []Models.InstallmentPayment
	if err := rs.DB.Model(&Models.InstallmentPayment{}).
		Where("status = ? AND due_date = ?", Models.PaymentPending, dueDate).
		Find(&payments).Error; err != nil {
		return fmt.Errorf("failed to query due payments: %w", err)
	}

	for index := range payments {
		payment := &payments[index]
		var plan Models.InstallmentPlan
		if err := rs.DB.First(&plan, payment.InstallmentPlanID).Error; err != nil {
			log.Printf("Failed to find plan for payment ID %d: %v", payment.ID, err)
			continue
		}
		if plan.Status != Models.PlanActive && plan.Status != Models.PlanDelinquent {
			continue
		}

		var patient Models.Patient
		if err := rs.DB.First(&patient, plan.PatientID).Error; err != nil {
			log.Printf("Failed to find patient for plan ID %d: %v", plan.ID, err)
			continue
		}
		if patient.Phone == "" {
			continue
		}

		message := fmt.Sprintf(
			"Reminder: installment %d of %d (%s) is due on %s. "+
				"Please contact the clinic if you need to arrange payment.",
			payment.InstallmentNumber,
			plan.NumberOfInstallments,
			payment.Amount.StringFixed(2),
			payment.DueDate,
		)

		sendErr := Whatsapp.SendMessage(patient.Phone, message)
		logReminder(rs.DB, Models.ReminderLog{
			InstallmentPaymentID: &payment.ID,
			Method:               Models.ReminderWhatsapp,
			Success:              sendErr == nil,
			ErrorMessage:         errText(sendErr),
		})
		if sendErr != nil {
			log.Printf("Failed to send payment reminder to patient %s: %v", patient.Name, sendErr)
		}
	}

	return nil
}

// NotifyOverduePayments pushes a staff notification summarizing how many
// installments went past due.
func (rs *ReminderService) NotifyOverduePayments(now time.Time) error {
	today := now.Format(Models.DateLayout)

	var count int64
	if err := rs.DB.Model(&Models.InstallmentPayment{}).
		Where("status = ? AND due_date < ?", Models.PaymentPending, today).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count overdue payments: %w", err)
	}
	if count == 0 {
		return nil
	}

	fcms, err := Models.GetStaffFCMs()
	if err != nil {
		return err
	}

	sendErr := FirebaseMessaging.SendMessage(Models.NotificationRequest{
		Tokens: fcms,
		Title:  "Overdue installments",
		Body:   fmt.Sprintf("%d installment payments are past due as of %s.", count, today),
	})
	logReminder(rs.DB, Models.ReminderLog{
		Method:       Models.ReminderPush,
		Success:      sendErr == nil,
		ErrorMessage: errText(sendErr),
	})
	return sendErr
}

func logReminder(db *gorm.DB, entry Models.ReminderLog) {
	if err := db.Create(&entry).Error; err != nil {
		log.Printf("Failed to record reminder log: %v", err)
	}
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
