package Models

import "gorm.io/gorm"

const (
	ReminderWhatsapp = "whatsapp"
	ReminderPush     = "push"
)

// ReminderLog records every reminder the workers dispatch, successful or
// not, so sends are never repeated for the same appointment or payment.
type ReminderLog struct {
	gorm.Model
	AppointmentID        *uint  `json:"appointment_id" gorm:"default:null"`
	InstallmentPaymentID *uint  `json:"installment_payment_id" gorm:"default:null"`
	Method               string `json:"method"`
	Success              bool   `json:"success"`
	ErrorMessage         string `json:"error_message"`
}

// NotificationRequest is the payload handed to the Firebase sender.
type NotificationRequest struct {
	Tokens []string `json:"tokens"`
	Title  string   `json:"title"`
	Body   string   `json:"body"`
}
