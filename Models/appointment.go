package Models

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gorm.io/gorm"
)

const (
	AppointmentPending   = "pending"
	AppointmentConfirmed = "confirmed"
	AppointmentCancelled = "cancelled"
	AppointmentCompleted = "completed"
	AppointmentNoShow    = "no_show"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

var (
	ErrInvalidTimeRange     = errors.New("start time must be before end time")
	ErrOutsideBusinessHours = errors.New("appointments must fall within business hours")
	ErrInvalidTransition    = errors.New("appointment status transition not allowed")
)

// ConflictError reports the appointment a candidate overlaps with.
type ConflictError struct {
	AppointmentID uint
	DentalUnit    string
}

func (e *ConflictError) Error() string {
	if e.DentalUnit != "" {
		return fmt.Sprintf("schedule conflict with appointment %d on unit %s", e.AppointmentID, e.DentalUnit)
	}
	return fmt.Sprintf("schedule conflict with appointment %d", e.AppointmentID)
}

type Appointment struct {
	gorm.Model
	PatientID           uint       `json:"patient_id"`
	PatientName         string     `json:"patient_name"`
	ConsultationType    string     `json:"consultation_type"`
	Date                string     `json:"date"`       // 2006-01-02
	StartTime           string     `json:"start_time"` // 15:04, 24h
	EndTime             string     `json:"end_time"`
	DentalUnit          string     `json:"dental_unit"`
	Status              string     `json:"status"`
	TelemedicineEnabled bool       `json:"telemedicine_enabled"`
	VideoLink           string     `json:"video_link"`
	PublicBooking       bool       `json:"public_booking"`
	ConfirmationCode    string     `json:"confirmation_code"`
	CreatedBy           string     `json:"created_by"`
	Notes               string     `json:"notes"`
	ReminderSent        bool       `json:"reminder_sent"`
	ReminderSentAt      *time.Time `json:"reminder_sent_at"`
}

// BusinessHours is the daily window appointments must fall within.
// Times are zero-padded 15:04 strings, so ordinary string comparison
// orders them correctly.
type BusinessHours struct {
	Start string
	End   string
}

var DefaultBusinessHours = BusinessHours{Start: "08:00", End: "20:00"}

// LoadBusinessHours reads BUSINESS_START / BUSINESS_END, falling back to
// the 08:00-20:00 default when unset or malformed.
func LoadBusinessHours() BusinessHours {
	hours := DefaultBusinessHours
	if start := os.Getenv("BUSINESS_START"); start != "" {
		if _, err := time.Parse(TimeLayout, start); err == nil {
			hours.Start = start
		}
	}
	if end := os.Getenv("BUSINESS_END"); end != "" {
		if _, err := time.Parse(TimeLayout, end); err == nil {
			hours.End = end
		}
	}
	return hours
}

// DurationMinutes returns the appointment length in whole minutes.
func (appointment *Appointment) DurationMinutes() int {
	start, err := time.Parse(TimeLayout, appointment.StartTime)
	if err != nil {
		return 0
	}
	end, err := time.Parse(TimeLayout, appointment.EndTime)
	if err != nil {
		return 0
	}
	return int(end.Sub(start).Minutes())
}

// Overlaps reports whether two appointments' [start, end) intervals
// intersect. Back-to-back appointments do not overlap.
func (appointment *Appointment) Overlaps(other *Appointment) bool {
	return appointment.StartTime < other.EndTime && appointment.EndTime > other.StartTime
}

// BlocksSchedule reports whether the appointment still occupies its slot.
// Cancelled, completed and no-show appointments free the slot.
func (appointment *Appointment) BlocksSchedule() bool {
	return appointment.Status == AppointmentPending || appointment.Status == AppointmentConfirmed
}

func (appointment *Appointment) WithinBusinessHours(hours BusinessHours) bool {
	return appointment.StartTime >= hours.Start &&
		appointment.EndTime <= hours.End &&
		appointment.StartTime < appointment.EndTime
}

// ApplyReschedule overlays partial-update fields onto the appointment.
// Empty date and time strings keep the current values. A nil dental unit
// keeps the current unit; an explicit empty string clears it, moving the
// appointment into the unit-less pool.
func (appointment *Appointment) ApplyReschedule(date, startTime, endTime string, dentalUnit *string) {
	if date != "" {
		appointment.Date = date
	}
	if startTime != "" {
		appointment.StartTime = startTime
	}
	if endTime != "" {
		appointment.EndTime = endTime
	}
	if dentalUnit != nil {
		appointment.DentalUnit = *dentalUnit
	}
}

// ConflictsOnDay returns the first blocking appointment the candidate
// overlaps with, or nil. Only same-day rows with pending/confirmed status
// compete, the candidate itself is skipped when updating, and an
// appointment with no dental unit competes only with other unit-less
// appointments: the unit partitions chair capacity, so unassigned
// appointments form their own pool.
func (appointment *Appointment) ConflictsOnDay(existing []Appointment) *Appointment {
	for index := range existing {
		other := &existing[index]
		if other.ID == appointment.ID && appointment.ID != 0 {
			continue
		}
		if other.Date != appointment.Date || !other.BlocksSchedule() {
			continue
		}
		if other.DentalUnit != appointment.DentalUnit {
			continue
		}
		if appointment.Overlaps(other) {
			return other
		}
	}
	return nil
}

// ValidateAppointment runs every booking invariant against the candidate:
// well-formed date and times, business-hours containment and overlap
// conflicts against the day's existing appointments. A nil return means
// the candidate may be written.
func ValidateAppointment(candidate *Appointment, existing []Appointment, hours BusinessHours) error {
	if _, err := time.Parse(DateLayout, candidate.Date); err != nil {
		return fmt.Errorf("invalid date %q: %w", candidate.Date, err)
	}
	if _, err := time.Parse(TimeLayout, candidate.StartTime); err != nil {
		return fmt.Errorf("invalid start time %q: %w", candidate.StartTime, err)
	}
	if _, err := time.Parse(TimeLayout, candidate.EndTime); err != nil {
		return fmt.Errorf("invalid end time %q: %w", candidate.EndTime, err)
	}
	if candidate.StartTime >= candidate.EndTime {
		return ErrInvalidTimeRange
	}
	if !candidate.WithinBusinessHours(hours) {
		return ErrOutsideBusinessHours
	}
	if conflict := candidate.ConflictsOnDay(existing); conflict != nil {
		return &ConflictError{AppointmentID: conflict.ID, DentalUnit: conflict.DentalUnit}
	}
	return nil
}

// CanTransition encodes the appointment lifecycle: pending may confirm,
// and any non-terminal appointment may cancel, complete or no-show.
// Cancelled, completed and no_show are terminal.
func CanTransition(from, to string) bool {
	switch from {
	case AppointmentPending:
		return to == AppointmentConfirmed || to == AppointmentCancelled ||
			to == AppointmentCompleted || to == AppointmentNoShow
	case AppointmentConfirmed:
		return to == AppointmentCancelled || to == AppointmentCompleted || to == AppointmentNoShow
	}
	return false
}
