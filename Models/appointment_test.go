package Models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func model(id uint) gorm.Model {
	return gorm.Model{ID: id}
}

func TestDurationMinutes(t *testing.T) {
	appointment := Appointment{StartTime: "08:00", EndTime: "08:30"}
	assert.Equal(t, 30, appointment.DurationMinutes())

	appointment = Appointment{StartTime: "09:15", EndTime: "11:00"}
	assert.Equal(t, 105, appointment.DurationMinutes())

	appointment = Appointment{StartTime: "bad", EndTime: "11:00"}
	assert.Equal(t, 0, appointment.DurationMinutes())
}

func TestOverlapsHalfOpen(t *testing.T) {
	a := Appointment{StartTime: "09:00", EndTime: "10:00"}

	overlapping := Appointment{StartTime: "09:30", EndTime: "10:30"}
	assert.True(t, a.Overlaps(&overlapping))

	contained := Appointment{StartTime: "09:15", EndTime: "09:45"}
	assert.True(t, a.Overlaps(&contained))

	// Back-to-back slots share an instant but not an interval.
	backToBack := Appointment{StartTime: "10:00", EndTime: "11:00"}
	assert.False(t, a.Overlaps(&backToBack))

	before := Appointment{StartTime: "08:00", EndTime: "09:00"}
	assert.False(t, a.Overlaps(&before))
}

func TestWithinBusinessHours(t *testing.T) {
	hours := DefaultBusinessHours

	ok := Appointment{StartTime: "08:00", EndTime: "08:30"}
	assert.True(t, ok.WithinBusinessHours(hours))

	closing := Appointment{StartTime: "19:30", EndTime: "20:00"}
	assert.True(t, closing.WithinBusinessHours(hours))

	early := Appointment{StartTime: "07:59", EndTime: "08:30"}
	assert.False(t, early.WithinBusinessHours(hours))

	late := Appointment{StartTime: "19:45", EndTime: "20:15"}
	assert.False(t, late.WithinBusinessHours(hours))
}

func TestValidateAppointmentConflicts(t *testing.T) {
	hours := DefaultBusinessHours
	existing := []Appointment{
		{Model: model(1), Date: "2026-09-01", StartTime: "09:00", EndTime: "10:00", DentalUnit: "U1", Status: AppointmentConfirmed},
		{Model: model(2), Date: "2026-09-01", StartTime: "09:00", EndTime: "10:00", DentalUnit: "U2", Status: AppointmentPending},
		{Model: model(3), Date: "2026-09-01", StartTime: "11:00", EndTime: "12:00", DentalUnit: "U1", Status: AppointmentCancelled},
	}

	// Same unit, same window.
	candidate := Appointment{Date: "2026-09-01", StartTime: "09:30", EndTime: "10:30", DentalUnit: "U1"}
	err := ValidateAppointment(&candidate, existing, hours)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, uint(1), conflict.AppointmentID)
	assert.Equal(t, "U1", conflict.DentalUnit)

	// A third unit is free.
	candidate = Appointment{Date: "2026-09-01", StartTime: "09:30", EndTime: "10:30", DentalUnit: "U3"}
	assert.NoError(t, ValidateAppointment(&candidate, existing, hours))

	// Cancelled rows do not block.
	candidate = Appointment{Date: "2026-09-01", StartTime: "11:00", EndTime: "12:00", DentalUnit: "U1"}
	assert.NoError(t, ValidateAppointment(&candidate, existing, hours))

	// Different days never conflict.
	candidate = Appointment{Date: "2026-09-02", StartTime: "09:00", EndTime: "10:00", DentalUnit: "U1"}
	assert.NoError(t, ValidateAppointment(&candidate, existing, hours))
}

func TestValidateAppointmentUnitlessPool(t *testing.T) {
	hours := DefaultBusinessHours
	existing := []Appointment{
		{Model: model(1), Date: "2026-09-01", StartTime: "09:00", EndTime: "10:00", Status: AppointmentPending},
	}

	// Unit-less candidates compete with the unit-less pool.
	candidate := Appointment{Date: "2026-09-01", StartTime: "09:30", EndTime: "10:30"}
	var conflict *ConflictError
	require.ErrorAs(t, ValidateAppointment(&candidate, existing, hours), &conflict)

	// Assigning a unit moves the candidate to its own pool.
	candidate = Appointment{Date: "2026-09-01", StartTime: "09:30", EndTime: "10:30", DentalUnit: "U1"}
	assert.NoError(t, ValidateAppointment(&candidate, existing, hours))
}

func TestValidateAppointmentSkipsSelfOnUpdate(t *testing.T) {
	hours := DefaultBusinessHours
	existing := []Appointment{
		{Model: model(7), Date: "2026-09-01", StartTime: "09:00", EndTime: "10:00", DentalUnit: "U1", Status: AppointmentConfirmed},
	}

	// Rescheduling within its own slot only overlaps itself.
	candidate := Appointment{Model: model(7), Date: "2026-09-01", StartTime: "09:15", EndTime: "10:15", DentalUnit: "U1"}
	assert.NoError(t, ValidateAppointment(&candidate, existing, hours))
}

func TestValidateAppointmentRejectsMalformedInput(t *testing.T) {
	hours := DefaultBusinessHours

	candidate := Appointment{Date: "2026-09-01", StartTime: "10:00", EndTime: "09:00"}
	assert.ErrorIs(t, ValidateAppointment(&candidate, nil, hours), ErrInvalidTimeRange)

	candidate = Appointment{Date: "2026-09-01", StartTime: "10:00", EndTime: "10:00"}
	assert.ErrorIs(t, ValidateAppointment(&candidate, nil, hours), ErrInvalidTimeRange)

	candidate = Appointment{Date: "not-a-date", StartTime: "09:00", EndTime: "10:00"}
	assert.Error(t, ValidateAppointment(&candidate, nil, hours))

	candidate = Appointment{Date: "2026-09-01", StartTime: "9am", EndTime: "10:00"}
	assert.Error(t, ValidateAppointment(&candidate, nil, hours))
}

func TestApplyReschedule(t *testing.T) {
	base := Appointment{Date: "2026-09-01", StartTime: "09:00", EndTime: "10:00", DentalUnit: "U1"}

	// Omitted fields keep their values, including the dental unit.
	appointment := base
	appointment.ApplyReschedule("", "11:00", "12:00", nil)
	assert.Equal(t, "2026-09-01", appointment.Date)
	assert.Equal(t, "11:00", appointment.StartTime)
	assert.Equal(t, "12:00", appointment.EndTime)
	assert.Equal(t, "U1", appointment.DentalUnit)

	// An explicit unit replaces the current one.
	appointment = base
	unit := "U2"
	appointment.ApplyReschedule("2026-09-03", "", "", &unit)
	assert.Equal(t, "2026-09-03", appointment.Date)
	assert.Equal(t, "09:00", appointment.StartTime)
	assert.Equal(t, "U2", appointment.DentalUnit)

	// An explicit empty unit clears the assignment.
	appointment = base
	empty := ""
	appointment.ApplyReschedule("", "", "", &empty)
	assert.Equal(t, "", appointment.DentalUnit)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(AppointmentPending, AppointmentConfirmed))
	assert.True(t, CanTransition(AppointmentPending, AppointmentCancelled))
	assert.True(t, CanTransition(AppointmentConfirmed, AppointmentCompleted))
	assert.True(t, CanTransition(AppointmentConfirmed, AppointmentNoShow))

	assert.False(t, CanTransition(AppointmentConfirmed, AppointmentPending))
	assert.False(t, CanTransition(AppointmentCancelled, AppointmentConfirmed))
	assert.False(t, CanTransition(AppointmentCompleted, AppointmentCancelled))
	assert.False(t, CanTransition(AppointmentNoShow, AppointmentPending))
}

func TestConflictErrorMessage(t *testing.T) {
	withUnit := &ConflictError{AppointmentID: 4, DentalUnit: "U2"}
	assert.Contains(t, withUnit.Error(), "appointment 4")
	assert.Contains(t, withUnit.Error(), "U2")

	unitless := &ConflictError{AppointmentID: 4}
	assert.Contains(t, unitless.Error(), "appointment 4")

	target := errors.New("wrapped")
	assert.NotErrorIs(t, withUnit, target)
}
