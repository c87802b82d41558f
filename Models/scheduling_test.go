package Models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailableSlotsFullDay(t *testing.T) {
	slots := AvailableSlots("2026-09-01", 30, DefaultBusinessHours, nil)

	require.Len(t, slots, 24)
	assert.Equal(t, "08:00", slots[0].Start)
	assert.Equal(t, "08:30", slots[0].End)
	assert.Equal(t, "19:30", slots[23].Start)
	assert.Equal(t, "20:00", slots[23].End)
	for _, slot := range slots {
		assert.True(t, slot.Available)
	}
}

func TestAvailableSlotsMarksBusy(t *testing.T) {
	existing := []Appointment{
		{Date: "2026-09-01", StartTime: "09:00", EndTime: "09:30", Status: AppointmentConfirmed},
		{Date: "2026-09-01", StartTime: "12:00", EndTime: "13:00", Status: AppointmentCancelled},
		{Date: "2026-09-02", StartTime: "10:00", EndTime: "10:30", Status: AppointmentConfirmed},
	}

	slots := AvailableSlots("2026-09-01", 30, DefaultBusinessHours, existing)
	require.Len(t, slots, 24)

	busy := map[string]bool{}
	for _, slot := range slots {
		if !slot.Available {
			busy[slot.Start] = true
		}
	}
	// Only the 09:00 slot is taken; the cancelled noon block and the other
	// day's booking do not count.
	assert.Equal(t, map[string]bool{"09:00": true}, busy)
}

func TestAvailableSlotsBusyRegardlessOfUnit(t *testing.T) {
	existing := []Appointment{
		{Date: "2026-09-01", StartTime: "10:00", EndTime: "11:00", DentalUnit: "U2", Status: AppointmentPending},
	}

	slots := AvailableSlots("2026-09-01", 30, DefaultBusinessHours, existing)
	for _, slot := range slots {
		if slot.Start == "10:00" || slot.Start == "10:30" {
			assert.False(t, slot.Available, "slot %s should be busy", slot.Start)
		} else {
			assert.True(t, slot.Available, "slot %s should be free", slot.Start)
		}
	}
}

func TestAvailableSlotsDropsTrailingSlot(t *testing.T) {
	hours := BusinessHours{Start: "08:00", End: "09:45"}
	slots := AvailableSlots("2026-09-01", 30, hours, nil)

	// 08:00, 08:30 and 09:00 fit; a 09:30 slot would run past 09:45.
	require.Len(t, slots, 3)
	assert.Equal(t, "09:00", slots[2].Start)
	assert.Equal(t, "09:30", slots[2].End)
}

func TestAvailableSlotsOversizedSlotTerminates(t *testing.T) {
	// A slot longer than the business-hours window must yield no slots
	// rather than wrapping past midnight and looping.
	assert.Empty(t, AvailableSlots("2026-09-01", 721, DefaultBusinessHours, nil))
	assert.Empty(t, AvailableSlots("2026-09-01", 1440, DefaultBusinessHours, nil))
	assert.Empty(t, AvailableSlots("2026-09-01", 100000, DefaultBusinessHours, nil))
}

func TestAvailableSlotsWindowSizedSlot(t *testing.T) {
	// A slot exactly the size of the window fits once.
	slots := AvailableSlots("2026-09-01", 720, DefaultBusinessHours, nil)
	require.Len(t, slots, 1)
	assert.Equal(t, "08:00", slots[0].Start)
	assert.Equal(t, "20:00", slots[0].End)
}

func TestAvailableSlotsLateClosingWindow(t *testing.T) {
	// Business hours ending near midnight must not wrap either.
	slots := AvailableSlots("2026-09-01", 90, BusinessHours{Start: "22:00", End: "23:59"}, nil)
	require.Len(t, slots, 1)
	assert.Equal(t, "23:30", slots[0].End)

	assert.Nil(t, AvailableSlots("2026-09-01", 30, BusinessHours{Start: "bad", End: "20:00"}, nil))
}

func TestAvailableSlotsDefaultsSlotSize(t *testing.T) {
	slots := AvailableSlots("2026-09-01", 0, DefaultBusinessHours, nil)
	require.Len(t, slots, 24)

	hourly := AvailableSlots("2026-09-01", 60, DefaultBusinessHours, nil)
	require.Len(t, hourly, 12)
}

func TestWeekBounds(t *testing.T) {
	// 2026-09-02 is a Wednesday.
	monday, sunday, err := WeekBounds("2026-09-02")
	require.NoError(t, err)
	assert.Equal(t, "2026-08-31", monday)
	assert.Equal(t, "2026-09-06", sunday)

	// A Monday maps to itself.
	monday, sunday, err = WeekBounds("2026-08-31")
	require.NoError(t, err)
	assert.Equal(t, "2026-08-31", monday)
	assert.Equal(t, "2026-09-06", sunday)

	// A Sunday belongs to the week that started six days earlier.
	monday, _, err = WeekBounds("2026-09-06")
	require.NoError(t, err)
	assert.Equal(t, "2026-08-31", monday)

	_, _, err = WeekBounds("nope")
	assert.Error(t, err)
}

func TestWeeklyAgendaBuckets(t *testing.T) {
	appointments := []Appointment{
		{Date: "2026-09-01", StartTime: "14:00", EndTime: "15:00"},
		{Date: "2026-09-01", StartTime: "09:00", EndTime: "10:00"},
		{Date: "2026-09-06", StartTime: "11:00", EndTime: "12:00"},
		{Date: "2026-09-10", StartTime: "09:00", EndTime: "10:00"}, // next week
	}

	week, err := WeeklyAgenda("2026-09-02", appointments)
	require.NoError(t, err)
	require.Len(t, week, 7)

	assert.Equal(t, "2026-08-31", week[0].Date)
	assert.Equal(t, 1, week[0].Weekday)
	assert.Empty(t, week[0].Appointments)

	// Tuesday holds both bookings, sorted by start time.
	require.Len(t, week[1].Appointments, 2)
	assert.Equal(t, "09:00", week[1].Appointments[0].StartTime)
	assert.Equal(t, "14:00", week[1].Appointments[1].StartTime)

	// Sunday closes the window.
	assert.Equal(t, "2026-09-06", week[6].Date)
	assert.Equal(t, 7, week[6].Weekday)
	require.Len(t, week[6].Appointments, 1)

	total := 0
	for _, day := range week {
		total += len(day.Appointments)
	}
	assert.Equal(t, 3, total)
}

func TestSortByStartTime(t *testing.T) {
	appointments := []Appointment{
		{Date: "2026-09-02", StartTime: "08:00"},
		{Date: "2026-09-01", StartTime: "16:00"},
		{Date: "2026-09-01", StartTime: "09:00"},
	}
	SortByStartTime(appointments)
	assert.Equal(t, "09:00", appointments[0].StartTime)
	assert.Equal(t, "16:00", appointments[1].StartTime)
	assert.Equal(t, "2026-09-02", appointments[2].Date)
}
