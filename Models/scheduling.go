package Models

import (
	"fmt"
	"sort"
	"time"
)

// TimeSlot is one bookable window in the public availability view.
type TimeSlot struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	Available bool   `json:"available"`
}

// AvailableSlots partitions the business-hours window of a date into
// fixed-size slots and marks each one busy when it overlaps any blocking
// appointment that day. The public view treats the whole clinic as one
// pool, so the dental unit is ignored here; a trailing slot that would
// run past closing is dropped. The walk is done in minutes since
// midnight so a slot size larger than the window yields no slots instead
// of wrapping past midnight.
func AvailableSlots(date string, slotMinutes int, hours BusinessHours, existing []Appointment) []TimeSlot {
	if slotMinutes <= 0 {
		slotMinutes = 30
	}
	opening, err := clockMinutes(hours.Start)
	if err != nil {
		return nil
	}
	closing, err := clockMinutes(hours.End)
	if err != nil {
		return nil
	}

	var slots []TimeSlot
	for start := opening; start+slotMinutes <= closing; start += slotMinutes {
		slot := Appointment{
			Date:      date,
			StartTime: minutesClock(start),
			EndTime:   minutesClock(start + slotMinutes),
		}
		available := true
		for index := range existing {
			other := &existing[index]
			if other.Date != date || !other.BlocksSchedule() {
				continue
			}
			if slot.Overlaps(other) {
				available = false
				break
			}
		}
		slots = append(slots, TimeSlot{Start: slot.StartTime, End: slot.EndTime, Available: available})
	}
	return slots
}

func clockMinutes(clock string) (int, error) {
	t, err := time.Parse(TimeLayout, clock)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

func minutesClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// SortByStartTime orders a day's appointments chronologically in place.
func SortByStartTime(appointments []Appointment) {
	sort.SliceStable(appointments, func(i, j int) bool {
		if appointments[i].Date != appointments[j].Date {
			return appointments[i].Date < appointments[j].Date
		}
		return appointments[i].StartTime < appointments[j].StartTime
	})
}

// DayAgenda is one bucket of the weekly view.
type DayAgenda struct {
	Date         string        `json:"date"`
	Weekday      int           `json:"weekday"` // ISO: Monday=1 .. Sunday=7
	Appointments []Appointment `json:"appointments"`
}

// WeekBounds returns the Monday and Sunday of the 7-day window containing
// the given date.
func WeekBounds(date string) (string, string, error) {
	day, err := time.Parse(DateLayout, date)
	if err != nil {
		return "", "", err
	}
	offset := (int(day.Weekday()) + 6) % 7 // days since Monday
	monday := day.AddDate(0, 0, -offset)
	sunday := monday.AddDate(0, 0, 6)
	return monday.Format(DateLayout), sunday.Format(DateLayout), nil
}

// WeeklyAgenda buckets appointments into the Monday-start week containing
// the given date, one bucket per ISO weekday, each sorted by start time.
func WeeklyAgenda(date string, appointments []Appointment) ([]DayAgenda, error) {
	monday, _, err := WeekBounds(date)
	if err != nil {
		return nil, err
	}
	start, _ := time.Parse(DateLayout, monday)

	week := make([]DayAgenda, 7)
	byDate := make(map[string]int, 7)
	for i := 0; i < 7; i++ {
		d := start.AddDate(0, 0, i).Format(DateLayout)
		week[i] = DayAgenda{Date: d, Weekday: i + 1, Appointments: []Appointment{}}
		byDate[d] = i
	}
	for _, appointment := range appointments {
		if index, ok := byDate[appointment.Date]; ok {
			week[index].Appointments = append(week[index].Appointments, appointment)
		}
	}
	for i := range week {
		SortByStartTime(week[i].Appointments)
	}
	return week, nil
}
