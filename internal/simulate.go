package internal

import "time"

// SimulatedDay groups the reminders that would fire on one day
type SimulatedDay struct {
	Date   string          `json:"date"`
	Events []ReminderEvent `json:"events"`
}

// SimulateRemindersFor computes reminders as if day were today and keeps the ones
// that trigger on that day
func (e *ReminderEngine) SimulateRemindersFor(subs []Subscription, day time.Time) []ReminderEvent {
	day = StartOfDay(day)
	dayISO := FormatISODate(day)

	var due []ReminderEvent
	for _, ev := range e.ComputeAllReminders(subs, day) {
		if FormatISODate(ev.TriggerAt) == dayISO {
			due = append(due, ev)
		}
	}
	return due
}

// SimulateNextNDays runs SimulateRemindersFor for n consecutive days starting at
// from and returns the days that have at least one reminder
func (e *ReminderEngine) SimulateNextNDays(subs []Subscription, from time.Time, n int) []SimulatedDay {
	from = StartOfDay(from)

	var days []SimulatedDay
	for i := 0; i < n; i++ {
		day := AddDays(from, i)
		if events := e.SimulateRemindersFor(subs, day); len(events) > 0 {
			days = append(days, SimulatedDay{Date: FormatISODate(day), Events: events})
		}
	}
	return days
}
