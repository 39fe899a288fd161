package internal

import (
	"fmt"
	"sort"
	"time"
)

// ReminderEngine derives reminder events from a snapshot of subscriptions.
// It only reads its inputs; marking reminders as delivered is up to the caller
// (see MarkNotified).
type ReminderEngine struct {
	settings ReminderSettings
	currency Currency
	now      func() time.Time
}

// NewReminderEngine creates an engine for the given global settings and currency
func NewReminderEngine(settings ReminderSettings, currency Currency) *ReminderEngine {
	return &ReminderEngine{
		settings: settings,
		currency: currency,
		now:      time.Now,
	}
}

// WithClock replaces the wall clock used by Upcoming
func (e *ReminderEngine) WithClock(now func() time.Time) *ReminderEngine {
	e.now = now
	return e
}

// Settings returns the global settings the engine was built with
func (e *ReminderEngine) Settings() ReminderSettings {
	return e.settings
}

// Today returns the current calendar day according to the engine's clock
func (e *ReminderEngine) Today() time.Time {
	return StartOfDay(e.now())
}

type reminderCandidate struct {
	typ          NotificationType
	eventDate    time.Time
	reminderDate time.Time
}

// NextReminderForSub decides whether a reminder for sub is due on or after today
// and builds its payload. Returns false for inactive subscriptions, reminders
// switched off, missing dates, and reminders that were already surfaced for the
// same type and date.
func (e *ReminderEngine) NextReminderForSub(sub Subscription, today time.Time) (ReminderEvent, bool) {
	if !sub.Active {
		return ReminderEvent{}, false
	}

	cfg := EffectiveReminderConfig(sub, e.settings)
	if cfg.Mode == ReminderModeOff {
		return ReminderEvent{}, false
	}

	today = StartOfDay(today)
	snoozedUntil, hasSnooze := ParseISODateIn(sub.ReminderState.SnoozedUntil, today.Location())

	var candidates []reminderCandidate
	push := func(typ NotificationType, eventDate time.Time, hasEvent bool, leadDays *int) {
		if !hasEvent || leadDays == nil || *leadDays < 0 {
			return
		}

		reminderDate := AddDays(eventDate, -*leadDays)
		if hasSnooze && !snoozedUntil.Before(today) && !snoozedUntil.After(eventDate) {
			reminderDate = snoozedUntil
		}
		if reminderDate.Before(today) {
			return
		}

		candidates = append(candidates, reminderCandidate{
			typ:          typ,
			eventDate:    eventDate,
			reminderDate: reminderDate,
		})
	}

	billingDate, hasBilling := NextBillingDate(sub, today)
	renewalDate, hasRenewal := NextRenewalDate(sub, today)
	push(NotificationBilling, billingDate, hasBilling, cfg.BillingLeadDays)
	push(NotificationRenewal, renewalDate, hasRenewal, cfg.RenewalLeadDays)

	if len(candidates) == 0 {
		return ReminderEvent{}, false
	}

	// Billing is pushed first, so a stable sort keeps it ahead on equal dates.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].reminderDate.Before(candidates[j].reminderDate)
	})
	chosen := candidates[0]

	reminderISO := FormatISODate(chosen.reminderDate)
	state := sub.ReminderState
	if state.LastNotificationType == chosen.typ && state.LastNotifiedAt == reminderISO {
		return ReminderEvent{}, false
	}

	title, body := e.reminderText(sub, chosen)
	return ReminderEvent{
		SubID:          sub.ID,
		Type:           chosen.typ,
		TriggerAt:      ApplyTimeOfDay(chosen.reminderDate, e.settings.TimeOfDay),
		NotificationID: NotificationID(sub.ID, chosen.typ),
		Title:          title,
		Body:           body,
		EventDate:      FormatISODate(chosen.eventDate),
		ReminderDate:   reminderISO,
	}, true
}

// ComputeAllReminders returns the next reminder of every subscription, ordered by
// trigger time. Calling it twice with the same inputs gives the same result.
func (e *ReminderEngine) ComputeAllReminders(subs []Subscription, today time.Time) []ReminderEvent {
	events := make([]ReminderEvent, 0, len(subs))
	for _, sub := range subs {
		if ev, ok := e.NextReminderForSub(sub, today); ok {
			events = append(events, ev)
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].TriggerAt.Before(events[j].TriggerAt)
	})
	return events
}

// Upcoming is ComputeAllReminders for the engine clock's current day
func (e *ReminderEngine) Upcoming(subs []Subscription) []ReminderEvent {
	return e.ComputeAllReminders(subs, e.Today())
}

// NotificationID is the stable delivery id of a subscription's reminder type
func NotificationID(subID string, typ NotificationType) string {
	return subID + ":" + string(typ)
}

func (e *ReminderEngine) reminderText(sub Subscription, c reminderCandidate) (title, body string) {
	name := sub.Name
	if name == "" {
		name = "Subscription"
	}
	eventDate := FormatDateShort(c.eventDate)

	switch c.typ {
	case NotificationRenewal:
		title = fmt.Sprintf("%s: contract ends soon", name)
		body = fmt.Sprintf("Contract ends on %s. Review or cancel in time.", eventDate)
	default:
		title = fmt.Sprintf("%s: payment due soon", name)
		body = fmt.Sprintf("%s %s, due on %s.", e.currency.Format(sub.Amount), CycleLabel(sub.Cycle), eventDate)
	}
	return title, body
}
