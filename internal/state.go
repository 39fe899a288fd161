package internal

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnknownSubscription is returned when an id matches no subscription
var ErrUnknownSubscription = errors.New("unknown subscription")

// Snooze returns a copy of sub that asks to be reminded on until instead of the
// lead-day date
func Snooze(sub Subscription, until time.Time) Subscription {
	sub.ReminderState.SnoozedUntil = FormatISODate(until)
	return sub
}

// ClearSnooze returns a copy of sub without a snooze date
func ClearSnooze(sub Subscription) Subscription {
	sub.ReminderState.SnoozedUntil = ""
	return sub
}

// MarkNotified returns a copy of sub recording that ev was delivered, so the
// engine suppresses it on later runs. A consumed snooze is cleared.
func MarkNotified(sub Subscription, ev ReminderEvent) Subscription {
	sub.ReminderState.LastNotifiedAt = ev.ReminderDate
	sub.ReminderState.LastNotificationType = ev.Type
	if sub.ReminderState.SnoozedUntil == ev.ReminderDate {
		sub.ReminderState.SnoozedUntil = ""
	}
	return sub
}

// UpdateSubscription applies fn to the subscription with the given id and returns
// the new list. The input slice is not modified.
func UpdateSubscription(subs []Subscription, id string, fn func(Subscription) Subscription) ([]Subscription, error) {
	out := make([]Subscription, len(subs))
	copy(out, subs)
	for i := range out {
		if out[i].ID == id {
			out[i] = fn(out[i])
			return out, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownSubscription, id)
}

// FindSubscription returns the subscription with the given id
func FindSubscription(subs []Subscription, id string) (Subscription, error) {
	for _, sub := range subs {
		if sub.ID == id {
			return sub, nil
		}
	}
	return Subscription{}, fmt.Errorf("%w: %s", ErrUnknownSubscription, id)
}
