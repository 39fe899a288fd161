package internal

import "time"

// Cycle is the billing frequency of a subscription
type Cycle string

const (
	CycleDaily     Cycle = "daily"
	CycleWeekly    Cycle = "weekly"
	CycleMonthly   Cycle = "monthly"
	CycleQuarterly Cycle = "quarterly"
	CycleYearly    Cycle = "yearly"
)

// Cycles lists the known cycles in display order
var Cycles = []Cycle{CycleMonthly, CycleYearly, CycleWeekly, CycleQuarterly, CycleDaily}

// IsValid returns true for the five known cycles
func (c Cycle) IsValid() bool {
	switch c {
	case CycleDaily, CycleWeekly, CycleMonthly, CycleQuarterly, CycleYearly:
		return true
	default:
		return false
	}
}

type ReminderMode string

const (
	ReminderModeDefault ReminderMode = "default"
	ReminderModeCustom  ReminderMode = "custom"
	ReminderModeOff     ReminderMode = "off"
)

type NotificationType string

const (
	NotificationBilling NotificationType = "billing"
	NotificationRenewal NotificationType = "renewal"
)

type DebitMode string

const (
	DebitAuto   DebitMode = "auto"
	DebitManual DebitMode = "manual"
)

// ReminderConfig is the per-subscription reminder preference.
// Nil lead days fall back to the global settings when Mode is custom.
type ReminderConfig struct {
	Mode            ReminderMode
	BillingLeadDays *int
	RenewalLeadDays *int
}

// ReminderState records what was last communicated for a subscription.
// Dates are kept as ISO strings exactly as persisted; empty means absent.
type ReminderState struct {
	SnoozedUntil         string
	LastNotifiedAt       string
	LastNotificationType NotificationType
}

type Subscription struct {
	ID         string
	Name       string
	Provider   string
	Category   string
	Note       string
	Debit      DebitMode
	Amount     float64
	Cycle      Cycle
	StartDate  string // YYYY-MM-DD, may be empty
	BillingDay *int   // 1-31, monthly only
	EndDate    string // YYYY-MM-DD, may be empty
	Active     bool

	ReminderConfig ReminderConfig
	ReminderState  ReminderState
}

// ReminderSettings are the global reminder defaults
type ReminderSettings struct {
	BillingLeadDays int    `json:"billingLeadDays"`
	RenewalLeadDays int    `json:"renewalLeadDays"`
	TimeOfDay       string `json:"timeOfDay"`
}

// DefaultReminderSettings returns the built-in reminder defaults
func DefaultReminderSettings() ReminderSettings {
	return ReminderSettings{
		BillingLeadDays: 3,
		RenewalLeadDays: 7,
		TimeOfDay:       "09:00",
	}
}

// ReminderEvent is a computed, not yet delivered notification payload
type ReminderEvent struct {
	SubID          string           `json:"subId"`
	Type           NotificationType `json:"type"`
	TriggerAt      time.Time        `json:"triggerAt"`
	NotificationID string           `json:"notificationId"`
	Title          string           `json:"title"`
	Body           string           `json:"body"`
	EventDate      string           `json:"eventDate"`
	ReminderDate   string           `json:"reminderDate"`
}

func intPtr(v int) *int {
	return &v
}
