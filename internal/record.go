package internal

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate checks single persisted values during normalization
var validate = validator.New()

// subscriptionRecord is the persisted JSON shape of a subscription
type subscriptionRecord struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Provider       string         `json:"provider"`
	Category       string         `json:"category"`
	Debit          string         `json:"debit"`
	Amount         float64        `json:"amount"`
	Cycle          string         `json:"cycle"`
	StartDate      string         `json:"startDate"`
	EndDate        string         `json:"endDate"`
	BillingDay     *int           `json:"billingDay"`
	Note           string         `json:"note"`
	Active         bool           `json:"active"`
	ReminderConfig reminderConfig `json:"reminderConfig"`
	ReminderState  reminderState  `json:"reminderState"`
}

type reminderConfig struct {
	Mode            string `json:"mode"`
	BillingLeadDays *int   `json:"billingLeadDays"`
	RenewalLeadDays *int   `json:"renewalLeadDays"`
}

type reminderState struct {
	SnoozedUntil         *string `json:"snoozedUntil"`
	LastNotifiedAt       *string `json:"lastNotifiedAt"`
	LastNotificationType *string `json:"lastNotificationType"`
}

// DecodeSubscriptions parses a persisted subscription list.
// Every element is normalized; elements that are not objects are skipped.
func DecodeSubscriptions(data []byte) ([]Subscription, error) {
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing subscription list: %w", err)
	}

	subs := make([]Subscription, 0, len(raw))
	for _, item := range raw {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		subs = append(subs, NormalizeSubscription(obj))
	}
	return subs, nil
}

// EncodeSubscriptions serializes subscriptions in the persisted JSON shape
func EncodeSubscriptions(subs []Subscription) ([]byte, error) {
	records := make([]subscriptionRecord, 0, len(subs))
	for _, sub := range subs {
		records = append(records, toRecord(sub))
	}
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("marshaling subscriptions: %w", err)
	}
	return data, nil
}

// NormalizeSubscription maps an untyped persisted record to a fully defaulted
// Subscription. Records from older versions may lack reminderConfig and
// reminderState entirely; wrong types fall back to their defaults.
func NormalizeSubscription(raw map[string]any) Subscription {
	sub := Subscription{
		ID:        stringField(raw, "id"),
		Name:      stringField(raw, "name"),
		Provider:  stringField(raw, "provider"),
		Category:  stringField(raw, "category"),
		Note:      stringField(raw, "note"),
		Debit:     DebitAuto,
		Amount:    amountField(raw["amount"]),
		Cycle:     Cycle(stringField(raw, "cycle")),
		StartDate: stringField(raw, "startDate"),
		EndDate:   stringField(raw, "endDate"),
		Active:    truthy(raw["active"]),
	}
	if stringField(raw, "debit") == string(DebitManual) {
		sub.Debit = DebitManual
	}
	if day, ok := integerField(raw["billingDay"], true); ok && validate.Var(day, "min=1,max=31") == nil {
		sub.BillingDay = intPtr(day)
	}

	sub.ReminderConfig = ReminderConfig{Mode: ReminderModeDefault}
	if cfg, ok := raw["reminderConfig"].(map[string]any); ok {
		switch mode := ReminderMode(stringField(cfg, "mode")); mode {
		case ReminderModeDefault, ReminderModeCustom, ReminderModeOff:
			sub.ReminderConfig.Mode = mode
		}
		if v, ok := integerField(cfg["billingLeadDays"], false); ok {
			sub.ReminderConfig.BillingLeadDays = intPtr(v)
		}
		if v, ok := integerField(cfg["renewalLeadDays"], false); ok {
			sub.ReminderConfig.RenewalLeadDays = intPtr(v)
		}
	}

	if state, ok := raw["reminderState"].(map[string]any); ok {
		sub.ReminderState.SnoozedUntil = stringField(state, "snoozedUntil")
		sub.ReminderState.LastNotifiedAt = stringField(state, "lastNotifiedAt")
		switch t := NotificationType(stringField(state, "lastNotificationType")); t {
		case NotificationBilling, NotificationRenewal:
			sub.ReminderState.LastNotificationType = t
		}
	}

	return sub
}

// DecodeReminderSettings parses persisted reminder settings and merges them over
// the defaults. Unknown or invalid fields keep their default value.
func DecodeReminderSettings(data []byte, defaults ReminderSettings) (ReminderSettings, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return defaults, fmt.Errorf("parsing reminder settings: %w", err)
	}
	obj, _ := raw.(map[string]any)
	return MergeReminderSettings(obj, defaults), nil
}

// MergeReminderSettings overlays valid fields of raw onto defaults
func MergeReminderSettings(raw map[string]any, defaults ReminderSettings) ReminderSettings {
	settings := defaults
	if v, ok := integerField(raw["billingLeadDays"], false); ok && validate.Var(v, "min=0") == nil {
		settings.BillingLeadDays = v
	}
	if v, ok := integerField(raw["renewalLeadDays"], false); ok && validate.Var(v, "min=0") == nil {
		settings.RenewalLeadDays = v
	}
	if tod, ok := raw["timeOfDay"].(string); ok && ValidTimeOfDay(tod) {
		settings.TimeOfDay = tod
	}
	return settings
}

// ValidTimeOfDay reports whether s is a 24h "HH:MM" time
func ValidTimeOfDay(s string) bool {
	return validate.Var(s, "required,datetime=15:04") == nil
}

func toRecord(sub Subscription) subscriptionRecord {
	rec := subscriptionRecord{
		ID:         sub.ID,
		Name:       sub.Name,
		Provider:   sub.Provider,
		Category:   sub.Category,
		Debit:      string(sub.Debit),
		Amount:     sub.Amount,
		Cycle:      string(sub.Cycle),
		StartDate:  sub.StartDate,
		EndDate:    sub.EndDate,
		BillingDay: sub.BillingDay,
		Note:       sub.Note,
		Active:     sub.Active,
		ReminderConfig: reminderConfig{
			Mode:            string(sub.ReminderConfig.Mode),
			BillingLeadDays: sub.ReminderConfig.BillingLeadDays,
			RenewalLeadDays: sub.ReminderConfig.RenewalLeadDays,
		},
		ReminderState: reminderState{
			SnoozedUntil:         nullable(sub.ReminderState.SnoozedUntil),
			LastNotifiedAt:       nullable(sub.ReminderState.LastNotifiedAt),
			LastNotificationType: nullable(string(sub.ReminderState.LastNotificationType)),
		},
	}
	if rec.Debit == "" {
		rec.Debit = string(DebitAuto)
	}
	if rec.ReminderConfig.Mode == "" {
		rec.ReminderConfig.Mode = string(ReminderModeDefault)
	}
	return rec
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func stringField(obj map[string]any, key string) string {
	switch v := obj[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// amountField accepts numbers and numeric strings (with a decimal comma); anything
// else is 0.
func amountField(v any) float64 {
	switch x := v.(type) {
	case float64:
		return finiteOrZero(x)
	case string:
		f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(x), ",", "."), 64)
		if err != nil {
			return 0
		}
		return finiteOrZero(f)
	default:
		return 0
	}
}

// integerField reads a whole number. Fractional numbers are rounded down, so a
// negative value never becomes zero, unless strict is set, in which case they
// are rejected. Numeric strings are only
// accepted in strict mode (billing days typed into a form).
func integerField(v any, strict bool) (int, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case string:
		if !strict {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if strict && f != math.Trunc(f) {
		return 0, false
	}
	return int(math.Floor(f)), true
}

func truthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		return x != ""
	default:
		return false
	}
}
