package internal

// EffectiveConfig is the fully resolved reminder configuration of one subscription.
// Lead days are nil when no reminder of that type should be built.
type EffectiveConfig struct {
	Mode            ReminderMode
	BillingLeadDays *int
	RenewalLeadDays *int
}

// EffectiveReminderConfig merges a subscription's reminder preference with the
// global settings. Unknown modes behave like "default".
func EffectiveReminderConfig(sub Subscription, settings ReminderSettings) EffectiveConfig {
	cfg := sub.ReminderConfig

	switch cfg.Mode {
	case ReminderModeOff:
		return EffectiveConfig{Mode: ReminderModeOff}
	case ReminderModeCustom:
		billing := cfg.BillingLeadDays
		if billing == nil {
			billing = intPtr(settings.BillingLeadDays)
		}
		renewal := cfg.RenewalLeadDays
		if renewal == nil {
			renewal = intPtr(settings.RenewalLeadDays)
		}
		return EffectiveConfig{
			Mode:            ReminderModeCustom,
			BillingLeadDays: intPtr(*billing),
			RenewalLeadDays: intPtr(*renewal),
		}
	default:
		return EffectiveConfig{
			Mode:            ReminderModeDefault,
			BillingLeadDays: intPtr(settings.BillingLeadDays),
			RenewalLeadDays: intPtr(settings.RenewalLeadDays),
		}
	}
}
