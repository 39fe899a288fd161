package internal

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a JSON logger writing to stderr. Unknown levels log errors only.
func NewLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	switch level {
	case "debug":
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true
	return cfg.Build()
}

// LogUpcomingReminders writes one debug entry per computed reminder
func LogUpcomingReminders(log *zap.Logger, events []ReminderEvent, subs []Subscription) {
	names := make(map[string]string, len(subs))
	for _, sub := range subs {
		names[sub.ID] = sub.Name
	}

	log.Debug("computed reminders", zap.Int("count", len(events)))
	for _, ev := range events {
		log.Debug("reminder",
			zap.String("sub", names[ev.SubID]),
			zap.String("subId", ev.SubID),
			zap.String("type", string(ev.Type)),
			zap.String("eventDate", ev.EventDate),
			zap.String("reminderDate", ev.ReminderDate),
			zap.Time("triggerAt", ev.TriggerAt),
		)
	}
}
