package internal

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Notifier delivers a due reminder
type Notifier interface {
	Notify(ctx context.Context, ev ReminderEvent) error
}

// NotifierFunc is a function that implements Notifier
type NotifierFunc func(ctx context.Context, ev ReminderEvent) error

func (f NotifierFunc) Notify(ctx context.Context, ev ReminderEvent) error {
	return f(ctx, ev)
}

// SnapshotLoader returns the current subscriptions and reminder settings
type SnapshotLoader func(ctx context.Context) ([]Subscription, ReminderSettings, error)

// Poller periodically recomputes reminders from a fresh snapshot and delivers
// the ones whose trigger time has passed. Each event (notification id and
// reminder date) is delivered at most once per Poller.
type Poller struct {
	load     SnapshotLoader
	notifier Notifier
	currency Currency
	log      *zap.Logger
	interval time.Duration
	now      func() time.Time

	delivered map[string]bool
}

// NewPoller creates a poller that ticks every interval
func NewPoller(load SnapshotLoader, notifier Notifier, currency Currency, log *zap.Logger, interval time.Duration) *Poller {
	if log == nil {
		log = zap.NewNop()
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &Poller{
		load:      load,
		notifier:  notifier,
		currency:  currency,
		log:       log,
		interval:  interval,
		now:       time.Now,
		delivered: make(map[string]bool),
	}
}

// WithClock replaces the wall clock
func (p *Poller) WithClock(now func() time.Time) *Poller {
	p.now = now
	return p
}

// Run ticks once immediately and then on every interval until ctx is canceled
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.log.Info("poller started", zap.Duration("interval", p.interval))
	p.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			p.log.Info("poller stopping")
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	if _, err := p.Tick(ctx); err != nil {
		p.log.Error("tick failed", zap.Error(err))
	}
}

// Tick performs one cycle: load, compute, deliver due events. Returns the number
// of delivered events.
func (p *Poller) Tick(ctx context.Context) (int, error) {
	subs, settings, err := p.load(ctx)
	if err != nil {
		return 0, err
	}

	now := p.now()
	engine := NewReminderEngine(settings, p.currency).WithClock(func() time.Time { return now })
	events := engine.Upcoming(subs)
	LogUpcomingReminders(p.log, events, subs)

	sent := 0
	for _, ev := range events {
		if ev.TriggerAt.After(now) {
			continue
		}
		key := ev.NotificationID + "@" + ev.ReminderDate
		if p.delivered[key] {
			continue
		}
		if err := p.notifier.Notify(ctx, ev); err != nil {
			p.log.Error("notify failed", zap.Error(err), zap.String("notificationId", ev.NotificationID))
			continue
		}
		p.delivered[key] = true
		sent++
	}
	return sent, nil
}
