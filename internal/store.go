package internal

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// Storage keys of the persisted blobs
const (
	KeySubscriptions = "abo-checker.subscriptions.v1"
	KeyReminders     = "abo-checker.reminders.v1"
	KeyDisplayCycle  = "abo-checker.displayCycle"
)

// KVStore is a string-keyed byte store
type KVStore interface {
	// Get returns the value for key and whether it exists
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Store backends
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// OpenStore opens the KV store for a backend name
func OpenStore(ctx context.Context, backend, path string) (KVStore, error) {
	switch backend {
	case "", BackendFile:
		return OpenFileStore(path)
	case BackendSQLite:
		return OpenSQLiteStore(ctx, path)
	default:
		return nil, fmt.Errorf("unknown store backend: %s (available: %s, %s)", backend, BackendFile, BackendSQLite)
	}
}

// Repository loads and saves the tracker's state through a KVStore.
// Corrupt blobs are logged and replaced by defaults instead of failing.
type Repository struct {
	kv       KVStore
	log      *zap.Logger
	defaults ReminderSettings
}

// NewRepository creates a repository. defaults are the reminder settings used
// when none are stored.
func NewRepository(kv KVStore, log *zap.Logger, defaults ReminderSettings) *Repository {
	if log == nil {
		log = zap.NewNop()
	}
	return &Repository{kv: kv, log: log, defaults: defaults}
}

// LoadSubscriptions returns the stored subscriptions, normalized
func (r *Repository) LoadSubscriptions(ctx context.Context) ([]Subscription, error) {
	data, ok, err := r.kv.Get(ctx, KeySubscriptions)
	if err != nil {
		return nil, fmt.Errorf("reading subscriptions: %w", err)
	}
	if !ok || len(data) == 0 {
		return []Subscription{}, nil
	}

	subs, err := DecodeSubscriptions(data)
	if err != nil {
		r.log.Warn("unexpected subscription format in storage, using empty list", zap.Error(err))
		return []Subscription{}, nil
	}
	return subs, nil
}

// SaveSubscriptions replaces the stored subscription list
func (r *Repository) SaveSubscriptions(ctx context.Context, subs []Subscription) error {
	data, err := EncodeSubscriptions(subs)
	if err != nil {
		return err
	}
	if err := r.kv.Set(ctx, KeySubscriptions, data); err != nil {
		return fmt.Errorf("writing subscriptions: %w", err)
	}
	r.log.Debug("saved subscriptions", zap.Int("count", len(subs)))
	return nil
}

// LoadReminderSettings returns the stored settings merged over the defaults
func (r *Repository) LoadReminderSettings(ctx context.Context) (ReminderSettings, error) {
	data, ok, err := r.kv.Get(ctx, KeyReminders)
	if err != nil {
		return r.defaults, fmt.Errorf("reading reminder settings: %w", err)
	}
	if !ok || len(data) == 0 {
		return r.defaults, nil
	}

	settings, err := DecodeReminderSettings(data, r.defaults)
	if err != nil {
		r.log.Warn("invalid reminder settings in storage, using defaults", zap.Error(err))
		return r.defaults, nil
	}
	return settings, nil
}

// SaveReminderSettings persists the global reminder settings
func (r *Repository) SaveReminderSettings(ctx context.Context, settings ReminderSettings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshaling reminder settings: %w", err)
	}
	if err := r.kv.Set(ctx, KeyReminders, data); err != nil {
		return fmt.Errorf("writing reminder settings: %w", err)
	}
	return nil
}

// LoadDisplayCycle returns the stored display unit, or fallback when none is set
func (r *Repository) LoadDisplayCycle(ctx context.Context, fallback Cycle) (Cycle, error) {
	data, ok, err := r.kv.Get(ctx, KeyDisplayCycle)
	if err != nil {
		return fallback, fmt.Errorf("reading display cycle: %w", err)
	}
	if c := Cycle(data); ok && c.IsValid() {
		return c, nil
	}
	return fallback, nil
}

// SaveDisplayCycle persists the display unit. Unknown cycles are stored as monthly.
func (r *Repository) SaveDisplayCycle(ctx context.Context, c Cycle) error {
	if !c.IsValid() {
		c = CycleMonthly
	}
	if err := r.kv.Set(ctx, KeyDisplayCycle, []byte(c)); err != nil {
		return fmt.Errorf("writing display cycle: %w", err)
	}
	return nil
}
