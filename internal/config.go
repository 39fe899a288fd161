package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// ExcludeRule hides subscriptions from listings and reminders
type ExcludeRule struct {
	Pattern  string `yaml:"pattern"`
	Category string `yaml:"category,omitempty"` // Exclude only within this category

	// compiled fields
	regex *regexp.Regexp `yaml:"-"`
}

// StoreConfig selects where subscriptions are persisted
type StoreConfig struct {
	Backend string `yaml:"backend,omitempty"` // "file" (default) or "sqlite"
	Path    string `yaml:"path,omitempty"`
}

// RemindersConfig overrides the built-in reminder defaults
type RemindersConfig struct {
	BillingLeadDays *int   `yaml:"billing_lead_days,omitempty"`
	RenewalLeadDays *int   `yaml:"renewal_lead_days,omitempty"`
	TimeOfDay       string `yaml:"time_of_day,omitempty"`
}

type Config struct {
	// Currency is an ISO 4217 code or "auto" to derive it from the system locale
	Currency string `yaml:"currency,omitempty"`

	// Locale overrides the number formatting locale (e.g. "de-DE")
	Locale string `yaml:"locale,omitempty"`

	LogLevel string `yaml:"log_level,omitempty"`

	// DisplayCycle is the initial display unit when none is stored
	DisplayCycle string `yaml:"display_cycle,omitempty"`

	Store     StoreConfig     `yaml:"store,omitempty"`
	Reminders RemindersConfig `yaml:"reminders,omitempty"`

	// Descriptions maps subscription names to custom descriptions
	Descriptions map[string]string `yaml:"descriptions,omitempty"`

	// Exclude is a list of exclusion rules (can be strings or objects with a category)
	Exclude []yaml.Node `yaml:"exclude,omitempty"`

	// compiled exclusion rules (not serialized)
	excludeRules []ExcludeRule `yaml:"-"`
}

// envOverrides are read from SUBTRACKER_* variables and win over the file
type envOverrides struct {
	Currency     string `envconfig:"CURRENCY"`
	Locale       string `envconfig:"LOCALE"`
	LogLevel     string `envconfig:"LOG_LEVEL"`
	DisplayCycle string `envconfig:"DISPLAY_CYCLE"`
	StoreBackend string `envconfig:"STORE_BACKEND"`
	StorePath    string `envconfig:"STORE_PATH"`
}

// EnvPrefix is the prefix of environment overrides
const EnvPrefix = "SUBTRACKER"

// DefaultConfigDir returns ~/.subscription-tracker
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".subscription-tracker")
}

// DefaultConfigPath returns the default config file path (~/.subscription-tracker/config.yaml)
func DefaultConfigPath() string {
	dir := DefaultConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// NewDefaultConfig creates a config with built-in values.
// Use this when no config file exists.
func NewDefaultConfig() *Config {
	return &Config{
		Currency:     DefaultCurrency,
		LogLevel:     "info",
		DisplayCycle: string(CycleMonthly),
		Store:        StoreConfig{Backend: BackendFile},
	}
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := NewDefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.compile(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// compile parses exclude rules (supports both strings and objects) and checks the
// reminder overrides
func (c *Config) compile() error {
	c.excludeRules = nil
	for _, node := range c.Exclude {
		var rule ExcludeRule

		switch node.Kind {
		case yaml.ScalarNode:
			rule.Pattern = node.Value
		case yaml.MappingNode:
			if err := node.Decode(&rule); err != nil {
				return fmt.Errorf("parsing exclude rule: %w", err)
			}
		default:
			return fmt.Errorf("invalid exclude rule format")
		}

		re, err := regexp.Compile("(?i)" + rule.Pattern)
		if err != nil {
			return fmt.Errorf("invalid exclude pattern %q: %w", rule.Pattern, err)
		}
		rule.regex = re
		c.excludeRules = append(c.excludeRules, rule)
	}

	r := c.Reminders
	if r.BillingLeadDays != nil && *r.BillingLeadDays < 0 {
		return fmt.Errorf("invalid billing_lead_days %d: must not be negative", *r.BillingLeadDays)
	}
	if r.RenewalLeadDays != nil && *r.RenewalLeadDays < 0 {
		return fmt.Errorf("invalid renewal_lead_days %d: must not be negative", *r.RenewalLeadDays)
	}
	if r.TimeOfDay != "" && !ValidTimeOfDay(r.TimeOfDay) {
		return fmt.Errorf("invalid time_of_day %q: expected HH:MM", r.TimeOfDay)
	}
	if c.DisplayCycle != "" && !Cycle(c.DisplayCycle).IsValid() {
		return fmt.Errorf("invalid display_cycle %q", c.DisplayCycle)
	}
	return nil
}

// ApplyEnv overlays SUBTRACKER_* environment variables onto the config
func (c *Config) ApplyEnv() error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}
	if env.Currency != "" {
		c.Currency = env.Currency
	}
	if env.Locale != "" {
		c.Locale = env.Locale
	}
	if env.LogLevel != "" {
		c.LogLevel = env.LogLevel
	}
	if env.DisplayCycle != "" {
		c.DisplayCycle = env.DisplayCycle
	}
	if env.StoreBackend != "" {
		c.Store.Backend = env.StoreBackend
	}
	if env.StorePath != "" {
		c.Store.Path = env.StorePath
	}
	return c.compile()
}

func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	// Create parent directories if they don't exist
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// ReminderDefaults returns the built-in reminder settings with the config's
// overrides applied
func (c *Config) ReminderDefaults() ReminderSettings {
	settings := DefaultReminderSettings()
	if c == nil {
		return settings
	}
	if c.Reminders.BillingLeadDays != nil {
		settings.BillingLeadDays = *c.Reminders.BillingLeadDays
	}
	if c.Reminders.RenewalLeadDays != nil {
		settings.RenewalLeadDays = *c.Reminders.RenewalLeadDays
	}
	if c.Reminders.TimeOfDay != "" {
		settings.TimeOfDay = c.Reminders.TimeOfDay
	}
	return settings
}

// StorePath returns the configured store path, or a backend specific default
// next to the config file
func (c *Config) StorePath() string {
	if c != nil && c.Store.Path != "" {
		return c.Store.Path
	}
	name := "store.json"
	if c != nil && c.Store.Backend == BackendSQLite {
		name = "store.db"
	}
	return filepath.Join(DefaultConfigDir(), name)
}

// ShouldExclude returns true if the subscription matches any exclude rule
func (c *Config) ShouldExclude(sub Subscription) bool {
	if c == nil {
		return false
	}
	for _, rule := range c.excludeRules {
		if !rule.regex.MatchString(sub.Name) {
			continue
		}
		if rule.Category != "" && !equalFoldTrim(rule.Category, sub.Category) {
			continue
		}
		return true
	}
	return false
}

// GetDescription returns the custom description for a subscription, or empty string
func (c *Config) GetDescription(name string) string {
	if c == nil || c.Descriptions == nil {
		return ""
	}
	return c.Descriptions[name]
}

// GenerateConfigTemplate creates a config with an empty description per subscription
func GenerateConfigTemplate(subs []Subscription) *Config {
	cfg := NewDefaultConfig()
	cfg.Descriptions = make(map[string]string)
	for _, sub := range subs {
		cfg.Descriptions[sub.Name] = "" // Empty description as placeholder
	}
	return cfg
}
